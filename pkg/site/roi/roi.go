// Package roi computes staffing-cost savings estimates against the fixed
// deployment tier catalog.
package roi

import "fmt"

// Input bounds match the site's estimator controls. Out-of-range numeric
// inputs are clamped into range rather than rejected.
const (
	MinStaff  = 1
	MaxStaff  = 25
	MinSalary = 15000
	MaxSalary = 150000

	// Presentational overhead multiplier shown alongside the traditional
	// cost line. Never folded into the savings figure.
	overheadRate = 0.15
)

// Estimate is the result of a single calculation. All monetary figures are
// annual unless named otherwise.
type Estimate struct {
	Tier              Tier    `json:"tier"`
	Staff             int     `json:"staff"`
	MonthlySalary     float64 `json:"monthly_salary"`
	TraditionalAnnual float64 `json:"traditional_annual"`
	AutomationAnnual  float64 `json:"automation_annual"`
	Savings           float64 `json:"savings"`
	EfficiencyPct     float64 `json:"efficiency_pct"`
	OverheadAddendum  float64 `json:"overhead_addendum"`
}

// Calculate produces the savings estimate for the given headcount, average
// monthly salary, and tier. The tier must exist in the catalog; numeric
// inputs are clamped to the estimator bounds.
func Calculate(staff int, monthlySalary float64, tierID string) (Estimate, error) {
	tier, ok := TierByID(tierID)
	if !ok {
		return Estimate{}, fmt.Errorf("unknown tier %q", tierID)
	}

	staff = clampInt(staff, MinStaff, MaxStaff)
	monthlySalary = clampFloat(monthlySalary, MinSalary, MaxSalary)

	traditional := float64(staff) * monthlySalary * 12
	// Setup is charged fully in the first year.
	automation := tier.MonthlyPrice*12 + tier.SetupFee

	savings := traditional - automation
	if savings < 0 {
		savings = 0
	}

	var efficiency float64
	if traditional > 0 {
		efficiency = savings / traditional * 100
	}

	return Estimate{
		Tier:              tier,
		Staff:             staff,
		MonthlySalary:     monthlySalary,
		TraditionalAnnual: traditional,
		AutomationAnnual:  automation,
		Savings:           savings,
		EfficiencyPct:     efficiency,
		OverheadAddendum:  traditional * overheadRate,
	}, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
