package roi

import (
	"math"
	"testing"
)

func TestCalculateBasic(t *testing.T) {
	est, err := Calculate(5, 30000, "growth")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}

	wantTraditional := 5.0 * 30000 * 12 // 1,800,000
	if est.TraditionalAnnual != wantTraditional {
		t.Fatalf("TraditionalAnnual=%v, want %v", est.TraditionalAnnual, wantTraditional)
	}
	wantAutomation := 6500.0*12 + 25000 // 103,000
	if est.AutomationAnnual != wantAutomation {
		t.Fatalf("AutomationAnnual=%v, want %v", est.AutomationAnnual, wantAutomation)
	}
	if est.Savings != wantTraditional-wantAutomation {
		t.Fatalf("Savings=%v, want %v", est.Savings, wantTraditional-wantAutomation)
	}
	wantEff := (wantTraditional - wantAutomation) / wantTraditional * 100
	if math.Abs(est.EfficiencyPct-wantEff) > 1e-9 {
		t.Fatalf("EfficiencyPct=%v, want %v", est.EfficiencyPct, wantEff)
	}
	if est.OverheadAddendum != wantTraditional*0.15 {
		t.Fatalf("OverheadAddendum=%v, want %v", est.OverheadAddendum, wantTraditional*0.15)
	}
}

func TestCalculateSavingsFloorsAtZero(t *testing.T) {
	// One employee at the minimum salary against the enterprise tier costs
	// less than the automation bill; savings must not go negative.
	est, err := Calculate(1, 15000, "custom")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if est.Savings != 0 {
		t.Fatalf("Savings=%v, want 0", est.Savings)
	}
	if est.EfficiencyPct != 0 {
		t.Fatalf("EfficiencyPct=%v, want 0", est.EfficiencyPct)
	}
}

func TestCalculateClampsInputs(t *testing.T) {
	est, err := Calculate(100, 1e9, "starter")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if est.Staff != MaxStaff {
		t.Fatalf("Staff=%d, want %d", est.Staff, MaxStaff)
	}
	if est.MonthlySalary != MaxSalary {
		t.Fatalf("MonthlySalary=%v, want %v", est.MonthlySalary, float64(MaxSalary))
	}

	est, err = Calculate(0, -5, "starter")
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if est.Staff != MinStaff || est.MonthlySalary != MinSalary {
		t.Fatalf("got staff=%d salary=%v, want %d %v", est.Staff, est.MonthlySalary, MinStaff, float64(MinSalary))
	}
}

func TestCalculateUnknownTier(t *testing.T) {
	if _, err := Calculate(5, 30000, "platinum"); err == nil {
		t.Fatalf("expected error for unknown tier")
	}
}

func TestCatalog(t *testing.T) {
	tiers := Tiers()
	if len(tiers) != 4 {
		t.Fatalf("len(Tiers())=%d, want 4", len(tiers))
	}
	wantIDs := []string{"starter", "growth", "pro", "custom"}
	for i, id := range wantIDs {
		if tiers[i].ID != id {
			t.Fatalf("tiers[%d].ID=%q, want %q", i, tiers[i].ID, id)
		}
	}

	pro, ok := TierByID("pro")
	if !ok {
		t.Fatalf("TierByID(pro) not found")
	}
	if pro.Name != "Professional" || pro.MonthlyPrice != 15000 || pro.SetupFee != 50000 {
		t.Fatalf("pro tier = %+v", pro)
	}

	// Returned slice is a copy; mutating it must not touch the catalog.
	tiers[0].MonthlyPrice = 1
	if again, _ := TierByID("starter"); again.MonthlyPrice != 2500 {
		t.Fatalf("catalog mutated through Tiers() copy")
	}
}
