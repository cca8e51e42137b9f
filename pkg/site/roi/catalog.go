package roi

// Tier is one row of the deployment pricing catalog. The catalog is fixed at
// build time; there is no runtime mutation path.
type Tier struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	MonthlyPrice float64 `json:"monthly_price"`
	SetupFee     float64 `json:"setup_fee"`
	// Credits is display text; the enterprise tier carries a non-numeric
	// allotment.
	Credits string `json:"credits"`
}

var catalog = []Tier{
	{ID: "starter", Name: "Starter", MonthlyPrice: 2500, SetupFee: 10000, Credits: "2500"},
	{ID: "growth", Name: "Growth", MonthlyPrice: 6500, SetupFee: 25000, Credits: "7500"},
	{ID: "pro", Name: "Professional", MonthlyPrice: 15000, SetupFee: 50000, Credits: "20000"},
	{ID: "custom", Name: "Enterprise", MonthlyPrice: 35500, SetupFee: 150000, Credits: "Custom"},
}

// Tiers returns the catalog in display order. Callers get a copy.
func Tiers() []Tier {
	out := make([]Tier, len(catalog))
	copy(out, catalog)
	return out
}

// TierByID looks up a catalog entry.
func TierByID(id string) (Tier, bool) {
	for _, t := range catalog {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}
