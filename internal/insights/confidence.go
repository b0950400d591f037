package insights

// ConfidenceFormula is a base score plus conditional boosts, capped. All
// values are in hundredths so sums stay exact.
type ConfidenceFormula struct {
	Base int
	Cap  int
}

// Bonus is a boost applied when its condition holds.
type Bonus struct {
	Points int
	When   bool
}

// Score returns the capped confidence in [0, 1].
func (f ConfidenceFormula) Score(bonuses ...Bonus) float64 {
	total := f.Base
	for _, b := range bonuses {
		if b.When {
			total += b.Points
		}
	}
	if total > f.Cap {
		total = f.Cap
	}
	if total < 0 {
		total = 0
	}
	return float64(total) / 100
}

var (
	jobChangeConfidence  = ConfidenceFormula{Base: 85, Cap: 85}
	relocationConfidence = ConfidenceFormula{Base: 60, Cap: 95}
	travelConfidence     = ConfidenceFormula{Base: 70, Cap: 95}
)

const (
	relocationDepositBoost = 20
	relocationUtilityBoost = 15
	travelDestinationBoost = 20
	travelHighSpendBoost   = 10
)
