package insights

import (
	"fmt"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	relocationLookbackDays  = 7
	relocationLookaheadDays = 30
	tripGapDays             = 30
	maxTripMerchants        = 3
)

var (
	securityDepositFloor = decimal.NewFromInt(-1000)
	travelHighSpend      = decimal.NewFromInt(500)

	isIncome = AllOf(TypeIs(domain.TypeDeposit), CategoryIs("Income"))
	isMoving = DescriptionMatches(movingKeywords)
	isTravel = AnyOf(DescriptionMatches(travelKeywords), CategoryIs("Travel"))
)

// DetectJobChanges emits an event each time a new employer starts paying
// income, dated at that employer's first payment.
func DetectJobChanges(txns []domain.Transaction) []domain.Event {
	income := Filter(txns, isIncome)

	var employers []string
	byEmployer := make(map[string][]domain.Transaction)
	for _, t := range income {
		if _, seen := byEmployer[t.Merchant]; !seen {
			employers = append(employers, t.Merchant)
		}
		byEmployer[t.Merchant] = append(byEmployer[t.Merchant], t)
	}
	if len(employers) < 2 {
		return nil
	}

	var out []domain.Event
	for i := 1; i < len(employers); i++ {
		prev, next := employers[i-1], employers[i]
		first := byEmployer[next][0].Date
		out = append(out, domain.Event{
			Kind:       domain.EventJobChange,
			Confidence: jobChangeConfidence.Score(),
			Date:       first,
			Details: domain.Details{
				"new_employer":       next,
				"previous_employer":  prev,
				"first_payment_date": first,
				"income_change":      incomeChange(byEmployer[prev], byEmployer[next]),
			},
			Message: fmt.Sprintf("Potential job change detected: New income source from %s", next),
		})
	}
	return out
}

// incomeChange is the percentage change of mean payment from old to new,
// rounded to two places, or nil when either mean is zero.
func incomeChange(old, next []domain.Transaction) any {
	oldAvg, newAvg := meanAmount(old), meanAmount(next)
	if oldAvg.IsZero() || newAvg.IsZero() {
		return nil
	}
	pct := newAvg.Sub(oldAvg).Div(oldAvg).Mul(decimal.NewFromInt(100)).Round(2)
	return pct.InexactFloat64()
}

func meanAmount(txns []domain.Transaction) decimal.Decimal {
	if len(txns) == 0 {
		return decimal.Zero
	}
	var sum decimal.Decimal
	for _, t := range txns {
		sum = sum.Add(t.Amount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(txns))))
}

// DetectRelocations emits one event per moving-related transaction, scored
// by the security deposits and utility setups found around it.
func DetectRelocations(txns []domain.Transaction) []domain.Event {
	var out []domain.Event
	for _, move := range Filter(txns, isMoving) {
		from := addDays(move.Date, -relocationLookbackDays)
		to := addDays(move.Date, relocationLookaheadDays)

		var deposits, utilities int
		for _, t := range txns {
			if t.Date.Before(from) || t.Date.After(to) {
				continue
			}
			if depositKeywords.Matches(t.Description) && t.Amount.LessThan(securityDepositFloor) {
				deposits++
			}
			if utilityKeywords.Matches(t.Description) {
				utilities++
			}
		}

		out = append(out, domain.Event{
			Kind: domain.EventRelocation,
			Confidence: relocationConfidence.Score(
				Bonus{Points: relocationDepositBoost, When: deposits > 0},
				Bonus{Points: relocationUtilityBoost, When: utilities > 0},
			),
			Date: move.Date,
			Details: domain.Details{
				"moving_charge":           move.Amount,
				"moving_company":          move.Merchant,
				"security_deposits_found": deposits,
				"utility_setups_found":    utilities,
			},
			Message: fmt.Sprintf("Potential relocation detected on %s", move.Date.Format(dateLayout)),
		})
	}
	return out
}

// DetectTravel groups travel-related transactions into trips and emits one
// event per trip.
func DetectTravel(txns []domain.Transaction) []domain.Event {
	var out []domain.Event
	for _, trip := range GroupByGap(Filter(txns, isTravel), tripGapDays) {
		start, end := trip[0].Date, trip[len(trip)-1].Date

		var total decimal.Decimal
		var destination *string
		var merchants []string
		seen := make(map[string]bool)
		for _, t := range trip {
			total = total.Add(t.Amount.Abs())
			if destination == nil && t.Location != nil {
				destination = t.Location
			}
			if !seen[t.Merchant] {
				seen[t.Merchant] = true
				if len(merchants) < maxTripMerchants {
					merchants = append(merchants, t.Merchant)
				}
			}
		}

		msg := fmt.Sprintf("Travel detected: %s - %s", start.Format(dateLayout), end.Format(dateLayout))
		var dest any
		if destination != nil {
			dest = *destination
			msg = fmt.Sprintf("Travel to %s: %s - %s", *destination, start.Format(dateLayout), end.Format(dateLayout))
		}

		out = append(out, domain.Event{
			Kind: domain.EventTravel,
			Confidence: travelConfidence.Score(
				Bonus{Points: travelDestinationBoost, When: destination != nil},
				Bonus{Points: travelHighSpendBoost, When: total.GreaterThan(travelHighSpend)},
			),
			Date: start,
			Details: domain.Details{
				"start_date":       start,
				"end_date":         end,
				"duration_days":    daysBetween(start, end),
				"total_spent":      total.Round(2),
				"num_transactions": len(trip),
				"destination":      dest,
				"merchants":        merchants,
			},
			Message: msg,
		})
	}
	return out
}
