package synthetic

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var companies = []string{
	"Greenleaf", "Harbor & Co", "Northwind", "Bluebird", "Maple Street",
	"Sunrise", "Evergreen", "Riverbend", "Summit", "Old Town",
}

// Options controls what Generate produces.
type Options struct {
	Start      time.Time
	Days       int
	LifeEvents bool
	Stress     bool
}

// DefaultOptions covers the 90 days before now with every scenario injected.
func DefaultOptions(now time.Time) Options {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -90)
	return Options{Start: start, Days: 90, LifeEvents: true, Stress: true}
}

// Generator produces realistic-looking account activity. A given seed always
// yields the same transactions.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns everyday activity plus the requested scenarios, sorted by date.
func (g *Generator) Generate(opts Options) []domain.RawTransaction {
	if opts.Days <= 0 {
		opts.Days = 90
	}
	txns := g.everyday(opts.Start, opts.Days)
	if opts.LifeEvents {
		txns = append(txns, g.lifeEvents(opts.Start)...)
	}
	if opts.Stress {
		txns = append(txns, g.stress(opts.Start)...)
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date < txns[j].Date })
	return txns
}

func (g *Generator) everyday(start time.Time, days int) []domain.RawTransaction {
	var out []domain.RawTransaction
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)

		if d%14 == 0 {
			out = append(out, record(date, "ACME Corp Payroll Deposit", 2500, "Income", "ACME Corp", domain.TypeDeposit))
		}
		if g.rng.Float64() >= 0.6 {
			continue
		}
		if g.rng.Float64() < 0.4 {
			out = append(out, record(date, g.company()+" Supermarket", -g.uniform(30, 120), "Groceries", g.company(), domain.TypePurchase))
		}
		if d%30 == 15 {
			for _, utility := range []string{"Electric Company", "Water Utility", "Internet Provider"} {
				out = append(out, record(date, utility+" Payment", -g.uniform(50, 150), "Utilities", utility, domain.TypeBillPayment))
			}
		}
		if d%30 == 1 {
			out = append(out, record(date, "Rent Payment", -1200, "Housing", "Property Management", domain.TypeBillPayment))
		}
		if g.rng.Float64() < 0.5 {
			out = append(out, record(date, g.company()+" Cafe", -g.uniform(5, 45), "Dining", g.company(), domain.TypePurchase))
		}
	}
	return out
}

type destination struct {
	city, restaurant, airline, hotel string
}

var destinations = []destination{
	{"Barcelona, Spain", "Cafe Barcelona", "SkyHigh Airlines", "Coastal Resort Hotel"},
	{"Paris, France", "Le Bistro Paris", "Air France", "Paris Grand Hotel"},
	{"Tokyo, Japan", "Sushi House Tokyo", "Japan Airlines", "Tokyo Palace Hotel"},
	{"London, UK", "The London Pub", "British Airways", "Westminster Hotel"},
	{"Rome, Italy", "Trattoria Roma", "Italian Airways", "Roman Empire Hotel"},
	{"Cancun, Mexico", "Beach Bar Cancun", "AeroMexico", "Paradise Resort"},
}

func (g *Generator) lifeEvents(start time.Time) []domain.RawTransaction {
	var out []domain.RawTransaction

	oldCompany := g.pick("ACME Corp", "GlobalTech Inc", "TechCorp", "DataSystems LLC")
	newCompany := g.pick("TechStart Inc", "InnovateCo", "FutureWorks", "NextGen Solutions")
	jobDay := start.AddDate(0, 0, g.between(40, 50))
	out = append(out,
		record(jobDay.AddDate(0, 0, -2), "Final paycheck - "+oldCompany, g.uniform(2200, 2800), "Income", oldCompany, domain.TypeDeposit),
		record(jobDay.AddDate(0, 0, g.between(5, 10)), newCompany+" Payroll Deposit", g.uniform(2800, 3500), "Income", newCompany, domain.TypeDeposit),
	)

	moveDay := start.AddDate(0, 0, g.between(45, 55))
	mover := g.pick("Swift Movers LLC", "Quick Move Services", "City Movers", "RelocationPro")
	apartment := g.pick("New Apartments", "Riverside Complex", "Oak Street Residences", "Metro Living")
	out = append(out,
		record(moveDay.AddDate(0, 0, -g.between(2, 5)), mover, -g.uniform(350, 650), "Moving", mover, domain.TypePurchase),
		record(moveDay, apartment+" - Security Deposit", -g.uniform(1800, 2600), "Housing", apartment, domain.TypePurchase),
		record(moveDay.AddDate(0, 0, g.between(1, 3)), g.pick("City", "Metro", "Regional")+" Electric - New Service Setup",
			-g.uniform(50, 100), "Utilities", "City Electric", domain.TypeBillPayment),
	)

	tripDay := start.AddDate(0, 0, g.between(65, 75))
	dest := destinations[g.rng.Intn(len(destinations))]
	out = append(out,
		record(tripDay.AddDate(0, 0, -g.between(10, 20)), dest.airline, -g.uniform(450, 850), "Travel", dest.airline, domain.TypePurchase),
		located(record(tripDay.AddDate(0, 0, -g.between(5, 12)), dest.hotel, -g.uniform(600, 1200), "Travel", dest.hotel, domain.TypePurchase), dest.city),
		located(record(tripDay, "Foreign Transaction - "+dest.restaurant, -g.uniform(25, 65), "Dining", dest.restaurant, domain.TypePurchase), dest.city),
		located(record(tripDay.AddDate(0, 0, g.between(1, 3)), firstWord(dest.restaurant)+" Souvenir Shop", -g.uniform(40, 120), "Shopping", "Local Shop", domain.TypePurchase), dest.city),
	)
	return out
}

func (g *Generator) stress(start time.Time) []domain.RawTransaction {
	var out []domain.RawTransaction

	day := start.AddDate(0, 0, g.between(55, 70))
	bank := g.pick("MegaBank", "FirstBank", "CityBank", "National Trust")
	out = append(out,
		record(day, "Late Payment Fee - Credit Card", -g.uniform(25, 40), "Fees", bank, domain.TypeFee),
		record(day.AddDate(0, 0, g.between(3, 7)), "Overdraft Fee", -g.uniform(25, 35), "Fees", bank, domain.TypeFee),
	)

	n := g.between(6, 10)
	for i := 0; i < n; i++ {
		desc := "ATM Withdrawal #" + strconv.Itoa(g.between(1000, 9999))
		out = append(out, record(day.AddDate(0, 0, i), desc, -g.uniform(20, 59), "ATM", "ATM", domain.TypeWithdrawal))
	}

	lender := g.pick("QuickCash", "FastMoney", "CashAdvance Plus", "PaydayNow")
	out = append(out, record(day.AddDate(0, 0, g.between(8, 14)), lender+" Advance", g.uniform(300, 600), "Loan", lender, domain.TypeDeposit))
	return out
}

func (g *Generator) company() string { return companies[g.rng.Intn(len(companies))] }

func (g *Generator) pick(options ...string) string { return options[g.rng.Intn(len(options))] }

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int { return lo + g.rng.Intn(hi-lo+1) }

// uniform returns a value in [lo, hi) rounded to cents.
func (g *Generator) uniform(lo, hi float64) float64 {
	return math.Round((lo+g.rng.Float64()*(hi-lo))*100) / 100
}

func record(date time.Time, desc string, amount float64, category, merchant string, typ domain.TransactionType) domain.RawTransaction {
	amt := decimal.NewFromFloat(amount).Round(2)
	return domain.RawTransaction{
		Date:        date.Format(dateLayout),
		Description: desc,
		Amount:      &amt,
		Category:    category,
		Merchant:    merchant,
		Type:        string(typ),
	}
}

func located(r domain.RawTransaction, loc string) domain.RawTransaction {
	r.Location = &loc
	return r
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return s
}
