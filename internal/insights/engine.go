package insights

import (
	"sync"

	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Result is the outcome of one analysis run. It is never modified after
// Analyze returns it.
type Result struct {
	Sensitivity      Sensitivity        `json:"sensitivity"`
	TransactionCount int                `json:"transaction_count"`
	Indicators       []domain.Indicator `json:"indicators"`
	Events           []domain.Event     `json:"events"`
	RiskScore        int                `json:"risk_score"`
}

// Engine runs the stress and life-event detectors over a transaction log.
// Each call to Analyze starts from scratch; the only retained state is a
// pointer to the most recent result.
type Engine struct {
	sensitivity     Sensitivity
	thresholds      ThresholdSet
	startingBalance decimal.Decimal
	log             zerolog.Logger

	mu   sync.RWMutex
	last *Result
}

// Option configures an Engine.
type Option func(*Engine)

// WithSensitivity selects the threshold set. Unknown levels use medium.
func WithSensitivity(s Sensitivity) Option {
	return func(e *Engine) {
		if !s.Valid() {
			s = SensitivityMedium
		}
		e.sensitivity = s
		e.thresholds = ThresholdsFor(s)
	}
}

// WithThresholds overrides the threshold set directly.
func WithThresholds(t ThresholdSet) Option {
	return func(e *Engine) { e.thresholds = t }
}

// WithStartingBalance sets the balance the running balance starts from.
func WithStartingBalance(b decimal.Decimal) Option {
	return func(e *Engine) { e.startingBalance = b }
}

// WithLogger attaches a logger for debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine returns an engine at medium sensitivity with the default
// starting balance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		sensitivity:     SensitivityMedium,
		thresholds:      ThresholdsFor(SensitivityMedium),
		startingBalance: DefaultStartingBalance,
		log:             zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the engine's threshold set.
func (e *Engine) Thresholds() ThresholdSet { return e.thresholds }

// Analyze normalizes raw and runs every detector over it.
func (e *Engine) Analyze(raw []domain.RawTransaction) (*Result, error) {
	txns, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeTransactions(txns), nil
}

// AnalyzeTransactions runs every detector over already-normalized
// transactions sorted ascending by date.
func (e *Engine) AnalyzeTransactions(txns []domain.Transaction) *Result {
	indicators := e.AnalyzeStress(txns)
	events := e.AnalyzeLifeEvents(txns)

	res := &Result{
		Sensitivity:      e.sensitivity,
		TransactionCount: len(txns),
		Indicators:       indicators,
		Events:           events,
		RiskScore:        RiskScore(indicators),
	}
	if res.Indicators == nil {
		res.Indicators = []domain.Indicator{}
	}
	if res.Events == nil {
		res.Events = []domain.Event{}
	}

	e.log.Debug().
		Int("transactions", res.TransactionCount).
		Int("indicators", len(res.Indicators)).
		Int("events", len(res.Events)).
		Int("risk_score", res.RiskScore).
		Str("sensitivity", string(res.Sensitivity)).
		Msg("Analysis complete")

	e.mu.Lock()
	e.last = res
	e.mu.Unlock()
	return res
}

// AnalyzeStress returns the stress indicators ordered by severity.
func (e *Engine) AnalyzeStress(txns []domain.Transaction) []domain.Indicator {
	fees := DetectFees(txns, e.thresholds)
	withdrawals := DetectSmallWithdrawals(txns, e.thresholds)
	payday := DetectPaydayLoans(txns)
	decline := DetectDecliningBalance(txns, e.thresholds, e.startingBalance)

	e.log.Debug().
		Int("fees", len(fees)).
		Int("small_withdrawals", len(withdrawals)).
		Int("payday_loans", len(payday)).
		Int("declining_balance", len(decline)).
		Msg("Stress detectors finished")

	var out []domain.Indicator
	out = append(out, fees...)
	out = append(out, withdrawals...)
	out = append(out, payday...)
	out = append(out, decline...)
	SortIndicators(out)
	return out
}

// AnalyzeLifeEvents returns the life events ordered by date.
func (e *Engine) AnalyzeLifeEvents(txns []domain.Transaction) []domain.Event {
	jobs := DetectJobChanges(txns)
	moves := DetectRelocations(txns)
	trips := DetectTravel(txns)

	e.log.Debug().
		Int("job_changes", len(jobs)).
		Int("relocations", len(moves)).
		Int("trips", len(trips)).
		Msg("Life event detectors finished")

	var out []domain.Event
	out = append(out, jobs...)
	out = append(out, moves...)
	out = append(out, trips...)
	SortEvents(out)
	return out
}

// Last returns the result of the most recent analysis, or nil.
func (e *Engine) Last() *Result {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}
