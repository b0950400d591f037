package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dvloznov/finance-insights/internal/api/middleware"
	"github.com/dvloznov/finance-insights/internal/bigquery"
	"github.com/dvloznov/finance-insights/internal/domain"
	"github.com/dvloznov/finance-insights/internal/insights"
	"github.com/dvloznov/finance-insights/internal/jobs"
	"github.com/dvloznov/finance-insights/internal/logger"
	"github.com/dvloznov/finance-insights/internal/metrics"
	"github.com/dvloznov/finance-insights/internal/pipeline"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	dateLayout = "2006-01-02"

	// maxBodyBytes bounds the size of an uploaded transaction log.
	maxBodyBytes = 32 << 20
)

// analysisRequest is the body shared by the synchronous and queued
// analysis endpoints.
type analysisRequest struct {
	Sensitivity     string                  `json:"sensitivity"`
	StartingBalance *decimal.Decimal        `json:"starting_balance"`
	Transactions    []domain.RawTransaction `json:"transactions"`
	StartDate       string                  `json:"start_date"`
	EndDate         string                  `json:"end_date"`
}

func decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (*analysisRequest, error) {
	var req analysisRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %v", err)
	}
	if req.Sensitivity != "" && !insights.Sensitivity(strings.ToLower(req.Sensitivity)).Valid() {
		return nil, fmt.Errorf("sensitivity must be one of low, medium, high")
	}
	return &req, nil
}

// AnalyzeHandler runs analyses synchronously.
type AnalyzeHandler struct {
	base    []insights.Option
	sinks   []pipeline.InsightSink
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewAnalyzeHandler creates a handler whose engines start from base and
// whose results are published to sinks. m may be nil.
func NewAnalyzeHandler(base []insights.Option, m *metrics.Metrics, log zerolog.Logger, sinks ...pipeline.InsightSink) *AnalyzeHandler {
	return &AnalyzeHandler{base: base, sinks: sinks, metrics: m, log: log}
}

// Analyze handles POST /api/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalysisRequest(w, r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := append([]insights.Option{}, h.base...)
	if req.Sensitivity != "" {
		opts = append(opts, insights.WithSensitivity(insights.ParseSensitivity(req.Sensitivity)))
	}
	if req.StartingBalance != nil {
		opts = append(opts, insights.WithStartingBalance(*req.StartingBalance))
	}
	opts = append(opts, insights.WithLogger(logger.FromContext(r.Context())))

	state := &pipeline.PipelineState{AnalysisID: uuid.NewString()}
	res, err := pipeline.RunAnalysisWithState(r.Context(), state,
		pipeline.StaticSource(req.Transactions), insights.NewEngine(opts...), h.sinks...)
	switch {
	case err != nil && insights.IsInputError(err):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	case res == nil:
		h.log.Error().Err(err).Msg("Analysis failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Analysis failed")
		return
	case err != nil:
		// The result is still valid when only publishing failed.
		h.log.Warn().Err(err).Str("analysis_id", state.AnalysisID).Msg("Failed to publish insights")
	}

	h.metrics.ObserveResult(res)
	w.Header().Set("X-Analysis-ID", state.AnalysisID)
	middleware.WriteJSON(w, http.StatusOK, res)
}

// JobsHandler handles job-related endpoints.
type JobsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *JobsHandler {
	return &JobsHandler{
		publisher: publisher,
		store:     store,
		log:       log,
	}
}

// EnqueueAnalysis handles POST /api/analyses. The log is either inline or
// given as a start_date/end_date range of stored transactions.
func (h *JobsHandler) EnqueueAnalysis(w http.ResponseWriter, r *http.Request) {
	req, err := decodeAnalysisRequest(w, r)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := &jobs.AnalysisJob{
		Sensitivity:  req.Sensitivity,
		Transactions: req.Transactions,
	}
	if req.StartingBalance != nil {
		job.StartingBalance = req.StartingBalance.String()
	}

	if req.StartDate != "" || req.EndDate != "" {
		if len(req.Transactions) > 0 {
			middleware.WriteError(w, http.StatusBadRequest, "Provide either transactions or a date range, not both")
			return
		}
		start, end, err := parseDateRange(req.StartDate, req.EndDate, time.Now())
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		job.StartDate, job.EndDate = &start, &end
	}

	if err := h.publisher.PublishAnalysis(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue analysis job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue analysis job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Int("transactions", len(job.Transactions)).Msg("Analysis job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetJob handles GET /api/jobs/{id}
func (h *JobsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if errors.Is(err, jobs.ErrJobNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to get job")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/jobs
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Status: jobs.JobStatus(query.Get("status")),
	}

	var err error
	if filter.Limit, err = intParam(query.Get("limit")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	if filter.Offset, err = intParam(query.Get("offset")); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list jobs")
		return
	}
	if jobsList == nil {
		jobsList = []*jobs.AnalysisJob{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid non-negative integer %q", s)
	}
	return n, nil
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	repo bigquery.TransactionRepository
	log  zerolog.Logger
	now  func() time.Time
}

// NewTransactionsHandler creates a new transactions handler. A nil repo
// makes the endpoint report 503.
func NewTransactionsHandler(repo bigquery.TransactionRepository, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Transaction store not configured")
		return
	}

	query := r.URL.Query()
	startDate, endDate, err := parseDateRange(query.Get("start_date"), query.Get("end_date"), h.now())
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.repo.QueryTransactionsByDateRange(r.Context(), startDate, endDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to query transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to query transactions")
		return
	}

	// Return array directly for frontend compatibility
	if transactions == nil {
		transactions = []*bigquery.TransactionRow{}
	}
	middleware.WriteJSON(w, http.StatusOK, transactions)
}

// parseDateRange defaults to the year ending now.
func parseDateRange(startStr, endStr string, now time.Time) (time.Time, time.Time, error) {
	startDate := now.AddDate(-1, 0, 0)
	endDate := now

	var err error
	if startStr != "" {
		if startDate, err = time.Parse(dateLayout, startStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid start_date format")
		}
	}
	if endStr != "" {
		if endDate, err = time.Parse(dateLayout, endStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid end_date format")
		}
	}
	if endDate.Before(startDate) {
		return time.Time{}, time.Time{}, fmt.Errorf("end_date is before start_date")
	}
	return startDate, endDate, nil
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
