package handlers

import "net/http"

// Routes groups the handlers served by the API.
type Routes struct {
	Analyze      *AnalyzeHandler
	Jobs         *JobsHandler
	Transactions *TransactionsHandler

	// Metrics serves the Prometheus exposition format; nil disables /metrics.
	Metrics http.Handler
}

// NewRouter registers every route on a fresh ServeMux.
func NewRouter(rt Routes) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/analyze", rt.Analyze.Analyze)

	mux.HandleFunc("POST /api/analyses", rt.Jobs.EnqueueAnalysis)
	mux.HandleFunc("GET /api/jobs", rt.Jobs.ListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", rt.Jobs.GetJob)

	mux.HandleFunc("GET /api/transactions", rt.Transactions.ListTransactions)

	mux.HandleFunc("GET /health", Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}
	return mux
}
