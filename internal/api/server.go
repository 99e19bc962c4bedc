// Package api provides the HTTP transport for the eligibility engine.
// Handlers are thin: every decision lives in the app services, and the
// routes here are the only entry points outside callers may use.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server is the HTTP API server.
type Server struct {
	income    *IncomeAPI
	stipend   *StipendAPI
	support   *SupportAPI
	admission *AdmissionAPI
	log       zerolog.Logger
	gatherer  prometheus.Gatherer
}

// NewServer creates the API server around the feature handler groups.
func NewServer(income *IncomeAPI, stipend *StipendAPI, support *SupportAPI, admission *AdmissionAPI, log zerolog.Logger) *Server {
	return &Server{
		income:    income,
		stipend:   stipend,
		support:   support,
		admission: admission,
		log:       log,
	}
}

// EnableMetrics enables the /metrics endpoint, serving the registry the
// service collectors were registered on.
func (s *Server) EnableMetrics(g prometheus.Gatherer) { s.gatherer = g }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/income", func(r chi.Router) {
		r.Post("/", s.income.HandleSubmit)
		r.Post("/{id}/approve", s.income.HandleApprove)
		r.Post("/{id}/reject", s.income.HandleReject)
		r.Get("/stats/{userID}", s.income.HandleStats)
	})

	r.Get("/api/stipend/eligibility/{userID}", s.stipend.HandleEligibility)
	r.Post("/api/stipend/reactivate/{userID}", s.stipend.HandleReactivate)

	r.Route("/api/support", func(r chi.Router) {
		r.Get("/eligibility/{userID}", s.support.HandleEligibility)
		r.Post("/requests/{userID}", s.support.HandleCreate)
		r.Get("/requests/{userID}", s.support.HandleList)
	})

	r.Route("/api/admission", func(r chi.Router) {
		r.Post("/{applicantID}/process", s.admission.HandleProcess)
		r.Post("/{applicantID}/tasks/{taskID}/proof", s.admission.HandleProof)
	})

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
