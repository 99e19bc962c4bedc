package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stride-works/stride/internal/app/admission"
	"github.com/stride-works/stride/internal/app/income"
	"github.com/stride-works/stride/internal/app/stipend"
	"github.com/stride-works/stride/internal/app/support"
	"github.com/stride-works/stride/internal/domain"
)

// ─── Income API ─────────────────────────────────────────────────────────────

// IncomeAPI exposes the income verification pipeline.
type IncomeAPI struct {
	Service *income.Service
}

type submitIncomeRequest struct {
	UserID string             `json:"user_id"`
	Claim  domain.IncomeClaim `json:"claim"`
}

// HandleSubmit records a new income claim.
// POST /api/income
func (a *IncomeAPI) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitIncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := a.Service.Submit(req.UserID, req.Claim)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

type reviewRequest struct {
	ReviewerID string `json:"reviewer_id"`
	Reason     string `json:"reason,omitempty"`
}

// HandleApprove verifies a submitted record.
// POST /api/income/{id}/approve
func (a *IncomeAPI) HandleApprove(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, total, err := a.Service.Approve(chi.URLParam(r, "id"), req.ReviewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"approved": false,
			"message":  "record is not awaiting review",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"approved":           true,
		"total_verified_usd": total,
	})
}

// HandleReject rejects a submitted record.
// POST /api/income/{id}/reject
func (a *IncomeAPI) HandleReject(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := a.Service.Reject(chi.URLParam(r, "id"), req.ReviewerID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"rejected": false,
			"message":  "record is not awaiting review",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rejected": true})
}

// HandleStats returns the dashboard aggregate for a user.
// GET /api/income/stats/{userID}
func (a *IncomeAPI) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.Service.Stats(chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ─── Stipend API ────────────────────────────────────────────────────────────

// StipendAPI exposes the stipend eligibility engine.
type StipendAPI struct {
	Service *stipend.Service
}

// HandleEligibility returns the current stipend decision for a user.
// GET /api/stipend/eligibility/{userID}
func (a *StipendAPI) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	elig, err := a.Service.CheckEligibility(chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, elig)
}

// HandleReactivate restores a paused account.
// POST /api/stipend/reactivate/{userID}
func (a *StipendAPI) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	if err := a.Service.ReactivateUser(chi.URLParam(r, "userID")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Support API ────────────────────────────────────────────────────────────

// SupportAPI exposes the support request gate. Responses use the
// participant-facing view: the amount field never appears here.
type SupportAPI struct {
	Service *support.Service
}

// HandleEligibility runs the gate checks for a user.
// GET /api/support/eligibility/{userID}
func (a *SupportAPI) HandleEligibility(w http.ResponseWriter, r *http.Request) {
	gate, err := a.Service.CheckEligibility(chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gate)
}

// HandleCreate admits a new support request.
// POST /api/support/requests/{userID}
func (a *SupportAPI) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in domain.SupportRequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	view, gate, err := a.Service.CreateRequest(chi.URLParam(r, "userID"), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if view == nil {
		writeJSON(w, http.StatusForbidden, gate)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleList returns the user's request history, sanitized.
// GET /api/support/requests/{userID}
func (a *SupportAPI) HandleList(w http.ResponseWriter, r *http.Request) {
	views, err := a.Service.ListRequests(chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": views})
}

// ─── Admission API ──────────────────────────────────────────────────────────

// AdmissionAPI exposes the admission decision dispatcher.
type AdmissionAPI struct {
	Service *admission.Service
}

// HandleProcess dispatches the applicant's stored decision.
// POST /api/admission/{applicantID}/process
func (a *AdmissionAPI) HandleProcess(w http.ResponseWriter, r *http.Request) {
	outcome, err := a.Service.ProcessDecision(r.Context(), chi.URLParam(r, "applicantID"))
	if err != nil {
		if errors.Is(err, domain.ErrNoDecision) || errors.Is(err, domain.ErrUnknownDecision) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

type proofRequest struct {
	ProofURL string `json:"proof_url"`
}

// HandleProof submits conditional-task proof.
// POST /api/admission/{applicantID}/tasks/{taskID}/proof
func (a *AdmissionAPI) HandleProof(w http.ResponseWriter, r *http.Request) {
	var req proofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	ok, err := a.Service.SubmitProof(r.Context(),
		chi.URLParam(r, "applicantID"), chi.URLParam(r, "taskID"), req.ProofURL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusConflict, map[string]any{
			"accepted": false,
			"message":  "task is already completed or past its deadline",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

// ─── Error Mapping ──────────────────────────────────────────────────────────

// writeDomainError maps domain sentinels to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrIncomeRecordNotFound),
		errors.Is(err, domain.ErrApplicantNotFound),
		errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnknownCurrency),
		errors.Is(err, domain.ErrUnknownCurrencyType),
		errors.Is(err, domain.ErrZeroAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
