package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/services"
	pkghttp "github.com/loginwatch/loginwatch/pkg/http"
)

// RecordHandler is the auth-flow entry point: every authentication attempt is
// reported here and answered with a score and decision.
type RecordHandler struct {
	recorder *services.RecorderService
	ipConfig *pkghttp.IPConfig
}

// NewRecordHandler creates a new RecordHandler
func NewRecordHandler(recorder *services.RecorderService, ipConfig *pkghttp.IPConfig) *RecordHandler {
	return &RecordHandler{recorder: recorder, ipConfig: ipConfig}
}

// RecordRequest is the attempt report submitted by the auth flow. The
// fingerprint fields are the client-side signal; the server derives its own
// network fingerprint regardless.
type RecordRequest struct {
	UserID                string         `json:"user_id" validate:"omitempty,uuid"`
	Success               bool           `json:"success"`
	FailureReason         string         `json:"failure_reason" validate:"omitempty,max=64"`
	LoginMethod           string         `json:"login_method" validate:"required,login_method"`
	FingerprintID         string         `json:"fingerprint_id" validate:"omitempty,max=64"`
	FingerprintComponents map[string]any `json:"fingerprint_components"`
	// IPAddress overrides the transport address; accepted because the auth
	// flow calls this service on behalf of the end user.
	IPAddress string `json:"ip_address" validate:"omitempty,ip"`
	UserAgent string `json:"user_agent" validate:"omitempty,max=1024"`
}

// RecordResponse carries what the auth flow needs for allow/challenge/block.
type RecordResponse struct {
	AttemptID string  `json:"attempt_id"`
	RiskScore float64 `json:"risk_score"`
	RiskLevel string  `json:"risk_level"`
	Decision  string  `json:"decision"`
}

// Record handles POST /v1/logins/record
func (h *RecordHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req RecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	input := services.RecordInput{
		Success:             req.Success,
		LoginMethod:         req.LoginMethod,
		ClientFingerprintID: req.FingerprintID,
		ClientComponents:    req.FingerprintComponents,
		IPAddress:           req.IPAddress,
		UserAgent:           req.UserAgent,
		AcceptLanguage:      r.Header.Get("Accept-Language"),
	}

	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			pkghttp.WriteBadRequest(w, "invalid user id")
			return
		}
		input.UserID = &id
	}
	if req.FailureReason != "" {
		reason := req.FailureReason
		input.FailureReason = &reason
	}
	if input.IPAddress == "" {
		input.IPAddress = pkghttp.ExtractClientIP(r, h.ipConfig)
	}
	if input.UserAgent == "" {
		input.UserAgent = r.UserAgent()
	}

	result, err := h.recorder.Record(r.Context(), input)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "invalid attempt context")
			return
		}
		pkghttp.WriteInternalError(w, "failed to record attempt")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(RecordResponse{
		AttemptID: result.Attempt.ID.String(),
		RiskScore: result.RiskScore,
		RiskLevel: result.RiskLevel.String(),
		Decision:  string(result.Outcome),
	})
}
