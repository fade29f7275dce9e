package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/repositories"
	pkghttp "github.com/loginwatch/loginwatch/pkg/http"
)

// AttemptHandler serves the paginated login-attempt history to the admin
// dashboard.
type AttemptHandler struct {
	repo *repositories.LoginAttemptRepository
}

// NewAttemptHandler creates a new AttemptHandler
func NewAttemptHandler(repo *repositories.LoginAttemptRepository) *AttemptHandler {
	return &AttemptHandler{repo: repo}
}

// AttemptResponse represents a login attempt in HTTP responses
type AttemptResponse struct {
	ID                  string   `json:"id"`
	UserID              *string  `json:"user_id,omitempty"`
	ClientFingerprint   *string  `json:"client_fingerprint,omitempty"`
	NetworkFingerprint  string   `json:"network_fingerprint"`
	FingerprintFallback bool     `json:"fingerprint_fallback"`
	IPAddress           string   `json:"ip_address"`
	AttemptedAt         string   `json:"attempted_at"`
	Success             bool     `json:"success"`
	FailureReason       *string  `json:"failure_reason,omitempty"`
	Location            string   `json:"location"`
	Country             *string  `json:"country,omitempty"`
	Region              *string  `json:"region,omitempty"`
	City                *string  `json:"city,omitempty"`
	Timezone            *string  `json:"timezone,omitempty"`
	ISP                 *string  `json:"isp,omitempty"`
	IsVPN               bool     `json:"is_vpn"`
	LocationConfidence  float64  `json:"location_confidence"`
	UserAgent           string   `json:"user_agent"`
	LoginMethod         string   `json:"login_method"`
	RiskScore           float64  `json:"risk_score"`
	RiskLevel           string   `json:"risk_level"`
	SecurityFlags       []string `json:"security_flags,omitempty"`
}

// List handles GET /v1/logins with filter and pagination query parameters.
func (h *AttemptHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAttemptFilter(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	attempts, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list login attempts")
		return
	}

	response := make([]*AttemptResponse, len(attempts))
	for i, a := range attempts {
		response[i] = attemptToResponse(a)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"attempts": response,
		"total":    total,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

func parseAttemptFilter(r *http.Request) (models.LoginAttemptFilter, error) {
	q := r.URL.Query()
	filter := models.LoginAttemptFilter{Limit: 50}

	if v := q.Get("user_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, models.ErrBadRequest
		}
		filter.UserID = &id
	}
	if v := q.Get("ip"); v != "" {
		filter.IPAddress = &v
	}
	if v := q.Get("success"); v != "" {
		success, err := strconv.ParseBool(v)
		if err != nil {
			return filter, models.ErrBadRequest
		}
		filter.Success = &success
	}
	if v := q.Get("from"); v != "" {
		from, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, models.ErrBadRequest
		}
		filter.From = &from
	}
	if v := q.Get("to"); v != "" {
		to, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, models.ErrBadRequest
		}
		filter.To = &to
	}
	if v := q.Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			filter.Limit = l
		}
	}
	if v := q.Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			filter.Offset = o
		}
	}

	return filter, nil
}

func attemptToResponse(a *models.LoginAttempt) *AttemptResponse {
	resp := &AttemptResponse{
		ID:                  a.ID.String(),
		ClientFingerprint:   a.ClientFingerprint,
		NetworkFingerprint:  a.NetworkFingerprint,
		FingerprintFallback: a.FingerprintFallback,
		IPAddress:           a.IPAddress,
		AttemptedAt:         a.AttemptedAt.UTC().Format(time.RFC3339),
		Success:             a.Success,
		FailureReason:       a.FailureReason,
		Location:            locationDisplay(a),
		Country:             a.Country,
		Region:              a.Region,
		City:                a.City,
		Timezone:            a.Timezone,
		ISP:                 a.ISP,
		IsVPN:               a.IsVPN,
		LocationConfidence:  a.LocationConfidence,
		UserAgent:           a.UserAgent,
		LoginMethod:         a.LoginMethod,
		RiskScore:           a.RiskScore,
		RiskLevel:           a.RiskLevel,
		SecurityFlags:       a.SecurityFlags,
	}

	if a.UserID != nil {
		id := a.UserID.String()
		resp.UserID = &id
	}

	return resp
}

// locationDisplay builds the "City, Region, Country" string consumed by the
// dashboard, omitting unresolved parts.
func locationDisplay(a *models.LoginAttempt) string {
	display := ""
	for _, part := range []*string{a.City, a.Region, a.Country} {
		if part == nil || *part == "" {
			continue
		}
		if display != "" {
			display += ", "
		}
		display += *part
	}
	if display == "" {
		return "Unknown"
	}
	return display
}
