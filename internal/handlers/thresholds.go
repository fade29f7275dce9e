package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/loginwatch/loginwatch/internal/auth"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/services"
	pkghttp "github.com/loginwatch/loginwatch/pkg/http"
)

// ThresholdHandler serves the admin-tunable risk decision cutovers.
type ThresholdHandler struct {
	thresholds *services.ThresholdService
}

// NewThresholdHandler creates a new ThresholdHandler
func NewThresholdHandler(thresholds *services.ThresholdService) *ThresholdHandler {
	return &ThresholdHandler{thresholds: thresholds}
}

// ThresholdRequest represents a threshold update request
type ThresholdRequest struct {
	Low    float64 `json:"low" validate:"gte=0,lte=1"`
	Medium float64 `json:"medium" validate:"gte=0,lte=1"`
	High   float64 `json:"high" validate:"gte=0,lte=1"`
	Block  float64 `json:"block" validate:"gte=0,lte=1"`
}

// ThresholdResponse represents the active thresholds
type ThresholdResponse struct {
	Low       float64 `json:"low"`
	Medium    float64 `json:"medium"`
	High      float64 `json:"high"`
	Block     float64 `json:"block"`
	UpdatedBy *string `json:"updated_by,omitempty"`
	UpdatedAt string  `json:"updated_at"`
}

// Get handles GET /v1/thresholds
func (h *ThresholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeThresholds(w, h.thresholds.Get())
}

// Update handles PUT /v1/thresholds
func (h *ThresholdHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "invalid request body")
		return
	}

	if err := ValidateRequest(&req); err != nil {
		pkghttp.WriteValidationError(w, err.Error())
		return
	}

	claims := auth.ClaimsFromRequest(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "missing caller identity")
		return
	}
	actorID, err := claims.ActorID()
	if err != nil {
		pkghttp.WriteUnauthorized(w, "invalid caller identity")
		return
	}

	t := models.Thresholds{
		Low:    req.Low,
		Medium: req.Medium,
		High:   req.High,
		Block:  req.Block,
	}

	if err := h.thresholds.Set(r.Context(), t, actorID); err != nil {
		if errors.Is(err, models.ErrValidation) {
			pkghttp.WriteValidationError(w, err.Error())
			return
		}
		pkghttp.WriteInternalError(w, "failed to update thresholds")
		return
	}

	writeThresholds(w, h.thresholds.Get())
}

func writeThresholds(w http.ResponseWriter, t models.Thresholds) {
	resp := ThresholdResponse{
		Low:       t.Low,
		Medium:    t.Medium,
		High:      t.High,
		Block:     t.Block,
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if t.UpdatedBy != nil {
		actor := t.UpdatedBy.String()
		resp.UpdatedBy = &actor
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
