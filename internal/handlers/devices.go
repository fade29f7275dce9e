package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/auth"
	"github.com/loginwatch/loginwatch/internal/models"
	"github.com/loginwatch/loginwatch/internal/services"
	pkghttp "github.com/loginwatch/loginwatch/pkg/http"
)

// DeviceHandler serves UserDevice listings and the explicit trust/untrust
// actions.
type DeviceHandler struct {
	trustService *services.DeviceTrustService
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(trustService *services.DeviceTrustService) *DeviceHandler {
	return &DeviceHandler{trustService: trustService}
}

// DeviceResponse represents a user device in HTTP responses
type DeviceResponse struct {
	ID                string   `json:"id"`
	UserID            string   `json:"user_id"`
	DeviceFingerprint string   `json:"device_fingerprint"`
	IsTrusted         bool     `json:"is_trusted"`
	TrustChangedBy    *string  `json:"trust_changed_by,omitempty"`
	TrustChangedAt    *string  `json:"trust_changed_at,omitempty"`
	LoginCount        int      `json:"login_count"`
	FirstSeenAt       string   `json:"first_seen_at"`
	LastSeenAt        string   `json:"last_seen_at"`
	LastLoginAt       string   `json:"last_login_at"`
	RiskScore         float64  `json:"risk_score"`
	RiskLevel         string   `json:"risk_level"`
	DeviceType        string   `json:"device_type"`
	BrowserName       string   `json:"browser_name"`
	OSName            string   `json:"os_name"`
	SecurityFlags     []string `json:"security_flags,omitempty"`
}

// List handles GET /v1/devices
func (h *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	devices, err := h.trustService.List(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list devices")
		return
	}

	writeDeviceList(w, devices)
}

// ListForUser handles GET /v1/users/{id}/devices
func (h *DeviceHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "invalid user id")
		return
	}

	limit, offset := parsePagination(r)

	devices, err := h.trustService.ListForUser(r.Context(), userID, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list user devices")
		return
	}

	writeDeviceList(w, devices)
}

// Trust handles POST /v1/devices/{id}/trust
func (h *DeviceHandler) Trust(w http.ResponseWriter, r *http.Request) {
	h.setTrust(w, r, true)
}

// Untrust handles POST /v1/devices/{id}/untrust
func (h *DeviceHandler) Untrust(w http.ResponseWriter, r *http.Request) {
	h.setTrust(w, r, false)
}

func (h *DeviceHandler) setTrust(w http.ResponseWriter, r *http.Request, trusted bool) {
	deviceID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "invalid device id")
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

	var device *models.UserDevice
	if trusted {
		device, err = h.trustService.Trust(r.Context(), deviceID, actorID)
	} else {
		device, err = h.trustService.Untrust(r.Context(), deviceID, actorID)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "device not found")
			return
		}
		pkghttp.WriteInternalError(w, "failed to update device trust")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(deviceToResponse(device))
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 50
	offset = 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if o, err := strconv.Atoi(v); err == nil && o >= 0 {
			offset = o
		}
	}
	return limit, offset
}

func writeDeviceList(w http.ResponseWriter, devices []*models.UserDevice) {
	response := make([]*DeviceResponse, len(devices))
	for i, d := range devices {
		response[i] = deviceToResponse(d)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"devices": response,
		"count":   len(response),
	})
}

func deviceToResponse(d *models.UserDevice) *DeviceResponse {
	resp := &DeviceResponse{
		ID:                d.ID.String(),
		UserID:            d.UserID.String(),
		DeviceFingerprint: d.DeviceFingerprint,
		IsTrusted:         d.IsTrusted,
		LoginCount:        d.LoginCount,
		FirstSeenAt:       d.FirstSeenAt.UTC().Format(time.RFC3339),
		LastSeenAt:        d.LastSeenAt.UTC().Format(time.RFC3339),
		LastLoginAt:       d.LastLoginAt.UTC().Format(time.RFC3339),
		RiskScore:         d.RiskScore,
		RiskLevel:         d.RiskLevel,
		DeviceType:        d.DeviceType,
		BrowserName:       d.BrowserName,
		OSName:            d.OSName,
		SecurityFlags:     d.SecurityFlags,
	}

	if d.TrustChangedBy != nil {
		actor := d.TrustChangedBy.String()
		resp.TrustChangedBy = &actor
	}
	if d.TrustChangedAt != nil {
		at := d.TrustChangedAt.UTC().Format(time.RFC3339)
		resp.TrustChangedAt = &at
	}

	return resp
}
