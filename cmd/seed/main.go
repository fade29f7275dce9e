// Command seed submits synthetic login traffic to a running instance. It
// mints a short-lived service token from the shared secret, so it works
// against any environment it shares configuration with.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/loginwatch/loginwatch/internal/auth"
	"github.com/loginwatch/loginwatch/internal/config"
	"github.com/loginwatch/loginwatch/internal/synthetic"
)

func main() {
	target := flag.String("target", "http://localhost:8080", "base URL of the service")
	count := flag.Int("count", 100, "number of attempts to submit")
	seed := flag.Int64("seed", time.Now().UnixNano(), "RNG seed")
	users := flag.Int("users", 10, "size of the synthetic user population")
	failureRate := flag.Float64("failure-rate", 0.2, "fraction of failed attempts")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, 1*time.Hour)
	token, err := tokenManager.Generate(uuid.New(), auth.RoleService)
	if err != nil {
		logger.Error("failed to mint service token", slog.Any("error", err))
		os.Exit(1)
	}

	gen := synthetic.NewGenerator(*seed, *users, *failureRate)
	client := &http.Client{Timeout: 10 * time.Second}

	submitted, failed := 0, 0
	for i := 0; i < *count; i++ {
		event, err := gen.Next()
		if err != nil {
			logger.Error("failed to generate event", slog.Any("error", err))
			os.Exit(1)
		}

		if err := submit(client, *target, token, event); err != nil {
			failed++
			logger.Warn("submit failed", slog.Any("error", err))
			continue
		}
		submitted++
	}

	logger.Info("seed run completed",
		slog.Int("submitted", submitted),
		slog.Int("failed", failed),
		slog.Int64("seed", *seed),
	)
	if failed > 0 {
		os.Exit(1)
	}
}

func submit(client *http.Client, target, token string, event *synthetic.Event) error {
	payload := map[string]any{
		"user_id":                event.UserID.String(),
		"success":                event.Success,
		"login_method":           event.LoginMethod,
		"fingerprint_id":         event.FingerprintID,
		"fingerprint_components": event.Components,
		"ip_address":             event.IPAddress,
		"user_agent":             event.Profile.UA,
	}
	if event.FailureReason != "" {
		payload["failure_reason"] = event.FailureReason
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, target+"/v1/logins/record", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if event.Profile.Lang != "" {
		req.Header.Set("Accept-Language", event.Profile.Lang)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
	return nil
}
