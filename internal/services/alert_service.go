package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/loginwatch/loginwatch/internal/models"
)

// AlertService sends best-effort admin notifications for critical-risk login
// attempts via AWS SES. Send failures are logged and swallowed; alerting is
// telemetry, never part of authentication correctness.
type AlertService struct {
	sesClient   *ses.Client
	fromAddress string
	toAddress   string
	logger      *slog.Logger
}

// NewAlertService creates a new AlertService against AWS SES.
func NewAlertService(region, fromAddress, toAddress string, logger *slog.Logger) (*AlertService, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AlertService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		toAddress:   toAddress,
		logger:      logger,
	}, nil
}

// NotifyCriticalAttempt emails the configured admin address about a
// critical-risk attempt. Runs asynchronously; the login path never waits.
func (s *AlertService) NotifyCriticalAttempt(attempt *models.LoginAttempt) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.send(ctx, attempt); err != nil {
			s.logger.Error("failed to send critical-risk alert",
				slog.String("attempt_id", attempt.ID.String()),
				slog.Any("error", err),
			)
		}
	}()
}

func (s *AlertService) send(ctx context.Context, attempt *models.LoginAttempt) error {
	country := "unknown"
	if attempt.Country != nil {
		country = *attempt.Country
	}
	userID := "unknown"
	if attempt.UserID != nil {
		userID = attempt.UserID.String()
	}

	subject := fmt.Sprintf("Critical-risk login attempt (score %.2f)", attempt.RiskScore)
	textBody := fmt.Sprintf(`A login attempt was scored critical.

Attempt ID:  %s
User ID:     %s
IP address:  %s
Country:     %s
VPN suspect: %t
Success:     %t
Risk score:  %.2f
Flags:       %v
Recorded at: %s

Review the attempt in the admin dashboard.
`,
		attempt.ID.String(),
		userID,
		attempt.IPAddress,
		country,
		attempt.IsVPN,
		attempt.Success,
		attempt.RiskScore,
		attempt.SecurityFlags,
		attempt.AttemptedAt.Format(time.RFC3339),
	)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{s.toAddress},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	if _, err := s.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("ses send failed: %w", err)
	}
	return nil
}
