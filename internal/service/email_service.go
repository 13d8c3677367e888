package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

// EmailService sends transactional emails.
type EmailService interface {
	SendDecisionGraded(ctx context.Context, toEmail, matchup, result, idempotencyKey string) error
}

// NoopEmailService is used when email notifications are disabled.
type NoopEmailService struct{}

func (s *NoopEmailService) SendDecisionGraded(ctx context.Context, toEmail, matchup, result, idempotencyKey string) error {
	log.Printf("[EmailService] noop send graded notification to=%s matchup=%s result=%s", toEmail, matchup, result)
	return nil
}

// ResendEmailService sends emails via Resend REST API.
type ResendEmailService struct {
	from   string
	client *resend.Client
}

func NewResendEmailService(apiKey, from string) (*ResendEmailService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	return &ResendEmailService{
		from:   from,
		client: resend.NewClient(apiKey),
	}, nil
}

// SendDecisionGraded уведомляет пользователя о результате его решения.
// idempotencyKey защищает от дублей при ретраях сверки.
func (s *ResendEmailService) SendDecisionGraded(ctx context.Context, toEmail, matchup, result, idempotencyKey string) error {
	if toEmail == "" || matchup == "" {
		return fmt.Errorf("toEmail and matchup are required")
	}

	subject := "Your pick was graded"
	body := fmt.Sprintf("The game %s is final. Your decision was graded: %s.", matchup, strings.ToUpper(result))

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{toEmail},
		Subject: subject,
		Text:    body,
		Html:    fmt.Sprintf("<p>The game <strong>%s</strong> is final.</p><p>Your decision was graded: <strong>%s</strong>.</p>", matchup, strings.ToUpper(result)),
	}

	options := &resend.SendEmailOptions{}
	if strings.TrimSpace(idempotencyKey) != "" {
		options.IdempotencyKey = strings.TrimSpace(idempotencyKey)
	}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := s.client.Emails.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		if wait, ok := resendRetryDelay(err, attempt); ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
				continue
			}
		}

		return fmt.Errorf("resend send failed: %w", err)
	}

	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	return 0, false
}
