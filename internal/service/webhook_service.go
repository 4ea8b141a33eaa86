package service

import (
	"context"
	"encoding/json"
	"strings"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
	"scentwise-server/internal/token"
	apperrors "scentwise-server/pkg/errors"

	"github.com/google/uuid"
)

// webhookNamespace seeds event ids so a redelivered body maps to the same id.
var webhookNamespace = uuid.MustParse("6f1c1d2e-8b4a-4f7e-9c3a-2d5e7b9a0c41")

type webhookPayload struct {
	Meta struct {
		EventName string `json:"event_name"`
	} `json:"meta"`
	Data struct {
		ID         domain.ProviderID `json:"id"`
		Attributes struct {
			StoreID    domain.ProviderID `json:"store_id"`
			CustomerID domain.ProviderID `json:"customer_id"`
			UserEmail  string            `json:"user_email"`
			Status     string            `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

type webhookService struct {
	secret  string
	storeID string
	events  domain.EventRepository
	clock   domain.Clock
	logger  domain.Logger
}

// NewWebhookService creates the provider webhook receiver. events may be nil, in
// which case deliveries are only logged.
func NewWebhookService(secret, storeID string, events domain.EventRepository, clock domain.Clock, logger domain.Logger) *webhookService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &webhookService{secret: secret, storeID: storeID, events: events, clock: clock, logger: logger}
}

// Handle authenticates rawBody against the hex HMAC in signature, then logs, counts
// and persists the event. Every authenticated delivery is acknowledged, including
// ones for other stores and ones that cannot be parsed.
func (s *webhookService) Handle(ctx context.Context, rawBody []byte, signature string) (*domain.WebhookEvent, error) {
	if s.secret == "" {
		s.logger.Error("Webhook received without signing secret", domain.ErrNotConfigured)
		return nil, apperrors.NewNotConfiguredError("webhook secret")
	}

	signature = strings.TrimSpace(signature)
	expected := token.Sign([]byte(s.secret), string(rawBody))
	if signature == "" || !token.Verify(signature, expected) {
		s.logger.Warn("Webhook signature verification failed")
		appErr := apperrors.NewUnauthorizedError("Invalid signature")
		appErr.Cause = domain.ErrInvalidSignature
		return nil, appErr
	}

	var payload webhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		s.logger.Warn("Webhook body is not valid JSON, acknowledging", "error", err)
		return nil, nil
	}

	attrs := payload.Data.Attributes
	if s.storeID != "" && string(attrs.StoreID) != s.storeID {
		s.logger.Warn("Webhook store mismatch, ignoring", "store_id", string(attrs.StoreID))
		return nil, nil
	}

	event := &domain.WebhookEvent{
		ID:         uuid.NewSHA1(webhookNamespace, rawBody).String(),
		Name:       payload.Meta.EventName,
		OrderID:    string(payload.Data.ID),
		CustomerID: string(attrs.CustomerID),
		Email:      attrs.UserEmail,
		Status:     attrs.Status,
		StoreID:    string(attrs.StoreID),
		ReceivedAt: s.clock.Now().UTC(),
	}

	s.logEvent(event)

	if s.events != nil {
		if err := s.events.Store(ctx, event); err != nil {
			s.logger.Error("Failed to persist webhook event", err, "event_id", event.ID)
		}
	}
	return event, nil
}

func (s *webhookService) logEvent(e *domain.WebhookEvent) {
	name := e.Name
	switch name {
	case domain.EventOrderCreated:
		s.logger.Info("New order", "order_id", e.OrderID, "customer_id", e.CustomerID)
	case domain.EventSubscriptionCancelled:
		s.logger.Info("Subscription cancelled", "customer_id", e.CustomerID)
	case domain.EventSubscriptionExpired:
		s.logger.Info("Subscription expired", "customer_id", e.CustomerID)
	case domain.EventOrderRefunded:
		s.logger.Info("Order refunded", "order_id", e.OrderID)
	default:
		s.logger.Info("Unhandled webhook event", "event", name)
		name = "other"
	}
	metrics.WebhookEventsTotal.WithLabelValues(name).Inc()
}
