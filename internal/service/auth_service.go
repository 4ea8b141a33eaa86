package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/token"
	apperrors "scentwise-server/pkg/errors"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	orderIDPattern = regexp.MustCompile(`^\d{1,20}$`)
)

const (
	msgNotFoundByEmail = "No active subscription found for this email. Please make sure you're using the same email address from your LemonSqueezy purchase, or use your order number instead."
	msgUpstreamAuth    = "Subscription service authentication failed. The site owner needs to check the LEMONSQUEEZY_API_KEY setting."
	msgLookupFailed    = "Could not look up subscription. Please try again later."
)

type authService struct {
	provider           domain.SubscriptionProvider
	ownerKey           string
	subscriptionSecret string
	clock              domain.Clock
	logger             domain.Logger
}

func NewAuthService(
	provider domain.SubscriptionProvider,
	ownerKey string,
	subscriptionSecret string,
	clock domain.Clock,
	logger domain.Logger,
) *authService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &authService{
		provider:           provider,
		ownerKey:           ownerKey,
		subscriptionSecret: subscriptionSecret,
		clock:              clock,
		logger:             logger,
	}
}

// LoginWithEmail looks up a paid order for email and issues a subscription token.
func (s *authService) LoginWithEmail(ctx context.Context, email string) (*domain.SubscriptionSession, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, apperrors.NewValidationError("Missing email")
	}
	if !emailPattern.MatchString(email) {
		return nil, apperrors.NewValidationError("Invalid email format")
	}
	if s.provider == nil || s.subscriptionSecret == "" {
		s.logger.Error("Subscription login unavailable", domain.ErrNotConfigured)
		return nil, apperrors.NewNotConfiguredError("subscription provider or secret")
	}

	sub, err := s.provider.FindByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSubscriptionNotFound):
			return nil, apperrors.NewNotFoundError(msgNotFoundByEmail)
		case errors.Is(err, domain.ErrNotConfigured):
			return nil, apperrors.NewNotConfiguredError("subscription provider")
		case errors.Is(err, domain.ErrUpstreamAuth):
			s.logger.Error("Subscription provider rejected credentials", err)
			return nil, apperrors.NewUpstreamError(msgUpstreamAuth, err)
		default:
			s.logger.Error("Subscription lookup by email failed", err)
			return nil, apperrors.NewUpstreamError(msgLookupFailed, err)
		}
	}

	return s.issue(sub)
}

// VerifyOrder checks a single order id and issues a subscription token.
func (s *authService) VerifyOrder(ctx context.Context, orderID string) (*domain.SubscriptionSession, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperrors.NewValidationError("Missing orderId")
	}
	if !orderIDPattern.MatchString(orderID) {
		return nil, apperrors.NewValidationError("Invalid order ID format")
	}
	if s.provider == nil || s.subscriptionSecret == "" {
		s.logger.Error("Order verification unavailable", domain.ErrNotConfigured)
		return nil, apperrors.NewNotConfiguredError("subscription provider or secret")
	}

	sub, err := s.provider.FindByOrderID(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderInvalid):
			return nil, apperrors.NewValidationError("Order not valid")
		case errors.Is(err, domain.ErrSubscriptionNotFound):
			return nil, apperrors.NewValidationError("No subscription found")
		case errors.Is(err, domain.ErrNotConfigured):
			return nil, apperrors.NewNotConfiguredError("subscription provider")
		case errors.Is(err, domain.ErrUpstreamAuth):
			s.logger.Error("Subscription provider rejected credentials", err)
			return nil, apperrors.NewUpstreamError(msgUpstreamAuth, err)
		default:
			s.logger.Error("Order verification failed", err, "order_id", orderID)
			return nil, apperrors.NewUpstreamError("Could not verify order. Please try again later.", err)
		}
	}

	return s.issue(sub)
}

func (s *authService) issue(sub *domain.Subscription) (*domain.SubscriptionSession, error) {
	value, err := token.IssueSubscription(s.subscriptionSecret, sub.SubscriptionID, sub.CustomerID, sub.Email)
	if err != nil {
		return nil, apperrors.NewInternalError("Server error", err)
	}
	s.logger.Info("Subscription token issued", "customer_id", sub.CustomerID, "subscription_id", sub.SubscriptionID)
	return &domain.SubscriptionSession{Subscription: *sub, CookieValue: value}, nil
}

// LoginOwner compares key against the owner key and mints the current owner token.
func (s *authService) LoginOwner(key string) (string, error) {
	if s.ownerKey == "" {
		return "", apperrors.NewNotConfiguredError("owner key")
	}
	if key == "" || !token.Verify(key, s.ownerKey) {
		s.logger.Warn("Owner login rejected")
		return "", apperrors.NewUnauthorizedError("Invalid key")
	}
	return token.MintOwner(s.ownerKey, s.clock.Now()), nil
}

// AuthorizeOwnerKey reports whether key is the owner key.
func (s *authService) AuthorizeOwnerKey(key string) bool {
	return s.ownerKey != "" && key != "" && token.Verify(key, s.ownerKey)
}
