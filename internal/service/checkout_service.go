package service

import (
	"context"
	"errors"

	"scentwise-server/internal/domain"
	apperrors "scentwise-server/pkg/errors"
)

type checkoutService struct {
	provider domain.SubscriptionProvider
	logger   domain.Logger
}

func NewCheckoutService(provider domain.SubscriptionProvider, logger domain.Logger) *checkoutService {
	return &checkoutService{provider: provider, logger: logger}
}

// CreateCheckout returns a hosted checkout URL for the configured product variant.
func (s *checkoutService) CreateCheckout(ctx context.Context) (string, error) {
	if s.provider == nil {
		return "", apperrors.NewNotConfiguredError("checkout")
	}

	url, err := s.provider.CreateCheckout(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotConfigured) {
			s.logger.Error("Checkout requested without store or variant configured", err)
			return "", apperrors.NewNotConfiguredError("checkout")
		}
		s.logger.Error("Checkout creation failed", err)
		return "", apperrors.NewUpstreamError("Could not create checkout", err)
	}
	return url, nil
}
