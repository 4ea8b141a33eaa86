package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/token"
	apperrors "scentwise-server/pkg/errors"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T (%v)", err, err)
	}
	return appErr.StatusCode
}

func TestAuthService_LoginWithEmail(t *testing.T) {
	provider := &MockSubscriptionProvider{sub: &domain.Subscription{SubscriptionID: "1001", CustomerID: "42", Email: "buyer@example.com"}}
	service := NewAuthService(provider, "", "sub-secret", fixedClock{testNow}, NewMockLogger())

	session, err := service.LoginWithEmail(context.Background(), "  Buyer@Example.COM ")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if provider.emails[0] != "buyer@example.com" {
		t.Errorf("Expected normalized email, got %q", provider.emails[0])
	}

	sub, res := token.ParseSubscription(session.CookieValue, "sub-secret")
	if !res.OK() {
		t.Fatalf("Expected issued token to verify, got %s", res)
	}
	if sub.SubscriptionID != "1001" || sub.CustomerID != "42" || sub.Email != "buyer@example.com" {
		t.Errorf("Unexpected token contents: %+v", sub)
	}
}

func TestAuthService_LoginWithEmail_Errors(t *testing.T) {
	tests := []struct {
		name        string
		email       string
		secret      string
		providerErr error
		wantStatus  int
	}{
		{"missing email", "  ", "s", nil, http.StatusBadRequest},
		{"bad format", "not-an-email", "s", nil, http.StatusBadRequest},
		{"no secret", "a@b.co", "", nil, http.StatusInternalServerError},
		{"not found", "a@b.co", "s", domain.ErrSubscriptionNotFound, http.StatusNotFound},
		{"upstream auth", "a@b.co", "s", domain.ErrUpstreamAuth, http.StatusBadGateway},
		{"upstream down", "a@b.co", "s", domain.ErrUpstream, http.StatusBadGateway},
		{"provider not configured", "a@b.co", "s", domain.ErrNotConfigured, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &MockSubscriptionProvider{err: tt.providerErr}
			service := NewAuthService(provider, "", tt.secret, nil, NewMockLogger())

			_, err := service.LoginWithEmail(context.Background(), tt.email)
			if err == nil {
				t.Fatal("Expected error")
			}
			if got := statusOf(t, err); got != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, got)
			}
		})
	}
}

func TestAuthService_LoginWithEmail_NotFoundHintsAtOrderNumber(t *testing.T) {
	service := NewAuthService(&MockSubscriptionProvider{err: domain.ErrSubscriptionNotFound}, "", "s", nil, NewMockLogger())
	_, err := service.LoginWithEmail(context.Background(), "a@b.co")

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Message != msgNotFoundByEmail {
		t.Fatalf("Expected not-found hint, got %v", err)
	}
}

func TestAuthService_VerifyOrder(t *testing.T) {
	provider := &MockSubscriptionProvider{sub: &domain.Subscription{SubscriptionID: "123", CustomerID: "42"}}
	service := NewAuthService(provider, "", "sub-secret", nil, NewMockLogger())

	session, err := service.VerifyOrder(context.Background(), "123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if session.Subscription.CustomerID != "42" {
		t.Errorf("Unexpected subscription: %+v", session.Subscription)
	}

	for _, bad := range []string{"", "12a", "123456789012345678901", "-1"} {
		if _, err := service.VerifyOrder(context.Background(), bad); err == nil || statusOf(t, err) != http.StatusBadRequest {
			t.Errorf("Expected 400 for %q, got %v", bad, err)
		}
	}
	if len(provider.orderIDs) != 1 {
		t.Errorf("Expected invalid ids to skip the provider, got %d calls", len(provider.orderIDs))
	}
}

func TestAuthService_VerifyOrder_ProviderRejections(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrOrderInvalid, http.StatusBadRequest},
		{domain.ErrSubscriptionNotFound, http.StatusBadRequest},
		{domain.ErrUpstream, http.StatusBadGateway},
	}
	for _, tt := range tests {
		service := NewAuthService(&MockSubscriptionProvider{err: tt.err}, "", "s", nil, NewMockLogger())
		_, err := service.VerifyOrder(context.Background(), "99")
		if got := statusOf(t, err); got != tt.want {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.want, got)
		}
	}
}

func TestAuthService_LoginOwner(t *testing.T) {
	service := NewAuthService(nil, "owner-key", "", fixedClock{testNow}, NewMockLogger())

	tok, err := service.LoginOwner("owner-key")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !token.VerifyOwner(tok, "owner-key", testNow) {
		t.Error("Expected minted owner token to verify")
	}

	for _, key := range []string{"", "owner-ke", "owner-keyy", "OWNER-KEY"} {
		if _, err := service.LoginOwner(key); err == nil || statusOf(t, err) != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %q, got %v", key, err)
		}
	}

	unconfigured := NewAuthService(nil, "", "", nil, NewMockLogger())
	if _, err := unconfigured.LoginOwner("anything"); err == nil || statusOf(t, err) != http.StatusInternalServerError {
		t.Errorf("Expected 500 without owner key, got %v", err)
	}
	if unconfigured.AuthorizeOwnerKey("") {
		t.Error("Empty key must not authorize against an empty owner key")
	}
	if !service.AuthorizeOwnerKey("owner-key") || service.AuthorizeOwnerKey("nope") {
		t.Error("AuthorizeOwnerKey mismatch")
	}
}
