package service

import (
	"context"
	"fmt"
	"net/http"

	"scentwise-server/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	probeUsersPath  = "/users/me"
	probeOrdersPath = "/orders?page[size]=1"
)

type diagnosticsService struct {
	config   domain.Config
	provider domain.SubscriptionProvider
	logger   domain.Logger
}

func NewDiagnosticsService(config domain.Config, provider domain.SubscriptionProvider, logger domain.Logger) *diagnosticsService {
	return &diagnosticsService{config: config, provider: provider, logger: logger}
}

// Report says which settings are present and probes the provider API concurrently.
// Probe results carry status codes only, never upstream bodies.
func (s *diagnosticsService) Report(ctx context.Context) *domain.ConfigReport {
	apiKey := s.config.GetLemonSqueezyAPIKey()

	report := &domain.ConfigReport{
		Config: map[string]string{
			"LEMONSQUEEZY_API_KEY":        presence(apiKey, "MISSING"),
			"SUBSCRIPTION_SECRET":         presence(s.config.GetSubscriptionSecret(), "MISSING"),
			"USAGE_SECRET":                presence(s.config.GetUsageSecret(), "not set"),
			"LEMONSQUEEZY_STORE_ID":       presence(s.config.GetLemonSqueezyStoreID(), "not set"),
			"LEMONSQUEEZY_PRODUCT_ID":     presence(s.config.GetLemonSqueezyProductID(), "not set"),
			"LEMONSQUEEZY_VARIANT_ID":     presence(s.config.GetLemonSqueezyVariantID(), "MISSING"),
			"LEMONSQUEEZY_WEBHOOK_SECRET": presence(s.config.GetLemonSqueezyWebhookSecret(), "MISSING"),
			"REDIS_URL":                   presence(s.config.GetRedisURL(), "not set"),
			"GCP_PROJECT_ID":              presence(s.config.GetGCPProjectID(), "MISSING"),
			"SUPABASE_URL":                presence(s.config.GetSupabaseURL(), "not set"),
			"OWNER_KEY":                   "set",
			"PRODUCTION":                  fmt.Sprint(s.config.IsProduction()),
		},
		APIKeyTest:    "skipped",
		OrdersAPITest: "skipped",
	}
	if apiKey != "" {
		report.Config["LEMONSQUEEZY_API_KEY"] = fmt.Sprintf("set (%d chars)", len(apiKey))
	}

	if apiKey == "" || s.provider == nil {
		return report
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.APIKeyTest = s.probe(gctx, probeUsersPath)
		return nil
	})
	g.Go(func() error {
		report.OrdersAPITest = s.probe(gctx, probeOrdersPath)
		return nil
	})
	g.Wait()

	return report
}

func (s *diagnosticsService) probe(ctx context.Context, path string) string {
	code, err := s.provider.Probe(ctx, path)
	if err != nil {
		s.logger.Warn("Provider probe failed", "path", path, "error", err)
		return "ERROR: request failed"
	}
	if code >= 200 && code < 300 {
		return fmt.Sprintf("OK (HTTP %d)", code)
	}
	return fmt.Sprintf("FAILED (HTTP %d %s)", code, http.StatusText(code))
}

func presence(v, missing string) string {
	if v != "" {
		return "set"
	}
	return missing
}
