package config

import (
	"context"

	"github.com/redis/go-redis/v9"

	"scentwise-server/internal/access"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/gate"
	"scentwise-server/internal/infra/httpclient"
	"scentwise-server/internal/infra/supabase"
	"scentwise-server/internal/ratelimit"
	"scentwise-server/internal/repository"
	"scentwise-server/internal/service"
	"scentwise-server/internal/usage"
	"scentwise-server/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config domain.Config
	Logger domain.Logger
	Clock  domain.Clock

	SupabaseClient       domain.SupabaseClient
	CounterStore         domain.CounterStore
	SubscriptionProvider domain.SubscriptionProvider
	TextGenerator        domain.TextGenerator
	EventRepository      domain.EventRepository

	Gate        *gate.Gate
	Meter       *gate.Meter
	Revalidator *access.Revalidator
	Ledger      *usage.Ledger

	AuthService        domain.AuthService
	RecommendService   domain.RecommendService
	CheckoutService    domain.CheckoutService
	WebhookService     domain.WebhookService
	DiagnosticsService domain.DiagnosticsService

	closers []func()
}

// NewContainer creates a new dependency injection container. Optional backends that
// are not configured, or fail to start, are left nil and their features degrade.
func NewContainer(ctx context.Context) *Container {
	cfg := NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())
	c := &Container{Config: cfg, Logger: appLogger, Clock: domain.SystemClock{}}

	c.initCounterStore(ctx)
	c.initSubscriptionProvider()
	c.initTextGenerator(ctx)
	c.initEventRepository()

	secure := cfg.IsProduction()

	c.Ledger = usage.NewLedger(cfg.GetUsageSecret(), c.CounterStore, c.Clock, appLogger, secure)
	resolver := access.NewResolver(cfg.GetOwnerKey(), cfg.GetSubscriptionSecret(), c.Clock, appLogger, secure)
	c.Revalidator = access.NewRevalidator(c.SubscriptionProvider, appLogger, secure)
	c.Gate = gate.New(ratelimit.New(c.CounterStore, c.Clock, appLogger), resolver, appLogger)
	c.Meter = gate.NewMeter(c.Ledger, appLogger)

	c.AuthService = service.NewAuthService(c.SubscriptionProvider, cfg.GetOwnerKey(), cfg.GetSubscriptionSecret(), c.Clock, appLogger)
	c.RecommendService = service.NewRecommendService(c.TextGenerator, appLogger)
	c.CheckoutService = service.NewCheckoutService(c.SubscriptionProvider, appLogger)
	c.WebhookService = service.NewWebhookService(
		cfg.GetLemonSqueezyWebhookSecret(),
		cfg.GetLemonSqueezyStoreID(),
		c.EventRepository,
		c.Clock,
		appLogger,
	)
	c.DiagnosticsService = service.NewDiagnosticsService(cfg, c.SubscriptionProvider, appLogger)

	c.logMissingSecrets()
	return c
}

func (c *Container) initCounterStore(ctx context.Context) {
	rawURL := c.Config.GetRedisURL()
	if rawURL == "" {
		c.Logger.Info("REDIS_URL not set, counters are per-instance")
		return
	}
	client, err := repository.NewRedisClientFromURL(rawURL)
	if err != nil {
		c.Logger.Error("Redis disabled", err)
		return
	}
	store := repository.NewRedisStore(client,
		repository.WithRedisTimeout(c.Config.GetRedisTimeout()),
		repository.WithRedisPrefix("scentwise:"),
	)
	c.CounterStore = store
	c.closers = append(c.closers, func() { closeRedis(client, c.Logger) })
	if err := store.Ping(ctx); err != nil {
		// Kept enabled: the limiter and ledger fall back per call until Redis answers.
		c.Logger.Warn("Redis not reachable at startup", "error", err)
	}
	c.Logger.Info("Redis counter store enabled")
}

func closeRedis(client *redis.Client, log domain.Logger) {
	if err := client.Close(); err != nil {
		log.Warn("Failed to close redis client", "error", err)
	}
}

func (c *Container) initSubscriptionProvider() {
	hc := httpclient.New(httpclient.DefaultTimeout, httpclient.DefaultDNSRefresh)
	c.closers = append(c.closers, hc.Close)
	c.SubscriptionProvider = repository.NewLemonSqueezyClient(repository.LemonSqueezyConfig{
		APIKey:    c.Config.GetLemonSqueezyAPIKey(),
		APIURL:    c.Config.GetLemonSqueezyAPIURL(),
		StoreID:   c.Config.GetLemonSqueezyStoreID(),
		ProductID: c.Config.GetLemonSqueezyProductID(),
		VariantID: c.Config.GetLemonSqueezyVariantID(),
	}, hc.Client, c.Logger)
}

func (c *Container) initTextGenerator(ctx context.Context) {
	gen, err := repository.NewGeminiGenerator(ctx,
		c.Config.GetGCPProjectID(),
		c.Config.GetGCPLocation(),
		c.Config.GetGeminiModel(),
		c.Logger,
	)
	if err != nil {
		c.Logger.Error("AI generator disabled", err)
		return
	}
	c.TextGenerator = gen
	c.closers = append(c.closers, func() {
		if err := gen.Close(); err != nil {
			c.Logger.Warn("Failed to close AI generator", "error", err)
		}
	})
}

func (c *Container) initEventRepository() {
	if c.Config.GetSupabaseURL() == "" || c.Config.GetSupabaseKey() == "" {
		c.Logger.Info("Supabase not configured, webhook events are logged only")
		return
	}
	c.SupabaseClient = supabase.NewSupabaseClient(c.Config, c.Logger)
	if err := c.SupabaseClient.Initialize(); err != nil {
		c.Logger.Error("Supabase event log disabled", err)
		return
	}
	c.EventRepository = repository.NewSupabaseEventRepository(c.SupabaseClient, c.Logger)
}

func (c *Container) logMissingSecrets() {
	for name, v := range map[string]string{
		"OWNER_KEY":                   c.Config.GetOwnerKey(),
		"SUBSCRIPTION_SECRET":         c.Config.GetSubscriptionSecret(),
		"USAGE_SECRET":                c.Config.GetUsageSecret(),
		"LEMONSQUEEZY_API_KEY":        c.Config.GetLemonSqueezyAPIKey(),
		"LEMONSQUEEZY_WEBHOOK_SECRET": c.Config.GetLemonSqueezyWebhookSecret(),
	} {
		if v == "" {
			c.Logger.Warn("Secret not configured, dependent endpoints are disabled", "name", name)
		}
	}
}

// Close releases background resources in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
