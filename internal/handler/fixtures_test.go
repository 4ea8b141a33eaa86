package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"scentwise-server/internal/access"
	"scentwise-server/internal/config"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/gate"
	"scentwise-server/internal/ratelimit"
	"scentwise-server/internal/service"
	"scentwise-server/internal/usage"
)

const (
	testOwnerKey      = "owner-key"
	testSubSecret     = "sub-secret"
	testUsageSecret   = "usage-secret"
	testWebhookSecret = "webhook-secret"
	testStoreID       = "1"
)

var testNow = time.Date(2026, time.October, 16, 12, 0, 0, 0, time.UTC)

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type fakeProvider struct {
	mu          sync.Mutex
	sub         *domain.Subscription
	findErr     error
	status      domain.SubscriptionStatus
	statusErr   error
	statusCalls int
	checkoutURL string
}

func (p *fakeProvider) FindByEmail(ctx context.Context, email string) (*domain.Subscription, error) {
	if p.findErr != nil {
		return nil, p.findErr
	}
	return p.sub, nil
}

func (p *fakeProvider) FindByOrderID(ctx context.Context, orderID string) (*domain.Subscription, error) {
	if p.findErr != nil {
		return nil, p.findErr
	}
	return p.sub, nil
}

func (p *fakeProvider) CheckStatus(ctx context.Context, subscriptionID, customerID string) (domain.SubscriptionStatus, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.statusCalls++
	return p.status, p.statusErr
}

func (p *fakeProvider) CreateCheckout(ctx context.Context) (string, error) {
	if p.checkoutURL == "" {
		return "", domain.ErrNotConfigured
	}
	return p.checkoutURL, nil
}

func (p *fakeProvider) Probe(ctx context.Context, path string) (int, error) {
	return http.StatusOK, nil
}

func (p *fakeProvider) checks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusCalls
}

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt *domain.Prompt) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "Try **Aventus** by Creed", nil
}

func (g *fakeGenerator) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

type testEnv struct {
	container *config.Container
	clock     *fixedClock
	provider  *fakeProvider
	generator *fakeGenerator
	ledger    *usage.Ledger
	server    *httptest.Server
	client    *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &fixedClock{now: testNow}
	logger := NewMockHandlerLogger()
	provider := &fakeProvider{
		sub:    &domain.Subscription{SubscriptionID: "1001", CustomerID: "42", Email: "buyer@example.com"},
		status: domain.SubscriptionActive,
	}
	generator := &fakeGenerator{}
	cfg := &config.AppConfig{
		OwnerKey:                  testOwnerKey,
		SubscriptionSecret:        testSubSecret,
		UsageSecret:               testUsageSecret,
		LemonSqueezyWebhookSecret: testWebhookSecret,
		LemonSqueezyStoreID:       testStoreID,
	}

	ledger := usage.NewLedger(testUsageSecret, nil, clock, logger, false)
	resolver := access.NewResolver(testOwnerKey, testSubSecret, clock, logger, false)

	container := &config.Container{
		Config:               cfg,
		Logger:               logger,
		Clock:                clock,
		SubscriptionProvider: provider,
		TextGenerator:        generator,
		Gate:                 gate.New(ratelimit.NewMemoryLimiter(clock), resolver, logger),
		Meter:                gate.NewMeter(ledger, logger),
		Revalidator:          access.NewRevalidator(provider, logger, false),
		Ledger:               ledger,
		AuthService:          service.NewAuthService(provider, testOwnerKey, testSubSecret, clock, logger),
		RecommendService:     service.NewRecommendService(generator, logger),
		CheckoutService:      service.NewCheckoutService(provider, logger),
		WebhookService:       service.NewWebhookService(testWebhookSecret, testStoreID, nil, clock, logger),
		DiagnosticsService:   service.NewDiagnosticsService(cfg, provider, logger),
	}

	return &testEnv{container: container, clock: clock, provider: provider, generator: generator, ledger: ledger}
}

// start serves the full router and returns a cookie-keeping client.
func (e *testEnv) start(t *testing.T) *testEnv {
	t.Helper()
	e.server = httptest.NewServer(NewRouter(e.container))
	t.Cleanup(e.server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	e.client = &http.Client{Jar: jar}
	return e
}

func (e *testEnv) do(t *testing.T, method, path, body string, sameOrigin bool, headers ...string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if sameOrigin {
		req.Header.Set("Origin", e.server.URL)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (e *testEnv) setCookies(t *testing.T, cookies ...*http.Cookie) {
	t.Helper()
	u, err := url.Parse(e.server.URL)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	e.client.Jar.SetCookies(u, cookies)
}

func (e *testEnv) cookie(t *testing.T, name string) string {
	t.Helper()
	u, _ := url.Parse(e.server.URL)
	for _, c := range e.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// captureJar collects cookies written outside a request.
type captureJar struct {
	cookies []*http.Cookie
}

func (j *captureJar) Get(string) string  { return "" }
func (j *captureJar) Set(c *http.Cookie) { j.cookies = append(j.cookies, c) }
