package service

import (
	"context"
	"sync"

	"scentwise-server/internal/domain"
)

// MockLogger records messages for assertions.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func NewMockLogger() *MockLogger {
	return &MockLogger{
		messages: []string{},
	}
}

func (m *MockLogger) add(s string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, s)
}

func (m *MockLogger) Info(msg string, args ...interface{}) {
	m.add("INFO: " + msg)
}

func (m *MockLogger) Error(msg string, err error, args ...interface{}) {
	if err != nil {
		msg += " - " + err.Error()
	}
	m.add("ERROR: " + msg)
}

func (m *MockLogger) Debug(msg string, args ...interface{}) {
	m.add("DEBUG: " + msg)
}

func (m *MockLogger) Warn(msg string, args ...interface{}) {
	m.add("WARN: " + msg)
}

// MockSubscriptionProvider answers from canned values.
type MockSubscriptionProvider struct {
	mu sync.Mutex

	sub         *domain.Subscription
	err         error
	checkoutURL string
	probeCodes  map[string]int
	probeErr    error

	emails   []string
	orderIDs []string
}

func (m *MockSubscriptionProvider) FindByEmail(ctx context.Context, email string) (*domain.Subscription, error) {
	m.emails = append(m.emails, email)
	return m.sub, m.err
}

func (m *MockSubscriptionProvider) FindByOrderID(ctx context.Context, orderID string) (*domain.Subscription, error) {
	m.orderIDs = append(m.orderIDs, orderID)
	return m.sub, m.err
}

func (m *MockSubscriptionProvider) CheckStatus(ctx context.Context, subscriptionID, customerID string) (domain.SubscriptionStatus, error) {
	return domain.SubscriptionActive, m.err
}

func (m *MockSubscriptionProvider) CreateCheckout(ctx context.Context) (string, error) {
	return m.checkoutURL, m.err
}

func (m *MockSubscriptionProvider) Probe(ctx context.Context, path string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.probeCodes[path], m.probeErr
}

// MockTextGenerator captures the last prompt.
type MockTextGenerator struct {
	result string
	err    error
	last   *domain.Prompt
	calls  int
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt *domain.Prompt) (string, error) {
	m.calls++
	m.last = prompt
	return m.result, m.err
}

// MockEventRepository stores events in memory.
type MockEventRepository struct {
	events []*domain.WebhookEvent
	err    error
}

func (m *MockEventRepository) Store(ctx context.Context, event *domain.WebhookEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}
