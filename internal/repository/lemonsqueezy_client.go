package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"scentwise-server/internal/domain"
)

const (
	lemonSqueezyMediaType = "application/vnd.api+json"
	customersPageSize     = 100
	// customerPageLimit bounds the email scan; filter[email] is rejected upstream.
	customerPageLimit = 10
	errorBodyLogLimit = 200
)

// LemonSqueezyConfig holds the provider credentials and product binding.
type LemonSqueezyConfig struct {
	APIKey    string
	APIURL    string
	StoreID   string
	ProductID string
	VariantID string
}

// LemonSqueezyClient implements domain.SubscriptionProvider over the LemonSqueezy REST API.
type LemonSqueezyClient struct {
	httpClient *http.Client
	cfg        LemonSqueezyConfig
	logger     domain.Logger
}

// NewLemonSqueezyClient creates a client. A nil httpClient uses http.DefaultClient.
func NewLemonSqueezyClient(cfg LemonSqueezyConfig, httpClient *http.Client, logger domain.Logger) *LemonSqueezyClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return &LemonSqueezyClient{httpClient: httpClient, cfg: cfg, logger: logger}
}

type lsOrderAttributes struct {
	StoreID        domain.ProviderID `json:"store_id"`
	CustomerID     domain.ProviderID `json:"customer_id"`
	Status         string            `json:"status"`
	UserEmail      string            `json:"user_email"`
	FirstOrderItem struct {
		ProductID domain.ProviderID `json:"product_id"`
	} `json:"first_order_item"`
}

type lsOrder struct {
	ID         domain.ProviderID `json:"id"`
	Attributes lsOrderAttributes `json:"attributes"`
}

type lsCustomer struct {
	ID         domain.ProviderID `json:"id"`
	Attributes struct {
		Email string `json:"email"`
	} `json:"attributes"`
}

type lsSubscription struct {
	ID         domain.ProviderID `json:"id"`
	Attributes struct {
		Status string `json:"status"`
	} `json:"attributes"`
}

type lsLinks struct {
	Next string `json:"next"`
}

func (c *LemonSqueezyClient) configured() bool {
	return c.cfg.APIKey != "" && c.cfg.APIURL != ""
}

// FindByEmail scans the store's customers for email, then returns the first order
// of that customer that is not refunded and belongs to the configured product.
func (c *LemonSqueezyClient) FindByEmail(ctx context.Context, email string) (*domain.Subscription, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	q := url.Values{}
	q.Set("page[size]", strconv.Itoa(customersPageSize))
	if c.cfg.StoreID != "" {
		q.Set("filter[store_id]", c.cfg.StoreID)
	}
	pageURL := c.cfg.APIURL + "/customers?" + q.Encode()

	var customerID string
	for page := 0; page < customerPageLimit && pageURL != ""; page++ {
		var body struct {
			Data  []lsCustomer `json:"data"`
			Links lsLinks      `json:"links"`
		}
		if err := c.getJSON(ctx, pageURL, &body); err != nil {
			return nil, err
		}
		for _, cust := range body.Data {
			if strings.EqualFold(strings.TrimSpace(cust.Attributes.Email), email) {
				customerID = string(cust.ID)
				break
			}
		}
		if customerID != "" {
			break
		}
		pageURL = body.Links.Next
	}
	if customerID == "" {
		return nil, domain.ErrSubscriptionNotFound
	}

	var orders struct {
		Data []lsOrder `json:"data"`
	}
	if err := c.getJSON(ctx, c.cfg.APIURL+"/customers/"+url.PathEscape(customerID)+"/orders", &orders); err != nil {
		return nil, err
	}

	for _, o := range orders.Data {
		if o.Attributes.Status == "refunded" || !c.productMatches(o) {
			continue
		}
		sub := &domain.Subscription{
			SubscriptionID: string(o.ID),
			CustomerID:     customerID,
			Email:          o.Attributes.UserEmail,
		}
		if sub.Email == "" {
			sub.Email = email
		}
		return sub, nil
	}
	return nil, domain.ErrSubscriptionNotFound
}

// FindByOrderID verifies a single order.
func (c *LemonSqueezyClient) FindByOrderID(ctx context.Context, orderID string) (*domain.Subscription, error) {
	if !c.configured() {
		return nil, domain.ErrNotConfigured
	}

	order, err := c.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Attributes.Status == "refunded" || !c.productMatches(*order) || !c.storeMatches(*order) {
		return nil, domain.ErrOrderInvalid
	}
	if order.ID == "" || order.Attributes.CustomerID == "" {
		return nil, domain.ErrSubscriptionNotFound
	}

	return &domain.Subscription{
		SubscriptionID: string(order.ID),
		CustomerID:     string(order.Attributes.CustomerID),
		Email:          order.Attributes.UserEmail,
	}, nil
}

// CheckStatus re-reads the order behind a subscription token and any subscription
// attached to it.
func (c *LemonSqueezyClient) CheckStatus(ctx context.Context, subscriptionID, customerID string) (domain.SubscriptionStatus, error) {
	if !c.configured() {
		return "", domain.ErrNotConfigured
	}

	order, err := c.getOrder(ctx, subscriptionID)
	if errors.Is(err, domain.ErrOrderInvalid) {
		// The order no longer exists upstream.
		return domain.SubscriptionMismatch, nil
	}
	if err != nil {
		return "", err
	}
	if order.Attributes.Status == "refunded" {
		return domain.SubscriptionRefunded, nil
	}
	if !c.productMatches(*order) || string(order.Attributes.CustomerID) != customerID {
		return domain.SubscriptionMismatch, nil
	}

	q := url.Values{}
	q.Set("filter[order_id]", subscriptionID)
	var subs struct {
		Data []lsSubscription `json:"data"`
	}
	if err := c.getJSON(ctx, c.cfg.APIURL+"/subscriptions?"+q.Encode(), &subs); err != nil {
		return "", err
	}
	for _, s := range subs.Data {
		switch s.Attributes.Status {
		case "expired", "unpaid":
			return domain.SubscriptionExpired, nil
		case "paused":
			return domain.SubscriptionPaused, nil
		}
	}
	return domain.SubscriptionActive, nil
}

// CreateCheckout creates an embeddable hosted checkout for the configured variant.
func (c *LemonSqueezyClient) CreateCheckout(ctx context.Context) (string, error) {
	if !c.configured() || c.cfg.StoreID == "" || c.cfg.VariantID == "" {
		return "", domain.ErrNotConfigured
	}

	payload := map[string]interface{}{
		"data": map[string]interface{}{
			"type": "checkouts",
			"attributes": map[string]interface{}{
				"checkout_options": map[string]interface{}{"embed": true},
				"checkout_data":    map[string]interface{}{"custom": map[string]interface{}{}},
			},
			"relationships": map[string]interface{}{
				"store":   map[string]interface{}{"data": map[string]string{"type": "stores", "id": c.cfg.StoreID}},
				"variant": map[string]interface{}{"data": map[string]string{"type": "variants", "id": c.cfg.VariantID}},
			},
		},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checkout: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.cfg.APIURL+"/checkouts", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", lemonSqueezyMediaType)

	var body struct {
		Data struct {
			Attributes struct {
				URL string `json:"url"`
			} `json:"attributes"`
		} `json:"data"`
	}
	if err := c.do(req, &body); err != nil {
		return "", err
	}
	if body.Data.Attributes.URL == "" {
		return "", fmt.Errorf("%w: checkout response without url", domain.ErrUpstream)
	}
	return body.Data.Attributes.URL, nil
}

// Probe issues an authenticated GET and reports only the status code.
func (c *LemonSqueezyClient) Probe(ctx context.Context, path string) (int, error) {
	if !c.configured() {
		return 0, domain.ErrNotConfigured
	}
	req, err := c.newRequest(ctx, http.MethodGet, c.cfg.APIURL+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	return resp.StatusCode, nil
}

func (c *LemonSqueezyClient) getOrder(ctx context.Context, orderID string) (*lsOrder, error) {
	var body struct {
		Data *lsOrder `json:"data"`
	}
	err := c.getJSON(ctx, c.cfg.APIURL+"/orders/"+url.PathEscape(orderID), &body)
	if err != nil {
		var se *statusError
		if errors.As(err, &se) && se.code == http.StatusNotFound {
			return nil, domain.ErrOrderInvalid
		}
		return nil, err
	}
	if body.Data == nil {
		return nil, domain.ErrOrderInvalid
	}
	return body.Data, nil
}

func (c *LemonSqueezyClient) productMatches(o lsOrder) bool {
	return c.cfg.ProductID == "" || string(o.Attributes.FirstOrderItem.ProductID) == c.cfg.ProductID
}

func (c *LemonSqueezyClient) storeMatches(o lsOrder) bool {
	return c.cfg.StoreID == "" || o.Attributes.StoreID == "" || string(o.Attributes.StoreID) == c.cfg.StoreID
}

func (c *LemonSqueezyClient) newRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", lemonSqueezyMediaType)
	return req, nil
}

func (c *LemonSqueezyClient) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// statusError is a non-2xx upstream answer. It unwraps to ErrUpstreamAuth for
// 401/403 and ErrUpstream otherwise.
type statusError struct {
	code int
	path string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("lemonsqueezy %s: HTTP %d", e.path, e.code)
}

func (e *statusError) Unwrap() error {
	if e.code == http.StatusUnauthorized || e.code == http.StatusForbidden {
		return domain.ErrUpstreamAuth
	}
	return domain.ErrUpstream
}

func (c *LemonSqueezyClient) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLogLimit))
		c.logger.Warn("LemonSqueezy request failed",
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body", string(snippet),
		)
		return &statusError{code: resp.StatusCode, path: req.URL.Path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstream, err)
	}
	return nil
}
