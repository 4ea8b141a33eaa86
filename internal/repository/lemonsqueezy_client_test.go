package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"scentwise-server/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}

func newTestLemonSqueezy(t *testing.T, handler http.HandlerFunc, cfg LemonSqueezyConfig) *LemonSqueezyClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	if cfg.APIKey == "" {
		cfg.APIKey = "ls-key"
	}
	cfg.APIURL = srv.URL + "/v1/"
	return NewLemonSqueezyClient(cfg, srv.Client(), nopLogger{})
}

func writeAPI(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", lemonSqueezyMediaType)
	fmt.Fprint(w, body)
}

func TestFindByEmail_PaginatesAndMatchesLocally(t *testing.T) {
	var pages int
	var srvURL string
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ls-key", r.Header.Get("Authorization"))
		assert.Equal(t, lemonSqueezyMediaType, r.Header.Get("Accept"))

		switch r.URL.Path {
		case "/v1/customers":
			pages++
			if r.URL.Query().Get("page") == "2" {
				writeAPI(w, `{"data":[{"id":"77","attributes":{"email":"Buyer@Example.com"}}],"links":{}}`)
				return
			}
			assert.Equal(t, "100", r.URL.Query().Get("page[size]"))
			assert.Equal(t, "9", r.URL.Query().Get("filter[store_id]"))
			writeAPI(w, fmt.Sprintf(`{"data":[{"id":1,"attributes":{"email":"other@example.com"}}],"links":{"next":"%s/v1/customers?page=2"}}`, srvURL))
		case "/v1/customers/77/orders":
			writeAPI(w, `{"data":[
				{"id":"500","attributes":{"status":"refunded","first_order_item":{"product_id":3}}},
				{"id":"501","attributes":{"status":"paid","first_order_item":{"product_id":4}}},
				{"id":502,"attributes":{"status":"paid","user_email":"buyer@example.com","first_order_item":{"product_id":3}}}
			]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, LemonSqueezyConfig{StoreID: "9", ProductID: "3"})
	srvURL = c.cfg.APIURL[:len(c.cfg.APIURL)-len("/v1")]

	sub, err := c.FindByEmail(context.Background(), "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, &domain.Subscription{SubscriptionID: "502", CustomerID: "77", Email: "buyer@example.com"}, sub)
}

func TestFindByEmail_StopsAtPageLimit(t *testing.T) {
	var pages int
	var next string
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		pages++
		writeAPI(w, fmt.Sprintf(`{"data":[],"links":{"next":%q}}`, next))
	}, LemonSqueezyConfig{})
	next = c.cfg.APIURL + "/customers?page=next"

	_, err := c.FindByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrSubscriptionNotFound)
	assert.Equal(t, customerPageLimit, pages)
}

func TestFindByEmail_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, domain.ErrUpstreamAuth},
		{"forbidden", http.StatusForbidden, domain.ErrUpstreamAuth},
		{"server error", http.StatusInternalServerError, domain.ErrUpstream},
		{"bad request", http.StatusBadRequest, domain.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"errors":[{"detail":"secret upstream detail"}]}`)
			}, LemonSqueezyConfig{})

			_, err := c.FindByEmail(context.Background(), "buyer@example.com")
			assert.ErrorIs(t, err, tt.want)
			assert.NotContains(t, err.Error(), "secret upstream detail")
		})
	}
}

func TestFindByEmail_NotConfigured(t *testing.T) {
	c := NewLemonSqueezyClient(LemonSqueezyConfig{APIURL: "http://unused"}, nil, nopLogger{})
	_, err := c.FindByEmail(context.Background(), "a@b.co")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func orderHandler(t *testing.T, order string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/orders/123":
			writeAPI(w, order)
		case "/v1/orders/404":
			w.WriteHeader(http.StatusNotFound)
		case "/v1/subscriptions":
			assert.Equal(t, "123", r.URL.Query().Get("filter[order_id]"))
			writeAPI(w, `{"data":[]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}
}

func TestFindByOrderID(t *testing.T) {
	c := newTestLemonSqueezy(t, orderHandler(t,
		`{"data":{"id":"123","attributes":{"status":"paid","customer_id":42,"user_email":"buyer@example.com","store_id":9,"first_order_item":{"product_id":3}}}}`,
	), LemonSqueezyConfig{StoreID: "9", ProductID: "3"})

	sub, err := c.FindByOrderID(context.Background(), "123")
	require.NoError(t, err)
	assert.Equal(t, "123", sub.SubscriptionID)
	assert.Equal(t, "42", sub.CustomerID)
	assert.Equal(t, "buyer@example.com", sub.Email)

	_, err = c.FindByOrderID(context.Background(), "404")
	assert.ErrorIs(t, err, domain.ErrOrderInvalid)
}

func TestFindByOrderID_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		order string
		want  error
	}{
		{"refunded", `{"data":{"id":"123","attributes":{"status":"refunded","customer_id":42,"first_order_item":{"product_id":3}}}}`, domain.ErrOrderInvalid},
		{"other product", `{"data":{"id":"123","attributes":{"status":"paid","customer_id":42,"first_order_item":{"product_id":8}}}}`, domain.ErrOrderInvalid},
		{"other store", `{"data":{"id":"123","attributes":{"status":"paid","customer_id":42,"store_id":1,"first_order_item":{"product_id":3}}}}`, domain.ErrOrderInvalid},
		{"no customer", `{"data":{"id":"123","attributes":{"status":"paid","first_order_item":{"product_id":3}}}}`, domain.ErrSubscriptionNotFound},
		{"empty data", `{"data":null}`, domain.ErrOrderInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestLemonSqueezy(t, orderHandler(t, tt.order), LemonSqueezyConfig{StoreID: "9", ProductID: "3"})
			_, err := c.FindByOrderID(context.Background(), "123")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCheckStatus(t *testing.T) {
	paid := `{"data":{"id":"123","attributes":{"status":"paid","customer_id":"42","first_order_item":{"product_id":"3"}}}}`

	tests := []struct {
		name     string
		order    string
		customer string
		subs     string
		want     domain.SubscriptionStatus
	}{
		{"active", paid, "42", `{"data":[{"id":"1","attributes":{"status":"active"}}]}`, domain.SubscriptionActive},
		{"cancelled still in grace", paid, "42", `{"data":[{"id":"1","attributes":{"status":"cancelled"}}]}`, domain.SubscriptionActive},
		{"refunded", `{"data":{"id":"123","attributes":{"status":"refunded","customer_id":"42"}}}`, "42", "", domain.SubscriptionRefunded},
		{"other customer", paid, "43", "", domain.SubscriptionMismatch},
		{"expired", paid, "42", `{"data":[{"id":"1","attributes":{"status":"expired"}}]}`, domain.SubscriptionExpired},
		{"unpaid", paid, "42", `{"data":[{"id":"1","attributes":{"status":"unpaid"}}]}`, domain.SubscriptionExpired},
		{"paused", paid, "42", `{"data":[{"id":"1","attributes":{"status":"paused"}}]}`, domain.SubscriptionPaused},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
				switch r.URL.Path {
				case "/v1/orders/123":
					writeAPI(w, tt.order)
				case "/v1/subscriptions":
					writeAPI(w, tt.subs)
				}
			}, LemonSqueezyConfig{ProductID: "3"})

			got, err := c.CheckStatus(context.Background(), "123", tt.customer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckStatus_UnknownOrderIsMismatch(t *testing.T) {
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}, LemonSqueezyConfig{})

	got, err := c.CheckStatus(context.Background(), "123", "42")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionMismatch, got)
	assert.True(t, got.Revoked())
}

func TestCheckStatus_UpstreamFailure(t *testing.T) {
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, LemonSqueezyConfig{})

	_, err := c.CheckStatus(context.Background(), "123", "42")
	assert.True(t, errors.Is(err, domain.ErrUpstream))
}

func TestCreateCheckout(t *testing.T) {
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkouts", r.URL.Path)
		assert.Equal(t, lemonSqueezyMediaType, r.Header.Get("Content-Type"))

		var body struct {
			Data struct {
				Type          string `json:"type"`
				Attributes    map[string]map[string]interface{}
				Relationships map[string]struct {
					Data struct {
						Type string `json:"type"`
						ID   string `json:"id"`
					} `json:"data"`
				} `json:"relationships"`
			} `json:"data"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "checkouts", body.Data.Type)
		assert.Equal(t, true, body.Data.Attributes["checkout_options"]["embed"])
		assert.Equal(t, "9", body.Data.Relationships["store"].Data.ID)
		assert.Equal(t, "11", body.Data.Relationships["variant"].Data.ID)

		w.WriteHeader(http.StatusCreated)
		writeAPI(w, `{"data":{"attributes":{"url":"https://store.lemonsqueezy.com/checkout/abc"}}}`)
	}, LemonSqueezyConfig{StoreID: "9", VariantID: "11"})

	url, err := c.CreateCheckout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://store.lemonsqueezy.com/checkout/abc", url)
}

func TestCreateCheckout_MissingURLAndConfig(t *testing.T) {
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPI(w, `{"data":{"attributes":{}}}`)
	}, LemonSqueezyConfig{StoreID: "9", VariantID: "11"})
	_, err := c.CreateCheckout(context.Background())
	assert.ErrorIs(t, err, domain.ErrUpstream)

	c = newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}, LemonSqueezyConfig{StoreID: "9"})
	_, err = c.CreateCheckout(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestProbe(t *testing.T) {
	c := newTestLemonSqueezy(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/users/me" {
			writeAPI(w, `{"data":{}}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}, LemonSqueezyConfig{})

	code, err := c.Probe(context.Background(), "/users/me")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, code)

	code, err = c.Probe(context.Background(), "/orders?page[size]=1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, code)
}
