package gate

import (
	"net/http"
	"time"
)

const defaultRateLimitMessage = "Too many requests. Please wait a minute and try again."

// Policy describes how one endpoint is guarded.
type Policy struct {
	// Label prefixes the rate-limit key and names the endpoint in metrics.
	Label   string
	Methods []string
	Max     int
	Window  time.Duration
	// RateLimitMessage overrides the 429 body.
	RateLimitMessage string
	SkipRateLimit    bool
	SkipOriginCheck  bool
}

func (p Policy) allows(method string) bool {
	for _, m := range p.Methods {
		if m == method {
			return true
		}
	}
	return false
}

func (p Policy) limitMessage() string {
	if p.RateLimitMessage != "" {
		return p.RateLimitMessage
	}
	return defaultRateLimitMessage
}

// Endpoint policies.
var (
	LoginPolicy = Policy{
		Label: "login", Methods: []string{http.MethodPost}, Max: 5, Window: time.Minute,
		RateLimitMessage: "Too many attempts. Try again later.",
	}
	OwnerPolicy = Policy{
		Label: "owner", Methods: []string{http.MethodPost, http.MethodDelete}, Max: 5, Window: time.Minute,
		RateLimitMessage: "Too many attempts. Try again later.",
	}
	CheckoutPolicy = Policy{
		Label: "checkout", Methods: []string{http.MethodPost}, Max: 5, Window: time.Minute,
		RateLimitMessage: "Too many attempts. Try again later.",
	}
	VerifyPolicy    = Policy{Label: "verify", Methods: []string{http.MethodPost}, Max: 10, Window: time.Minute}
	TierPolicy      = Policy{Label: "tier", Methods: []string{http.MethodGet}, Max: 30, Window: time.Minute}
	RecommendPolicy = Policy{Label: "recommend", Methods: []string{http.MethodPost}, Max: 20, Window: time.Minute}
	DebugPolicy     = Policy{Label: "debug", Methods: []string{http.MethodGet}, Max: 5, Window: time.Minute}
	// WebhookPolicy is server-to-server: no origin headers and no per-IP limit.
	WebhookPolicy = Policy{Label: "webhook", Methods: []string{http.MethodPost}, SkipRateLimit: true, SkipOriginCheck: true}
)
