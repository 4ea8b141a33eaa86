// Package gate runs the per-endpoint request pipeline: method, origin, rate limit,
// then access resolution. Quota metering for AI endpoints lives in Meter and is
// applied by the handler around its delegate call.
package gate

import (
	"context"
	"encoding/json"
	"net/http"

	"scentwise-server/internal/access"
	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
	"scentwise-server/internal/ratelimit"
	apperrors "scentwise-server/pkg/errors"
)

type contextKey string

const callerContextKey contextKey = "caller"

// Caller is what the gate learned about a request that passed it.
type Caller struct {
	Access domain.Access
	IP     string
	Jar    *Jar
}

// CallerFromContext returns the caller stored by Guard.
func CallerFromContext(ctx context.Context) (*Caller, bool) {
	c, ok := ctx.Value(callerContextKey).(*Caller)
	return c, ok
}

// Gate holds the shared collaborators of every guarded endpoint.
type Gate struct {
	limiter  ratelimit.Limiter
	resolver *access.Resolver
	logger   domain.Logger
}

// New creates a gate.
func New(limiter ratelimit.Limiter, resolver *access.Resolver, logger domain.Logger) *Gate {
	return &Gate{limiter: limiter, resolver: resolver, logger: logger}
}

// Guard wraps next with the pipeline described by policy. Each step short-circuits;
// the origin check runs before any state is touched.
func (g *Gate) Guard(policy Policy, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.allows(r.Method) {
			g.reject(w, policy, "method", apperrors.NewMethodNotAllowedError())
			return
		}

		if !policy.SkipOriginCheck && !ValidOrigin(r) {
			g.logger.Warn("Rejected cross-site request", "endpoint", policy.Label, "origin", r.Header.Get("Origin"), "host", r.Host)
			g.reject(w, policy, "origin", apperrors.NewForbiddenError("Forbidden"))
			return
		}

		ip := ratelimit.ClientIP(r)
		if !policy.SkipRateLimit && g.limiter != nil {
			dec, err := g.limiter.Allow(r.Context(), policy.Label+":"+ip, policy.Max, policy.Window)
			if err != nil {
				g.logger.Error("Rate limiter failed, allowing request", err, "endpoint", policy.Label)
			} else if !dec.Allowed {
				g.reject(w, policy, "rate_limit", apperrors.NewRateLimitedError(policy.limitMessage()))
				return
			}
		}

		jar := NewJar(w, r)
		caller := &Caller{IP: ip, Jar: jar, Access: domain.Access{Tier: domain.TierFree}}
		if g.resolver != nil {
			caller.Access = g.resolver.Resolve(jar)
		}

		ctx := context.WithValue(r.Context(), callerContextKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (g *Gate) reject(w http.ResponseWriter, policy Policy, reason string, appErr *apperrors.AppError) {
	metrics.GateRejectionsTotal.WithLabelValues(policy.Label, reason).Inc()
	WriteError(w, appErr)
}

// WriteError renders appErr as {"error": message} plus its client-visible fields.
func WriteError(w http.ResponseWriter, appErr *apperrors.AppError) {
	body := map[string]interface{}{}
	for k, v := range appErr.Fields {
		body[k] = v
	}
	body["error"] = appErr.Message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(body)
}
