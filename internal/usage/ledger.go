// Package usage records monthly AI query counts: premium users by customer id in a
// signed cookie, free-trial users by client IP across a chain of storage layers.
//
// The ledger only reports and records counts. Quota decisions belong to the caller.
package usage

import (
	"context"
	"net/http"
	"time"

	"scentwise-server/internal/domain"
	"scentwise-server/internal/metrics"
	"scentwise-server/internal/token"
)

// Cookie names and lifetimes.
const (
	PremiumCookie = "sw_usage"
	FreeCookie    = "sw_free"

	CookieMaxAge = 32 * 24 * time.Hour
	StoreTTL     = 33 * 24 * time.Hour

	monthLayout = "2006-01"
)

// Usage is a count within a calendar month.
type Usage struct {
	Count int
	Month string
}

// Ledger reads and writes usage counters.
type Ledger struct {
	secret string
	clock  domain.Clock
	logger domain.Logger
	secure bool
	layers []Layer
}

// NewLedger builds a ledger. When store is nil the free-trial chain starts at the
// in-process layer.
func NewLedger(secret string, store domain.CounterStore, clock domain.Clock, logger domain.Logger, secure bool) *Ledger {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	l := &Ledger{secret: secret, clock: clock, logger: logger, secure: secure}
	if store != nil {
		l.layers = append(l.layers, NewStoreLayer(store))
	}
	l.layers = append(l.layers, NewMemoryLayer(clock), NewCookieLayer(secret, secure))
	return l
}

// NewLedgerWithLayers builds a ledger over an explicit free-trial chain.
func NewLedgerWithLayers(secret string, clock domain.Clock, logger domain.Logger, secure bool, layers ...Layer) *Ledger {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &Ledger{secret: secret, clock: clock, logger: logger, secure: secure, layers: layers}
}

// CurrentMonth returns the local "YYYY-MM" of the ledger clock.
func (l *Ledger) CurrentMonth() string {
	return l.clock.Now().Format(monthLayout)
}

// TrialEnabled reports whether free-trial counters can be signed.
func (l *Ledger) TrialEnabled() bool {
	return l.secret != ""
}

type premiumRecord struct {
	Count  int    `json:"c"`
	Month  string `json:"m"`
	UserID string `json:"id"`
	Sig    string `json:"sig"`
}

// ReadPremium returns the caller's count for the current month. A missing, forged,
// stale or foreign cookie reads as zero.
func (l *Ledger) ReadPremium(jar domain.CookieJar, userID string) Usage {
	month := l.CurrentMonth()
	zero := Usage{Count: 0, Month: month}

	var rec premiumRecord
	if !token.Decode(jar.Get(PremiumCookie), &rec) {
		return zero
	}
	if rec.Month == "" || rec.UserID == "" || rec.Sig == "" {
		return zero
	}
	if !token.VerifyUsage(rec.Sig, l.secret, userID, rec.Count, rec.Month) {
		return zero
	}
	if rec.UserID != userID || rec.Month != month || rec.Count < 0 {
		return zero
	}
	return Usage{Count: rec.Count, Month: rec.Month}
}

// WritePremium stores count for the current month in the signed cookie.
func (l *Ledger) WritePremium(jar domain.CookieJar, userID string, count int) {
	month := l.CurrentMonth()
	value, err := token.Encode(premiumRecord{
		Count:  count,
		Month:  month,
		UserID: userID,
		Sig:    token.UsageDigest(l.secret, userID, count, month),
	})
	if err != nil {
		l.logError("Failed to encode premium usage", err)
		return
	}
	jar.Set(counterCookie(PremiumCookie, value, l.secure))
}

// ReadFree walks the free-trial chain. The first layer reporting a value wins; a
// failing layer is skipped.
func (l *Ledger) ReadFree(ctx context.Context, jar domain.CookieJar, ip string) Usage {
	key := Key{IP: ip, Month: l.CurrentMonth(), Jar: jar}
	for _, layer := range l.layers {
		count, found, err := layer.Read(ctx, key)
		if err != nil {
			metrics.UsageLayerErrorsTotal.WithLabelValues(layer.Name(), "read").Inc()
			l.logWarn("Free usage layer read failed", layer.Name(), err)
			continue
		}
		if found {
			return Usage{Count: nonNegative(count), Month: key.Month}
		}
	}
	return Usage{Count: 0, Month: key.Month}
}

// WriteFree writes count to every layer. Layer failures are logged and never surface.
func (l *Ledger) WriteFree(ctx context.Context, jar domain.CookieJar, ip string, count int) {
	key := Key{IP: ip, Month: l.CurrentMonth(), Jar: jar}
	for _, layer := range l.layers {
		if err := layer.Write(ctx, key, count); err != nil {
			metrics.UsageLayerErrorsTotal.WithLabelValues(layer.Name(), "write").Inc()
			l.logWarn("Free usage layer write failed", layer.Name(), err)
		}
	}
}

func (l *Ledger) logWarn(msg, layer string, err error) {
	if l.logger != nil {
		l.logger.Warn(msg, "layer", layer, "error", err)
	}
}

func (l *Ledger) logError(msg string, err error) {
	if l.logger != nil {
		l.logger.Error(msg, err)
	}
}

func counterCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
