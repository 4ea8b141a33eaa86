package access

import (
	"net/http"
	"time"
)

// Credential cookie names.
const (
	OwnerCookie        = "sw_owner"
	SubscriptionCookie = "sw_sub"
	RevalidationCookie = "sw_sub_checked"
)

// Credential lifetimes.
const (
	OwnerSessionMaxAge        = 14 * 24 * time.Hour
	SubscriptionSessionMaxAge = 30 * 24 * time.Hour
	RevalidationInterval      = 24 * time.Hour
)

// OwnerSessionCookie carries the rotating owner token.
func OwnerSessionCookie(value string, secure bool) *http.Cookie {
	return sessionCookie(OwnerCookie, value, OwnerSessionMaxAge, secure, http.SameSiteStrictMode)
}

// SubscriptionSessionCookie carries the encoded subscription token.
func SubscriptionSessionCookie(value string, secure bool) *http.Cookie {
	return sessionCookie(SubscriptionCookie, value, SubscriptionSessionMaxAge, secure, http.SameSiteLaxMode)
}

// RevalidationMarkerCookie records that the subscription was checked upstream recently.
func RevalidationMarkerCookie(subscriptionID string, secure bool) *http.Cookie {
	return sessionCookie(RevalidationCookie, subscriptionID, RevalidationInterval, secure, http.SameSiteLaxMode)
}

// ExpiredCookie clears name on the client immediately.
func ExpiredCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func sessionCookie(name, value string, maxAge time.Duration, secure bool, sameSite http.SameSite) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	}
}
