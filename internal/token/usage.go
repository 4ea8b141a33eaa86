package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"strconv"
)

const usageKeyLabel = "sw-usage-key-v1"

// DeriveUsageKey separates the usage-counter secret domain from the subscription token domain.
func DeriveUsageKey(secret string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(usageKeyLabel))
	return mac.Sum(nil)
}

// UsageDigest binds a counter value to its owner and calendar month.
func UsageDigest(secret, id string, count int, month string) string {
	return Sign(DeriveUsageKey(secret), id, strconv.Itoa(count), month)
}

// VerifyUsage reports whether digest matches the counter fields.
func VerifyUsage(digest, secret, id string, count int, month string) bool {
	if secret == "" || digest == "" {
		return false
	}
	return Verify(digest, UsageDigest(secret, id, count, month))
}
