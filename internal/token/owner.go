package token

import (
	"strconv"
	"time"
)

const (
	ownerNamespace       = "scentwise-owner-v2"
	legacyOwnerNamespace = "scentwise-owner-v1"

	// OwnerPeriod is the rotation window of the owner token.
	OwnerPeriod = 7 * 24 * time.Hour
)

// LegacyOwnerSunset is the instant after which the non-rotating owner token is rejected.
var LegacyOwnerSunset = time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)

// OwnerPeriodIndex returns the weekly bucket containing t.
func OwnerPeriodIndex(t time.Time) int64 {
	return t.UnixMilli() / OwnerPeriod.Milliseconds()
}

func ownerDigest(ownerKey string, period int64) string {
	return Sign([]byte(ownerKey), ownerNamespace, strconv.FormatInt(period, 10))
}

// MintOwner returns the owner token for the period containing now.
func MintOwner(ownerKey string, now time.Time) string {
	return ownerDigest(ownerKey, OwnerPeriodIndex(now))
}

// VerifyOwner accepts tokens minted in the current or the previous period, and the
// legacy single-digest token until LegacyOwnerSunset.
func VerifyOwner(candidate, ownerKey string, now time.Time) bool {
	if candidate == "" || ownerKey == "" {
		return false
	}
	period := OwnerPeriodIndex(now)
	for _, p := range []int64{period, period - 1} {
		if Verify(candidate, ownerDigest(ownerKey, p)) {
			return true
		}
	}
	if now.Before(LegacyOwnerSunset) {
		return Verify(candidate, Sign([]byte(ownerKey), legacyOwnerNamespace))
	}
	return false
}
