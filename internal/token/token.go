// Package token builds and verifies the keyed digests that stand in for server-side
// sessions: the owner token, the subscription token and the usage counter digests.
//
// Every decode and verify path is total over arbitrary input. Malformed or forged
// values are reported through Result, never through a panic or an error that a
// caller could forget to handle.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Delimiter joins signed fields.
const Delimiter = ":"

// Result is the outcome of reading a signed structure.
type Result int

const (
	// Valid means the structure parsed and its digest matched.
	Valid Result = iota
	// Malformed means the value was absent or could not be decoded into the expected shape.
	Malformed
	// Forged means the structure parsed but the digest did not match.
	Forged
)

// OK reports whether the value may be trusted.
func (r Result) OK() bool { return r == Valid }

func (r Result) String() string {
	switch r {
	case Valid:
		return "valid"
	case Malformed:
		return "malformed"
	case Forged:
		return "forged"
	default:
		return "unknown"
	}
}

// constantTimeCompare is swapped in tests to observe when the primitive runs.
var constantTimeCompare = subtle.ConstantTimeCompare

// Sign returns the hex HMAC-SHA256 of fields joined by Delimiter.
func Sign(secret []byte, fields ...string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(fields, Delimiter)))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares candidate to expected. Lengths are checked first; only equal-length
// inputs reach the constant-time comparison.
func Verify(candidate, expected string) bool {
	if len(candidate) != len(expected) {
		return false
	}
	return constantTimeCompare([]byte(candidate), []byte(expected)) == 1
}

// Encode serializes v as JSON and base64 so it can travel as a cookie value.
func Encode(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode into v. It returns false on any failure.
func Decode(value string, v interface{}) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if value == "" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}
