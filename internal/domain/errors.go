package domain

import "errors"

// Domain errors
var (
	ErrNotConfigured        = errors.New("not configured")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrOrderInvalid         = errors.New("order not valid")
	ErrUpstreamAuth         = errors.New("upstream authentication failed")
	ErrUpstream             = errors.New("upstream request failed")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrEmptyGeneration      = errors.New("empty response from model")
)
