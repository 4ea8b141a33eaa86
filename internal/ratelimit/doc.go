// Package ratelimit bounds the request rate per (endpoint, client) pair with a
// fixed-window counter.
//
// The entry point is the Limiter interface:
//
//	dec, err := limiter.Allow(ctx, "login:"+ip, 5, time.Minute)
//
// # Backends
//
//   - MemoryLimiter: an in-process map of {count, window start}. State lives only as
//     long as the process. A sweep runs at most once per housekeeping interval and
//     drops entries far older than the longest window seen, which bounds memory.
//
//   - DurableLimiter: a counter in a shared store (Redis) under "key:windowIndex",
//     where windowIndex = now / window. Increment and expiry happen atomically in the
//     store, so this is the only backend that counts exactly across instances.
//
// New picks the durable backend wrapped in a FallbackLimiter when a store is
// configured, and the memory backend otherwise. FallbackLimiter answers from the
// memory backend for any call on which the durable backend errors or times out; it
// never turns a backend failure into "no limit" or into a rejected request.
//
// # Decisions
//
// The first request for a key is always allowed. A request is denied once the count
// in the current window exceeds max. Counts keep growing during a sustained burst
// until the window rolls; only the allow/deny decision is visible to callers.
package ratelimit
