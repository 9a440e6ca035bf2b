package models

import (
	"fmt"
	"time"
)

// OutcomeKind identifies which variant of a FetchOutcome is active
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeNotFound
	OutcomeTransportError
	OutcomeRejectedInput
)

// String returns the lower-case label used in logs and metrics
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransportError:
		return "transport_error"
	case OutcomeRejectedInput:
		return "rejected_input"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// CachePolicy describes how long an outcome may be served from a cache.
// The zero value means the outcome must not be cached.
type CachePolicy struct {
	MaxAge               time.Duration `json:"max_age"`
	StaleWhileRevalidate time.Duration `json:"stale_while_revalidate"`
}

// DefaultCachePolicy keeps contribution data fresh for one hour and allows a
// stale copy to be served for two more hours while it is refreshed.
var DefaultCachePolicy = CachePolicy{
	MaxAge:               time.Hour,
	StaleWhileRevalidate: 2 * time.Hour,
}

// Cacheable reports whether the policy allows caching at all
func (p CachePolicy) Cacheable() bool {
	return p.MaxAge > 0
}

// TTL is the total time an entry may be kept, fresh plus stale
func (p CachePolicy) TTL() time.Duration {
	return p.MaxAge + p.StaleWhileRevalidate
}

// Header renders the policy as a Cache-Control value, or "" when not cacheable.
func (p CachePolicy) Header() string {
	if !p.Cacheable() {
		return ""
	}
	header := fmt.Sprintf("public, s-maxage=%d", int64(p.MaxAge/time.Second))
	if p.StaleWhileRevalidate > 0 {
		header += fmt.Sprintf(", stale-while-revalidate=%d", int64(p.StaleWhileRevalidate/time.Second))
	}
	return header
}

// FetchOutcome is the closed set of results of a contributions lookup.
// Exactly one variant is active, selected by Kind; use the constructors below.
type FetchOutcome struct {
	Kind       OutcomeKind              `json:"kind"`
	Collection *ContributionsCollection `json:"collection,omitempty"`
	Message    string                   `json:"message,omitempty"`
	Cache      CachePolicy              `json:"cache"`
}

// Success wraps a collection returned by the upstream API
func Success(collection *ContributionsCollection, policy CachePolicy) FetchOutcome {
	return FetchOutcome{Kind: OutcomeSuccess, Collection: collection, Cache: policy}
}

// NotFound reports that the identifier does not exist upstream. It is a valid,
// cacheable answer.
func NotFound(message string, policy CachePolicy) FetchOutcome {
	return FetchOutcome{Kind: OutcomeNotFound, Message: message, Cache: policy}
}

// TransportFailure reports a network, protocol or application error. It is never cached.
func TransportFailure(message string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeTransportError, Message: message}
}

// Rejected reports malformed input detected before any network call
func Rejected(message string) FetchOutcome {
	return FetchOutcome{Kind: OutcomeRejectedInput, Message: message}
}

// Calendar returns the nested calendar of a successful outcome, or nil
func (o FetchOutcome) Calendar() *ContributionCalendar {
	if o.Kind != OutcomeSuccess {
		return nil
	}
	return o.Collection.Calendar()
}
