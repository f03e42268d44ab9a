package scraper

import (
	"fmt"
	"time"
)

// MissingCredentialError is returned from scraper construction when a
// source requires an API key that is not configured. Orchestration
// catches it per scraper and skips that source; other sources still run.
type MissingCredentialError struct {
	Source string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("API key required for %s", e.Source)
}

// RateLimitExceededError signals that the upstream returned 429 despite
// local throttling. It is retried with a sleep, and distinguished from
// generic fetch failures so callers can alert on it.
type RateLimitExceededError struct {
	Source     string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return fmt.Sprintf("%s API rate limit exceeded", e.Source)
}

// TransientFetchError covers transport failures and non-2xx responses
// other than 429. The scrape loop decides whether to skip the current
// page/range or abort the source.
type TransientFetchError struct {
	Source string
	URL    string
	Status int
	Err    error
}

func (e *TransientFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch from %s failed: unexpected status code %d", e.Source, e.Status)
	}
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
}

func (e *TransientFetchError) Unwrap() error { return e.Err }

// MalformedItemError marks one record that failed normalization. It is
// logged with the item's natural key and skipped; the batch continues.
type MalformedItemError struct {
	NaturalKey string
	Err        error
}

func (e *MalformedItemError) Error() string {
	return fmt.Sprintf("malformed item %s: %v", e.NaturalKey, e.Err)
}

func (e *MalformedItemError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed batch commit. It triggers rollback of
// the pending batch and is fatal to the current scrape invocation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist batch: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
