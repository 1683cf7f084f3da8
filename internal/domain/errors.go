package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoProvidersConfigured is returned when the registry is empty.
	ErrNoProvidersConfigured = errors.New("no providers configured")

	// ErrNoAvailableProvider is returned when no provider can be selected at all.
	ErrNoAvailableProvider = errors.New("no available provider")

	// ErrAllProvidersFailed matches AllProvidersFailedError.
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrProviderCallFailed wraps network and HTTP errors from a provider.
	ErrProviderCallFailed = errors.New("provider call failed")

	// ErrRateLimited is returned when a provider's window is full.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrEmbeddingFailed is returned when no valid embedding could be produced.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrCacheMiss indicates no cached entry was found.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrProviderNotFound is returned for unknown provider ids.
	ErrProviderNotFound = errors.New("provider not found")

	// ErrQueueFull is returned when the request queue has no free slot.
	ErrQueueFull = errors.New("request queue full")

	// ErrQueueClosed is returned for requests submitted to or pending in a closed queue.
	ErrQueueClosed = errors.New("request queue closed")
)

// AttemptError records one failed provider attempt.
type AttemptError struct {
	ProviderID string
	Err        error
}

func (e AttemptError) Error() string {
	return fmt.Sprintf("%s: %v", e.ProviderID, e.Err)
}

func (e AttemptError) Unwrap() error { return e.Err }

// AllProvidersFailedError is returned once the fallback pass is exhausted.
type AllProvidersFailedError struct {
	Attempts []AttemptError
}

func (e *AllProvidersFailedError) Error() string {
	if len(e.Attempts) == 0 {
		return ErrAllProvidersFailed.Error()
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		parts = append(parts, attempt.Error())
	}
	return fmt.Sprintf("%s: %s", ErrAllProvidersFailed, strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrAllProvidersFailed) match.
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap exposes each attempt's error.
func (e *AllProvidersFailedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, attempt := range e.Attempts {
		errs = append(errs, attempt)
	}
	return errs
}
