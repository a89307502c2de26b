package models

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is; the typed errors below wrap them.
var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidStrategy  = errors.New("invalid strategy")
)

// InsufficientDataError reports too few historical samples.
type InsufficientDataError struct {
	Have int
	Need int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: have %d historical moves, need %d", e.Have, e.Need)
}

func (e *InsufficientDataError) Unwrap() error { return ErrInsufficientData }

// InvalidInputError reports a non-positive or malformed numeric input.
type InvalidInputError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s=%g: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// InvalidStrategyError reports an unusable strategy payoff profile.
type InvalidStrategyError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidStrategyError) Error() string {
	return fmt.Sprintf("invalid strategy: %s=%s: %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidStrategyError) Unwrap() error { return ErrInvalidStrategy }

// ErrUpstream marks a failure of an external data provider.
var ErrUpstream = errors.New("upstream unavailable")

// UpstreamError wraps a provider failure. Both ErrUpstream and the cause match errors.Is.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() []error { return []error{ErrUpstream, e.Err} }
