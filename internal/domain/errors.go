package domain

import "errors"

// Error categories raised by the field model and the correction engine.
// Callers match them with errors.Is; the concrete error carries the detail.
var (
	// ErrConfiguration reports a missing or unreadable coefficient resource.
	ErrConfiguration = errors.New("configuration error")
	// ErrFormat reports input that violates a structural invariant (coefficient file, dates).
	ErrFormat = errors.New("format error")
	// ErrDomain reports an argument outside the model's domain (colatitude, degree range).
	ErrDomain = errors.New("domain error")
	// ErrMatch reports that no base-station reading is available to match against.
	ErrMatch = errors.New("match error")
)
