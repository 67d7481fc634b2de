// Package shelf is the local dataset store for a reading-list viewer.
// It persists an in-memory collection of articles and their highlights
// into a single key of a capacity-bounded key-value store, using
// reversible compression with a versioned envelope format, and answers
// faceted filter queries over the same collection.
//
// The persistence path enforces hard limits before every write, so a
// save either replaces the stored value completely or leaves it
// untouched. The decode path is deliberately tolerant: values written
// by older deployments (bare datasets, or strings in no known format)
// are classified and recovered rather than rejected: a user must never
// lose access to previously saved data over a format-detection error.
package shelf

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic handling. Callers can use errors.Is
// to distinguish a breached hard limit (ErrLimitExceeded) from a
// rejected write (ErrWriteFailed). Decode-path ambiguity never surfaces
// as an error; it degrades to legacy metadata instead.
var (
	ErrLimitExceeded = errors.New("dataset limit exceeded")
	ErrWriteFailed   = errors.New("store write failed")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
	ErrInvalidKey    = errors.New("key contains invalid characters")
)

// Limit kinds reported by LimitError.
const (
	LimitArticles   = "articles"
	LimitHighlights = "highlights"
	LimitBytes      = "bytes"
)

// LimitError reports which hard limit a save breached, with the current
// and maximum values so the failure can be explained to the user. It
// wraps ErrLimitExceeded.
type LimitError struct {
	Kind    string // LimitArticles, LimitHighlights or LimitBytes
	Current int
	Max     int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("dataset limit exceeded: %s %d > %d", e.Kind, e.Current, e.Max)
}

func (e *LimitError) Unwrap() error { return ErrLimitExceeded }
