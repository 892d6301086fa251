// Package gateway provides the client for the external text-inference
// service that backs language detection and intent classification.
//
// The gateway carries no business logic: it sends a prompt, returns the raw
// completion text, and reports failure. Validation of the completion against
// the closed label vocabularies is the callers' job (internal/sewabot/lang
// and internal/sewabot/intent), as is falling back to their deterministic
// rule paths when the gateway errors.
package gateway

import (
	"context"
	"errors"
)

// ErrUnavailable indicates the inference service could not be reached or
// answered with a non-200 status. Callers treat it as a signal to proceed on
// their rule-based fallback path; it is never surfaced to the citizen.
var ErrUnavailable = errors.New("gateway: inference service unavailable")

// Provider sends a prompt to a text-inference backend and returns the raw
// completion. Implementations must be safe for concurrent use and must honor
// context cancellation.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
