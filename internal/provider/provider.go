package provider

import (
	"context"
	"errors"
)

// ErrNoResponse is returned by an adapter when the upstream call succeeded
// at the transport level but produced no usable text.
var ErrNoResponse = errors.New("provider returned no response text")

// Request carries the normalized prompt pieces handed to every adapter.
type Request struct {
	Message string
	System  string
	// Model is a caller hint. An adapter honors it only if it appears in
	// its own model list; otherwise the adapter's default order applies.
	Model string
}

type Response struct {
	Text      string
	Provider  string
	Model     string
	LatencyMs int64
}

// Provider is one external AI backend in the cascade. A nil error implies
// non-empty Text; provider failure is an ordinary error return, never a
// panic past the adapter boundary.
type Provider interface {
	Chat(ctx context.Context, req *Request) (*Response, error)
	Name() string
	// Available is computed once at construction from credential presence
	// and never changes afterwards.
	Available() bool
	Models() []string
}

// PickModel returns hint if it is a member of models, else the empty
// string. Shared by adapters that accept model hints.
func PickModel(hint string, models []string) string {
	for _, m := range models {
		if m == hint {
			return hint
		}
	}
	return ""
}
