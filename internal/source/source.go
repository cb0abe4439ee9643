// Package source defines the inbound data ports. Adapters fetch one
// collection at a time so a failing upstream domain degrades only its own
// slice of the dashboard.
package source

import (
	"context"
	"fmt"
)

// Fetcher retrieves one collection's records from an upstream. The returned
// value is the slice type registered for the collection (core.Summary for
// the summary collection); the store validates the pairing on replace.
type Fetcher interface {
	Fetch(ctx context.Context, collection string) (records any, err error)
}

// Kind selects a fetch adapter.
type Kind string

const (
	KindREST   Kind = "rest"
	KindMemory Kind = "memory"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindREST, KindMemory:
		return true
	default:
		return false
	}
}

// Config holds adapter construction parameters.
type Config struct {
	Kind Kind

	// REST adapter.
	BaseURL      string
	ServiceToken string

	// Memory adapter.
	DataDirectory string
}

func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid source kind: %q", c.Kind)
	}
	if c.Kind == KindREST && c.BaseURL == "" {
		return fmt.Errorf("base URL is required for the rest source")
	}
	return nil
}
