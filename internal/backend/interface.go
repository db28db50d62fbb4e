// Package backend builds the remote API transport the configuration asks
// for.
package backend

import (
	"context"

	"bookings/internal/remote"
)

// CleanupFunc releases transport resources.
type CleanupFunc func() error

// BackendResult contains the transport and an optional cleanup function.
type BackendResult struct {
	Caller  remote.Caller
	Cleanup CleanupFunc
}

// Factory creates transports from configuration.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds what each transport needs.
type Config struct {
	Type BackendType

	// Web app
	URL string

	// Apps Script Execution API
	ScriptID string
	DevMode  bool

	// Google credentials; required by appsscript, optional for webapp.
	CredentialsFile string
	CredentialsJSON string

	// Memory
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	WebAppBackend     BackendType = "webapp"
	AppsScriptBackend BackendType = "appsscript"
	MemoryBackend     BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case WebAppBackend, AppsScriptBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
