package backend

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	applog "bookings/internal/log"
	"bookings/internal/remote/appsscript"
	"bookings/internal/remote/memory"
	"bookings/internal/remote/webapp"
)

// DriveReadonlyScope lets a bearer token reach a web app deployed with
// restricted access.
const DriveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentRemote)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case WebAppBackend:
		return f.createWebAppBackend(ctx, config)
	case AppsScriptBackend:
		return f.createAppsScriptBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createWebAppBackend(ctx context.Context, config Config) (*BackendResult, error) {
	var (
		caller *webapp.Caller
		err    error
	)
	if config.hasCredentials() {
		caller, err = webapp.NewAuthenticated(ctx, config.URL, credentialOptions(config, DriveReadonlyScope)...)
	} else {
		caller, err = webapp.New(config.URL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize web app transport: %w", err)
	}

	f.logger.Info("Initialized web app backend", "authenticated", config.hasCredentials())
	return &BackendResult{Caller: caller}, nil
}

func (f *DefaultFactory) createAppsScriptBackend(ctx context.Context, config Config) (*BackendResult, error) {
	caller, err := appsscript.New(ctx, config.ScriptID, credentialOptions(config, appsscript.SpreadsheetsScope)...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Apps Script transport: %w", err)
	}
	caller.DevMode(config.DevMode)

	f.logger.Info("Initialized Apps Script backend", "script_id", config.ScriptID, "dev_mode", config.DevMode)
	return &BackendResult{Caller: caller}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	return &BackendResult{Caller: store}, nil
}

// credentialOptions turns the configured credentials into client options.
// The JSON form wins when both are set.
func credentialOptions(config Config, scopes ...string) []option.ClientOption {
	opts := []option.ClientOption{option.WithScopes(scopes...)}
	switch {
	case config.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(config.CredentialsJSON)))
	case config.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(config.CredentialsFile))
	}
	return opts
}
