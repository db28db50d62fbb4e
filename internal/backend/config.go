package backend

import (
	"fmt"

	"bookings/internal/config"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.RemoteBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.RemoteBackend)
	}

	return Config{
		Type:            backendType,
		URL:             appConfig.RemoteURL,
		ScriptID:        appConfig.RemoteScriptID,
		DevMode:         appConfig.AppsScriptDevMode,
		CredentialsFile: appConfig.GoogleCredentialsFile,
		CredentialsJSON: appConfig.GoogleCredentialsJSON,
		SeedFile:        appConfig.MemorySeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case WebAppBackend:
		if c.URL == "" {
			return fmt.Errorf("web app URL is required for webapp backend")
		}
	case AppsScriptBackend:
		if c.ScriptID == "" {
			return fmt.Errorf("script ID is required for appsscript backend")
		}
		if !c.hasCredentials() {
			return fmt.Errorf("either CredentialsFile or CredentialsJSON must be provided for appsscript backend")
		}
	case MemoryBackend:
		// An empty or missing seed file gives the built-in demo data.
	}
	return nil
}

func (c Config) hasCredentials() bool {
	return c.CredentialsFile != "" || c.CredentialsJSON != ""
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{WebAppBackend, AppsScriptBackend, MemoryBackend}
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
