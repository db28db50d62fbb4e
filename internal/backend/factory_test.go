package backend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookings/internal/config"
	"bookings/internal/remote"
	"bookings/internal/remote/memory"
	"bookings/internal/remote/webapp"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{RemoteBackend: "sheets"})
	require.Error(t, err)

	cfg, err := FromAppConfig(&config.Config{
		RemoteBackend:         "appsscript",
		RemoteScriptID:        "abc",
		AppsScriptDevMode:     true,
		GoogleCredentialsJSON: "{}",
	})
	require.NoError(t, err)
	assert.Equal(t, AppsScriptBackend, cfg.Type)
	assert.Equal(t, "abc", cfg.ScriptID)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.hasCredentials())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"webapp", Config{Type: WebAppBackend, URL: "https://example.com/exec"}, false},
		{"webapp without url", Config{Type: WebAppBackend}, true},
		{"appsscript without credentials", Config{Type: AppsScriptBackend, ScriptID: "x"}, true},
		{"appsscript", Config{Type: AppsScriptBackend, ScriptID: "x", CredentialsJSON: "{}"}, false},
		{"unknown", Config{Type: "sqlite"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
}

func TestCreateMemoryBackendFromSeed(t *testing.T) {
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`{"bookings":[{"id":9,"date":"2025-01-05","customerName":"Ali","totalAmount":100,"paymentStatus":"مكتمل"}]}`), 0644))

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, SeedFile: seed})
	require.NoError(t, err)
	require.IsType(t, &memory.Store{}, res.Caller)

	got, err := remote.NewClient(res.Caller, 0).Bookings(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ali", got[0].CustomerName)
}

func TestCreateWebAppBackendWithoutCredentials(t *testing.T) {
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: WebAppBackend, URL: "https://example.com/exec"})
	require.NoError(t, err)
	assert.IsType(t, &webapp.Caller{}, res.Caller)
	assert.Nil(t, res.Cleanup)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	_, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: WebAppBackend})
	require.Error(t, err)
}

func TestBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"webapp", "appsscript", "memory"}, GetBackendTypeStrings())
}
