package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiroan/formwatch/internal/validate"
)

func noEnv(string) (string, bool) { return "", false }

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 800*time.Millisecond, cfg.Form.Debounce.Duration)

	kinds, err := cfg.Kinds()
	require.NoError(t, err)
	assert.Equal(t, validate.Kinds(), kinds)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Form, cfg.Form)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Form.Debounce = Duration{500 * time.Millisecond}
	cfg.Form.FieldDebounce = map[string]Duration{"phone": {200 * time.Millisecond}}
	cfg.Store.Taken = map[string][]string{"email": {"x@y.com"}}
	require.NoError(t, cfg.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "debounce: 500ms")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Form, loaded.Form)
	assert.Equal(t, cfg.Store.Taken, loaded.Store.Taken)

	overrides, err := loaded.FieldDebounces()
	require.NoError(t, err)
	assert.Equal(t, map[validate.Kind]time.Duration{validate.Phone: 200 * time.Millisecond}, overrides)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formwatch.toml")
	body := `
[form]
fields = ["email", "phone"]
debounce = "1s"

[checker]
backend = "http"
url = "http://localhost:8080"
timeout = "2s"

[store.taken]
username = ["admin", "root"]
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Second, cfg.Form.Debounce.Duration)
	assert.Equal(t, "http", cfg.Checker.Backend)

	opts, err := cfg.StoreOptions()
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "root"}, opts.Seed[validate.Username])
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero debounce", func(c *Config) { c.Form.Debounce = Duration{} }},
		{"unknown field", func(c *Config) { c.Form.Fields = []string{"email", "age"} }},
		{"duplicate field", func(c *Config) { c.Form.Fields = []string{"email", "email"} }},
		{"no fields", func(c *Config) { c.Form.Fields = nil }},
		{"unknown checker", func(c *Config) { c.Checker.Backend = "oracle" }},
		{"http without url", func(c *Config) { c.Checker.Backend = "http"; c.Checker.URL = "" }},
		{"unknown store", func(c *Config) { c.Store.Backend = "mongo" }},
		{"phone in taken", func(c *Config) { c.Store.Taken = map[string][]string{"phone": {"9876543210"}} }},
		{"events without url", func(c *Config) { c.Events.Enabled = true; c.Events.URL = "" }},
		{"negative field debounce", func(c *Config) {
			c.Form.FieldDebounce = map[string]Duration{"email": {-time.Second}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FORMWATCH_CHECKER_BACKEND": "store",
		"FORMWATCH_STORE_BACKEND":   "redis",
		"FORMWATCH_REDIS_ADDR":      "cache:6379",
		"FORMWATCH_REDIS_DB":        "2",
		"FORMWATCH_DEBOUNCE":        "300ms",
		"FORMWATCH_EVENTS_ENABLED":  "true",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "store", cfg.Checker.Backend)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 300*time.Millisecond, cfg.Form.Debounce.Duration)
	assert.True(t, cfg.Events.Enabled)
	require.NoError(t, cfg.Validate())

	unchanged := DefaultConfig()
	require.NoError(t, unchanged.ApplyEnv(noEnv))
	assert.Equal(t, DefaultConfig(), unchanged)

	env["FORMWATCH_DEBOUNCE"] = "soon"
	assert.Error(t, DefaultConfig().ApplyEnv(lookup))
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FORMWATCH_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("FORMWATCH_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "loaded", os.Getenv("FORMWATCH_TEST_DOTENV"))
}
