package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	path := writeConfig(t, `{
		"offlineMode": true,
		"auditPath": "/tmp/orders.audit",
		"defaultAmount": 7,
		"completionDelayMs": 50
	}`)

	cfg := NewLoader(zap.NewNop()).Load(path)

	assert.True(t, cfg.OfflineMode)
	assert.Equal(t, "/tmp/orders.audit", cfg.AuditPath)
	assert.Equal(t, int64(7), cfg.DefaultAmount)
	assert.Equal(t, int64(50), cfg.CompletionDelayMS)
	// Absent tunables land on their call-site defaults.
	assert.Equal(t, int64(defaultStepTimeMS), cfg.PaymentTimeoutMS)
}

func TestLoadPathResolution(t *testing.T) {
	explicit := writeConfig(t, `{"defaultAmount": 1}`)
	fromEnv := writeConfig(t, `{"defaultAmount": 2}`)

	t.Run("explicit wins over env", func(t *testing.T) {
		t.Setenv(EnvConfigPath, fromEnv)

		cfg := NewLoader(nil).Load(explicit)
		assert.Equal(t, int64(1), cfg.DefaultAmount)
	})

	t.Run("env wins over default", func(t *testing.T) {
		t.Setenv(EnvConfigPath, fromEnv)

		cfg := NewLoader(nil).Load("")
		assert.Equal(t, int64(2), cfg.DefaultAmount)
	})
}

func TestLoadUnreadableFallsBack(t *testing.T) {
	t.Run("defaults without force-offline", func(t *testing.T) {
		t.Setenv(EnvForceOffline, "")

		cfg := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.False(t, cfg.OfflineMode)
		assert.Equal(t, DefaultAuditPath, cfg.AuditPath)
		assert.Equal(t, int64(0), cfg.DefaultAmount)
		assert.Equal(t, int64(defaultDelayMS), cfg.CompletionDelayMS)
	})

	t.Run("force-offline flag flips the fallback", func(t *testing.T) {
		t.Setenv(EnvForceOffline, "1")

		cfg := NewLoader(nil).Load(filepath.Join(t.TempDir(), "missing.json"))
		assert.True(t, cfg.OfflineMode)
	})

	t.Run("warning names the path", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		missing := filepath.Join(t.TempDir(), "missing.json")

		NewLoader(zap.New(core)).Load(missing)

		entries := logs.FilterMessage("config unreadable, using defaults").All()
		require.Len(t, entries, 1)
		assert.Equal(t, missing, entries[0].ContextMap()["path"])
	})
}

func TestLoadMalformedFallsBack(t *testing.T) {
	t.Setenv(EnvForceOffline, "")
	path := writeConfig(t, `{"offlineMode": tru`)

	core, logs := observer.New(zap.WarnLevel)
	cfg := NewLoader(zap.New(core)).Load(path)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 1, logs.FilterMessage("config malformed, using defaults").Len())
}

func TestLoadNormalizesOutOfRangeTunables(t *testing.T) {
	path := writeConfig(t, `{"auditPath": "", "completionDelayMs": 10000000000000000, "paymentTimeoutMs": -1, "notifyTimeoutMs": 0}`)

	cfg := NewLoader(nil).Load(path)

	assert.Equal(t, DefaultAuditPath, cfg.AuditPath)
	// A delay too large for a time.Duration must not wrap negative.
	assert.Equal(t, int64(defaultDelayMS), cfg.CompletionDelayMS)
	assert.Positive(t, cfg.CompletionDelay())
	assert.Equal(t, int64(defaultStepTimeMS), cfg.PaymentTimeoutMS)
	assert.Equal(t, int64(defaultStepTimeMS), cfg.NotifyTimeoutMS)
}

func TestDefaultActor(t *testing.T) {
	t.Run("from env", func(t *testing.T) {
		t.Setenv(EnvActor, "batch-runner")
		assert.Equal(t, "batch-runner", DefaultActor())
	})

	t.Run("fallback", func(t *testing.T) {
		t.Setenv(EnvActor, "")
		assert.Equal(t, "system", DefaultActor())
	})
}

// FuzzLoad feeds arbitrary file contents through Load and checks the
// returned config is always usable: the loader must never fail, the audit
// path must be non-empty, and every tunable the pipeline depends on must
// convert to a positive duration.
func FuzzLoad(f *testing.F) {
	f.Add([]byte(`{"offlineMode": true}`))
	f.Add([]byte(`{`))
	f.Add([]byte(``))
	f.Add([]byte(`{"completionDelayMs": -5, "auditPath": ""}`))
	f.Add([]byte(`{"completionDelayMs": 10000000000000000}`))

	f.Fuzz(func(t *testing.T, body []byte) {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, body, 0o644); err != nil {
			t.Skip()
		}

		cfg := NewLoader(nil).Load(path)

		if cfg.AuditPath == "" {
			t.Fatalf("empty audit path for body %q", body)
		}
		if cfg.CompletionDelay() <= 0 || cfg.PaymentTimeout() <= 0 || cfg.NotifyTimeout() <= 0 {
			t.Fatalf("unusable tunable for body %q: %+v", body, cfg)
		}
	})
}
