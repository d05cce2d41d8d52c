// Package config resolves per-invocation pipeline configuration.
//
// Configuration is read fresh on every pipeline call from a JSON file. A
// missing or malformed file is never an error: the loader falls back to
// built-in defaults and reports the problem at warning level, so an
// unreadable config can degrade the pipeline but not stop it.
package config

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// Environment variables honored by the loader and the pipeline.
const (
	EnvConfigPath   = "ORDER_CONFIG_PATH"   // default config file location
	EnvForceOffline = "ORDER_FORCE_OFFLINE" // offline mode when the config file is unreadable
	EnvActor        = "ORDER_ACTOR"         // default "started-by" identity
)

// Environment variables honored by the server process.
const (
	EnvAddr      = "ORDER_ADDR"      // listen address, default ":8080"
	EnvRedisURL  = "ORDER_REDIS_URL" // non-empty selects the Redis work queue
	EnvTemplates = "ORDER_TEMPLATES" // notification template catalog path
	EnvWorkers   = "ORDER_WORKERS"   // queue poller count
)

// Built-in fallbacks. Zero or missing file values resolve to these, matching
// the call-site defaults of the legacy workflow.
const (
	DefaultPath       = "config.json"
	DefaultAuditPath  = "audit.log"
	defaultDelayMS    = 200
	defaultStepTimeMS = 5000
)

// maxTunableMS is the largest millisecond tunable that still converts to a
// time.Duration; anything larger is treated like a missing value.
const maxTunableMS = math.MaxInt64 / int64(time.Millisecond)

// Config is the bag of optional tunables recognized in the JSON document.
// Unknown keys are ignored.
type Config struct {
	OfflineMode       bool   `json:"offlineMode"`
	AuditPath         string `json:"auditPath"`
	DefaultAmount     int64  `json:"defaultAmount"`
	CompletionDelayMS int64  `json:"completionDelayMs"`
	PaymentTimeoutMS  int64  `json:"paymentTimeoutMs"`
	NotifyTimeoutMS   int64  `json:"notifyTimeoutMs"`
}

// CompletionDelay returns the delay before the post-result finalization.
func (c Config) CompletionDelay() time.Duration {
	return time.Duration(c.CompletionDelayMS) * time.Millisecond
}

// PaymentTimeout bounds one payment gateway call.
func (c Config) PaymentTimeout() time.Duration {
	return time.Duration(c.PaymentTimeoutMS) * time.Millisecond
}

// NotifyTimeout bounds one notification send.
func (c Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutMS) * time.Millisecond
}

// Default returns the fallback configuration used when no file is readable.
// Offline mode is taken from the force-offline environment flag.
func Default() Config {
	cfg := Config{
		OfflineMode:       envBool(EnvForceOffline),
		AuditPath:         DefaultAuditPath,
		CompletionDelayMS: defaultDelayMS,
		PaymentTimeoutMS:  defaultStepTimeMS,
		NotifyTimeoutMS:   defaultStepTimeMS,
	}
	return cfg
}

// DefaultActor resolves the "started-by" stamp applied when the caller does
// not supply one.
func DefaultActor() string {
	if actor := os.Getenv(EnvActor); actor != "" {
		return actor
	}
	return "system"
}

// Loader reads pipeline configuration.
type Loader struct {
	log *zap.Logger
}

// NewLoader creates a Loader. A nil logger is replaced with a no-op one.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{log: log}
}

// Load resolves and reads the configuration for one pipeline invocation.
//
// The file path is the first available of: the explicit argument, the
// ORDER_CONFIG_PATH environment variable, and the built-in default. Any
// read or parse failure logs a warning naming the path and reason and
// yields Default(). Load never fails.
func (l *Loader) Load(explicit string) Config {
	path := explicit
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		l.log.Warn("config unreadable, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return Default()
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		l.log.Warn("config malformed, using defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		return Default()
	}

	return normalize(cfg)
}

// normalize maps absent, non-positive, or overlarge tunables to their
// call-site defaults. Offline mode comes from the file as parsed; the
// force-offline flag applies only to the unreadable-file fallback.
func normalize(cfg Config) Config {
	if cfg.AuditPath == "" {
		cfg.AuditPath = DefaultAuditPath
	}
	cfg.CompletionDelayMS = clampMS(cfg.CompletionDelayMS, defaultDelayMS)
	cfg.PaymentTimeoutMS = clampMS(cfg.PaymentTimeoutMS, defaultStepTimeMS)
	cfg.NotifyTimeoutMS = clampMS(cfg.NotifyTimeoutMS, defaultStepTimeMS)
	return cfg
}

// clampMS rejects tunables that are non-positive or would overflow the
// millisecond-to-Duration conversion.
func clampMS(ms, fallback int64) int64 {
	if ms <= 0 || ms > maxTunableMS {
		return fallback
	}
	return ms
}

func envBool(name string) bool {
	v, err := strconv.ParseBool(os.Getenv(name))
	return err == nil && v
}
