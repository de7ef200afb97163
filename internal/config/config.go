package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// BuildVersion is stamped at link time via -ldflags "-X .../config.BuildVersion=...".
// It is also the value the Stratum client reports in reply to client.get_version.
var BuildVersion = "dev"

// ConfigWithDefaults is implemented by the root config struct passed to
// LoadConfig. SetDefaults runs after env/flag binding so defaults only fill
// in fields the operator left unset.
type ConfigWithDefaults interface {
	SetDefaults()
}

// NewValidator builds a go-playground validator with the struct-level
// checks this package's config types rely on.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := v.RegisterValidation("pooluri", validatePoolURI); err != nil {
		return nil, err
	}
	return v, nil
}

// validatePoolURI checks that a pool address looks like "stratum+tcp://host:port"
// or "host:port". It does not check the scheme; ParseEndpoint does, and it
// rejects an address without a "scheme://" prefix.
func validatePoolURI(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	rest := s
	if i := strings.Index(s, "://"); i >= 0 {
		rest = s[i+3:]
	}
	return strings.Contains(rest, ":")
}

// Config is the root configuration struct bound from environment variables
// and command-line flags by LoadConfig.
type Config struct {
	Pool   PoolConfig
	Engine EngineConfig
	Log    LogConfig
	API    StatusAPIConfig
}

// PoolConfig lists the candidate pool endpoints, dialed in order.
type PoolConfig struct {
	Addresses      []string `env:"POOL_ADDRESSES" flag:"pool-addresses" desc:"comma-separated list of stratum+tcp://host:port pool addresses, tried in order" validate:"min=1,dive,pooluri"`
	Username       string   `env:"POOL_USERNAME" flag:"pool-username" desc:"pool login, account[.worker]" validate:"required"`
	Password       string   `env:"POOL_PASSWORD" flag:"pool-password" desc:"pool password"`
	Dialect        string   `env:"POOL_DIALECT" flag:"pool-dialect" desc:"stratum|nrgproxy|energistratum|unknown" validate:"omitempty,oneof=stratum nrgproxy energistratum unknown"`
	ReconnectTries int      `env:"POOL_RECONNECT_TRIES" flag:"pool-reconnect-tries" desc:"reconnect attempts against the current endpoint before failing over"`
}

// EngineConfig configures the mining engine adapter.
type EngineConfig struct {
	Modes                 []string `env:"ENGINE_MODES" flag:"engine-modes" desc:"comma-separated miner mode identifiers passed to the engine on start"`
	HashrateReportingTime string   `env:"ENGINE_HASHRATE_REPORTING" flag:"engine-hashrate-reporting" desc:"how often to submit measured hashrate to the pool, e.g. 60s"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `env:"LOG_LEVEL" flag:"log-level" desc:"debug|info|warn|error" validate:"omitempty,oneof=debug info warn error"`
}

// StatusAPIConfig configures the optional diagnostics HTTP server.
type StatusAPIConfig struct {
	Enabled bool   `env:"API_ENABLED" flag:"api-enabled" desc:"serve a /status diagnostics endpoint"`
	Listen  string `env:"API_LISTEN" flag:"api-listen" desc:"address the diagnostics server listens on"`
}

// SetDefaults fills in fields left unset by the environment or flags.
func (c *Config) SetDefaults() {
	if c.Pool.Dialect == "" {
		c.Pool.Dialect = "unknown"
	}
	if c.Pool.ReconnectTries <= 0 {
		c.Pool.ReconnectTries = 3
	}
	if len(c.Engine.Modes) == 0 {
		c.Engine.Modes = []string{"default"}
	}
	if c.Engine.HashrateReportingTime == "" {
		c.Engine.HashrateReportingTime = "60s"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.API.Listen == "" {
		c.API.Listen = ":8080"
	}
}

func (c Config) String() string {
	return fmt.Sprintf("pools=%v dialect=%s log=%s api=%v", c.Pool.Addresses, c.Pool.Dialect, c.Log.Level, c.API.Enabled)
}
