package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the Gray Logic LSH
// orchestrator. All configuration is loaded from YAML and can be
// overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	LSH      LSHConfig      `yaml:"lsh"`
	API      APIConfig      `yaml:"api"`
	WS       WebSocketConfig `yaml:"websocket"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// DatabaseConfig contains SQLite database settings backing the audit
// trail and the context-store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// LSHConfig contains the topic layout and timing knobs that drive the
// orchestrator core (lshcore.SystemConfig carries the per-device wiring;
// this section is pure service configuration).
type LSHConfig struct {
	// HomieBase is the MQTT topic prefix publishing devices use for
	// Homie convention state (e.g. "homie/").
	HomieBase string `yaml:"homie_base"`
	// LSHBase is the MQTT topic prefix LSH devices use for conf/state/
	// misc/command traffic (e.g. "lsh/").
	LSHBase string `yaml:"lsh_base"`
	// SystemConfigPath points at the JSON document describing the
	// configured device/button/actor fleet (lshcore.SystemConfig).
	SystemConfigPath string `yaml:"system_config_path"`
	// OtherActorsPrefix is the context-store key prefix smartToggle uses
	// when looking up non-LSH actors: "<prefix>.<name>.state".
	OtherActorsPrefix string `yaml:"other_actors_prefix"`

	// Timing knobs, all in seconds unless noted otherwise.
	ClickTimeoutSeconds          int `yaml:"click_timeout_seconds"`
	InterrogateThresholdSeconds  int `yaml:"interrogate_threshold_seconds"`
	PingTimeoutSeconds           int `yaml:"ping_timeout_seconds"`
	ClickCleanupIntervalSeconds  int `yaml:"click_cleanup_interval_seconds"`
	WatchdogIntervalSeconds      int `yaml:"watchdog_interval_seconds"`
	InitialStateTimeoutSeconds   int `yaml:"initial_state_timeout_seconds"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig contains tuning knobs for the /ws hub's read/write
// pumps.
type WebSocketConfig struct {
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
	MaxMessageSize int `yaml:"max_message_size"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYLOGIC_SECTION_KEY
// For example: GRAYLOGIC_DATABASE_PATH, GRAYLOGIC_MQTT_HOST
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults, matching the
// timing knobs documented for the LSH orchestrator.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "site-001",
			Name:     "Gray Logic LSH",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/graylogic-lsh.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graylogic-lsh",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		LSH: LSHConfig{
			HomieBase:                   "homie/",
			LSHBase:                     "lsh/",
			SystemConfigPath:            "./config/system.json",
			OtherActorsPrefix:           "ctx",
			ClickTimeoutSeconds:         5,
			InterrogateThresholdSeconds: 120,
			PingTimeoutSeconds:          30,
			ClickCleanupIntervalSeconds: 30,
			WatchdogIntervalSeconds:     60,
			InitialStateTimeoutSeconds:  90,
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WS: WebSocketConfig{
			PingInterval:   30,
			PongTimeout:    60,
			MaxMessageSize: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables follow the pattern:
// GRAYLOGIC_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GRAYLOGIC_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("GRAYLOGIC_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYLOGIC_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("GRAYLOGIC_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("GRAYLOGIC_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("GRAYLOGIC_LSH_SYSTEM_CONFIG_PATH"); v != "" {
		cfg.LSH.SystemConfigPath = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.LSH.LSHBase == "" {
		errs = append(errs, "lsh.lsh_base is required")
	}
	if c.LSH.ClickTimeoutSeconds <= 0 {
		errs = append(errs, "lsh.click_timeout_seconds must be positive")
	}
	if c.LSH.PingTimeoutSeconds <= 0 {
		errs = append(errs, "lsh.ping_timeout_seconds must be positive")
	}
	if c.LSH.InterrogateThresholdSeconds <= 0 {
		errs = append(errs, "lsh.interrogate_threshold_seconds must be positive")
	}
	if c.LSH.WatchdogIntervalSeconds <= 0 {
		errs = append(errs, "lsh.watchdog_interval_seconds must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// ClickTimeout returns the click correlation timeout as a Duration.
func (c *Config) ClickTimeout() time.Duration {
	return time.Duration(c.LSH.ClickTimeoutSeconds) * time.Second
}

// InterrogateThreshold returns the ping-staleness interrogate threshold.
func (c *Config) InterrogateThreshold() time.Duration {
	return time.Duration(c.LSH.InterrogateThresholdSeconds) * time.Second
}

// PingTimeout returns the ping response timeout.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.LSH.PingTimeoutSeconds) * time.Second
}

// ClickCleanupInterval returns the pending-transaction GC tick interval.
func (c *Config) ClickCleanupInterval() time.Duration {
	return time.Duration(c.LSH.ClickCleanupIntervalSeconds) * time.Second
}

// WatchdogInterval returns the watchdog tick interval.
func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.LSH.WatchdogIntervalSeconds) * time.Second
}

// InitialStateTimeout returns the startup verification grace period.
func (c *Config) InitialStateTimeout() time.Duration {
	return time.Duration(c.LSH.InitialStateTimeoutSeconds) * time.Second
}
