package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-site"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
lsh:
  homie_base: "homie/"
  lsh_base: "lsh/"
  click_timeout_seconds: 5
  interrogate_threshold_seconds: 120
  ping_timeout_seconds: 30
  click_cleanup_interval_seconds: 30
  watchdog_interval_seconds: 60
  initial_state_timeout_seconds: 90
api:
  host: "0.0.0.0"
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if cfg.LSH.LSHBase != "lsh/" {
		t.Errorf("LSH.LSHBase = %q, want %q", cfg.LSH.LSHBase, "lsh/")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func validLSH() LSHConfig {
	return LSHConfig{
		LSHBase:                     "lsh/",
		ClickTimeoutSeconds:         5,
		InterrogateThresholdSeconds: 120,
		PingTimeoutSeconds:          30,
		WatchdogIntervalSeconds:     60,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 1},
				LSH:      validLSH(),
				API:      APIConfig{Port: 8080},
			},
			wantErr: false,
		},
		{
			name: "missing site ID",
			config: &Config{
				Site:     SiteConfig{ID: ""},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				LSH:      validLSH(),
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: ""},
				LSH:      validLSH(),
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid QoS",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 3},
				LSH:      validLSH(),
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 1},
				LSH:      validLSH(),
				API:      APIConfig{Port: 0},
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 1},
				LSH:      validLSH(),
				API:      APIConfig{Port: 70000},
			},
			wantErr: true,
		},
		{
			name: "missing lsh base",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 1},
				LSH:      LSHConfig{ClickTimeoutSeconds: 5, InterrogateThresholdSeconds: 120, PingTimeoutSeconds: 30, WatchdogIntervalSeconds: 60},
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
		{
			name: "zero click timeout",
			config: &Config{
				Site:     SiteConfig{ID: "site-001"},
				Database: DatabaseConfig{Path: "/data/graylogic.db"},
				MQTT:     MQTTConfig{QoS: 1},
				LSH:      LSHConfig{LSHBase: "lsh/", InterrogateThresholdSeconds: 120, PingTimeoutSeconds: 30, WatchdogIntervalSeconds: 60},
				API:      APIConfig{Port: 8080},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}

	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}

	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestConfig_LSHDurations(t *testing.T) {
	cfg := &Config{LSH: LSHConfig{
		ClickTimeoutSeconds:         5,
		InterrogateThresholdSeconds: 120,
		PingTimeoutSeconds:          30,
		ClickCleanupIntervalSeconds: 15,
		WatchdogIntervalSeconds:     60,
		InitialStateTimeoutSeconds:  90,
	}}

	if got := cfg.ClickTimeout().Seconds(); got != 5 {
		t.Errorf("ClickTimeout() = %v, want 5", got)
	}
	if got := cfg.InterrogateThreshold().Seconds(); got != 120 {
		t.Errorf("InterrogateThreshold() = %v, want 120", got)
	}
	if got := cfg.PingTimeout().Seconds(); got != 30 {
		t.Errorf("PingTimeout() = %v, want 30", got)
	}
	if got := cfg.ClickCleanupInterval().Seconds(); got != 15 {
		t.Errorf("ClickCleanupInterval() = %v, want 15", got)
	}
	if got := cfg.WatchdogInterval().Seconds(); got != 60 {
		t.Errorf("WatchdogInterval() = %v, want 60", got)
	}
	if got := cfg.InitialStateTimeout().Seconds(); got != 90 {
		t.Errorf("InitialStateTimeout() = %v, want 90", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("GRAYLOGIC_DATABASE_PATH", "/custom/path.db")
	t.Setenv("GRAYLOGIC_MQTT_HOST", "mqtt.example.com")
	t.Setenv("GRAYLOGIC_MQTT_USERNAME", "testuser")
	t.Setenv("GRAYLOGIC_MQTT_PASSWORD", "testpass")
	t.Setenv("GRAYLOGIC_API_HOST", "192.168.1.1")
	t.Setenv("GRAYLOGIC_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("GRAYLOGIC_LSH_SYSTEM_CONFIG_PATH", "/custom/system.json")

	applyEnvOverrides(cfg)

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.API.Host != "192.168.1.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "192.168.1.1")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}

	if cfg.LSH.SystemConfigPath != "/custom/system.json" {
		t.Errorf("LSH.SystemConfigPath = %q, want %q", cfg.LSH.SystemConfigPath, "/custom/system.json")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}

	if cfg.LSH.LSHBase == "" {
		t.Error("defaultConfig should have non-empty LSH.LSHBase")
	}
}
