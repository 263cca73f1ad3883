package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/spf13/viper"

	apperrors "github.com/kbukum/tabkit/errors"
)

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Storage       struct {
		Provider    string `mapstructure:"provider"`
		MaxFileSize string `mapstructure:"max_file_size"`
	} `mapstructure:"storage"`
	Bus struct {
		Backend string `mapstructure:"backend"`
		Kafka   struct {
			Brokers []string `mapstructure:"brokers"`
			Topic   string   `mapstructure:"topic"`
		} `mapstructure:"kafka"`
	} `mapstructure:"bus"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty config", func(t *testing.T) {
		cfg := ServiceConfig{}
		cfg.ApplyDefaults()
		if cfg.Name != "tabkit" || cfg.Environment != "development" || !cfg.Debug {
			t.Errorf("unexpected defaults: %+v", cfg)
		}
		if cfg.Logging.Level != "info" {
			t.Errorf("logging defaults not applied: %+v", cfg.Logging)
		}
	})

	t.Run("production keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServiceConfig)
		wantErr string
	}{
		{"valid", func(*ServiceConfig) {}, ""},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, "name: is required"},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, "environment: must be one of"},
		{"bad log level", func(c *ServiceConfig) { c.Logging.Level = "loud" }, "config.logging"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := ServiceConfig{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", `
name: ingest
environment: staging
storage:
  provider: s3
  max_file_size: 5MB
bus:
  backend: kafka
  kafka:
    brokers: [k1:9092, k2:9092]
`)

	var cfg testConfig
	if err := LoadConfig("tabkit-test", &cfg, WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none.env"))); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "ingest" || cfg.Environment != "staging" {
		t.Errorf("service config = %+v", cfg.ServiceConfig)
	}
	if cfg.Storage.Provider != "s3" || cfg.Storage.MaxFileSize != "5MB" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if !slices.Equal(cfg.Bus.Kafka.Brokers, []string{"k1:9092", "k2:9092"}) {
		t.Errorf("brokers = %v", cfg.Bus.Kafka.Brokers)
	}
	// Defaulter runs after loading.
	if cfg.Logging.Level != "info" {
		t.Errorf("defaults not applied: %+v", cfg.Logging)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "bus:\n  backend: memory\n  kafka:\n    topic: from-file\n")
	envPath := writeFile(t, dir, ".env", "TABKITENV_STORAGE_PROVIDER=local\n")

	t.Setenv("TABKITENV_BUS_BACKEND", "redis")
	t.Setenv("TABKITENV_STORAGE_MAX_FILE_SIZE", "1KB")
	t.Setenv("OTHER_BUS_BACKEND", "kafka")
	t.Cleanup(func() { os.Unsetenv("TABKITENV_STORAGE_PROVIDER") })

	var cfg testConfig
	err := LoadConfig("tabkitenv", &cfg, WithConfigFile(path), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Bus.Backend != "redis" {
		t.Errorf("backend = %q, want env override", cfg.Bus.Backend)
	}
	if cfg.Bus.Kafka.Topic != "from-file" {
		t.Errorf("topic = %q, file value should survive", cfg.Bus.Kafka.Topic)
	}
	if cfg.Storage.MaxFileSize != "1KB" {
		t.Errorf("max_file_size = %q", cfg.Storage.MaxFileSize)
	}
	if cfg.Storage.Provider != "local" {
		t.Errorf("provider = %q, want value from .env", cfg.Storage.Provider)
	}
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("tabkit", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "name: [unclosed\n")
	var cfg testConfig
	if err := LoadConfig("tabkit", &cfg, WithConfigFile(path)); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadConfigValidationFails(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "environment: qa\n")
	var cfg testConfig
	err := LoadConfig("tabkit", &cfg, WithConfigFile(path))
	if !apperrors.HasCode(err, apperrors.ErrCodeInvalidSetting) {
		t.Errorf("expected INVALID_SETTING, got %v", err)
	}
}

type mockFS struct {
	files  map[string]bool
	loaded []string
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error {
	m.loaded = append(m.loaded, path)
	return nil
}

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/tabkit/config.yml": true,
		"./config.yml":            true,
		".env":                    true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("tabkit", LoaderConfig{})
	if files.ConfigFile != "./cmd/tabkit/config.yml" {
		t.Errorf("config file = %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("env file = %q", files.EnvFile)
	}

	explicit := resolver.ResolveFiles("tabkit", LoaderConfig{ConfigFile: "job.yml", EnvFile: "x.env"})
	if explicit.ConfigFile != "job.yml" || explicit.EnvFile != "x.env" {
		t.Errorf("explicit paths not kept: %+v", explicit)
	}
}

func TestResolverNothingFound(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("tabkit", LoaderConfig{})
	if files.ConfigFile != "" || files.EnvFile != "" {
		t.Errorf("expected no files, got %+v", files)
	}
}

func TestOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/etc/tabkit.yml")(&lc)
	WithEnvFile("/etc/tabkit.env")(&lc)
	WithEnvPrefix("APP")(&lc)
	if lc.FileSystem != fs || lc.ConfigFile != "/etc/tabkit.yml" || lc.EnvFile != "/etc/tabkit.env" || lc.EnvPrefix != "APP" {
		t.Errorf("options not applied: %+v", lc)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want []string
	}{
		{"NAME", []string{"name"}},
		{"BUS_BACKEND", []string{"bus_backend", "bus.backend"}},
		{"BUS_KAFKA_BROKERS", []string{"bus.kafka.brokers", "bus.kafka_brokers"}},
		{"STORAGE_MAX_FILE_SIZE", []string{"storage.max_file_size", "storage.max.file_size"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := envKeyVariants(tt.key)
			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("variants %v missing %q", got, w)
				}
			}
			seen := map[string]bool{}
			for _, g := range got {
				if seen[g] {
					t.Errorf("duplicate variant %q", g)
				}
				seen[g] = true
			}
		})
	}
}

func TestBindEnvIgnoresOtherPrefixes(t *testing.T) {
	v := viper.New()
	bindEnv(v, "TABKIT", []string{"TABKIT_BUS_BACKEND=kafka", "HOME=/root", "TABKIT_=x", "TABKITX_NAME=y"})
	if v.GetString("bus.backend") != "kafka" {
		t.Errorf("bus.backend = %q", v.GetString("bus.backend"))
	}
	if v.IsSet("home") || v.IsSet("name") {
		t.Error("unprefixed variables must not be bound")
	}
}
