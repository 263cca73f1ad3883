package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/tabkit/logger"
)

// FileSystem abstracts the file checks the resolver makes.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// RealFileSystem implements FileSystem using actual file operations.
type RealFileSystem struct{}

func (rfs *RealFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (rfs *RealFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Resolver handles finding config and env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths from opts, searching standard
// locations for whichever is unset.
func (r *Resolver) ResolveFiles(name string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(configSearchPaths(name))
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(envSearchPaths(name))
	}
	return resolved
}

func (r *Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FileSystem.Exists(p) {
			return p
		}
	}
	return ""
}

func configSearchPaths(name string) []string {
	var paths []string
	for _, dir := range []string{"./cmd/" + name, "./config", "."} {
		for _, ext := range []string{"yml", "yaml"} {
			paths = append(paths, fmt.Sprintf("%s/config.%s", dir, ext))
		}
	}
	if home, err := os.UserConfigDir(); err == nil {
		paths = append(paths, fmt.Sprintf("%s/%s/config.yml", home, name))
	}
	return paths
}

func envSearchPaths(name string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/.env", name),
		fmt.Sprintf(".env.%s", name),
		".env",
	}
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string // Direct config file path (optional)
	EnvFile    string // Direct env file path (optional)
	// EnvPrefix limits environment overrides to variables starting with
	// PREFIX_. Defaults to the upper-cased service name.
	EnvPrefix string
}

// LoaderOption is a functional option for LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path. A missing explicit file
// is an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// Defaulter is implemented by configs that fill their own defaults and
// validate themselves after loading.
type Defaulter interface {
	ApplyDefaults()
	Validate() error
}

// LoadConfig loads configuration for a service into cfg. Values come from,
// in increasing precedence: the YAML config file, the .env file, and the
// process environment (NAME_SECTION_KEY). When cfg implements Defaulter its
// ApplyDefaults and Validate run on the result.
func LoadConfig(name string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: strings.ToUpper(strings.ReplaceAll(name, "-", "_"))}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = &RealFileSystem{}
	}
	if lc.ConfigFile != "" && !lc.FileSystem.Exists(lc.ConfigFile) {
		return fmt.Errorf("config file %s not found", lc.ConfigFile)
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(name, lc)

	if err := load(cfg, files, lc); err != nil {
		return fmt.Errorf("loading config for %s: %w", name, err)
	}
	if d, ok := cfg.(Defaulter); ok {
		d.ApplyDefaults()
		if err := d.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func load(cfg any, files ResolvedFiles, lc LoaderConfig) error {
	v := viper.New()

	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading %s: %w", files.ConfigFile, err)
		}
	}

	// .env values land in the process environment and are picked up below.
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load env file", logger.Fields("path", files.EnvFile, "error", err.Error()))
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	return v.Unmarshal(cfg)
}

// bindEnv sets every PREFIX_* variable under each nesting its name could
// stand for, since underscores separate both sections and words.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	if prefix == "" {
		return
	}
	prefix += "_"
	for _, env := range environ {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
			continue
		}
		for _, variant := range envKeyVariants(key[len(prefix):]) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants expands an environment key into the dotted keys it may
// address:
//
//	BUS_KAFKA_BROKERS -> [bus_kafka_brokers, bus.kafka.brokers, bus.kafka_brokers]
//	STORAGE_MAX_FILE_SIZE -> [..., storage.max_file_size, ...]
func envKeyVariants(envKey string) []string {
	lowerKey := strings.ToLower(envKey)
	parts := strings.Split(lowerKey, "_")
	if len(parts) <= 1 {
		return []string{lowerKey}
	}

	variants := []string{
		lowerKey,
		strings.Join(parts, "."),
	}
	// Every split point between a dotted section path and an underscored key.
	for i := 1; i < len(parts); i++ {
		for j := i; j < len(parts); j++ {
			section := strings.Join(parts[:i], ".")
			mid := strings.Join(parts[i:j], ".")
			key := strings.Join(parts[j:], "_")
			if mid != "" {
				section += "." + mid
			}
			variants = append(variants, section+"."+key)
		}
	}
	return removeDuplicates(variants)
}

// removeDuplicates removes duplicate strings from a slice, keeping order.
func removeDuplicates(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}
