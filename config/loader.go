package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix marks environment variables that override file settings.
// JOBGRAPH_PERSISTENCE_TYPE=redis sets persistence.type.
const EnvPrefix = "JOBGRAPH_"

// FileSystem is the file access the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem reads the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads path into the process environment without overriding
// variables that are already set.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	// Strict makes a missing explicit config file an error.
	Strict bool
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path. An explicit file must
// exist.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) {
		lc.ConfigFile = path
		lc.Strict = path != ""
	}
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// SearchPaths lists where Load looks for a config file when none is given.
func SearchPaths(serviceName string) []string {
	return []string{
		fmt.Sprintf("./%s.yml", serviceName),
		fmt.Sprintf("./%s.yaml", serviceName),
		fmt.Sprintf("./config/%s.yml", serviceName),
		fmt.Sprintf("./cmd/%s/config.yml", serviceName),
		"./config.yml",
	}
}

// Load reads the service's config file, an optional .env file and
// JOBGRAPH_* environment variables into cfg, in that order of precedence
// from lowest to highest.
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}

	v := viper.New()

	file := lc.ConfigFile
	if file == "" {
		file = find(lc.FileSystem, SearchPaths(serviceName))
	}
	if file != "" {
		if !lc.FileSystem.Exists(file) {
			if lc.Strict {
				return fmt.Errorf("config file %s not found", file)
			}
		} else {
			v.SetConfigFile(file)
			if err := v.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file %s: %w", file, err)
			}
		}
	}

	envFile := lc.EnvFile
	if envFile == "" {
		envFile = find(lc.FileSystem, []string{"./.env.local", "./.env"})
	}
	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return fmt.Errorf("loading env file %s: %w", envFile, err)
		}
	}

	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", serviceName, err)
	}
	return nil
}

func find(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnv sets every JOBGRAPH_* variable under each key it could stand for.
// Nested keys may themselves contain underscores, so
// JOBGRAPH_KAFKA_READY_TOPIC is set as kafka.ready.topic, kafka.ready_topic
// and kafka_ready_topic; Unmarshal picks the one that matches a field.
// Comma separated values are split into lists.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		var val any = value
		if strings.Contains(value, ",") {
			val = strings.Split(value, ",")
		}
		for _, k := range envKeyVariants(strings.TrimPrefix(key, EnvPrefix)) {
			v.Set(k, val)
		}
	}
}

// envKeyVariants returns the dotted keys an env suffix can map to: every
// way of splitting it into a section path followed by an underscore joined
// leaf.
func envKeyVariants(suffix string) []string {
	parts := strings.Split(strings.ToLower(suffix), "_")
	if len(parts) == 1 {
		return parts
	}

	seen := make(map[string]bool)
	var out []string
	add := func(k string) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	add(strings.Join(parts, "_"))
	return out
}
