package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultEnvPrefix = "HYPERHTTP"

// Options holds loader settings.
type Options struct {
	// File is an explicit config file path. Empty triggers discovery.
	File string
	// EnvFile is an explicit .env path. Empty triggers discovery.
	EnvFile string
	// EnvPrefix namespaces environment overrides. Defaults to HYPERHTTP.
	EnvPrefix string
}

// Option configures Load.
type Option func(*Options)

// WithFile sets an explicit config file path.
func WithFile(path string) Option {
	return func(o *Options) { o.File = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) Option {
	return func(o *Options) { o.EnvFile = path }
}

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) { o.EnvPrefix = prefix }
}

// Load populates cfg from file, .env, and environment, in ascending
// precedence. A missing config file is only an error when the path was
// explicit.
func Load(cfg any, opts ...Option) error {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	if o.EnvPrefix == "" {
		o.EnvPrefix = defaultEnvPrefix
	}

	if err := loadEnvFile(o.EnvFile); err != nil {
		return err
	}

	v := viper.New()
	v.SetEnvPrefix(o.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	file := o.File
	explicit := file != ""
	if !explicit {
		file = findFile("config.yml", "config.yaml", "config/config.yml")
	}
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			if explicit {
				return fmt.Errorf("config: read %s: %w", file, err)
			}
		}
	}

	bindEnvOverrides(v, o.EnvPrefix)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	return nil
}

// loadEnvFile loads a .env file into the process environment. Discovery
// failures are silent; explicit paths must exist.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("config: load env file %s: %w", path, err)
		}
		return nil
	}
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	return nil
}

// findFile returns the first existing candidate path, or "".
func findFile(candidates ...string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// bindEnvOverrides maps PREFIX_SECTION_KEY variables onto nested viper keys
// so environment values override file values even for keys absent from the
// file. AutomaticEnv alone cannot see nested keys that were never set.
func bindEnvOverrides(v *viper.Viper, prefix string) {
	head := prefix + "_"
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 || !strings.HasPrefix(pair[0], head) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(pair[0], head))
		for _, variant := range keyVariants(key) {
			v.Set(variant, pair[1])
		}
	}
}

// keyVariants expands an underscore key into the nested spellings it could
// address: auth_type covers both a flat "auth_type" key and "auth.type",
// transport_max_idle_conns covers "transport.max_idle_conns", and so on.
func keyVariants(key string) []string {
	parts := strings.Split(key, "_")
	variants := []string{key, strings.ReplaceAll(key, "_", ".")}
	for i := 1; i < len(parts); i++ {
		variants = append(variants, strings.Join(parts[:i], ".")+"."+strings.Join(parts[i:], "_"))
	}
	return variants
}
