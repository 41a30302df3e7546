package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// DefaultIndex is the index document used when none is configured.
const DefaultIndex = "data.json"

// IndexConfig locates the project index document. In the config file it may
// be written as a plain string or as a table with a path key.
type IndexConfig struct {
	Path string `mapstructure:"path"`
}

type SourceConfig struct {
	Index          IndexConfig `mapstructure:"index"`
	TimeoutSeconds int         `mapstructure:"timeout_seconds"`
}

type DaemonConfig struct {
	ExpirationSeconds int `mapstructure:"expiration_seconds"`
}

type RenderConfig struct {
	WordWrap int    `mapstructure:"word_wrap"`
	Style    string `mapstructure:"style"`
}

type Config struct {
	Source SourceConfig `mapstructure:"source"`
	Daemon DaemonConfig `mapstructure:"daemon"`
	Render RenderConfig `mapstructure:"render"`
}

// cacheBase returns the base cache directory for docdeck.
// Checks XDG_CACHE_HOME, then ~/.cache, then /tmp/docdeck as fallback.
func cacheBase() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "docdeck")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", "docdeck")
	}
	return filepath.Join(os.TempDir(), "docdeck")
}

// LogPath returns the path to the daemon's log file.
func LogPath() string {
	return filepath.Join(cacheBase(), "daemon.log")
}

// SocketPath returns the path to the daemon's unix socket.
func SocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "docdeck", "daemon.sock")
	}
	return filepath.Join(fmt.Sprintf("/run/user/%d", os.Getuid()), "docdeck", "daemon.sock")
}

func InitializeViper(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("toml")

	v.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		v.AddConfigPath(filepath.Join(xdg, "docdeck"))
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "docdeck"))
	}

	v.SetDefault("source.timeout_seconds", 30)
	v.SetDefault("daemon.expiration_seconds", 600)
	v.SetDefault("render.word_wrap", 80)
	v.SetDefault("render.style", "auto")

	v.SetEnvPrefix("DOCDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func stringToIndexConfigHookFunc() mapstructure.DecodeHookFunc {
	return func(f, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(IndexConfig{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return IndexConfig{Path: data.(string)}, nil
		}
		return data, nil
	}
}

// Load reads configuration from the config file, DOCDECK_* environment
// variables and defaults.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	if err := InitializeViper(v); err != nil {
		return nil, err
	}

	var config Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringToIndexConfigHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// A DOCDECK_SOURCE_INDEX override is only visible through GetString.
	if index := v.GetString("source.index"); index != "" {
		config.Source.Index.Path = index
	}
	if config.Source.Index.Path == "" {
		config.Source.Index.Path = DefaultIndex
	}
	config.Source.Index.Path = absIndex(expandHome(config.Source.Index.Path))

	return &config, nil
}

// absIndex anchors a relative local index to the working directory.
func absIndex(path string) string {
	if strings.Contains(path, "://") || filepath.IsAbs(path) {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
