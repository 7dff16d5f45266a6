package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	appName   = "phishnix"
	envPrefix = "PHISHNIX"
)

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// Load assembles the application configuration. Precedence, lowest to
// highest: built-in defaults, config file (explicit path or XDG discovery),
// PHISHNIX_* environment variables. Provider API keys are additionally read
// from the conventional OPENAI_API_KEY / GEMINI_API_KEY variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		if configDir := defaultConfigDir(); configDir != "" {
			v.AddConfigPath(configDir)
		}
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindProviderEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults and env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}

	setConfig(cfg)
	return cfg, nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// bindProviderEnv wires credential variables that do not follow the
// PHISHNIX_ key convention.
func bindProviderEnv(v *viper.Viper) {
	_ = v.BindEnv("engine.providers.openai.api_key",
		envPrefix+"_ENGINE_PROVIDERS_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("engine.providers.gemini.api_key",
		envPrefix+"_ENGINE_PROVIDERS_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("store.auth_token",
		envPrefix+"_STORE_AUTH_TOKEN", "TURSO_AUTH_TOKEN")
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	// Store defaults
	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", "")
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	// Engine defaults
	v.SetDefault("engine.default_provider", "openai")
	v.SetDefault("engine.default_timeout", "60s")
	v.SetDefault("engine.prompts_dir", "")
	v.SetDefault("engine.providers.openai.enabled", true)
	v.SetDefault("engine.providers.openai.driver", "openai")
	v.SetDefault("engine.providers.openai.base_url", "")
	v.SetDefault("engine.providers.openai.api_key", "")
	v.SetDefault("engine.providers.openai.model", "gpt-4o-mini")
	v.SetDefault("engine.providers.gemini.enabled", false)
	v.SetDefault("engine.providers.gemini.driver", "gemini")
	v.SetDefault("engine.providers.gemini.base_url", "")
	v.SetDefault("engine.providers.gemini.api_key", "")
	v.SetDefault("engine.providers.gemini.model", "gemini-2.0-flash")

	// Domain intel defaults
	v.SetDefault("intel.enabled", false)
	v.SetDefault("intel.timeout", "10s")
	v.SetDefault("intel.whois_fallback", true)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	// Health check defaults
	v.SetDefault("health.enabled", true)

	// Worker defaults
	v.SetDefault("workers", 4)
}

func defaultConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		return ""
	}
	return filepath.Join(base, appName)
}

// DefaultConfigPath returns the XDG-compliant path to the config file.
func DefaultConfigPath() string {
	configDir := defaultConfigDir()
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	base := os.Getenv("XDG_DATA_HOME")
	if strings.TrimSpace(base) == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./" + appName + ".db"
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, appName, appName+".db")
}
