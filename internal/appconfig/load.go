package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/pinosh/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file is not an error; defaults apply.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("config_dir", cfg.ConfigDir)
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("aliases", cfg.Aliases)
	v.SetDefault("history.file", cfg.History.File)
	v.SetDefault("history.max", cfg.History.Max)
	v.SetDefault("terminal.command", cfg.Terminal.Command)
	v.SetDefault("terminal.args", cfg.Terminal.Args)
	v.SetDefault("fuzzy.finder", cfg.Fuzzy.Finder)
	v.SetDefault("fuzzy.finder_args", cfg.Fuzzy.FinderArgs)
	v.SetDefault("fuzzy.picker", cfg.Fuzzy.Picker)
	v.SetDefault("mux.default", cfg.Mux.Default)
	v.SetDefault("mux.languages", cfg.Mux.Languages)
	v.SetDefault("assistant.model", cfg.Assistant.Model)
	v.SetDefault("assistant.base_url", cfg.Assistant.BaseURL)
	v.SetDefault("assistant.timeout_seconds", cfg.Assistant.TimeoutSeconds)
	v.SetDefault("assistant.requests_per_minute", cfg.Assistant.RequestsPerMinute)
	v.SetDefault("assistant.max_failures", cfg.Assistant.MaxFailures)
	v.SetDefault("assistant.history_context", cfg.Assistant.HistoryContext)

	configLoaded := false
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return Config{}, err
		}
	} else {
		configLoaded = true
	}

	if configLoaded {
		if !v.InConfig("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if strings.TrimSpace(cfg.ConfigDir) == "" {
		return fmt.Errorf("config_dir must not be empty")
	}
	if _, ok := schema.NormalizeThemeName(cfg.Theme); !ok {
		return fmt.Errorf("unsupported theme %q", cfg.Theme)
	}
	if cfg.History.Max < 0 {
		return fmt.Errorf("history.max must not be negative")
	}
	if _, ok := cfg.Mux.Languages[cfg.Mux.Default]; !ok {
		return fmt.Errorf("mux.default %q is not listed in mux.languages", cfg.Mux.Default)
	}
	for _, entry := range cfg.Aliases {
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("aliases: entry with command %q has no name", entry.Command)
		}
	}
	return nil
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.ConfigDir = expandEnv(cfg.ConfigDir)
	cfg.History.File = expandEnv(cfg.History.File)
	cfg.Terminal.Command = expandEnv(cfg.Terminal.Command)
	cfg.Fuzzy.Finder = expandEnv(cfg.Fuzzy.Finder)
	cfg.Fuzzy.Picker = expandEnv(cfg.Fuzzy.Picker)
	cfg.Assistant.BaseURL = expandEnv(cfg.Assistant.BaseURL)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(home, strings.TrimPrefix(value, "~"))
		}
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
