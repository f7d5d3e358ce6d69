package appconfig

import (
	"os"
	"path/filepath"

	"pkt.systems/pinosh/schema"
)

// Config is the top-level shell configuration.
type Config struct {
	ConfigVersion int             `mapstructure:"config_version" yaml:"config_version"`
	ConfigDir     string          `mapstructure:"config_dir" yaml:"config_dir"`
	Theme         string          `mapstructure:"theme" yaml:"theme"`
	Aliases       []AliasEntry    `mapstructure:"aliases" yaml:"aliases"`
	History       HistoryConfig   `mapstructure:"history" yaml:"history"`
	Terminal      TerminalConfig  `mapstructure:"terminal" yaml:"terminal"`
	Fuzzy         FuzzyConfig     `mapstructure:"fuzzy" yaml:"fuzzy"`
	Mux           MuxConfig       `mapstructure:"mux" yaml:"mux"`
	Assistant     AssistantConfig `mapstructure:"assistant" yaml:"assistant"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// AliasEntry adds an alias on top of DefaultAliases. Aliases are a list
// rather than a map because config keys are case-insensitive.
type AliasEntry struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Command string `mapstructure:"command" yaml:"command"`
}

// HistoryConfig controls the file-backed history.
type HistoryConfig struct {
	File string `mapstructure:"file" yaml:"file"`
	Max  int    `mapstructure:"max" yaml:"max"`
}

// TerminalConfig names the terminal emulator spawned by C-t.
// The working directory is appended as the last argument.
type TerminalConfig struct {
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

// FuzzyConfig names the producer and picker of the fuzzy directory search.
type FuzzyConfig struct {
	Finder     string   `mapstructure:"finder" yaml:"finder"`
	FinderArgs []string `mapstructure:"finder_args" yaml:"finder_args"`
	Picker     string   `mapstructure:"picker" yaml:"picker"`
}

// MuxConfig configures the language mux. A language with an empty command
// runs words directly.
type MuxConfig struct {
	Default   string              `mapstructure:"default" yaml:"default"`
	Languages map[string][]string `mapstructure:"languages" yaml:"languages"`
}

// AssistantConfig configures the OpenAI-compatible assistant.
// The API key is only read from OPENAI_KEY.
type AssistantConfig struct {
	Model             string `mapstructure:"model" yaml:"model"`
	BaseURL           string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	MaxFailures       int    `mapstructure:"max_failures" yaml:"max_failures"`
	HistoryContext    int    `mapstructure:"history_context" yaml:"history_context"`
}

// DefaultAliases are the aliases every session starts with.
var DefaultAliases = [][2]string{
	{"ls", "ls --color=auto"},
	{"l", "ls --color=auto"},
	{"c", "cd"},
	{"g", "git"},
	{"v", "vim"},
	{"V", "nvim"},
	{"la", "ls -a --color=auto"},
	{"t", "task"},
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	configDir := filepath.Join(home, ".config", schema.ShellName)
	return Config{
		ConfigVersion: CurrentConfigVersion,
		ConfigDir:     configDir,
		Theme:         string(schema.DefaultTheme),
		Aliases:       []AliasEntry{},
		History: HistoryConfig{
			Max: 1000,
		},
		Terminal: TerminalConfig{
			Command: "alacritty",
			Args:    []string{"--working-directory"},
		},
		Fuzzy: FuzzyConfig{
			Finder:     "fdfind",
			FinderArgs: []string{".", "-t", "d"},
			Picker:     "fzf",
		},
		Mux: MuxConfig{
			Default: "sh",
			Languages: map[string][]string{
				"sh":     {},
				"bash":   {"bash", "-c"},
				"python": {"python3", "-c"},
			},
		},
		Assistant: AssistantConfig{
			Model:             "gpt-4o-mini",
			BaseURL:           "https://api.openai.com/v1",
			TimeoutSeconds:    60,
			RequestsPerMinute: 20,
			MaxFailures:       3,
			HistoryContext:    10,
		},
	}, nil
}

// DefaultConfigDir returns ~/.config/pinosh.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", schema.ShellName), nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
