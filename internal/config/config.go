package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for ptrack, stored in ~/.ptrack/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// SessionsDir is the directory holding one JSON session file per day.
	SessionsDir string `json:"sessions_dir"`
	// PollIntervalMS is the focus polling interval in milliseconds.
	PollIntervalMS int `json:"poll_interval_ms"`
	// Host and Port define where the local web view listens.
	Host string `json:"host"`
	Port int    `json:"port"`
	// FocusCommand is the external command that reports the focused window
	// as a JSON object {"name": ..., "exe": ..., "window_title": ...}.
	FocusCommand string `json:"focus_command"`
	// OpenBrowser controls whether `ptrack run` opens the web view.
	OpenBrowser bool `json:"open_browser"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level"`
}

const (
	// DefaultPollIntervalMS is the default focus polling interval.
	// Sub-second polling trades CPU for responsiveness; one second is
	// plenty for per-application totals.
	DefaultPollIntervalMS = 1000
	// DefaultHost binds the web view to loopback only.
	DefaultHost = "127.0.0.1"
	// DefaultPort matches the original desktop app's web view port.
	DefaultPort = 5001
)

// PollInterval returns the polling interval as a time.Duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		SessionsDir:    "",
		PollIntervalMS: DefaultPollIntervalMS,
		Host:           DefaultHost,
		Port:           DefaultPort,
		FocusCommand:   "",
		OpenBrowser:    true,
		LogLevel:       "info",
	}
}

// DefaultSessionsDir returns ~/.ptrack/sessions.
func DefaultSessionsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ptrack", "sessions"), nil
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// ptrack configuration – ~/.ptrack/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Edit this file to customise ptrack behaviour.
{
  // Directory holding one JSON session file per calendar day.
  // Leave empty to use ~/.ptrack/sessions.
  "sessions_dir": "",

  // Focus polling interval in milliseconds. 1000 is the default; values
  // below ~100 only burn CPU without improving the daily totals.
  "poll_interval_ms": 1000,

  // Address of the local web view.
  "host": "127.0.0.1",
  "port": 5001,

  // External command printing the currently focused window as JSON:
  //   {"name": "chrome", "exe": "/usr/bin/chrome", "window_title": "Tab A"}
  // Examples:
  //   Linux/X11: a small script around xdotool getactivewindow
  //   macOS:     a script around osascript / lsappinfo
  "focus_command": "",

  // Open the web view in the default browser when 'ptrack run' starts.
  "open_browser": true,

  // Log level: debug, info, warn, error.
  "log_level": "info"
}
`

// configFilePath returns the path to ~/.ptrack/config.json.
func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".ptrack", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.ptrack/config.json, creating it with annotated defaults on
// first run. Lines starting with // are treated as comments and stripped
// before JSON parsing.
func Load() (Config, error) {
	path, err := configFilePath()
	if err != nil {
		return defaultConfig(), err
	}
	return loadFrom(path)
}

func loadFrom(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		return defaultConfig(), nil
	}
	if err != nil {
		return defaultConfig(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cleaned := stripLineComments(data)
	cfg := defaultConfig()
	if err := json.Unmarshal(cleaned, &cfg); err != nil {
		return defaultConfig(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	if cfg.PollIntervalMS <= 0 {
		cfg.PollIntervalMS = DefaultPollIntervalMS
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
