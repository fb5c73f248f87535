package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Loskoss/Productivity-Tracker/internal/config"
	"github.com/Loskoss/Productivity-Tracker/internal/log"
	"github.com/Loskoss/Productivity-Tracker/internal/storage"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// loadConfig reads the config file and applies the log level.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log.SetLevel(cfg.LogLevel)
	return cfg
}

// openStore resolves the sessions directory and returns a store over it.
func openStore(cfg config.Config) *storage.Store {
	dir := cfg.SessionsDir
	if dir == "" {
		var err error
		dir, err = config.DefaultSessionsDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	return storage.NewStore(dir)
}

// parseDateFlag parses a --date value, defaulting to today when empty.
func parseDateFlag(raw string) time.Time {
	if raw == "" {
		return time.Now()
	}
	day, err := time.ParseInLocation(timecalc.DateKey, raw, time.Local)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid date %q, want YYYY-MM-DD\n", raw)
		os.Exit(2)
	}
	return day
}
