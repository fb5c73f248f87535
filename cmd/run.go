package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/Loskoss/Productivity-Tracker/internal/focus"
	"github.com/Loskoss/Productivity-Tracker/internal/log"
	"github.com/Loskoss/Productivity-Tracker/internal/track"
	"github.com/Loskoss/Productivity-Tracker/internal/web"
)

var (
	runPort         int
	runInterval     time.Duration
	runNoBrowser    bool
	runSessionsDir  string
	runFocusCommand string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start tracking and serve the local web view",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().IntVar(&runPort, "port", 0, "Web view port (overrides config)")
	runCmd.Flags().DurationVar(&runInterval, "interval", 0, "Focus polling interval (overrides config)")
	runCmd.Flags().BoolVar(&runNoBrowser, "no-browser", false, "Do not open the web view in a browser")
	runCmd.Flags().StringVar(&runSessionsDir, "sessions-dir", "", "Session directory (overrides config)")
	runCmd.Flags().StringVar(&runFocusCommand, "focus-command", "", "Focus helper command (overrides config)")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	if runPort != 0 {
		cfg.Port = runPort
	}
	if runInterval > 0 {
		cfg.PollIntervalMS = int(runInterval / time.Millisecond)
	}
	if runSessionsDir != "" {
		cfg.SessionsDir = runSessionsDir
	}
	if runFocusCommand != "" {
		cfg.FocusCommand = runFocusCommand
	}
	if runNoBrowser {
		cfg.OpenBrowser = false
	}

	store := openStore(cfg)
	source := focus.NewCommandSource(cfg.FocusCommand)
	tracker := track.New(store, source, track.WithInterval(cfg.PollInterval()))

	if err := tracker.Start(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if cfg.FocusCommand == "" {
		log.Warn().Msg("no focus_command configured; nothing will be tracked until one is set in ~/.ptrack/config.json")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trackerDone := make(chan struct{})
	go func() {
		tracker.Run(ctx)
		close(trackerDone)
	}()

	srv := web.NewServer(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), tracker)
	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("url", srv.URL()).Str("sessions_dir", store.Dir()).Msg("web view listening")
		serverErr <- srv.ListenAndServe()
	}()

	if cfg.OpenBrowser {
		go func() {
			// Give the listener a moment before pointing a browser at it.
			time.Sleep(500 * time.Millisecond)
			if err := browser.OpenURL(srv.URL()); err != nil {
				log.Warn().Err(err).Msg("could not open browser")
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil {
			log.Error().Err(err).Msg("web view failed")
		}
	}

	// Stop the loop first, then close out and persist the open span.
	cancel()
	<-trackerDone
	tracker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("web view shutdown error")
	}

	return nil
}
