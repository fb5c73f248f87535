package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Loskoss/Productivity-Tracker/internal/storage"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's tracked totals",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store := openStore(cfg)
	now := time.Now()

	sess, err := store.Load(now)
	if err != nil && !errors.Is(err, storage.ErrCorruptSession) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if len(sess.Activities) == 0 {
		fmt.Println("Nothing tracked today.")
		return nil
	}

	var top string
	var topSeconds int64
	for _, a := range sess.Activities {
		if a.TotalSeconds > topSeconds {
			top, topSeconds = a.Name, a.TotalSeconds
		}
	}

	fmt.Printf("Today: %s across %d applications.\n",
		timecalc.FormatDurationHHMMSS(sess.TotalSeconds()), len(sess.Activities))
	if top != "" {
		fmt.Printf("Most used: %s (%s)\n", top, timecalc.FormatDuration(topSeconds))
	}
	return nil
}
