package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/storage"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

var (
	listDate    string
	listEntries bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked activities for a day",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listDate, "date", "", "Day to list (YYYY-MM-DD, default today)")
	listCmd.Flags().BoolVar(&listEntries, "entries", false, "Show individual time entries")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store := openStore(cfg)
	day := parseDateFlag(listDate)

	sess, err := store.Load(day)
	if err != nil && !errors.Is(err, storage.ErrCorruptSession) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if errors.Is(err, storage.ErrCorruptSession) {
		fmt.Fprintln(os.Stderr, "Warning: session file was corrupt; showing an empty day.")
	}

	printSession(sess)
	return nil
}

func printSession(sess *model.Session) {
	if len(sess.Activities) == 0 {
		fmt.Printf("%s: no activity recorded.\n", sess.Date)
		return
	}

	fmt.Println(sess.Date)
	for _, a := range sess.Activities {
		fmt.Printf("  %-30s %4d spans  %s\n", a.Name, len(a.TimeEntries), a.TotalTime)
		if listEntries {
			for _, e := range a.TimeEntries {
				fmt.Printf("    %s–%s  (%s)\n",
					e.StartTime.Format("15:04:05"),
					e.EndTime.Format("15:04:05"),
					e.Label())
			}
		}
	}
	fmt.Printf("Total: %s\n", timecalc.FormatDuration(sess.TotalSeconds()))
}
