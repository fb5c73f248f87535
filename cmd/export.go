package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

var (
	exportWeek   bool
	exportDate   string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export raw session data to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().BoolVar(&exportWeek, "week", false, "Export this ISO week instead of a single day")
	exportCmd.Flags().StringVar(&exportDate, "date", "", "Day to export (YYYY-MM-DD, default today)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store := openStore(cfg)
	day := parseDateFlag(exportDate)

	from, to := day, day
	if exportWeek {
		from, to = timecalc.WeekRange(day)
	}

	sessions, err := store.LoadRange(from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	switch exportFormat {
	case "csv":
		printSessionsCSV(sessions)
	default: // json
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	}

	return nil
}

func printSessionsCSV(sessions []*model.Session) {
	fmt.Println("date,application,window_title,start,end,duration_seconds")
	for _, sess := range sessions {
		for _, a := range sess.Activities {
			title := a.Details[model.DetailWindowTitle]
			for _, e := range a.TimeEntries {
				fmt.Printf("%s,%s,%s,%s,%s,%d\n",
					sess.Date,
					a.Name,
					title,
					e.StartTime.Format(time.RFC3339),
					e.EndTime.Format(time.RFC3339),
					e.DurationSeconds)
			}
		}
	}
}
