package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

var (
	reportWeek   bool
	reportDate   string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show aggregated per-application time",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Aggregate over this ISO week instead of a single day")
	reportCmd.Flags().StringVar(&reportDate, "date", "", "Day to report on (YYYY-MM-DD, default today)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	store := openStore(cfg)
	day := parseDateFlag(reportDate)

	from, to := day, day
	label := day.Format(timecalc.DateKey)
	if reportWeek {
		from, to = timecalc.WeekRange(day)
		label = timecalc.ISOWeekLabel(day)
	}

	sessions, err := store.LoadRange(from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	totals, order := aggregateByApplication(sessions)

	var grandTotal int64
	for _, sec := range totals {
		grandTotal += sec
	}

	switch reportFormat {
	case "csv":
		fmt.Println("application,duration_seconds")
		for _, name := range order {
			fmt.Printf("%s,%d\n", name, totals[name])
		}
	case "json":
		fmt.Println("{")
		fmt.Printf("  \"range\": %q,\n", label)
		fmt.Println("  \"applications\": [")
		for i, name := range order {
			comma := ","
			if i == len(order)-1 {
				comma = ""
			}
			fmt.Printf("    {\"name\": %q, \"total_seconds\": %d}%s\n", name, totals[name], comma)
		}
		fmt.Println("  ],")
		fmt.Printf("  \"total_seconds\": %d\n", grandTotal)
		fmt.Println("}")
	default: // md
		fmt.Printf("# %s\n\n", label)
		if len(order) == 0 {
			fmt.Println("No activity recorded.")
			return nil
		}
		for _, name := range order {
			fmt.Printf("- **%s**: %s\n", name, timecalc.FormatDuration(totals[name]))
		}
		fmt.Printf("\nTotal: %s\n", timecalc.FormatDuration(grandTotal))
	}

	return nil
}

// aggregateByApplication sums activity totals across sessions, returning the
// totals and the names ordered by descending time (ties alphabetical).
func aggregateByApplication(sessions []*model.Session) (map[string]int64, []string) {
	totals := map[string]int64{}
	var order []string
	for _, sess := range sessions {
		for _, a := range sess.Activities {
			if _, seen := totals[a.Name]; !seen {
				order = append(order, a.Name)
			}
			totals[a.Name] += a.TotalSeconds
		}
	}
	sort.Slice(order, func(i, j int) bool {
		if totals[order[i]] != totals[order[j]] {
			return totals[order[i]] > totals[order[j]]
		}
		return order[i] < order[j]
	})
	return totals, order
}
