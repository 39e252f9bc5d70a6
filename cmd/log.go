package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/audit"
	"github.com/worksdev/portal/internal/ui"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func resetLogState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the local audit log",
	Long: `Displays the operations performed from this device.

Examples:
  portal log                                   # View full log
  portal log -n 10 --reverse                   # Last 10 entries, newest first
  portal log --operation secrets.add,keys.init # Filter by operation
  portal log --json                            # JSON output`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := audit.ReadEntries()
		if err != nil {
			return err
		}

		if logOperation != "" {
			var filtered []audit.Entry
			for _, op := range strings.Split(logOperation, ",") {
				filtered = append(filtered, audit.Filter(entries, strings.TrimSpace(op))...)
			}
			entries = sortByTimestamp(filtered)
		}

		if logReverse {
			for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
				entries[i], entries[j] = entries[j], entries[i]
			}
		}
		if logLimit > 0 && len(entries) > logLimit {
			if logReverse {
				entries = entries[:logLimit]
			} else {
				entries = entries[len(entries)-logLimit:]
			}
		}

		out := cmd.OutOrStdout()
		if logJSON {
			if entries == nil {
				entries = []audit.Entry{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(out, "No audit log entries found.")
			return nil
		}
		for _, e := range entries {
			printEntry(out, e)
		}
		return nil
	},
}

// Timestamps share one fixed-width UTC layout, so they sort as strings.
func sortByTimestamp(entries []audit.Entry) []audit.Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})
	return entries
}

func printEntry(out io.Writer, e audit.Entry) {
	detail := ""
	switch e.Operation {
	case audit.OpAddSecret:
		detail = fmt.Sprintf("%q id %d", e.SecretLabel, e.SecretID)
	case audit.OpRemoveSecret:
		detail = fmt.Sprintf("id %d", e.SecretID)
	case audit.OpRevealSecrets:
		detail = fmt.Sprintf("%d secrets, %d failed", e.SecretsCount, e.FailedCount)
	case audit.OpSetDiscount:
		detail = fmt.Sprintf("order %d, %s%%", e.OrderID, e.Percentage)
		if e.Disposable {
			detail += ", disposable"
		}
	case audit.OpSetStatus:
		detail = fmt.Sprintf("order %d, status %d", e.OrderID, e.Status)
	case audit.OpRegisterDevice:
		if e.Replaced {
			detail = "replaced previous key"
		}
	}

	user := e.User
	if user == "" {
		user = "unknown"
	}
	fmt.Fprintf(out, "%s  %-18s %-24s %s\n", ui.Muted.Sprint(e.Timestamp), e.Operation, user, detail)
}
