package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/PolarWolf314/tunnelrelay/internal/audit"
	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	logLimit     int
	logReverse   bool
	logOperation string
	logSince     string
	logUntil     string
	logJSON      bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation (comma-separated: set-key,export,import,logout)")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries on or after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries on or before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "output as JSON array")
}

func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logOperation = ""
	logSince = ""
	logUntil = ""
	logJSON = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the shared key custody log",
	Long: `Displays who stored, exported, imported or cleared the relay settings on
this machine, and when.

Examples:
  tunnelrelay settings log
  tunnelrelay settings log -n 10 --reverse
  tunnelrelay settings log --operation export,import
  tunnelrelay settings log --since 2024-01-01 --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting log command")

		result, err := workflows.Log(context.Background(), workflows.LogOptions{
			Limit:      logLimit,
			Reverse:    logReverse,
			Operations: logOperation,
			Since:      logSince,
			Until:      logUntil,
		})
		if err != nil {
			if errors.Is(err, kerrors.ErrInvalidDateFormat) {
				fmt.Println(failureMessage(err.Error(), ""))
				return nil
			}
			return Logger.ErrorfAndReturn("failed to read audit log: %v", err)
		}
		Logger.Debugf("Read %d entries from %s, %d after filtering", result.Total, result.LogPath, len(result.Entries))

		if logJSON {
			entries := result.Entries
			if entries == nil {
				entries = []audit.Entry{}
			}
			data, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to encode entries: %v", err)
			}
			fmt.Println(string(data))
			return nil
		}

		if len(result.Entries) == 0 {
			if result.Total == 0 {
				fmt.Println(ui.Muted.Sprint("no custody operations recorded yet"))
			} else {
				fmt.Println(ui.Muted.Sprint("no entries match the filters"))
			}
			return nil
		}

		for _, e := range result.Entries {
			fmt.Printf("%-19s  %-25s  %-8s  %s\n",
				workflows.FormatDateTime(e.Timestamp), e.Actor, e.Operation, workflows.FormatDetails(e))
		}
		return nil
	},
}
