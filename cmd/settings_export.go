package cmd

import (
	"fmt"

	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var exportOutputPath string

func init() {
	exportCmd.Flags().StringVarP(&exportOutputPath, "output", "o", "", "write the transfer string to this file instead of stdout")
}

// resetExportCommandState resets the export command's global state for testing.
func resetExportCommandState() {
	exportOutputPath = ""
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the settings, including the shared key, as a transfer string",
	Long: `Serializes the current settings with the shared key unsealed so they can be
imported on another machine.

The transfer string contains the plaintext shared key. Treat it like the key
itself: do not commit it, and delete it once imported.

Without -o/--output the transfer string is written to stdout.

Examples:
  tunnelrelay settings export -o relay.json
  tunnelrelay settings export | ssh other-host tunnelrelay settings import -`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting export command")

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}

		result, err := workflows.Export(cmd.Context(), env, workflows.ExportOptions{OutputPath: exportOutputPath})
		if err != nil {
			return Logger.ErrorfAndReturn("failed to export settings: %v", err)
		}

		if result.OutputPath == "" {
			if result.KeyIncluded {
				Logger.WarnfAlways("The exported settings contain the plaintext shared key")
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Transfer)
			return nil
		}

		finalMessage := ui.Done("Exported settings to " + ui.Path.Sprint(result.OutputPath))
		if result.KeyIncluded {
			finalMessage += "\n" + ui.Caution("This file contains the plaintext shared key. Delete it once imported.")
		}
		fmt.Println(finalMessage)
		return nil
	},
}
