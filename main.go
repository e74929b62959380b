package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/PolarWolf314/tunnelrelay/cmd"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tunnelrelay",
	Short: "TunnelRelay - expose a local service through an Azure Relay hybrid connection.",
	Long: `TunnelRelay forwards requests arriving at an Azure Relay hybrid connection
to a service running on this machine.

The relay identity, the sealed shared key and plugin configuration are kept in
a settings file that can be exported and imported between machines.

Usage:
  tunnelrelay <command> [flags]

Available Commands:
  run        Connect to the relay and listen until interrupted
  settings   Manage relay settings and the shared key

Run 'tunnelrelay help <command>' for more details on a specific command.
`,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println()
		banner := figure.NewColorFigure("TunnelRelay", "small", "cyan", true)
		banner.Print()
		fmt.Println()
		fmt.Println("Run 'tunnelrelay --help' to see available commands.")
	},
}

func init() {
	rootCmd.AddCommand(cmd.RunCmd)
	rootCmd.AddCommand(cmd.SettingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Println(err)
		os.Exit(1)
	}
}
