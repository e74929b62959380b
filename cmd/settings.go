package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// SettingsCmd is the top-level settings command.
var SettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage relay settings and the shared key",
	Long: `Provides commands for inspecting and changing the relay settings file.

The relay shared key is stored sealed to this machine and user. It is only
revealed by an explicit export.

Examples:
  # Show the current settings
  tunnelrelay settings show

  # Point the agent at a relay
  tunnelrelay settings set --relay-url sbname.servicebus.windows.net \
    --connection-name my-connection --key-name RootManageSharedAccessKey

  # Store the shared key (prompts when omitted)
  tunnelrelay settings set-key

  # Move the settings to another machine
  tunnelrelay settings export -o relay.json
  tunnelrelay settings import relay.json

  # Review key custody on this machine
  tunnelrelay settings log`,
	PersistentPreRun: setupLogger,
}

func init() {
	addCommonFlags(SettingsCmd)

	SettingsCmd.AddCommand(showCmd)
	SettingsCmd.AddCommand(setCmd)
	SettingsCmd.AddCommand(setKeyCmd)
	SettingsCmd.AddCommand(exportCmd)
	SettingsCmd.AddCommand(importCmd)
	SettingsCmd.AddCommand(logoutCmd)
	SettingsCmd.AddCommand(pluginsCmd)
	SettingsCmd.AddCommand(logCmd)
}

// GetSettingsCmd returns the SettingsCmd for testing.
func GetSettingsCmd() *cobra.Command {
	return SettingsCmd
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	settingsPath = ""
	resetShowCommandState()
	resetSetCommandState()
	resetExportCommandState()
	resetLogCommandState()
	resetRunCommandState()
	resetCobraFlagState(SettingsCmd)
	resetCobraFlagState(RunCmd)
}

// resetCobraFlagState clears the Changed marker on every flag of cmd and its
// subcommands to prevent test pollution.
func resetCobraFlagState(cmd *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		flag.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCobraFlagState(sub)
	}
}
