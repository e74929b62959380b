package cmd

import (
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the relay identity, shared key and plugin settings",
	Long: `Resets the settings to their defaults and saves them, removing the relay
identity, the sealed shared key and all plugin configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting logout command")
		spinner, cleanup := startSpinner("Logging out...")
		defer cleanup()

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}

		if err := workflows.Logout(cmd.Context(), env); err != nil {
			return Logger.ErrorfAndReturn("failed to log out: %v", err)
		}

		spinner.FinalMSG = ui.Done("Logged out, settings reset to defaults")
		return nil
	},
}
