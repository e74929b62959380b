package cmd

import (
	"errors"
	"fmt"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var (
	setRelayURL       string
	setConnectionName string
	setKeyName        string
	setRedirectionURL string
)

func init() {
	setCmd.Flags().StringVar(&setRelayURL, "relay-url", "", "relay namespace host, e.g. sbname.servicebus.windows.net")
	setCmd.Flags().StringVar(&setConnectionName, "connection-name", "", "hybrid connection name")
	setCmd.Flags().StringVar(&setKeyName, "key-name", "", "shared access key name, e.g. RootManageSharedAccessKey")
	setCmd.Flags().StringVar(&setRedirectionURL, "redirection-url", "", "local service address, e.g. http://localhost:4200/")
}

func resetSetCommandState() {
	setRelayURL = ""
	setConnectionName = ""
	setKeyName = ""
	setRedirectionURL = ""
}

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change relay identity or the local service address",
	Long: `Updates the given fields and saves the settings file. Fields whose flags
are not given keep their current value; an explicitly empty value clears them.

Examples:
  tunnelrelay settings set --relay-url sbname.servicebus.windows.net --connection-name my-connection
  tunnelrelay settings set --redirection-url http://localhost:4200/`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting set command")

		opts := updateOptionsFromFlags(cmd)
		if opts.IsEmpty() {
			finalMessage := ui.Caution("Nothing to update") + "\n" +
				ui.Hint("Pass at least one of " + ui.Flag.Sprint("--relay-url") + ", " +
				ui.Flag.Sprint("--connection-name") + ", " + ui.Flag.Sprint("--key-name") + " or " +
				ui.Flag.Sprint("--redirection-url"))
			fmt.Print(ui.EnsureNewline(finalMessage))
			return nil
		}

		spinner, cleanup := startSpinner("Updating settings...")
		defer cleanup()

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}

		if err := workflows.Update(cmd.Context(), env, opts); err != nil {
			if errors.Is(err, kerrors.ErrInvalidRedirectionURL) {
				spinner.FinalMSG = failureMessage("Invalid service url "+ui.Highlight.Sprint(setRedirectionURL),
					"Use an absolute http or https url such as "+ui.Code.Sprint("http://localhost:4200/"))
				return nil
			}
			return Logger.ErrorfAndReturn("failed to update settings: %v", err)
		}

		spinner.FinalMSG = ui.Done("Settings saved to " + ui.Path.Sprint(env.Store.Path()))
		return nil
	},
}

// updateOptionsFromFlags includes only the flags given on the command line.
func updateOptionsFromFlags(cmd *cobra.Command) workflows.UpdateOptions {
	var opts workflows.UpdateOptions
	flags := cmd.Flags()
	if flags.Changed("relay-url") {
		opts.RelayURL = &setRelayURL
	}
	if flags.Changed("connection-name") {
		opts.ConnectionName = &setConnectionName
	}
	if flags.Changed("key-name") {
		opts.KeyName = &setKeyName
	}
	if flags.Changed("redirection-url") {
		opts.RedirectionURL = &setRedirectionURL
	}
	return opts
}
