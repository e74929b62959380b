package cmd

import (
	"errors"
	"os"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/utils"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE|-",
	Short: "Replace the settings with an exported transfer string",
	Long: `Reads a transfer string produced by export, seals its shared key to this
machine and saves it as the current settings. Use - to read from stdin.

The current settings are replaced entirely. If the transfer string cannot be
read they are left untouched.

Examples:
  tunnelrelay settings import relay.json
  cat relay.json | tunnelrelay settings import -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting import command")
		source := args[0]

		var data []byte
		var err error
		if source == "-" {
			data, err = utils.ReadStdin()
		} else {
			data, err = os.ReadFile(source)
		}
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read %s: %v", source, err)
		}

		spinner, cleanup := startSpinner("Importing settings...")
		defer cleanup()

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}

		result, err := workflows.Import(cmd.Context(), env, workflows.ImportOptions{Data: data, Source: source})
		if err != nil {
			if errors.Is(err, kerrors.ErrDeserialization) {
				spinner.FinalMSG = failureMessage(ui.Path.Sprint(source)+" is not an exported settings file",
					"Create one with "+ui.Code.Sprint("tunnelrelay settings export"))
				return nil
			}
			return Logger.ErrorfAndReturn("failed to import settings: %v", err)
		}

		spinner.FinalMSG = ui.Done("Imported settings into " + ui.Path.Sprint(env.Store.Path()))
		if source != "-" && result.KeyIncluded {
			spinner.FinalMSG += "\n" + ui.Hint("Delete " + ui.Path.Sprint(source) + ", it contains the plaintext shared key")
		}
		return nil
	},
}
