package cmd

import (
	"errors"
	"strings"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/utils"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var setKeyCmd = &cobra.Command{
	Use:   "set-key [KEY]",
	Short: "Store the relay shared key",
	Long: `Seals the base64 shared access key to this machine and saves it.

When KEY is omitted it is read without echo from the terminal, or from
stdin when data is piped in. Passing KEY on the command line leaves it in
your shell history.

Examples:
  tunnelrelay settings set-key
  echo "$RELAY_KEY" | tunnelrelay settings set-key`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting set-key command")

		key, err := readSharedKeyInput(args)
		if err != nil {
			return Logger.ErrorfAndReturn("failed to read shared key: %v", err)
		}

		spinner, cleanup := startSpinner("Sealing shared key...")
		defer cleanup()

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}

		if err := workflows.SetKey(cmd.Context(), env, key); err != nil {
			if errors.Is(err, kerrors.ErrInvalidSharedKey) {
				spinner.FinalMSG = failureMessage("The shared key is not valid base64",
					"Copy the primary or secondary key from the shared access policy")
				return nil
			}
			return Logger.ErrorfAndReturn("failed to store shared key: %v", err)
		}

		spinner.FinalMSG = ui.Done("Shared key sealed and saved to " + ui.Path.Sprint(env.Store.Path()))
		return nil
	},
}

func readSharedKeyInput(args []string) (string, error) {
	if len(args) == 1 {
		Logger.Warnf("Shared key passed as an argument may be kept in shell history")
		return args[0], nil
	}

	var data []byte
	var err error
	if utils.IsTerminal() {
		data, err = utils.ReadSecret("Shared key: ")
	} else {
		data, err = utils.ReadStdin()
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
