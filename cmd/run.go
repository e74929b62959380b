package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PolarWolf314/tunnelrelay/internal/configs"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
	"github.com/PolarWolf314/tunnelrelay/internal/protect"
	"github.com/PolarWolf314/tunnelrelay/internal/relay"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"

	"github.com/spf13/cobra"
)

const closeTimeout = 10 * time.Second

var (
	runServiceBusURL  string
	runKeyName        string
	runKey            string
	runConnectionName string
	runServiceAddress string

	// newSession builds the relay session for validated options.
	newSession = func(opts relay.Options, log logger.Logger) relay.Session {
		return relay.NewHybridConnectionListener(opts, log)
	}

	// notifyContext returns a context cancelled on the first shutdown signal.
	notifyContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	}
)

func init() {
	addCommonFlags(RunCmd)

	RunCmd.Flags().StringVar(&runServiceBusURL, "service-bus-url", "", "relay namespace host, e.g. sbname.servicebus.windows.net")
	RunCmd.Flags().StringVar(&runKeyName, "key-name", "", "shared access key name, e.g. RootManageSharedAccessKey")
	RunCmd.Flags().StringVar(&runKey, "key", "", "shared access key with Manage, Send and Listen rights")
	RunCmd.Flags().StringVar(&runConnectionName, "connection-name", "", "hybrid connection name; the connection must already exist")
	RunCmd.Flags().StringVar(&runServiceAddress, "service-address", "", "endpoint to route requests to, e.g. http://localhost:4200")
}

func resetRunCommandState() {
	runServiceBusURL = ""
	runKeyName = ""
	runKey = ""
	runConnectionName = ""
	runServiceAddress = ""
}

// RunCmd starts the relay listener.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the relay and listen until interrupted",
	Long: `Opens the hybrid connection listener and keeps it open until SIGINT or
SIGTERM.

Any value not given as a flag is taken from the stored settings. Each value
still missing is reported and the command exits with status -1.

Examples:
  # Use the stored settings
  tunnelrelay run

  # Override the local service for this run
  tunnelrelay run --service-address http://localhost:4200`,
	Args:             cobra.NoArgs,
	PersistentPreRun: setupLogger,
	SilenceUsage:     true,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting run command")

		opts, err := flagOptions()
		if err != nil {
			return Logger.ErrorfAndReturn("invalid --service-address: %v", err)
		}

		if len(opts.Validate()) > 0 {
			stored, err := storedOptions()
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), failureMessage("Could not read the stored settings: "+err.Error(),
					"Fix the settings file, or pass every value as a flag"))
				return Logger.ErrorfAndReturn("failed to load settings: %v", err)
			}
			opts = opts.Merge(stored)
		}

		if problems := opts.Validate(); len(problems) > 0 {
			for _, problem := range problems {
				fmt.Fprintln(cmd.ErrOrStderr(), problem)
			}
			return &ExitError{Code: -1}
		}

		ctx, stop := notifyContext(cmd.Context())
		defer stop()

		session := newSession(opts, Logger)
		if err := session.Initialize(ctx); err != nil {
			return Logger.ErrorfAndReturn("failed to connect to relay: %v", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Done("Listening on "+
			ui.Highlight.Sprint(opts.ServiceBusURLHost+"/"+opts.ConnectionPath)+" "+ui.MarkHint+" "+
			ui.Path.Sprint(opts.InternalServiceURL.String())))

		<-ctx.Done()
		Logger.Infof("Shutting down")

		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := session.Close(closeCtx); err != nil {
			return Logger.ErrorfAndReturn("failed to close relay session: %v", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Done("Relay closed"))
		return nil
	},
}

// flagOptions builds relay options from the command-line flags only.
func flagOptions() (relay.Options, error) {
	opts := relay.Options{
		ServiceBusURLHost: runServiceBusURL,
		ConnectionPath:    runConnectionName,
		KeyName:           runKeyName,
		SharedKey:         protect.Secret(runKey),
	}
	if runServiceAddress != "" {
		parsed, err := configs.ParseRedirectionURL(runServiceAddress)
		if err != nil {
			return relay.Options{}, err
		}
		opts.InternalServiceURL = parsed
	}
	return opts, nil
}

// storedOptions reads fallback relay options from the settings store. Only
// a shared key that was never set degrades to a missing value; a settings
// file that can't be loaded or a key that can't be unsealed is an error.
func storedOptions() (relay.Options, error) {
	env, err := openEnvironment()
	if err != nil {
		return relay.Options{}, err
	}
	return relay.OptionsFromStore(env.Store)
}
