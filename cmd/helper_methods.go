package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	debug        bool
	settingsPath string
	Logger       logger.Logger
)

// ExitError asks main to terminate with Code without printing anything else.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// addCommonFlags registers the flags shared by every top-level command.
func addCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	cmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "path to appSettings.json (default: from config.toml)")
}

func setupLogger(cmd *cobra.Command, args []string) {
	Logger = logger.Logger{
		Verbose: verbose,
		Debug:   debug,
	}
	Logger.Debugf("Initializing %s command with verbose=%t, debug=%t", cmd.Name(), verbose, debug)
}

// openEnvironment opens the settings store selected by --settings or the
// preferences.
func openEnvironment() (*workflows.Environment, error) {
	return workflows.Open(workflows.OpenOptions{
		SettingsPath: settingsPath,
		Logger:       Logger,
	})
}

// startSpinner creates and starts a spinner with the given message when not in verbose or debug mode.
// Returns the spinner and a function that should be deferred to clean up.
//
// IMPORTANT: spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// automatically calls ui.EnsureNewline() on the final message before printing it.
func startSpinner(message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message

	if err := s.Color("cyan"); err != nil {
		Logger.Warnf("Failed to set spinner color: %v", err)
	}

	quiet := !verbose && !debug
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("Running in verbose or debug mode: %s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stdout)
		}

		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		// Print final message to stdout (for tests to capture).
		if finalMsg != "" {
			fmt.Print(finalMsg)
		}
	}

	return s, cleanup
}

// failureMessage renders a one-line error with an optional hint.
func failureMessage(message, hint string) string {
	msg := ui.Failed(message)
	if hint != "" {
		msg += "\n" + ui.Hint(hint)
	}
	return msg
}
