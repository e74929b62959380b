// Package cmd contains testing utilities shared between command tests.
// This file provides common functions for setting up isolated user
// directories, capturing output and running commands through a fresh root.
package cmd

import (
	"bytes"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"

	"github.com/spf13/cobra"
)

// testDirs are the per-test user directories.
type testDirs struct {
	configHome string
	dataHome   string
}

// settingsFile is the default settings path under the test config home.
func (d testDirs) settingsFile() string {
	return filepath.Join(d.configHome, "tunnelrelay", "appSettings.json")
}

// auditLog is the audit log path under the test data home.
func (d testDirs) auditLog() string {
	return filepath.Join(d.dataHome, "tunnelrelay", "audit.jsonl")
}

// setupTestEnvironment points the config and data directories at temporary
// directories and resets command state before and after the test.
func setupTestEnvironment(t *testing.T) testDirs {
	t.Helper()

	root := t.TempDir()
	dirs := testDirs{
		configHome: filepath.Join(root, "config"),
		dataHome:   filepath.Join(root, "data"),
	}
	t.Setenv("XDG_CONFIG_HOME", dirs.configHome)
	t.Setenv("XDG_DATA_HOME", dirs.dataHome)

	ResetGlobalState()
	t.Cleanup(ResetGlobalState)

	return dirs
}

// captureOutput captures both stdout and stderr during function execution.
func captureOutput(fn func() error) (string, error) {
	// Save original stdout and stderr
	originalStdout := os.Stdout
	originalStderr := os.Stderr

	// Create pipes to capture output
	stdoutReader, stdoutWriter, _ := os.Pipe()
	stderrReader, stderrWriter, _ := os.Pipe()

	// Replace stdout and stderr
	os.Stdout = stdoutWriter
	os.Stderr = stderrWriter

	stdoutChan := make(chan string, 1)
	stderrChan := make(chan string, 1)

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stdoutReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stdoutChan <- buf.String()
	}()

	go func() {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, stderrReader); err != nil {
			log.Fatalf("Failed to run copy command: %s", err)
		}
		stderrChan <- buf.String()
	}()

	// Execute the function
	err := fn()

	// Close writers to signal EOF
	stdoutWriter.Close()
	stderrWriter.Close()

	// Restore original stdout and stderr
	os.Stdout = originalStdout
	os.Stderr = originalStderr

	return <-stdoutChan + <-stderrChan, err
}

// createTestCLI creates a fresh root command wired to the real subcommands
// and set to run args.
func createTestCLI(args ...string) *cobra.Command {
	Logger = logger.Logger{}

	rootCmd := &cobra.Command{
		Use:           "tunnelrelay",
		Short:         "TunnelRelay - expose a local service through an Azure Relay hybrid connection.",
		SilenceErrors: true,
	}
	rootCmd.AddCommand(SettingsCmd)
	rootCmd.AddCommand(RunCmd)
	rootCmd.SetArgs(args)

	return rootCmd
}

// runCLI executes args through a fresh root and returns the combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()
	return captureOutput(func() error {
		return createTestCLI(args...).Execute()
	})
}
