// Package utils provides shared helpers for the tunnelrelay CLI.
//
// # System Utilities
//
//   - GetUsername: returns the current system username
//   - GetHostname: returns the system hostname
//   - Actor: "user@host" for audit entries
//
// # String Utilities
//
//   - FormatList: bullet list of highlighted items
//   - FormatKeyValues: sorted "key = value" lines
//
// # I/O Utilities
//
//   - ReadStdin: reads piped data from standard input
//   - ReadAllNonEmpty: reads a reader to the end, rejecting empty input
//
// # Terminal Utilities
//
//   - ReadSecret: prompts for a value without echoing it
//   - IsTerminal: checks if stdin is a terminal
package utils
