// Package workflows provides high-level orchestration for tunnelrelay commands.
//
// Workflows coordinate the settings store, the secret protector and the
// audit log to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Opens an Environment and calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Performing the store operation
//   - Persisting the result
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - SetKey: seals and saves the relay shared key
//   - Export: produces a transfer string with the key unsealed
//   - Import: replaces the settings from a transfer string
//   - Logout: resets the settings to defaults
//   - Update: changes relay identity and the local service address
//
// # Error Handling
//
// Workflows return errors wrapping the sentinels of internal/errors, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching:
//
//	result, err := workflows.Import(ctx, env, opts)
//	if errors.Is(err, kerrors.ErrDeserialization) {
//	    // Show user-friendly message
//	}
package workflows
