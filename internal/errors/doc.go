// Package errors provides typed error values for tunnelrelay.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
//   - Custody errors: sealing and key access (ErrProtection, ErrMissingSecret)
//   - Settings errors: malformed files or values (ErrDeserialization)
//   - Relay errors: connection options and session state (ErrMissingRelayOption)
//
// # Usage
//
// Wrap errors with additional context in internal packages:
//
//	return nil, fmt.Errorf("unsealing shared key: %w", errors.ErrProtection)
//
// Handle them in the CLI layer:
//
//	key, err := store.GetSharedKey()
//	if errors.Is(err, kerrors.ErrMissingSecret) {
//	    // Tell the user to run `tunnelrelay settings set-key`
//	}
package errors
