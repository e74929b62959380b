package workflows

import (
	"context"
	"fmt"

	"github.com/PolarWolf314/tunnelrelay/internal/audit"
	"github.com/PolarWolf314/tunnelrelay/internal/configs"
)

// SetKey seals key, saves the settings and records the change.
//
// Returns ErrInvalidSharedKey if key is not base64.
func SetKey(ctx context.Context, env *Environment, key string) error {
	if err := env.Store.SetSharedKey(key); err != nil {
		return err
	}
	if err := env.Store.Save(); err != nil {
		return err
	}

	env.record(env.newEntry(audit.OpSetKey))
	return nil
}

// ExportOptions configures the export workflow.
type ExportOptions struct {
	// OutputPath is where the transfer string is written, with mode 0600.
	// If empty, nothing is written and the caller prints Transfer.
	OutputPath string
}

// ExportResult contains the outcome of an export operation.
type ExportResult struct {
	// Transfer is the serialized settings with the shared key unsealed.
	Transfer string

	// KeyIncluded reports whether Transfer carries a shared key.
	KeyIncluded bool

	// OutputPath is the file written, or empty.
	OutputPath string
}

// Export serializes the settings with the shared key unsealed.
//
// Returns ErrProtection if the stored key cannot be unsealed on this machine.
func Export(ctx context.Context, env *Environment, opts ExportOptions) (*ExportResult, error) {
	transfer, err := env.Store.Export()
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Transfer:    transfer,
		KeyIncluded: env.Store.Snapshot().HasSharedKey(),
		OutputPath:  opts.OutputPath,
	}

	entry := env.newEntry(audit.OpExport)
	entry.KeyIncluded = result.KeyIncluded
	entry.OutputPath = "-"

	if opts.OutputPath != "" {
		// An existing file is replaced, never reused with its old mode.
		if err := configs.WriteFileAtomic(opts.OutputPath, []byte(transfer+"\n"), 0600); err != nil {
			return nil, fmt.Errorf("writing %s: %w", opts.OutputPath, err)
		}
		entry.OutputPath = opts.OutputPath
	}

	env.record(entry)
	return result, nil
}

// ImportOptions configures the import workflow.
type ImportOptions struct {
	// Data is the transfer string.
	Data []byte

	// Source names where Data came from, for the audit log.
	Source string
}

// ImportResult contains the outcome of an import operation.
type ImportResult struct {
	KeyIncluded  bool
	PluginsCount int
}

// Import replaces the settings with a transfer string and saves them. On
// failure the current settings are kept.
//
// Returns ErrDeserialization if Data is not a transfer string.
// Returns ErrProtection if the imported key cannot be sealed.
func Import(ctx context.Context, env *Environment, opts ImportOptions) (*ImportResult, error) {
	if err := env.Store.Import(string(opts.Data)); err != nil {
		return nil, err
	}
	if err := env.Store.Save(); err != nil {
		return nil, err
	}

	settings := env.Store.Snapshot()
	result := &ImportResult{
		KeyIncluded:  settings.HasSharedKey(),
		PluginsCount: len(settings.EnabledPlugins),
	}

	entry := env.newEntry(audit.OpImport)
	entry.Source = opts.Source
	entry.KeyIncluded = result.KeyIncluded
	entry.PluginsCount = result.PluginsCount
	env.record(entry)

	return result, nil
}

// Logout resets the settings to defaults and saves them.
func Logout(ctx context.Context, env *Environment) error {
	env.Store.Logout()
	if err := env.Store.Save(); err != nil {
		return err
	}

	env.record(env.newEntry(audit.OpLogout))
	return nil
}
