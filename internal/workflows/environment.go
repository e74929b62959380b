package workflows

import (
	"fmt"

	"github.com/PolarWolf314/tunnelrelay/internal/audit"
	"github.com/PolarWolf314/tunnelrelay/internal/configs"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
	"github.com/PolarWolf314/tunnelrelay/internal/protect"
)

// OpenOptions configures Open.
type OpenOptions struct {
	// Paths overrides the per-user directories. If nil, configs.DefaultPaths is used.
	Paths *configs.Paths

	// SettingsPath overrides the settings file from the preferences.
	SettingsPath string

	Logger logger.Logger
}

// Environment is an opened settings store together with the preferences
// and directories it was resolved from.
type Environment struct {
	Paths *configs.Paths
	Prefs *configs.Preferences
	Store *configs.Store
	log   logger.Logger
}

// Open resolves the preferences, builds the configured protector and loads
// the settings store.
func Open(opts OpenOptions) (*Environment, error) {
	paths := opts.Paths
	if paths == nil {
		var err error
		paths, err = configs.DefaultPaths()
		if err != nil {
			return nil, fmt.Errorf("resolving directories: %w", err)
		}
	}
	opts.Logger.Debugf("Config dir: %s, data dir: %s", paths.ConfigDir, paths.DataDir)

	prefs, err := configs.EnsurePreferences(paths)
	if err != nil {
		return nil, err
	}

	protectorOpts := prefs.ProtectorOptions(paths)
	protectorOpts.Logger = opts.Logger
	protector, err := protect.New(protectorOpts)
	if err != nil {
		return nil, fmt.Errorf("setting up secret protection: %w", err)
	}
	opts.Logger.Debugf("Using %s protector", protectorOpts.Kind)

	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		settingsPath = prefs.Settings.Path
	}

	store, err := configs.LoadOrDefault(settingsPath, protector, opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Environment{Paths: paths, Prefs: prefs, Store: store, log: opts.Logger}, nil
}

// record appends a custody event to the audit log.
func (e *Environment) record(entry audit.Entry) {
	entry.SettingsPath = e.Store.Path()
	audit.Log(e.Paths.AuditLogPath(), entry)
}

func (e *Environment) newEntry(op string) audit.Entry {
	return audit.NewEntry(op, e.Prefs.Installation.ID)
}
