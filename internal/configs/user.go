package configs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PolarWolf314/tunnelrelay/internal/protect"

	"github.com/google/uuid"
)

// Paths are the per-user directories tunnelrelay reads and writes.
type Paths struct {
	ConfigDir string
	DataDir   string
}

// DefaultPaths resolves the user config directory and the XDG data directory.
func DefaultPaths() (*Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("error getting config directory: %w", err)
	}

	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("error getting home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return &Paths{
		ConfigDir: filepath.Join(configDir, "tunnelrelay"),
		DataDir:   filepath.Join(dataDir, "tunnelrelay"),
	}, nil
}

// PreferencesPath is the location of config.toml.
func (p *Paths) PreferencesPath() string {
	return filepath.Join(p.ConfigDir, "config.toml")
}

// DefaultSettingsPath is where appSettings.json lives unless configured otherwise.
func (p *Paths) DefaultSettingsPath() string {
	return filepath.Join(p.ConfigDir, SettingsFileName)
}

// AuditLogPath is the location of the custody audit log.
func (p *Paths) AuditLogPath() string {
	return filepath.Join(p.DataDir, "audit.jsonl")
}

// Preferences are CLI-level choices kept next to the settings file.
type Preferences struct {
	Settings     SettingsPreferences     `toml:"settings"`
	Protection   ProtectionPreferences   `toml:"protection"`
	Installation InstallationPreferences `toml:"installation"`
}

type SettingsPreferences struct {
	Path string `toml:"path"`
}

type ProtectionPreferences struct {
	Kind  string `toml:"kind"`
	Scope string `toml:"scope"`
}

type InstallationPreferences struct {
	ID string `toml:"id"`
}

// LoadPreferences loads config.toml, returning empty preferences if it does not exist.
func LoadPreferences(paths *Paths) (*Preferences, error) {
	prefs := &Preferences{}

	if _, err := os.Stat(paths.PreferencesPath()); os.IsNotExist(err) {
		return prefs, nil
	}

	if err := LoadTOML(paths.PreferencesPath(), prefs); err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	return prefs, nil
}

// SavePreferences writes config.toml.
func SavePreferences(paths *Paths, prefs *Preferences) error {
	if err := SaveTOML(paths.PreferencesPath(), prefs); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}

// GenerateInstallationID generates a new id for this installation.
func GenerateInstallationID() string {
	return uuid.New().String()
}

// EnsurePreferences loads the preferences and fills in anything missing,
// saving them if they changed. The installation id is generated once and
// never rewritten.
func EnsurePreferences(paths *Paths) (*Preferences, error) {
	prefs, err := LoadPreferences(paths)
	if err != nil {
		return nil, err
	}

	changed := false
	if prefs.Installation.ID == "" {
		prefs.Installation.ID = GenerateInstallationID()
		changed = true
	}
	if prefs.Settings.Path == "" {
		prefs.Settings.Path = paths.DefaultSettingsPath()
		changed = true
	}
	if prefs.Protection.Kind == "" {
		prefs.Protection.Kind = protect.KindMachine
		changed = true
	}
	if prefs.Protection.Scope == "" {
		prefs.Protection.Scope = protect.ScopeUser
		changed = true
	}

	if changed {
		if err := SavePreferences(paths, prefs); err != nil {
			return nil, err
		}
	}

	return prefs, nil
}

// ProtectorOptions turns the preferences into protect.Options.
func (p *Preferences) ProtectorOptions(paths *Paths) protect.Options {
	return protect.Options{
		Kind:           p.Protection.Kind,
		Scope:          p.Protection.Scope,
		InstallationID: p.Installation.ID,
		DataDir:        paths.DataDir,
	}
}
