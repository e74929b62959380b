package configs

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	logger "github.com/PolarWolf314/tunnelrelay/internal/logging"
	"github.com/PolarWolf314/tunnelrelay/internal/protect"
)

// SettingsFileName is the default name of the persisted settings file.
const SettingsFileName = "appSettings.json"

// Store owns the current Settings aggregate for one settings file. It is
// created once by the process entry point and passed to whatever needs it.
// All methods are safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	path      string
	protector protect.Protector
	current   *Settings
	log       logger.Logger
}

// NewStore wraps an existing aggregate. A nil settings starts from defaults.
func NewStore(path string, protector protect.Protector, settings *Settings, log logger.Logger) *Store {
	if settings == nil {
		settings = DefaultSettings()
	}
	if settings.EnabledPlugins == nil {
		settings.EnabledPlugins = make(map[string]struct{})
	}
	if settings.PluginSettingsMap == nil {
		settings.PluginSettingsMap = make(map[string]map[string]string)
	}
	return &Store{
		path:      path,
		protector: protector,
		current:   settings,
		log:       log,
	}
}

// LoadOrDefault loads the settings file at path, or starts from defaults if
// it does not exist. A file that exists but cannot be parsed is an error.
func LoadOrDefault(path string, protector protect.Protector, log logger.Logger) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Infof("Settings file %s doesn't exist, using defaults", path)
		return NewStore(path, protector, DefaultSettings(), log), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	log.Infof("Loading existing settings from %s", path)
	settings, err := DecodeSettings(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings from %s: %w", path, err)
	}
	if settings.Version < identityTrustedSinceVersion {
		log.Warnf("Settings schema version %d is outdated, relay identity was cleared", settings.Version)
	}

	return NewStore(path, protector, settings, log), nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns a deep copy of the current aggregate.
func (s *Store) Snapshot() *Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Update runs fn on the current aggregate while holding the write lock.
func (s *Store) Update(fn func(*Settings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.current)
}

// SetSharedKey decodes a base64 key, seals it and stores the sealed form.
func (s *Store) SetSharedKey(plaintextBase64 string) error {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(plaintextBase64))
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrInvalidSharedKey, err)
	}
	defer zero(raw)

	sealed, err := s.protector.Seal(raw)
	if err != nil {
		return fmt.Errorf("failed to seal shared key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.sealedSharedKey = sealed
	s.current.stampSchema()
	s.log.Debugf("Stored sealed shared key (%d bytes)", len(sealed))

	return nil
}

// GetSharedKey unseals the stored key and returns it base64 encoded.
// It fails with ErrMissingSecret if no key was ever set.
func (s *Store) GetSharedKey() (string, error) {
	s.mu.RLock()
	sealed := s.current.sealedSharedKey
	s.mu.RUnlock()

	if sealed == nil {
		return "", kerrors.ErrMissingSecret
	}

	raw, err := s.protector.Unseal(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to unseal shared key: %w", err)
	}
	defer zero(raw)

	return base64.StdEncoding.EncodeToString(raw), nil
}

// Save writes the current aggregate, with the key in sealed form, to the
// settings file.
func (s *Store) Save() error {
	s.mu.RLock()
	data, err := encodeSettingsFile(s.current, s.current.sealedSharedKey, true)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	if err := WriteFileAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.log.Infof("Saved settings to %s", s.path)

	return nil
}

// Logout replaces the current aggregate with defaults. The settings file is
// left alone until the next Save.
func (s *Store) Logout() {
	s.log.Infof("Logging out")

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = DefaultSettings()
}

// Export returns a transfer string: the current aggregate serialized with the
// shared key unsealed. The result is a credential.
func (s *Store) Export() (string, error) {
	snapshot := s.Snapshot()

	var plaintext []byte
	if snapshot.sealedSharedKey != nil {
		var err error
		plaintext, err = s.protector.Unseal(snapshot.sealedSharedKey)
		if err != nil {
			return "", fmt.Errorf("failed to unseal shared key for export: %w", err)
		}
		defer zero(plaintext)
		if plaintext == nil {
			plaintext = []byte{}
		}
	}

	data, err := encodeSettingsFile(snapshot, plaintext, false)
	if err != nil {
		return "", fmt.Errorf("failed to encode exported settings: %w", err)
	}
	s.log.Infof("Exported settings (shared key included: %t)", plaintext != nil)

	return string(data), nil
}

// Import parses a transfer string, seals its key for this machine and makes
// it the current aggregate. On any failure the current aggregate is kept.
func (s *Store) Import(serialized string) error {
	settings, plaintext, err := decodeSettingsFile([]byte(serialized))
	if err != nil {
		return fmt.Errorf("failed to import settings: %w", err)
	}

	if plaintext != nil {
		sealed, err := s.protector.Seal(plaintext)
		zero(plaintext)
		if err != nil {
			return fmt.Errorf("failed to seal imported shared key: %w", err)
		}
		settings.sealedSharedKey = sealed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = settings
	s.log.Infof("Imported settings with %d enabled plugin(s)", len(settings.EnabledPlugins))

	return nil
}

// SetRelay sets the relay identity fields. Empty values clear them.
func (s *Store) SetRelay(hybridConnectionURL, connectionName, keyName string) {
	s.Update(func(settings *Settings) {
		settings.HybridConnectionURL = hybridConnectionURL
		settings.HybridConnectionName = connectionName
		settings.HybridConnectionKeyName = keyName
		settings.stampSchema()
	})
}

// ParseRedirectionURL parses a local service address. It must be an
// absolute http or https URL.
func ParseRedirectionURL(raw string) (*url.URL, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidRedirectionURL, err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute http(s) url", kerrors.ErrInvalidRedirectionURL, raw)
	}
	return parsed, nil
}

// SetRedirectionURL sets the local service address. It must be an absolute
// http or https URL.
func (s *Store) SetRedirectionURL(raw string) error {
	if _, err := ParseRedirectionURL(raw); err != nil {
		return err
	}

	s.Update(func(settings *Settings) {
		settings.RedirectionURL = raw
	})
	return nil
}

// EnablePlugin adds id to the enabled set.
func (s *Store) EnablePlugin(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("plugin id cannot be empty")
	}
	s.Update(func(settings *Settings) {
		settings.EnabledPlugins[id] = struct{}{}
	})
	return nil
}

// DisablePlugin removes id from the enabled set. Its settings are kept.
func (s *Store) DisablePlugin(id string) error {
	var found bool
	s.Update(func(settings *Settings) {
		_, found = settings.EnabledPlugins[id]
		delete(settings.EnabledPlugins, id)
	})
	if !found {
		return fmt.Errorf("%w: %q is not enabled", kerrors.ErrPluginNotFound, id)
	}
	return nil
}

// SetPluginSetting stores one key/value pair for a plugin.
func (s *Store) SetPluginSetting(id, key, value string) error {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(key) == "" {
		return fmt.Errorf("plugin id and setting key cannot be empty")
	}
	s.Update(func(settings *Settings) {
		values, ok := settings.PluginSettingsMap[id]
		if !ok {
			values = make(map[string]string)
			settings.PluginSettingsMap[id] = values
		}
		values[key] = value
	})
	return nil
}

// RemovePluginSetting deletes one key for a plugin. The plugin entry is
// dropped once it has no keys left.
func (s *Store) RemovePluginSetting(id, key string) error {
	var found bool
	s.Update(func(settings *Settings) {
		values, ok := settings.PluginSettingsMap[id]
		if !ok {
			return
		}
		if _, found = values[key]; !found {
			return
		}
		delete(values, key)
		if len(values) == 0 {
			delete(settings.PluginSettingsMap, id)
		}
	})
	if !found {
		return fmt.Errorf("%w: no setting %q for plugin %q", kerrors.ErrPluginNotFound, key, id)
	}
	return nil
}

// PluginSettings returns a copy of the settings of one plugin.
func (s *Store) PluginSettings(id string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.current.PluginSettingsMap[id]))
	for key, value := range s.current.PluginSettingsMap[id] {
		out[key] = value
	}
	return out
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
