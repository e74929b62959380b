package configs

import (
	"encoding/json"
	"fmt"
	"sort"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
)

const (
	// DefaultRedirectionURL is the local service address used until one is configured.
	DefaultRedirectionURL = "http://localhost:3979/"

	// CurrentSchemaVersion is written on every new or re-populated aggregate.
	CurrentSchemaVersion = 2
)

// Settings is the persisted aggregate describing how the agent reaches its
// relay and which plugins are active. The shared key is only ever held in
// sealed form; use Store.SetSharedKey and Store.GetSharedKey to reach it.
type Settings struct {
	RedirectionURL          string
	HybridConnectionURL     string
	HybridConnectionName    string
	HybridConnectionKeyName string
	EnabledPlugins          map[string]struct{}
	PluginSettingsMap       map[string]map[string]string
	Version                 int

	sealedSharedKey []byte
}

// settingsFile is the JSON shape of appSettings.json and of transfer strings.
// In a transfer string ServiceBusSharedKey holds the plaintext key bytes.
type settingsFile struct {
	RedirectionURL          string                       `json:"redirectionUrl"`
	HybridConnectionURL     string                       `json:"hybridConnectionUrl,omitempty"`
	HybridConnectionName    string                       `json:"hybridConnectionName,omitempty"`
	HybridConnectionKeyName string                       `json:"hybridConnectionKeyName,omitempty"`
	ServiceBusSharedKey     []byte                       `json:"serviceBusSharedKey"`
	EnabledPlugins          []string                     `json:"enabledPlugins"`
	PluginSettingsMap       map[string]map[string]string `json:"pluginSettingsMap"`
	Version                 int                          `json:"version"`
}

// DefaultSettings returns the aggregate used when no settings file exists and after logout.
func DefaultSettings() *Settings {
	return &Settings{
		RedirectionURL:    DefaultRedirectionURL,
		EnabledPlugins:    make(map[string]struct{}),
		PluginSettingsMap: make(map[string]map[string]string),
		Version:           CurrentSchemaVersion,
	}
}

// HasSharedKey reports whether a sealed shared key is present.
func (s *Settings) HasSharedKey() bool {
	return s.sealedSharedKey != nil
}

// IsPluginEnabled reports whether id is in the enabled set.
func (s *Settings) IsPluginEnabled(id string) bool {
	_, ok := s.EnabledPlugins[id]
	return ok
}

// PluginIDs returns the enabled plugin ids in sorted order.
func (s *Settings) PluginIDs() []string {
	ids := make([]string, 0, len(s.EnabledPlugins))
	for id := range s.EnabledPlugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy, including the sealed key bytes.
func (s *Settings) Clone() *Settings {
	clone := *s

	clone.EnabledPlugins = make(map[string]struct{}, len(s.EnabledPlugins))
	for id := range s.EnabledPlugins {
		clone.EnabledPlugins[id] = struct{}{}
	}

	clone.PluginSettingsMap = make(map[string]map[string]string, len(s.PluginSettingsMap))
	for id, values := range s.PluginSettingsMap {
		copied := make(map[string]string, len(values))
		for key, value := range values {
			copied[key] = value
		}
		clone.PluginSettingsMap[id] = copied
	}

	if s.sealedSharedKey != nil {
		clone.sealedSharedKey = append([]byte{}, s.sealedSharedKey...)
	}

	return &clone
}

// stampSchema marks the aggregate as holding current-format relay data.
func (s *Settings) stampSchema() {
	if s.Version < CurrentSchemaVersion {
		s.Version = CurrentSchemaVersion
	}
}

// DecodeSettings parses a settings file. The migration rule is applied as
// part of decoding.
func DecodeSettings(data []byte) (*Settings, error) {
	settings, sealed, err := decodeSettingsFile(data)
	if err != nil {
		return nil, err
	}
	settings.sealedSharedKey = sealed
	return settings, nil
}

// decodeSettingsFile parses data and returns the aggregate without its key
// together with the raw key field, which is sealed for settings files and
// plaintext for transfer strings.
func decodeSettingsFile(data []byte) (*Settings, []byte, error) {
	var file *settingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", kerrors.ErrDeserialization, err)
	}
	if file == nil {
		return nil, nil, fmt.Errorf("%w: expected a JSON object, got null", kerrors.ErrDeserialization)
	}

	migrate(file)

	settings := &Settings{
		RedirectionURL:          file.RedirectionURL,
		HybridConnectionURL:     file.HybridConnectionURL,
		HybridConnectionName:    file.HybridConnectionName,
		HybridConnectionKeyName: file.HybridConnectionKeyName,
		EnabledPlugins:          make(map[string]struct{}, len(file.EnabledPlugins)),
		PluginSettingsMap:       make(map[string]map[string]string, len(file.PluginSettingsMap)),
		Version:                 file.Version,
	}
	for _, id := range file.EnabledPlugins {
		settings.EnabledPlugins[id] = struct{}{}
	}
	for id, values := range file.PluginSettingsMap {
		if values == nil {
			values = make(map[string]string)
		}
		settings.PluginSettingsMap[id] = values
	}

	return settings, file.ServiceBusSharedKey, nil
}

// encodeSettingsFile serializes s with keyField in the serviceBusSharedKey slot.
func encodeSettingsFile(s *Settings, keyField []byte, indent bool) ([]byte, error) {
	file := settingsFile{
		RedirectionURL:          s.RedirectionURL,
		HybridConnectionURL:     s.HybridConnectionURL,
		HybridConnectionName:    s.HybridConnectionName,
		HybridConnectionKeyName: s.HybridConnectionKeyName,
		ServiceBusSharedKey:     keyField,
		EnabledPlugins:          s.PluginIDs(),
		PluginSettingsMap:       s.PluginSettingsMap,
		Version:                 s.Version,
	}
	if file.PluginSettingsMap == nil {
		file.PluginSettingsMap = map[string]map[string]string{}
	}

	if indent {
		data, err := json.MarshalIndent(file, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	}
	return json.Marshal(file)
}
