package configs

import (
	"encoding/json"
	"errors"
	"testing"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
)

func TestDecodeSettingsAcceptsNullFields(t *testing.T) {
	settings, err := DecodeSettings([]byte(`{
		"redirectionUrl": "http://localhost:3979/",
		"hybridConnectionUrl": null,
		"hybridConnectionName": null,
		"hybridConnectionKeyName": null,
		"serviceBusSharedKey": null,
		"enabledPlugins": null,
		"pluginSettingsMap": {"cors": null},
		"version": 2
	}`))
	if err != nil {
		t.Fatalf("DecodeSettings failed: %v", err)
	}

	if settings.HasSharedKey() {
		t.Error("Expected no shared key")
	}
	if settings.EnabledPlugins == nil || settings.PluginSettingsMap["cors"] == nil {
		t.Error("Expected decoded maps to be non-nil")
	}
}

func TestDecodeSettingsRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "not json", "null", `["a"]`, `{"version": "two"}`, `{} trailing`} {
		if _, err := DecodeSettings([]byte(input)); !errors.Is(err, kerrors.ErrDeserialization) {
			t.Errorf("DecodeSettings(%q): expected ErrDeserialization, got %v", input, err)
		}
	}
}

func TestEncodeSettingsWritesPluginsSorted(t *testing.T) {
	settings := DefaultSettings()
	for _, id := range []string{"zeta", "alpha", "mid"} {
		settings.EnabledPlugins[id] = struct{}{}
	}

	data, err := encodeSettingsFile(settings, nil, false)
	if err != nil {
		t.Fatalf("encodeSettingsFile failed: %v", err)
	}

	var file settingsFile
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	for i, id := range want {
		if file.EnabledPlugins[i] != id {
			t.Fatalf("Expected %v, got %v", want, file.EnabledPlugins)
		}
	}
	if file.PluginSettingsMap == nil {
		t.Error("Expected an empty pluginSettingsMap object rather than null")
	}
}

func TestCloneIsDeep(t *testing.T) {
	original := DefaultSettings()
	original.EnabledPlugins["cors"] = struct{}{}
	original.PluginSettingsMap["cors"] = map[string]string{"origin": "*"}
	original.sealedSharedKey = []byte{1, 2, 3}

	clone := original.Clone()
	clone.EnabledPlugins["extra"] = struct{}{}
	clone.PluginSettingsMap["cors"]["origin"] = "changed"
	clone.sealedSharedKey[0] = 9

	if original.IsPluginEnabled("extra") {
		t.Error("Clone shares the enabled plugin set")
	}
	if original.PluginSettingsMap["cors"]["origin"] != "*" {
		t.Error("Clone shares plugin settings")
	}
	if original.sealedSharedKey[0] != 1 {
		t.Error("Clone shares the sealed key bytes")
	}
}
