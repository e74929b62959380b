package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PolarWolf314/tunnelrelay/internal/audit"
)

func showSettings(t *testing.T, extraArgs ...string) settingsView {
	t.Helper()
	args := append([]string{"settings", "show", "--json"}, extraArgs...)
	output, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("settings show failed: %v\n%s", err, output)
	}

	var view settingsView
	if err := json.Unmarshal([]byte(output), &view); err != nil {
		t.Fatalf("settings show --json output is not JSON: %v\n%s", err, output)
	}
	return view
}

func TestSettingsShow(t *testing.T) {
	t.Run("DefaultsWithoutFile", func(t *testing.T) {
		dirs := setupTestEnvironment(t)

		view := showSettings(t)
		if view.RedirectionURL != "http://localhost:3979/" {
			t.Errorf("Expected default redirection url, got %q", view.RedirectionURL)
		}
		if view.Version != 2 {
			t.Errorf("Expected version 2, got %d", view.Version)
		}
		if view.SharedKeyStored || len(view.EnabledPlugins) != 0 {
			t.Errorf("Expected empty defaults, got %+v", view)
		}
		if view.SettingsPath != dirs.settingsFile() {
			t.Errorf("Expected settings path %s, got %s", dirs.settingsFile(), view.SettingsPath)
		}
		if _, err := os.Stat(filepath.Join(dirs.configHome, "tunnelrelay", "config.toml")); err != nil {
			t.Errorf("Expected preferences to be created: %v", err)
		}
	})

	t.Run("HumanReadable", func(t *testing.T) {
		setupTestEnvironment(t)

		output, err := runCLI(t, "settings", "show")
		if err != nil {
			t.Fatalf("settings show failed: %v", err)
		}
		for _, want := range []string{"Relay:", "Shared key:", "not set", "http://localhost:3979/", "none enabled"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected output to contain %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("CustomSettingsPath", func(t *testing.T) {
		setupTestEnvironment(t)
		custom := filepath.Join(t.TempDir(), "custom.json")

		if output, err := runCLI(t, "settings", "set", "--settings", custom, "--connection-name", "custom-connection"); err != nil {
			t.Fatalf("settings set failed: %v\n%s", err, output)
		}
		if _, err := os.Stat(custom); err != nil {
			t.Fatalf("Expected custom settings file to be written: %v", err)
		}

		view := showSettings(t, "--settings", custom)
		if view.HybridConnectionName != "custom-connection" {
			t.Errorf("Expected custom-connection, got %q", view.HybridConnectionName)
		}
	})
}

func TestSettingsSet(t *testing.T) {
	t.Run("RelayFields", func(t *testing.T) {
		dirs := setupTestEnvironment(t)

		output, err := runCLI(t, "settings", "set",
			"--relay-url", "sbname.servicebus.windows.net",
			"--connection-name", "my-connection",
			"--key-name", "RootManageSharedAccessKey")
		if err != nil {
			t.Fatalf("settings set failed: %v\n%s", err, output)
		}
		if !strings.Contains(output, "Settings saved") {
			t.Errorf("Expected success message, got:\n%s", output)
		}

		info, err := os.Stat(dirs.settingsFile())
		if err != nil {
			t.Fatalf("Settings file was not written: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
		}

		// A later partial update keeps the other relay fields.
		if output, err := runCLI(t, "settings", "set", "--key-name", "listen-only"); err != nil {
			t.Fatalf("settings set failed: %v\n%s", err, output)
		}
		view := showSettings(t)
		if view.HybridConnectionURL != "sbname.servicebus.windows.net" || view.HybridConnectionName != "my-connection" {
			t.Errorf("Partial update lost relay fields: %+v", view)
		}
		if view.HybridConnectionKeyName != "listen-only" {
			t.Errorf("Expected key name listen-only, got %q", view.HybridConnectionKeyName)
		}
	})

	t.Run("InvalidRedirectionURL", func(t *testing.T) {
		dirs := setupTestEnvironment(t)

		output, err := runCLI(t, "settings", "set", "--redirection-url", "localhost:4200")
		if err != nil {
			t.Fatalf("settings set failed: %v", err)
		}
		if !strings.Contains(output, "Invalid service url") {
			t.Errorf("Expected invalid url message, got:\n%s", output)
		}
		if _, err := os.Stat(dirs.settingsFile()); !os.IsNotExist(err) {
			t.Error("Settings should not be saved after a failed update")
		}
	})

	t.Run("NothingToUpdate", func(t *testing.T) {
		setupTestEnvironment(t)

		output, err := runCLI(t, "settings", "set")
		if err != nil {
			t.Fatalf("settings set failed: %v", err)
		}
		if !strings.Contains(output, "Nothing to update") {
			t.Errorf("Expected warning, got:\n%s", output)
		}
	})
}

func TestSettingsKeyCustody(t *testing.T) {
	dirs := setupTestEnvironment(t)
	exportPath := filepath.Join(t.TempDir(), "relay.json")

	steps := [][]string{
		{"settings", "set", "--relay-url", "sbname.servicebus.windows.net", "--connection-name", "my-connection", "--key-name", "RootManageSharedAccessKey"},
		{"settings", "set-key", "QUJD"},
		{"settings", "plugins", "enable", "cors"},
		{"settings", "export", "-o", exportPath},
		{"settings", "logout"},
	}
	for _, args := range steps {
		if output, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, output)
		}
	}

	settingsData, err := os.ReadFile(dirs.settingsFile())
	if err != nil {
		t.Fatalf("Failed to read settings: %v", err)
	}
	if strings.Contains(string(settingsData), "QUJD") {
		t.Error("Settings file contains the plaintext key")
	}

	view := showSettings(t)
	if view.SharedKeyStored || view.HybridConnectionURL != "" || len(view.EnabledPlugins) != 0 {
		t.Fatalf("Expected defaults after logout, got %+v", view)
	}

	exported, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.Contains(string(exported), `"serviceBusSharedKey":"QUJD"`) {
		t.Errorf("Expected plaintext key in transfer string, got %s", exported)
	}
	if info, err := os.Stat(exportPath); err == nil && info.Mode().Perm() != 0600 {
		t.Errorf("Expected export mode 0600, got %o", info.Mode().Perm())
	}

	output, err := runCLI(t, "settings", "import", exportPath)
	if err != nil {
		t.Fatalf("settings import failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Imported settings") {
		t.Errorf("Expected import success, got:\n%s", output)
	}

	view = showSettings(t)
	if !view.SharedKeyStored || view.HybridConnectionName != "my-connection" || len(view.EnabledPlugins) != 1 {
		t.Errorf("Import did not restore settings: %+v", view)
	}

	output, err = runCLI(t, "settings", "export")
	if err != nil {
		t.Fatalf("settings export failed: %v", err)
	}
	if !strings.Contains(output, `"serviceBusSharedKey":"QUJD"`) {
		t.Errorf("Expected round-tripped key on stdout, got:\n%s", output)
	}
	if !strings.Contains(output, "plaintext shared key") {
		t.Errorf("Expected plaintext warning, got:\n%s", output)
	}

	entries, err := audit.ReadEntries(dirs.auditLog())
	if err != nil {
		t.Fatalf("Failed to read audit log: %v", err)
	}
	var ops []string
	for _, entry := range entries {
		ops = append(ops, entry.Operation)
	}
	want := []string{audit.OpSetKey, audit.OpExport, audit.OpLogout, audit.OpImport, audit.OpExport}
	if strings.Join(ops, ",") != strings.Join(want, ",") {
		t.Errorf("Expected audit ops %v, got %v", want, ops)
	}
	if strings.Contains(readFile(t, dirs.auditLog()), "QUJD") {
		t.Error("Audit log contains the shared key")
	}
}

func TestSettingsSetKeyInvalid(t *testing.T) {
	dirs := setupTestEnvironment(t)

	output, err := runCLI(t, "settings", "set-key", "not base64!")
	if err != nil {
		t.Fatalf("settings set-key failed: %v", err)
	}
	if !strings.Contains(output, "not valid base64") {
		t.Errorf("Expected invalid key message, got:\n%s", output)
	}
	if _, err := os.Stat(dirs.auditLog()); !os.IsNotExist(err) {
		t.Error("Rejected key should not be audited")
	}
}

func TestSettingsImportMalformed(t *testing.T) {
	setupTestEnvironment(t)

	if output, err := runCLI(t, "settings", "set", "--connection-name", "keep-me"); err != nil {
		t.Fatalf("settings set failed: %v\n%s", err, output)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	output, err := runCLI(t, "settings", "import", bad)
	if err != nil {
		t.Fatalf("settings import failed: %v", err)
	}
	if !strings.Contains(output, "is not an exported settings file") {
		t.Errorf("Expected malformed import message, got:\n%s", output)
	}
	if view := showSettings(t); view.HybridConnectionName != "keep-me" {
		t.Errorf("Malformed import changed settings: %+v", view)
	}

	if _, err := runCLI(t, "settings", "import", filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected error importing a missing file")
	}
}

func TestSettingsPlugins(t *testing.T) {
	setupTestEnvironment(t)

	steps := [][]string{
		{"settings", "plugins", "enable", "cors"},
		{"settings", "plugins", "enable", "header-logger"},
		{"settings", "plugins", "set", "cors", "origin", "*"},
		{"settings", "plugins", "set", "header-logger", "level", "debug"},
		{"settings", "plugins", "disable", "header-logger"},
	}
	for _, args := range steps {
		if output, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, output)
		}
	}

	output, err := runCLI(t, "settings", "plugins", "list")
	if err != nil {
		t.Fatalf("plugins list failed: %v", err)
	}
	for _, want := range []string{"cors", "origin = *", "header-logger", "disabled", "level = debug"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected plugins list to contain %q, got:\n%s", want, output)
		}
	}

	output, err = runCLI(t, "settings", "plugins", "disable", "missing")
	if err != nil {
		t.Fatalf("plugins disable failed: %v", err)
	}
	if !strings.Contains(output, "plugin not found") {
		t.Errorf("Expected plugin not found message, got:\n%s", output)
	}

	if output, err := runCLI(t, "settings", "plugins", "unset", "cors", "origin"); err != nil {
		t.Fatalf("plugins unset failed: %v\n%s", err, output)
	}
	view := showSettings(t)
	if _, ok := view.PluginSettingsMap["cors"]; ok {
		t.Errorf("Expected cors settings to be removed, got %v", view.PluginSettingsMap)
	}
	if len(view.EnabledPlugins) != 1 || view.EnabledPlugins[0] != "cors" {
		t.Errorf("Expected only cors enabled, got %v", view.EnabledPlugins)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestSettingsLog(t *testing.T) {
	setupTestEnvironment(t)

	output, err := runCLI(t, "settings", "log")
	if err != nil {
		t.Fatalf("settings log failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, "no custody operations recorded yet") {
		t.Errorf("Expected empty log message, got:\n%s", output)
	}

	exportPath := filepath.Join(t.TempDir(), "relay.json")
	steps := [][]string{
		{"settings", "set-key", "QUJD"},
		{"settings", "export", "-o", exportPath},
		{"settings", "logout"},
	}
	for _, args := range steps {
		if output, err := runCLI(t, args...); err != nil {
			t.Fatalf("%v failed: %v\n%s", args, err, output)
		}
	}

	output, err = runCLI(t, "settings", "log", "--json")
	if err != nil {
		t.Fatalf("settings log --json failed: %v\n%s", err, output)
	}
	var entries []audit.Entry
	if err := json.Unmarshal([]byte(output), &entries); err != nil {
		t.Fatalf("settings log --json output is not JSON: %v\n%s", err, output)
	}
	var ops []string
	for _, e := range entries {
		ops = append(ops, e.Operation)
	}
	if strings.Join(ops, ",") != "set-key,export,logout" {
		t.Errorf("Unexpected operations: %v", ops)
	}

	output, err = runCLI(t, "settings", "log", "--operation", "export")
	if err != nil {
		t.Fatalf("settings log --operation failed: %v\n%s", err, output)
	}
	if !strings.Contains(output, exportPath+", key included") || strings.Contains(output, "logout") {
		t.Errorf("Expected only the export entry, got:\n%s", output)
	}

	output, err = runCLI(t, "settings", "log", "--since", "last-week")
	if err != nil {
		t.Fatalf("settings log --since failed: %v", err)
	}
	if !strings.Contains(output, "invalid date format") {
		t.Errorf("Expected date format message, got:\n%s", output)
	}
}
