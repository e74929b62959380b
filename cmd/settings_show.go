package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PolarWolf314/tunnelrelay/internal/configs"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/utils"

	"github.com/spf13/cobra"
)

var showJSON bool

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
}

func resetShowCommandState() {
	showJSON = false
}

// settingsView is the displayed form of the settings. It never carries the key.
type settingsView struct {
	SettingsPath            string                       `json:"settingsPath"`
	RedirectionURL          string                       `json:"redirectionUrl"`
	HybridConnectionURL     string                       `json:"hybridConnectionUrl"`
	HybridConnectionName    string                       `json:"hybridConnectionName"`
	HybridConnectionKeyName string                       `json:"hybridConnectionKeyName"`
	SharedKeyStored         bool                         `json:"sharedKeyStored"`
	EnabledPlugins          []string                     `json:"enabledPlugins"`
	PluginSettingsMap       map[string]map[string]string `json:"pluginSettingsMap"`
	Version                 int                          `json:"version"`
}

func newSettingsView(path string, settings *configs.Settings) settingsView {
	return settingsView{
		SettingsPath:            path,
		RedirectionURL:          settings.RedirectionURL,
		HybridConnectionURL:     settings.HybridConnectionURL,
		HybridConnectionName:    settings.HybridConnectionName,
		HybridConnectionKeyName: settings.HybridConnectionKeyName,
		SharedKeyStored:         settings.HasSharedKey(),
		EnabledPlugins:          settings.PluginIDs(),
		PluginSettingsMap:       settings.PluginSettingsMap,
		Version:                 settings.Version,
	}
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current settings",
	Long: `Shows the relay identity, local service address and plugin configuration.

The shared key is never printed; only whether one is stored.

Examples:
  tunnelrelay settings show
  tunnelrelay settings show --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		Logger.Infof("Starting show command")

		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}
		view := newSettingsView(env.Store.Path(), env.Store.Snapshot())

		if showJSON {
			data, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return Logger.ErrorfAndReturn("failed to encode settings: %v", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), formatSettingsView(view))
		return nil
	},
}

func formatSettingsView(view settingsView) string {
	var b strings.Builder

	field := func(label, value string) {
		if value == "" {
			value = ui.Muted.Sprint("not set")
		} else {
			value = ui.Highlight.Sprint(value)
		}
		fmt.Fprintf(&b, "  %s %s\n", ui.Label.Sprint(label+":"), value)
	}

	b.WriteString("Settings " + ui.Path.Sprint(view.SettingsPath) + "\n\n")
	field("Relay", view.HybridConnectionURL)
	field("Connection", view.HybridConnectionName)
	field("Key name", view.HybridConnectionKeyName)
	fmt.Fprintf(&b, "  %s %s\n", ui.Label.Sprint("Shared key:"), ui.KeyState(view.SharedKeyStored))
	field("Service url", view.RedirectionURL)
	fmt.Fprintf(&b, "  %s %d\n", ui.Label.Sprint("Schema version:"), view.Version)

	if len(view.EnabledPlugins) == 0 {
		fmt.Fprintf(&b, "  %s %s\n", ui.Label.Sprint("Plugins:"), ui.Muted.Sprint("none enabled"))
	} else {
		fmt.Fprintf(&b, "  %s%s", ui.Label.Sprint("Plugins:"), utils.FormatList(view.EnabledPlugins))
	}

	return b.String()
}
