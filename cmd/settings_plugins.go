package cmd

import (
	"errors"
	"fmt"
	"sort"

	kerrors "github.com/PolarWolf314/tunnelrelay/internal/errors"
	"github.com/PolarWolf314/tunnelrelay/internal/ui"
	"github.com/PolarWolf314/tunnelrelay/internal/utils"
	"github.com/PolarWolf314/tunnelrelay/internal/workflows"

	"github.com/spf13/cobra"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Enable, disable and configure traffic plugins",
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsEnableCmd)
	pluginsCmd.AddCommand(pluginsDisableCmd)
	pluginsCmd.AddCommand(pluginsSetCmd)
	pluginsCmd.AddCommand(pluginsUnsetCmd)
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List enabled plugins and their settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnvironment()
		if err != nil {
			return Logger.ErrorfAndReturn("failed to load settings: %v", err)
		}
		settings := env.Store.Snapshot()

		ids := settings.PluginIDs()
		if len(ids) == 0 && len(settings.PluginSettingsMap) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Sprint("no plugins configured"))
			return nil
		}

		for _, id := range ids {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Success.Sprint("●"), ui.Highlight.Sprint(id))
			fmt.Fprint(cmd.OutOrStdout(), utils.FormatKeyValues(settings.PluginSettingsMap[id]))
		}
		var disabled []string
		for id := range settings.PluginSettingsMap {
			if !settings.IsPluginEnabled(id) {
				disabled = append(disabled, id)
			}
		}
		sort.Strings(disabled)
		for _, id := range disabled {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", ui.Muted.Sprint("○"), ui.Highlight.Sprint(id), ui.Muted.Sprint("disabled"))
			fmt.Fprint(cmd.OutOrStdout(), utils.FormatKeyValues(settings.PluginSettingsMap[id]))
		}
		return nil
	},
}

var pluginsEnableCmd = &cobra.Command{
	Use:   "enable PLUGIN",
	Short: "Enable a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePlugins(func(env *workflows.Environment) (string, error) {
			if err := env.Store.EnablePlugin(args[0]); err != nil {
				return "", err
			}
			return "Enabled " + ui.Highlight.Sprint(args[0]), nil
		})
	},
}

var pluginsDisableCmd = &cobra.Command{
	Use:   "disable PLUGIN",
	Short: "Disable a plugin, keeping its settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePlugins(func(env *workflows.Environment) (string, error) {
			if err := env.Store.DisablePlugin(args[0]); err != nil {
				return "", err
			}
			return "Disabled " + ui.Highlight.Sprint(args[0]), nil
		})
	},
}

var pluginsSetCmd = &cobra.Command{
	Use:   "set PLUGIN KEY VALUE",
	Short: "Set one plugin setting",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePlugins(func(env *workflows.Environment) (string, error) {
			if err := env.Store.SetPluginSetting(args[0], args[1], args[2]); err != nil {
				return "", err
			}
			return "Set " + ui.Code.Sprint(args[1]) + " for " + ui.Highlight.Sprint(args[0]), nil
		})
	},
}

var pluginsUnsetCmd = &cobra.Command{
	Use:   "unset PLUGIN KEY",
	Short: "Remove one plugin setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return updatePlugins(func(env *workflows.Environment) (string, error) {
			if err := env.Store.RemovePluginSetting(args[0], args[1]); err != nil {
				return "", err
			}
			return "Removed " + ui.Code.Sprint(args[1]) + " from " + ui.Highlight.Sprint(args[0]), nil
		})
	},
}

// updatePlugins loads the store, applies change and saves it. Unknown plugins
// are reported as a failure message rather than an error.
func updatePlugins(change func(env *workflows.Environment) (string, error)) error {
	env, err := openEnvironment()
	if err != nil {
		return Logger.ErrorfAndReturn("failed to load settings: %v", err)
	}

	message, err := change(env)
	if errors.Is(err, kerrors.ErrPluginNotFound) {
		fmt.Println(failureMessage(err.Error(), "Run "+ui.Code.Sprint("tunnelrelay settings plugins list")+" to see configured plugins"))
		return nil
	}
	if err != nil {
		return Logger.ErrorfAndReturn("failed to update plugins: %v", err)
	}

	if err := env.Store.Save(); err != nil {
		return Logger.ErrorfAndReturn("failed to save settings: %v", err)
	}

	fmt.Println(ui.Done(message))
	return nil
}
