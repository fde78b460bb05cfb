package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xolan/worklog/internal/config"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/tui/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the effective configuration of worklog.

worklog works without a config file; every setting has a default. Settings in
the file override the defaults, and unknown keys are rejected.

Examples:
  worklog config                          Show all current settings
  worklog config init                     Write a commented sample file
  worklog config get preferred_port
  worklog config set password 8642
  worklog config set categories 打印机维护,网络设备维护,会议
  worklog config path                     Print the config file location

Configuration file location:
  ~/.config/worklog/config.toml          Linux
  ~/Library/Application Support/worklog  macOS
  %AppData%\worklog\config.toml          Windows`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		showConfig()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		initConfig()
	},
}

var configGetCmd = &cobra.Command{
	Use:       "get <key>",
	Short:     "Print one setting",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.Keys(),
	Run: func(cmd *cobra.Command, args []string) {
		getConfigValue(args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and save the config file",
	Args:  cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		switch {
		case len(args) == 0:
			return config.Keys(), cobra.ShellCompDirectiveNoFileComp
		case len(args) == 1 && args[0] == "theme":
			return ui.NewThemeProvider("").AvailableThemes(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		setConfigValue(args[0], args[1])
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if path, ok := configPath(); ok {
			_, _ = fmt.Fprintln(deps.Stdout, path)
		}
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configGetCmd, configSetCmd, configPathCmd)
}

func configPath() (string, bool) {
	path, err := deps.ConfigPath()
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to determine config file location")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Check that your home directory is accessible")
		deps.Exit(1)
		return "", false
	}
	return path, true
}

// loadConfigService reads the config file, falling back to defaults when it
// does not exist.
func loadConfigService() (*service.ConfigService, bool) {
	path, ok := configPath()
	if !ok {
		return nil, false
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to load configuration")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check that your config file is valid TOML with known keys only: %s\n", path)
		_, _ = fmt.Fprintf(deps.Stderr, "Valid keys: %s\n", strings.Join(config.Keys(), ", "))
		deps.Exit(1)
		return nil, false
	}
	return service.NewConfigService(path, cfg), true
}

// showConfig displays the current effective configuration
func showConfig() {
	svc, ok := loadConfigService()
	if !ok {
		return
	}
	cfg := svc.Get()

	_, _ = fmt.Fprintln(deps.Stdout, "Configuration for worklog")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 60))
	_, _ = fmt.Fprintln(deps.Stdout)

	_, _ = fmt.Fprintf(deps.Stdout, "Config file:     %s\n", svc.GetPath())
	if svc.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          File exists (using custom configuration)")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status:          No config file (using defaults)")
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	_, _ = fmt.Fprintln(deps.Stdout, "Current Settings:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 60))
	for _, key := range config.Keys() {
		value, _ := cfg.Get(key)
		switch {
		case key == "log_path" && value == "":
			if path, err := service.ResolveLogPath(cfg); err == nil {
				value = path + " (default)"
			} else {
				value = "(default)"
			}
		case key == "categories" && len(cfg.Categories) == 0:
			value = "(built-in catalog, see 'worklog categories')"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%-19s %s\n", key+":", value)
	}
	_, _ = fmt.Fprintln(deps.Stdout)

	if !svc.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Tip: Run 'worklog config init' to create a commented config file,")
		_, _ = fmt.Fprintln(deps.Stdout, "     or 'worklog config set <key> <value>' to change one setting.")
		_, _ = fmt.Fprintln(deps.Stdout)
	}
}

// initConfig writes the sample config, asking before replacing an existing file
func initConfig() {
	path, ok := configPath()
	if !ok {
		return
	}
	svc := service.NewConfigService(path, config.DefaultConfig())

	if svc.Exists() {
		_, _ = fmt.Fprintf(deps.Stdout, "Config file already exists at %s\n", path)
		if !promptOverwriteConfirmation() {
			_, _ = fmt.Fprintln(deps.Stdout, "Config file unchanged")
			return
		}
		if err := os.Remove(path); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Error: Failed to replace config file: %v\n", err)
			deps.Exit(1)
			return
		}
	}

	if err := svc.Init(); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintf(deps.Stdout, "Created config file at %s\n", path)
}

// promptOverwriteConfirmation asks on stdin and returns true only for y or yes
func promptOverwriteConfirmation() bool {
	_, _ = fmt.Fprint(deps.Stdout, "Overwrite? [y/N]: ")
	scanner := bufio.NewScanner(deps.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

func getConfigValue(key string) {
	svc, ok := loadConfigService()
	if !ok {
		return
	}
	value, err := svc.Get().Get(key)
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, value)
}

func setConfigValue(key, value string) {
	if key == "theme" && !ui.NewThemeProvider("").SetTheme(value) {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: Unknown theme %q\n", value)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Press ctrl+t in the desktop UI to try themes, or complete with Tab")
		deps.Exit(1)
		return
	}

	svc, ok := loadConfigService()
	if !ok {
		return
	}
	if err := svc.Set(key, value); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	shown, _ := svc.Get().Get(key)
	_, _ = fmt.Fprintf(deps.Stdout, "Set %s = %s in %s\n", key, shown, svc.GetPath())
}
