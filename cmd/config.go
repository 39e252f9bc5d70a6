package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/worksdev/portal/internal/configs"
	"github.com/worksdev/portal/internal/ui"
	"github.com/worksdev/portal/internal/utils"
)

var (
	configShowJSON bool

	ConfigCmd = &cobra.Command{
		Use:   "config",
		Short: "Show and change the portal configuration",
		Long: `Manages ~/.config/portal/config.toml.

Examples:
  portal config show
  portal config set api.url https://api.works.example.com
  portal config set device.name work-laptop

PORTAL_API_URL overrides api.url for a single run.`,
	}
)

func init() {
	configShowCmd.Flags().BoolVar(&configShowJSON, "json", false, "output in JSON format")

	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configSetCmd)
}

func resetConfigState() {
	configShowJSON = false
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.EnsureConfig()
		if err != nil {
			return reportError(cmd, err)
		}

		out := cmd.OutOrStdout()
		if configShowJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(config)
		}

		fmt.Fprintln(out, ui.Heading.Sprint("API"))
		fmt.Fprintf(out, "  url:          %s\n", ui.Highlight.Sprint(config.API.URL))
		fmt.Fprintf(out, "  timeout:      %s\n", config.API.Timeout())
		fmt.Fprintf(out, "  max retries:  %d\n", config.API.MaxRetries)
		fmt.Fprintln(out, ui.Heading.Sprint("Device"))
		fmt.Fprintf(out, "  name:         %s\n", ui.Highlight.Sprint(config.Device.Name))
		fmt.Fprintf(out, "  uuid:         %s\n", config.Device.UUID)
		fmt.Fprintf(out, "  created:      %s\n", config.Device.CreatedAt.Format("2006-01-02"))
		fmt.Fprintln(out, ui.Heading.Sprint("Paths"))
		fmt.Fprintf(out, "  config:       %s\n", configs.ConfigFilePath())
		fmt.Fprintf(out, "  device store: %s\n", configs.DeviceStorePath())
		fmt.Fprintf(out, "  audit log:    %s\n", configs.AuditLogPath())
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change a configuration value",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"api.url", "api.timeout_seconds", "api.max_retries", "device.name"},
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := configs.EnsureConfig()
		if err != nil {
			return reportError(cmd, err)
		}

		key, value := args[0], args[1]
		switch key {
		case "api.url":
			config.API.URL = value
		case "api.timeout_seconds", "api.max_retries":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("%s must be a non-negative integer", key)
			}
			if key == "api.timeout_seconds" {
				config.API.TimeoutSeconds = n
			} else {
				config.API.MaxRetries = n
			}
		case "device.name":
			name := utils.SanitizeDeviceName(value)
			if name == "" {
				return fmt.Errorf("device name %q has no usable characters", value)
			}
			config.Device.Name = name
		default:
			return fmt.Errorf("unknown key %q", key)
		}

		if err := config.Validate(); err != nil {
			return reportError(cmd, err)
		}
		if err := configs.SaveConfig(config); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint("✓")+" Set "+ui.Highlight.Sprint(key))
		return nil
	},
}
