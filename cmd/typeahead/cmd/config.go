package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/typeahead/configs"
	"github.com/Aman-CERP/typeahead/internal/config"
	"github.com/Aman-CERP/typeahead/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage typeahead configuration.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/typeahead/config.yaml)
  3. Project config (.typeahead.yaml, .typeahead.yml or .typeahead.toml)
  4. Environment variables (TYPEAHEAD_*)`,
		Example: `  # Create user config with defaults
  typeahead config init

  # Show effective configuration
  typeahead config show --json`,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file from the template",
		Long: `Write the commented configuration template.

By default the user config file is created. With --project a
.typeahead.yaml is written to --config-dir instead.

With --force an existing user config is backed up first and then replaced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return runConfigInitProject(cmd, force)
			}
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Write .typeahead.yaml in --config-dir")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration",
		Long:  `Show the configuration after merging defaults, files and environment.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return nil
		},
	}
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout(), false)
	configPath := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warning("User configuration already exists")
			out.Field("Location", 9, configPath)
			out.Status("", "Use --force to back it up and write fresh defaults")
			return nil
		}

		backupPath, err := config.BackupUserConfig()
		if err != nil {
			return fmt.Errorf("failed to backup config: %w", err)
		}
		if err := writeTemplate(configPath, configs.UserConfigTemplate); err != nil {
			return err
		}
		out.Success("Configuration reset to defaults")
		out.Field("Location", 9, configPath)
		out.Field("Backup", 9, backupPath)
		return nil
	}

	if err := writeTemplate(configPath, configs.UserConfigTemplate); err != nil {
		return err
	}

	out.Success("Created user configuration")
	out.Field("Location", 9, configPath)
	out.Newline()
	out.Status("", "Edit the file, then run 'typeahead config show' to verify.")
	return nil
}

func runConfigInitProject(cmd *cobra.Command, force bool) error {
	out := output.New(cmd.OutOrStdout(), false)

	if existing := config.FindProjectConfig(configDir); existing != "" && !force {
		out.Warning("Project configuration already exists")
		out.Field("Location", 9, existing)
		out.Status("", "Use --force to overwrite it")
		return nil
	}

	path := filepath.Join(configDir, ".typeahead.yaml")
	if err := writeTemplate(path, configs.ProjectConfigTemplate); err != nil {
		return err
	}
	out.Success("Created project configuration")
	out.Field("Location", 9, path)
	return nil
}

// writeTemplate writes a config template, creating parent directories.
func writeTemplate(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	w := cmd.OutOrStdout()
	if path := config.FindProjectConfig(configDir); path != "" {
		fmt.Fprintf(w, "# project config: %s\n", path)
	}
	if config.UserConfigExists() {
		fmt.Fprintf(w, "# user config: %s\n", config.GetUserConfigPath())
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(cfg)
}

