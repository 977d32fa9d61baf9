package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/fess-mcp/internal/adapters/driven/config/file"
)

var (
	initFessURL  string
	initDomainID string
	initForce    bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration with secrets masked",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter configuration file",
	Long: `Writes a configuration file with defaults for every optional setting.
Refuses to overwrite an existing file unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&initFessURL, "fess-url", "http://localhost:8080", "Fess base URL")
	configInitCmd.Flags().StringVar(&initDomainID, "domain-id", "", "knowledge domain id (required)")
	configInitCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	data, err := toml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}
	cmd.Println(successStyle.Render("Configuration is valid."))
	cmd.Printf("  domain:        %s (%s)\n", cfg.Domain.ID, cfg.Domain.Name)
	cmd.Printf("  fess:          %s\n", cfg.FessBaseURL)
	cmd.Printf("  default label: %s\n", cfg.DefaultLabel)
	cmd.Printf("  labels:        %d configured\n", len(cfg.Labels))
	if err := cfg.ValidateBind(); err != nil {
		cmd.Println(warningStyle.Render("  http transport: " + err.Error()))
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if initDomainID == "" {
		return errors.New("--domain-id is required")
	}
	dir, err := configDir()
	if err != nil {
		return err
	}
	path := configPath
	if path == "" {
		path = file.Resolve("", dir)
	}
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := file.Default()
	cfg.FessBaseURL = initFessURL
	cfg.Domain.ID = initDomainID
	cfg.Domain.Name = initDomainID
	cfg.DefaultLabel = "all"
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := file.Save(path, &cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}
