package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/ttspipe/cmd/ttspipe/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		fmt.Println(labelStyle.Render("config") + " " + dimStyle.Render(cfg.Path()))
		printField("api_key", config.MaskAPIKey(cfg.APIKey))
		printField("base_url", cfg.BaseURL)
		printField("model", cfg.Model)
		printField("voice", cfg.Voice)
		printField("dataset_dir", cfg.DatasetDir)
		printField("cache_dir", cfg.CacheDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value and save it.

Keys: api_key, base_url, model, voice, dataset_dir, cache_dir`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		return cfg.Save()
	},
}

func printField(name, value string) {
	if value == "" {
		value = dimStyle.Render("(unset)")
	}
	fmt.Printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-12s", name)), value)
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
