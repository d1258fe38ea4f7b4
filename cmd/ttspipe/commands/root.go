package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/haivivi/ttspipe/cmd/ttspipe/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Global configuration (loaded at init time)
	globalConfig *config.Config
)

// Styles used by command output.
var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ff9f"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6e7681"))
)

var rootCmd = &cobra.Command{
	Use:   "ttspipe",
	Short: "Text-to-speech synthesis pipeline",
	Long: `ttspipe - synthesize speech through pluggable TTS backends.

The pipeline adapts per model family: raw-text backends, single-prompt
backends, and vocoder-dependent backends all go through the same call.

Configuration is stored in the OS config directory:
  macOS:   ~/Library/Application Support/ttspipe/
  Linux:   ~/.config/ttspipe/
  Windows: %AppData%/ttspipe/

Examples:
  # Configure credentials once
  ttspipe config set api_key sk-xxx

  # Synthesize to a WAV file
  ttspipe synth "Hello there" -o hello.wav --voice nova

  # Inspect a speaker-embedding dataset
  ttspipe embedding info 7305 --dataset cmu-arctic-xvectors`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

// configLoadErr stores the error from config.Load() for deferred reporting.
var configLoadErr error

func initConfig() {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		// Commands that need config get a clear error via GetConfig().
		// This avoids failing commands like 'ttspipe version'.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

func initLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// GetConfig returns the global configuration, or the load error when the
// config directory is unavailable.
func GetConfig() (*config.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
