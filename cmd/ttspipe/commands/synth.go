package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/ttspipe/pkg/audio"
	"github.com/haivivi/ttspipe/pkg/tts"
)

var (
	synthOutput string
	synthModel  string
	synthVoice  string
	synthSpeed  float64
	synthRate   int
)

var synthCmd = &cobra.Command{
	Use:   "synth <text>",
	Short: "Synthesize speech from text",
	Long: `Synthesize speech from text and write it as a 16-bit WAV file.

The backend speaks at its native rate; pass --rate to resample the
output before writing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		if cfg.APIKey == "" {
			return fmt.Errorf("api_key not configured; run 'ttspipe config set api_key <key>'")
		}

		var backendOpts []tts.OpenAIOption
		if model := firstNonEmpty(synthModel, cfg.Model); model != "" {
			backendOpts = append(backendOpts, tts.WithOpenAIModel(model))
		}
		if cfg.BaseURL != "" {
			backendOpts = append(backendOpts, tts.WithOpenAIBaseURL(cfg.BaseURL))
		}
		backend := tts.NewOpenAIBackend(cfg.APIKey, backendOpts...)

		pipe, err := tts.New(cmd.Context(), backend)
		if err != nil {
			return err
		}

		var synthOpts []tts.SynthesisOption
		if voice := firstNonEmpty(synthVoice, cfg.Voice); voice != "" {
			synthOpts = append(synthOpts, tts.WithSpeakerPreset(voice))
		}
		if synthSpeed > 0 {
			synthOpts = append(synthOpts, tts.WithGenerateParam("speed", synthSpeed))
		}

		wave, err := pipe.Synthesize(cmd.Context(), args[0], synthOpts...)
		if err != nil {
			return err
		}

		rate := pipe.SampleRate()
		if synthRate > 0 && synthRate != rate {
			wave, err = audio.Resample(wave, rate, synthRate)
			if err != nil {
				return err
			}
			rate = synthRate
		}

		f, err := os.Create(synthOutput)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := audio.WriteWAV(f, wave, rate); err != nil {
			return err
		}

		fmt.Printf("wrote %s (%.2fs at %d Hz)\n", synthOutput, audio.Duration(wave, rate), rate)
		return nil
	},
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func init() {
	synthCmd.Flags().StringVarP(&synthOutput, "output", "o", "out.wav", "output WAV file")
	synthCmd.Flags().StringVar(&synthModel, "model", "", "speech model (overrides config)")
	synthCmd.Flags().StringVar(&synthVoice, "voice", "", "voice preset (overrides config)")
	synthCmd.Flags().Float64Var(&synthSpeed, "speed", 0, "speech speed (0.25 to 4.0)")
	synthCmd.Flags().IntVar(&synthRate, "rate", 0, "resample output to this rate in Hz")

	rootCmd.AddCommand(synthCmd)
}
