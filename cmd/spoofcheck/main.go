// Package main provides the spoofcheck CLI tool.
//
// Usage:
//
//	spoofcheck analyze [flags] <audio-file>...
//	spoofcheck features [flags] <audio-file>
//
// The analyze command classifies each input as bonafide or synthetic
// speech. The features command prints the raw descriptor vector, which
// is useful when building training datasets.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/auralis/spoofcheck/detector"
	"github.com/auralis/spoofcheck/logging"
)

var (
	flagConfig    string
	flagModel     string
	flagScaler    string
	flagMode      string
	flagThreshold float64
	flagBands     string
	flagJSON      bool
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "spoofcheck",
	Short: "Synthetic speech detection",
	Long: `Detect machine-generated (synthetic) speech in audio recordings.

Audio is decoded to 16 kHz mono, reduced to a spectral descriptor
vector, and scored by a gradient-boosted tree model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagVerbose {
			logging.SetLevel(logging.DebugLevel)
		} else {
			logging.SetLevel(logging.WarnLevel)
		}
	},
}

var analyzeCmd *cobra.Command

var featuresCmd *cobra.Command

func initCommands() {
	analyzeCmd = &cobra.Command{
		Use:   "analyze <audio-file>...",
		Short: "Classify audio as bonafide or synthetic",
		Long: `Classify one or more audio files as bonafide or synthetic speech.

Examples:
  spoofcheck analyze --model model.yaml --scaler scaler.json sample.wav
  spoofcheck analyze --config spoofcheck.yaml --json *.wav
  spoofcheck analyze --config spoofcheck.yaml --mode threshold --threshold 0.3 call.mp3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			det, err := buildDetector()
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range args {
				result, err := det.DetectFile(path)
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
					failed++
					continue
				}
				printResult(path, result)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(args))
			}
			return nil
		},
	}

	featuresCmd = &cobra.Command{
		Use:   "features <audio-file>",
		Short: "Print the descriptor vector for an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No model or scaler needed to extract features
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}

			audio, err := detector.NewPCMDecoder(cfg).DecodeFile(args[0])
			if err != nil {
				return err
			}

			features, err := detector.ExtractFeaturesPCM(cfg, audio.PCM)
			if err != nil {
				return err
			}

			out, err := json.Marshal(features)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

// loadCLIConfig loads the config file (or defaults) and applies flag
// overrides on top. Validation happens in detector.New, after the
// overrides, so flags can supply what the file omits.
func loadCLIConfig() (*detector.Config, error) {
	cfg := detector.DefaultConfig()

	if flagConfig != "" {
		loaded, err := detector.LoadConfig(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if flagModel != "" {
		cfg.ModelPath = flagModel
	}
	if flagScaler != "" {
		cfg.ScalerPath = flagScaler
	}
	if flagMode != "" {
		cfg.Decision.Mode = detector.DecisionMode(flagMode)
	}
	if cmdFlagChanged("threshold") {
		cfg.Decision.Threshold = flagThreshold
	}
	if flagBands != "" {
		cfg.Decision.Bands = flagBands
	}

	return cfg, nil
}

func buildDetector() (*detector.Detector, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	return detector.New(cfg)
}

func cmdFlagChanged(name string) bool {
	for _, cmd := range []*cobra.Command{analyzeCmd, featuresCmd} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}

func printResult(path string, result *detector.DetectionResult) {
	if flagJSON {
		out, err := json.Marshal(result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			return
		}
		fmt.Println(string(out))
		return
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  prediction:  %s\n", result.Prediction)
	fmt.Printf("  confidence:  %.4f (%s)\n", result.Confidence, result.Reliability)
	fmt.Printf("  bonafide:    %.4f\n", result.BonafideProbability)
	fmt.Printf("  synthetic:   %.4f\n", result.SyntheticProbability)
	if result.Mode == detector.ModeThreshold {
		fmt.Printf("  threshold:   %.2f\n", result.Threshold)
	}
}

func init() {
	initCommands()

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Path to model manifest (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagScaler, "scaler", "", "Path to scaler artifact (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	analyzeCmd.Flags().StringVar(&flagMode, "mode", "", "Decision mode: argmax or threshold")
	analyzeCmd.Flags().Float64Var(&flagThreshold, "threshold", 0.5, "Synthetic-probability threshold (threshold mode)")
	analyzeCmd.Flags().StringVar(&flagBands, "bands", "", "Reliability band table: default or relaxed")
	analyzeCmd.Flags().BoolVar(&flagJSON, "json", false, "Print results as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(featuresCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
