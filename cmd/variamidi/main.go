// Package main is the entry point for the variamidi CLI
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/variamidi/variamidi/pkg/api"
	"github.com/variamidi/variamidi/pkg/config"
	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/tui"
	"github.com/variamidi/variamidi/pkg/variation"
	"github.com/variamidi/variamidi/pkg/variation/builtin"
	"github.com/variamidi/variamidi/pkg/variation/groove"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	moduleName  string
	outputFile  string
	paramFlags  []string
	chordFile   string
	analyzeJSON bool
	serverPort  int
	serverHost  string
	serverModel string
)

func main() {
	// Pick up a local .env when present
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "variamidi",
	Short: "Generate MIDI variations with pluggable generator modules",
	Long: `variamidi analyzes MIDI files and generates variations of them using
pluggable generator modules.

Ships with a Markov chain melody generator and an offline GAN groove
generator backed by a bundled ONNX model.

Examples:
  variamidi modules
  variamidi analyze song.mid
  variamidi generate song.mid -m markov --param seed=7 --param length=16
  variamidi generate song.mid -m groove -o groove.mid
  variamidi tui
  variamidi serve --port 8000`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List the available variation modules",
	RunE:  runModules,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.mid>",
	Short: "Detect the chord timeline of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

var generateCmd = &cobra.Command{
	Use:   "generate <input.mid>",
	Short: "Generate a variation of a MIDI file",
	Long:  `Runs the selected variation module over the input MIDI file and writes the generated variation next to it unless -o is given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// analyze command
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Emit the timeline as JSON")

	// generate command
	generateCmd.Flags().StringVarP(&moduleName, "module", "m", "markov", "Variation module to run")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	generateCmd.Flags().StringArrayVarP(&paramFlags, "param", "p", nil, "Module parameter as name=value (repeatable)")
	generateCmd.Flags().StringVar(&chordFile, "chords", "", "JSON file holding a custom chord timeline")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 0, "Server port (overrides PORT)")
	serveCmd.Flags().StringVar(&serverHost, "host", "", "Bind address (overrides HOST)")
	serveCmd.Flags().StringVar(&serverModel, "model", "", "Groove model path (overrides VARIAMIDI_MODEL_PATH)")

	// Add commands
	rootCmd.AddCommand(modulesCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func newPipeline() (*variation.Pipeline, error) {
	cfg := config.Load()
	registry, err := builtin.Discover(groove.Config{
		ModelPath:      cfg.ModelPath,
		RuntimeLibrary: cfg.RuntimeLibrary,
	})
	if err != nil {
		return nil, err
	}
	return variation.NewPipeline(registry), nil
}

func parseParamFlags(flags []string) (variation.Params, error) {
	if len(flags) == 0 {
		return nil, nil
	}
	params := make(variation.Params, len(flags))
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter %q, want name=value", flag)
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for parameter %q: %v", name, err)
		}
		params[name] = parsed
	}
	return params, nil
}

func loadChordFile(path string) ([]harmony.Chord, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var chords []harmony.Chord
	if err := json.Unmarshal(data, &chords); err != nil {
		return nil, fmt.Errorf("parsing chord file %s: %w", path, err)
	}
	return chords, nil
}

func runModules(cmd *cobra.Command, args []string) error {
	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	for _, d := range pipeline.Registry().Descriptors() {
		status := "ready"
		if !d.Ready {
			status = "unavailable"
		}
		fmt.Printf("%s  %q  (%s)\n", d.Name, d.Label, status)
		for _, p := range d.Parameters {
			fmt.Printf("    %-12s %-6s default %v  range [%v, %v]\n", p.Name, p.Type, p.Default, p.Minimum, p.Maximum)
		}
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	chords, err := pipeline.AnalyzeChords(data)
	if err != nil {
		return err
	}

	if analyzeJSON {
		encoded, err := json.MarshalIndent(chords, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	}

	for _, chord := range chords {
		fmt.Printf("%8.2fs  %-8s %v\n", chord.Time, chord.Name, chord.PitchClasses)
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	input := args[0]

	params, err := parseParamFlags(paramFlags)
	if err != nil {
		return err
	}
	chords, err := loadChordFile(chordFile)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	output := outputFile
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		output = fmt.Sprintf("%s-%s.mid", base, moduleName)
	}

	fmt.Printf("Generating %s -> %s\n", input, output)
	if err := pipeline.GenerateFile(moduleName, input, output, chords, params); err != nil {
		return err
	}
	fmt.Println("Generation complete!")
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(config.Load())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if serverPort != 0 {
		cfg.Port = strconv.Itoa(serverPort)
	}
	if serverHost != "" {
		cfg.Host = serverHost
	}
	if serverModel != "" {
		cfg.ModelPath = serverModel
	}

	fmt.Printf("Starting variamidi API server on %s...\n", cfg.Addr())
	fmt.Printf("Swagger docs available at http://%s/swagger/index.html\n", cfg.Addr())
	return api.StartServer(cfg)
}
