// Package main provides the psybuild CLI application entry point.
// psybuild compiles declarative experiment files into runnable Python
// scripts for the PsychoPy runtime.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"psybuilder/internal/components"
	"psybuilder/internal/config"
	"psybuilder/internal/experiment"
	"psybuilder/internal/generator"
	"psybuilder/internal/logger"
	"psybuilder/internal/render"
	"psybuilder/internal/version"
)

var (
	logLevel string
	logFile  string
	testMode bool

	outputPath string
	forceWrite bool
	docStyle   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "psybuild",
	Short: "psybuild - experiment script compiler",
	Long: `psybuild compiles declarative experiment files (` + experiment.FileExt + `) into
runnable Python scripts for the PsychoPy runtime. Components, timing
conditions and flow are described in YAML; psybuild emits the script.`,
}

// compileCmd compiles an experiment file into a Python script.
var compileCmd = &cobra.Command{
	Use:   "compile <experiment" + experiment.FileExt + ">",
	Short: "Compile an experiment file into a Python script",
	Long: `Compile an experiment file into a Python script.
The script is written next to the experiment file unless --output or the
PSYB_OUTPUT_DIR configuration points elsewhere. Writing is skipped when
the on-disk script already matches the generated content, and an existing
script that differs is only overwritten with --force.`,
	Args: cobra.ExactArgs(1),
	Run:  runCompile,
}

// validateCmd loads an experiment file and reports problems without
// writing anything.
var validateCmd = &cobra.Command{
	Use:   "validate <experiment" + experiment.FileExt + ">",
	Short: "Check an experiment file without generating output",
	Args:  cobra.ExactArgs(1),
	Run:   runValidate,
}

// diffCmd shows how regeneration would change an existing script.
var diffCmd = &cobra.Command{
	Use:   "diff <experiment" + experiment.FileExt + "> <script.py>",
	Short: "Show differences between a script and its regeneration",
	Long: `Regenerate the script for an experiment file and show a line diff
against an existing script on disk. Useful for reviewing what a
recompile would change after editing the experiment.`,
	Args: cobra.ExactArgs(2),
	Run:  runDiff,
}

// listCmd lists the registered component types.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available component types",
	Run:   runList,
}

// describeCmd renders the reference documentation for a component type.
var describeCmd = &cobra.Command{
	Use:   "describe <component-type>",
	Short: "Show reference documentation for a component type",
	Args:  cobra.ExactArgs(1),
	Run:   runDescribe,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  `Display the version of psybuild.`,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetDetailedVersion())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")

	// Bind flags to viper
	if err := viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-level flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding log-file flag: %v\n", err)
		os.Exit(1)
	}
	if err := viper.BindPFlag("test-mode", rootCmd.PersistentFlags().Lookup("test-mode")); err != nil {
		fmt.Fprintf(os.Stderr, "Error binding test-mode flag: %v\n", err)
		os.Exit(1)
	}

	compileCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output script path")
	compileCmd.Flags().BoolVar(&forceWrite, "force", false, "Overwrite an existing script that differs")
	describeCmd.Flags().StringVar(&docStyle, "style", "auto", "Markdown style ("+strings.Join(render.AvailableStyles(), "|")+")")

	// Add subcommands
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(versionCmd)

	// Configure logger before any command execution
	cobra.OnInitialize(initLogging)
}

func initLogging() {
	// Configure logger with CLI flags
	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func loadExperiment(path string) (*experiment.Experiment, error) {
	if ext := filepath.Ext(path); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("experiment file must have %s extension, got: %s", experiment.FileExt, path)
	}

	cfg := config.Load()
	return experiment.LoadFile(path,
		experiment.WithDeviceDefaults(cfg.TriggerAddress, cfg.SerialPort))
}

// scriptPathFor derives the output script path for an experiment file,
// honoring the --output flag and the configured output directory.
func scriptPathFor(expPath string) string {
	if outputPath != "" {
		return outputPath
	}

	base := filepath.Base(expPath)
	base = strings.TrimSuffix(base, experiment.FileExt)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base += ".py"

	if dir := config.Load().OutputDir; dir != "" {
		return filepath.Join(dir, base)
	}
	return filepath.Join(filepath.Dir(expPath), base)
}

func runCompile(_ *cobra.Command, args []string) {
	expPath := args[0]

	exp, err := loadExperiment(expPath)
	if err != nil {
		logger.Fatal("Failed to load experiment", "file", expPath, "error", err)
	}

	script, err := generator.Generate(exp, generator.Options{TestMode: testMode})
	if err != nil {
		logger.Fatal("Generation failed", "experiment", exp.Name, "error", err)
	}

	target := scriptPathFor(expPath)
	if existing, err := os.ReadFile(target); err == nil {
		if string(existing) == script && !forceWrite {
			fmt.Printf("%s %s (unchanged)\n", render.Success("up to date:"), render.Path(target))
			return
		}
		if string(existing) != script && !forceWrite {
			fmt.Printf("%s %s differs from the generated script\n", render.Error("refusing to overwrite:"), render.Path(target))
			fmt.Println("Use 'psybuild diff' to review the changes, or pass --force to overwrite.")
			os.Exit(1)
		}
	}

	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("Failed to create output directory", "dir", dir, "error", err)
		}
	}
	if err := os.WriteFile(target, []byte(script), 0o644); err != nil {
		logger.Fatal("Failed to write script", "file", target, "error", err)
	}

	logger.Info("Experiment compiled", "experiment", exp.Name, "script", target)
	fmt.Printf("%s %s\n", render.Success("compiled:"), render.Path(target))
}

func runValidate(_ *cobra.Command, args []string) {
	expPath := args[0]

	exp, err := loadExperiment(expPath)
	if err != nil {
		fmt.Printf("%s %v\n", render.Error("invalid:"), err)
		os.Exit(1)
	}

	// A dry-run generation catches emission-time problems such as
	// missing required parameters.
	if _, err := generator.Generate(exp, generator.Options{TestMode: true}); err != nil {
		fmt.Printf("%s %v\n", render.Error("invalid:"), err)
		os.Exit(1)
	}

	routines := len(exp.Routines)
	comps := len(exp.Components())
	fmt.Printf("%s %s (%d routines, %d components)\n",
		render.Success("valid:"), render.Path(expPath), routines, comps)
}

func runDiff(_ *cobra.Command, args []string) {
	expPath, scriptPath := args[0], args[1]

	exp, err := loadExperiment(expPath)
	if err != nil {
		logger.Fatal("Failed to load experiment", "file", expPath, "error", err)
	}

	script, err := generator.Generate(exp, generator.Options{TestMode: testMode})
	if err != nil {
		logger.Fatal("Generation failed", "experiment", exp.Name, "error", err)
	}

	existing, err := os.ReadFile(scriptPath)
	if err != nil {
		logger.Fatal("Failed to read script", "file", scriptPath, "error", err)
	}

	if string(existing) == script {
		fmt.Printf("%s %s\n", render.Success("up to date:"), render.Path(scriptPath))
		return
	}

	fmt.Printf("%s %s differs from its regeneration\n", render.Warning("outdated:"), render.Path(scriptPath))
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(existing), script, true)
	diffs = dmp.DiffCleanupSemantic(diffs)
	fmt.Print(dmp.DiffPrettyText(diffs))
	os.Exit(1)
}

func runList(_ *cobra.Command, _ []string) {
	for _, info := range components.GetGlobalRegistry().Types() {
		fmt.Printf("%-12s %s\n", info.Tag, info.Description)
	}
}

func runDescribe(_ *cobra.Command, args []string) {
	tag := args[0]

	doc, err := components.GetGlobalRegistry().Doc(tag)
	if err != nil {
		fmt.Printf("%s %v\n", render.Error("error:"), err)
		os.Exit(1)
	}

	md, err := render.NewMarkdown()
	if err != nil {
		// Fall back to the raw markdown if the terminal renderer cannot
		// be constructed.
		fmt.Println(doc)
		return
	}

	out, err := md.RenderWithStyle(doc, docStyle)
	if err != nil {
		fmt.Println(doc)
		return
	}
	fmt.Print(out)
}
