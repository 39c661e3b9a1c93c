package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fixgen/fixgen/internal/pipeline"
	"github.com/fixgen/fixgen/pkg/config"
	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/idgen"
	"github.com/fixgen/fixgen/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var (
		createMode bool
		parseMode  bool
		verbose    bool
		configFile string
	)
	flagCfg := config.NewRunConfig()

	root := &cobra.Command{
		Use:   "fixgen",
		Short: "fixgen - synthetic test fixture generator",
		Long: `fixgen creates batches of zip archives filled with generated XML records,
and parses such archives back into flat CSV extracts (levels.csv, names.csv).

Create is the default mode when no mode flag is given.

Example:
  fixgen --create --zip-count 50 --xml-count 100 --output-dir ./out
  fixgen --parse --source-dir ./out --output-dir ./out`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flagCfg, createMode, parseMode, verbose, configFile)
		},
	}

	root.Flags().BoolVarP(&createMode, "create", "c", false, "Run create mode (default)")
	root.Flags().BoolVarP(&parseMode, "parse", "p", false, "Run parse mode")
	root.Flags().IntVarP(&flagCfg.ZipCount, "zip-count", "z", config.DefaultZipCount, "Number of archives to create")
	root.Flags().IntVarP(&flagCfg.XMLCount, "xml-count", "x", config.DefaultXMLCount, "Records per archive")
	root.Flags().StringVarP(&flagCfg.SourceDir, "source-dir", "s", config.DefaultDir, "Directory with archives to parse")
	root.Flags().StringVarP(&flagCfg.OutputDir, "output-dir", "o", config.DefaultDir, "Destination directory, created if absent")
	root.Flags().IntVarP(&flagCfg.WorkerCount, "worker-count", "w", config.DefaultWorkerCount, "Outer pool size (one task per archive)")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "Raise log verbosity to debug level")
	root.Flags().StringVar(&configFile, "config", "", "Path to run configuration JSON file (optional)")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fixgen v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveConfig layers configuration: defaults, then the optional JSON
// file, then FIXGEN_* environment variables, then explicitly set flags.
func resolveConfig(cmd *cobra.Command, flagCfg *config.RunConfig, createMode, parseMode, verbose bool, configFile string) (*config.RunConfig, error) {
	cfg := config.NewRunConfig()

	if configFile != "" {
		if err := config.LoadFile(configFile, cfg); err != nil {
			return nil, err
		}
	}
	config.ApplyEnv(cfg)

	if cmd.Flags().Changed("zip-count") {
		cfg.ZipCount = flagCfg.ZipCount
	}
	if cmd.Flags().Changed("xml-count") {
		cfg.XMLCount = flagCfg.XMLCount
	}
	if cmd.Flags().Changed("source-dir") {
		cfg.SourceDir = flagCfg.SourceDir
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = flagCfg.OutputDir
	}
	if cmd.Flags().Changed("worker-count") {
		cfg.WorkerCount = flagCfg.WorkerCount
	}

	if createMode && parseMode {
		return nil, errors.New(errors.ErrorTypeConfig, "--create and --parse are mutually exclusive")
	}
	if parseMode {
		cfg.Mode = config.ModeParse
	} else {
		cfg.Mode = config.ModeCreate
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run resolves the configuration and drives one pipeline run.
func run(cmd *cobra.Command, flagCfg *config.RunConfig, createMode, parseMode, verbose bool, configFile string) error {
	cfg, err := resolveConfig(cmd, flagCfg, createMode, parseMode, verbose, configFile)
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Development: verbose,
		Encoding:    "console",
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.WithValue(context.Background(), logger.RunIDKey, idgen.Token())
	ctx = context.WithValue(ctx, logger.ModeKey, string(cfg.Mode))
	log := logger.WithContext(ctx)

	log.Info("starting run",
		zap.String("mode", string(cfg.Mode)),
		zap.Int("worker_count", cfg.WorkerCount),
		zap.String("output_dir", cfg.OutputDir))

	start := time.Now()
	pcfg := pipeline.FromRunConfig(cfg)

	switch cfg.Mode {
	case config.ModeParse:
		res, err := pipeline.Parse(ctx, pcfg, log)
		if err != nil {
			return err
		}
		log.Info("parse summary",
			zap.Duration("duration", time.Since(start)),
			zap.Int("archives_processed", res.ArchivesParsed),
			zap.Int("extracts_created", res.ExtractsCreated))
	default:
		res, err := pipeline.Create(ctx, pcfg, log)
		if err != nil {
			return err
		}
		log.Info("create summary",
			zap.Duration("duration", time.Since(start)),
			zap.Int("archives_created", res.ArchivesCreated),
			zap.Int("records_written", res.RecordsWritten))
	}

	return nil
}
