// Package config provides the unified run configuration for fixgen.
// It defines a single RunConfig structure shared by the CLI and the
// pipeline drivers, with defaults matching the original tool surface,
// environment variable overrides, and optional JSON file loading.
package config

import (
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/fixgen/fixgen/pkg/errors"
)

// Mode selects the pipeline direction.
type Mode string

const (
	// ModeCreate generates archives of fresh records
	ModeCreate Mode = "create"
	// ModeParse ingests archives back into CSV extracts
	ModeParse Mode = "parse"
)

// Default values for the run configuration. These mirror the CLI defaults.
const (
	DefaultZipCount     = 50
	DefaultXMLCount     = 100
	DefaultWorkerCount  = 4
	DefaultEntryWorkers = 4
	DefaultDir          = "./out"
)

// RunConfig is the single configuration structure for one fixgen run.
type RunConfig struct {
	// Mode selects create or parse
	Mode Mode `json:"mode"`
	// ZipCount is the number of archives to create
	ZipCount int `json:"zip_count"`
	// XMLCount is the number of records per archive
	XMLCount int `json:"xml_count"`
	// SourceDir holds the archives to read in parse mode
	SourceDir string `json:"source_dir"`
	// OutputDir is the destination directory, created if absent
	OutputDir string `json:"output_dir"`
	// WorkerCount sizes the outer pool (one task per archive)
	WorkerCount int `json:"worker_count"`
	// EntryWorkers sizes the inner pool (one task per record)
	EntryWorkers int `json:"entry_workers"`
	// LogLevel sets the zap log level (debug, info, warn, error)
	LogLevel string `json:"log_level"`
}

// NewRunConfig returns a RunConfig populated with defaults.
func NewRunConfig() *RunConfig {
	return &RunConfig{
		Mode:         ModeCreate,
		ZipCount:     DefaultZipCount,
		XMLCount:     DefaultXMLCount,
		SourceDir:    DefaultDir,
		OutputDir:    DefaultDir,
		WorkerCount:  DefaultWorkerCount,
		EntryWorkers: DefaultEntryWorkers,
		LogLevel:     "info",
	}
}

// LoadFile overlays cfg with values from a JSON config file.
func LoadFile(path string, cfg *RunConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse config file")
	}

	return nil
}

// ApplyEnv overlays cfg with FIXGEN_* environment variables
// (FIXGEN_ZIP_COUNT, FIXGEN_XML_COUNT, FIXGEN_SOURCE_DIR, FIXGEN_OUTPUT_DIR,
// FIXGEN_WORKER_COUNT, FIXGEN_ENTRY_WORKERS, FIXGEN_LOG_LEVEL).
func ApplyEnv(cfg *RunConfig) {
	v := viper.New()
	v.SetEnvPrefix("fixgen")
	v.AutomaticEnv()

	if v.IsSet("zip_count") {
		cfg.ZipCount = v.GetInt("zip_count")
	}
	if v.IsSet("xml_count") {
		cfg.XMLCount = v.GetInt("xml_count")
	}
	if v.IsSet("source_dir") {
		cfg.SourceDir = v.GetString("source_dir")
	}
	if v.IsSet("output_dir") {
		cfg.OutputDir = v.GetString("output_dir")
	}
	if v.IsSet("worker_count") {
		cfg.WorkerCount = v.GetInt("worker_count")
	}
	if v.IsSet("entry_workers") {
		cfg.EntryWorkers = v.GetInt("entry_workers")
	}
	if v.IsSet("log_level") {
		cfg.LogLevel = v.GetString("log_level")
	}
}

// Validate checks the configuration for a runnable combination.
func (c *RunConfig) Validate() error {
	switch c.Mode {
	case ModeCreate, ModeParse:
	default:
		return errors.New(errors.ErrorTypeConfig, "mode must be create or parse")
	}

	if c.Mode == ModeCreate {
		if c.ZipCount < 1 {
			return errors.New(errors.ErrorTypeConfig, "zip-count must be at least 1")
		}
		if c.XMLCount < 1 {
			return errors.New(errors.ErrorTypeConfig, "xml-count must be at least 1")
		}
	}

	if c.WorkerCount < 1 {
		return errors.New(errors.ErrorTypeConfig, "worker-count must be at least 1")
	}
	if c.EntryWorkers < 1 {
		return errors.New(errors.ErrorTypeConfig, "entry workers must be at least 1")
	}
	if c.OutputDir == "" {
		return errors.New(errors.ErrorTypeConfig, "output-dir must not be empty")
	}
	if c.Mode == ModeParse && c.SourceDir == "" {
		return errors.New(errors.ErrorTypeConfig, "source-dir must not be empty")
	}

	return nil
}
