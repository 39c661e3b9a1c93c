// Package pipeline provides the create and parse drivers for fixgen,
// orchestrating batching, outer worker pool sizing and per-task result
// collection for both directions.
//
// One outer-pool task owns one whole archive. Failures never cross the
// pool boundary as panics or stray errors: every task yields a result
// value, the driver logs failures, counts successes and always runs to
// the wait-for-all barrier.
package pipeline

import (
	"github.com/fixgen/fixgen/pkg/config"
)

// Config carries the settings one pipeline run needs.
type Config struct {
	// ZipCount is the number of archives to create
	ZipCount int
	// XMLCount is the number of records per archive
	XMLCount int
	// Workers sizes the outer pool
	Workers int
	// EntryWorkers sizes the inner pool of each archive task
	EntryWorkers int
	// SourceDir holds archives for the parse direction
	SourceDir string
	// OutputDir receives archives or extracts
	OutputDir string
}

// FromRunConfig derives a pipeline Config from the CLI run configuration.
func FromRunConfig(rc *config.RunConfig) *Config {
	return &Config{
		ZipCount:     rc.ZipCount,
		XMLCount:     rc.XMLCount,
		Workers:      rc.WorkerCount,
		EntryWorkers: rc.EntryWorkers,
		SourceDir:    rc.SourceDir,
		OutputDir:    rc.OutputDir,
	}
}

// taskResult is the per-archive outcome collected from the outer pool.
type taskResult struct {
	name  string
	count int
	err   error
}

// CreateResult summarizes one create run.
type CreateResult struct {
	// ArchivesRequested is the number of archive tasks dispatched
	ArchivesRequested int
	// ArchivesCreated counts archives successfully written to disk
	ArchivesCreated int
	// RecordsWritten counts records across successful archives
	RecordsWritten int
	// Failures names the archives whose tasks failed
	Failures []string
}

// ParseResult summarizes one parse run.
type ParseResult struct {
	// ArchivesFound is the number of archive files enumerated
	ArchivesFound int
	// ArchivesParsed counts archives successfully read and decoded
	ArchivesParsed int
	// RecordsParsed counts records across successful archives
	RecordsParsed int
	// LevelRows is the row count of the levels extract
	LevelRows int
	// NameRows is the row count of the names extract
	NameRows int
	// ExtractsCreated counts extract files successfully written (0..2)
	ExtractsCreated int
	// Failures names the archives or extracts whose tasks failed
	Failures []string
}
