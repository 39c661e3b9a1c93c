package pipeline

import (
	"context"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/fixgen/fixgen/pkg/archive"
	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/idgen"
)

// Create runs the generation direction: reserve all ids up front, partition
// them into archive-sized chunks and build one archive per chunk on a
// bounded outer pool. Per-archive failures are logged and counted, never
// abort the remaining tasks; only id reservation or output directory
// failures are fatal.
func Create(ctx context.Context, cfg *Config, log *zap.Logger) (*CreateResult, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", cfg.OutputDir)
	}

	// The whole id space is reserved before any parallel work starts, so
	// the registry sees no contention during the hot phase.
	gen := idgen.NewGenerator()
	total := cfg.ZipCount * cfg.XMLCount
	ids, err := gen.Reserve(total)
	if err != nil {
		return nil, err
	}

	log.Debug("reserved ids",
		zap.Int("total", total),
		zap.Int("zip_count", cfg.ZipCount),
		zap.Int("xml_count", cfg.XMLCount))

	chunks := partition(ids, cfg.XMLCount)

	type task struct {
		name string
		ids  []string
	}

	tasks := make(chan task, len(chunks))
	for i, chunk := range chunks {
		tasks <- task{name: strconv.Itoa(i+1) + archive.Extension, ids: chunk}
	}
	close(tasks)

	results := make(chan taskResult, len(chunks))

	workers := cfg.Workers
	if workers > len(chunks) {
		workers = len(chunks)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				n, err := archive.WriteArchive(ctx, t.name, t.ids, cfg.OutputDir, cfg.EntryWorkers)
				results <- taskResult{name: t.name, count: n, err: err}
			}
		}()
	}
	wg.Wait()
	close(results)

	res := &CreateResult{ArchivesRequested: len(chunks)}
	for r := range results {
		if r.err != nil {
			log.Error("archive task failed",
				zap.String("archive", r.name),
				zap.Error(r.err))
			res.Failures = append(res.Failures, r.name)
			continue
		}
		res.ArchivesCreated++
		res.RecordsWritten += r.count
	}

	log.Info("create run finished",
		zap.Int("archives_requested", res.ArchivesRequested),
		zap.Int("archives_created", res.ArchivesCreated),
		zap.Int("records_written", res.RecordsWritten),
		zap.Int("failures", len(res.Failures)))

	return res, nil
}

// partition splits ids into contiguous chunks of size each. Reserve hands
// out exactly ZipCount*XMLCount ids, so the split is a true partition:
// every id lands in exactly one chunk and every chunk is full.
func partition(ids []string, size int) [][]string {
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
