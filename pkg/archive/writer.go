package archive

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/record"
)

// WriteArchive builds one archive holding a fresh record per id and writes
// it to outDir/name in a single call. Record construction, serialization
// and insertion run on a bounded inner pool of the given size (defaulted
// when <= 0). Any per-record failure discards the whole archive; nothing
// is written to disk on error. Returns the number of entries written.
func WriteArchive(ctx context.Context, name string, ids []string, outDir string, workers int) (int, error) {
	if workers <= 0 {
		workers = DefaultEntryWorkers
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	builder := NewBuilder()
	defer builder.Release()

	jobs := make(chan string, len(ids))
	for _, id := range ids {
		jobs <- id
	}
	close(jobs)

	errCh := make(chan error, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				default:
				}

				if err := addRecord(builder, id); err != nil {
					errCh <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errCh)

	// First failure wins; the archive is discarded either way.
	if err := <-errCh; err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeArchiveWrite, "archive task failed").
			WithDetail("archive", name)
	}

	data, err := builder.Bytes()
	if err != nil {
		return 0, err
	}

	path := filepath.Join(outDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, errors.Wrap(err, errors.ErrorTypeArchiveWrite, "failed to write archive file").
			WithDetail("path", path)
	}

	return len(ids), nil
}

// addRecord builds, serializes and inserts a single record entry.
func addRecord(builder *Builder, id string) error {
	obj, err := record.New(id)
	if err != nil {
		return err
	}

	data, err := record.Marshal(obj)
	if err != nil {
		return err
	}

	return builder.AddEntry(id+EntrySuffix, data)
}
