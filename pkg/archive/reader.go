package archive

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/flate"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/record"
)

// ReadArchive opens the archive at path, reads every entry's raw bytes and
// deserializes them on a bounded inner pool. A single malformed entry fails
// the whole archive; there is no partial recovery. The order of the
// returned records is unspecified.
func ReadArchive(ctx context.Context, path string, workers int) ([]*record.TestObject, error) {
	if workers <= 0 {
		workers = DefaultEntryWorkers
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArchiveRead, "failed to open archive").
			WithDetail("path", path)
	}
	defer rc.Close()

	rc.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	// Raw entry bytes are pulled sequentially; decoding is the CPU-bound
	// part and runs on the pool below.
	raw := make([][]byte, 0, len(rc.File))
	for _, f := range rc.File {
		data, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		raw = append(raw, data)
	}

	if workers > len(raw) {
		workers = len(raw)
	}

	records := make([]*record.TestObject, len(raw))
	jobs := make(chan int, len(raw))
	for i := range raw {
		jobs <- i
	}
	close(jobs)

	errCh := make(chan error, len(raw))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				default:
				}

				obj, err := record.Unmarshal(raw[idx])
				if err != nil {
					errCh <- err
					return
				}
				records[idx] = obj
			}
		}()
	}
	wg.Wait()
	close(errCh)

	if err := <-errCh; err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArchiveRead, "archive task failed").
			WithDetail("path", path)
	}

	return records, nil
}

// readEntry reads the full raw bytes of one zip entry.
func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArchiveRead, "failed to open entry").
			WithDetail("entry", f.Name)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArchiveRead, "failed to read entry").
			WithDetail("entry", f.Name)
	}
	return data, nil
}

// ListArchives returns the paths of all regular files in dir carrying the
// archive extension, sorted by name.
func ListArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to list directory").
			WithDetail("dir", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}
