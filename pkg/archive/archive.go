// Package archive assembles and extracts the zip containers that hold
// serialized records, one entry per record named <id>.xml.
//
// Archives are built fully in memory and flushed to disk in a single write,
// so a partially assembled archive is never visible on disk. The in-memory
// builder is the only state shared by the inner worker pool and guards
// every structural mutation with a mutex.
package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/pool"
)

const (
	// Extension is the archive file extension
	Extension = ".zip"
	// EntrySuffix is the per-record entry suffix
	EntrySuffix = ".xml"
	// DefaultEntryWorkers sizes the inner pool when the caller passes <= 0
	DefaultEntryWorkers = 4
)

// Builder accumulates entries into an in-memory zip container.
// AddEntry is safe for concurrent use; the zip writer itself is not, so
// insertion is a single critical section.
type Builder struct {
	mu  sync.Mutex
	buf *bytes.Buffer
	zw  *zip.Writer
}

// NewBuilder creates an empty in-memory archive builder backed by a pooled
// buffer. Deflate is wired to klauspost's flate for throughput.
func NewBuilder() *Builder {
	buf := pool.GetBuffer()
	zw := zip.NewWriter(buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestSpeed)
	})
	return &Builder{buf: buf, zw: zw}
}

// AddEntry inserts one named entry into the archive.
func (b *Builder) AddEntry(name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.zw.Create(name)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeArchiveWrite, "failed to create entry").
			WithDetail("entry", name)
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, errors.ErrorTypeArchiveWrite, "failed to write entry").
			WithDetail("entry", name)
	}
	return nil
}

// Bytes finalizes the archive and returns the complete container bytes.
// The builder must not be used after Bytes returns.
func (b *Builder) Bytes() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.zw.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeArchiveWrite, "failed to finalize archive")
	}

	out := make([]byte, b.buf.Len())
	copy(out, b.buf.Bytes())
	return out, nil
}

// Release returns the backing buffer to the pool. Call once the builder is
// done, whether or not assembly succeeded.
func (b *Builder) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	pool.PutBuffer(b.buf)
	b.buf = nil
	b.zw = nil
}
