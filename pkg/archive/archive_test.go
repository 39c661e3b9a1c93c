package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/idgen"
	"github.com/fixgen/fixgen/pkg/record"
)

func TestWriteArchiveProducesOneEntryPerID(t *testing.T) {
	dir := t.TempDir()
	gen := idgen.NewGenerator()
	ids, err := gen.Reserve(25)
	require.NoError(t, err)

	count, err := WriteArchive(context.Background(), "1"+Extension, ids, dir, 4)
	require.NoError(t, err)
	assert.Equal(t, 25, count)

	rc, err := zip.OpenReader(filepath.Join(dir, "1"+Extension))
	require.NoError(t, err)
	defer rc.Close()

	require.Len(t, rc.File, 25)

	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id+EntrySuffix] = struct{}{}
	}
	for _, f := range rc.File {
		_, ok := want[f.Name]
		assert.True(t, ok, "unexpected entry %q", f.Name)
		delete(want, f.Name)
	}
	assert.Empty(t, want, "every reserved id must appear exactly once")
}

func TestWriteArchiveFailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()

	// An empty id makes record construction fail, which must abort the
	// whole archive before anything reaches disk.
	ids := []string{"good-1", "", "good-2"}

	_, err := WriteArchive(context.Background(), "bad"+Extension, ids, dir, 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArchiveWrite))

	_, statErr := os.Stat(filepath.Join(dir, "bad"+Extension))
	assert.True(t, os.IsNotExist(statErr), "partial archive must not be visible on disk")
}

func TestReadArchiveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	gen := idgen.NewGenerator()
	ids, err := gen.Reserve(40)
	require.NoError(t, err)

	_, err = WriteArchive(context.Background(), "rt"+Extension, ids, dir, 4)
	require.NoError(t, err)

	records, err := ReadArchive(context.Background(), filepath.Join(dir, "rt"+Extension), 4)
	require.NoError(t, err)
	require.Len(t, records, 40)

	got := make(map[string]struct{}, len(records))
	for _, obj := range records {
		assert.GreaterOrEqual(t, obj.Level, record.MinLevel)
		assert.LessOrEqual(t, obj.Level, record.MaxLevel)
		assert.NotEmpty(t, obj.Names)
		got[obj.ID] = struct{}{}
	}
	for _, id := range ids {
		_, ok := got[id]
		assert.True(t, ok, "id %q lost in round trip", id)
	}
}

func TestReadArchiveMalformedEntryFailsWholeArchive(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt"+Extension)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	obj, err := record.New("ok-id")
	require.NoError(t, err)
	good, err := record.Marshal(obj)
	require.NoError(t, err)

	w, err := zw.Create("ok-id" + EntrySuffix)
	require.NoError(t, err)
	_, err = w.Write(good)
	require.NoError(t, err)

	w, err = zw.Create("broken" + EntrySuffix)
	require.NoError(t, err)
	_, err = w.Write([]byte(`<root><var name="id" value="broken"/></root>`))
	require.NoError(t, err)

	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ReadArchive(context.Background(), path, 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArchiveRead))
}

func TestReadArchiveMissingFile(t *testing.T) {
	_, err := ReadArchive(context.Background(), filepath.Join(t.TempDir(), "nope"+Extension), 2)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeArchiveRead))
}

func TestListArchives(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"2.zip", "1.zip", "notes.txt", "10.zip"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.zip"), 0o755))

	paths, err := ListArchives(dir)
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"1.zip", "10.zip", "2.zip"}, names)
}

func TestListArchivesMissingDir(t *testing.T) {
	_, err := ListArchives(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestBuilderEntries(t *testing.T) {
	b := NewBuilder()
	defer b.Release()

	require.NoError(t, b.AddEntry("a.xml", []byte("<root/>")))
	require.NoError(t, b.AddEntry("b.xml", []byte("<root/>")))

	data, err := b.Bytes()
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.True(t, strings.HasSuffix(zr.File[0].Name, ".xml"))
}
