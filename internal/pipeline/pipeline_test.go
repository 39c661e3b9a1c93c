package pipeline

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixgen/fixgen/pkg/aggregate"
	"github.com/fixgen/fixgen/pkg/archive"
	"github.com/fixgen/fixgen/pkg/config"
	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/testutil"
)

func testConfig(zipCount, xmlCount int, srcDir, outDir string) *Config {
	return &Config{
		ZipCount:     zipCount,
		XMLCount:     xmlCount,
		Workers:      4,
		EntryWorkers: 4,
		SourceDir:    srcDir,
		OutputDir:    outDir,
	}
}

func TestCreateProducesExactArchiveSet(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	outDir := filepath.Join(t.TempDir(), "a")
	cfg := testConfig(2, 3, "", outDir)

	res, err := Create(ctx, cfg, testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.ArchivesRequested)
	assert.Equal(t, 2, res.ArchivesCreated)
	assert.Equal(t, 6, res.RecordsWritten)
	assert.Empty(t, res.Failures)

	for _, name := range []string{"1.zip", "2.zip"} {
		rc, err := zip.OpenReader(filepath.Join(outDir, name))
		require.NoError(t, err, "archive %s must exist", name)
		assert.Len(t, rc.File, 3, "archive %s must hold exactly 3 entries", name)
		rc.Close()
	}
}

func TestCreateIDsAreDisjointAcrossArchives(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	outDir := t.TempDir()
	cfg := testConfig(5, 20, "", outDir)

	res, err := Create(ctx, cfg, testutil.TestLogger(t))
	require.NoError(t, err)
	require.Equal(t, 5, res.ArchivesCreated)

	seen := make(map[string]struct{})
	paths, err := archive.ListArchives(outDir)
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for _, path := range paths {
		rc, err := zip.OpenReader(path)
		require.NoError(t, err)
		for _, f := range rc.File {
			_, dup := seen[f.Name]
			require.False(t, dup, "entry %q appears in two archives", f.Name)
			seen[f.Name] = struct{}{}
		}
		rc.Close()
	}
	assert.Len(t, seen, 100, "union of entries equals the reserved id set")
}

func TestParseRoundTrip(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	srcDir := filepath.Join(t.TempDir(), "a")
	outDir := filepath.Join(t.TempDir(), "b")

	_, err := Create(ctx, testConfig(2, 3, "", srcDir), testutil.TestLogger(t))
	require.NoError(t, err)

	res, err := Parse(ctx, testConfig(0, 0, srcDir, outDir), testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, 2, res.ArchivesFound)
	assert.Equal(t, 2, res.ArchivesParsed)
	assert.Equal(t, 6, res.RecordsParsed)
	assert.Equal(t, 2, res.ExtractsCreated)
	assert.Equal(t, 6, res.LevelRows)
	assert.GreaterOrEqual(t, res.NameRows, 6)
	assert.LessOrEqual(t, res.NameRows, 60)

	_, err = os.Stat(filepath.Join(outDir, aggregate.LevelsFile))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, aggregate.NamesFile))
	assert.NoError(t, err)
}

func TestParseMissingSourceDirIsFatal(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	srcDir := filepath.Join(t.TempDir(), "does-not-exist")
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := Parse(ctx, testConfig(0, 0, srcDir, outDir), testutil.TestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidSourceDir))

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no output may be created")
}

func TestParseSourceIsFileIsFatal(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	src := filepath.Join(t.TempDir(), "file.zip")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	_, err := Parse(ctx, testConfig(0, 0, src, t.TempDir()), testutil.TestLogger(t))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidSourceDir))
}

func TestParseIsolatesCorruptArchive(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	srcDir := filepath.Join(t.TempDir(), "src")
	outDir := filepath.Join(t.TempDir(), "out")

	_, err := Create(ctx, testConfig(2, 4, "", srcDir), testutil.TestLogger(t))
	require.NoError(t, err)

	// A third archive with an entry missing its level field must fail on
	// its own while the two healthy archives still parse.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("broken.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<root><var name="id" value="broken"/></root>`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "3.zip"), buf.Bytes(), 0o644))

	res, err := Parse(ctx, testConfig(0, 0, srcDir, outDir), testutil.TestLogger(t))
	require.NoError(t, err, "per-archive failures never abort the run")

	assert.Equal(t, 3, res.ArchivesFound)
	assert.Equal(t, 2, res.ArchivesParsed)
	assert.Equal(t, 8, res.RecordsParsed)
	assert.Equal(t, []string{"3.zip"}, res.Failures)
	assert.Equal(t, 2, res.ExtractsCreated)
	assert.Equal(t, 8, res.LevelRows)
}

func TestParseEmptySourceDir(t *testing.T) {
	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	res, err := Parse(ctx, testConfig(0, 0, t.TempDir(), t.TempDir()), testutil.TestLogger(t))
	require.NoError(t, err)

	assert.Zero(t, res.ArchivesFound)
	assert.Zero(t, res.RecordsParsed)
	// Extracts are still written, holding headers only.
	assert.Equal(t, 2, res.ExtractsCreated)
}

func TestPartitionIsExact(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	chunks := partition(ids, 4)
	require.Len(t, chunks, 3)

	seen := make(map[string]struct{})
	for _, chunk := range chunks {
		assert.Len(t, chunk, 4)
		for _, id := range chunk {
			_, dup := seen[id]
			require.False(t, dup)
			seen[id] = struct{}{}
		}
	}
	assert.Len(t, seen, 12, "every id lands in exactly one chunk")
}

func TestFromRunConfig(t *testing.T) {
	rc := config.NewRunConfig()
	rc.ZipCount = 7
	rc.WorkerCount = 2

	cfg := FromRunConfig(rc)
	assert.Equal(t, 7, cfg.ZipCount)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, rc.OutputDir, cfg.OutputDir)
}
