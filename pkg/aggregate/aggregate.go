// Package aggregate writes the two flat CSV extracts produced from a
// parsed record set: levels.csv with one row per record and names.csv with
// one row per (record, name) pair. Both writes are overwrite-on-rerun.
package aggregate

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fixgen/fixgen/pkg/errors"
	"github.com/fixgen/fixgen/pkg/record"
)

const (
	// LevelsFile is the id,level extract file name
	LevelsFile = "levels.csv"
	// NamesFile is the id,name extract file name
	NamesFile = "names.csv"
)

// WriteLevels writes the levels extract in the iteration order of records.
// The returned count excludes the header row.
func WriteLevels(records []*record.TestObject, outDir string) (int, error) {
	rows := 0
	err := writeExtract(filepath.Join(outDir, LevelsFile), []string{"id", "level"}, func(w *csv.Writer) error {
		for _, obj := range records {
			if err := w.Write([]string{obj.ID, strconv.Itoa(obj.Level)}); err != nil {
				return err
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// WriteNames writes the names extract: records in iteration order, names in
// their stored order within each record. The returned count excludes the
// header row.
func WriteNames(records []*record.TestObject, outDir string) (int, error) {
	rows := 0
	err := writeExtract(filepath.Join(outDir, NamesFile), []string{"id", "name"}, func(w *csv.Writer) error {
		for _, obj := range records {
			for _, name := range obj.Names {
				if err := w.Write([]string{obj.ID, name}); err != nil {
					return err
				}
				rows++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return rows, nil
}

// writeExtract creates (or truncates) path and streams header plus rows
// through a csv writer with standard quoting.
func writeExtract(path string, header []string, fill func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create extract").
			WithDetail("path", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write header").
			WithDetail("path", path)
	}
	if err := fill(w); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to write rows").
			WithDetail("path", path)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush extract").
			WithDetail("path", path)
	}
	return nil
}
