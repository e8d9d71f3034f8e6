// Package recordlog persists refined text as an append-only CSV log.
package recordlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"foodsafe/internal/domain"
)

// Writer wraps csv.Writer for single-field text records.
type Writer struct {
	out io.Writer
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: w, csv: csv.NewWriter(w)}
}

// Flush writes any buffered rows to the underlying writer.
func (w *Writer) Flush() error { w.csv.Flush(); return w.csv.Error() }

// emptyRow is a single empty quoted field. csv.Writer renders an empty field
// as a bare newline, which csv.Reader skips as a blank line.
const emptyRow = "\"\"\n"

// WriteRecord writes text as one single-field row.
func (w *Writer) WriteRecord(text string) error {
	if text != "" {
		return w.csv.Write([]string{text})
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w.out, emptyRow)
	return err
}

// CSVStore appends records to a CSV file, creating it on first use. The file
// is opened and closed on every Append.
//
// CSVStore does no locking: concurrent Appends to the same path, from this
// process or another, may interleave or corrupt rows.
type CSVStore struct {
	path string
}

// NewCSVStore creates a CSVStore for the file at path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Ready reports whether the directory holding the log file exists.
func (s *CSVStore) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("log directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("log directory %s is not a directory", dir)
	}
	return nil
}

// Append writes text as a new row. Failures are returned as *domain.LoggingError.
func (s *CSVStore) Append(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &domain.LoggingError{Path: s.path, Err: err}
	}
	if err := s.append(text); err != nil {
		return &domain.LoggingError{Path: s.path, Err: err}
	}
	return nil
}

func (s *CSVStore) append(text string) (err error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing log: %w", cerr)
		}
	}()

	w := NewWriter(f)
	if err := w.WriteRecord(text); err != nil {
		return fmt.Errorf("writing row: %w", err)
	}
	return w.Flush()
}

// ReadAll returns every row of the CSV file at path. A missing file yields an
// empty result. Rows may have differing field counts.
//
// csv.Reader drops a carriage return that precedes a newline, even inside a
// quoted field, so "\r\n" in appended text reads back as "\n".
func ReadAll(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return [][]string{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if rows == nil {
		rows = [][]string{}
	}
	return rows, nil
}
