// Package output writes harvested comment rows: the CSV file every run
// produces and an optional Postgres mirror.
package output

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// Header is the fixed first row of every output file. "Stramer" is kept
// as-is because existing consumers of these files key on it.
var Header = []string{
	"Stramer",
	"Video_id",
	"Title",
	"Views",
	"Comment_count",
	"Video_likes",
	"Video_dislikes",
	"Comment_replies",
	"Comment_likes",
	"Comment",
}

// Sink receives every batch of rows a run appends.
type Sink interface {
	Append(ctx context.Context, runID string, rows []engine.OutputRow) error
}

// CSVWriter writes <Dir>/<Name>.csv. Rows are CRLF-terminated with
// minimal quoting so files match those produced by earlier tooling.
type CSVWriter struct {
	Dir  string
	Name string
}

// NewCSVWriter returns a writer for <dir>/<name>.csv. Empty dir = working directory.
func NewCSVWriter(dir, name string) *CSVWriter {
	return &CSVWriter{Dir: dir, Name: name}
}

// Path returns the file the writer targets.
func (w *CSVWriter) Path() string {
	return filepath.Join(w.Dir, w.Name+".csv")
}

// WriteRows writes rows to the file. In header mode the file is truncated
// and Header written first; otherwise rows are appended and the file is
// created if missing. A failure part way leaves whatever was flushed.
func (w *CSVWriter) WriteRows(rows []engine.OutputRow, header bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if header {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	if w.Dir != "" {
		if err := os.MkdirAll(w.Dir, 0o750); err != nil {
			return fmt.Errorf("%w: mkdir %s: %w", engine.ErrWrite, w.Dir, err)
		}
	}

	f, err := os.OpenFile(w.Path(), flags, 0o644) //nolint:gosec // output path from config
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", engine.ErrWrite, w.Path(), err)
	}

	cw := csv.NewWriter(f)
	cw.UseCRLF = true
	if header {
		if err := cw.Write(Header); err != nil {
			f.Close()
			return fmt.Errorf("%w: header: %w", engine.ErrWrite, err)
		}
	}
	for _, r := range rows {
		if err := cw.Write(Record(r)); err != nil {
			f.Close()
			return fmt.Errorf("%w: row %s: %w", engine.ErrWrite, r.VideoID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		f.Close()
		return fmt.Errorf("%w: flush: %w", engine.ErrWrite, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", engine.ErrWrite, w.Path(), err)
	}
	return nil
}

// WriteHeader truncates the file to just the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.WriteRows(nil, true)
}

// Append implements Sink.
func (w *CSVWriter) Append(_ context.Context, _ string, rows []engine.OutputRow) error {
	if err := w.WriteRows(rows, false); err != nil {
		return err
	}
	engine.AddRowsWritten(len(rows))
	return nil
}

// Record renders r in Header column order.
func Record(r engine.OutputRow) []string {
	return []string{
		r.Owner,
		r.VideoID,
		r.Title,
		r.Views,
		r.CommentCount,
		r.VideoLikes,
		r.VideoDislikes,
		strconv.FormatInt(r.Replies, 10),
		strconv.FormatInt(r.CommentLikes, 10),
		r.Comment,
	}
}
