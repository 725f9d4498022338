package discussion

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"

	"github.com/spf13/afero"
)

const (
	baseFilePerms   = 0o666
	baseFolderPerms = 0o777
)

// ErrAmbiguousOutput is returned when several discussions would be written
// to one explicit output file.
var ErrAmbiguousOutput = errors.New("an output file takes a single discussion")

// Destination says where rendered discussions go. With neither Stdout nor
// File set, files are named <prefix>.<id>.<ext> inside Dir (or the working
// directory).
type Destination struct {
	Stdout bool
	File   string
	Dir    string
}

// Writer persists results.
type Writer struct {
	fs     afero.Fs
	stdout io.Writer
	dest   Destination
	prefix string
	ext    string
	log    *slog.Logger
}

// NewWriter returns a Writer naming files <prefix>.<id>.<ext>.
func NewWriter(fs afero.Fs, stdout io.Writer, dest Destination, prefix, ext string, log *slog.Logger) *Writer {
	if log == nil {
		log = slog.Default()
	}
	return &Writer{fs: fs, stdout: stdout, dest: dest, prefix: prefix, ext: ext, log: log}
}

// Path is the file a result would be written to, "" for stdout.
func (w *Writer) Path(res *Result) string {
	switch {
	case w.dest.Stdout:
		return ""
	case w.dest.File != "":
		return w.dest.File
	}
	name := w.prefix + "." + strconv.Itoa(res.ItemID) + "." + w.ext
	if w.dest.Dir == "" {
		return name
	}
	return filepath.Join(w.dest.Dir, name)
}

// WriteAll writes every result, in order.
func (w *Writer) WriteAll(results []*Result) error {
	if w.dest.File != "" && !w.dest.Stdout && len(results) > 1 {
		return ErrAmbiguousOutput
	}
	for _, res := range results {
		if err := w.Write(res); err != nil {
			return err
		}
	}
	return nil
}

// Write writes one result.
func (w *Writer) Write(res *Result) error {
	path := w.Path(res)
	if path == "" {
		if _, err := io.WriteString(w.stdout, res.Markdown); err != nil {
			return fmt.Errorf("writing to stdout: %w", err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir, baseFolderPerms); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := afero.WriteFile(w.fs, path, []byte(res.Markdown), baseFilePerms); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	w.log.Info("written", "id", res.ItemID, "path", path)
	return nil
}
