package summarizer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/user/reelsync/pkg/ports"
)

// Formatter renders a Summary.
type Formatter interface {
	Format(summary *Summary) string
}

// FormatFunc adapts a function to Formatter.
type FormatFunc func(summary *Summary) string

func (f FormatFunc) Format(summary *Summary) string { return f(summary) }

// StdoutPath names standard output as a report destination.
const StdoutPath = "-"

// Writer saves rendered summaries.
type Writer struct {
	formatter Formatter
	fs        ports.FileSystem
	stdout    io.Writer
}

// NewWriter creates a Writer. stdout receives reports sent to StdoutPath.
func NewWriter(formatter Formatter, fs ports.FileSystem, stdout io.Writer) *Writer {
	return &Writer{formatter: formatter, fs: fs, stdout: stdout}
}

// Write renders summary to path, creating its directory first.
func (w *Writer) Write(path string, summary *Summary) error {
	content := w.formatter.Format(summary)

	if path == StdoutPath {
		_, err := io.WriteString(w.stdout, content)
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := w.fs.MkdirAll(dir); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	if err := w.fs.WriteFile(path, []byte(content)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
