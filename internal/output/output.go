// Package output renders consensus reports for machine consumption or
// human review.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/concord/internal/report"
)

// Writer renders a report in one format.
type Writer interface {
	Write(w io.Writer, r *report.ConsensusReport) error
}

// GetWriter returns a writer for the given format name.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReport writes the report to outPath, or stdout when outPath is
// empty.
func WriteReport(r *report.ConsensusReport, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, r)
}
