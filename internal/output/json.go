package output

import (
	"fmt"
	"io"

	"github.com/okian/concord/internal/report"
)

// JSONWriter emits the full report as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, r *report.ConsensusReport) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	return nil
}
