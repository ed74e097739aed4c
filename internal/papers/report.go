package papers

import (
	"fmt"
	"io"
)

const ReportHeader = "Titles and full links to the research papers:"

// Report печатает заголовок и по одной строке "title: link" на статью.
func Report(w io.Writer, records []Record) error {
	if _, err := fmt.Fprintln(w, ReportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Title, r.Link); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}

	return nil
}
