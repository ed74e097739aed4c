package papers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
		want    string
	}{
		{
			name:    "empty list prints header only",
			records: nil,
			want:    ReportHeader + "\n",
		},
		{
			name: "records keep their order",
			records: []Record{
				{Title: "B", Link: "https://b.example"},
				{Title: "A", Link: "https://a.example"},
			},
			want: ReportHeader + "\n" +
				"B: https://b.example\n" +
				"A: https://a.example\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Report(&buf, tt.records))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestReportEmptyInputEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, Extract("")))
	assert.Equal(t, "Titles and full links to the research papers:\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReportWriteError(t *testing.T) {
	err := Report(failingWriter{}, []Record{{Title: "x", Link: "y"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed pipe")
}
