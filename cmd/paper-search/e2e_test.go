package main

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Настоящий браузер и настоящая модель. Запуск:
// GEMINI_API_KEY=... go test ./cmd/paper-search -run TestPaperSearchE2E
func TestPaperSearchE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping paper search e2e test in short mode")
	}
	if os.Getenv("GEMINI_API_KEY") == "" {
		t.Skip("GEMINI_API_KEY is not set")
	}

	tests := []struct {
		backend string
		args    []string
	}{
		{backend: "playwright"},
		{backend: "chromedp", args: []string{"--backend", "chromedp"}},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			runPaperSearch(t, tt.args...)
		})
	}
}

func runPaperSearch(t *testing.T, extra ...string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--headless", "--max-steps", "20"}, extra...))

	require.NoError(t, cmd.ExecuteContext(ctx))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Equal(t, "Titles and full links to the research papers:", lines[0])
	for _, line := range lines[1:] {
		require.Contains(t, line, ": http", "report line %q", line)
	}
	t.Logf("report:\n%s", out.String())
}
