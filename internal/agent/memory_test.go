package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

func TestStepMemoryBlocksRepeatedAction(t *testing.T) {
	m := NewStepMemory(5, 2)
	click := llm.Action{Type: llm.ActionClick, TargetID: 4}

	m.Add(1, "https://arxiv.org", click)
	blocked, _ := m.ShouldBlock("https://arxiv.org", click)
	assert.False(t, blocked)

	m.Add(2, "https://arxiv.org", click)
	blocked, reason := m.ShouldBlock("https://arxiv.org", click)
	assert.True(t, blocked)
	assert.Contains(t, reason, "2 times in a row")

	// тот же id на другой странице: другое действие
	blocked, _ = m.ShouldBlock("https://arxiv.org/abs/1", click)
	assert.False(t, blocked)
}

func TestStepMemoryBlocksRepeatedPattern(t *testing.T) {
	m := NewStepMemory(5, 3)
	open := llm.Action{Type: llm.ActionClick, TargetID: 10}
	back := llm.Action{Type: llm.ActionBack}
	url := "https://scholar.google.com/scholar?q=sepsis"

	m.Add(1, url, open)
	m.Add(2, url, back)
	m.Add(3, url, open)

	blocked, reason := m.ShouldBlock(url, back)
	assert.True(t, blocked)
	assert.Contains(t, reason, "has already occurred before")

	other := llm.Action{Type: llm.ActionClick, TargetID: 11}
	blocked, _ = m.ShouldBlock(url, other)
	assert.False(t, blocked)
}

func TestStepMemoryTypeKeyIncludesText(t *testing.T) {
	m := NewStepMemory(5, 2)
	url := "https://pubmed.ncbi.nlm.nih.gov"

	m.Add(1, url, llm.Action{Type: llm.ActionTypeInput, TargetID: 1, Text: "sepsis"})
	m.Add(2, url, llm.Action{Type: llm.ActionTypeInput, TargetID: 1, Text: "sepsis"})

	blocked, _ := m.ShouldBlock(url, llm.Action{Type: llm.ActionTypeInput, TargetID: 1, Text: "sepsis early detection"})
	assert.False(t, blocked)
}

func TestStepMemoryHistoryWindow(t *testing.T) {
	m := NewStepMemory(2, 3)
	m.Add(1, "u", llm.Action{Type: llm.ActionScroll})
	m.AddSystemNote("  ")
	m.AddSystemNote("SYSTEM NOTE: a")
	m.Add(2, "u", llm.Action{Type: llm.ActionNavigate, URL: "https://arxiv.org"})

	lines := strings.Split(m.HistoryString(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "SYSTEM NOTE: a", lines[0])
	assert.Contains(t, lines[1], "to=https://arxiv.org")

	assert.Len(t, m.FullHistory(), 3)
	assert.False(t, m.LoopTriggered())
	m.MarkLoopTriggered()
	assert.True(t, m.LoopTriggered())
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		current, target, want string
	}{
		{"about:blank", "https://arxiv.org/abs/2401.1", "https://arxiv.org/abs/2401.1"},
		{"https://arxiv.org/list", "/abs/2401.1", "https://arxiv.org/abs/2401.1"},
		{"about:blank", "pubmed.ncbi.nlm.nih.gov/?term=sepsis", "https://pubmed.ncbi.nlm.nih.gov/?term=sepsis"},
		{"https://scholar.google.com/scholar", "?q=sepsis", "https://scholar.google.com/scholar?q=sepsis"},
		{"https://arxiv.org", "  ", "https://arxiv.org"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeURL(tt.current, tt.target), "target %q", tt.target)
	}
}

func TestHistoryLastAction(t *testing.T) {
	h := &History{}
	_, ok := h.LastAction()
	assert.False(t, ok)

	h.Steps = []StepRecord{
		{Step: 1, Actions: []llm.Action{{Type: llm.ActionScroll}, {Type: llm.ActionDone, Text: ""}}},
		{Step: 2},
	}
	last, ok := h.LastAction()
	require.True(t, ok)
	assert.Equal(t, llm.ActionDone, last.Type)

	text, ok := h.DoneText()
	assert.True(t, ok)
	assert.Empty(t, text)
}
