package agent

import (
	"fmt"
	"strings"

	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

// StepMemory хранит краткую историю шагов для LLM и детектит циклы
// как по одному действию, так и по повторяющимся парам действий.
type StepMemory struct {
	lines    []string
	maxLines int

	fullLines []string

	lastActionKey string
	repeatCount   int
	loopThreshold int

	recentKeys    []string
	maxRecent     int
	patternLen    int
	patternCounts map[string]int

	loopTriggered bool
}

func NewStepMemory(maxLines, loopThreshold int) *StepMemory {
	if maxLines <= 0 {
		maxLines = 5
	}
	if loopThreshold <= 1 {
		loopThreshold = 2
	}
	return &StepMemory{
		maxLines:      maxLines,
		loopThreshold: loopThreshold,
		maxRecent:     10,
		patternLen:    2, // A -> B
		patternCounts: make(map[string]int),
	}
}

// navigate различается по целевому URL, type по введённому тексту.
func (m *StepMemory) makeKey(url string, action llm.Action) string {
	switch action.Type {
	case llm.ActionNavigate:
		return fmt.Sprintf("%s|%s|%s", action.Type, url, action.URL)
	case llm.ActionTypeInput:
		return fmt.Sprintf("%s|%s|%d|%s", action.Type, url, action.TargetID, action.Text)
	default:
		return fmt.Sprintf("%s|%s|%d", action.Type, url, action.TargetID)
	}
}

func (m *StepMemory) push(line string) {
	m.fullLines = append(m.fullLines, line)
	m.lines = append(m.lines, line)
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}
}

// Add: записать выполненное действие и обновить счётчики повторов.
func (m *StepMemory) Add(step int, url string, action llm.Action) {
	line := fmt.Sprintf(
		"step=%d url=%s action=%s target=%d text=%q",
		step, url, action.Type, action.TargetID, action.Text,
	)
	if action.Type == llm.ActionNavigate {
		line += fmt.Sprintf(" to=%s", action.URL)
	}
	m.push(line)

	key := m.makeKey(url, action)

	if key == m.lastActionKey {
		m.repeatCount++
	} else {
		m.lastActionKey = key
		m.repeatCount = 1
	}

	m.recentKeys = append(m.recentKeys, key)
	if len(m.recentKeys) > m.maxRecent {
		m.recentKeys = m.recentKeys[len(m.recentKeys)-m.maxRecent:]
	}

	if len(m.recentKeys) >= m.patternLen {
		seq := m.recentKeys[len(m.recentKeys)-m.patternLen:]
		m.patternCounts[strings.Join(seq, "->")]++
	}
}

// ShouldBlock возвращает (true, reason), если действие продолжает цикл.
// reason уходит модели как системная заметка.
func (m *StepMemory) ShouldBlock(url string, action llm.Action) (bool, string) {
	key := m.makeKey(url, action)

	if key == m.lastActionKey && m.repeatCount >= m.loopThreshold {
		return true, fmt.Sprintf(
			"SYSTEM NOTE: The same action (%s) has already been executed %d times in a row. "+
				"Do NOT repeat it again. Choose a different action or finish if the goal is already achieved.",
			key, m.repeatCount,
		)
	}

	if len(m.recentKeys) >= m.patternLen-1 {
		seq := append([]string{}, m.recentKeys[len(m.recentKeys)-(m.patternLen-1):]...)
		seq = append(seq, key)

		// A -> A уже покрыт счётчиком повторов выше
		if seq[0] != seq[len(seq)-1] {
			pattern := strings.Join(seq, "->")
			if m.patternCounts[pattern] >= 1 {
				return true, fmt.Sprintf(
					"SYSTEM NOTE: The sequence of %d actions (%s) has already occurred before. "+
						"Do NOT repeat this pattern. Try another source or finish with the papers found so far.",
					m.patternLen, pattern,
				)
			}
		}
	}

	return false, ""
}

func (m *StepMemory) AddSystemNote(note string) {
	note = strings.TrimSpace(note)
	if note == "" {
		return
	}
	m.push(note)
}

func (m *StepMemory) HistoryString() string {
	return strings.Join(m.lines, "\n")
}

func (m *StepMemory) FullHistory() []string {
	if len(m.fullLines) == 0 {
		return nil
	}
	out := make([]string, len(m.fullLines))
	copy(out, m.fullLines)
	return out
}

func (m *StepMemory) MarkLoopTriggered() {
	m.loopTriggered = true
}

func (m *StepMemory) LoopTriggered() bool {
	return m.loopTriggered
}
