package agent

import (
	"time"

	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

// StepRecord: один шаг агента: что видел, что решил и что успел выполнить.
type StepRecord struct {
	Step    int
	URL     string
	Thought string
	Actions []llm.Action // только выполненные
	Err     error
}

// History: результат Run.
type History struct {
	RunID    string
	Steps    []StepRecord
	Duration time.Duration

	exitReason string
}

func (h *History) ExitReason() string {
	return h.exitReason
}

// LastAction: последнее выполненное действие за весь прогон.
func (h *History) LastAction() (llm.Action, bool) {
	for i := len(h.Steps) - 1; i >= 0; i-- {
		if n := len(h.Steps[i].Actions); n > 0 {
			return h.Steps[i].Actions[n-1], true
		}
	}
	return llm.Action{}, false
}

// DoneText возвращает текст финального done. ok=false, если агент
// так и не завершил задачу.
func (h *History) DoneText() (string, bool) {
	last, ok := h.LastAction()
	if !ok || last.Type != llm.ActionDone {
		return "", false
	}
	return last.Text, true
}
