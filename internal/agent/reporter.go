package agent

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

// Reporter пишет ход прогона в лог и собирает сырую трассу шагов
// для итогового отчёта.
type Reporter struct {
	logger *zap.Logger
	task   string
	trace  []string
}

func NewReporter(logger *zap.Logger, task string) *Reporter {
	return &Reporter{logger: logger, task: task}
}

func (r *Reporter) StepStarted(step, maxSteps int, url, title string) {
	r.logger.Info("step",
		zap.Int("step", step),
		zap.Int("max_steps", maxSteps),
		zap.String("url", url),
		zap.String("title", title),
	)
}

func (r *Reporter) LogDecision(step int, url string, d *llm.DecisionOutput) {
	kinds := make([]string, 0, len(d.Actions))
	for _, a := range d.Actions {
		kinds = append(kinds, fmt.Sprintf("%s[%d]", a.Type, a.TargetID))
	}

	r.logger.Info("decision",
		zap.Int("step", step),
		zap.String("thought", d.Thought),
		zap.Strings("actions", kinds),
	)

	r.trace = append(r.trace, fmt.Sprintf(
		"STEP %d | URL=%s | ACTIONS=%s | THOUGHT=%s",
		step, url, strings.Join(kinds, ","), d.Thought,
	))
}

func (r *Reporter) ActionExecuted(step int, action llm.Action) {
	r.logger.Debug("action executed",
		zap.Int("step", step),
		zap.String("type", string(action.Type)),
		zap.Int("target_id", action.TargetID),
		zap.String("text", action.Text),
		zap.String("url", action.URL),
	)
}

func (r *Reporter) LoopBlocked(step int, action llm.Action, reason string) {
	r.logger.Warn("loop guard: action suppressed",
		zap.Int("step", step),
		zap.String("type", string(action.Type)),
		zap.Int("target_id", action.TargetID),
		zap.String("reason", reason),
	)
}

func (r *Reporter) StepError(step, failures int, err error) {
	r.logger.Warn("step failed",
		zap.Int("step", step),
		zap.Int("consecutive_failures", failures),
		zap.Error(err),
	)
	r.trace = append(r.trace, fmt.Sprintf("STEP %d | ERROR=%v", step, err))
}

func (r *Reporter) Finished(start time.Time, reason string, mem *StepMemory) {
	duration := time.Since(start).Truncate(time.Millisecond)

	r.logger.Info("execution report",
		zap.String("task", r.task),
		zap.Duration("duration", duration),
		zap.String("exit_reason", humanizeReason(reason)),
		zap.Bool("loop_guard_triggered", mem.LoopTriggered()),
	)
	for _, line := range r.trace {
		r.logger.Debug("trace", zap.String("line", line))
	}
	for _, line := range mem.FullHistory() {
		r.logger.Debug("memory", zap.String("line", line))
	}
}
