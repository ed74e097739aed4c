package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nbenliogludev/go-paper-search-agent/internal/browser"
	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

type Options struct {
	MaxActionsPerStep int
	MaxFailures       int           // подряд идущих неудачных шагов
	StepDelay         time.Duration // пауза между шагами, даём странице догрузиться
}

func OptionsFromConfig(cfg config.AgentConfig) Options {
	return Options{
		MaxActionsPerStep: cfg.MaxActionsPerStep,
		MaxFailures:       cfg.MaxFailures,
		StepDelay:         cfg.StepDelay,
	}
}

type Agent struct {
	drv    browser.Driver
	llm    llm.Client
	opts   Options
	logger *zap.Logger
}

func New(drv browser.Driver, c llm.Client, opts Options, logger *zap.Logger) *Agent {
	if opts.MaxActionsPerStep <= 0 {
		opts.MaxActionsPerStep = 4
	}
	if opts.MaxFailures <= 0 {
		opts.MaxFailures = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{drv: drv, llm: c, opts: opts, logger: logger}
}

// run: состояние одного прогона.
type run struct {
	task     string
	maxSteps int
	mem      *StepMemory
	rep      *Reporter
	prevTree string
}

// Run крутит цикл snapshot -> решение модели -> действия, пока модель не
// вернёт done или не кончится бюджет шагов. Ошибки отдельных шагов считаются
// неудачами; Run возвращает error только при отмене ctx.
func (a *Agent) Run(ctx context.Context, task string, maxSteps int) (*History, error) {
	start := time.Now()
	h := &History{RunID: uuid.NewString()}
	logger := a.logger.With(zap.String("run_id", h.RunID))

	r := &run{
		task:     task,
		maxSteps: maxSteps,
		mem:      NewStepMemory(10, 3),
		rep:      NewReporter(logger, task),
	}

	finish := func(reason string) {
		h.exitReason = reason
		h.Duration = time.Since(start)
		r.rep.Finished(start, reason, r.mem)
	}

	logger.Info("agent started", zap.Int("max_steps", maxSteps), zap.String("task", task))

	failures := 0
	for step := 1; step <= maxSteps; step++ {
		if err := ctx.Err(); err != nil {
			finish(ReasonInterrupted)
			return h, err
		}

		rec, done, err := a.step(ctx, r, step)
		rec.Err = err
		h.Steps = append(h.Steps, rec)

		if ctxErr := ctx.Err(); ctxErr != nil {
			finish(ReasonInterrupted)
			return h, ctxErr
		}

		if done {
			finish(ReasonFinished)
			return h, nil
		}

		if err != nil {
			failures++
			r.rep.StepError(step, failures, err)
			if failures >= a.opts.MaxFailures {
				finish(ReasonTooManyFails)
				return h, nil
			}
		} else {
			failures = 0
		}

		if step < maxSteps && a.opts.StepDelay > 0 {
			select {
			case <-ctx.Done():
				finish(ReasonInterrupted)
				return h, ctx.Err()
			case <-time.After(a.opts.StepDelay):
			}
		}
	}

	finish(ReasonMaxSteps)
	return h, nil
}

func (a *Agent) step(ctx context.Context, r *run, step int) (StepRecord, bool, error) {
	rec := StepRecord{Step: step}

	snap, err := a.drv.Snapshot(ctx)
	if err != nil {
		return rec, false, fmt.Errorf("snapshot failed: %w", err)
	}
	rec.URL = snap.URL
	r.rep.StepStarted(step, r.maxSteps, snap.URL, snap.Title)

	if r.prevTree != "" && snap.Tree == r.prevTree {
		r.mem.AddSystemNote("SYSTEM ALERT: Last action had NO VISIBLE EFFECT.")
	}
	r.prevTree = snap.Tree

	decision, err := a.llm.DecideAction(ctx, llm.DecisionInput{
		Task:           r.task,
		DOMTree:        snap.Tree,
		CurrentURL:     snap.URL,
		PageTitle:      snap.Title,
		History:        r.mem.HistoryString(),
		Screenshot:     snap.Screenshot,
		ScreenshotMIME: snap.ScreenshotMIME,
		Step:           step,
		MaxSteps:       r.maxSteps,
		MaxActions:     a.opts.MaxActionsPerStep,
	})
	if err != nil {
		return rec, false, fmt.Errorf("llm error: %w", err)
	}
	rec.Thought = decision.Thought
	r.rep.LogDecision(step, snap.URL, decision)

	actions := decision.Actions
	if len(actions) > a.opts.MaxActionsPerStep {
		actions = actions[:a.opts.MaxActionsPerStep]
	}

	for _, action := range actions {
		if action.Type == llm.ActionDone {
			rec.Actions = append(rec.Actions, action)
			r.mem.Add(step, snap.URL, action)
			return rec, true, nil
		}

		if blocked, reason := r.mem.ShouldBlock(snap.URL, action); blocked {
			r.rep.LoopBlocked(step, action, reason)
			r.mem.AddSystemNote(reason)
			r.mem.MarkLoopTriggered()
			break
		}

		if err := a.executeAction(ctx, action, snap.URL); err != nil {
			r.mem.AddSystemNote(fmt.Sprintf("SYSTEM ERROR: %s failed: %v", action.Type, err))
			return rec, false, fmt.Errorf("action %s failed: %w", action.Type, err)
		}
		rec.Actions = append(rec.Actions, action)
		r.mem.Add(step, snap.URL, action)
		r.rep.ActionExecuted(step, action)

		if changesPage(action) || a.drv.URL() != snap.URL {
			break
		}
	}

	return rec, false, nil
}
