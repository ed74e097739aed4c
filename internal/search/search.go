package search

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
	"github.com/nbenliogludev/go-paper-search-agent/internal/papers"
)

// ErrAgentIncomplete: агент не дошёл до done с текстом ответа.
var ErrAgentIncomplete = errors.New("agent did not finish the task")

// Result: то, что нужно от прогона агента.
type Result interface {
	DoneText() (string, bool)
	ExitReason() string
}

type Invoker interface {
	Invoke(ctx context.Context, task Task) (Result, error)
}

type InvokerFunc func(ctx context.Context, task Task) (Result, error)

func (f InvokerFunc) Invoke(ctx context.Context, task Task) (Result, error) {
	return f(ctx, task)
}

// Run запускает агента, разбирает его финальный ответ и печатает отчёт в out.
// Если агент не завершился done, в out ничего не пишется.
func Run(ctx context.Context, inv Invoker, task Task, out io.Writer) ([]papers.Record, error) {
	res, err := inv.Invoke(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAgentIncomplete, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no result", ErrAgentIncomplete)
	}

	text, ok := res.DoneText()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAgentIncomplete, res.ExitReason())
	}

	records := papers.Extract(text)
	if err := papers.Report(out, records); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return records, nil
}

// Pipeline связывает этапы: конфиг -> агент -> извлечение -> отчёт.
type Pipeline struct {
	Load func() (*config.Config, error)
	// Open поднимает браузер и модель; close освобождает их.
	Open   func(ctx context.Context, cfg *config.Config) (inv Invoker, close func(), err error)
	Out    io.Writer
	Logger *zap.Logger
}

func (p Pipeline) Run(ctx context.Context) ([]papers.Record, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// до Open: без ключа браузер не запускается
	cfg, err := p.Load()
	if err != nil {
		return nil, err
	}

	task := TaskFromConfig(cfg)
	logger.Info("search task",
		zap.String("task", task.Description),
		zap.Int("max_steps", task.MaxSteps),
		zap.Int("max_actions_per_step", task.MaxActionsPerStep),
		zap.String("provider", cfg.LLM.Provider),
		zap.String("backend", cfg.Browser.Backend),
	)

	inv, closeFn, err := p.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open agent: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	records, err := Run(ctx, inv, task, p.Out)
	if err != nil {
		return nil, err
	}
	logger.Info("papers extracted", zap.Int("count", len(records)))
	return records, nil
}
