package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nbenliogludev/go-paper-search-agent/internal/agent"
	"github.com/nbenliogludev/go-paper-search-agent/internal/browser"
	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
	"github.com/nbenliogludev/go-paper-search-agent/internal/logging"
	"github.com/nbenliogludev/go-paper-search-agent/internal/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout).ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paper-search",
		Short: "Find research papers on a topic with a browser-driving LLM agent",
		Long: `paper-search asks an LLM agent to browse academic sources (PubMed,
Google Scholar, arXiv by default) for recent papers on a topic, then prints
the titles and links from the agent's final answer.

Requires GEMINI_API_KEY (or OPENAI_API_KEY with --provider openai).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, out)
		},
	}

	f := cmd.Flags()
	f.String("config", "", "config file (default: ./paper-search.yaml or ~/.config/paper-search/paper-search.yaml)")
	f.String("topic", "", "research topic (default \"sepsis detection\")")
	f.String("provider", "", "llm provider: gemini or openai")
	f.String("model", "", "model name")
	f.String("backend", "", "browser backend: playwright or chromedp")
	f.Bool("headless", false, "run the browser headless")
	f.Int("max-steps", 0, "agent step budget (default 25)")
	f.Bool("debug", false, "debug logging")

	return cmd
}

func run(cmd *cobra.Command, out io.Writer) error {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger, err := logging.NewWithLevel(level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	defer func() { _ = logger.Sync() }()

	p := search.Pipeline{
		Load: func() (*config.Config, error) {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return nil, err
			}
			if cfg.Debug {
				level.SetLevel(zapcore.DebugLevel)
			}
			return cfg, nil
		},
		Open: func(ctx context.Context, cfg *config.Config) (search.Invoker, func(), error) {
			return openAgent(ctx, cfg, logger)
		},
		Out:    out,
		Logger: logger,
	}

	if _, err := p.Run(cmd.Context()); err != nil {
		logger.Error("paper search failed", zap.Error(err))
		return err
	}
	return nil
}

// openAgent поднимает модель и браузер. Модель первой: ошибка ключа/провайдера
// не должна стоить запуска Chromium.
func openAgent(ctx context.Context, cfg *config.Config, logger *zap.Logger) (search.Invoker, func(), error) {
	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", cfg.LLM.Provider, err)
	}

	drv, err := browser.Open(ctx, cfg.Browser)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start %s browser: %w", cfg.Browser.Backend, err)
	}

	opts := agent.OptionsFromConfig(cfg.Agent)
	inv := search.InvokerFunc(func(ctx context.Context, task search.Task) (search.Result, error) {
		opts.MaxActionsPerStep = task.MaxActionsPerStep
		h, err := agent.New(drv, client, opts, logger).Run(ctx, task.Description, task.MaxSteps)
		if h == nil {
			return nil, err
		}
		return h, err
	})

	closeFn := func() {
		if err := drv.Close(); err != nil {
			logger.Warn("browser close failed", zap.Error(err))
		}
	}
	return inv, closeFn, nil
}
