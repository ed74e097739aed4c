package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
)

const (
	viewportWidth  = 1280
	viewportHeight = 900
	actionTimeout  = 30 * time.Second
)

// ChromeSession: chromedp-backend, работает с Chrome напрямую через CDP.
type ChromeSession struct {
	Ctx         context.Context
	cancelAlloc context.CancelFunc
	cancelCtx   context.CancelFunc
}

func NewChromeSession(ctx context.Context, cfg config.BrowserConfig) (*ChromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(viewportWidth, viewportHeight),
	)
	if cfg.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(cfg.UserDataDir))
	}

	// Сессия живёт дольше ctx запуска: закрывается только через Close.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	browserCtx, cancelCtx := chromedp.NewContext(allocCtx)

	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return emulation.SetDeviceMetricsOverride(viewportWidth, viewportHeight, 1, false).Do(ctx)
	}))
	if err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome failed: %w", err)
	}

	return &ChromeSession{
		Ctx:         browserCtx,
		cancelAlloc: cancelAlloc,
		cancelCtx:   cancelCtx,
	}, nil
}

// run выполняет действия в контексте вкладки, но с отменой от ctx вызова.
func (s *ChromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.Ctx, actionTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *ChromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (s *ChromeSession) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	var (
		tree  string
		url   string
		title string
		shot  []byte
	)

	err := s.run(ctx,
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate("("+snapshotScript+")()", &tree),
		chromedp.Location(&url),
		chromedp.Title(&title),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatJpeg).
				WithQuality(70).
				Do(ctx)
			if err != nil {
				// без скриншота шаг всё равно возможен
				return nil
			}
			shot = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot failed: %w", err)
	}

	snap := &PageSnapshot{
		URL:   url,
		Title: title,
		Tree:  truncateTree(tree),
	}
	if len(shot) > 0 {
		snap.Screenshot = shot
		snap.ScreenshotMIME = "image/jpeg"
	}
	return snap, nil
}

func (s *ChromeSession) Click(ctx context.Context, id int) error {
	sel := selectorFor(id)
	return s.run(ctx,
		chromedp.ScrollIntoView(sel, chromedp.ByQuery),
		chromedp.Click(sel, chromedp.ByQuery),
	)
}

func (s *ChromeSession) Type(ctx context.Context, id int, text string, submit bool) error {
	sel := selectorFor(id)
	actions := []chromedp.Action{
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, text, chromedp.ByQuery),
	}
	if submit {
		actions = append(actions, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
	}
	return s.run(ctx, actions...)
}

func (s *ChromeSession) Scroll(ctx context.Context, pixels int) error {
	return s.run(ctx,
		chromedp.Evaluate(fmt.Sprintf(`window.scrollBy(0, %d);`, pixels), nil),
	)
}

func (s *ChromeSession) Back(ctx context.Context) error {
	return s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		cur, entries, err := page.GetNavigationHistory().Do(ctx)
		if err != nil {
			return err
		}
		if cur <= 0 || int(cur) >= len(entries) {
			return fmt.Errorf("no previous page in history")
		}
		return page.NavigateToHistoryEntry(entries[cur-1].ID).Do(ctx)
	}))
}

func (s *ChromeSession) URL() string {
	var url string
	ctx, cancel := context.WithTimeout(s.Ctx, 5*time.Second)
	defer cancel()
	if err := chromedp.Run(ctx, chromedp.Location(&url)); err != nil {
		return ""
	}
	return url
}

func (s *ChromeSession) Close() error {
	if s.cancelCtx != nil {
		s.cancelCtx()
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
	}
	return nil
}
