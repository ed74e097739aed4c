package browser

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"

	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
)

const (
	LoadStateLoad             = "load"
	LoadStateDomcontentloaded = "domcontentloaded"
	LoadStateNetworkidle      = "networkidle"
)

// Manager: playwright-backend.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page
}

func NewManager(cfg config.BrowserConfig) (*Manager, error) {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return nil, fmt.Errorf("install pw failed: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start pw failed: %w", err)
	}

	args := []string{"--disable-blink-features=AutomationControlled"}
	viewport := &playwright.Size{Width: 1280, Height: 900}

	m := &Manager{pw: pw}

	// С user-data-dir: persistent context (куки Scholar/PubMed переживают запуск),
	// иначе обычный одноразовый профиль.
	if cfg.UserDataDir != "" {
		m.Context, err = pw.Chromium.LaunchPersistentContext(cfg.UserDataDir, playwright.BrowserTypeLaunchPersistentContextOptions{
			Headless: playwright.Bool(cfg.Headless),
			Viewport: viewport,
			Args:     args,
		})
	} else {
		m.browser, err = pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
			Headless: playwright.Bool(cfg.Headless),
			Args:     args,
		})
		if err == nil {
			m.Context, err = m.browser.NewContext(playwright.BrowserNewContextOptions{Viewport: viewport})
		}
	}
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("launch chromium failed: %w", err)
	}

	if pages := m.Context.Pages(); len(pages) > 0 {
		m.Page = pages[0]
	} else {
		m.Page, err = m.Context.NewPage()
		if err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("failed to create page: %w", err)
		}
	}

	m.Page.SetDefaultTimeout(30000)
	m.Page.SetDefaultNavigationTimeout(60000)

	return m, nil
}

func (m *Manager) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.Page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (m *Manager) Snapshot(ctx context.Context) (*PageSnapshot, error) {
	if m == nil || m.Page == nil {
		return nil, fmt.Errorf("page is not initialized")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// networkidle на тяжёлых страницах может не наступить: это не ошибка
	state := playwright.LoadState(LoadStateNetworkidle)
	_ = m.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   &state,
		Timeout: playwright.Float(5000),
	})

	result, err := m.Page.Evaluate(snapshotScript)
	if err != nil {
		return nil, fmt.Errorf("js evaluation failed: %w", err)
	}

	tree, ok := result.(string)
	if !ok {
		return nil, fmt.Errorf("expected string from js, got %T", result)
	}

	title, _ := m.Page.Title()

	snap := &PageSnapshot{
		URL:   m.Page.URL(),
		Title: title,
		Tree:  truncateTree(tree),
	}

	if buf, err := m.Page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(false),
		Type:     playwright.ScreenshotTypeJpeg,
		Quality:  playwright.Int(70),
	}); err == nil {
		snap.Screenshot = buf
		snap.ScreenshotMIME = "image/jpeg"
	}

	return snap, nil
}

func (m *Manager) Click(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := m.Page.Locator(selectorFor(id)).First()
	if err := loc.ScrollIntoViewIfNeeded(); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return loc.Click()
}

func (m *Manager) Type(ctx context.Context, id int, text string, submit bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	loc := m.Page.Locator(selectorFor(id)).First()
	if err := loc.Fill(text); err != nil {
		return err
	}
	if submit {
		return loc.Press("Enter")
	}
	return nil
}

func (m *Manager) Scroll(ctx context.Context, pixels int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.Page.Evaluate(`(dy) => window.scrollBy(0, dy)`, pixels)
	return err
}

func (m *Manager) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.Page.GoBack()
	return err
}

func (m *Manager) URL() string {
	if m.Page == nil {
		return ""
	}
	return m.Page.URL()
}

func (m *Manager) Close() error {
	if m.Context != nil {
		_ = m.Context.Close()
	}
	if m.browser != nil {
		_ = m.browser.Close()
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}
