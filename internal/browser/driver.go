package browser

import (
	"context"
	"fmt"

	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
)

// Атрибут, которым snapshot помечает интерактивные элементы.
const idAttr = "data-agent-id"

type PageSnapshot struct {
	URL            string
	Title          string
	Tree           string
	Screenshot     []byte
	ScreenshotMIME string
}

// Driver: то, что агенту нужно от браузера. Элементы адресуются
// числовыми id из последнего Snapshot.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*PageSnapshot, error)
	Click(ctx context.Context, id int) error
	Type(ctx context.Context, id int, text string, submit bool) error
	Scroll(ctx context.Context, pixels int) error
	Back(ctx context.Context) error
	URL() string
	Close() error
}

func Open(ctx context.Context, cfg config.BrowserConfig) (Driver, error) {
	var (
		drv Driver
		err error
	)

	switch cfg.Backend {
	case config.BackendPlaywright:
		drv, err = NewManager(cfg)
	case config.BackendChromedp:
		drv, err = NewChromeSession(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported browser backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.StartURL != "" {
		if err := drv.Navigate(ctx, cfg.StartURL); err != nil {
			_ = drv.Close()
			return nil, fmt.Errorf("could not navigate to %s: %w", cfg.StartURL, err)
		}
	}

	return drv, nil
}

func selectorFor(id int) string {
	return fmt.Sprintf("[%s='%d']", idAttr, id)
}
