package agent

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nbenliogludev/go-paper-search-agent/internal/llm"
)

const scrollStep = 600

func (a *Agent) executeAction(ctx context.Context, action llm.Action, currentURL string) error {
	switch action.Type {
	case llm.ActionNavigate:
		if strings.TrimSpace(action.URL) == "" {
			return fmt.Errorf("navigate action without url")
		}
		return a.drv.Navigate(ctx, normalizeURL(currentURL, action.URL))

	case llm.ActionClick:
		if action.TargetID <= 0 {
			return fmt.Errorf("click action without target_id")
		}
		return a.drv.Click(ctx, action.TargetID)

	case llm.ActionTypeInput:
		if action.TargetID <= 0 {
			return fmt.Errorf("type action without target_id")
		}
		return a.drv.Type(ctx, action.TargetID, action.Text, action.Submit)

	case llm.ActionScroll:
		return a.drv.Scroll(ctx, scrollStep)

	case llm.ActionBack:
		return a.drv.Back(ctx)

	default:
		return fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// После этих действий id элементов из снапшота уже не валидны.
func changesPage(action llm.Action) bool {
	return action.Type == llm.ActionNavigate || action.Type == llm.ActionBack
}

func normalizeURL(currentURL, target string) string {
	target = strings.TrimSpace(target)
	if target == "" {
		return currentURL
	}

	u, err := url.Parse(target)
	if err == nil && u.IsAbs() {
		return target
	}

	// "pubmed.ncbi.nlm.nih.gov/?term=x" без схемы
	if err == nil && u.Host == "" && !strings.HasPrefix(target, "/") && looksLikeHost(target) {
		return "https://" + target
	}

	base, err := url.Parse(currentURL)
	if err != nil || u == nil || !base.IsAbs() {
		return target
	}

	return base.ResolveReference(u).String()
}

func looksLikeHost(target string) bool {
	host := target
	if i := strings.IndexAny(host, "/?#"); i >= 0 {
		host = host[:i]
	}
	return strings.Contains(host, ".") && !strings.HasPrefix(host, ".")
}
