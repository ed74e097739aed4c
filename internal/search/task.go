package search

import (
	"fmt"
	"strings"

	"github.com/nbenliogludev/go-paper-search-agent/internal/config"
)

// Task: цель для агента и его бюджет.
type Task struct {
	Description       string
	MaxSteps          int
	MaxActionsPerStep int
}

// BuildTask формулирует задачу поиска статей по теме в перечисленных источниках.
func BuildTask(topic string, sources []string) string {
	where := "reputable sources"
	if list := joinSources(sources); list != "" {
		where += " like " + list
	}
	return fmt.Sprintf(
		"Search for recent research papers on %s from %s. Provide titles and links to the most relevant papers.",
		strings.TrimSpace(topic), where,
	)
}

// "A", "A or B", "A, B, or C"
func joinSources(sources []string) string {
	clean := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			clean = append(clean, s)
		}
	}

	switch len(clean) {
	case 0:
		return ""
	case 1:
		return clean[0]
	case 2:
		return clean[0] + " or " + clean[1]
	default:
		return strings.Join(clean[:len(clean)-1], ", ") + ", or " + clean[len(clean)-1]
	}
}

func TaskFromConfig(cfg *config.Config) Task {
	return Task{
		Description:       BuildTask(cfg.Search.Topic, cfg.Search.Sources),
		MaxSteps:          cfg.Agent.MaxSteps,
		MaxActionsPerStep: cfg.Agent.MaxActionsPerStep,
	}
}
