package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const safeDOMLimit = 40000

var errNoActions = errors.New("model returned no actions")

func buildUserMessage(input DecisionInput) string {
	var sb strings.Builder
	sb.WriteString("TASK: " + input.Task + "\n")
	if input.MaxSteps > 0 {
		fmt.Fprintf(&sb, "STEP: %d of %d\n", input.Step, input.MaxSteps)
	}
	if input.MaxActions > 0 {
		fmt.Fprintf(&sb, "MAX_ACTIONS: %d\n", input.MaxActions)
	}
	sb.WriteString("URL: " + input.CurrentURL + "\n")
	if input.PageTitle != "" {
		sb.WriteString("TITLE: " + input.PageTitle + "\n")
	}

	if input.History != "" {
		sb.WriteString("HISTORY:\n" + input.History + "\n")
	}

	dom := input.DOMTree
	if len(dom) > safeDOMLimit {
		dom = dom[:safeDOMLimit] + "\n...[TRUNCATED]"
	}
	sb.WriteString("\nDOM:\n" + dom)

	return sb.String()
}

// rawDecision принимает и "actions": [...], и одиночный "action": {...}.
type rawDecision struct {
	Thought string   `json:"thought"`
	Actions []Action `json:"actions"`
	Action  *Action  `json:"action"`
}

func parseDecision(content string) (*DecisionOutput, error) {
	content = stripCodeFence(content)

	var raw rawDecision
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("json parse error: %w | content: %s", err, content)
	}

	actions := raw.Actions
	if len(actions) == 0 && raw.Action != nil {
		actions = []Action{*raw.Action}
	}
	if len(actions) == 0 {
		return nil, errNoActions
	}

	for i := range actions {
		normalizeActionType(&actions[i])
	}

	return &DecisionOutput{Thought: raw.Thought, Actions: actions}, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.Trim(content, "`")
	content = strings.TrimPrefix(content, "json")
	return strings.TrimSpace(content)
}

func normalizeActionType(a *Action) {
	switch strings.ToLower(strings.TrimSpace(string(a.Type))) {
	case "navigate", "go_to_url", "open_url", "open_tab":
		a.Type = ActionNavigate
	case "click", "click_element":
		a.Type = ActionClick
	case "type", "input_text":
		a.Type = ActionTypeInput
	case "scroll_down", "scroll":
		a.Type = ActionScroll
	case "go_back", "back":
		a.Type = ActionBack
	case "done", "finish":
		a.Type = ActionDone
	default:
		a.Type = ActionScroll
	}
}
