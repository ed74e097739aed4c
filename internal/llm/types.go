package llm

import "context"

type ActionType string

const (
	ActionNavigate  ActionType = "navigate"
	ActionClick     ActionType = "click"
	ActionTypeInput ActionType = "type"
	ActionScroll    ActionType = "scroll_down"
	ActionBack      ActionType = "go_back"
	ActionDone      ActionType = "done"
)

type Action struct {
	Type     ActionType `json:"type"`
	TargetID int        `json:"target_id,omitempty"`
	Text     string     `json:"text,omitempty"`
	URL      string     `json:"url,omitempty"`
	Submit   bool       `json:"submit,omitempty"`
	Success  bool       `json:"success,omitempty"` // только для done
}

type DecisionInput struct {
	Task       string
	DOMTree    string
	CurrentURL string
	PageTitle  string
	History    string // short description of previous steps

	Screenshot     []byte
	ScreenshotMIME string

	Step       int
	MaxSteps   int
	MaxActions int
}

type DecisionOutput struct {
	Thought string   `json:"thought"`
	Actions []Action `json:"actions"`
}

type Client interface {
	DecideAction(ctx context.Context, input DecisionInput) (*DecisionOutput, error)
}
