package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *DecisionOutput
		errMsg  string
	}{
		{
			name:    "actions list",
			content: `{"thought":"search pubmed","actions":[{"type":"navigate","url":"https://pubmed.ncbi.nlm.nih.gov"},{"type":"type","target_id":3,"text":"sepsis","submit":true}]}`,
			want: &DecisionOutput{
				Thought: "search pubmed",
				Actions: []Action{
					{Type: ActionNavigate, URL: "https://pubmed.ncbi.nlm.nih.gov"},
					{Type: ActionTypeInput, TargetID: 3, Text: "sepsis", Submit: true},
				},
			},
		},
		{
			name:    "single action object",
			content: `{"thought":"open","action":{"type":"click","target_id":12}}`,
			want: &DecisionOutput{
				Thought: "open",
				Actions: []Action{{Type: ActionClick, TargetID: 12}},
			},
		},
		{
			name:    "code fence and synonyms",
			content: "```json\n{\"thought\":\"finish\",\"actions\":[{\"type\":\"Finish\",\"text\":\"*   **A**: [x](https://a)\",\"success\":true}]}\n```",
			want: &DecisionOutput{
				Thought: "finish",
				Actions: []Action{{Type: ActionDone, Text: "*   **A**: [x](https://a)", Success: true}},
			},
		},
		{
			name:    "unknown type falls back to scroll",
			content: `{"actions":[{"type":"hover","target_id":4}]}`,
			want: &DecisionOutput{
				Actions: []Action{{Type: ActionScroll, TargetID: 4}},
			},
		},
		{
			name:    "no actions",
			content: `{"thought":"hmm","actions":[]}`,
			errMsg:  "no actions",
		},
		{
			name:    "not json",
			content: "I will click the search button",
			errMsg:  "json parse error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecision(tt.content)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeActionType(t *testing.T) {
	cases := map[string]ActionType{
		"go_to_url":     ActionNavigate,
		"click_element": ActionClick,
		"input_text":    ActionTypeInput,
		" SCROLL ":      ActionScroll,
		"back":          ActionBack,
		"done":          ActionDone,
		"":              ActionScroll,
	}
	for in, want := range cases {
		a := Action{Type: ActionType(in)}
		normalizeActionType(&a)
		assert.Equal(t, want, a.Type, "input %q", in)
	}
}

func TestBuildUserMessage(t *testing.T) {
	msg := buildUserMessage(DecisionInput{
		Task:       "find papers",
		CurrentURL: "https://arxiv.org",
		PageTitle:  "arXiv.org e-Print archive",
		History:    "step=1 url=about:blank action=navigate target=0 text=\"\"",
		DOMTree:    strings.Repeat("x", safeDOMLimit+10),
		Step:       2,
		MaxSteps:   25,
		MaxActions: 4,
	})

	assert.Contains(t, msg, "TASK: find papers\n")
	assert.Contains(t, msg, "STEP: 2 of 25\n")
	assert.Contains(t, msg, "MAX_ACTIONS: 4\n")
	assert.Contains(t, msg, "TITLE: arXiv.org e-Print archive\n")
	assert.Contains(t, msg, "HISTORY:\nstep=1")
	assert.True(t, strings.HasSuffix(msg, "...[TRUNCATED]"))
}
