package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func newTestGeminiClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "gm-test",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL},
	})
	require.NoError(t, err)
	return &GeminiClient{client: c, model: "gemini-2.0-flash-exp"}
}

func writeCandidate(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{
				"role":  "model",
				"parts": []any{map[string]any{"text": text}},
			}},
		},
	}))
}

func writeGeminiError(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": code, "message": "quota", "status": status},
	})
}

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text       string `json:"text"`
			InlineData *struct {
				MIMEType string `json:"mimeType"`
				Data     string `json:"data"`
			} `json:"inlineData"`
		} `json:"parts"`
	} `json:"contents"`
	SystemInstruction *struct {
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"systemInstruction"`
	GenerationConfig struct {
		ResponseMIMEType string `json:"responseMimeType"`
		MaxOutputTokens  int    `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

func TestGeminiClientDecideAction(t *testing.T) {
	var (
		got    geminiRequest
		path   string
		apiKey string
	)
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		apiKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCandidate(t, w, `{"thought":"search","actions":[{"type":"type","target_id":3,"text":"sepsis","submit":true}]}`)
	})

	out, err := client.DecideAction(context.Background(), DecisionInput{
		Task:           "find papers",
		CurrentURL:     "https://pubmed.ncbi.nlm.nih.gov",
		Screenshot:     []byte{0xff, 0xd8},
		ScreenshotMIME: "image/jpeg",
	})
	require.NoError(t, err)
	assert.Equal(t, "search", out.Thought)
	require.Len(t, out.Actions, 1)
	assert.Equal(t, ActionTypeInput, out.Actions[0].Type)
	assert.Equal(t, 3, out.Actions[0].TargetID)

	assert.True(t, strings.HasSuffix(path, "models/gemini-2.0-flash-exp:generateContent"), path)
	assert.Equal(t, "gm-test", apiKey)
	assert.Equal(t, "application/json", got.GenerationConfig.ResponseMIMEType)
	assert.Equal(t, 2048, got.GenerationConfig.MaxOutputTokens)
	require.NotNil(t, got.SystemInstruction)
	require.Len(t, got.SystemInstruction.Parts, 1)
	assert.Equal(t, systemPrompt, got.SystemInstruction.Parts[0].Text)

	require.Len(t, got.Contents, 1)
	assert.Equal(t, "user", got.Contents[0].Role)
	require.Len(t, got.Contents[0].Parts, 2)
	assert.Contains(t, got.Contents[0].Parts[0].Text, "find papers")
	require.NotNil(t, got.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", got.Contents[0].Parts[1].InlineData.MIMEType)
	assert.Equal(t, "/9g=", got.Contents[0].Parts[1].InlineData.Data)
}

func TestGeminiClientWithoutScreenshot(t *testing.T) {
	var got geminiRequest
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCandidate(t, w, `{"actions":[{"type":"scroll_down"}]}`)
	})

	_, err := client.DecideAction(context.Background(), DecisionInput{Task: "t"})
	require.NoError(t, err)
	require.Len(t, got.Contents, 1)
	assert.Len(t, got.Contents[0].Parts, 1)
}

func TestGeminiClientNoCandidates(t *testing.T) {
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.DecideAction(context.Background(), DecisionInput{Task: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response candidates")
}

func TestGeminiClientRetriesRateLimit(t *testing.T) {
	fastRetries(t)

	var calls atomic.Int32
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeGeminiError(w, http.StatusTooManyRequests, "RESOURCE_EXHAUSTED")
			return
		}
		writeCandidate(t, w, `{"actions":[{"type":"go_back"}]}`)
	})

	out, err := client.DecideAction(context.Background(), DecisionInput{Task: "t"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, ActionBack, out.Actions[0].Type)
}

func TestGeminiClientDoesNotRetryOtherErrors(t *testing.T) {
	fastRetries(t)

	var calls atomic.Int32
	client := newTestGeminiClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeGeminiError(w, http.StatusBadRequest, "INVALID_ARGUMENT")
	})

	_, err := client.DecideAction(context.Background(), DecisionInput{Task: "t"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var apiErr genai.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
}
