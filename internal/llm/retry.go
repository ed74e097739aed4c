package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// retryBaseDelay: 3s, 6s, 12s, 24s. Tests override it.
var retryBaseDelay = 3 * time.Second

const maxAttempts = 5

// withRetry повторяет вызов модели только при 429.
func withRetry(ctx context.Context, call func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = call(); err == nil {
			return nil
		}
		if !isRateLimited(err) {
			return err
		}
		if attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBaseDelay * time.Duration(1<<attempt)):
		}
	}
	return fmt.Errorf("rate limited after %d attempts: %w", maxAttempts, err)
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	// genai возвращает APIError по значению
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return gErr.Code == http.StatusTooManyRequests
	}
	return false
}
