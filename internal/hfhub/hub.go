// Package hfhub talks to the Hugging Face Hub and Inference API.
package hfhub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"docqa/internal/domain"
)

const DefaultHubURL = "https://huggingface.co"

// StatusError is a non-2xx response from the Hub or Inference API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("huggingface: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("huggingface: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Retryable reports model loading, rate limits and server errors.
func Retryable(err error) bool {
	se, ok := err.(*StatusError)
	if !ok {
		return true
	}
	return se.StatusCode == http.StatusTooManyRequests || se.StatusCode >= 500
}

// CheckModel confirms that the token can access model on the Hub.
// Gated, private and unknown models yield a ModelUnavailableError.
func CheckModel(ctx context.Context, client *http.Client, hubURL, model, token string) error {
	if hubURL == "" {
		hubURL = DefaultHubURL
	}
	url := strings.TrimRight(hubURL, "/") + "/api/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &domain.ModelUnavailableError{Model: model, Err: err}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return &domain.ModelUnavailableError{Model: model, Err: err}
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &domain.ModelUnavailableError{Model: model, Err: fmt.Errorf("access denied (gated or private model, check the access token): %w", readStatus(resp))}
	case resp.StatusCode == http.StatusNotFound:
		return &domain.ModelUnavailableError{Model: model, Err: fmt.Errorf("model not found: %w", readStatus(resp))}
	case resp.StatusCode >= 300:
		return &domain.ModelUnavailableError{Model: model, Err: readStatus(resp)}
	}
	return nil
}

// PostJSON sends payload to url and decodes a 2xx JSON response into out.
func PostJSON(ctx context.Context, client *http.Client, url, token string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return readStatus(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readStatus(resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}
