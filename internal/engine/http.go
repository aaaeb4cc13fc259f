package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// BuildsPath is the builder service endpoint that accepts a Request.
const BuildsPath = "/v1/builds"

// Build statuses reported by the builder service.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// BuildResult is the builder service's reply to a Request.
type BuildResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output string `json:"output,omitempty"`
	Error  string `json:"error,omitempty"`
}

// HTTP forwards builds to a remote builder service.
type HTTP struct {
	baseURL string
	client  *http.Client
}

// NewHTTP returns a client for the builder at baseURL. Builds can take hours
// on large models, so the client has no overall timeout; cancel through ctx.
func NewHTTP(baseURL string) *HTTP {
	return &HTTP{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
	}
}

func (h *HTTP) Build(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+BuildsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	hreq.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(hreq)
	if err != nil {
		return &BuildError{Scheme: req.Scheme, Output: req.Output, Err: fmt.Errorf("builder request failed: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return &BuildError{Scheme: req.Scheme, Output: req.Output, Err: err}
	}

	var result BuildResult
	if jerr := json.Unmarshal(raw, &result); jerr != nil && resp.StatusCode == http.StatusOK {
		return &BuildError{Scheme: req.Scheme, Output: req.Output, Err: fmt.Errorf("decode builder response: %w", jerr)}
	}

	if resp.StatusCode != http.StatusOK || result.Status != StatusSucceeded {
		msg := result.Error
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		return &BuildError{
			Scheme: req.Scheme,
			Output: req.Output,
			Err:    fmt.Errorf("builder error %d: %s", resp.StatusCode, msg),
		}
	}
	return nil
}
