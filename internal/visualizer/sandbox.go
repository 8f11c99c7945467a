package visualizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ArtifactKind is the type of one execution result.
type ArtifactKind string

const (
	ArtifactImage  ArtifactKind = "png"
	ArtifactFigure ArtifactKind = "figure"
	ArtifactTable  ArtifactKind = "table"
	ArtifactText   ArtifactKind = "text"
)

// Artifact is one result produced by sandboxed code. PNG carries decoded
// image bytes; Data carries figure or table payloads as returned.
type Artifact struct {
	Kind ArtifactKind    `json:"type"`
	PNG  []byte          `json:"png,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
	Text string          `json:"text,omitempty"`
}

// Execution is the outcome of running code in the sandbox. Error is set when
// the code itself failed; transport failures are returned as errors instead.
type Execution struct {
	Results []Artifact `json:"results"`
	Stdout  string     `json:"stdout,omitempty"`
	Stderr  string     `json:"stderr,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Sandbox runs code remotely.
type Sandbox interface {
	WriteFile(ctx context.Context, path string, data []byte) error
	RunCode(ctx context.Context, code string) (Execution, error)
}

// HTTPSandbox talks to a code interpreter over a JSON API.
type HTTPSandbox struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSandbox creates a sandbox client for endpoint.
func NewHTTPSandbox(endpoint, apiKey string, timeout time.Duration) *HTTPSandbox {
	return &HTTPSandbox{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type writeFileRequest struct {
	Path    string `json:"path"`
	Content []byte `json:"content"`
}

type runCodeRequest struct {
	Code string `json:"code"`
}

// WriteFile uploads data to path inside the sandbox.
func (s *HTTPSandbox) WriteFile(ctx context.Context, path string, data []byte) error {
	return s.post(ctx, "/files", writeFileRequest{Path: path, Content: data}, nil)
}

// RunCode executes code and returns its results.
func (s *HTTPSandbox) RunCode(ctx context.Context, code string) (Execution, error) {
	var exec Execution
	if err := s.post(ctx, "/execute", runCodeRequest{Code: code}, &exec); err != nil {
		return Execution{}, err
	}
	return exec, nil
}

func (s *HTTPSandbox) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("X-API-Key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
