package llm

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

// RequestTimeout bounds every backend round trip.
const RequestTimeout = 30 * time.Second

// Client is a client for an OpenAI-compatible text completions API.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient creates a new completion client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  newHTTPClient(),
	}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: RequestTimeout}
}

func (c *Client) endpoint(path string) string {
	if strings.HasSuffix(c.BaseURL, "/v1") {
		return c.BaseURL + path
	}
	return c.BaseURL + "/v1" + path
}

// Complete sends a single completion request and returns the trimmed text of
// the first choice.
func (c *Client) Complete(ctx context.Context, creds Credentials, prompt string, params CompletionParams) (string, error) {
	model := params.Model
	if model == "" {
		model = DefaultModel
	}

	payload := CompletionRequest{
		Model:       model,
		Prompt:      prompt,
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/completions"), bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, creds)
	req.Header.Set("Content-Type", "application/json")

	var completionResp CompletionResponse
	if err := c.do(req, &completionResp); err != nil {
		return "", err
	}

	if len(completionResp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := completionResp.Choices[0].Text
	if text == nil || *text == "" {
		return "", ErrEmptyCompletion
	}

	return strings.TrimSpace(*text), nil
}

// ListModels returns the identifiers of the models available to creds, in
// backend order.
func (c *Client) ListModels(ctx context.Context, creds Credentials) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/models"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req, creds)

	var modelsResp ModelsResponse
	if err := c.do(req, &modelsResp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(modelsResp.Data))
	for _, m := range modelsResp.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return unavailable("failed to send request", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return unavailable("failed to decode response", err)
	}
	return nil
}

// setHeaders sets authentication headers and suppresses the client's
// User-Agent so requests do not identify the software sending them.
func setHeaders(req *http.Request, creds Credentials) {
	req.Header.Set("User-Agent", "")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", creds.APIKey))
	if creds.OrganizationID != "" {
		req.Header.Set("OpenAI-Organization", creds.OrganizationID)
	}
}
