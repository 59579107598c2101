package llm

// DefaultModel is used when no model is configured or requested.
const DefaultModel = "text-davinci-003"

// MaxTokens caps every completion. It is not configurable.
const MaxTokens = 1024

// Credentials authenticate requests against the completion backend.
type Credentials struct {
	APIKey string

	// OrganizationID selects the billing organization. Empty means the
	// account's default organization.
	OrganizationID string
}

// CompletionParams holds per-call overrides for completion requests.
type CompletionParams struct {
	// Model specifies the model to use. If empty, DefaultModel is used.
	Model string

	// Temperature and TopP are sent only when set; nil leaves the backend default.
	Temperature *float64
	TopP        *float64

	// MaxTokens is ignored; every request is capped at the MaxTokens constant.
	MaxTokens int
}

// CompletionRequest is the wire payload for the completions endpoint.
type CompletionRequest struct {
	Model       string   `json:"model"`
	Prompt      string   `json:"prompt"`
	Temperature *float64 `json:"temperature,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   int      `json:"max_tokens"`
}

// CompletionChoice represents a single choice in the completion response.
type CompletionChoice struct {
	Index        int     `json:"index"`
	Text         *string `json:"text"`
	FinishReason string  `json:"finish_reason"`
}

// CompletionResponse represents the response from the completions endpoint.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Model   string             `json:"model"`
	Choices []CompletionChoice `json:"choices"`
}

// Model is a single entry of the model listing.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// ModelsResponse represents the response from the models endpoint.
type ModelsResponse struct {
	Data []Model `json:"data"`
}
