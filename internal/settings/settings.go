// Package settings holds the user's completion settings and the stores that persist them.
package settings

import (
	"context"
	"slices"

	"libllm/internal/llm"
)

// Settings is the user-editable completion configuration.
type Settings struct {
	APIKey         string `json:"api_key"`
	OrganizationID string `json:"organization_id"`
	Model          string `json:"model"`
}

// Defaults is applied to every field missing from a stored record.
var Defaults = Settings{
	APIKey:         "",
	OrganizationID: "",
	Model:          llm.DefaultModel,
}

// Store loads and saves settings.
type Store interface {
	// Load returns the stored settings merged with Defaults.
	Load(ctx context.Context) (Settings, error)
	// Save persists s.
	Save(ctx context.Context, s Settings) error
}

// Credentials returns the backend credentials carried by s.
func (s Settings) Credentials() llm.Credentials {
	return llm.Credentials{
		APIKey:         s.APIKey,
		OrganizationID: s.OrganizationID,
	}
}

// Normalize replaces an unset model, or one missing from a non-empty list of
// known models, with the default model.
func (s Settings) Normalize(known []string) Settings {
	if s.Model == "" {
		s.Model = Defaults.Model
		return s
	}
	if len(known) > 0 && !slices.Contains(known, s.Model) {
		s.Model = Defaults.Model
	}
	return s
}

// Masked returns a copy of s safe for display, with the API key shortened.
func (s Settings) Masked() Settings {
	s.APIKey = MaskKey(s.APIKey)
	return s
}

// MaskKey hides all but the prefix and the last four characters of key.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// record is the persisted form of Settings. Nil fields were never stored and
// resolve to Defaults.
type record struct {
	APIKey         *string `toml:"api_key,omitempty"`
	OrganizationID *string `toml:"organization_id,omitempty"`
	Model          *string `toml:"model,omitempty"`
}

func (r record) resolve() Settings {
	s := Defaults
	if r.APIKey != nil {
		s.APIKey = *r.APIKey
	}
	if r.OrganizationID != nil {
		s.OrganizationID = *r.OrganizationID
	}
	if r.Model != nil && *r.Model != "" {
		s.Model = *r.Model
	}
	return s
}

func newRecord(s Settings) record {
	return record{
		APIKey:         &s.APIKey,
		OrganizationID: &s.OrganizationID,
		Model:          &s.Model,
	}
}
