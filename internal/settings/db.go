package settings

import (
	"context"
	"fmt"
)

const (
	keyAPIKey         = "api_key"
	keyOrganizationID = "organization_id"
	keyModel          = "model"
)

// KeyValueStore is the persistence a DBStore needs. storage.SettingsRepo implements it.
type KeyValueStore interface {
	Values(ctx context.Context) (map[string]string, error)
	SetValues(ctx context.Context, values map[string]string) error
}

// DBStore persists settings as rows of a key/value table.
type DBStore struct {
	kv KeyValueStore
}

// NewDBStore creates a store over kv.
func NewDBStore(kv KeyValueStore) *DBStore {
	return &DBStore{kv: kv}
}

// Load reads the stored values and merges them with Defaults.
func (s *DBStore) Load(ctx context.Context) (Settings, error) {
	values, err := s.kv.Values(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	var r record
	if v, ok := values[keyAPIKey]; ok {
		r.APIKey = &v
	}
	if v, ok := values[keyOrganizationID]; ok {
		r.OrganizationID = &v
	}
	if v, ok := values[keyModel]; ok {
		r.Model = &v
	}
	return r.resolve(), nil
}

// Save stores every field of settings.
func (s *DBStore) Save(ctx context.Context, settings Settings) error {
	err := s.kv.SetValues(ctx, map[string]string{
		keyAPIKey:         settings.APIKey,
		keyOrganizationID: settings.OrganizationID,
		keyModel:          settings.Model,
	})
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
