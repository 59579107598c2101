package storage

import (
	"context"
	"testing"
)

func TestSettingsRepo_ValuesEmpty(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))

	values, err := repo.Values(context.Background())
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	if len(values) != 0 {
		t.Errorf("Values() = %v, want empty", values)
	}
}

func TestSettingsRepo_SetValues(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx := context.Background()

	if err := repo.SetValues(ctx, map[string]string{"api_key": "sk-1", "model": "davinci-002"}); err != nil {
		t.Fatalf("SetValues() error = %v", err)
	}
	if err := repo.SetValues(ctx, map[string]string{"model": "babbage-002", "organization_id": ""}); err != nil {
		t.Fatalf("SetValues() second call error = %v", err)
	}

	values, err := repo.Values(ctx)
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}

	want := map[string]string{"api_key": "sk-1", "model": "babbage-002", "organization_id": ""}
	if len(values) != len(want) {
		t.Fatalf("Values() = %v, want %v", values, want)
	}
	for k, v := range want {
		got, ok := values[k]
		if !ok || got != v {
			t.Errorf("Values()[%s] = %q (present %v), want %q", k, got, ok, v)
		}
	}
}

func TestSettingsRepo_CancelledContext(t *testing.T) {
	repo := NewSettingsRepo(newTestDB(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := repo.SetValues(ctx, map[string]string{"api_key": "sk-1"}); err == nil {
		t.Error("SetValues() with cancelled context expected error")
	}
}
