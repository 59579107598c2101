package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vault_store.go -package=mocks libllm/internal/storage VaultStore

import (
	"context"
	"database/sql"
	"errors"
)

// VaultStore is the vault registry used by the vault manager.
type VaultStore interface {
	GetOrCreateByName(ctx context.Context, name, rootPath string) (VaultRecord, error)
	ListAll(ctx context.Context) ([]VaultRecord, error)
}

// VaultRepo provides methods for vault operations.
type VaultRepo struct {
	db *sql.DB
}

// NewVaultRepo creates a new VaultRepo.
func NewVaultRepo(db *sql.DB) *VaultRepo {
	return &VaultRepo{db: db}
}

// GetOrCreateByName gets an existing vault by name, or creates it if it doesn't exist.
// An existing vault whose root moved is updated to rootPath.
func (r *VaultRepo) GetOrCreateByName(ctx context.Context, name, rootPath string) (VaultRecord, error) {
	vault, err := r.getByName(ctx, name)
	if err == nil {
		if vault.RootPath == rootPath {
			return vault, nil
		}
		if _, err := r.db.ExecContext(ctx,
			"UPDATE vaults SET root_path = ? WHERE id = ?",
			rootPath, vault.ID,
		); err != nil {
			return VaultRecord{}, err
		}
		vault.RootPath = rootPath
		return vault, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return VaultRecord{}, err
	}

	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO vaults (name, root_path) VALUES (?, ?)",
		name, rootPath,
	); err != nil {
		return VaultRecord{}, err
	}

	return r.getByName(ctx, name)
}

// ListAll returns all vaults ordered by name.
func (r *VaultRepo) ListAll(ctx context.Context) ([]VaultRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, root_path, created_at FROM vaults ORDER BY name",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vaults []VaultRecord
	for rows.Next() {
		var vault VaultRecord
		if err := rows.Scan(&vault.ID, &vault.Name, &vault.RootPath, &vault.CreatedAt); err != nil {
			return nil, err
		}
		vaults = append(vaults, vault)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return vaults, nil
}

func (r *VaultRepo) getByName(ctx context.Context, name string) (VaultRecord, error) {
	var vault VaultRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, root_path, created_at FROM vaults WHERE name = ?",
		name,
	).Scan(&vault.ID, &vault.Name, &vault.RootPath, &vault.CreatedAt)
	return vault, err
}
