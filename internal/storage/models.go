package storage

import "time"

// VaultRecord is a registered vault: a named directory of markdown notes.
type VaultRecord struct {
	ID        int
	Name      string
	RootPath  string
	CreatedAt time.Time
}
