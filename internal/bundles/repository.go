// Package bundles stores serialized share bundles behind hashed tokens.
package bundles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/Leigh-Chr/calendraft-sub003/internal/crypto"
	"github.com/Leigh-Chr/calendraft-sub003/internal/database"
	"github.com/Leigh-Chr/calendraft-sub003/internal/util"
)

// Repository handles bundle storage and retrieval.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new bundle repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a serialized bundle and returns the record plus the
// share token. The token is only ever returned here; the database keeps
// its hash.
func (r *Repository) Create(ctx context.Context, ics string, eventCount int) (*database.BundleRecord, string, error) {
	token, hash, err := crypto.GenerateShareToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate share token: %w", err)
	}

	id := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bundles (id, token_hash, token_prefix, ics, event_count)
		VALUES (?, ?, ?, ?, ?)
	`, id, hash, crypto.TokenPrefix(token), ics, eventCount)
	if err != nil {
		return nil, "", fmt.Errorf("failed to insert bundle: %w", err)
	}

	rec, err := r.getByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return rec, token, nil
}

// GetByToken retrieves a bundle by its share token.
// Returns nil when no bundle matches.
func (r *Repository) GetByToken(ctx context.Context, token string) (*database.BundleRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, token_prefix, ics, event_count, created_at
		FROM bundles
		WHERE token_hash = ?
	`, crypto.HashSHA256(token))

	return scanBundle(row)
}

func (r *Repository) getByID(ctx context.Context, id string) (*database.BundleRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, token_hash, token_prefix, ics, event_count, created_at
		FROM bundles
		WHERE id = ?
	`, id)

	return scanBundle(row)
}

func scanBundle(row *sql.Row) (*database.BundleRecord, error) {
	var (
		rec       database.BundleRecord
		createdAt string
	)

	err := row.Scan(&rec.ID, &rec.TokenHash, &rec.TokenPrefix, &rec.ICS, &rec.EventCount, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan bundle: %w", err)
	}

	if rec.CreatedAt, err = util.ParseSQLiteTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at: %w", err)
	}

	return &rec, nil
}
