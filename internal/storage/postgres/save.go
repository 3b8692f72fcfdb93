package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/goodnight/internal/game/session"
)

// ErrSaveNotFound is returned when a save lookup yields no results.
var ErrSaveNotFound = errors.New("save not found")

// DefaultSlot is the slot used when none is named.
const DefaultSlot = "default"

// Save is one stored game session.
type Save struct {
	ID        uuid.UUID
	Slot      string
	Snapshot  session.Snapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveRepository stores session snapshots as JSONB rows keyed by session id.
type SaveRepository struct {
	db *pgxpool.Pool
}

// NewSaveRepository creates a SaveRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSaveRepository(db *pgxpool.Pool) *SaveRepository {
	return &SaveRepository{db: db}
}

// Put writes snap to slot, replacing any earlier save of the same session.
//
// Precondition: snap.ID must be a UUID; slot must be non-empty.
// Postcondition: Returns the stored row with timestamps set.
func (r *SaveRepository) Put(ctx context.Context, slot string, snap session.Snapshot) (*Save, error) {
	id, err := uuid.Parse(snap.ID)
	if err != nil {
		return nil, fmt.Errorf("save id %q: %w", snap.ID, err)
	}
	if slot == "" {
		return nil, fmt.Errorf("save slot must not be empty")
	}
	var out Save
	err = r.db.QueryRow(ctx, `
		INSERT INTO saves (id, slot, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
			SET slot = EXCLUDED.slot, snapshot = EXCLUDED.snapshot, updated_at = NOW()
		RETURNING id, slot, snapshot, created_at, updated_at`,
		id, slot, snap,
	).Scan(&out.ID, &out.Slot, &out.Snapshot, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("writing save: %w", err)
	}
	return &out, nil
}

// Get retrieves the save of session id.
//
// Postcondition: Returns the Save or ErrSaveNotFound.
func (r *SaveRepository) Get(ctx context.Context, id uuid.UUID) (*Save, error) {
	return r.one(ctx, `
		SELECT id, slot, snapshot, created_at, updated_at
		FROM saves WHERE id = $1`, id)
}

// Latest retrieves the most recently written save in slot.
//
// Postcondition: Returns the Save or ErrSaveNotFound.
func (r *SaveRepository) Latest(ctx context.Context, slot string) (*Save, error) {
	return r.one(ctx, `
		SELECT id, slot, snapshot, created_at, updated_at
		FROM saves WHERE slot = $1
		ORDER BY updated_at DESC LIMIT 1`, slot)
}

func (r *SaveRepository) one(ctx context.Context, query string, arg any) (*Save, error) {
	var s Save
	err := r.db.QueryRow(ctx, query, arg).Scan(&s.ID, &s.Slot, &s.Snapshot, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaveNotFound
		}
		return nil, fmt.Errorf("querying save: %w", err)
	}
	return &s, nil
}

// List returns the saves in slot, newest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *SaveRepository) List(ctx context.Context, slot string) ([]*Save, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, slot, snapshot, created_at, updated_at
		FROM saves WHERE slot = $1
		ORDER BY updated_at DESC`, slot)
	if err != nil {
		return nil, fmt.Errorf("listing saves: %w", err)
	}
	defer rows.Close()

	saves := make([]*Save, 0)
	for rows.Next() {
		var s Save
		if err := rows.Scan(&s.ID, &s.Slot, &s.Snapshot, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning save row: %w", err)
		}
		saves = append(saves, &s)
	}
	return saves, rows.Err()
}

// Delete removes the save of session id.
//
// Postcondition: Returns ErrSaveNotFound if no row was deleted.
func (r *SaveRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting save: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}
