package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WardrobeStore = (*WardrobeRepo)(nil)

// WardrobeRepo is the SQLite implementation of the WardrobeStore port.
// It caches the backend's wardrobe records so the panel keeps working when
// the backend is slow or down.
type WardrobeRepo struct {
	db *DB
}

// NewWardrobeRepo creates a new WardrobeRepo backed by the given DB.
func NewWardrobeRepo(db *DB) *WardrobeRepo {
	return &WardrobeRepo{db: db}
}

// Upsert inserts or replaces a clothing item keyed by remote id. Tags are
// serialized as a JSON array in the TEXT column.
func (r *WardrobeRepo) Upsert(ctx context.Context, item model.ClothingItem) error {
	const query = `
		INSERT INTO clothing_items (
			remote_id, name, category, color, tags, image_url, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(remote_id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			color = excluded.color,
			tags = excluded.tags,
			image_url = excluded.image_url,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at
	`

	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.Writer.ExecContext(ctx, query,
		item.RemoteID, item.Name, string(item.Category), item.Color,
		string(tagsJSON), item.ImageURL, item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert clothing item %q: %w", item.RemoteID, err)
	}

	return nil
}

// Get returns the cached item with the given remote id, or nil if absent.
func (r *WardrobeRepo) Get(ctx context.Context, remoteID string) (*model.ClothingItem, error) {
	const query = `
		SELECT id, remote_id, name, category, color, tags, image_url, created_at, updated_at
		FROM clothing_items
		WHERE remote_id = ?
	`

	item, err := scanClothingItem(r.db.Reader.QueryRowContext(ctx, query, remoteID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get clothing item %q: %w", remoteID, err)
	}
	return item, nil
}

// ListAll returns every cached item, most recently updated first.
func (r *WardrobeRepo) ListAll(ctx context.Context) ([]model.ClothingItem, error) {
	const query = `
		SELECT id, remote_id, name, category, color, tags, image_url, created_at, updated_at
		FROM clothing_items
		ORDER BY updated_at DESC, id DESC
	`
	return r.list(ctx, query)
}

// ListByCategory returns cached items in the given category, most recently
// updated first.
func (r *WardrobeRepo) ListByCategory(ctx context.Context, category model.Category) ([]model.ClothingItem, error) {
	const query = `
		SELECT id, remote_id, name, category, color, tags, image_url, created_at, updated_at
		FROM clothing_items
		WHERE category = ?
		ORDER BY updated_at DESC, id DESC
	`
	return r.list(ctx, query, string(category))
}

// Delete removes the cached item with the given remote id.
func (r *WardrobeRepo) Delete(ctx context.Context, remoteID string) error {
	const query = `DELETE FROM clothing_items WHERE remote_id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, remoteID); err != nil {
		return fmt.Errorf("delete clothing item %q: %w", remoteID, err)
	}
	return nil
}

func (r *WardrobeRepo) list(ctx context.Context, query string, args ...any) ([]model.ClothingItem, error) {
	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list clothing items: %w", err)
	}
	defer rows.Close()

	items := []model.ClothingItem{}
	for rows.Next() {
		item, err := scanClothingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clothing item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clothing items: %w", err)
	}

	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanClothingItem(row rowScanner) (*model.ClothingItem, error) {
	var item model.ClothingItem
	var category, tagsJSON, createdAt, updatedAt string

	if err := row.Scan(
		&item.ID, &item.RemoteID, &item.Name, &category, &item.Color,
		&tagsJSON, &item.ImageURL, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	item.Category = model.Category(category)

	if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}

	var err error
	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	item.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &item, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
