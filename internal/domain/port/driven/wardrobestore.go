package driven

import (
	"context"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// WardrobeStore defines the driven port for the local wardrobe cache.
type WardrobeStore interface {
	// Upsert inserts or replaces an item keyed by RemoteID.
	Upsert(ctx context.Context, item model.ClothingItem) error

	// Get returns the cached item with the given remote id, or nil if absent.
	Get(ctx context.Context, remoteID string) (*model.ClothingItem, error)

	// ListAll returns every cached item ordered by most recent update.
	ListAll(ctx context.Context) ([]model.ClothingItem, error)

	// ListByCategory returns cached items in the given category.
	ListByCategory(ctx context.Context, category model.Category) ([]model.ClothingItem, error)

	// Delete removes the cached item with the given remote id.
	Delete(ctx context.Context, remoteID string) error
}

// ChatStore defines the driven port for local stylist-chat history.
type ChatStore interface {
	// Append stores one message and returns it with the assigned row id.
	Append(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error)

	// History returns the conversation's messages in insertion order,
	// capped at limit (0 means no cap).
	History(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error)

	// Clear deletes every message in the conversation.
	Clear(ctx context.Context, conversationID string) error
}
