package sqlite

import (
	"context"
	"fmt"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.ChatStore = (*ChatRepo)(nil)

// ChatRepo is the SQLite implementation of the ChatStore port, holding the
// local stylist-conversation history.
type ChatRepo struct {
	db *DB
}

// NewChatRepo creates a new ChatRepo backed by the given DB.
func NewChatRepo(db *DB) *ChatRepo {
	return &ChatRepo{db: db}
}

// Append stores one message and returns it with the assigned row id.
func (r *ChatRepo) Append(ctx context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	const query = `
		INSERT INTO chat_messages (conversation_id, role, content, created_at)
		VALUES (?, ?, ?, ?)
	`

	res, err := r.db.Writer.ExecContext(ctx, query,
		msg.ConversationID, string(msg.Role), msg.Content, msg.CreatedAt.UTC(),
	)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("append chat message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("chat message insert id: %w", err)
	}
	msg.ID = id

	return msg, nil
}

// History returns the conversation's messages in insertion order. When limit
// is positive, only the most recent limit messages are returned, still
// oldest first.
func (r *ChatRepo) History(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error) {
	query := `
		SELECT id, conversation_id, role, content, created_at
		FROM chat_messages
		WHERE conversation_id = ?
		ORDER BY id
	`
	args := []any{conversationID}

	if limit > 0 {
		query = `
			SELECT id, conversation_id, role, content, created_at FROM (
				SELECT id, conversation_id, role, content, created_at
				FROM chat_messages
				WHERE conversation_id = ?
				ORDER BY id DESC
				LIMIT ?
			) ORDER BY id
		`
		args = append(args, limit)
	}

	rows, err := r.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query chat history: %w", err)
	}
	defer rows.Close()

	messages := []model.ChatMessage{}
	for rows.Next() {
		var msg model.ChatMessage
		var role, createdAt string
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &role, &msg.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		msg.Role = model.ChatRole(role)
		msg.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat history: %w", err)
	}

	return messages, nil
}

// Clear deletes every message in the conversation.
func (r *ChatRepo) Clear(ctx context.Context, conversationID string) error {
	const query = `DELETE FROM chat_messages WHERE conversation_id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, conversationID); err != nil {
		return fmt.Errorf("clear conversation %q: %w", conversationID, err)
	}
	return nil
}
