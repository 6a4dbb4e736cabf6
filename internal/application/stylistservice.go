package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// StylistService orchestrates the AI endpoints: chat with locally persisted
// history, outfit recommendation, virtual try-on, and pro validation.
// Unlike the wardrobe flows these calls surface failures verbatim -- a
// styling answer has no safe default worth substituting.
type StylistService struct {
	client driven.StylistClient
	chats  driven.ChatStore
}

// NewStylistService creates a StylistService with all required dependencies.
func NewStylistService(client driven.StylistClient, chats driven.ChatStore) *StylistService {
	return &StylistService{
		client: client,
		chats:  chats,
	}
}

// Chat sends one user message and returns the stylist's reply. An empty
// conversationID starts a new conversation; both turns are persisted to
// local history before the reply is returned.
func (s *StylistService) Chat(ctx context.Context, conversationID, message string) (model.ChatMessage, error) {
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	userMsg := model.ChatMessage{
		ConversationID: conversationID,
		Role:           model.ChatRoleUser,
		Content:        message,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.chats.Append(ctx, userMsg); err != nil {
		return model.ChatMessage{}, fmt.Errorf("persist user message: %w", err)
	}

	reply, err := s.client.Chat(ctx, conversationID, message)
	if err != nil {
		return model.ChatMessage{}, err
	}

	replyMsg := model.ChatMessage{
		ConversationID: conversationID,
		Role:           model.ChatRoleStylist,
		Content:        reply,
		CreatedAt:      time.Now().UTC(),
	}
	stored, err := s.chats.Append(ctx, replyMsg)
	if err != nil {
		return model.ChatMessage{}, fmt.Errorf("persist stylist reply: %w", err)
	}

	return stored, nil
}

// History returns the conversation's persisted messages, oldest first.
func (s *StylistService) History(ctx context.Context, conversationID string, limit int) ([]model.ChatMessage, error) {
	return s.chats.History(ctx, conversationID, limit)
}

// ClearConversation deletes the local history for one conversation.
func (s *StylistService) ClearConversation(ctx context.Context, conversationID string) error {
	return s.chats.Clear(ctx, conversationID)
}

// Recommend asks the backend for an outfit.
func (s *StylistService) Recommend(ctx context.Context, req model.OutfitRequest) (model.Outfit, error) {
	return s.client.Recommend(ctx, req)
}

// TryOn renders the selected garments onto the model photo.
func (s *StylistService) TryOn(ctx context.Context, req model.TryOnRequest) (model.TryOnResult, error) {
	return s.client.TryOn(ctx, req)
}

// ProStatus checks the account's pro subscription.
func (s *StylistService) ProStatus(ctx context.Context) (model.ProStatus, error) {
	return s.client.ValidatePro(ctx)
}
