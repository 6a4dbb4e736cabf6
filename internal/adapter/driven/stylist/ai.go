package stylist

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

type recommendRequest struct {
	Occasion string `json:"occasion"`
	Weather  string `json:"weather,omitempty"`
	Style    string `json:"style,omitempty"`
}

type outfitJSON struct {
	ItemIDs  []string `json:"itemIds"`
	Advice   string   `json:"advice"`
	Occasion string   `json:"occasion"`
}

type chatRequest struct {
	ConversationID string `json:"conversationId,omitempty"`
	Message        string `json:"message"`
}

type chatJSON struct {
	Reply string `json:"reply"`
}

type tryOnRequest struct {
	ModelImageURL string   `json:"modelImageUrl"`
	ItemIDs       []string `json:"itemIds"`
}

type tryOnJSON struct {
	ImageURL string `json:"imageUrl"`
	TaskID   string `json:"taskId"`
}

type proStatusJSON struct {
	Active bool   `json:"active"`
	Plan   string `json:"plan"`
}

// Recommend asks the AI stylist for an outfit.
func (c *Client) Recommend(ctx context.Context, req model.OutfitRequest) (model.Outfit, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/ai/recommend", recommendRequest{
		Occasion: req.Occasion,
		Weather:  req.Weather,
		Style:    req.Style,
	})
	if err != nil {
		return model.Outfit{}, err
	}

	var wire outfitJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.Outfit{}, decodeError(payload)
	}

	itemIDs := wire.ItemIDs
	if itemIDs == nil {
		itemIDs = []string{}
	}
	return model.Outfit{
		ItemIDs:  itemIDs,
		Advice:   wire.Advice,
		Occasion: wire.Occasion,
	}, nil
}

// Chat sends one user message and returns the stylist's reply.
func (c *Client) Chat(ctx context.Context, conversationID, message string) (string, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/ai/chat", chatRequest{
		ConversationID: conversationID,
		Message:        message,
	})
	if err != nil {
		return "", err
	}

	var wire chatJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return "", decodeError(payload)
	}
	return wire.Reply, nil
}

// TryOn renders the selected garments onto the model photo.
func (c *Client) TryOn(ctx context.Context, req model.TryOnRequest) (model.TryOnResult, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/ai/try-on", tryOnRequest{
		ModelImageURL: req.ModelImageURL,
		ItemIDs:       req.ItemIDs,
	})
	if err != nil {
		return model.TryOnResult{}, err
	}

	var wire tryOnJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.TryOnResult{}, decodeError(payload)
	}
	return model.TryOnResult{ImageURL: wire.ImageURL, TaskID: wire.TaskID}, nil
}

// ValidatePro checks the account's pro subscription.
func (c *Client) ValidatePro(ctx context.Context) (model.ProStatus, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/ai/validate-pro", nil)
	if err != nil {
		return model.ProStatus{}, err
	}

	var wire proStatusJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.ProStatus{}, decodeError(payload)
	}
	return model.ProStatus{Active: wire.Active, Plan: wire.Plan}, nil
}
