package stylist

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// analysisJSON is the wire shape of an analysis result.
type analysisJSON struct {
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

func (a analysisJSON) toModel() model.AnalysisResult {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	category, _ := model.ParseCategory(a.Category)
	return model.AnalysisResult{
		Category:    category,
		Color:       a.Color,
		Tags:        tags,
		Description: a.Description,
	}
}

// clothingItemJSON is the wire shape of a wardrobe record.
type clothingItemJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Color     string   `json:"color"`
	Tags      []string `json:"tags"`
	ImageURL  string   `json:"imageUrl"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

func (w clothingItemJSON) toModel() model.ClothingItem {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	createdAt, _ := time.Parse(time.RFC3339, w.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, w.UpdatedAt)

	category, _ := model.ParseCategory(w.Category)
	return model.ClothingItem{
		RemoteID:  w.ID,
		Name:      w.Name,
		Category:  category,
		Color:     w.Color,
		Tags:      tags,
		ImageURL:  w.ImageURL,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func toClothingItemJSON(item model.ClothingItem) clothingItemJSON {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return clothingItemJSON{
		ID:       item.RemoteID,
		Name:     item.Name,
		Category: string(item.Category),
		Color:    item.Color,
		Tags:     tags,
		ImageURL: item.ImageURL,
	}
}

// AnalyzeItem classifies a garment from an image URL.
func (c *Client) AnalyzeItem(ctx context.Context, imageURL string) (model.AnalysisResult, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/wardrobe/analyze", map[string]string{"imageUrl": imageURL})
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return decodeAnalysis(payload)
}

// AnalyzeImage uploads a garment photo and classifies it.
func (c *Client) AnalyzeImage(ctx context.Context, filename string, file io.Reader, cfg model.AnalyzeConfig) (model.AnalysisResult, error) {
	payload, err := c.upload(ctx, "/app/clothing/analyze", filename, file, cfg)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	return decodeAnalysis(payload)
}

func decodeAnalysis(payload json.RawMessage) (model.AnalysisResult, error) {
	var wire analysisJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.AnalysisResult{}, decodeError(payload)
	}
	return wire.toModel(), nil
}

// ListWardrobe returns the account's wardrobe as stored on the backend.
func (c *Client) ListWardrobe(ctx context.Context) ([]model.ClothingItem, error) {
	payload, err := c.doJSON(ctx, http.MethodGet, "/app/wardrobe/list", nil)
	if err != nil {
		return nil, err
	}

	var wire []clothingItemJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, decodeError(payload)
	}

	items := make([]model.ClothingItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, w.toModel())
	}
	return items, nil
}

// AddItem creates a wardrobe record on the backend.
func (c *Client) AddItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	payload, err := c.doJSON(ctx, http.MethodPost, "/app/wardrobe/add", toClothingItemJSON(item))
	if err != nil {
		return model.ClothingItem{}, err
	}
	return decodeClothingItem(payload)
}

// UpdateItem replaces the wardrobe record identified by item.RemoteID.
func (c *Client) UpdateItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	payload, err := c.doJSON(ctx, http.MethodPut, "/app/wardrobe/update", toClothingItemJSON(item))
	if err != nil {
		return model.ClothingItem{}, err
	}
	return decodeClothingItem(payload)
}

// DeleteItem removes the wardrobe record with the given remote id.
func (c *Client) DeleteItem(ctx context.Context, remoteID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, "/app/wardrobe/"+url.PathEscape(remoteID), nil)
	return err
}

func decodeClothingItem(payload json.RawMessage) (model.ClothingItem, error) {
	var wire clothingItemJSON
	if err := json.Unmarshal(payload, &wire); err != nil {
		return model.ClothingItem{}, decodeError(payload)
	}
	return wire.toModel(), nil
}

// decodeError wraps payloads that unwrapped cleanly but do not match the
// endpoint's documented shape.
func decodeError(payload json.RawMessage) error {
	return &driven.APIError{
		Kind:     driven.ErrorKindInvalidResponse,
		Message:  "backend returned an unexpected payload shape",
		Envelope: payload,
	}
}
