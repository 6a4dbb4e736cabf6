package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeBackendError maps a stylist client failure onto a panel response.
// Business errors carry the backend's message verbatim; everything else gets
// a connectivity-oriented or generic message.
func writeBackendError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var apiErr *driven.APIError
	if !errors.As(err, &apiErr) {
		logger.Error("backend call failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	switch apiErr.Kind {
	case driven.ErrorKindUnauthorized:
		writeError(w, http.StatusUnauthorized, "session expired, please sign in again")
	case driven.ErrorKindBusiness:
		writeJSON(w, http.StatusUnprocessableEntity, businessErrorResponse{
			Error: apiErr.Message,
			Code:  apiErr.Code,
		})
	case driven.ErrorKindTimeout:
		writeError(w, http.StatusGatewayTimeout, apiErr.Message)
	case driven.ErrorKindUnreachable:
		writeError(w, http.StatusBadGateway, apiErr.Message)
	case driven.ErrorKindInvalidResponse:
		writeError(w, http.StatusBadGateway, "styling backend returned an invalid response")
	default:
		logger.Error("backend request failed", "status", apiErr.HTTPStatus, "error", apiErr)
		writeError(w, http.StatusBadGateway, apiErr.Message)
	}
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// businessErrorResponse carries the backend's own failure code and message.
type businessErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

// ClothingItemResponse is the JSON representation of a wardrobe item.
type ClothingItemResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Category  string   `json:"category"`
	Color     string   `json:"color"`
	Tags      []string `json:"tags"`
	ImageURL  string   `json:"image_url"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// AnalysisResponse is the JSON representation of an analysis result.
type AnalysisResponse struct {
	Category    string   `json:"category"`
	Color       string   `json:"color"`
	Tags        []string `json:"tags"`
	Description string   `json:"description"`
}

// ChatResponse is the JSON representation of a stylist chat turn. ReplyHTML
// is the markdown reply rendered to sanitized HTML for direct embedding.
type ChatResponse struct {
	ConversationID string `json:"conversation_id"`
	Reply          string `json:"reply"`
	ReplyHTML      string `json:"reply_html"`
	CreatedAt      string `json:"created_at"`
}

// ChatMessageResponse is one persisted history entry.
type ChatMessageResponse struct {
	ID        int64  `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	HTML      string `json:"html"`
	CreatedAt string `json:"created_at"`
}

// OutfitResponse is the JSON representation of a recommendation.
type OutfitResponse struct {
	ItemIDs  []string `json:"item_ids"`
	Advice   string   `json:"advice"`
	Occasion string   `json:"occasion"`
}

// TryOnResponse is the JSON representation of a try-on render.
type TryOnResponse struct {
	ImageURL string `json:"image_url"`
	TaskID   string `json:"task_id,omitempty"`
}

// ProStatusResponse reports the pro subscription state.
type ProStatusResponse struct {
	Active bool   `json:"active"`
	Plan   string `json:"plan,omitempty"`
}

// SessionResponse reports who is signed in, if anyone, and whether the last
// session was invalidated by the backend.
type SessionResponse struct {
	SignedIn bool             `json:"signed_in"`
	Expired  bool             `json:"expired"`
	User     *ProfileResponse `json:"user,omitempty"`
}

// ProfileResponse is the JSON representation of the signed-in account.
type ProfileResponse struct {
	ID        string `json:"id"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Pro       bool   `json:"pro"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// Request bodies.

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
}

type recommendRequest struct {
	Occasion string `json:"occasion"`
	Weather  string `json:"weather"`
	Style    string `json:"style"`
}

type tryOnRequest struct {
	ModelImageURL string   `json:"model_image_url"`
	ItemIDs       []string `json:"item_ids"`
}

type addItemRequest struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Color    string   `json:"color"`
	Tags     []string `json:"tags"`
	ImageURL string   `json:"image_url"`
}

type sendCodeRequest struct {
	Phone string `json:"phone"`
}

type loginSMSRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

type loginPasswordRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// toClothingItemResponse converts a domain item to its JSON representation.
func toClothingItemResponse(item model.ClothingItem) ClothingItemResponse {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}
	return ClothingItemResponse{
		ID:        item.RemoteID,
		Name:      item.Name,
		Category:  string(item.Category),
		Color:     item.Color,
		Tags:      tags,
		ImageURL:  item.ImageURL,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// toAnalysisResponse converts a domain analysis result to its JSON representation.
func toAnalysisResponse(a model.AnalysisResult) AnalysisResponse {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return AnalysisResponse{
		Category:    string(a.Category),
		Color:       a.Color,
		Tags:        tags,
		Description: a.Description,
	}
}

// toChatMessageResponse converts a persisted chat message to its JSON
// representation, rendering stylist markdown to sanitized HTML.
func toChatMessageResponse(msg model.ChatMessage) ChatMessageResponse {
	html := ""
	if msg.Role == model.ChatRoleStylist {
		html = RenderMarkdown(msg.Content)
	}
	return ChatMessageResponse{
		ID:        msg.ID,
		Role:      string(msg.Role),
		Content:   msg.Content,
		HTML:      html,
		CreatedAt: msg.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// toProfileResponse converts a domain profile to its JSON representation.
func toProfileResponse(user model.UserProfile) ProfileResponse {
	return ProfileResponse{
		ID:        user.ID,
		Nickname:  user.Nickname,
		Email:     user.Email,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
		Pro:       user.Pro,
	}
}
