// Package httphandler implements the panel's local JSON API.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/closetpanel/closetpanel/internal/application"
	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// maxUploadBytes caps incoming analyze uploads before normalization.
const maxUploadBytes = 20 << 20

// Handler is the HTTP driving adapter that serves the panel's REST API.
type Handler struct {
	wardrobeSvc *application.WardrobeService
	stylistSvc  *application.StylistService
	sessionSvc  *application.SessionService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	wardrobeSvc *application.WardrobeService,
	stylistSvc *application.StylistService,
	sessionSvc *application.SessionService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		wardrobeSvc: wardrobeSvc,
		stylistSvc:  stylistSvc,
		sessionSvc:  sessionSvc,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/wardrobe", h.ListWardrobe)
	mux.HandleFunc("POST /api/v1/wardrobe/refresh", h.RefreshWardrobe)
	mux.HandleFunc("POST /api/v1/wardrobe/items", h.AddItem)
	mux.HandleFunc("PUT /api/v1/wardrobe/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/wardrobe/items/{id}", h.DeleteItem)
	mux.HandleFunc("POST /api/v1/wardrobe/analyze", h.Analyze)

	mux.HandleFunc("POST /api/v1/chat", h.Chat)
	mux.HandleFunc("GET /api/v1/chat/{conversation}", h.ChatHistory)
	mux.HandleFunc("DELETE /api/v1/chat/{conversation}", h.ClearChat)
	mux.HandleFunc("POST /api/v1/recommend", h.Recommend)
	mux.HandleFunc("POST /api/v1/tryon", h.TryOn)
	mux.HandleFunc("GET /api/v1/pro", h.ProStatus)

	mux.HandleFunc("POST /api/v1/auth/send-code", h.SendCode)
	mux.HandleFunc("POST /api/v1/auth/login/sms", h.LoginSMS)
	mux.HandleFunc("POST /api/v1/auth/login/password", h.LoginPassword)
	mux.HandleFunc("POST /api/v1/auth/register", h.Register)
	mux.HandleFunc("POST /api/v1/auth/logout", h.Logout)
	mux.HandleFunc("GET /api/v1/auth/session", h.Session)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}

// ListWardrobe returns the cached wardrobe, optionally filtered by category.
func (h *Handler) ListWardrobe(w http.ResponseWriter, r *http.Request) {
	var items []model.ClothingItem
	var err error

	if category := r.URL.Query().Get("category"); category != "" {
		cat, ok := model.ParseCategory(category)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown category")
			return
		}
		items, err = h.wardrobeSvc.ListByCategory(r.Context(), cat)
	} else {
		items, err = h.wardrobeSvc.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list wardrobe", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ClothingItemResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toClothingItemResponse(item))
	}

	writeJSON(w, http.StatusOK, resp)
}

// RefreshWardrobe triggers a synchronous sync against the backend.
func (h *Handler) RefreshWardrobe(w http.ResponseWriter, r *http.Request) {
	if err := h.wardrobeSvc.Refresh(r.Context()); err != nil {
		writeBackendError(w, h.logger, err)
		return
	}
	h.ListWardrobe(w, r)
}

// AddItem creates a wardrobe record on the backend and caches it.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, ok := model.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	created, err := h.wardrobeSvc.Add(r.Context(), model.ClothingItem{
		Name:     req.Name,
		Category: category,
		Color:    req.Color,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toClothingItemResponse(created))
}

// UpdateItem replaces a wardrobe record on the backend and refreshes the
// cached copy.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category, ok := model.ParseCategory(req.Category)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	updated, err := h.wardrobeSvc.Update(r.Context(), model.ClothingItem{
		RemoteID: id,
		Name:     req.Name,
		Category: category,
		Color:    req.Color,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toClothingItemResponse(updated))
}

// DeleteItem removes a wardrobe record.
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	if err := h.wardrobeSvc.Delete(r.Context(), id); err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Analyze accepts a multipart garment photo, normalizes it, and forwards it
// to the backend for classification.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.As(err, new(*http.MaxBytesError)) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "missing file upload")
		return
	}
	defer file.Close()

	result, err := h.wardrobeSvc.Analyze(r.Context(), application.Upload{
		Filename: header.Filename,
		Data:     file,
	})
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAnalysisResponse(result))
}

// Chat sends one message to the stylist and returns the reply, rendered both
// raw and as sanitized HTML.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.stylistSvc.Chat(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		ConversationID: reply.ConversationID,
		Reply:          reply.Content,
		ReplyHTML:      RenderMarkdown(reply.Content),
		CreatedAt:      reply.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// ChatHistory returns the persisted messages of one conversation.
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversation")

	messages, err := h.stylistSvc.History(r.Context(), conversationID, 0)
	if err != nil {
		h.logger.Error("failed to load chat history", "conversation", conversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ChatMessageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, toChatMessageResponse(msg))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearChat deletes one conversation's local history.
func (h *Handler) ClearChat(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("conversation")

	if err := h.stylistSvc.ClearConversation(r.Context(), conversationID); err != nil {
		h.logger.Error("failed to clear conversation", "conversation", conversationID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Recommend asks the stylist for an outfit.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Occasion == "" {
		writeError(w, http.StatusBadRequest, "occasion is required")
		return
	}

	outfit, err := h.stylistSvc.Recommend(r.Context(), model.OutfitRequest{
		Occasion: req.Occasion,
		Weather:  req.Weather,
		Style:    req.Style,
	})
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, OutfitResponse{
		ItemIDs:  outfit.ItemIDs,
		Advice:   outfit.Advice,
		Occasion: outfit.Occasion,
	})
}

// TryOn renders selected garments onto the model photo.
func (h *Handler) TryOn(w http.ResponseWriter, r *http.Request) {
	var req tryOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModelImageURL == "" || len(req.ItemIDs) == 0 {
		writeError(w, http.StatusBadRequest, "model_image_url and item_ids are required")
		return
	}

	result, err := h.stylistSvc.TryOn(r.Context(), model.TryOnRequest{
		ModelImageURL: req.ModelImageURL,
		ItemIDs:       req.ItemIDs,
	})
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, TryOnResponse{ImageURL: result.ImageURL, TaskID: result.TaskID})
}

// ProStatus reports the account's pro subscription.
func (h *Handler) ProStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.stylistSvc.ProStatus(r.Context())
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, ProStatusResponse{Active: status.Active, Plan: status.Plan})
}

// SendCode requests an SMS login code.
func (h *Handler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "phone is required")
		return
	}

	if err := h.sessionSvc.SendCode(r.Context(), req.Phone); err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// LoginSMS signs in with a phone number and SMS code.
func (h *Handler) LoginSMS(w http.ResponseWriter, r *http.Request) {
	var req loginSMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Code == "" {
		writeError(w, http.StatusBadRequest, "phone and code are required")
		return
	}

	user, err := h.sessionSvc.LoginSMS(r.Context(), req.Phone, req.Code)
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// LoginPassword signs in with an account identifier and password.
func (h *Handler) LoginPassword(w http.ResponseWriter, r *http.Request) {
	var req loginPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "account and password are required")
		return
	}

	user, err := h.sessionSvc.LoginPassword(r.Context(), req.Account, req.Password)
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// Register creates an account and signs in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.sessionSvc.RegisterEmail(r.Context(), req.Email, req.Password, req.Nickname)
	if err != nil {
		writeBackendError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProfileResponse(user))
}

// Logout clears the local session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionSvc.Logout(r.Context()); err != nil {
		h.logger.Error("failed to clear session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session reports who is signed in and whether the backend invalidated the
// previous session.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user, expired, err := h.sessionSvc.Current(r.Context())
	if err != nil {
		h.logger.Error("failed to load session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := SessionResponse{SignedIn: user != nil, Expired: expired}
	if user != nil {
		profile := toProfileResponse(*user)
		resp.User = &profile
	}

	writeJSON(w, http.StatusOK, resp)
}
