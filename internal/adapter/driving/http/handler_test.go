package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sqliteadapter "github.com/closetpanel/closetpanel/internal/adapter/driven/sqlite"
	"github.com/closetpanel/closetpanel/internal/adapter/driven/stylist"
	httphandler "github.com/closetpanel/closetpanel/internal/adapter/driving/http"
	"github.com/closetpanel/closetpanel/internal/application"
)

// testPanel wires the full stack against a fake styling backend: real
// stylist client, real SQLite stores in a temp file, real services.
type testPanel struct {
	api     http.Handler
	backend *http.ServeMux
}

func newTestPanel(t *testing.T) *testPanel {
	t.Helper()

	backend := http.NewServeMux()
	backendSrv := httptest.NewServer(backend)
	t.Cleanup(backendSrv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	db, err := sqliteadapter.NewDB(ctx, filepath.Join(t.TempDir(), "panel.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqliteadapter.RunMigrations(db.Writer))

	key := bytes.Repeat([]byte{7}, 32)
	credentialStore := sqliteadapter.NewCredentialRepo(db, key)
	sessionStore := sqliteadapter.NewSessionRepo(credentialStore)

	var sessionSvc *application.SessionService
	client := stylist.NewClientWithHTTPClient(backendSrv.Client(), backendSrv.URL, sessionStore, func() {
		sessionSvc.HandleUnauthorized()
	})
	sessionSvc = application.NewSessionService(client, sessionStore)

	wardrobeSvc := application.NewWardrobeService(client, sqliteadapter.NewWardrobeRepo(db), time.Hour)
	go wardrobeSvc.Start(ctx)

	stylistSvc := application.NewStylistService(client, sqliteadapter.NewChatRepo(db))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := httphandler.NewHandler(wardrobeSvc, stylistSvc, sessionSvc, logger)

	return &testPanel{
		api:     httphandler.NewServeMux(handler, logger),
		backend: backend,
	}
}

func (p *testPanel) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	p.api.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func TestHandler_Health(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[httphandler.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
}

func TestHandler_WardrobeRefreshAndList(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/wardrobe/list", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"data":[
			{"id":"c-1","name":"Linen shirt","category":"top","color":"white","tags":["summer"]},
			{"id":"c-2","name":"Chelsea boots","category":"shoes","color":"brown","tags":[]}
		]}`)
	})

	rec := panel.do(t, http.MethodPost, "/api/v1/wardrobe/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decodeBody[[]httphandler.ClothingItemResponse](t, rec)
	require.Len(t, items, 2)

	rec = panel.do(t, http.MethodGet, "/api/v1/wardrobe?category=shoes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items = decodeBody[[]httphandler.ClothingItemResponse](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "c-2", items[0].ID)
}

func TestHandler_Wardrobe_UnknownCategory(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodGet, "/api/v1/wardrobe?category=hats", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_AddAndDeleteItem(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/wardrobe/add", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"data":{"id":"c-new","name":"Scarf","category":"accessory","tags":[]}}`)
	})
	panel.backend.HandleFunc("/app/wardrobe/c-new", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		io.WriteString(w, `{"code":200}`)
	})

	rec := panel.do(t, http.MethodPost, "/api/v1/wardrobe/items", map[string]any{
		"name":     "Scarf",
		"category": "accessory",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[httphandler.ClothingItemResponse](t, rec)
	assert.Equal(t, "c-new", created.ID)

	rec = panel.do(t, http.MethodDelete, "/api/v1/wardrobe/items/c-new", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_UpdateItem(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/wardrobe/update", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "c-1", body["id"])

		io.WriteString(w, `{"code":200,"data":{"id":"c-1","name":"Linen shirt","category":"top","color":"ecru","tags":[]}}`)
	})

	rec := panel.do(t, http.MethodPut, "/api/v1/wardrobe/items/c-1", map[string]any{
		"name":     "Linen shirt",
		"category": "Top",
		"color":    "ecru",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[httphandler.ClothingItemResponse](t, rec)
	assert.Equal(t, "c-1", updated.ID)
	assert.Equal(t, "Top", updated.Category)

	// The cached copy reflects the update.
	rec = panel.do(t, http.MethodGet, "/api/v1/wardrobe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[[]httphandler.ClothingItemResponse](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Linen shirt", items[0].Name)
}

func TestHandler_UpdateItem_UnknownCategory(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodPut, "/api/v1/wardrobe/items/c-1", map[string]any{
		"name":     "Linen shirt",
		"category": "hats",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Analyze_Multipart(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/clothing/analyze", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"data":{"category":"dress","color":"red","tags":["party"]}}`)
	})

	var photo bytes.Buffer
	require.NoError(t, png.Encode(&photo, image.NewRGBA(image.Rect(0, 0, 240, 240))))

	var form bytes.Buffer
	mw := multipart.NewWriter(&form)
	part, err := mw.CreateFormFile("file", "dress.png")
	require.NoError(t, err)
	_, err = part.Write(photo.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/wardrobe/analyze", &form)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	panel.api.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[httphandler.AnalysisResponse](t, rec)
	assert.Equal(t, "dress", resp.Category)
	assert.Equal(t, "red", resp.Color)
}

func TestHandler_Analyze_MissingFile(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodPost, "/api/v1/wardrobe/analyze", map[string]string{"oops": "json"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_Chat_RendersSanitizedHTML(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/ai/chat", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":200,"data":{"reply":"Wear the **navy blazer** <script>alert(1)</script>"}}`)
	})

	rec := panel.do(t, http.MethodPost, "/api/v1/chat", map[string]string{
		"message": "what should I wear tonight?",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[httphandler.ChatResponse](t, rec)
	assert.NotEmpty(t, resp.ConversationID)
	assert.Contains(t, resp.Reply, "**navy blazer**")
	assert.Contains(t, resp.ReplyHTML, "<strong>navy blazer</strong>")
	assert.NotContains(t, resp.ReplyHTML, "<script>")

	// Both turns landed in local history.
	rec = panel.do(t, http.MethodGet, "/api/v1/chat/"+resp.ConversationID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	history := decodeBody[[]httphandler.ChatMessageResponse](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "stylist", history[1].Role)
}

func TestHandler_Chat_MissingMessage(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodPost, "/api/v1/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_BusinessErrorMapsTo422(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/ai/recommend", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"code":40102,"message":"pro subscription required"}`)
	})

	rec := panel.do(t, http.MethodPost, "/api/v1/recommend", map[string]string{"occasion": "gala"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error string `json:"error"`
		Code  int    `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pro subscription required", resp.Error)
	assert.Equal(t, 40102, resp.Code)
}

func TestHandler_BackendUnauthorizedMapsTo401(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/ai/validate-pro", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	rec := panel.do(t, http.MethodGet, "/api/v1/pro", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// The expiry is visible on the session endpoint afterwards.
	rec = panel.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody[httphandler.SessionResponse](t, rec)
	assert.False(t, session.SignedIn)
	assert.True(t, session.Expired)
}

func TestHandler_AuthLifecycle(t *testing.T) {
	panel := newTestPanel(t)
	panel.backend.HandleFunc("/app/auth/login/password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "alice@example.com", body["account"])
		io.WriteString(w, `{"code":200,"data":{"token":"tok_alice","user":{"id":"u1","nickname":"alice","pro":true}}}`)
	})

	rec := panel.do(t, http.MethodPost, "/api/v1/auth/login/password", map[string]string{
		"account":  "alice@example.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decodeBody[httphandler.ProfileResponse](t, rec)
	assert.Equal(t, "alice", profile.Nickname)
	assert.True(t, profile.Pro)

	rec = panel.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	session := decodeBody[httphandler.SessionResponse](t, rec)
	require.True(t, session.SignedIn)
	assert.Equal(t, "alice", session.User.Nickname)

	rec = panel.do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = panel.do(t, http.MethodGet, "/api/v1/auth/session", nil)
	session = decodeBody[httphandler.SessionResponse](t, rec)
	assert.False(t, session.SignedIn)
	assert.Nil(t, session.User)
}

func TestHandler_LoginValidation(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodPost, "/api/v1/auth/login/password", map[string]string{
		"account": "alice@example.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = panel.do(t, http.MethodPost, "/api/v1/auth/send-code", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_TryOnValidation(t *testing.T) {
	panel := newTestPanel(t)

	rec := panel.do(t, http.MethodPost, "/api/v1/tryon", map[string]any{
		"item_ids": []string{"c-1"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
