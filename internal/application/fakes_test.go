package application

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// fakeClient is a StylistClient stub driven by per-method funcs; methods
// without a func panic so tests fail loudly on unexpected calls.
type fakeClient struct {
	analyzeItemFn   func(ctx context.Context, imageURL string) (model.AnalysisResult, error)
	analyzeImageFn  func(ctx context.Context, filename string, file io.Reader, cfg model.AnalyzeConfig) (model.AnalysisResult, error)
	listWardrobeFn  func(ctx context.Context) ([]model.ClothingItem, error)
	addItemFn       func(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error)
	updateItemFn    func(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error)
	deleteItemFn    func(ctx context.Context, remoteID string) error
	recommendFn     func(ctx context.Context, req model.OutfitRequest) (model.Outfit, error)
	chatFn          func(ctx context.Context, conversationID, message string) (string, error)
	tryOnFn         func(ctx context.Context, req model.TryOnRequest) (model.TryOnResult, error)
	validateProFn   func(ctx context.Context) (model.ProStatus, error)
	sendCodeFn      func(ctx context.Context, phone string) error
	loginSMSFn      func(ctx context.Context, phone, code string) (model.Session, error)
	loginPasswordFn func(ctx context.Context, account, password string) (model.Session, error)
	registerEmailFn func(ctx context.Context, email, password, nickname string) (model.Session, error)
}

func (f *fakeClient) AnalyzeItem(ctx context.Context, imageURL string) (model.AnalysisResult, error) {
	return f.analyzeItemFn(ctx, imageURL)
}

func (f *fakeClient) AnalyzeImage(ctx context.Context, filename string, file io.Reader, cfg model.AnalyzeConfig) (model.AnalysisResult, error) {
	return f.analyzeImageFn(ctx, filename, file, cfg)
}

func (f *fakeClient) ListWardrobe(ctx context.Context) ([]model.ClothingItem, error) {
	return f.listWardrobeFn(ctx)
}

func (f *fakeClient) AddItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	return f.addItemFn(ctx, item)
}

func (f *fakeClient) UpdateItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	return f.updateItemFn(ctx, item)
}

func (f *fakeClient) DeleteItem(ctx context.Context, remoteID string) error {
	return f.deleteItemFn(ctx, remoteID)
}

func (f *fakeClient) Recommend(ctx context.Context, req model.OutfitRequest) (model.Outfit, error) {
	return f.recommendFn(ctx, req)
}

func (f *fakeClient) Chat(ctx context.Context, conversationID, message string) (string, error) {
	return f.chatFn(ctx, conversationID, message)
}

func (f *fakeClient) TryOn(ctx context.Context, req model.TryOnRequest) (model.TryOnResult, error) {
	return f.tryOnFn(ctx, req)
}

func (f *fakeClient) ValidatePro(ctx context.Context) (model.ProStatus, error) {
	return f.validateProFn(ctx)
}

func (f *fakeClient) SendCode(ctx context.Context, phone string) error {
	return f.sendCodeFn(ctx, phone)
}

func (f *fakeClient) LoginSMS(ctx context.Context, phone, code string) (model.Session, error) {
	return f.loginSMSFn(ctx, phone, code)
}

func (f *fakeClient) LoginPassword(ctx context.Context, account, password string) (model.Session, error) {
	return f.loginPasswordFn(ctx, account, password)
}

func (f *fakeClient) RegisterEmail(ctx context.Context, email, password, nickname string) (model.Session, error) {
	return f.registerEmailFn(ctx, email, password, nickname)
}

// memWardrobeStore is an in-memory WardrobeStore.
type memWardrobeStore struct {
	mu    sync.Mutex
	items map[string]model.ClothingItem
}

func newMemWardrobeStore() *memWardrobeStore {
	return &memWardrobeStore{items: map[string]model.ClothingItem{}}
}

func (s *memWardrobeStore) Upsert(_ context.Context, item model.ClothingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item.RemoteID] = item
	return nil
}

func (s *memWardrobeStore) Get(_ context.Context, remoteID string) (*model.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[remoteID]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *memWardrobeStore) ListAll(context.Context) ([]model.ClothingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.ClothingItem, 0, len(s.items))
	for _, item := range s.items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].RemoteID < items[j].RemoteID })
	return items, nil
}

func (s *memWardrobeStore) ListByCategory(ctx context.Context, category model.Category) ([]model.ClothingItem, error) {
	all, _ := s.ListAll(ctx)
	var items []model.ClothingItem
	for _, item := range all {
		if item.Category == category {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *memWardrobeStore) Delete(_ context.Context, remoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, remoteID)
	return nil
}

// memChatStore is an in-memory ChatStore.
type memChatStore struct {
	mu       sync.Mutex
	nextID   int64
	messages []model.ChatMessage
}

func (s *memChatStore) Append(_ context.Context, msg model.ChatMessage) (model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	msg.ID = s.nextID
	s.messages = append(s.messages, msg)
	return msg, nil
}

func (s *memChatStore) History(_ context.Context, conversationID string, limit int) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ChatMessage
	for _, msg := range s.messages {
		if msg.ConversationID == conversationID {
			out = append(out, msg)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memChatStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.messages[:0]
	for _, msg := range s.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	s.messages = kept
	return nil
}

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	mu      sync.Mutex
	session *model.Session
}

func (s *memSessionStore) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return "", nil
	}
	return s.session.Token, nil
}

func (s *memSessionStore) Save(_ context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *memSessionStore) User(context.Context) (*model.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil, nil
	}
	user := s.session.User
	return &user, nil
}

func (s *memSessionStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
