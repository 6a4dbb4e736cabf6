package application

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/closetpanel/closetpanel/internal/domain/model"
	"github.com/closetpanel/closetpanel/internal/domain/port/driven"
	"github.com/closetpanel/closetpanel/internal/imaging"
)

// uploadBounds is the resolution/size window the styling backend accepts
// for analysis uploads.
var uploadBounds = imaging.Bounds{
	MaxSizeMB: 2,
	MaxWidth:  1536,
	MaxHeight: 1536,
	MinWidth:  224,
	MinHeight: 224,
}

// refreshRequest represents a manual wardrobe refresh trigger.
type refreshRequest struct {
	done chan error
}

// Upload is one garment photo queued for analysis.
type Upload struct {
	Filename string
	Data     io.Reader
}

// BatchResult pairs an upload with its analysis outcome.
type BatchResult struct {
	Filename string
	Analysis model.AnalysisResult
	Err      error
}

// WardrobeService keeps the local wardrobe cache in step with the backend
// and runs the analyze/add flows. Backend list failures degrade to serving
// the cache; analyze failures degrade to a default classification. Both
// downgrades are deliberate per-call choices made here, never inside the
// stylist client.
type WardrobeService struct {
	client    driven.StylistClient
	store     driven.WardrobeStore
	interval  time.Duration
	refreshCh chan refreshRequest
}

// NewWardrobeService creates a WardrobeService with all required dependencies.
func NewWardrobeService(client driven.StylistClient, store driven.WardrobeStore, interval time.Duration) *WardrobeService {
	return &WardrobeService{
		client:    client,
		store:     store,
		interval:  interval,
		refreshCh: make(chan refreshRequest),
	}
}

// Start begins the sync loop: an immediate sync, then syncs on the
// configured interval, plus manual refresh requests. Start blocks until the
// context is canceled.
func (s *WardrobeService) Start(ctx context.Context) {
	if err := s.sync(ctx); err != nil {
		slog.Error("initial wardrobe sync failed", "error", err)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("wardrobe sync stopped")
			return
		case <-ticker.C:
			if err := s.sync(ctx); err != nil {
				slog.Error("wardrobe sync failed", "error", err)
			}
		case req := <-s.refreshCh:
			req.done <- s.sync(ctx)
		}
	}
}

// Refresh runs one sync cycle on the loop goroutine and reports its result.
// It blocks until the sync finishes or the context is canceled.
func (s *WardrobeService) Refresh(ctx context.Context) error {
	req := refreshRequest{done: make(chan error, 1)}

	select {
	case s.refreshCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-req.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SyncOnce runs a single sync cycle on the caller's goroutine. Intended for
// one-shot callers that do not run the Start loop.
func (s *WardrobeService) SyncOnce(ctx context.Context) error {
	return s.sync(ctx)
}

// sync pulls the backend wardrobe into the cache: upserts everything the
// backend returned and prunes cached items the backend no longer has. On
// list failure the cache is left untouched so the panel keeps serving it.
func (s *WardrobeService) sync(ctx context.Context) error {
	items, err := s.client.ListWardrobe(ctx)
	if err != nil {
		return fmt.Errorf("list wardrobe: %w", err)
	}

	remoteIDs := make(map[string]bool, len(items))
	for _, item := range items {
		remoteIDs[item.RemoteID] = true
		if err := s.store.Upsert(ctx, item); err != nil {
			return fmt.Errorf("cache item %q: %w", item.RemoteID, err)
		}
	}

	cached, err := s.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list cache: %w", err)
	}
	for _, item := range cached {
		if !remoteIDs[item.RemoteID] {
			if err := s.store.Delete(ctx, item.RemoteID); err != nil {
				return fmt.Errorf("prune item %q: %w", item.RemoteID, err)
			}
		}
	}

	slog.Debug("wardrobe synced", "items", len(items))
	return nil
}

// List returns the cached wardrobe.
func (s *WardrobeService) List(ctx context.Context) ([]model.ClothingItem, error) {
	return s.store.ListAll(ctx)
}

// ListByCategory returns cached items in the given category.
func (s *WardrobeService) ListByCategory(ctx context.Context, category model.Category) ([]model.ClothingItem, error) {
	return s.store.ListByCategory(ctx, category)
}

// Analyze normalizes one garment photo and sends it to the backend for
// classification. Analysis failures other than an expired session downgrade
// to the default classification so the add-garment flow never dead-ends on
// a model hiccup.
func (s *WardrobeService) Analyze(ctx context.Context, upload Upload) (model.AnalysisResult, error) {
	normalized, err := imaging.Normalize(upload.Data, upload.Filename, uploadBounds)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("normalize %q: %w", upload.Filename, err)
	}

	result, err := s.client.AnalyzeImage(ctx, normalized.Name, bytes.NewReader(normalized.Data), model.AnalyzeConfig{})
	if err != nil {
		if driven.KindOf(err) == driven.ErrorKindUnauthorized {
			return model.AnalysisResult{}, err
		}
		slog.Warn("analysis failed, falling back to default category",
			"file", upload.Filename,
			"error", err,
		)
		return model.DefaultAnalysis(), nil
	}

	return result, nil
}

// AnalyzeBatch analyzes uploads strictly one at a time, in submission
// order, so a slow or failing call cannot race another and the
// rate-sensitive analysis endpoint is never hit concurrently.
func (s *WardrobeService) AnalyzeBatch(ctx context.Context, uploads []Upload) []BatchResult {
	results := make([]BatchResult, 0, len(uploads))
	for _, upload := range uploads {
		analysis, err := s.Analyze(ctx, upload)
		results = append(results, BatchResult{
			Filename: upload.Filename,
			Analysis: analysis,
			Err:      err,
		})
	}
	return results
}

// Add creates the item on the backend and mirrors it into the cache.
func (s *WardrobeService) Add(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	created, err := s.client.AddItem(ctx, item)
	if err != nil {
		return model.ClothingItem{}, err
	}
	if err := s.store.Upsert(ctx, created); err != nil {
		return model.ClothingItem{}, fmt.Errorf("cache created item: %w", err)
	}
	return created, nil
}

// Update replaces the item on the backend and mirrors the result into the
// cache.
func (s *WardrobeService) Update(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error) {
	updated, err := s.client.UpdateItem(ctx, item)
	if err != nil {
		return model.ClothingItem{}, err
	}
	if err := s.store.Upsert(ctx, updated); err != nil {
		return model.ClothingItem{}, fmt.Errorf("cache updated item: %w", err)
	}
	return updated, nil
}

// Delete removes the item on the backend and from the cache.
func (s *WardrobeService) Delete(ctx context.Context, remoteID string) error {
	if err := s.client.DeleteItem(ctx, remoteID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, remoteID); err != nil {
		return fmt.Errorf("uncache item %q: %w", remoteID, err)
	}
	return nil
}
