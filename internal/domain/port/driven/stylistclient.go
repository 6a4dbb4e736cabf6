package driven

import (
	"context"
	"io"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// StylistClient defines the driven port for the remote styling backend.
// Every operation is a single request/response round trip; failures are
// returned as *APIError so callers can branch on ErrorKind. No operation
// retries automatically -- retry policy, where wanted, belongs to callers.
type StylistClient interface {
	// AnalyzeItem classifies a garment from an already-hosted image URL.
	AnalyzeItem(ctx context.Context, imageURL string) (model.AnalysisResult, error)

	// AnalyzeImage uploads a garment photo as multipart form data and
	// classifies it. The config part carries analysis options as JSON.
	AnalyzeImage(ctx context.Context, filename string, file io.Reader, cfg model.AnalyzeConfig) (model.AnalysisResult, error)

	// ListWardrobe returns the account's wardrobe as stored on the backend.
	ListWardrobe(ctx context.Context) ([]model.ClothingItem, error)

	// AddItem creates a wardrobe record on the backend and returns it with
	// the backend-assigned RemoteID.
	AddItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error)

	// UpdateItem replaces the wardrobe record identified by item.RemoteID.
	UpdateItem(ctx context.Context, item model.ClothingItem) (model.ClothingItem, error)

	// DeleteItem removes the wardrobe record with the given remote id.
	DeleteItem(ctx context.Context, remoteID string) error

	// Recommend asks the AI stylist for an outfit.
	Recommend(ctx context.Context, req model.OutfitRequest) (model.Outfit, error)

	// Chat sends one user message in a stylist conversation and returns the
	// stylist's reply.
	Chat(ctx context.Context, conversationID, message string) (string, error)

	// TryOn renders the selected garments onto the model photo.
	TryOn(ctx context.Context, req model.TryOnRequest) (model.TryOnResult, error)

	// ValidatePro checks the account's pro subscription.
	ValidatePro(ctx context.Context) (model.ProStatus, error)

	// SendCode requests an SMS login code for the phone number.
	SendCode(ctx context.Context, phone string) error

	// LoginSMS exchanges a phone number and SMS code for a session.
	LoginSMS(ctx context.Context, phone, code string) (model.Session, error)

	// LoginPassword exchanges account (email or phone) and password for a session.
	LoginPassword(ctx context.Context, account, password string) (model.Session, error)

	// RegisterEmail creates an account and returns its first session.
	RegisterEmail(ctx context.Context, email, password, nickname string) (model.Session, error)
}
