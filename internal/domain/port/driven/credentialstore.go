package driven

import (
	"context"
	"errors"

	"github.com/closetpanel/closetpanel/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore write operations when
// CLOSETPANEL_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set CLOSETPANEL_SECRET_KEY")

// CredentialStore defines the driven port for encrypted credential
// persistence. The adapter layer is responsible for encryption/decryption;
// this interface operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential (service, key) with the provided
	// plaintext value. Returns ErrEncryptionKeyNotSet if the adapter was
	// constructed without an encryption key.
	Set(ctx context.Context, service, key, plaintext string) error

	// Get retrieves the plaintext credential for (service, key).
	// Returns ("", nil) if no such credential exists.
	Get(ctx context.Context, service, key string) (string, error)

	// List returns all stored credentials with decrypted values.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential for (service, key). Deleting a missing
	// credential is not an error.
	Delete(ctx context.Context, service, key string) error
}
