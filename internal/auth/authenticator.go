package auth

import (
	"context"

	"github.com/MonyVannn/Grocy/internal/models"
)

// Authenticator defines the interface for authentication
// implementations, so the service layer does not care whether accounts
// are backed by passwords or a hosted identity provider.
type Authenticator interface {
	// Register creates a new user account with the given email and
	// credential. Returns the created user or an error if registration
	// fails.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the
	// user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the
	// implementation's requirements.
	ValidateCredential(credential string) error
}
