package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Identity is the caller identity resolved from a bearer credential by the
// external token issuer. The core trusts the user id as-is.
type Identity struct {
	UserID    uuid.UUID
	SessionID string
}

var ErrInvalidToken = errors.New("invalid or expired token")

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}
