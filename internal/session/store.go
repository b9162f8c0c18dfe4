package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// ErrNotFound covers tokens that were never issued, were destroyed, or have
// expired. Callers cannot tell these apart.
var ErrNotFound = errors.New("session not found")

// Store maps opaque tokens to user IDs. Implementations must treat Destroy
// as idempotent.
type Store interface {
	Create(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Destroy(ctx context.Context, token string) error
}

const tokenBytes = 32

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)

	_, err := rand.Read(buf)

	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}
