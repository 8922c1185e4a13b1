// Package sessions stores web sessions for signed-in portal accounts. A
// session pairs the remote API's token pair with the account email and an
// expiry derived from the access token itself.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL bounds a session's lifetime when the access token carries no
// usable expiration claim.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when no live session exists for an id.
var ErrNotFound = errors.New("session not found")

// Session holds the data for one authenticated web session.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	Email        string
	ExpiresAt    time.Time
}

// Store persists sessions. Implementations delete expired sessions lazily
// on lookup.
type Store interface {
	// Create stores a new session and returns it with an assigned ID.
	Create(ctx context.Context, sess Session) (Session, error)
	// Get returns a live session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (Session, error)
	// Delete removes a session by ID. Unknown ids are not an error.
	Delete(ctx context.Context, id string) error
}

// ExpiresAt derives a session expiry from the access token's exp claim.
// The token is decoded without signature verification: the remote API is
// the authority on token validity, this side only needs the deadline. A
// missing, malformed, or already-passed claim falls back to now+fallback.
func ExpiresAt(accessToken string, now time.Time, fallback time.Duration) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.After(now) {
			return exp.Time
		}
	}
	return now.Add(fallback)
}

// newID generates a cryptographically random session identifier.
func newID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
