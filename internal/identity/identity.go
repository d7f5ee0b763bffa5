package identity

import (
	"context"

	"google.golang.org/api/idtoken"

	"cvforge/internal/errors"
)

// Identity represents a verified user: the stable subject that keys
// stored documents plus display attributes.
type Identity struct {
	Subject string `json:"subject"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Verifier turns a bearer credential into an Identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// GoogleVerifier validates Google ID tokens. The interactive sign-in
// flow happens in the caller's front end; this side only checks the
// token it produced.
type GoogleVerifier struct {
	audience string
}

// NewGoogleVerifier creates a verifier for the given OAuth client ID.
// An empty audience skips the audience check, which is only acceptable
// behind a trusted proxy.
func NewGoogleVerifier(audience string) *GoogleVerifier {
	return &GoogleVerifier{audience: audience}
}

// Verify implements Verifier.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	payload, err := idtoken.Validate(ctx, token, v.audience)
	if err != nil {
		return Identity{}, errors.NewAuthError(errors.ErrCodeInvalidToken,
			"Google ID token rejected", err)
	}

	id := Identity{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		id.Name = name
	}
	return id, nil
}

// StaticVerifier maps fixed tokens to identities. Used in tests and
// local single-user mode where no Google sign-in is involved.
type StaticVerifier map[string]Identity

// Verify implements Verifier.
func (v StaticVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, ok := v[token]
	if !ok {
		return Identity{}, errors.NewAuthError(errors.ErrCodeInvalidToken,
			"unknown credential", nil)
	}
	return id, nil
}
