package session

import (
	"context"
	"sync"

	"cvforge/internal/errors"
	"cvforge/internal/identity"
	"cvforge/internal/profile"
	"cvforge/internal/store"
	"cvforge/internal/types"
)

// Session owns the current identity and mediates between the form
// store and the document store. Explicit sign-in is the only moment
// remote state flows into the form; everything else is user-driven.
type Session struct {
	mu      sync.RWMutex
	current *identity.Identity

	form     *profile.Store
	docs     store.DocumentStore
	verifier identity.Verifier
	logger   *errors.Logger
}

// NewSession creates a session with no current identity.
func NewSession(form *profile.Store, docs store.DocumentStore, verifier identity.Verifier, logger *errors.Logger) *Session {
	return &Session{
		form:     form,
		docs:     docs,
		verifier: verifier,
		logger:   logger,
	}
}

// SignIn verifies the credential, makes the identity current and
// performs exactly one load. A found document replaces the form
// contents wholesale; an absent document leaves the form untouched.
// A failed load is logged and leaves the form untouched too, so a
// flaky store never wipes local edits.
func (s *Session) SignIn(ctx context.Context, token string) (identity.Identity, error) {
	id, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return identity.Identity{}, err
	}

	s.mu.Lock()
	s.current = &id
	s.mu.Unlock()

	loaded, err := s.docs.Load(ctx, id)
	if err != nil {
		s.logger.LogError(err, "Failed to load stored profile after sign-in", "subject", id.Subject)
		return id, nil
	}
	if loaded != nil {
		s.form.ReplaceAll(*loaded)
		s.logger.Info("Stored profile applied to form", "subject", id.Subject)
	} else {
		s.logger.Debug("No stored profile for identity", "subject", id.Subject)
	}

	return id, nil
}

// SignOut drops the current identity. Form state is left alone.
func (s *Session) SignOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Current returns the signed-in identity, if any.
func (s *Session) Current() (identity.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return identity.Identity{}, false
	}
	return *s.current, true
}

// Save persists the current form snapshot for the signed-in identity.
// Without an identity it is a silent no-op.
func (s *Session) Save(ctx context.Context) error {
	id, ok := s.Current()
	if !ok {
		s.logger.Debug("Save skipped, no identity")
		return nil
	}
	return s.docs.Save(ctx, id, s.form.Snapshot())
}

// Load fetches the stored document for the signed-in identity without
// touching the form. Returns (nil, nil) when signed out or when no
// document exists.
func (s *Session) Load(ctx context.Context) (*types.Profile, error) {
	id, ok := s.Current()
	if !ok {
		s.logger.Debug("Load skipped, no identity")
		return nil, nil
	}
	return s.docs.Load(ctx, id)
}

// Form exposes the form store backing this session.
func (s *Session) Form() *profile.Store {
	return s.form
}
