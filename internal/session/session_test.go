package session

import (
	"context"
	"fmt"
	"testing"

	"cvforge/internal/errors"
	"cvforge/internal/identity"
	"cvforge/internal/profile"
	"cvforge/internal/types"
)

// countingStore wraps an in-memory document map and counts operations
// so tests can assert exactly when the session touches the store.
type countingStore struct {
	profiles map[string]types.Profile
	loads    int
	saves    int
	loadErr  error
}

func newCountingStore() *countingStore {
	return &countingStore{profiles: make(map[string]types.Profile)}
}

func (s *countingStore) Save(_ context.Context, id identity.Identity, p types.Profile) error {
	s.saves++
	s.profiles[id.Subject] = p.Clone()
	return nil
}

func (s *countingStore) Load(_ context.Context, id identity.Identity) (*types.Profile, error) {
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	p, ok := s.profiles[id.Subject]
	if !ok {
		return nil, nil
	}
	out := p.Clone()
	return &out, nil
}

func (s *countingStore) Ping(context.Context) error  { return nil }
func (s *countingStore) Close(context.Context) error { return nil }

func newTestLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

var testVerifier = identity.StaticVerifier{
	"good-token": {Subject: "user-1", Email: "jo@example.com", Name: "Jo"},
}

func TestSignInLoadsStoredProfile(t *testing.T) {
	ctx := context.Background()
	docs := newCountingStore()
	docs.profiles["user-1"] = func() types.Profile {
		p := types.NewProfile()
		p.Summary = "stored summary"
		return p
	}()

	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	id, err := sess.SignIn(ctx, "good-token")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if id.Subject != "user-1" {
		t.Errorf("Expected subject user-1, got %q", id.Subject)
	}
	if docs.loads != 1 {
		t.Errorf("SignIn should load exactly once, loaded %d times", docs.loads)
	}

	snap := sess.Form().Snapshot()
	if snap.Summary != "stored summary" {
		t.Errorf("Stored profile should replace the form, got summary %q", snap.Summary)
	}

	current, ok := sess.Current()
	if !ok {
		t.Fatal("Expected a current identity after sign-in")
	}
	if current.Email != "jo@example.com" {
		t.Errorf("Expected email jo@example.com, got %q", current.Email)
	}
}

func TestSignInAbsentDocumentLeavesFormAlone(t *testing.T) {
	docs := newCountingStore()
	form := profile.NewStore()
	if err := form.Set("summary", "local edits"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	sess := NewSession(form, docs, testVerifier, newTestLogger(t))

	if _, err := sess.SignIn(context.Background(), "good-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if docs.loads != 1 {
		t.Errorf("SignIn should load exactly once, loaded %d times", docs.loads)
	}

	snap := sess.Form().Snapshot()
	if snap.Summary != "local edits" {
		t.Errorf("Form should be untouched when nothing is stored, got %q", snap.Summary)
	}
}

func TestSignInLoadFailureKeepsIdentityAndForm(t *testing.T) {
	docs := newCountingStore()
	docs.loadErr = fmt.Errorf("store unreachable")
	form := profile.NewStore()
	if err := form.Set("summary", "local edits"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	sess := NewSession(form, docs, testVerifier, newTestLogger(t))

	id, err := sess.SignIn(context.Background(), "good-token")
	if err != nil {
		t.Fatalf("A failed load should not fail sign-in, got: %v", err)
	}
	if id.Subject != "user-1" {
		t.Errorf("Expected subject user-1, got %q", id.Subject)
	}

	if _, ok := sess.Current(); !ok {
		t.Error("Identity should be current even when the load fails")
	}
	if sess.Form().Snapshot().Summary != "local edits" {
		t.Error("A failed load must not wipe local edits")
	}
}

func TestSignInBadToken(t *testing.T) {
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	if _, err := sess.SignIn(context.Background(), "bad-token"); err == nil {
		t.Fatal("Expected error for unknown credential")
	}
	if _, ok := sess.Current(); ok {
		t.Error("Failed sign-in should leave no current identity")
	}
	if docs.loads != 0 {
		t.Errorf("Failed sign-in should not touch the store, loaded %d times", docs.loads)
	}
}

func TestSaveRequiresIdentity(t *testing.T) {
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	if err := sess.Save(context.Background()); err != nil {
		t.Fatalf("Save while signed out should be a silent no-op, got: %v", err)
	}
	if docs.saves != 0 {
		t.Errorf("Save while signed out should not write, wrote %d times", docs.saves)
	}
}

func TestSavePersistsFormSnapshot(t *testing.T) {
	ctx := context.Background()
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	if _, err := sess.SignIn(ctx, "good-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := sess.Form().Set("summary", "to persist"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := sess.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if docs.saves != 1 {
		t.Errorf("Expected one save, got %d", docs.saves)
	}
	stored := docs.profiles["user-1"]
	if stored.Summary != "to persist" {
		t.Errorf("Expected stored summary %q, got %q", "to persist", stored.Summary)
	}
}

func TestLoadDoesNotTouchForm(t *testing.T) {
	ctx := context.Background()
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	if _, err := sess.SignIn(ctx, "good-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := sess.Form().Set("summary", "local edits"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// Another device stores a different document after sign-in
	docs.profiles["user-1"] = func() types.Profile {
		p := types.NewProfile()
		p.Summary = "remote edits"
		return p
	}()

	loaded, err := sess.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded == nil || loaded.Summary != "remote edits" {
		t.Errorf("Expected the stored document, got %#v", loaded)
	}
	if sess.Form().Snapshot().Summary != "local edits" {
		t.Error("Explicit load must not replace the form")
	}
}

func TestLoadSignedOut(t *testing.T) {
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	loaded, err := sess.Load(context.Background())
	if err != nil {
		t.Fatalf("Load while signed out should not error, got: %v", err)
	}
	if loaded != nil {
		t.Errorf("Expected nil while signed out, got %#v", loaded)
	}
	if docs.loads != 0 {
		t.Errorf("Load while signed out should not touch the store, loaded %d times", docs.loads)
	}
}

func TestSignOutKeepsForm(t *testing.T) {
	ctx := context.Background()
	docs := newCountingStore()
	sess := NewSession(profile.NewStore(), docs, testVerifier, newTestLogger(t))

	if _, err := sess.SignIn(ctx, "good-token"); err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if err := sess.Form().Set("summary", "keep me"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	sess.SignOut()

	if _, ok := sess.Current(); ok {
		t.Error("Expected no current identity after sign-out")
	}
	if sess.Form().Snapshot().Summary != "keep me" {
		t.Error("Sign-out must not clear the form")
	}
}
