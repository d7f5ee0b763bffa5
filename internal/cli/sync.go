package cli

import (
	"context"
	"fmt"
	"strings"

	"cvforge/internal/common"
	"cvforge/internal/config"
	"cvforge/internal/errors"
	"cvforge/internal/identity"
	"cvforge/internal/profile"
	"cvforge/internal/session"
	"cvforge/internal/store"
)

// syncSession bundles a session with the document store backing it so
// commands can close the store when done.
type syncSession struct {
	session *session.Session
	docs    store.DocumentStore
}

// newSyncSession builds a signed-out session against the configured
// document store and identity verifier.
func newSyncSession(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*syncSession, error) {
	if cfg.Auth.GoogleClientID == "" {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"auth.googleClientId is required for profile sync (set CVFORGE_AUTH_GOOGLECLIENTID)", nil)
	}
	verifier := identity.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	var docs store.DocumentStore
	switch cfg.Storage.Mode {
	case "mongo":
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Storage.Timeout)
		defer cancel()

		mongoStore, err := store.NewMongoStore(connectCtx,
			cfg.Storage.MongoURI, cfg.Storage.Database, cfg.Storage.Collection, logger)
		if err != nil {
			return nil, err
		}
		docs = mongoStore
	default:
		logger.Warn("Using in-memory document store, sync will not persist across runs")
		docs = store.NewMemoryStore()
	}

	return &syncSession{
		session: session.NewSession(profile.NewStore(), docs, verifier, logger),
		docs:    docs,
	}, nil
}

// close disconnects the document store
func (ss *syncSession) close(ctx context.Context, logger *errors.Logger) {
	if err := ss.docs.Close(ctx); err != nil {
		logger.LogError(err, "Failed to close document store")
	}
}

// contextWithStorageTimeout bounds a document store operation
func contextWithStorageTimeout(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, cfg.Storage.Timeout)
}

// resolveToken returns the identity credential from the flag pair,
// preferring the literal token over the token file.
func resolveToken(token, tokenFile string, logger *errors.Logger) (string, error) {
	if token != "" {
		return token, nil
	}
	if tokenFile == "" {
		return "", errors.NewAuthError(errors.ErrCodeNotSignedIn,
			"an identity token is required (use --token or --token-file)", nil)
	}

	fileProcessor := common.NewFileProcessor(logger)
	content, err := fileProcessor.ReadFile(tokenFile)
	if err != nil {
		return "", err
	}

	token = strings.TrimSpace(content)
	if token == "" {
		return "", errors.NewAuthError(errors.ErrCodeInvalidToken,
			fmt.Sprintf("token file %s is empty", tokenFile), nil)
	}
	return token, nil
}
