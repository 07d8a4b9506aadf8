package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	"github.com/Bobby-coder/CodeNation/internal/token"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

// Manager orchestrates session issuance, refresh, and teardown. Sessions are
// keyed by user ID, not by token: a second login overwrites the cached
// snapshot but does not invalidate previously issued tokens, and logout
// denies all of them at once by deleting the single record.
type Manager struct {
	codec   *token.Codec
	store   Store
	cookies CookieConfig
	logger  *slog.Logger
}

// NewManager creates a session manager.
func NewManager(codec *token.Codec, store Store, cookies CookieConfig, logger *slog.Logger) *Manager {
	return &Manager{
		codec:   codec,
		store:   store,
		cookies: cookies,
		logger:  logger,
	}
}

// Issue mints an access/refresh token pair for the user, writes the session
// record, and delivers both tokens as cookies. The cache write completes
// before cookies are set so the client's next request cannot race ahead of
// session visibility.
func (m *Manager) Issue(ctx context.Context, user *domain.User, w http.ResponseWriter) (*domain.TokenPair, error) {
	accessToken, err := m.codec.IssueAccess(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refreshToken, err := m.codec.IssueRefresh(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	// Session record lives at least as long as the refresh token, so a
	// valid refresh can always find it.
	if err := m.store.Set(ctx, user, m.codec.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	pair := &domain.TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}
	m.setAuthCookies(w, pair)

	m.logger.InfoContext(ctx, "session issued",
		slog.String("user_id", user.ID),
	)

	return pair, nil
}

// Refresh verifies the refresh token, loads the session record for the
// embedded user ID, and rotates both tokens. The new pair is re-delivered as
// cookies; the new access token is returned.
func (m *Manager) Refresh(ctx context.Context, refreshToken string, w http.ResponseWriter) (string, error) {
	userID, err := m.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", apperrors.Unauthorized("Refresh token is not valid")
	}

	user, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.NotFound("User not present, please login again")
		}
		return "", fmt.Errorf("load session: %w", err)
	}

	pair, err := m.Issue(ctx, user, w)
	if err != nil {
		return "", err
	}

	m.logger.InfoContext(ctx, "session refreshed",
		slog.String("user_id", user.ID),
	)

	return pair.AccessToken, nil
}

// Logout clears the auth cookies and deletes the session record. Outstanding
// tokens are not revoked cryptographically; they fail at the Access Gate
// because the record is gone.
func (m *Manager) Logout(ctx context.Context, userID string, w http.ResponseWriter) error {
	m.clearAuthCookies(w)

	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	m.logger.InfoContext(ctx, "session ended",
		slog.String("user_id", userID),
	)

	return nil
}

// Authenticate validates an access token and resolves the live session
// record. Any token failure and a missing session produce Unauthorized:
// a cryptographically valid token is worthless once the record is deleted.
func (m *Manager) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	userID, err := m.codec.VerifyAccess(accessToken)
	if err != nil {
		return nil, apperrors.Unauthorized("Access token is not valid")
	}

	user, err := m.store.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized("User not found")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	return user, nil
}

// SaveSnapshot rewrites the cached session record so profile mutations are
// visible to the very next authenticated request. The write is update-only:
// if the user has no live session (logged out, never logged in), no record is
// created, so outstanding revoked tokens stay revoked. Only Issue creates
// session records.
func (m *Manager) SaveSnapshot(ctx context.Context, user *domain.User) error {
	return m.store.Update(ctx, user, m.codec.RefreshTTL())
}

// Evict removes the session record for the user, denying all outstanding
// tokens. Used when an account is deleted.
func (m *Manager) Evict(ctx context.Context, userID string) error {
	return m.store.Delete(ctx, userID)
}
