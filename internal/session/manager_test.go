package session

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	"github.com/Bobby-coder/CodeNation/internal/token"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

func newTestCodec() *token.Codec {
	return token.NewCodec(token.Config{
		AccessSecret:     "access-secret-for-testing",
		RefreshSecret:    "refresh-secret-for-testing",
		ActivationSecret: "activation-secret-for-testing",
		ResetSecret:      "reset-secret-for-testing",
		AccessTTL:        5 * time.Minute,
		RefreshTTL:       72 * time.Hour,
		ActivationTTL:    5 * time.Minute,
		ResetTTL:         5 * time.Minute,
	})
}

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewManager(newTestCodec(), store, CookieConfig{}, logger), store
}

func testUser() *domain.User {
	return &domain.User{
		ID:       "user-1",
		Name:     "Ann",
		Email:    "ann@x.com",
		Role:     domain.RoleUser,
		Verified: true,
	}
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestIssue_WritesSessionAndCookies(t *testing.T) {
	m, store := newTestManager()
	rec := httptest.NewRecorder()

	pair, err := m.Issue(context.Background(), testUser(), rec)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	// Session record keyed by user ID exists before the response is done.
	stored, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", stored.Email)

	access := cookieByName(t, rec, AccessCookieName)
	require.NotNil(t, access)
	assert.Equal(t, pair.AccessToken, access.Value)
	assert.True(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, int((5 * time.Minute).Seconds()), access.MaxAge)

	refresh := cookieByName(t, rec, RefreshCookieName)
	require.NotNil(t, refresh)
	assert.Equal(t, pair.RefreshToken, refresh.Value)
	assert.Equal(t, int((72 * time.Hour).Seconds()), refresh.MaxAge)
}

func TestAuthenticate_Success(t *testing.T) {
	m, _ := newTestManager()
	rec := httptest.NewRecorder()

	pair, err := m.Issue(context.Background(), testUser(), rec)
	require.NoError(t, err)

	user, err := m.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Authenticate(context.Background(), "garbage")
	require.Error(t, err)
	assert.True(t, apperrors.HTTPStatus(err) == http.StatusUnauthorized)
}

// A cryptographically valid token is rejected once the session record is gone.
func TestAuthenticate_ValidTokenNoSession(t *testing.T) {
	m, store := newTestManager()
	rec := httptest.NewRecorder()

	pair, err := m.Issue(context.Background(), testUser(), rec)
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "user-1"))

	_, err = m.Authenticate(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
}

func TestLogout_ThenAuthenticateFails(t *testing.T) {
	m, _ := newTestManager()
	rec := httptest.NewRecorder()

	pair, err := m.Issue(context.Background(), testUser(), rec)
	require.NoError(t, err)

	logoutRec := httptest.NewRecorder()
	require.NoError(t, m.Logout(context.Background(), "user-1", logoutRec))

	// Cookies overwritten with immediate-expiry placeholders.
	access := cookieByName(t, logoutRec, AccessCookieName)
	require.NotNil(t, access)
	assert.Empty(t, access.Value)
	assert.Negative(t, access.MaxAge)

	_, err = m.Authenticate(context.Background(), pair.AccessToken)
	assert.Error(t, err)
}

// Sessions are keyed by user, not token: both pairs from two logins stay
// valid, share one cache slot, and die together when the record is deleted.
func TestTwoLogins_ShareOneSessionSlot(t *testing.T) {
	m, _ := newTestManager()

	first, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	second, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	_, err = m.Authenticate(context.Background(), first.AccessToken)
	assert.NoError(t, err)
	_, err = m.Authenticate(context.Background(), second.AccessToken)
	assert.NoError(t, err)

	// Logging out (with either token's identity) evicts the shared slot.
	require.NoError(t, m.Logout(context.Background(), "user-1", httptest.NewRecorder()))

	_, err = m.Authenticate(context.Background(), first.AccessToken)
	assert.Error(t, err)
	_, err = m.Authenticate(context.Background(), second.AccessToken)
	assert.Error(t, err)
}

func TestSaveSnapshot_UpdatesLiveSession(t *testing.T) {
	m, store := newTestManager()

	_, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	changed := testUser()
	changed.Name = "Ann Smith"
	require.NoError(t, m.SaveSnapshot(context.Background(), changed))

	stored, err := store.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Ann Smith", stored.Name)
}

// A snapshot rewrite after logout must not re-create the session record:
// otherwise an unauthenticated flow touching the account (password reset,
// admin role change) would resurrect revoked access tokens.
func TestSaveSnapshot_DoesNotResurrectLoggedOutSession(t *testing.T) {
	m, _ := newTestManager()

	pair, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), "user-1", httptest.NewRecorder()))

	require.NoError(t, m.SaveSnapshot(context.Background(), testUser()))

	_, err = m.Authenticate(context.Background(), pair.AccessToken)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
}

func TestRefresh_RotatesTokens(t *testing.T) {
	m, _ := newTestManager()

	pair, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	newAccess, err := m.Refresh(context.Background(), pair.RefreshToken, rec)
	require.NoError(t, err)
	assert.NotEmpty(t, newAccess)

	access := cookieByName(t, rec, AccessCookieName)
	require.NotNil(t, access)
	assert.Equal(t, newAccess, access.Value)
	assert.NotNil(t, cookieByName(t, rec, RefreshCookieName))
}

func TestRefresh_TamperedToken_NoCookies(t *testing.T) {
	m, _ := newTestManager()

	pair, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	_, err = m.Refresh(context.Background(), pair.RefreshToken+"x", rec)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
	assert.Empty(t, rec.Result().Cookies())
}

func TestRefresh_AfterLogout_NotFound(t *testing.T) {
	m, _ := newTestManager()

	pair, err := m.Issue(context.Background(), testUser(), httptest.NewRecorder())
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), "user-1", httptest.NewRecorder()))

	rec := httptest.NewRecorder()
	_, err = m.Refresh(context.Background(), pair.RefreshToken, rec)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apperrors.HTTPStatus(err))
	assert.Empty(t, rec.Result().Cookies())
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore()

	require.NoError(t, store.Set(context.Background(), testUser(), -1*time.Second))

	_, err := store.Get(context.Background(), "user-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
