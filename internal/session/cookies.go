package session

import (
	"net/http"

	"github.com/Bobby-coder/CodeNation/internal/domain"
)

// Cookie names for the two transport credentials.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// CookieConfig controls the transport-credential cookies.
// Secure should be true everywhere except local development.
type CookieConfig struct {
	Secure bool
}

func (m *Manager) setAuthCookies(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookieName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(m.codec.AccessTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.cookies.Secure,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/",
		MaxAge:   int(m.codec.RefreshTTL().Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.cookies.Secure,
	})
}

// clearAuthCookies overwrites both credentials with immediate-expiry
// placeholders so the client drops them.
func (m *Manager) clearAuthCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookieName, RefreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   m.cookies.Secure,
		})
	}
}
