package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for every verification failure: malformed
// token, wrong signature, wrong signing domain, or expiry. Callers must not
// distinguish between these cases in user-facing messaging.
var ErrInvalidToken = errors.New("token is not valid")

const issuer = "codenation"

// Config holds the four independent signing secrets and token lifetimes.
// Separate secrets keep the signing domains isolated: a leaked access secret
// cannot forge refresh, activation, or reset tokens.
type Config struct {
	AccessSecret     string
	RefreshSecret    string
	ActivationSecret string
	ResetSecret      string

	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ActivationTTL time.Duration
	ResetTTL      time.Duration
}

// Codec creates and verifies the signed, time-bounded tokens used by the
// auth subsystem: access, refresh, activation, and reset.
type Codec struct {
	cfg Config
}

// NewCodec creates a codec from the given config.
func NewCodec(cfg Config) *Codec {
	return &Codec{cfg: cfg}
}

// AccessTTL returns the access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.cfg.AccessTTL }

// RefreshTTL returns the refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

// ActivationTTL returns the activation token lifetime.
func (c *Codec) ActivationTTL() time.Duration { return c.cfg.ActivationTTL }

// ResetTTL returns the password reset token lifetime.
func (c *Codec) ResetTTL() time.Duration { return c.cfg.ResetTTL }

// sessionClaims is the minimal claim set carried by access and refresh tokens.
type sessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// PendingUser is the candidate record embedded in an activation token.
// The entire pending-signup state lives inside the token; nothing is
// persisted until the OTP is redeemed. The password is embedded already
// hashed so the token never carries the plaintext.
type PendingUser struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
}

// activationClaims wraps a pending registration plus its numeric OTP.
type activationClaims struct {
	User PendingUser `json:"user"`
	Code string      `json:"code"`
	jwt.RegisteredClaims
}

// resetClaims carries the email authorized for a single password change.
type resetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IssueAccess creates a signed access token bound to the user ID.
func (c *Codec) IssueAccess(userID string) (string, error) {
	return c.signSession(userID, c.cfg.AccessSecret, c.cfg.AccessTTL)
}

// IssueRefresh creates a signed refresh token bound to the user ID.
func (c *Codec) IssueRefresh(userID string) (string, error) {
	return c.signSession(userID, c.cfg.RefreshSecret, c.cfg.RefreshTTL)
}

// VerifyAccess validates an access token and returns the embedded user ID.
func (c *Codec) VerifyAccess(tokenString string) (string, error) {
	return c.verifySession(tokenString, c.cfg.AccessSecret)
}

// VerifyRefresh validates a refresh token and returns the embedded user ID.
func (c *Codec) VerifyRefresh(tokenString string) (string, error) {
	return c.verifySession(tokenString, c.cfg.RefreshSecret)
}

// IssueActivation creates a signed activation token embedding the pending
// registration and the OTP the user must read from their email.
func (c *Codec) IssueActivation(pending PendingUser, code string) (string, error) {
	claims := &activationClaims{
		User:             pending,
		Code:             code,
		RegisteredClaims: registeredClaims(c.cfg.ActivationTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.ActivationSecret))
	if err != nil {
		return "", fmt.Errorf("sign activation token: %w", err)
	}
	return signed, nil
}

// VerifyActivation validates an activation token and returns the pending
// registration and the embedded OTP.
func (c *Codec) VerifyActivation(tokenString string) (PendingUser, string, error) {
	claims := &activationClaims{}
	if err := c.parse(tokenString, claims, c.cfg.ActivationSecret); err != nil {
		return PendingUser{}, "", ErrInvalidToken
	}
	return claims.User, claims.Code, nil
}

// IssueReset creates a signed reset token over the given email.
func (c *Codec) IssueReset(email string) (string, error) {
	claims := &resetClaims{
		Email:            email,
		RegisteredClaims: registeredClaims(c.cfg.ResetTTL),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(c.cfg.ResetSecret))
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyReset validates a reset token and returns the embedded email.
func (c *Codec) VerifyReset(tokenString string) (string, error) {
	claims := &resetClaims{}
	if err := c.parse(tokenString, claims, c.cfg.ResetSecret); err != nil {
		return "", ErrInvalidToken
	}
	return claims.Email, nil
}

func (c *Codec) signSession(userID, secret string, ttl time.Duration) (string, error) {
	claims := &sessionClaims{
		UserID:           userID,
		RegisteredClaims: registeredClaims(ttl),
	}
	claims.Subject = userID

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (c *Codec) verifySession(tokenString, secret string) (string, error) {
	claims := &sessionClaims{}
	if err := c.parse(tokenString, claims, secret); err != nil {
		return "", ErrInvalidToken
	}
	if claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (c *Codec) parse(tokenString string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}

func registeredClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		Issuer:    issuer,
	}
}
