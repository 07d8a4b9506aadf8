package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Bobby-coder/CodeNation/internal/domain"
	"github.com/Bobby-coder/CodeNation/internal/event"
	"github.com/Bobby-coder/CodeNation/internal/mail"
	"github.com/Bobby-coder/CodeNation/internal/repository"
	"github.com/Bobby-coder/CodeNation/internal/token"
	apperrors "github.com/Bobby-coder/CodeNation/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// minPasswordLength is the minimum password length required.
const minPasswordLength = 6

// SessionCache is the subset of the session manager the service needs to keep
// cached principal snapshots current after profile mutations.
type SessionCache interface {
	SaveSnapshot(ctx context.Context, user *domain.User) error
	Evict(ctx context.Context, userID string) error
}

// UserService implements the business logic for account lifecycle and
// profile operations.
type UserService struct {
	repo          repository.UserRepository
	codec         *token.Codec
	sessions      SessionCache
	mailer        mail.Sender
	producer      *event.Producer
	resetLinkBase string
	logger        *slog.Logger
}

// NewUserService creates a new user service. The producer may be nil when no
// broker is configured; events are then skipped.
func NewUserService(
	repo repository.UserRepository,
	codec *token.Codec,
	sessions SessionCache,
	mailer mail.Sender,
	producer *event.Producer,
	resetLinkBase string,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		repo:          repo,
		codec:         codec,
		sessions:      sessions,
		mailer:        mailer,
		producer:      producer,
		resetLinkBase: resetLinkBase,
		logger:        logger,
	}
}

// --- Input types ---

// RegisterInput holds the parameters for registering a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// LoginInput holds the parameters for password login.
type LoginInput struct {
	Email    string
	Password string
}

// SocialAuthInput holds the profile fields delivered by an OAuth provider.
type SocialAuthInput struct {
	Name   string
	Email  string
	Avatar string
}

// UpdateInfoInput holds the updatable profile fields. Empty fields are left
// unchanged.
type UpdateInfoInput struct {
	Name  string
	Email string
}

// --- Account lifecycle ---

// Register validates the signup fields, hashes the password, and mints an
// activation token carrying the pending account plus a one-time code that is
// mailed to the user. No database record is created until activation.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (string, error) {
	if msg := missingFieldsMessage(
		field{"name", input.Name},
		field{"email", input.Email},
		field{"password", input.Password},
	); msg != "" {
		return "", apperrors.BadRequest(msg)
	}
	if len(input.Password) < minPasswordLength {
		return "", apperrors.BadRequest("Password should contain atleast 6 characters")
	}

	// Reject early when the email is already taken; activation would fail
	// at the store layer anyway, but this gives the user a clear answer
	// before they go looking for an email.
	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return "", apperrors.Conflict("Email already exist")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	code, err := generateActivationCode()
	if err != nil {
		return "", fmt.Errorf("generate activation code: %w", err)
	}

	pending := token.PendingUser{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
	}

	activationToken, err := s.codec.IssueActivation(pending, code)
	if err != nil {
		return "", fmt.Errorf("issue activation token: %w", err)
	}

	msg := &mail.Message{
		To:       input.Email,
		Subject:  "Activate your account",
		Template: "activation.html.tmpl",
		Data: map[string]any{
			"Name":           input.Name,
			"ActivationCode": code,
			"ExpiresIn":      int(s.codec.ActivationTTL().Minutes()),
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("send activation mail: %w", err)
	}

	s.logger.InfoContext(ctx, "registration started",
		slog.String("email", input.Email),
	)

	return activationToken, nil
}

// Activate verifies an activation token and the code the user read from
// email, then creates the account. Replaying a used token hits the unique
// email constraint and surfaces as a conflict.
func (s *UserService) Activate(ctx context.Context, activationToken, activationCode string) (*domain.User, error) {
	pending, code, err := s.codec.VerifyActivation(activationToken)
	if err != nil {
		return nil, apperrors.BadRequest("activation token is not valid")
	}

	if code != activationCode {
		return nil, apperrors.BadRequest("Wrong OTP")
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         domain.RoleUser,
		Verified:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, user)

	s.logger.InfoContext(ctx, "account activated",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// Login verifies email and password and returns the principal. Session and
// cookie issuance is the transport layer's job.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*domain.User, error) {
	if msg := missingFieldsMessage(
		field{"email", input.Email},
		field{"password", input.Password},
	); msg != "" {
		return nil, apperrors.BadRequest(msg)
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, apperrors.NotFound("Email is not registered, please register to login")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.Unauthorized("Password is not correct")
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// SocialAuth finds or creates a passwordless account from OAuth profile
// fields. Accounts created here carry no password hash, so password login
// and password change are unavailable for them.
func (s *UserService) SocialAuth(ctx context.Context, input SocialAuthInput) (*domain.User, error) {
	if input.Email == "" {
		return nil, apperrors.BadRequest("Please enter your email")
	}

	user, err := s.repo.GetByEmail(ctx, input.Email)
	if err == nil {
		return user, nil
	}

	now := time.Now().UTC()
	user = &domain.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		Avatar:    input.Avatar,
		Role:      domain.RoleUser,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.publishRegistered(ctx, user)

	s.logger.InfoContext(ctx, "social account created",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// RequestPasswordReset mints a reset token for a registered email and mails
// a link embedding it.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.BadRequest("Please enter your email")
	}

	if _, err := s.repo.GetByEmail(ctx, email); err != nil {
		return apperrors.NotFound(fmt.Sprintf("This email: %s is not registered with us, please enter a valid email", email))
	}

	resetToken, err := s.codec.IssueReset(email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	msg := &mail.Message{
		To:       email,
		Subject:  "Reset Password",
		Template: "reset_password.html.tmpl",
		Data: map[string]any{
			"ResetLink": s.resetLinkBase + "/" + resetToken,
			"ExpiresIn": int(s.codec.ResetTTL().Minutes()),
		},
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset requested",
		slog.String("email", email),
	)

	return nil
}

// ResetPassword verifies a reset token and overwrites the account password.
func (s *UserService) ResetPassword(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	email, err := s.codec.VerifyReset(resetToken)
	if err != nil {
		return apperrors.BadRequest("This link for reseting password is expired")
	}

	if newPassword == "" || confirmPassword == "" {
		var msg string
		switch {
		case newPassword == "" && confirmPassword == "":
			msg = "Please enter your new password & confirm password"
		case newPassword == "":
			msg = "Please enter your new password"
		default:
			msg = "Please enter your password again to confirm"
		}
		return apperrors.BadRequest(msg)
	}
	if newPassword != confirmPassword {
		return apperrors.BadRequest("Password does not match")
	}
	if len(newPassword) < minPasswordLength {
		return apperrors.BadRequest("Password should contain atleast 6 characters")
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.NotFound("User not found")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if err := s.sessions.SaveSnapshot(ctx, user); err != nil {
		return fmt.Errorf("refresh session snapshot: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishUserPasswordReset(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.password_reset event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "password reset",
		slog.String("user_id", user.ID),
	)

	return nil
}

// --- Profile operations ---

// GetByID returns the principal with the given id.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}
	return user, nil
}

// UpdateInfo changes name and/or email on the account. The session snapshot
// is rewritten before returning so subsequent authenticated requests see the
// new profile.
func (s *UserService) UpdateInfo(ctx context.Context, userID string, input UpdateInfoInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}

	if input.Email != "" && input.Email != user.Email {
		if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
			return nil, apperrors.Conflict("This Email is already registered")
		}
		user.Email = input.Email
	}
	if input.Name != "" {
		user.Name = input.Name
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	if err := s.sessions.SaveSnapshot(ctx, user); err != nil {
		return nil, fmt.Errorf("refresh session snapshot: %w", err)
	}

	s.publishUpdated(ctx, user)

	return user, nil
}

// UpdatePassword verifies the current password and replaces it. Passwordless
// social accounts are rejected.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*domain.User, error) {
	if currentPassword == "" || newPassword == "" {
		var msg string
		switch {
		case currentPassword == "" && newPassword == "":
			msg = "Please enter your current password & new password"
		case currentPassword == "":
			msg = "Please enter your current password"
		default:
			msg = "Please enter your new password"
		}
		return nil, apperrors.BadRequest(msg)
	}
	if len(newPassword) < minPasswordLength {
		return nil, apperrors.BadRequest("Password should contain atleast 6 characters")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}

	if !user.HasPassword() {
		return nil, apperrors.BadRequest("Invalid user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return nil, apperrors.BadRequest("Current password is not correct")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashedPassword)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.sessions.SaveSnapshot(ctx, user); err != nil {
		return nil, fmt.Errorf("refresh session snapshot: %w", err)
	}

	s.logger.InfoContext(ctx, "password updated",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// UpdateAvatar replaces the profile picture URL.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, avatar string) (*domain.User, error) {
	if avatar == "" {
		return nil, apperrors.BadRequest("Please provide a profile picture")
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}

	user.Avatar = avatar

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.sessions.SaveSnapshot(ctx, user); err != nil {
		return nil, fmt.Errorf("refresh session snapshot: %w", err)
	}

	return user, nil
}

// --- Admin operations ---

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

// UpdateRole changes an account's role.
func (s *UserService) UpdateRole(ctx context.Context, userID, role string) (*domain.User, error) {
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, apperrors.BadRequest(fmt.Sprintf("role %q is not valid", role))
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFound("User not found")
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := s.sessions.SaveSnapshot(ctx, user); err != nil {
		return nil, fmt.Errorf("refresh session snapshot: %w", err)
	}

	s.publishUpdated(ctx, user)

	s.logger.InfoContext(ctx, "role updated",
		slog.String("user_id", user.ID),
		slog.String("role", role),
	)

	return user, nil
}

// Delete removes an account and evicts its session so outstanding tokens
// stop authenticating immediately.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return apperrors.NotFound("User not found")
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if err := s.sessions.Evict(ctx, userID); err != nil {
		return fmt.Errorf("evict session: %w", err)
	}

	if s.producer != nil {
		if err := s.producer.PublishUserDeleted(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.deleted event",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user deleted",
		slog.String("user_id", userID),
	)

	return nil
}

// --- Helpers ---

type field struct {
	name  string
	value string
}

// missingFieldsMessage joins the names of empty fields into the single
// combined message the API returns, e.g. "Please enter your name & email".
func missingFieldsMessage(fields ...field) string {
	var missing []string
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) == 0 {
		return ""
	}

	msg := "Please enter your " + missing[0]
	for i := 1; i < len(missing); i++ {
		if i == len(missing)-1 {
			msg += " & " + missing[i]
		} else {
			msg += ", " + missing[i]
		}
	}
	return msg
}

// generateActivationCode returns a 4 digit numeric one-time code.
func generateActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}

func (s *UserService) publishRegistered(ctx context.Context, user *domain.User) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishUserRegistered(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.registered event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}

func (s *UserService) publishUpdated(ctx context.Context, user *domain.User) {
	if s.producer == nil {
		return
	}
	if err := s.producer.PublishUserUpdated(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.updated event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}
