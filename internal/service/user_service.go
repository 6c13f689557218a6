// Package service implements the core operations: registration and login,
// bearer-token sessions, account activation, password reset, the follow
// graph, and the personalized feed. Services own no storage; they drive
// the repository contracts in internal/domain.
package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"go-social-core/internal/apperr"
	"go-social-core/internal/auth"
	"go-social-core/internal/core/metrics"
	"go-social-core/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[\w+\-.]+@[a-zA-Z\d\-.]+\.[a-zA-Z]+$`)

const (
	nameMaxLen     = 50
	emailMaxLen    = 255
	passwordMinLen = 6
	// bcrypt truncates nothing: secrets past 72 bytes are rejected
	// outright, so the ceiling is enforced as a validation rule.
	passwordMaxLen = 72
)

// NormalizeEmail lowercases and trims an email for storage and lookup.
// Uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserService struct {
	users  domain.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenIssuer
	mailer Mailer
	log    *zap.Logger

	resetTTL time.Duration
	now      func() time.Time

	// dummyDigest absorbs the bcrypt compare when the email lookup
	// misses, so Authenticate costs the same either way.
	dummyDigest string
}

func NewUserService(users domain.UserRepository, hasher *auth.Hasher, mailer Mailer, log *zap.Logger, resetTTL time.Duration) *UserService {
	if mailer == nil {
		mailer = NopMailer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	if resetTTL <= 0 {
		resetTTL = 2 * time.Hour
	}
	// An empty dummy digest would short-circuit Verify on the
	// missing-email path and reopen the timing side channel, so a hasher
	// that cannot produce one is a construction error.
	dummy, err := hasher.Hash(uuid.New().String())
	if err != nil {
		panic("user service: dummy digest: " + err.Error())
	}
	return &UserService{
		users:       users,
		hasher:      hasher,
		tokens:      auth.NewTokenIssuer(hasher),
		mailer:      mailer,
		log:         log,
		resetTTL:    resetTTL,
		now:         time.Now,
		dummyDigest: dummy,
	}
}

func (s *UserService) validate(name, email, password string, requirePassword bool) *apperr.Validation {
	v := apperr.NewValidation()
	if name == "" {
		v.Add("name", "can't be blank")
	} else if len(name) > nameMaxLen {
		v.Add("name", "is too long (maximum is 50 characters)")
	}
	if email == "" {
		v.Add("email", "can't be blank")
	} else {
		if len(email) > emailMaxLen {
			v.Add("email", "is too long (maximum is 255 characters)")
		}
		if !emailPattern.MatchString(email) {
			v.Add("email", "is invalid")
		}
	}
	if password == "" {
		if requirePassword {
			v.Add("password", "can't be blank")
		}
	} else if len(password) < passwordMinLen {
		v.Add("password", "is too short (minimum is 6 characters)")
	} else if len(password) > passwordMaxLen {
		v.Add("password", "is too long (maximum is 72 bytes)")
	}
	return v
}

// Register validates the input, assigns an activation token, persists the
// user unactivated, and hands the activation plaintext to the mailer.
// Field-level failures come back as *apperr.Validation; an email race as
// apperr.ErrConflict.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = NormalizeEmail(email)
	if err := s.validate(name, email, password, true).ErrOrNil(); err != nil {
		return nil, err
	}

	pwDigest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	activationToken, activationDigest, err := s.tokens.Issue()
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		ID:               uuid.New().String(),
		Name:             name,
		Email:            email,
		PasswordDigest:   pwDigest,
		ActivationDigest: activationDigest,
		Activated:        false,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	metrics.TokensIssued.WithLabelValues(string(auth.TokenActivation)).Inc()

	if err := s.mailer.Send(ctx, MailActivation, u, activationToken); err != nil {
		s.log.Warn("activation mail send failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	return u, nil
}

// Authenticate looks the user up by normalized email and verifies the
// password. Both failure paths run one bcrypt compare, so the caller's
// response cost does not reveal whether the email exists. A failed login
// is (nil, nil), not an error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(s.dummyDigest, password)
			metrics.LoginAttempts.WithLabelValues("fail").Inc()
			return nil, nil
		}
		return nil, err
	}
	if !s.hasher.Verify(u.PasswordDigest, password) {
		metrics.LoginAttempts.WithLabelValues("fail").Inc()
		return nil, nil
	}
	metrics.LoginAttempts.WithLabelValues("ok").Inc()
	return u, nil
}

// Remember issues a fresh remember token, persists its digest, and returns
// the plaintext for the caller to set client-side. Any previously issued
// remember token stops verifying.
func (s *UserService) Remember(ctx context.Context, u *domain.User) (string, error) {
	token, digest, err := s.tokens.Issue()
	if err != nil {
		return "", err
	}
	if err := s.users.UpdateColumns(ctx, u.ID, map[string]any{"remember_digest": digest}); err != nil {
		return "", err
	}
	u.RememberDigest = digest
	metrics.TokensIssued.WithLabelValues(string(auth.TokenRemember)).Inc()
	return token, nil
}

// Authenticated reports whether the presented token matches the stored
// digest for the given slot. An empty slot never authenticates.
func (s *UserService) Authenticated(u *domain.User, kind auth.TokenKind, token string) bool {
	var digest string
	switch kind {
	case auth.TokenRemember:
		digest = u.RememberDigest
	case auth.TokenActivation:
		digest = u.ActivationDigest
	case auth.TokenReset:
		digest = u.ResetDigest
	default:
		return false
	}
	return s.tokens.Verify(digest, token)
}

// Forget clears the remember digest, ending the persistent session. No-op
// when nothing is stored.
func (s *UserService) Forget(ctx context.Context, u *domain.User) error {
	if u.RememberDigest == "" {
		return nil
	}
	if err := s.users.UpdateColumns(ctx, u.ID, map[string]any{"remember_digest": ""}); err != nil {
		return err
	}
	u.RememberDigest = ""
	return nil
}

// Activate marks the account activated. There is no deactivation path.
func (s *UserService) Activate(ctx context.Context, u *domain.User) error {
	now := s.now()
	if err := s.users.UpdateColumns(ctx, u.ID, map[string]any{
		"activated":    true,
		"activated_at": now,
	}); err != nil {
		return err
	}
	u.Activated = true
	u.ActivatedAt = &now
	return nil
}

// CreateResetDigest issues a reset token, persists its digest with the
// current timestamp, and hands the plaintext to the mailer. Only the most
// recently issued token verifies.
func (s *UserService) CreateResetDigest(ctx context.Context, u *domain.User) (string, error) {
	token, digest, err := s.tokens.Issue()
	if err != nil {
		return "", err
	}
	now := s.now()
	if err := s.users.UpdateColumns(ctx, u.ID, map[string]any{
		"reset_digest":  digest,
		"reset_sent_at": now,
	}); err != nil {
		return "", err
	}
	u.ResetDigest = digest
	u.ResetSentAt = &now
	metrics.TokensIssued.WithLabelValues(string(auth.TokenReset)).Inc()

	if err := s.mailer.Send(ctx, MailReset, u, token); err != nil {
		s.log.Warn("reset mail send failed", zap.String("user_id", u.ID), zap.Error(err))
	}
	return token, nil
}

// PasswordResetExpired reports whether the outstanding reset request is
// older than the configured window. No request counts as expired.
func (s *UserService) PasswordResetExpired(u *domain.User) bool {
	if u.ResetSentAt == nil {
		return true
	}
	return s.now().Sub(*u.ResetSentAt) > s.resetTTL
}

// ResetPassword completes the reset flow: the token must match the stored
// digest and the window must not have elapsed. On success the password
// digest is replaced and the reset state cleared.
func (s *UserService) ResetPassword(ctx context.Context, u *domain.User, token, newPassword string) error {
	if !s.Authenticated(u, auth.TokenReset, token) {
		return apperr.ErrNotFound
	}
	if s.PasswordResetExpired(u) {
		return apperr.ErrExpiredToken
	}
	v := apperr.NewValidation()
	if newPassword == "" {
		v.Add("password", "can't be blank")
	} else if len(newPassword) < passwordMinLen {
		v.Add("password", "is too short (minimum is 6 characters)")
	} else if len(newPassword) > passwordMaxLen {
		v.Add("password", "is too long (maximum is 72 bytes)")
	}
	if err := v.ErrOrNil(); err != nil {
		return err
	}
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdateColumns(ctx, u.ID, map[string]any{
		"password_digest": digest,
		"reset_digest":    "",
		"reset_sent_at":   nil,
	}); err != nil {
		return err
	}
	u.PasswordDigest = digest
	u.ResetDigest = ""
	u.ResetSentAt = nil
	return nil
}

// UpdateProfile changes name, email, and optionally the password. A blank
// password keeps the existing digest.
func (s *UserService) UpdateProfile(ctx context.Context, u *domain.User, name, email, password string) error {
	email = NormalizeEmail(email)
	if err := s.validate(name, email, password, false).ErrOrNil(); err != nil {
		return err
	}
	u.Name = name
	u.Email = email
	if password != "" {
		digest, err := s.hasher.Hash(password)
		if err != nil {
			return err
		}
		u.PasswordDigest = digest
	}
	return s.users.Update(ctx, u)
}

// Delete removes the user and cascades to their edges and posts.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *UserService) Find(ctx context.Context, id string) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, offset, limit int) ([]domain.User, int64, error) {
	return s.users.List(ctx, offset, limit)
}
