package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-social-core/internal/apperr"
	"go-social-core/internal/auth"
	"go-social-core/internal/domain"
)

// --- fakes ---

type fakeUserRepo struct {
	byID map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, u *domain.User) error {
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return apperr.ErrConflict
		}
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeUserRepo) List(_ context.Context, offset, limit int) ([]domain.User, int64, error) {
	out := make([]domain.User, 0, len(f.byID))
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, u *domain.User) error {
	for id, existing := range f.byID {
		if id != u.ID && existing.Email == u.Email {
			return apperr.ErrConflict
		}
	}
	if _, ok := f.byID[u.ID]; !ok {
		return apperr.ErrNotFound
	}
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) UpdateColumns(_ context.Context, id string, cols map[string]any) error {
	u, ok := f.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	for col, val := range cols {
		switch col {
		case "password_digest":
			u.PasswordDigest = val.(string)
		case "remember_digest":
			u.RememberDigest = val.(string)
		case "activated":
			u.Activated = val.(bool)
		case "activated_at":
			ts := val.(time.Time)
			u.ActivatedAt = &ts
		case "reset_digest":
			u.ResetDigest = val.(string)
		case "reset_sent_at":
			if val == nil {
				u.ResetSentAt = nil
			} else {
				ts := val.(time.Time)
				u.ResetSentAt = &ts
			}
		}
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type sentMail struct {
	kind  MailKind
	user  *domain.User
	token string
}

type captureMailer struct{ sent []sentMail }

func (m *captureMailer) Send(_ context.Context, kind MailKind, u *domain.User, token string) error {
	m.sent = append(m.sent, sentMail{kind: kind, user: u, token: token})
	return nil
}

// --- helpers ---

func newTestUserService(t *testing.T) (*UserService, *fakeUserRepo, *captureMailer) {
	t.Helper()
	repo := newFakeUserRepo()
	mailer := &captureMailer{}
	svc := NewUserService(repo, auth.NewHasher(bcrypt.MinCost), mailer, nil, 2*time.Hour)
	return svc, repo, mailer
}

func mustRegister(t *testing.T, svc *UserService, name, email, password string) *domain.User {
	t.Helper()
	u, err := svc.Register(context.Background(), name, email, password)
	require.NoError(t, err)
	return u
}

// --- tests ---

func TestRegister(t *testing.T) {
	svc, repo, mailer := newTestUserService(t)

	u := mustRegister(t, svc, "Example User", "User@Example.COM", "secret1")

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "user@example.com", u.Email)
	assert.False(t, u.Activated)
	assert.NotEqual(t, "secret1", u.PasswordDigest)
	assert.True(t, svc.hasher.Verify(u.PasswordDigest, "secret1"))

	stored, err := repo.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ActivationDigest)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, MailActivation, mailer.sent[0].kind)
	assert.True(t, svc.Authenticated(stored, auth.TokenActivation, mailer.sent[0].token))
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		n, e, p  string
		badField string
	}{
		{"blank name", "", "a@b.com", "secret1", "name"},
		{"long name", strings.Repeat("a", 51), "a@b.com", "secret1", "name"},
		{"blank email", "A", "", "secret1", "email"},
		{"invalid email", "A", "not-an-email", "secret1", "email"},
		{"long email", "A", strings.Repeat("a", 250) + "@b.com", "secret1", "email"},
		{"blank password", "A", "a@b.com", "", "password"},
		{"short password", "A", "a@b.com", "12345", "password"},
		{"long password", "A", "a@b.com", strings.Repeat("p", 80), "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.n, tc.e, tc.p)
			v, ok := apperr.IsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, v.Fields, tc.badField)
		})
	}
}

func TestRegister_EmailCaseInsensitiveConflict(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	mustRegister(t, svc, "First", "a@b.com", "secret1")

	_, err := svc.Register(context.Background(), "Second", "A@B.com", "secret2")
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAuthenticate(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	got, err := svc.Authenticate(ctx, "A@B.com", "secret1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, u.ID, got.ID)

	got, err = svc.Authenticate(ctx, "a@b.com", "wrong")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = svc.Authenticate(ctx, "nobody@b.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRememberAndForget(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	assert.False(t, svc.Authenticated(u, auth.TokenRemember, "anything"),
		"no digest stored yet")

	token, err := svc.Remember(ctx, u)
	require.NoError(t, err)
	assert.True(t, svc.Authenticated(u, auth.TokenRemember, token))

	other, err := auth.NewToken()
	require.NoError(t, err)
	assert.False(t, svc.Authenticated(u, auth.TokenRemember, other))

	// A fresh remember invalidates the previous token.
	token2, err := svc.Remember(ctx, u)
	require.NoError(t, err)
	assert.False(t, svc.Authenticated(u, auth.TokenRemember, token))
	assert.True(t, svc.Authenticated(u, auth.TokenRemember, token2))

	require.NoError(t, svc.Forget(ctx, u))
	assert.False(t, svc.Authenticated(u, auth.TokenRemember, token2))
	require.NoError(t, svc.Forget(ctx, u), "forget is a no-op when cleared")
}

func TestActivate(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	require.NoError(t, svc.Activate(ctx, u))
	assert.True(t, u.Activated)
	require.NotNil(t, u.ActivatedAt)

	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, stored.Activated)
}

func TestCreateResetDigest_LatestWins(t *testing.T) {
	svc, _, mailer := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	token1, err := svc.CreateResetDigest(ctx, u)
	require.NoError(t, err)
	assert.True(t, svc.Authenticated(u, auth.TokenReset, token1))

	token2, err := svc.CreateResetDigest(ctx, u)
	require.NoError(t, err)
	assert.False(t, svc.Authenticated(u, auth.TokenReset, token1),
		"earlier token must stop verifying")
	assert.True(t, svc.Authenticated(u, auth.TokenReset, token2))

	// One activation mail from registration plus two reset mails.
	require.Len(t, mailer.sent, 3)
	assert.Equal(t, MailReset, mailer.sent[2].kind)
	assert.Equal(t, token2, mailer.sent[2].token)
}

func TestPasswordResetExpired(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	assert.True(t, svc.PasswordResetExpired(u), "no outstanding request")

	_, err := svc.CreateResetDigest(ctx, u)
	require.NoError(t, err)
	assert.False(t, svc.PasswordResetExpired(u))

	svc.now = func() time.Time { return time.Now().Add(2*time.Hour + time.Minute) }
	assert.True(t, svc.PasswordResetExpired(u))
}

func TestResetPassword(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	token, err := svc.CreateResetDigest(ctx, u)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, u, "bogus-token", "newsecret"), apperr.ErrNotFound)

	_, ok := apperr.IsValidation(svc.ResetPassword(ctx, u, token, "short"))
	assert.True(t, ok)

	_, ok = apperr.IsValidation(svc.ResetPassword(ctx, u, token, strings.Repeat("p", 80)))
	assert.True(t, ok)

	require.NoError(t, svc.ResetPassword(ctx, u, token, "newsecret"))
	assert.Empty(t, u.ResetDigest)
	assert.Nil(t, u.ResetSentAt)

	got, err := svc.Authenticate(ctx, "a@b.com", "newsecret")
	require.NoError(t, err)
	assert.NotNil(t, got)
	got, err = svc.Authenticate(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResetPassword_Expired(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	token, err := svc.CreateResetDigest(ctx, u)
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(3 * time.Hour) }
	assert.ErrorIs(t, svc.ResetPassword(ctx, u, token, "newsecret"), apperr.ErrExpiredToken)
}

func TestUpdateProfile_BlankPasswordKeepsDigest(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")
	oldDigest := u.PasswordDigest

	require.NoError(t, svc.UpdateProfile(ctx, u, "Renamed", "New@B.com", ""))
	assert.Equal(t, "new@b.com", u.Email)
	assert.Equal(t, oldDigest, u.PasswordDigest)

	stored, err := repo.FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, oldDigest, stored.PasswordDigest)
	assert.True(t, svc.hasher.Verify(stored.PasswordDigest, "secret1"))
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()
	u := mustRegister(t, svc, "X", "a@b.com", "secret1")

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err := repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), apperr.ErrNotFound)
}

func TestNewUserService_BrokenHasherPanics(t *testing.T) {
	// Cost outside bcrypt's range makes Hash fail; the constructor must
	// refuse to come up without a usable dummy digest.
	assert.Panics(t, func() {
		NewUserService(newFakeUserRepo(), &auth.Hasher{Cost: 99}, nil, nil, 0)
	})
}

func TestAuthenticate_RepoError(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	boom := errors.New("db down")
	svc.users = failingUserRepo{fakeUserRepo: newFakeUserRepo(), err: boom}

	_, err := svc.Authenticate(context.Background(), "a@b.com", "secret1")
	assert.ErrorIs(t, err, boom)
}

type failingUserRepo struct {
	*fakeUserRepo
	err error
}

func (f failingUserRepo) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, f.err
}
