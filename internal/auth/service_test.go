package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	users   map[uuid.UUID]*User
	byEmail map[string]uuid.UUID

	// Error injection
	createError error
	findError   error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:   make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (m *mockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u := *m.users[id]
	return &u, nil
}

func (m *mockRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *mockRepository) Create(ctx context.Context, user *User) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.byEmail[user.Email]; exists {
		return fmt.Errorf("%w: email already registered", shared.ErrConflict)
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	m.users[user.ID] = &stored
	m.byEmail[user.Email] = user.ID
	return nil
}

func (m *mockRepository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.EmailVerified = true
	return nil
}

func (m *mockRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (m *mockRepository) SetLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *mockRepository) SetOTP(ctx context.Context, id uuid.UUID, otp string, expiry time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.ForgotPasswordOTP = &otp
	u.ForgotPasswordExpiry = &expiry
	return nil
}

func (m *mockRepository) ClearOTP(ctx context.Context, id uuid.UUID, resetAuthorizedUntil *time.Time) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.ForgotPasswordOTP = nil
	u.ForgotPasswordExpiry = nil
	u.ResetAuthorizedUntil = resetAuthorizedUntil
	return nil
}

func (m *mockRepository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = hash
	u.ResetAuthorizedUntil = nil
	return nil
}

func (m *mockRepository) UpdateDetails(ctx context.Context, id uuid.UUID, details UpdateDetails) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	if details.Name != nil {
		u.Name = *details.Name
	}
	if details.Email != nil {
		delete(m.byEmail, u.Email)
		u.Email = *details.Email
		m.byEmail[u.Email] = id
	}
	if details.Mobile != nil {
		u.Mobile = *details.Mobile
	}
	if details.PasswordHash != nil {
		u.PasswordHash = *details.PasswordHash
	}
	return nil
}

type recordingMailer struct {
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepository, *recordingMailer) {
	t.Helper()
	repo := newMockRepository()
	mailer := &recordingMailer{}
	tokens := NewTokenIssuer(TokenConfig{
		AccessSecret:  []byte("access-secret"),
		AccessTTL:     time.Hour,
		RefreshSecret: []byte("refresh-secret"),
		RefreshTTL:    24 * time.Hour,
	})
	svc := NewService(repo, tokens, mailer, slog.New(slog.NewTextHandler(io.Discard, nil)), ServiceConfig{
		BaseURL:         "http://localhost:8080",
		OTPTTL:          time.Hour,
		ResetAuthWindow: 15 * time.Minute,
	})
	return svc, repo, mailer
}

// ============================================================================
// REGISTER
// ============================================================================

func TestRegister(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "  Alice  ", "Alice@Example.COM", "s3cretpass")
	require.NoError(t, err)

	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, RoleUser, profile.Role)
	assert.Equal(t, StatusActive, profile.Status)
	assert.False(t, profile.EmailVerified)

	stored := repo.users[profile.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cretpass", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("s3cretpass")))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "alice@example.com", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "/api/auth/verify-email?code="+profile.ID.String())
}

func TestRegisterMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name, userName, email, password string
	}{
		{"empty name", "", "a@b.com", "password1"},
		{"empty email", "Alice", "", "password1"},
		{"empty password", "Alice", "a@b.com", ""},
		{"whitespace name", "   ", "a@b.com", "password1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.userName, tc.email, tc.password)
			require.ErrorIs(t, err, shared.ErrBadRequest)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Alice", "ALICE@example.com", "anotherpass")
	require.ErrorIs(t, err, shared.ErrConflict)
}

// ============================================================================
// LOGIN
// ============================================================================

func TestLogin(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	result, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.Equal(t, profile.ID, result.User.ID)
	require.NotNil(t, result.User.LastLogin)

	stored := repo.users[profile.ID]
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, result.Tokens.RefreshToken, *stored.RefreshToken)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	require.ErrorIs(t, err, shared.ErrNotRegistered)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "alice@example.com", "wrongpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	repo.users[profile.ID].Status = StatusSuspended

	_, err = svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestLoginReplacesRefreshToken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	first, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	// Token payloads embed issue time at second granularity.
	time.Sleep(1100 * time.Millisecond)
	second, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NotEqual(t, first.Tokens.RefreshToken, second.Tokens.RefreshToken)
	assert.Equal(t, second.Tokens.RefreshToken, *repo.users[profile.ID].RefreshToken)

	// The replaced token no longer refreshes.
	_, err = svc.RefreshTokens(ctx, first.Tokens.RefreshToken)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}

// ============================================================================
// VERIFY EMAIL
// ============================================================================

func TestVerifyEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.VerifyEmail(ctx, profile.ID.String()))
	assert.True(t, repo.users[profile.ID].EmailVerified)

	// Idempotent on an already verified account.
	require.NoError(t, svc.VerifyEmail(ctx, profile.ID.String()))
}

func TestVerifyEmailBadCode(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.VerifyEmail(ctx, "not-a-uuid")
	require.ErrorIs(t, err, shared.ErrInvalidCode)

	err = svc.VerifyEmail(ctx, uuid.NewString())
	require.ErrorIs(t, err, shared.ErrInvalidCode)

	err = svc.VerifyEmail(ctx, "")
	require.ErrorIs(t, err, shared.ErrBadRequest)
}

// ============================================================================
// REFRESH / LOGOUT
// ============================================================================

func TestRefreshTokens(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	result, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	access, err := svc.RefreshTokens(ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
}

func TestRefreshTokensRejectsForged(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.RefreshTokens(context.Background(), "not.a.token")
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}

func TestRefreshTokensAfterLogout(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	result, err := svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, profile.ID))

	_, err = svc.RefreshTokens(ctx, result.Tokens.RefreshToken)
	require.ErrorIs(t, err, shared.ErrInvalidToken)
}

// ============================================================================
// PASSWORD RESET FLOW
// ============================================================================

func otpFromMail(t *testing.T, m sentMail) string {
	t.Helper()
	start := strings.Index(m.body, "<strong>")
	require.NotEqual(t, -1, start)
	otp := m.body[start+len("<strong>") : start+len("<strong>")+6]
	require.Len(t, otp, 6)
	return otp
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	require.Len(t, mailer.sent, 2)
	otp := otpFromMail(t, mailer.sent[1])
	assert.Equal(t, otp, *repo.users[profile.ID].ForgotPasswordOTP)

	require.NoError(t, svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp))
	assert.Nil(t, repo.users[profile.ID].ForgotPasswordOTP)
	assert.Nil(t, repo.users[profile.ID].ForgotPasswordExpiry)
	require.NotNil(t, repo.users[profile.ID].ResetAuthorizedUntil)

	require.NoError(t, svc.ResetPassword(ctx, "alice@example.com", "newpassword", "newpassword"))

	_, err = svc.Login(ctx, "alice@example.com", "s3cretpass")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "alice@example.com", "newpassword")
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "nobody@example.com")
	require.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, mailer.sent)
}

func TestForgotPasswordOverwritesPriorOTP(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	firstOTP := otpFromMail(t, mailer.sent[1])
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	secondOTP := otpFromMail(t, mailer.sent[2])

	if firstOTP != secondOTP {
		err = svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", firstOTP)
		require.ErrorIs(t, err, shared.ErrInvalidOTP)
	}
	require.NoError(t, svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", secondOTP))
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))

	otp := otpFromMail(t, mailer.sent[1])
	wrong := "000000"
	if wrong == otp {
		wrong = "000001"
	}
	err = svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", wrong)
	require.ErrorIs(t, err, shared.ErrInvalidOTP)

	// A failed attempt does not consume the stored code.
	require.NotNil(t, repo.users[profile.ID].ForgotPasswordOTP)
	require.NoError(t, svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp))
}

func TestVerifyOTPNoneIssued(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	err = svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", "123456")
	require.ErrorIs(t, err, shared.ErrInvalidOTP)
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	otp := otpFromMail(t, mailer.sent[1])

	past := time.Now().UTC().Add(-time.Minute)
	repo.users[profile.ID].ForgotPasswordExpiry = &past

	err = svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp)
	require.ErrorIs(t, err, shared.ErrOTPExpired)
}

func TestVerifyOTPSingleUse(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	otp := otpFromMail(t, mailer.sent[1])

	require.NoError(t, svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp))
	err = svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp)
	require.ErrorIs(t, err, shared.ErrInvalidOTP)
}

func TestResetPasswordMismatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "alice@example.com", "newpassword", "different")
	require.ErrorIs(t, err, shared.ErrBadRequest)
}

func TestResetPasswordWithoutVerifiedOTP(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	err = svc.ResetPassword(ctx, "alice@example.com", "newpassword", "newpassword")
	require.ErrorIs(t, err, shared.ErrResetNotAuthorized)
}

func TestResetPasswordWindowExpired(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	otp := otpFromMail(t, mailer.sent[1])
	require.NoError(t, svc.VerifyForgotPasswordOTP(ctx, "alice@example.com", otp))

	past := time.Now().UTC().Add(-time.Minute)
	repo.users[profile.ID].ResetAuthorizedUntil = &past

	err = svc.ResetPassword(ctx, "alice@example.com", "newpassword", "newpassword")
	require.ErrorIs(t, err, shared.ErrResetNotAuthorized)
}

// ============================================================================
// PROFILE
// ============================================================================

func TestUpdateDetailsSparse(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	mobile := "9876543210"
	updated, err := svc.UpdateDetails(ctx, profile.ID, UpdateInput{Mobile: &mobile})
	require.NoError(t, err)

	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Equal(t, mobile, updated.Mobile)

	password := "anotherpass"
	_, err = svc.UpdateDetails(ctx, profile.ID, UpdateInput{Password: &password})
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[profile.ID].PasswordHash), []byte(password)))
}

func TestUpdateDetailsRejectsEmptyValues(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)

	empty := ""
	_, err = svc.UpdateDetails(ctx, profile.ID, UpdateInput{Email: &empty})
	require.ErrorIs(t, err, shared.ErrBadRequest)
	_, err = svc.UpdateDetails(ctx, profile.ID, UpdateInput{Password: &empty})
	require.ErrorIs(t, err, shared.ErrBadRequest)
}

func TestProfileNeverLeaksSecrets(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	ctx := context.Background()

	profile, err := svc.Register(ctx, "Alice", "alice@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NoError(t, svc.ForgotPassword(ctx, "alice@example.com"))
	otp := otpFromMail(t, mailer.sent[1])
	_ = otp

	got, err := svc.GetUserByID(ctx, profile.ID)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, got.ID)
	assert.NotNil(t, repo.users[profile.ID].ForgotPasswordOTP)
	// Profile carries no credential or OTP fields; compile-time shape check.
	_ = Profile{
		ID: got.ID, Name: got.Name, Email: got.Email, Mobile: got.Mobile,
		Role: got.Role, Status: got.Status, EmailVerified: got.EmailVerified, LastLogin: got.LastLogin,
	}
}
