package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Niyatinagar/Quickpick/internal/shared"
)

// Mailer delivers transactional mail. Implementations enqueue for async
// delivery; failures are logged by the service and never fail the operation.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// ServiceConfig carries the tunables for the auth business rules.
type ServiceConfig struct {
	BaseURL         string
	OTPTTL          time.Duration
	ResetAuthWindow time.Duration
}

// Service wraps authentication business rules. All operations fail fast:
// the first invariant violation is raised before any mutation.
type Service struct {
	repo   Repository
	tokens *TokenIssuer
	mailer Mailer
	logger *slog.Logger
	cfg    ServiceConfig
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenIssuer, mailer Mailer, logger *slog.Logger, cfg ServiceConfig) *Service {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = time.Hour
	}
	if cfg.ResetAuthWindow <= 0 {
		cfg.ResetAuthWindow = 15 * time.Minute
	}
	return &Service{repo: repo, tokens: tokens, mailer: mailer, logger: logger, cfg: cfg}
}

// TokenPair bundles the two credentials minted at login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginResult is the caller-facing login payload.
type LoginResult struct {
	Tokens TokenPair `json:"tokens"`
	User   Profile   `json:"user"`
}

// Register creates an unverified account and mails a verification link.
func (s *Service) Register(ctx context.Context, name, email, password string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Profile{}, fmt.Errorf("%w: name, email and password are required", shared.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Profile{}, err
	}

	user := &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         RoleUser,
		Status:       StatusActive,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return Profile{}, err
	}

	link := fmt.Sprintf("%s/api/auth/verify-email?code=%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.QueryEscape(user.ID.String()))
	s.sendMail(ctx, user.Email, "Verify your Quickpick account",
		fmt.Sprintf("<p>Hi %s,</p><p>Confirm your email address by opening <a href=%q>this link</a>.</p>", user.Name, link))

	return ProfileOf(user), nil
}

// Login verifies credentials and mints both tokens. The refresh token is
// persisted on the user record, replacing any prior value.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, fmt.Errorf("%w: email and password are required", shared.ErrBadRequest)
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == shared.ErrNotFound {
			return LoginResult{}, shared.ErrNotRegistered
		}
		return LoginResult{}, err
	}
	if user.Status != StatusActive {
		return LoginResult{}, shared.ErrAccountInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, shared.ErrInvalidCredentials
	}

	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return LoginResult{}, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return LoginResult{}, err
	}
	now := time.Now().UTC()
	if err := s.repo.SetLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, err
	}
	user.LastLogin = &now

	return LoginResult{
		Tokens: TokenPair{AccessToken: access, RefreshToken: refresh},
		User:   ProfileOf(user),
	}, nil
}

// VerifyEmail marks the account as verified. The code is the user id mailed
// at registration. Re-verifying an already verified account is a no-op.
func (s *Service) VerifyEmail(ctx context.Context, code string) error {
	if code == "" {
		return fmt.Errorf("%w: verification code is required", shared.ErrBadRequest)
	}
	id, err := uuid.Parse(code)
	if err != nil {
		return shared.ErrInvalidCode
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return shared.ErrInvalidCode
		}
		return err
	}
	if user.EmailVerified {
		return nil
	}
	return s.repo.SetEmailVerified(ctx, user.ID)
}

// RefreshTokens validates a refresh token against both its signature and the
// persisted value, then mints a fresh access token.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == shared.ErrNotFound {
			return "", shared.ErrInvalidToken
		}
		return "", err
	}
	if user.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		return "", shared.ErrInvalidToken
	}
	return s.tokens.IssueAccessToken(user.ID)
}

// Logout clears the persisted refresh token, invalidating it server-side.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.repo.SetRefreshToken(ctx, userID, nil)
}

// ForgotPassword stores a fresh OTP and mails it. Any in-flight OTP for the
// user is overwritten; last write wins.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", shared.ErrBadRequest)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp := GenerateOTP()
	expiry := time.Now().UTC().Add(s.cfg.OTPTTL)
	if err := s.repo.SetOTP(ctx, user.ID, otp, expiry); err != nil {
		return err
	}

	s.sendMail(ctx, user.Email, "Your Quickpick password reset code",
		fmt.Sprintf("<p>Hi %s,</p><p>Your one-time code is <strong>%s</strong>. It expires in %d minutes.</p>",
			user.Name, otp, int(s.cfg.OTPTTL.Minutes())))
	return nil
}

// VerifyForgotPasswordOTP checks the submitted code. On success both OTP
// fields are cleared (single use) and a short reset window is opened.
func (s *Service) VerifyForgotPasswordOTP(ctx context.Context, email, otp string) error {
	email = normalizeEmail(email)
	if email == "" || otp == "" {
		return fmt.Errorf("%w: email and otp are required", shared.ErrBadRequest)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.ForgotPasswordOTP == nil || user.ForgotPasswordExpiry == nil {
		return shared.ErrInvalidOTP
	}
	if time.Now().UTC().After(*user.ForgotPasswordExpiry) {
		return shared.ErrOTPExpired
	}
	if subtle.ConstantTimeCompare([]byte(*user.ForgotPasswordOTP), []byte(otp)) != 1 {
		return shared.ErrInvalidOTP
	}
	until := time.Now().UTC().Add(s.cfg.ResetAuthWindow)
	return s.repo.ClearOTP(ctx, user.ID, &until)
}

// ResetPassword replaces the password. It requires the reset window opened
// by VerifyForgotPasswordOTP and consumes it.
func (s *Service) ResetPassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	email = normalizeEmail(email)
	if email == "" || newPassword == "" || confirmPassword == "" {
		return fmt.Errorf("%w: email and both passwords are required", shared.ErrBadRequest)
	}
	if newPassword != confirmPassword {
		return fmt.Errorf("%w: passwords do not match", shared.ErrBadRequest)
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.ResetAuthorizedUntil == nil || time.Now().UTC().After(*user.ResetAuthorizedUntil) {
		return shared.ErrResetNotAuthorized
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.SetPassword(ctx, user.ID, string(hash))
}

// UpdateInput carries a sparse profile update; nil fields are untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Mobile   *string
	Password *string
}

// UpdateDetails applies a sparse update to the user record. A password, when
// present, is re-hashed before the write.
func (s *Service) UpdateDetails(ctx context.Context, userID uuid.UUID, input UpdateInput) (Profile, error) {
	details := UpdateDetails{Name: input.Name, Mobile: input.Mobile}
	if input.Email != nil {
		normalized := normalizeEmail(*input.Email)
		if normalized == "" {
			return Profile{}, fmt.Errorf("%w: email must not be empty", shared.ErrBadRequest)
		}
		details.Email = &normalized
	}
	if input.Password != nil {
		if *input.Password == "" {
			return Profile{}, fmt.Errorf("%w: password must not be empty", shared.ErrBadRequest)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return Profile{}, err
		}
		hashed := string(hash)
		details.PasswordHash = &hashed
	}
	if err := s.repo.UpdateDetails(ctx, userID, details); err != nil {
		return Profile{}, err
	}
	return s.GetUserByID(ctx, userID)
}

// GetUserByID returns the redacted projection for a user.
func (s *Service) GetUserByID(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return ProfileOf(user), nil
}

// EmailOf resolves the email address for a user id.
func (s *Service) EmailOf(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

func (s *Service) sendMail(ctx context.Context, to, subject, body string) {
	if s.mailer == nil {
		return
	}
	if err := s.mailer.Send(ctx, to, subject, body); err != nil && s.logger != nil {
		s.logger.Warn("enqueue mail", slog.String("to", to), slog.Any("error", err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
