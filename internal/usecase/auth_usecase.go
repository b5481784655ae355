package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/identity"
	"mutitpay-storefront/pkg/logger"
	"mutitpay-storefront/pkg/utils"
)

// IdentityProvider is the account backend behind the storefront login
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.Account, error)
	SignUp(ctx context.Context, email, password, displayName string) (*identity.Account, error)
	SendPasswordReset(ctx context.Context, email string) error
	SignInWithGoogle(ctx context.Context, googleIDToken string) (*identity.Account, error)
	Refresh(ctx context.Context, refreshToken string) (*identity.Account, error)
	Lookup(ctx context.Context, idToken string) (*identity.Account, error)
}

// GoogleVerifier resolves the Google button result into a verified identity
type GoogleVerifier interface {
	Exchange(ctx context.Context, code string) (*identity.GoogleIdentity, error)
	Verify(ctx context.Context, rawIDToken string) (*identity.GoogleIdentity, error)
}

// AuthError is a sign-in failure carrying the message shown on the form
type AuthError struct {
	Code    string
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

type AuthUsecase struct {
	provider      IdentityProvider
	google        GoogleVerifier
	isAdmin       func(email string) bool
	sessionExpiry time.Duration
}

// NewAuthUsecase wires the identity provider. google may be nil when Google
// sign-in is not configured.
func NewAuthUsecase(provider IdentityProvider, google GoogleVerifier, isAdmin func(string) bool, sessionExpiry time.Duration) *AuthUsecase {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &AuthUsecase{
		provider:      provider,
		google:        google,
		isAdmin:       isAdmin,
		sessionExpiry: sessionExpiry,
	}
}

// providerFailure maps a provider error through one of the message tables
func providerFailure(err error, table func(string) string) *AuthError {
	var perr *identity.ProviderError
	if errors.As(err, &perr) {
		return &AuthError{Code: perr.Code, Message: table(perr.Code), Err: err}
	}
	return &AuthError{Message: table(""), Err: err}
}

func (u *AuthUsecase) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.NewValidationError(domain.MsgFillAllFields)
	}
	acc, err := u.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("email", email).Msg("Login failed")
		return nil, providerFailure(err, domain.LoginErrorMessage)
	}
	return u.session(ctx, acc)
}

func (u *AuthUsecase) SignUp(ctx context.Context, displayName, email, password, confirm string) (*domain.AuthSession, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.TrimSpace(email)
	if displayName == "" || email == "" || password == "" || confirm == "" {
		return nil, domain.NewValidationError(domain.MsgFillAllFields)
	}
	if password != confirm {
		return nil, domain.NewValidationError(domain.MsgPasswordMismatch)
	}
	if utf8.RuneCountInString(password) < domain.MinPasswordLength {
		return nil, domain.NewValidationError(domain.MsgPasswordTooShort)
	}
	acc, err := u.provider.SignUp(ctx, email, password, displayName)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("email", email).Msg("Registration failed")
		return nil, providerFailure(err, domain.RegisterErrorMessage)
	}
	logger.WithContext(ctx).Info().Str("uid", acc.UID).Msg("Account created")
	return u.session(ctx, acc)
}

func (u *AuthUsecase) ResetPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.NewValidationError(domain.MsgFillAllFields)
	}
	if err := u.provider.SendPasswordReset(ctx, email); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("email", email).Msg("Password reset failed")
		return providerFailure(err, domain.ResetErrorMessage)
	}
	return nil
}

// GoogleSignIn finishes the Google button flow. It takes either the
// authorization code of the popup flow or an ID token credential.
func (u *AuthUsecase) GoogleSignIn(ctx context.Context, code, credential string) (*domain.AuthSession, error) {
	if u.google == nil {
		return nil, &AuthError{Message: domain.MsgGoogleFailed, Err: identity.ErrGoogleDisabled}
	}
	var (
		gid *identity.GoogleIdentity
		err error
	)
	switch {
	case code != "":
		gid, err = u.google.Exchange(ctx, code)
	case credential != "":
		gid, err = u.google.Verify(ctx, credential)
	default:
		return nil, domain.NewValidationError(domain.MsgGoogleFailed)
	}
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Msg("Google verification failed")
		return nil, &AuthError{Message: domain.MsgGoogleFailed, Err: err}
	}

	acc, err := u.provider.SignInWithGoogle(ctx, gid.RawIDToken)
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("email", gid.Email).Msg("Google sign-in rejected by provider")
		return nil, &AuthError{Message: domain.MsgGoogleFailed, Err: err}
	}
	if acc.Email == "" {
		acc.Email = gid.Email
	}
	if acc.DisplayName == "" {
		acc.DisplayName = gid.Name
	}
	return u.session(ctx, acc)
}

// Refresh trades the provider refresh token for a new session
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*domain.AuthSession, error) {
	if refreshToken == "" {
		return nil, domain.ErrSessionExpired
	}
	acc, err := u.provider.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrBackendUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionExpired, err)
	}
	profile, err := u.provider.Lookup(ctx, acc.IDToken)
	if err != nil {
		return nil, fmt.Errorf("lookup refreshed account: %w", err)
	}
	profile.RefreshToken = acc.RefreshToken
	profile.ExpiresIn = acc.ExpiresIn
	return u.session(ctx, profile)
}

func (u *AuthUsecase) roleFor(email string) string {
	if u.isAdmin(email) {
		return domain.RoleAdmin
	}
	return domain.RoleCustomer
}

// session issues the storefront token. It never outlives the provider ID
// token it carries.
func (u *AuthUsecase) session(ctx context.Context, acc *identity.Account) (*domain.AuthSession, error) {
	expiry := u.sessionExpiry
	if acc.ExpiresIn > 0 && (expiry <= 0 || acc.ExpiresIn < expiry) {
		expiry = acc.ExpiresIn
	}
	user := domain.User{
		ID:            acc.UID,
		Email:         acc.Email,
		DisplayName:   acc.DisplayName,
		Role:          u.roleFor(acc.Email),
		ProviderToken: acc.IDToken,
	}
	token, err := utils.GenerateJWT(utils.Claims{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.DisplayName,
		Role:          user.Role,
		ProviderToken: user.ProviderToken,
	}, expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session: %w", err)
	}
	logger.WithContext(ctx).Info().Str("uid", user.ID).Str("role", user.Role).Msg("Session issued")
	return &domain.AuthSession{
		User:         user,
		AccessToken:  token,
		RefreshToken: acc.RefreshToken,
		ExpiresIn:    int64(expiry / time.Second),
	}, nil
}
