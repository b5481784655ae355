package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/internal/infrastructure/identity"
	"mutitpay-storefront/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	err       error
	account   identity.Account
	resetTo   string
	googleTok string
	signUps   int
}

func (f *fakeProvider) result() (*identity.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	acc := f.account
	return &acc, nil
}

func (f *fakeProvider) SignInWithPassword(ctx context.Context, email, password string) (*identity.Account, error) {
	return f.result()
}

func (f *fakeProvider) SignUp(ctx context.Context, email, password, displayName string) (*identity.Account, error) {
	f.signUps++
	return f.result()
}

func (f *fakeProvider) SendPasswordReset(ctx context.Context, email string) error {
	f.resetTo = email
	return f.err
}

func (f *fakeProvider) SignInWithGoogle(ctx context.Context, googleIDToken string) (*identity.Account, error) {
	f.googleTok = googleIDToken
	return f.result()
}

func (f *fakeProvider) Refresh(ctx context.Context, refreshToken string) (*identity.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &identity.Account{UID: f.account.UID, IDToken: "fresh-id", RefreshToken: "fresh-refresh", ExpiresIn: 30 * time.Minute}, nil
}

func (f *fakeProvider) Lookup(ctx context.Context, idToken string) (*identity.Account, error) {
	acc := f.account
	acc.IDToken = idToken
	return &acc, nil
}

type fakeGoogle struct {
	err error
}

func (g *fakeGoogle) Exchange(ctx context.Context, code string) (*identity.GoogleIdentity, error) {
	return g.Verify(ctx, "raw-from-"+code)
}

func (g *fakeGoogle) Verify(ctx context.Context, raw string) (*identity.GoogleIdentity, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &identity.GoogleIdentity{Subject: "g-1", Email: "ana@gmail.com", Name: "Ana", RawIDToken: raw}, nil
}

func newAuth(p *fakeProvider, g GoogleVerifier) *AuthUsecase {
	utils.SetSecret("test-secret")
	isAdmin := func(email string) bool { return email == "owner@mutitpay.com" }
	return NewAuthUsecase(p, g, isAdmin, time.Hour)
}

func providerErr(code string) error {
	return fmt.Errorf("sign in: %w", &identity.ProviderError{Code: code})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("empty fields", func(t *testing.T) {
		_, err := newAuth(&fakeProvider{}, nil).SignIn(ctx, " ", "x")
		ve, ok := domain.IsValidation(err)
		require.True(t, ok)
		assert.Equal(t, domain.MsgFillAllFields, ve.Message)
	})

	t.Run("provider messages", func(t *testing.T) {
		tests := []struct {
			code string
			want string
		}{
			{domain.AuthUserNotFound, "Usuário não encontrado"},
			{domain.AuthWrongPassword, "Senha incorreta"},
			{domain.AuthInvalidEmail, "Email inválido"},
			{domain.AuthUserDisabled, "Conta desabilitada"},
			{domain.AuthTooManyRequests, "Muitas tentativas. Tente novamente mais tarde"},
			{domain.AuthInvalidCredential, domain.MsgLoginFailed},
		}
		for _, tt := range tests {
			_, err := newAuth(&fakeProvider{err: providerErr(tt.code)}, nil).SignIn(ctx, "a@b.com", "secret")
			var aerr *AuthError
			require.ErrorAs(t, err, &aerr)
			assert.Equal(t, tt.want, aerr.Message, tt.code)
		}
	})

	t.Run("transport failure uses default", func(t *testing.T) {
		_, err := newAuth(&fakeProvider{err: domain.ErrBackendUnavailable}, nil).SignIn(ctx, "a@b.com", "secret")
		assert.EqualError(t, err, domain.MsgLoginFailed)
		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})

	t.Run("session token", func(t *testing.T) {
		p := &fakeProvider{account: identity.Account{UID: "u1", Email: "owner@mutitpay.com", DisplayName: "Dona", IDToken: "id-1", RefreshToken: "r-1", ExpiresIn: time.Hour}}
		sess, err := newAuth(p, nil).SignIn(ctx, "owner@mutitpay.com", "secret")
		require.NoError(t, err)

		assert.Equal(t, domain.RoleAdmin, sess.User.Role)
		assert.Equal(t, "r-1", sess.RefreshToken)
		assert.Equal(t, int64(3600), sess.ExpiresIn)

		claims, err := utils.ValidateJWT(sess.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, "id-1", claims.ProviderToken)
		assert.Equal(t, domain.RoleAdmin, claims.Role)
	})
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name                  string
		display, pass, repeat string
		want                  string
	}{
		{name: "missing name", display: "", pass: "secret1", repeat: "secret1", want: domain.MsgFillAllFields},
		{name: "mismatch", display: "Ana", pass: "secret1", repeat: "secret2", want: domain.MsgPasswordMismatch},
		{name: "too short", display: "Ana", pass: "abc", repeat: "abc", want: domain.MsgPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakeProvider{}
			_, err := newAuth(p, nil).SignUp(ctx, tt.display, "ana@b.com", tt.pass, tt.repeat)
			ve, ok := domain.IsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, ve.Message)
			assert.Zero(t, p.signUps, "no provider call on local validation failure")
		})
	}

	t.Run("email in use", func(t *testing.T) {
		p := &fakeProvider{err: providerErr(domain.AuthEmailInUse)}
		_, err := newAuth(p, nil).SignUp(ctx, "Ana", "ana@b.com", "secret1", "secret1")
		assert.EqualError(t, err, "Este email já está em uso")
	})

	t.Run("unknown provider code", func(t *testing.T) {
		p := &fakeProvider{err: providerErr("auth/internal-error")}
		_, err := newAuth(p, nil).SignUp(ctx, "Ana", "ana@b.com", "secret1", "secret1")
		assert.EqualError(t, err, domain.MsgRegisterFailed)
	})

	t.Run("customer session", func(t *testing.T) {
		p := &fakeProvider{account: identity.Account{UID: "u2", Email: "ana@b.com", DisplayName: "Ana", IDToken: "id", ExpiresIn: time.Hour}}
		sess, err := newAuth(p, nil).SignUp(ctx, "Ana", "ana@b.com", "secret1", "secret1")
		require.NoError(t, err)
		assert.Equal(t, domain.RoleCustomer, sess.User.Role)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	p := &fakeProvider{}
	require.NoError(t, newAuth(p, nil).ResetPassword(ctx, " ana@b.com "))
	assert.Equal(t, "ana@b.com", p.resetTo)

	err := newAuth(&fakeProvider{err: providerErr(domain.AuthUserNotFound)}, nil).ResetPassword(ctx, "x@b.com")
	assert.EqualError(t, err, "Usuário não encontrado")
}

func TestGoogleSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		_, err := newAuth(&fakeProvider{}, nil).GoogleSignIn(ctx, "code", "")
		assert.ErrorIs(t, err, identity.ErrGoogleDisabled)
		assert.EqualError(t, err, domain.MsgGoogleFailed)
	})

	t.Run("code flow fills profile from google", func(t *testing.T) {
		p := &fakeProvider{account: identity.Account{UID: "u3", IDToken: "fb-id", ExpiresIn: time.Hour}}
		sess, err := newAuth(p, &fakeGoogle{}).GoogleSignIn(ctx, "abc", "")
		require.NoError(t, err)
		assert.Equal(t, "raw-from-abc", p.googleTok)
		assert.Equal(t, "ana@gmail.com", sess.User.Email)
		assert.Equal(t, "Ana", sess.User.DisplayName)
	})

	t.Run("verification failure", func(t *testing.T) {
		g := &fakeGoogle{err: &identity.ProviderError{Code: domain.AuthInvalidCredential}}
		_, err := newAuth(&fakeProvider{}, g).GoogleSignIn(ctx, "", "bad-token")
		assert.EqualError(t, err, domain.MsgGoogleFailed)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	_, err := newAuth(&fakeProvider{}, nil).Refresh(ctx, "")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	_, err = newAuth(&fakeProvider{err: providerErr(domain.AuthTokenExpired)}, nil).Refresh(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrSessionExpired)

	p := &fakeProvider{account: identity.Account{UID: "u1", Email: "ana@b.com", DisplayName: "Ana"}}
	sess, err := newAuth(p, nil).Refresh(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, "fresh-refresh", sess.RefreshToken)
	assert.Equal(t, "ana@b.com", sess.User.Email)
	// the session never outlives the provider token
	assert.Equal(t, int64(1800), sess.ExpiresIn)
	claims, err := utils.ValidateJWT(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "fresh-id", claims.ProviderToken)
}
