package identity

import (
	"context"
	"errors"
	"fmt"

	"mutitpay-storefront/internal/domain"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const (
	googleIssuer   = "https://accounts.google.com"
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// GoogleIdentity is the verified content of a Google ID token
type GoogleIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	RawIDToken    string
}

type idTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Google handles the authorization-code flow of the storefront Google button
type Google struct {
	oauth    *oauth2.Config
	verifier idTokenVerifier
}

// NewGoogle discovers the Google OIDC provider. It needs network access.
func NewGoogle(ctx context.Context, clientID, clientSecret, redirectURL string) (*Google, error) {
	if clientID == "" || clientSecret == "" {
		return nil, ErrGoogleDisabled
	}
	provider, err := oidc.NewProvider(ctx, googleIssuer)
	if err != nil {
		return nil, fmt.Errorf("discover google oidc: %w", err)
	}
	return newGoogle(clientID, clientSecret, redirectURL, provider.Endpoint(), provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

func newGoogle(clientID, clientSecret, redirectURL string, endpoint oauth2.Endpoint, v idTokenVerifier) *Google {
	if endpoint.TokenURL == "" {
		endpoint = oauth2.Endpoint{AuthURL: googleAuthURL, TokenURL: googleTokenURL, AuthStyle: oauth2.AuthStyleInParams}
	}
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			// "postmessage" is the redirect the browser popup flow uses
			RedirectURL: redirectURL,
			Scopes:      []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint:    endpoint,
		},
		verifier: v,
	}
}

// AuthCodeURL starts the redirect variant of the flow
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for tokens and verifies the ID token
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleIdentity, error) {
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, &ProviderError{Code: domain.AuthInvalidCredential, Reason: err.Error()}
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return nil, &ProviderError{Code: domain.AuthInvalidCredential, Reason: "token response without id_token"}
	}
	return g.Verify(ctx, raw)
}

// Verify checks a Google ID token (signature, issuer, audience, expiry)
func (g *Google) Verify(ctx context.Context, rawIDToken string) (*GoogleIdentity, error) {
	idt, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, &ProviderError{Code: domain.AuthInvalidCredential, Reason: err.Error()}
	}
	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
	}
	if err := idt.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode google claims: %w", err)
	}
	return &GoogleIdentity{
		Subject:       idt.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
		RawIDToken:    rawIDToken,
	}, nil
}
