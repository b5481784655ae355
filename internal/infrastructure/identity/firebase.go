package identity

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mutitpay-storefront/internal/domain"
	"mutitpay-storefront/pkg/logger"

	"github.com/goccy/go-json"
)

// ProviderError is a failed identity provider call translated to an auth/* code
type ProviderError struct {
	Code   string
	Reason string
}

func (e *ProviderError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("identity provider: %s (%s)", e.Code, e.Reason)
	}
	return "identity provider: " + e.Code
}

// restCodes maps Identity Toolkit REST messages to the SDK auth/* codes
var restCodes = map[string]string{
	"EMAIL_NOT_FOUND":                domain.AuthUserNotFound,
	"USER_NOT_FOUND":                 domain.AuthUserNotFound,
	"INVALID_PASSWORD":               domain.AuthWrongPassword,
	"INVALID_LOGIN_CREDENTIALS":      domain.AuthInvalidCredential,
	"INVALID_IDP_RESPONSE":           domain.AuthInvalidCredential,
	"USER_DISABLED":                  domain.AuthUserDisabled,
	"TOO_MANY_ATTEMPTS_TRY_LATER":    domain.AuthTooManyRequests,
	"EMAIL_EXISTS":                   domain.AuthEmailInUse,
	"INVALID_EMAIL":                  domain.AuthInvalidEmail,
	"MISSING_EMAIL":                  domain.AuthInvalidEmail,
	"WEAK_PASSWORD":                  domain.AuthWeakPassword,
	"OPERATION_NOT_ALLOWED":          domain.AuthOperationNotAllowed,
	"PASSWORD_LOGIN_DISABLED":        domain.AuthOperationNotAllowed,
	"TOKEN_EXPIRED":                  domain.AuthTokenExpired,
	"INVALID_REFRESH_TOKEN":          domain.AuthTokenExpired,
	"INVALID_ID_TOKEN":               domain.AuthTokenExpired,
	"CREDENTIAL_TOO_OLD_LOGIN_AGAIN": domain.AuthTokenExpired,
}

// CodeFor translates a REST error message such as "WEAK_PASSWORD : Password should be..."
func CodeFor(message string) string {
	key := strings.TrimSpace(message)
	if i := strings.IndexAny(key, " :"); i >= 0 {
		key = key[:i]
	}
	if code, ok := restCodes[key]; ok {
		return code
	}
	return "auth/internal-error"
}

// Account is the provider identity returned by every sign-in flavour
type Account struct {
	UID          string
	Email        string
	DisplayName  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Firebase calls the Identity Toolkit and Secure Token REST APIs
type Firebase struct {
	apiKey      string
	identityURL string
	secureToken string
	continueURL string
	http        *http.Client
}

func NewFirebase(apiKey, identityURL, secureTokenURL, continueURL string, hc *http.Client) *Firebase {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Firebase{
		apiKey:      apiKey,
		identityURL: strings.TrimSuffix(identityURL, "/"),
		secureToken: strings.TrimSuffix(secureTokenURL, "/"),
		continueURL: continueURL,
		http:        hc,
	}
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	FullName     string `json:"fullName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

func (r accountResponse) account() *Account {
	name := r.DisplayName
	if name == "" {
		name = r.FullName
	}
	return &Account{
		UID:          r.LocalID,
		Email:        r.Email,
		DisplayName:  name,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
		ExpiresIn:    seconds(r.ExpiresIn),
	}
}

func seconds(s string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return time.Hour
	}
	return time.Duration(n) * time.Second
}

func (f *Firebase) SignInWithPassword(ctx context.Context, email, password string) (*Account, error) {
	var out accountResponse
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := f.post(ctx, "accounts:signInWithPassword", body, &out); err != nil {
		return nil, err
	}
	return out.account(), nil
}

// SignUp creates the account and, when given, sets its display name
func (f *Firebase) SignUp(ctx context.Context, email, password, displayName string) (*Account, error) {
	var out accountResponse
	body := map[string]any{"email": email, "password": password, "returnSecureToken": true}
	if err := f.post(ctx, "accounts:signUp", body, &out); err != nil {
		return nil, err
	}
	acc := out.account()
	if displayName == "" {
		return acc, nil
	}

	var upd accountResponse
	body = map[string]any{"idToken": acc.IDToken, "displayName": displayName, "returnSecureToken": true}
	if err := f.post(ctx, "accounts:update", body, &upd); err != nil {
		// sign-up already succeeded, keep the account without a name
		logger.WithContext(ctx).Warn().Err(err).Str("uid", acc.UID).Msg("Failed to set display name")
		return acc, nil
	}
	acc.DisplayName = displayName
	if upd.IDToken != "" {
		acc.IDToken = upd.IDToken
		acc.RefreshToken = upd.RefreshToken
	}
	return acc, nil
}

func (f *Firebase) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]any{"requestType": "PASSWORD_RESET", "email": email}
	if f.continueURL != "" {
		body["continueUrl"] = f.continueURL
	}
	return f.post(ctx, "accounts:sendOobCode", body, nil)
}

// SignInWithGoogle exchanges a verified Google ID token for a provider session
func (f *Firebase) SignInWithGoogle(ctx context.Context, googleIDToken string) (*Account, error) {
	requestURI := f.continueURL
	if requestURI == "" {
		requestURI = "http://localhost"
	}
	postBody := url.Values{"id_token": {googleIDToken}, "providerId": {"google.com"}}.Encode()
	body := map[string]any{
		"postBody":            postBody,
		"requestUri":          requestURI,
		"returnSecureToken":   true,
		"returnIdpCredential": true,
	}
	var out accountResponse
	if err := f.post(ctx, "accounts:signInWithIdp", body, &out); err != nil {
		return nil, err
	}
	return out.account(), nil
}

// Refresh trades a provider refresh token for a fresh ID token
func (f *Firebase) Refresh(ctx context.Context, refreshToken string) (*Account, error) {
	form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refreshToken}}
	endpoint := f.secureToken + "/token?key=" + url.QueryEscape(f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := f.roundTrip(req, "token", &out); err != nil {
		return nil, err
	}
	return &Account{
		UID:          out.UserID,
		IDToken:      out.IDToken,
		RefreshToken: out.RefreshToken,
		ExpiresIn:    seconds(out.ExpiresIn),
	}, nil
}

// Lookup returns the profile behind an ID token
func (f *Firebase) Lookup(ctx context.Context, idToken string) (*Account, error) {
	var out struct {
		Users []accountResponse `json:"users"`
	}
	if err := f.post(ctx, "accounts:lookup", map[string]any{"idToken": idToken}, &out); err != nil {
		return nil, err
	}
	if len(out.Users) == 0 {
		return nil, &ProviderError{Code: domain.AuthUserNotFound}
	}
	acc := out.Users[0].account()
	acc.IDToken = idToken
	return acc, nil
}

func (f *Firebase) post(ctx context.Context, method string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	endpoint := f.identityURL + "/" + method + "?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return f.roundTrip(req, method, out)
}

func (f *Firebase) roundTrip(req *http.Request, method string, out any) error {
	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		logger.BackendCall(req.Context(), req.Method, method, 0, time.Since(start), err)
		return fmt.Errorf("identity %s: %w: %v", method, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("identity %s: read body: %w", method, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(data, &envelope)
		perr := &ProviderError{Code: CodeFor(envelope.Error.Message), Reason: envelope.Error.Message}
		logger.BackendCall(req.Context(), req.Method, method, resp.StatusCode, time.Since(start), perr)
		return perr
	}

	logger.BackendCall(req.Context(), req.Method, method, resp.StatusCode, time.Since(start), nil)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("identity %s: decode: %w", method, err)
	}
	return nil
}
