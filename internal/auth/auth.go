package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const defaultIdentityURL = "https://identitytoolkit.googleapis.com/v1"

// ErrNoCredentials is returned when neither a static token nor Firebase
// credentials are configured.
var ErrNoCredentials = errors.New("no document store credentials configured")

// Credentials selects how requests to the document store are authorized.
// A static access token takes precedence over Firebase password sign-in.
type Credentials struct {
	AccessToken string
	APIKey      string
	Email       string
	Password    string
}

// Configured reports whether any credential is usable.
func (c Credentials) Configured() bool {
	return c.AccessToken != "" || (c.APIKey != "" && c.Email != "" && c.Password != "")
}

// NewTokenSource returns a cached token source for the given credentials.
func NewTokenSource(ctx context.Context, creds Credentials, client *http.Client) (oauth2.TokenSource, error) {
	switch {
	case creds.AccessToken != "":
		return Static(creds.AccessToken), nil
	case creds.APIKey != "" && creds.Email != "" && creds.Password != "":
		return oauth2.ReuseTokenSource(nil, FirebasePassword(ctx, creds, client)), nil
	default:
		return nil, ErrNoCredentials
	}
}

// Static wraps a pre-issued bearer token, such as a short-lived Google Cloud
// access token minted for a service account.
func Static(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

// PasswordSource signs in to Firebase Authentication with email and password
// and yields the resulting ID token.
type PasswordSource struct {
	ctx      context.Context
	apiKey   string
	email    string
	password string
	baseURL  string
	client   *http.Client
	now      func() time.Time
}

// FirebasePassword creates a PasswordSource. Wrap it with
// oauth2.ReuseTokenSource to avoid signing in on every request.
func FirebasePassword(ctx context.Context, creds Credentials, client *http.Client) *PasswordSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &PasswordSource{
		ctx:      ctx,
		apiKey:   creds.APIKey,
		email:    creds.Email,
		password: creds.Password,
		baseURL:  defaultIdentityURL,
		client:   client,
		now:      time.Now,
	}
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken   string `json:"idToken"`
	ExpiresIn string `json:"expiresIn"`
}

// Token implements oauth2.TokenSource.
func (s *PasswordSource) Token() (*oauth2.Token, error) {
	payload, err := json.Marshal(signInRequest{
		Email:             s.email,
		Password:          s.password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling sign-in request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/accounts:signInWithPassword?key=%s", strings.TrimRight(s.baseURL, "/"), url.QueryEscape(s.apiKey))
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firebase auth: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading sign-in response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("firebase auth failed (status %d): %s", resp.StatusCode, string(body))
	}

	var out signInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("parsing sign-in response: %w", err)
	}
	if out.IDToken == "" {
		return nil, errors.New("firebase auth: response has no idToken")
	}

	tok := &oauth2.Token{AccessToken: out.IDToken, TokenType: "Bearer"}
	if secs, err := strconv.Atoi(out.ExpiresIn); err == nil && secs > 0 {
		tok.Expiry = s.now().Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}
