package oidc

// Package oidc implements the AuthProvider port against Keycloak using
// OIDC discovery and OAuth2.

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	domainauth "github.com/cscs/firecrest-ui-api/internal/domain/auth"
	"github.com/cscs/firecrest-ui-api/internal/ports"
	"golang.org/x/oauth2"
)

// expirySkew is subtracted from every token lifetime so a token is treated
// as expired slightly before the provider would reject it.
const expirySkew = 30 * time.Second

// ErrRefreshFailed indicates the token-refresh grant was rejected by the
// identity provider. Callers force a logout when they see it.
var ErrRefreshFailed = errors.New("token refresh rejected by identity provider")

// Provider implements ports.AuthProvider using OIDC/OAuth2 against Keycloak.
type Provider struct {
	config     *oauth2.Config
	tokenURL   string
	logoutURL  string
	httpClient *http.Client

	verifier *gooidc.IDTokenVerifier
}

// ProviderConfig holds configuration for the OIDC provider.
type ProviderConfig struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	LogoutURL    string
	HTTPClient   *http.Client // Optional, defaults to a 30s-timeout client
}

// NewProvider creates a new OIDC provider. It performs a single discovery
// fetch against the issuer.
func NewProvider(ctx context.Context, config ProviderConfig) (*Provider, error) {
	if config.IssuerURL == "" {
		return nil, errors.New("issuer URL is required")
	}
	if config.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if config.ClientSecret == "" {
		return nil, errors.New("client secret is required")
	}
	if config.RedirectURL == "" {
		return nil, errors.New("redirect URL is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
	op, err := gooidc.NewProvider(ctx, strings.TrimSuffix(config.IssuerURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}

	endpoint := op.Endpoint()
	return &Provider{
		config: &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{gooidc.ScopeOpenID, "profile", "email"},
			Endpoint:     endpoint,
		},
		tokenURL:   endpoint.TokenURL,
		logoutURL:  config.LogoutURL,
		httpClient: httpClient,
		verifier:   op.Verifier(&gooidc.Config{ClientID: config.ClientID}),
	}, nil
}

func (p *Provider) Begin(_ context.Context, in ports.BeginInput) (string, string, string, error) {
	if in.RedirectURL == "" {
		return "", "", "", errors.New("redirect URL is required")
	}

	state, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate state: %w", err)
	}
	nonce, err := generateRandomString(32)
	if err != nil {
		return "", "", "", fmt.Errorf("generate nonce: %w", err)
	}

	authURL := p.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("nonce", nonce),
		oauth2.SetAuthURLParam("response_type", "code"),
	)
	return authURL, state, nonce, nil
}

func (p *Provider) Exchange(ctx context.Context, in ports.ExchangeInput) (ports.LoginResult, error) {
	if in.Code == "" {
		return ports.LoginResult{}, errors.New("authorization code is required")
	}
	if in.State == "" {
		return ports.LoginResult{}, errors.New("state is required")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	token, err := p.config.Exchange(ctx, in.Code)
	if err != nil {
		return ports.LoginResult{}, fmt.Errorf("exchange code for token: %w", err)
	}

	user, err := p.extractUser(ctx, token, in.Nonce)
	if err != nil {
		return ports.LoginResult{}, err
	}

	expiresAt := time.Now().Add(time.Hour)
	if !token.Expiry.IsZero() {
		expiresAt = token.Expiry
	}

	return ports.LoginResult{
		User: user,
		Tokens: domainauth.TokenSet{
			AccessToken:    token.AccessToken,
			RefreshToken:   token.RefreshToken,
			ExpirationDate: expiresAt.Add(-expirySkew),
		},
	}, nil
}

// Refresh performs a refresh_token grant against the token endpoint. The new
// expiration is now + expires_in − skew. Non-2xx responses map to
// ErrRefreshFailed.
func (p *Provider) Refresh(ctx context.Context, refreshToken string) (domainauth.TokenSet, error) {
	if refreshToken == "" {
		return domainauth.TokenSet{}, fmt.Errorf("%w: missing refresh token", ErrRefreshFailed)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", p.config.ClientID)
	form.Set("client_secret", p.config.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("build refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("refresh request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("read refresh response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domainauth.TokenSet{}, fmt.Errorf("%w: status %d", ErrRefreshFailed, resp.StatusCode)
	}

	return parseRefreshResponse(body, time.Now())
}

// LogoutURL returns the IdP end-session URL for forced logouts.
func (p *Provider) LogoutURL() string { return p.logoutURL }

// refreshResponse is the token endpoint's refresh grant payload.
type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// parseRefreshResponse decodes a refresh grant payload and computes the new
// expiration from the given clock reading.
func parseRefreshResponse(body []byte, now time.Time) (domainauth.TokenSet, error) {
	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return domainauth.TokenSet{}, fmt.Errorf("decode refresh response: %w", err)
	}
	if rr.AccessToken == "" {
		return domainauth.TokenSet{}, fmt.Errorf("%w: empty access token", ErrRefreshFailed)
	}
	return domainauth.TokenSet{
		AccessToken:    rr.AccessToken,
		RefreshToken:   rr.RefreshToken,
		ExpirationDate: now.Add(time.Duration(rr.ExpiresIn) * time.Second).Add(-expirySkew),
	}, nil
}

// keycloakClaims is the subset of Keycloak profile claims the dashboard uses.
type keycloakClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Nonce             string `json:"nonce"`
}

func (p *Provider) extractUser(ctx context.Context, tok *oauth2.Token, expectedNonce string) (domainauth.AuthUser, error) {
	rawID, ok := tok.Extra("id_token").(string)
	if !ok || rawID == "" {
		return domainauth.AuthUser{}, errors.New("missing id_token in token response")
	}

	idTok, err := p.verifier.Verify(ctx, rawID)
	if err != nil {
		return domainauth.AuthUser{}, fmt.Errorf("verify id_token: %w", err)
	}

	var claims keycloakClaims
	if claimsErr := idTok.Claims(&claims); claimsErr != nil {
		return domainauth.AuthUser{}, fmt.Errorf("parse id_token claims: %w", claimsErr)
	}
	if expectedNonce != "" && claims.Nonce != expectedNonce {
		return domainauth.AuthUser{}, errors.New("invalid nonce")
	}

	return mapClaims(claims), nil
}

// mapClaims maps Keycloak profile claims into the domain user shape.
func mapClaims(c keycloakClaims) domainauth.AuthUser {
	return domainauth.AuthUser{
		Username:  c.PreferredUsername,
		Email:     c.Email,
		FirstName: c.GivenName,
		LastName:  c.FamilyName,
	}
}

// generateRandomString generates a cryptographically secure URL-safe random
// string of exact length.
func generateRandomString(length int) (string, error) {
	if length <= 0 {
		return "", nil
	}
	nBytes := (length*3 + 3) / 4
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	s := base64.RawURLEncoding.EncodeToString(b)
	if len(s) < length {
		extra := make([]byte, 1)
		if _, err := rand.Read(extra); err != nil {
			return "", err
		}
		s += base64.RawURLEncoding.EncodeToString(extra)
	}
	return s[:length], nil
}
