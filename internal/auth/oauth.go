package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ansolan/armclient/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenAvailable     = errors.New("no token available")
	ErrNoValidCredentials   = errors.New("no valid credentials available")
	ErrTokenRequestRejected = errors.New("token request rejected")
)

// OAuth2Config holds the credentials used to acquire tokens.
type OAuth2Config struct {
	// TokenURL is the token endpoint
	TokenURL string

	// ClientID and ClientSecret for the client credentials grant
	ClientID     string
	ClientSecret string

	// Scope requested with the token, e.g. "https://management.azure.com/.default"
	Scope string

	// AccessToken is an optional pre-acquired token
	AccessToken string

	// HTTPClient overrides the default client used for token requests
	HTTPClient *http.Client
}

// OAuth2TokenManager acquires and refreshes tokens using the client
// credentials grant.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	client *http.Client
	mu     sync.Mutex
}

// NewOAuth2TokenManager creates a new OAuth2 token manager.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	}

	manager := &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
		client: client,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken: config.AccessToken,
			TokenType:   "Bearer",
		})
	}

	return manager
}

// NewClientCredentialsTokenManager builds a manager for an AAD-style
// authority. The token endpoint is {authority}/{tenant}/oauth2/v2.0/token and
// the scope is the resource endpoint with "/.default" appended.
func NewClientCredentialsTokenManager(authority, tenantID, clientID, clientSecret, resource string) *OAuth2TokenManager {
	authority = strings.TrimSuffix(authority, "/")
	resource = strings.TrimSuffix(resource, "/")

	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     authority + "/" + tenantID + "/oauth2/v2.0/token",
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scope:        resource + "/.default",
	})
}

// GetToken returns a valid access token, acquiring a new one if the current
// token is missing or expiring.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	token = m.store.Get()
	if token == nil {
		return "", ErrNoTokenAvailable
	}

	return token.AccessToken, nil
}

// RefreshToken forces acquisition of a new token.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		return ErrNoValidCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.config.ClientID)
	form.Set("client_secret", m.config.ClientSecret)

	if m.config.Scope != "" {
		form.Set("scope", m.config.Scope)
	}

	token, err := m.requestToken(ctx, form)
	if err != nil {
		return err
	}

	m.store.Set(token)

	return nil
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// tokenError is the error payload returned by the token endpoint.
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// requestToken posts the form to the token endpoint and decodes the result.
func (m *OAuth2TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var terr tokenError
		if json.Unmarshal(body, &terr) == nil && terr.Error != "" {
			return nil, fmt.Errorf("%w: %s: %s", ErrTokenRequestRejected, terr.Error, terr.ErrorDescription)
		}

		return nil, fmt.Errorf("%w: status %d", ErrTokenRequestRejected, resp.StatusCode)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, ErrNoTokenAvailable
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return &token, nil
}
