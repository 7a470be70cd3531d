// Package auth exchanges consumer credentials for bearer tokens and caches
// them for the OSCU client.
package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-logger/glog"

	"github.com/rezonia/etims-client/internal/model"
)

// Defaults for the token exchange
const (
	DefaultTokenTimeout = 15 * time.Second
	DefaultExpiresIn    = 3600 * time.Second
	ExpiryMargin        = 60 * time.Second
)

// Credentials identify the client to the identity endpoint
type Credentials struct {
	Environment    string
	ConsumerKey    string
	ConsumerSecret string
	TokenURL       string
}

// Validate checks that every field needed for an exchange is set
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.ConsumerKey) == "" {
		missing = append(missing, "consumer_key")
	}
	if strings.TrimSpace(c.ConsumerSecret) == "" {
		missing = append(missing, "consumer_secret")
	}
	if strings.TrimSpace(c.TokenURL) == "" {
		missing = append(missing, "token_url")
	}
	if len(missing) > 0 {
		return model.NewConfigurationError(model.ConfigKindSettings, "auth."+c.Environment,
			"missing "+strings.Join(missing, ", "))
	}
	return nil
}

// Token is an access token with its usable-until instant. The safety margin
// is already subtracted.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Fetcher obtains a fresh token
type Fetcher interface {
	Fetch(ctx context.Context) (Token, error)
}

// Authenticator performs the client-credentials exchange
type Authenticator struct {
	creds   Credentials
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
	logger  glog.Logger
}

// AuthenticatorOption configures an Authenticator
type AuthenticatorOption func(*Authenticator)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) AuthenticatorOption {
	return func(a *Authenticator) {
		if client != nil {
			a.client = client
		}
	}
}

// WithTimeout bounds each exchange
func WithTimeout(d time.Duration) AuthenticatorOption {
	return func(a *Authenticator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) AuthenticatorOption {
	return func(a *Authenticator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger glog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewAuthenticator creates an authenticator for creds
func NewAuthenticator(creds Credentials, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		creds:   creds,
		client:  http.DefaultClient,
		timeout: DefaultTokenTimeout,
		now:     time.Now,
		logger:  glog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type tokenResponse struct {
	AccessToken string          `json:"access_token"`
	ExpiresIn   json.RawMessage `json:"expires_in"`
}

// Fetch requests a new token. Every failure is a *model.AuthenticationError
// carrying the status and raw body when there was a response.
func (a *Authenticator) Fetch(ctx context.Context) (Token, error) {
	if err := a.creds.Validate(); err != nil {
		return Token{}, model.NewAuthenticationError("credentials not configured", 0, nil, err)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	u, err := url.Parse(a.creds.TokenURL)
	if err != nil {
		return Token{}, model.NewAuthenticationError("invalid token url", 0, nil, err)
	}
	q := u.Query()
	q.Set("grant_type", "client_credentials")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Token{}, model.NewAuthenticationError("build token request", 0, nil, err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(a.creds.ConsumerKey + ":" + a.creds.ConsumerSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Accept", "application/json")

	started := a.now()
	resp, err := a.client.Do(req)
	if err != nil {
		msg := "token request failed"
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "token request timed out"
		}
		a.logger.Warn(msg, "env", a.creds.Environment, "error", err)
		return Token{}, model.NewAuthenticationError(msg, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, model.NewAuthenticationError("read token response", resp.StatusCode, nil, err)
	}
	if resp.StatusCode != http.StatusOK {
		a.logger.Warn("token request rejected", "env", a.creds.Environment, "status", resp.StatusCode)
		return Token{}, model.NewAuthenticationError(string(body), resp.StatusCode, body, nil)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, model.NewAuthenticationError("invalid token response", resp.StatusCode, body, err)
	}
	if tr.AccessToken == "" {
		return Token{}, model.NewAuthenticationError("invalid token response", resp.StatusCode, body, nil)
	}

	ttl, err := parseExpiresIn(tr.ExpiresIn)
	if err != nil {
		return Token{}, model.NewAuthenticationError("invalid expires_in", resp.StatusCode, body, err)
	}

	if ttl <= 0 {
		return Token{}, model.NewAuthenticationError("token already expired", resp.StatusCode, body, nil)
	}

	token := Token{AccessToken: tr.AccessToken, ExpiresAt: started.Add(usableFor(ttl))}
	a.logger.Debug("access token issued", "env", a.creds.Environment, "expires_at", token.ExpiresAt)
	return token, nil
}

// usableFor subtracts the safety margin. Lifetimes at or below the margin
// keep half of their value so the token is still usable when returned.
func usableFor(ttl time.Duration) time.Duration {
	if ttl <= ExpiryMargin {
		return ttl / 2
	}
	return ttl - ExpiryMargin
}

// parseExpiresIn accepts a JSON number or numeric string; absent means one hour
func parseExpiresIn(raw json.RawMessage) (time.Duration, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return DefaultExpiresIn, nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expires_in %q is not a number", s)
	}
	return time.Duration(int64(secs)) * time.Second, nil
}
