package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/endpoint"
	"github.com/rezonia/etims-client/internal/model"
)

// DefaultTimeout bounds each business call
const DefaultTimeout = 30 * time.Second

// Tenant headers sent on every call except the bootstrap endpoint
const (
	HeaderTIN        = "tin"
	HeaderBranchID   = "bhfId"
	HeaderSessionKey = "cmcKey"
)

// TokenSource supplies bearer tokens
type TokenSource interface {
	GetToken(ctx context.Context, force bool) (auth.Token, error)
	Forget(ctx context.Context) error
}

// Tenant is the (tin, bhfId, cmcKey) triplet identifying the device
type Tenant struct {
	TIN        string
	BranchID   string
	SessionKey string
}

// Dispatcher resolves endpoints, attaches credentials and applies the
// single-refresh retry on auth failures
type Dispatcher struct {
	baseURL    string
	tokens     TokenSource
	endpoints  *endpoint.Table
	classifier *Classifier
	client     *http.Client
	timeout    time.Duration
	logger     glog.Logger

	mu     sync.RWMutex
	tenant Tenant
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithHTTPClient sets the HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithTimeout bounds each attempt
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger glog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithEndpoints replaces the endpoint table
func WithEndpoints(table *endpoint.Table) Option {
	return func(d *Dispatcher) {
		if table != nil {
			d.endpoints = table
		}
	}
}

// WithResultCodes replaces the result code table
func WithResultCodes(codes ResultCodes) Option {
	return func(d *Dispatcher) {
		d.classifier = NewClassifier(codes)
	}
}

// WithTenant sets the tenant triplet
func WithTenant(tenant Tenant) Option {
	return func(d *Dispatcher) {
		d.tenant = tenant
	}
}

// New creates a dispatcher for baseURL
func New(baseURL string, tokens TokenSource, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		tokens:     tokens,
		endpoints:  endpoint.DefaultTable(),
		classifier: NewClassifier(DefaultResultCodes()),
		client:     http.DefaultClient,
		timeout:    DefaultTimeout,
		logger:     glog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Endpoints returns the endpoint table
func (d *Dispatcher) Endpoints() *endpoint.Table {
	return d.endpoints
}

// Tenant returns the current tenant triplet
func (d *Dispatcher) Tenant() Tenant {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tenant
}

// SetSessionKey installs the cmcKey obtained from initialization
func (d *Dispatcher) SetSessionKey(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tenant.SessionKey = key
}

// Post sends payload as a JSON body
func (d *Dispatcher) Post(ctx context.Context, logical string, payload map[string]any) (*model.Outcome, error) {
	return d.Send(ctx, http.MethodPost, logical, payload)
}

// Get sends params as a query string
func (d *Dispatcher) Get(ctx context.Context, logical string, params map[string]any) (*model.Outcome, error) {
	return d.Send(ctx, http.MethodGet, logical, params)
}

// Send performs one logical call. The error is non-nil only for
// configuration problems; every remote result is an Outcome.
//
// An auth failure on the first attempt forgets the token, forces a refresh
// and resends once. The second attempt is returned whatever it is.
func (d *Dispatcher) Send(ctx context.Context, method, logical string, payload map[string]any) (*model.Outcome, error) {
	ep, err := d.endpoints.Resolve(logical)
	if err != nil {
		return nil, err
	}
	if method == "" {
		method = ep.Method
	}
	method = strings.ToUpper(method)

	requestID := uuid.NewString()
	logger := d.logger.WithContext(ctx)

	outcome, retry := d.attempt(ctx, logger, requestID, method, ep, payload, false)
	outcome.Attempts = 1

	if retry {
		logger.Info("auth failure, refreshing token and retrying",
			"request_id", requestID, "endpoint", ep.Name, "status", outcome.StatusCode)
		if err := d.tokens.Forget(ctx); err != nil {
			logger.Warn("forget token failed", "request_id", requestID, "error", err)
		}
		outcome, _ = d.attempt(ctx, logger, requestID, method, ep, payload, true)
		outcome.Attempts = 2
	}

	outcome.RequestID = requestID
	logger.Debug("call finished", "request_id", requestID, "endpoint", ep.Name,
		"outcome", string(outcome.Kind), "status", outcome.StatusCode, "attempts", outcome.Attempts)
	return outcome, nil
}

// attempt sends once and reports whether the result is a retryable auth
// failure. Token acquisition failures are auth errors that are never retried.
func (d *Dispatcher) attempt(ctx context.Context, logger glog.Logger, requestID, method string, ep endpoint.Endpoint, payload map[string]any, force bool) (*model.Outcome, bool) {
	tok, err := d.tokens.GetToken(ctx, force)
	if err != nil {
		return tokenFailure(err), false
	}

	req, err := d.buildRequest(ctx, method, ep, payload)
	if err != nil {
		return model.Transport(0, err.Error(), nil), false
	}
	d.setHeaders(req, ep, tok.AccessToken)

	ctx, cancel := context.WithTimeout(req.Context(), d.timeout)
	defer cancel()
	req = req.WithContext(ctx)

	logger.Debug("sending request", "request_id", requestID, "endpoint", ep.Name, "method", method, "forced_token", force)

	resp, err := d.client.Do(req)
	if err != nil {
		return transportFailure(err), false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(err), false
	}

	outcome := d.classifier.Classify(resp.StatusCode, raw)
	return outcome, outcome.IsAuthFailure()
}

func (d *Dispatcher) buildRequest(ctx context.Context, method string, ep endpoint.Endpoint, payload map[string]any) (*http.Request, error) {
	target := d.baseURL + ep.Path

	if method == http.MethodGet {
		if len(payload) > 0 {
			target += "?" + encodeQuery(payload)
		}
		return http.NewRequestWithContext(ctx, method, target, nil)
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
}

func (d *Dispatcher) setHeaders(req *http.Request, ep endpoint.Endpoint, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if ep.Bootstrap {
		return
	}
	tenant := d.Tenant()
	// set directly: the API expects these exact lower/camel-case names
	req.Header[HeaderTIN] = []string{tenant.TIN}
	req.Header[HeaderBranchID] = []string{tenant.BranchID}
	req.Header[HeaderSessionKey] = []string{tenant.SessionKey}
}

func encodeQuery(params map[string]any) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := url.Values{}
	for _, k := range keys {
		v := params[k]
		if v == nil {
			continue
		}
		values.Set(k, fmt.Sprint(v))
	}
	return values.Encode()
}

func tokenFailure(err error) *model.Outcome {
	var authErr *model.AuthenticationError
	if errors.As(err, &authErr) {
		return model.Auth(authErr.StatusCode, authErr.Error(), authErr.Body)
	}
	return model.Auth(0, err.Error(), nil)
}

func transportFailure(err error) *model.Outcome {
	outcome := model.Transport(0, err.Error(), nil)

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		outcome.Message = "request timed out: " + err.Error()
		outcome.Timeout = true
	}
	return outcome
}
