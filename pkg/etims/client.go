package etims

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-logger/glog"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/config"
	"github.com/rezonia/etims-client/internal/dispatch"
	"github.com/rezonia/etims-client/internal/endpoint"
	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/tokenstore"
	"github.com/rezonia/etims-client/internal/validation"
)

// Client is one tenant's connection to the OSCU API. It is safe for
// concurrent use.
type Client struct {
	cfg        config.Config
	engine     *validation.Engine
	dispatcher *dispatch.Dispatcher
	tokens     *auth.TokenCache
	logger     glog.Logger
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	logger     glog.Logger
	httpClient *http.Client
	store      tokenstore.Store
	registry   *validation.Registry
}

// WithLogger sets the logger shared by every component
func WithLogger(logger glog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client for identity and business calls
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithTokenStore replaces the store selected by the cache settings
func WithTokenStore(store tokenstore.Store) Option {
	return func(o *clientOptions) {
		o.store = store
	}
}

// WithRegistry replaces the contract registry
func WithRegistry(registry *validation.Registry) Option {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// New wires a client from cfg. Credentials are checked here so a missing
// key fails at start-up rather than on the first call.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	o := clientOptions{logger: glog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = glog.Nop()
	}

	creds, err := cfg.CredentialStore().Lookup(cfg.Env)
	if err != nil {
		return nil, err
	}

	table, err := endpoint.NewTable(cfg.Endpoints)
	if err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		store, err = tokenstore.Open(ctx, cfg.StoreOptions())
		if err != nil {
			return nil, fmt.Errorf("open token store: %w", err)
		}
	}

	authOpts := []auth.AuthenticatorOption{
		auth.WithTimeout(cfg.TokenTimeout()),
		auth.WithLogger(o.logger),
	}
	dispatchOpts := []dispatch.Option{
		dispatch.WithTimeout(cfg.Timeout()),
		dispatch.WithLogger(o.logger),
		dispatch.WithEndpoints(table),
		dispatch.WithResultCodes(cfg.ResultCodes),
		dispatch.WithTenant(cfg.Tenant()),
	}
	if o.httpClient != nil {
		authOpts = append(authOpts, auth.WithHTTPClient(o.httpClient))
		dispatchOpts = append(dispatchOpts, dispatch.WithHTTPClient(o.httpClient))
	}

	tokens := auth.NewTokenCache(
		auth.NewAuthenticator(creds, authOpts...),
		store,
		auth.WithCacheLogger(o.logger),
	)

	return &Client{
		cfg: cfg,
		engine: validation.NewEngine(o.registry,
			validation.WithVersion(cfg.Schema.Version),
			validation.WithLogger(o.logger)),
		dispatcher: dispatch.New(cfg.BaseURL(), tokens, dispatchOpts...),
		tokens:     tokens,
		logger:     o.logger,
	}, nil
}

// Config returns the configuration the client was built from
func (c *Client) Config() config.Config {
	return c.cfg
}

// Tenant returns the current tenant triplet
func (c *Client) Tenant() Tenant {
	return c.dispatcher.Tenant()
}

// Endpoints lists the resolved endpoint table
func (c *Client) Endpoints() []endpoint.Endpoint {
	return c.dispatcher.Endpoints().All()
}

// Engine returns the validation engine
func (c *Client) Engine() *validation.Engine {
	return c.engine
}

// Token returns a bearer token, fetching one when none is cached or force is set
func (c *Client) Token(ctx context.Context, force bool) (Token, error) {
	return c.tokens.GetToken(ctx, force)
}

// ForgetToken drops the cached token everywhere it is stored
func (c *Client) ForgetToken(ctx context.Context) error {
	return c.tokens.Forget(ctx)
}

// Close releases the token store
func (c *Client) Close() error {
	return c.tokens.Close()
}

// Validate checks payload against a named contract and returns the
// normalized copy
func (c *Client) Validate(contract string, payload map[string]any) (map[string]any, error) {
	return c.engine.Validate(payload, contract)
}

// Call validates payload against the endpoint's contract and dispatches it.
// The error is a ConfigurationError or ValidationError; every remote result
// is an Outcome.
func (c *Client) Call(ctx context.Context, name string, payload map[string]any) (*Outcome, error) {
	return c.call(ctx, "", name, payload)
}

// Query is Call with the payload sent as query parameters
func (c *Client) Query(ctx context.Context, name string, params map[string]any) (*Outcome, error) {
	return c.call(ctx, http.MethodGet, name, params)
}

func (c *Client) call(ctx context.Context, method, name string, payload map[string]any) (*Outcome, error) {
	ep, err := c.dispatcher.Endpoints().Resolve(name)
	if err != nil {
		return nil, err
	}

	if ep.Contract != "" {
		payload, err = c.engine.Validate(payload, ep.Contract)
		if err != nil {
			return nil, err
		}
	}

	return c.dispatcher.Send(ctx, method, ep.Name, payload)
}

// Execute is Call with failed outcomes converted to typed errors. It returns
// the decoded response envelope on success.
func (c *Client) Execute(ctx context.Context, name string, payload map[string]any) (map[string]any, error) {
	outcome, err := c.Call(ctx, name, payload)
	if err != nil {
		return nil, err
	}
	if err := outcome.Err(); err != nil {
		return nil, err
	}
	return outcome.Body, nil
}

// Initialize runs the device bootstrap and installs the returned cmcKey in
// the tenant triplet used by later calls.
func (c *Client) Initialize(ctx context.Context, payload map[string]any) (map[string]any, error) {
	body, err := c.Execute(ctx, endpoint.Bootstrap, payload)
	if err != nil {
		return nil, err
	}
	if key, ok := SessionKey(body); ok {
		c.dispatcher.SetSessionKey(key)
		c.logger.Info("device initialized", "tin", c.dispatcher.Tenant().TIN)
	} else {
		c.logger.Warn("initialization response carried no cmcKey")
	}
	return body, nil
}

// SessionKey finds cmcKey at the top level, under data or under data.info
func SessionKey(body map[string]any) (string, bool) {
	candidates := []map[string]any{body}
	if data, ok := model.Data(body); ok {
		candidates = append(candidates, data)
		if info, ok := data["info"].(map[string]any); ok {
			candidates = append(candidates, info)
		}
	}
	for _, m := range candidates {
		if key, ok := m[dispatch.HeaderSessionKey].(string); ok && strings.TrimSpace(key) != "" {
			return key, true
		}
	}
	return "", false
}
