// Package config loads client settings from defaults, an optional YAML/JSON
// file and KRA_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/goliatone/go-config/cfgx"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/dispatch"
	"github.com/rezonia/etims-client/internal/endpoint"
	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/tokenstore"
	"github.com/rezonia/etims-client/internal/validation"
)

// Default identity endpoints
const (
	SandboxTokenURL    = "https://sbx.kra.go.ke/v1/token/generate"
	ProductionTokenURL = "https://kra.go.ke/v1/token/generate"
)

// Config is the resolved client configuration
type Config struct {
	Env         string                `mapstructure:"env"`
	Auth        map[string]AuthConfig `mapstructure:"auth"`
	API         map[string]APIConfig  `mapstructure:"api"`
	HTTP        HTTPConfig            `mapstructure:"http"`
	OSCU        OSCUConfig            `mapstructure:"oscu"`
	Cache       CacheConfig           `mapstructure:"cache"`
	ResultCodes dispatch.ResultCodes  `mapstructure:"result_codes"`
	Schema      SchemaConfig          `mapstructure:"schema"`
	Endpoints   map[string]string     `mapstructure:"endpoints"`
	Log         LogConfig             `mapstructure:"log"`
	Server      ServerConfig          `mapstructure:"server"`
}

// AuthConfig holds the identity settings of one environment
type AuthConfig struct {
	TokenURL       string `mapstructure:"token_url"`
	ConsumerKey    string `mapstructure:"consumer_key"`
	ConsumerSecret string `mapstructure:"consumer_secret"`
}

// APIConfig overrides the API root of one environment
type APIConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// HTTPConfig timeouts are in seconds
type HTTPConfig struct {
	Timeout      int `mapstructure:"timeout"`
	TokenTimeout int `mapstructure:"token_timeout"`
}

// OSCUConfig is the tenant triplet
type OSCUConfig struct {
	TIN      string `mapstructure:"tin"`
	BranchID string `mapstructure:"bhf_id"`
	CMCKey   string `mapstructure:"cmc_key"`
}

// CacheConfig selects the token store. Path and Key default to a slot
// derived from the active environment and consumer key.
type CacheConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	DSN       string `mapstructure:"dsn"`
	RedisAddr string `mapstructure:"redis_addr"`
	Key       string `mapstructure:"key"`
}

// SchemaConfig picks the contract version
type SchemaConfig struct {
	Version string `mapstructure:"version"`
}

// LogConfig sets the logger level and output format
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig configures the local gateway. Timeouts are in seconds.
type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	Debug        bool   `mapstructure:"debug"`
}

// Defaults returns the sandbox configuration
func Defaults() Config {
	return Config{
		Env: endpoint.EnvSandbox,
		Auth: map[string]AuthConfig{
			endpoint.EnvSandbox:    {TokenURL: SandboxTokenURL},
			endpoint.EnvProduction: {TokenURL: ProductionTokenURL},
		},
		API: map[string]APIConfig{
			endpoint.EnvSandbox:    {BaseURL: endpoint.SandboxBaseURL},
			endpoint.EnvProduction: {BaseURL: endpoint.ProductionBaseURL},
		},
		HTTP: HTTPConfig{
			Timeout:      int(dispatch.DefaultTimeout / time.Second),
			TokenTimeout: int(auth.DefaultTokenTimeout / time.Second),
		},
		Cache:       CacheConfig{Driver: tokenstore.DriverFile},
		ResultCodes: dispatch.DefaultResultCodes(),
		Schema:      SchemaConfig{Version: validation.DefaultVersion},
		Log:         LogConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Address:      ":8080",
			ReadTimeout:  30,
			WriteTimeout: 60,
		},
	}
}

// Validate checks the settings the client cannot run without. Zero values
// mean "use the default" and pass.
func (c Config) Validate() error {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	if env != "" && env != endpoint.EnvSandbox && env != endpoint.EnvProduction {
		if _, ok := c.Auth[env]; !ok {
			return settingsError("auth."+env, "no credentials section for environment")
		}
	}
	if c.HTTP.Timeout < 0 {
		return settingsError("http.timeout", "must be >= 0")
	}
	if c.HTTP.TokenTimeout < 0 {
		return settingsError("http.token_timeout", "must be >= 0")
	}
	if c.ResultCodes.ClientMax != 0 && c.ResultCodes.ClientMin > c.ResultCodes.ClientMax {
		return settingsError("result_codes", "client_min must not exceed client_max")
	}
	switch c.Schema.Version {
	case "", validation.VersionLegacy, validation.VersionCurrent:
	default:
		return settingsError("schema.version", fmt.Sprintf("unsupported version %q", c.Schema.Version))
	}
	for name := range c.Endpoints {
		if strings.HasPrefix(name, "/") {
			return settingsError("endpoints."+name, "keys must be logical names, not paths")
		}
	}
	return nil
}

func settingsError(name, msg string) error {
	return model.NewConfigurationError(model.ConfigKindSettings, name, msg)
}

// Credentials returns the identity settings of the active environment
func (c Config) Credentials() auth.Credentials {
	a := c.Auth[c.Env]
	return auth.Credentials{
		Environment:    c.Env,
		ConsumerKey:    a.ConsumerKey,
		ConsumerSecret: a.ConsumerSecret,
		TokenURL:       a.TokenURL,
	}
}

// CredentialStore indexes every configured environment
func (c Config) CredentialStore() *auth.CredentialStore {
	creds := make([]auth.Credentials, 0, len(c.Auth))
	for env, a := range c.Auth {
		creds = append(creds, auth.Credentials{
			Environment:    env,
			ConsumerKey:    a.ConsumerKey,
			ConsumerSecret: a.ConsumerSecret,
			TokenURL:       a.TokenURL,
		})
	}
	return auth.NewCredentialStore(creds...)
}

// BaseURL returns the API root of the active environment
func (c Config) BaseURL() string {
	return endpoint.BaseURL(c.Env, c.API[c.Env].BaseURL)
}

// Tenant returns the OSCU header triplet
func (c Config) Tenant() dispatch.Tenant {
	return dispatch.Tenant{TIN: c.OSCU.TIN, BranchID: c.OSCU.BranchID, SessionKey: c.OSCU.CMCKey}
}

// StoreOptions selects the token store. An empty path or key falls back to
// a slot named after the active environment and consumer key.
func (c Config) StoreOptions() tokenstore.Options {
	return tokenstore.Options{
		Driver:      c.Cache.Driver,
		Path:        c.Cache.Path,
		DSN:         c.Cache.DSN,
		RedisAddr:   c.Cache.RedisAddr,
		Key:         c.Cache.Key,
		Environment: c.Env,
		ConsumerKey: c.Auth[c.Env].ConsumerKey,
	}
}

// Timeout bounds each API request
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

// TokenTimeout bounds each token exchange
func (c Config) TokenTimeout() time.Duration {
	return time.Duration(c.HTTP.TokenTimeout) * time.Second
}

// LookupFunc reads one environment variable
type LookupFunc func(key string) (string, bool)

type loadOptions struct {
	path   string
	lookup LookupFunc
}

// LoadOption amends how Load gathers raw values
type LoadOption func(*loadOptions)

// WithFile reads a YAML or JSON file before applying the environment
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithLookup replaces os.LookupEnv
func WithLookup(lookup LookupFunc) LoadOption {
	return func(o *loadOptions) {
		if lookup != nil {
			o.lookup = lookup
		}
	}
}

// Load resolves the configuration: defaults, then the file, then KRA_*
// variables.
func Load(opts ...LoadOption) (Config, error) {
	o := loadOptions{lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	raw := map[string]any{}
	if o.path != "" {
		data, err := os.ReadFile(o.path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", o.path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}
	applyEnv(raw, o.lookup)

	return Build(raw)
}

// Build decodes raw over the defaults and validates the result
func Build(raw map[string]any) (Config, error) {
	defaults := Defaults()
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.withDefaults(defaults)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills values a partial nested section left empty
func (c Config) withDefaults(d Config) Config {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	if c.Env == "" {
		c.Env = d.Env
	}
	c.Auth = mergeSections(d.Auth, c.Auth, func(dst *AuthConfig, def AuthConfig) {
		if dst.TokenURL == "" {
			dst.TokenURL = def.TokenURL
		}
	})
	c.API = mergeSections(d.API, c.API, func(dst *APIConfig, def APIConfig) {
		if dst.BaseURL == "" {
			dst.BaseURL = def.BaseURL
		}
	})
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = d.HTTP.Timeout
	}
	if c.HTTP.TokenTimeout == 0 {
		c.HTTP.TokenTimeout = d.HTTP.TokenTimeout
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = d.Cache.Driver
	}
	c.ResultCodes = c.ResultCodes.WithDefaults()
	if c.Schema.Version == "" {
		c.Schema.Version = d.Schema.Version
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.Server.Address == "" {
		c.Server.Address = d.Server.Address
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	return c
}

func mergeSections[T any](defaults, loaded map[string]T, fill func(*T, T)) map[string]T {
	out := make(map[string]T, len(defaults)+len(loaded))
	for env, v := range defaults {
		out[env] = v
	}
	for env, v := range loaded {
		env = strings.ToLower(env)
		if def, ok := defaults[env]; ok {
			fill(&v, def)
		}
		out[env] = v
	}
	return out
}
