package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/goliatone/go-logger/glog"
)

// Engine validates payloads against contracts of one schema version
type Engine struct {
	registry *Registry
	version  string
	logger   glog.Logger
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithVersion selects the schema version; empty keeps DefaultVersion
func WithVersion(version string) EngineOption {
	return func(e *Engine) {
		if version != "" {
			e.version = version
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger glog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine over registry; nil uses DefaultRegistry
func NewEngine(registry *Registry, opts ...EngineOption) *Engine {
	if registry == nil {
		registry = DefaultRegistry()
	}
	e := &Engine{
		registry: registry,
		version:  DefaultVersion,
		logger:   glog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Version returns the schema version in use
func (e *Engine) Version() string {
	return e.version
}

// Registry returns the backing registry
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Contract looks up a contract in the engine's version
func (e *Engine) Contract(name string) (*Contract, error) {
	return e.registry.Lookup(e.version, name)
}

// Validate checks payload against the named contract. It returns a
// *model.ConfigurationError for unknown contracts and a *model.ValidationError
// holding every failing rule otherwise.
func (e *Engine) Validate(payload map[string]any, name string) (map[string]any, error) {
	contract, err := e.Contract(name)
	if err != nil {
		return nil, err
	}

	normalized, verr := contract.Validate(payload)
	if verr != nil {
		e.logger.Debug("payload rejected", "contract", name, "version", e.version, "errors", verr.Len())
		return nil, verr
	}
	return normalized, nil
}

// DecodePayload reads a JSON object keeping numbers as json.Number so
// amounts are never rounded through float64
func DecodePayload(r io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if payload == nil {
		return nil, fmt.Errorf("decode payload: expected a JSON object")
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode payload: unexpected data after the JSON object")
	}
	return payload, nil
}

// DecodePayloadBytes is DecodePayload over a byte slice
func DecodePayloadBytes(data []byte) (map[string]any, error) {
	return DecodePayload(bytes.NewReader(data))
}
