// Package etims is the public client for the KRA eTIMS OSCU API.
//
// A Client validates every payload against the contract of its endpoint
// before any network I/O, attaches a cached bearer token and the tenant
// headers, retries once on an expired token and returns the decoded
// response data or a typed error.
//
// Example usage:
//
//	cfg, err := config.Load(config.WithFile("etims.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	client, err := etims.New(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	data, err := client.SaveSale(ctx, sale)
//	var bizErr *etims.BusinessError
//	if errors.As(err, &bizErr) {
//	    fmt.Println(bizErr.Code, bizErr.Message)
//	}
package etims

import (
	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/dispatch"
	"github.com/rezonia/etims-client/internal/model"
)

// Re-export core types for public API
type (
	Outcome       = model.Outcome
	OutcomeKind   = model.OutcomeKind
	BusinessClass = model.BusinessClass
	FieldError    = model.FieldError
	Token         = auth.Token
	Tenant        = dispatch.Tenant
	ResultCodes   = dispatch.ResultCodes
)

// Re-export outcome kinds
const (
	OutcomeSuccess        = model.OutcomeSuccess
	OutcomeBusinessError  = model.OutcomeBusinessError
	OutcomeAuthError      = model.OutcomeAuthError
	OutcomeTransportError = model.OutcomeTransportError
)

// Re-export business classes
const (
	BusinessClassClient  = model.BusinessClassClient
	BusinessClassServer  = model.BusinessClassServer
	BusinessClassGeneric = model.BusinessClassGeneric
)

// Re-export error types
type (
	ConfigurationError  = model.ConfigurationError
	ValidationError     = model.ValidationError
	AuthenticationError = model.AuthenticationError
	BusinessError       = model.BusinessError
	TransportError      = model.TransportError
)
