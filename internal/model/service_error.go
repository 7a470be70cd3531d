package model

import (
	"errors"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to service errors
const (
	TextCodeConfiguration  = "ETIMS_CONFIGURATION"
	TextCodeValidation     = "ETIMS_VALIDATION_FAILED"
	TextCodeAuthentication = "ETIMS_AUTHENTICATION_FAILED"
	TextCodeBusiness       = "ETIMS_BUSINESS_REJECTED"
	TextCodeTransport      = "ETIMS_TRANSPORT_FAILED"
	TextCodeInternal       = "ETIMS_INTERNAL"
)

// ToServiceError maps the error taxonomy onto a go-errors envelope
func ToServiceError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich
	}

	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		status := http.StatusInternalServerError
		if cfgErr.Kind == ConfigKindContract || cfgErr.Kind == ConfigKindEndpoint {
			status = http.StatusNotFound
		}
		return goerrors.New(cfgErr.Error(), goerrors.CategoryInternal).
			WithCode(status).
			WithTextCode(TextCodeConfiguration).
			WithMetadata(map[string]any{"kind": cfgErr.Kind, "name": cfgErr.Name})
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return goerrors.New(valErr.Error(), goerrors.CategoryValidation).
			WithCode(http.StatusUnprocessableEntity).
			WithTextCode(TextCodeValidation).
			WithMetadata(map[string]any{"contract": valErr.Contract, "fields": valErr.Fields})
	}

	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return goerrors.Wrap(err, goerrors.CategoryAuth, authErr.Message).
			WithCode(http.StatusUnauthorized).
			WithTextCode(TextCodeAuthentication).
			WithMetadata(map[string]any{"status_code": authErr.StatusCode, "body": string(authErr.Body)})
	}

	var bizErr *BusinessError
	if errors.As(err, &bizErr) {
		status := http.StatusBadRequest
		if bizErr.Class == BusinessClassServer {
			status = http.StatusBadGateway
		}
		return goerrors.New(bizErr.Error(), goerrors.CategoryOperation).
			WithCode(status).
			WithTextCode(TextCodeBusiness).
			WithMetadata(map[string]any{
				"result_code": bizErr.Code,
				"class":       string(bizErr.Class),
				"body":        string(bizErr.Body),
			})
	}

	var trErr *TransportError
	if errors.As(err, &trErr) {
		status := http.StatusBadGateway
		if trErr.Timeout {
			status = http.StatusGatewayTimeout
		}
		return goerrors.Wrap(err, goerrors.CategoryExternal, trErr.Message).
			WithCode(status).
			WithTextCode(TextCodeTransport).
			WithMetadata(map[string]any{"status_code": trErr.StatusCode, "body": string(trErr.Body)})
	}

	return goerrors.Wrap(err, goerrors.CategoryInternal, err.Error()).
		WithCode(http.StatusInternalServerError).
		WithTextCode(TextCodeInternal)
}
