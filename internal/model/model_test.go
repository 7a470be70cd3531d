package model_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/model"
)

func TestValidationError(t *testing.T) {
	verr := model.NewValidationError("saveTrnsSalesOsdc")
	verr.Add("totAmt", "aggregate_sum", "mismatch of 102.00")
	verr.Add("cnclDt", "date_order", "cannot be before salesDt")
	verr.Add("totAmt", "decimal_places", "too many places")

	assert.Equal(t, 3, verr.Len())
	assert.True(t, verr.Has("cnclDt"))
	assert.False(t, verr.Has("salesDt"))
	assert.Equal(t, []string{"mismatch of 102.00", "too many places"}, verr.Messages("totAmt"))
	assert.Equal(t, "mismatch of 102.00; too many places", verr.Map()["totAmt"])
	assert.Contains(t, verr.Error(), "validation failed for saveTrnsSalesOsdc (3 errors)")
}

func TestEnvelopeHelpers(t *testing.T) {
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"resultCd":"000","resultDt":"20240115103000","data":{"x":1}}`), &body))

	code, ok := model.ResultCode(body)
	assert.True(t, ok)
	assert.Equal(t, "000", code)
	assert.Equal(t, "Unknown API response", model.ResultMessage(body))

	dt, ok := model.ResultDate(body)
	assert.True(t, ok)
	assert.Equal(t, "20240115103000", dt)

	data, ok := model.Data(body)
	assert.True(t, ok)
	assert.Contains(t, data, "x")

	_, ok = model.FaultString(body)
	assert.False(t, ok)

	fault, ok := model.FaultString(map[string]any{"fault": map[string]any{"faultstring": "Access Token expired"}})
	assert.True(t, ok)
	assert.Equal(t, "Access Token expired", fault)
}

func TestOutcome_Err(t *testing.T) {
	tests := []struct {
		name    string
		outcome *model.Outcome
		check   func(t *testing.T, err error)
	}{
		{"success", model.Success(200, nil, nil), func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},
		{"business", model.Business(200, "901", "not valid device", model.BusinessClassServer, nil, []byte("raw")), func(t *testing.T, err error) {
			var target *model.BusinessError
			require.True(t, errors.As(err, &target))
			assert.Equal(t, "raw", string(target.Body))
		}},
		{"auth", model.Auth(401, "expired", nil), func(t *testing.T, err error) {
			var target *model.AuthenticationError
			require.True(t, errors.As(err, &target))
			assert.Equal(t, 401, target.StatusCode)
		}},
		{"transport timeout", &model.Outcome{Kind: model.OutcomeTransportError, Message: "slow", Timeout: true}, func(t *testing.T, err error) {
			var target *model.TransportError
			require.True(t, errors.As(err, &target))
			assert.True(t, target.Timeout)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.outcome.Err())
		})
	}
}

func TestToServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     int
		textCode string
		category goerrors.Category
	}{
		{"unknown endpoint", model.NewConfigurationError(model.ConfigKindEndpoint, "x", "unknown"), http.StatusNotFound, model.TextCodeConfiguration, goerrors.CategoryInternal},
		{"bad settings", model.NewConfigurationError(model.ConfigKindSettings, "auth.sbx", "missing"), http.StatusInternalServerError, model.TextCodeConfiguration, goerrors.CategoryInternal},
		{"validation", model.NewValidationError("saveItem"), http.StatusUnprocessableEntity, model.TextCodeValidation, goerrors.CategoryValidation},
		{"auth", model.NewAuthenticationError("denied", 401, nil, nil), http.StatusUnauthorized, model.TextCodeAuthentication, goerrors.CategoryAuth},
		{"client business", model.NewBusinessError("895", "bad", model.BusinessClassClient, 200, nil), http.StatusBadRequest, model.TextCodeBusiness, goerrors.CategoryOperation},
		{"server business", model.NewBusinessError("901", "bad", model.BusinessClassServer, 200, nil), http.StatusBadGateway, model.TextCodeBusiness, goerrors.CategoryOperation},
		{"transport", model.NewTransportError("down", 503, nil, nil), http.StatusBadGateway, model.TextCodeTransport, goerrors.CategoryExternal},
		{"wrapped auth", fmt.Errorf("initialize: %w", model.NewAuthenticationError("denied", 0, nil, nil)), http.StatusUnauthorized, model.TextCodeAuthentication, goerrors.CategoryAuth},
		{"plain", errors.New("boom"), http.StatusInternalServerError, model.TextCodeInternal, goerrors.CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rich := model.ToServiceError(tt.err)
			require.NotNil(t, rich)
			assert.Equal(t, tt.code, rich.Code)
			assert.Equal(t, tt.textCode, rich.TextCode)
			assert.Equal(t, tt.category, rich.Category)
		})
	}

	assert.Nil(t, model.ToServiceError(nil))
}
