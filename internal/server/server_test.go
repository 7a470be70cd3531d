package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/endpoint"
	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/server"
	"github.com/rezonia/etims-client/internal/validation"
)

type stubGateway struct {
	engine   *validation.Engine
	outcome  *model.Outcome
	callErr  error
	calls    []string
	forgets  int
	tokenErr error
}

func (g *stubGateway) Engine() *validation.Engine { return g.engine }

func (g *stubGateway) Endpoints() []endpoint.Endpoint { return endpoint.DefaultTable().All() }

func (g *stubGateway) Call(_ context.Context, name string, _ map[string]any) (*model.Outcome, error) {
	g.calls = append(g.calls, name)
	return g.outcome, g.callErr
}

func (g *stubGateway) Initialize(_ context.Context, _ map[string]any) (map[string]any, error) {
	return map[string]any{"resultCd": "000"}, nil
}

func (g *stubGateway) Token(_ context.Context, _ bool) (auth.Token, error) {
	if g.tokenErr != nil {
		return auth.Token{}, g.tokenErr
	}
	return auth.Token{AccessToken: "secret-token", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (g *stubGateway) ForgetToken(context.Context) error {
	g.forgets++
	return nil
}

func newTestServer(gw *stubGateway) *server.Server {
	if gw.engine == nil {
		gw.engine = validation.NewEngine(nil)
	}
	config := &server.Config{
		Address: ":8080",
		Debug:   true,
	}
	return server.NewServer(config, gw)
}

func do(srv *server.Server, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := do(newTestServer(&stubGateway{}), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
}

func TestContractsEndpoint(t *testing.T) {
	w := do(newTestServer(&stubGateway{}), http.MethodGet, "/api/v1/contracts", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Version   string                `json:"version"`
		Contracts []server.ContractInfo `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "2", response.Version)
	assert.Len(t, response.Contracts, 13)
}

func TestEndpointsEndpoint(t *testing.T) {
	w := do(newTestServer(&stubGateway{}), http.MethodGet, "/api/v1/endpoints", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Endpoints []server.EndpointInfo `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Endpoints, 20)
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer(&stubGateway{})

	w := do(srv, http.MethodPost, "/api/v1/validate/lastReqOnly", `{"lastReqDt":"20240101000000","extra":1}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Equal(t, map[string]any{"lastReqDt": "20240101000000"}, response.Payload)
}

func TestValidateEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		body     string
		status   int
		code     string
		hasField string
	}{
		{"invalid payload", "/api/v1/validate/lastReqOnly", `{"lastReqDt":"2024"}`, http.StatusUnprocessableEntity, model.TextCodeValidation, "lastReqDt"},
		{"unknown contract", "/api/v1/validate/nope", `{}`, http.StatusNotFound, model.TextCodeConfiguration, ""},
		{"not an object", "/api/v1/validate/lastReqOnly", `[1,2]`, http.StatusBadRequest, "", ""},
		{"empty body", "/api/v1/validate/lastReqOnly", ``, http.StatusBadRequest, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newTestServer(&stubGateway{}), http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)

			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response.Error)
			assert.Equal(t, tt.code, response.Code)
			if tt.hasField != "" {
				require.NotEmpty(t, response.Fields)
				assert.Equal(t, tt.hasField, response.Fields[0].Field)
			}
		})
	}
}

func TestOperationEndpoint(t *testing.T) {
	tests := []struct {
		name    string
		outcome *model.Outcome
		status  int
		code    string
	}{
		{"success", model.Success(200, map[string]any{"resultCd": "000"}, nil), http.StatusOK, ""},
		{"server business error", model.Business(200, "901", "not valid device", model.BusinessClassServer, nil, nil), http.StatusBadGateway, model.TextCodeBusiness},
		{"client business error", model.Business(200, "895", "bad", model.BusinessClassClient, nil, nil), http.StatusBadRequest, model.TextCodeBusiness},
		{"auth error", model.Auth(401, "expired", nil), http.StatusUnauthorized, model.TextCodeAuthentication},
		{"timeout", &model.Outcome{Kind: model.OutcomeTransportError, Message: "timed out", Timeout: true}, http.StatusGatewayTimeout, model.TextCodeTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{outcome: tt.outcome}
			w := do(newTestServer(gw), http.MethodPost, "/api/v1/operations/saveItem", `{"itemCd":"A"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, []string{"saveItem"}, gw.calls)

			var response struct {
				Outcome model.Outcome         `json:"outcome"`
				Error   *server.ErrorResponse `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.outcome.Kind, response.Outcome.Kind)
			if tt.code == "" {
				assert.Nil(t, response.Error)
				return
			}
			require.NotNil(t, response.Error)
			assert.Equal(t, tt.code, response.Error.Code)
		})
	}
}

func TestOperationEndpoint_RejectedBeforeDispatch(t *testing.T) {
	verr := model.NewValidationError("saveItem")
	verr.Add("itemNm", validation.RuleRequired, "field required")
	gw := &stubGateway{callErr: verr}

	w := do(newTestServer(gw), http.MethodPost, "/api/v1/operations/saveItem", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []model.FieldError{{Field: "itemNm", Rule: validation.RuleRequired, Message: "field required"}}, response.Fields)
}

func TestTokenEndpoints(t *testing.T) {
	gw := &stubGateway{}
	srv := newTestServer(gw)

	w := do(srv, http.MethodPost, "/api/v1/token?force=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-token")

	var response server.TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Greater(t, response.ExpiresIn, int64(3500))

	w = do(srv, http.MethodDelete, "/api/v1/token", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, gw.forgets)
}

func TestTokenEndpoint_AuthFailure(t *testing.T) {
	gw := &stubGateway{tokenErr: model.NewAuthenticationError("bad credentials", 401, nil, nil)}

	w := do(newTestServer(gw), http.MethodPost, "/api/v1/token", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
