package dispatch_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/dispatch"
	"github.com/rezonia/etims-client/internal/model"
)

type fakeTokens struct {
	mu      sync.Mutex
	issued  int
	forgets int
	forced  []bool
	err     error
}

func (f *fakeTokens) GetToken(_ context.Context, force bool) (auth.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forced = append(f.forced, force)
	if f.err != nil {
		return auth.Token{}, f.err
	}
	if force || f.issued == 0 {
		f.issued++
	}
	return auth.Token{AccessToken: fmt.Sprintf("tok-%d", f.issued), ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeTokens) Forget(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.forgets++
	return nil
}

type recordedRequest struct {
	method string
	path   string
	query  string
	header http.Header
	body   string
}

type apiServer struct {
	*httptest.Server
	calls    atomic.Int32
	mu       sync.Mutex
	requests []recordedRequest
}

func newAPIServer(t *testing.T, respond func(n int32, w http.ResponseWriter, r *http.Request)) *apiServer {
	t.Helper()
	s := &apiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.requests = append(s.requests, recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   string(body),
		})
		s.mu.Unlock()
		respond(s.calls.Add(1), w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func respondJSON(status int, body string) func(int32, http.ResponseWriter, *http.Request) {
	return func(_ int32, w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

var tenant = dispatch.Tenant{TIN: "P051234567X", BranchID: "00", SessionKey: "CMC"}

func TestDispatcher_SuccessSendsTenantHeaders(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{"resultCd":"000","resultMsg":"ok","data":{"x":1}}`))
	tokens := &fakeTokens{}
	d := dispatch.New(srv.URL+"/", tokens, dispatch.WithTenant(tenant))

	outcome, err := d.Post(context.Background(), "saveItem", map[string]any{"itemCd": "A", "dftPrc": json.Number("10.00")})
	require.NoError(t, err)
	require.True(t, outcome.OK())
	assert.Equal(t, 1, outcome.Attempts)
	assert.NotEmpty(t, outcome.RequestID)

	require.Len(t, srv.requests, 1)
	req := srv.requests[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/saveItem", req.path)
	assert.Equal(t, "Bearer tok-1", req.header.Get("Authorization"))
	assert.Equal(t, "application/json", req.header.Get("Content-Type"))
	assert.Equal(t, "P051234567X", req.header.Get("tin"))
	assert.Equal(t, "00", req.header.Get("bhfId"))
	assert.Equal(t, "CMC", req.header.Get("cmcKey"))
	assert.JSONEq(t, `{"itemCd":"A","dftPrc":10.00}`, req.body)
}

func TestDispatcher_BootstrapOmitsTenantHeaders(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{"resultCd":"000"}`))
	d := dispatch.New(srv.URL, &fakeTokens{}, dispatch.WithTenant(tenant))

	_, err := d.Post(context.Background(), "selectInitOsdcInfo", map[string]any{"tin": "P051234567X"})
	require.NoError(t, err)

	req := srv.requests[0]
	assert.NotEmpty(t, req.header.Get("Authorization"))
	_, hasTIN := req.header["Tin"]
	_, hasKey := req.header["Cmckey"]
	assert.False(t, hasTIN)
	assert.False(t, hasKey)
}

func TestDispatcher_TwoAuthFailuresMakeExactlyTwoCalls(t *testing.T) {
	srv := newAPIServer(t, respondJSON(401, `{"fault":{"faultstring":"Invalid Credentials"}}`))
	tokens := &fakeTokens{}
	d := dispatch.New(srv.URL, tokens, dispatch.WithTenant(tenant))

	outcome, err := d.Post(context.Background(), "saveItem", nil)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeAuthError, outcome.Kind)
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, int32(2), srv.calls.Load())
	assert.Equal(t, 1, tokens.forgets)
	assert.Equal(t, []bool{false, true}, tokens.forced)

	var authErr *model.AuthenticationError
	assert.True(t, errors.As(outcome.Err(), &authErr))
}

func TestDispatcher_RetryAfterExpiredTokenFault(t *testing.T) {
	srv := newAPIServer(t, func(n int32, w http.ResponseWriter, r *http.Request) {
		if n == 1 {
			respondJSON(200, `{"fault":{"faultstring":"Access Token expired"}}`)(n, w, r)
			return
		}
		respondJSON(200, `{"resultCd":"000"}`)(n, w, r)
	})
	tokens := &fakeTokens{}
	d := dispatch.New(srv.URL, tokens)

	outcome, err := d.Post(context.Background(), "selectCodeList", map[string]any{"lastReqDt": "20240101000000"})
	require.NoError(t, err)

	assert.True(t, outcome.OK())
	assert.Equal(t, 2, outcome.Attempts)
	assert.Equal(t, "Bearer tok-1", srv.requests[0].header.Get("Authorization"))
	assert.Equal(t, "Bearer tok-2", srv.requests[1].header.Get("Authorization"))
}

func TestDispatcher_BusinessAndTransportAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   model.OutcomeKind
	}{
		{"business", 200, `{"resultCd":"901","resultMsg":"not valid device"}`, model.OutcomeBusinessError},
		{"transport", 500, `{"fault":{"faultstring":"boom"}}`, model.OutcomeTransportError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPIServer(t, respondJSON(tt.status, tt.body))
			d := dispatch.New(srv.URL, &fakeTokens{})

			outcome, err := d.Post(context.Background(), "saveItem", nil)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, outcome.Kind)
			assert.Equal(t, int32(1), srv.calls.Load())
			assert.Equal(t, tt.body, string(outcome.Raw))
		})
	}
}

func TestDispatcher_UnknownEndpoint(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{}`))
	d := dispatch.New(srv.URL, &fakeTokens{})

	outcome, err := d.Post(context.Background(), "/saveItem", nil)
	assert.Nil(t, outcome)

	var cfgErr *model.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestDispatcher_TokenFailureIsNotRetried(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{}`))
	tokens := &fakeTokens{err: model.NewAuthenticationError("denied", 403, []byte("denied"), nil)}
	d := dispatch.New(srv.URL, tokens)

	outcome, err := d.Post(context.Background(), "saveItem", nil)
	require.NoError(t, err)

	assert.Equal(t, model.OutcomeAuthError, outcome.Kind)
	assert.Equal(t, 403, outcome.StatusCode)
	assert.Equal(t, 1, outcome.Attempts)
	assert.Equal(t, int32(0), srv.calls.Load())
	assert.Equal(t, 0, tokens.forgets)
}

func TestDispatcher_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newAPIServer(t, func(n int32, w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	d := dispatch.New(srv.URL, &fakeTokens{}, dispatch.WithTimeout(50*time.Millisecond))

	outcome, err := d.Post(context.Background(), "saveItem", nil)
	require.NoError(t, err)
	assert.Equal(t, model.OutcomeTransportError, outcome.Kind)
	assert.True(t, outcome.Timeout)

	var trErr *model.TransportError
	require.True(t, errors.As(outcome.Err(), &trErr))
	assert.True(t, trErr.Timeout)
}

func TestDispatcher_GetUsesQueryParameters(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{"resultCd":"000"}`))
	d := dispatch.New(srv.URL, &fakeTokens{})

	_, err := d.Get(context.Background(), "selectCodeList", map[string]any{"lastReqDt": "20240101000000", "page": 2})
	require.NoError(t, err)

	req := srv.requests[0]
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "lastReqDt=20240101000000&page=2", req.query)
	assert.Empty(t, req.body)
}

func TestDispatcher_SetSessionKey(t *testing.T) {
	srv := newAPIServer(t, respondJSON(200, `{"resultCd":"000"}`))
	d := dispatch.New(srv.URL, &fakeTokens{}, dispatch.WithTenant(dispatch.Tenant{TIN: "P051234567X", BranchID: "00"}))

	d.SetSessionKey("NEW-KEY")
	assert.Equal(t, "NEW-KEY", d.Tenant().SessionKey)

	_, err := d.Post(context.Background(), "saveItem", nil)
	require.NoError(t, err)
	assert.Equal(t, "NEW-KEY", srv.requests[0].header.Get("cmcKey"))
}
