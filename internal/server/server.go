package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goliatone/go-logger/glog"

	"github.com/rezonia/etims-client/internal/auth"
	"github.com/rezonia/etims-client/internal/endpoint"
	"github.com/rezonia/etims-client/internal/model"
	"github.com/rezonia/etims-client/internal/validation"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CallTimeout  time.Duration
	Debug        bool
	Logger       glog.Logger
}

// Gateway is the client surface the server exposes
type Gateway interface {
	Engine() *validation.Engine
	Endpoints() []endpoint.Endpoint
	Call(ctx context.Context, name string, payload map[string]any) (*model.Outcome, error)
	Initialize(ctx context.Context, payload map[string]any) (map[string]any, error)
	Token(ctx context.Context, force bool) (auth.Token, error)
	ForgetToken(ctx context.Context) error
}

// Server represents the local compliance gateway
type Server struct {
	config  *Config
	router  *gin.Engine
	gateway Gateway
	logger  glog.Logger
}

// NewServer creates a new API server
func NewServer(config *Config, gateway Gateway) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	if config.CallTimeout <= 0 {
		config.CallTimeout = 2 * time.Minute
	}
	logger := config.Logger
	if logger == nil {
		logger = glog.Nop()
	}

	s := &Server{
		config:  config,
		router:  router,
		gateway: gateway,
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/contracts", s.handleContracts)
		v1.GET("/endpoints", s.handleEndpoints)

		v1.POST("/validate/:contract", s.handleValidate)

		v1.POST("/initialize", s.handleInitialize)
		v1.POST("/operations/:operation", s.handleOperation)

		v1.POST("/token", s.handleToken)
		v1.DELETE("/token", s.handleForgetToken)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleContracts(c *gin.Context) {
	engine := s.gateway.Engine()
	registry := engine.Registry()

	out := make([]ContractInfo, 0)
	for _, name := range registry.Names(engine.Version()) {
		contract, err := registry.Lookup(engine.Version(), name)
		if err != nil {
			continue
		}
		out = append(out, ContractInfo{
			Name:        contract.Name,
			Version:     contract.Version,
			Description: contract.Description,
			Fields:      contract.FieldNames(),
			Required:    contract.RequiredFieldNames(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"version": engine.Version(), "contracts": out})
}

func (s *Server) handleEndpoints(c *gin.Context) {
	eps := s.gateway.Endpoints()
	out := make([]EndpointInfo, 0, len(eps))
	for _, ep := range eps {
		out = append(out, EndpointInfo{
			Name:      ep.Name,
			Path:      ep.Path,
			Method:    ep.Method,
			Contract:  ep.Contract,
			Bootstrap: ep.Bootstrap,
		})
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": out})
}

func (s *Server) handleValidate(c *gin.Context) {
	payload, ok := s.readPayload(c)
	if !ok {
		return
	}

	normalized, err := s.gateway.Engine().Validate(payload, c.Param("contract"))
	if err != nil {
		s.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{Valid: true, Payload: normalized})
}

func (s *Server) handleInitialize(c *gin.Context) {
	payload, ok := s.readPayload(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.CallTimeout)
	defer cancel()

	body, err := s.gateway.Initialize(ctx, payload)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"body": body})
}

func (s *Server) handleOperation(c *gin.Context) {
	payload, ok := s.readPayload(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.CallTimeout)
	defer cancel()

	outcome, err := s.gateway.Call(ctx, c.Param("operation"), payload)
	if err != nil {
		s.renderError(c, err)
		return
	}

	status := http.StatusOK
	response := OperationResponse{Outcome: outcome}
	if failure := outcome.Err(); failure != nil {
		rich := model.ToServiceError(failure)
		status = rich.Code
		response.Error = newErrorResponse(failure)
	}
	c.JSON(status, response)
}

func (s *Server) handleToken(c *gin.Context) {
	force := c.Query("force") == "true"

	tok, err := s.gateway.Token(c.Request.Context(), force)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{
		ExpiresAt: tok.ExpiresAt.UTC(),
		ExpiresIn: int64(time.Until(tok.ExpiresAt).Seconds()),
	})
}

func (s *Server) handleForgetToken(c *gin.Context) {
	if err := s.gateway.ForgetToken(c.Request.Context()); err != nil {
		s.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Helper functions

func (s *Server) readPayload(c *gin.Context) (map[string]any, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}

	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}

	payload, err := validation.DecodePayloadBytes(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "request body must be a JSON object", Details: err.Error()})
		return nil, false
	}
	return payload, true
}

func (s *Server) renderError(c *gin.Context, err error) {
	resp := newErrorResponse(err)
	if resp.Status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(resp.Status, resp)
}
