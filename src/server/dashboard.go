package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"synapse-console/src/interfaces"
	"synapse-console/src/logger"
	"synapse-console/src/models"
	"synapse-console/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// -----------------------------------------------------------------------------
// DashboardServer
// -----------------------------------------------------------------------------

type DashboardServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	http   *http.Server

	controller interfaces.IConsoleController
	events     interfaces.IEventSource
	clock      *utils.MarketClock

	// WebSocket clients
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	broadcast  chan models.MEvent
	register   chan *Client
	unregister chan *Client
	resync     chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	unsubscribe func()
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewDashboardServer(cfg *models.MConfig, ctrl interfaces.IConsoleController, events interfaces.IEventSource, clock *utils.MarketClock, log *logger.Logger) *DashboardServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &DashboardServer{
		Config:     cfg,
		Logger:     log.Named("DashboardServer"),
		engine:     gin.New(),
		controller: ctrl,
		events:     events,
		clock:      clock,
		clients:    make(map[*Client]struct{}),
		// Buffered so store listeners never wait on the hub
		broadcast:  make(chan models.MEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		resync:     make(chan *Client),
		done:       make(chan struct{}),
	}

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.Use(corsMiddleware())

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.Logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *DashboardServer) setupRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.getHealth)
		api.GET("/session", s.getSession)
		api.POST("/login", s.postLogin)
		api.POST("/logout", s.postLogout)

		api.GET("/models", s.getModels)
		api.POST("/models/refresh", s.postRefreshModels)
		api.GET("/models/active", s.getActiveModel)
		api.POST("/models/:id/select", s.postSelectModel)

		api.GET("/chart", s.getChart)
		api.GET("/logs", s.getLogs)
		api.GET("/market/:symbol", s.getMarketStatus)

		api.POST("/stream/reconnect", s.postReconnect)
	}

	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start runs the hub and serves until Stop is called.
func (s *DashboardServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting dashboard server on %s", addr)

	s.startHub()
	s.http = &http.Server{Addr: addr, Handler: s.engine}

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) startHub() {
	go s.handleWebsockets()
	s.unsubscribe = s.events.Subscribe(s.Broadcast)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		if s.unsubscribe != nil {
			s.unsubscribe()
		}
		if s.http != nil {
			err = s.http.Shutdown(ctx)
		}
		close(s.done)
	})
	return err
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for tests.
func (s *DashboardServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *DashboardServer) getHealth(c *gin.Context) {
	state := s.controller.Snapshot()

	s.clientsMu.RLock()
	connections := len(s.clients)
	s.clientsMu.RUnlock()

	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"connections":   connections,
		"authenticated": state.Authenticated,
		"stream":        state.StreamState,
	})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": s.controller.Snapshot().Authenticated})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postLogin(c *gin.Context) {
	var req models.MLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	if err := s.controller.Login(c.Request.Context(), req.Username, req.Password); err != nil {
		writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postLogout(c *gin.Context) {
	s.controller.Logout()
	c.JSON(http.StatusOK, gin.H{"authenticated": false})
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getModels(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Snapshot().Models)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postRefreshModels(c *gin.Context) {
	s.controller.RefreshModels(c.Request.Context())
	c.JSON(http.StatusOK, s.controller.Snapshot().Models)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getActiveModel(c *gin.Context) {
	active := s.controller.Snapshot().ActiveModel
	if active == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no model selected"})
		return
	}
	c.JSON(http.StatusOK, active)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postSelectModel(c *gin.Context) {
	if err := s.controller.SelectModel(c.Param("id")); err != nil {
		writeError(c, http.StatusNotFound, err)
		return
	}
	c.JSON(http.StatusOK, s.controller.Snapshot().ActiveModel)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getChart(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Snapshot().Chart)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getLogs(c *gin.Context) {
	c.JSON(http.StatusOK, s.controller.Snapshot().Logs)
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) getMarketStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.clock.Status(strings.ToUpper(c.Param("symbol"))))
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) postReconnect(c *gin.Context) {
	if err := s.controller.Reconnect(c.Request.Context()); err != nil {
		writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stream": s.controller.Snapshot().StreamState})
}
