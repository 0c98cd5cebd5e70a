package server

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"tycoon-market/src/engine"
	"tycoon-market/src/game"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// GameServer
// -----------------------------------------------------------------------------

// realizedVolWindow is the log-return window for the analytics endpoint.
const realizedVolWindow = 20

type GameServer struct {
	Config    *models.MConfig
	Logger    *logger.Logger
	engine    *gin.Engine
	scheduler *engine.TickScheduler
	game      *game.State

	// WebSocket clients, owned by the hub loop; clientsMu only guards the
	// connection count read by the health endpoint
	clients    map[*Client]struct{}
	clientsMu  sync.RWMutex
	broadcast  chan models.MTickBatch
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewGameServer(cfg *models.MConfig, scheduler *engine.TickScheduler, gameState *game.State, log *logger.Logger) *GameServer {
	if strings.ToUpper(cfg.LogLevel) != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &GameServer{
		Config:    cfg,
		Logger:    log,
		engine:    gin.Default(),
		scheduler: scheduler,
		game:      gameState,
		clients:   make(map[*Client]struct{}),
		// Buffered so a burst of ticks never blocks the scheduler
		broadcast:  make(chan models.MTickBatch, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
	}

	// CORS for the browser client
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *GameServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/config", s.getConfig)
	s.engine.GET("/api/snapshot", s.getSnapshot)
	s.engine.GET("/api/analytics", s.getAnalytics)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *GameServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting game server on %s", addr)

	go s.runHub()

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------

func (s *GameServer) Stop() error {
	close(s.quit)
	return nil
}

// -----------------------------------------------------------------------------
// Scheduler subscriber side
// -----------------------------------------------------------------------------

// OnTick receives the published tick batch. The send is non-blocking: when
// the broadcast queue is full the batch is dropped and clients resynchronize
// from the next one.
func (s *GameServer) OnTick(batch models.MTickBatch) {
	select {
	case s.broadcast <- batch:
	default:
		s.Logger.Warning("Broadcast queue full, dropping tick %d", batch.Seq)
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *GameServer) getHealth(c *gin.Context) {
	s.clientsMu.RLock()
	connections := len(s.clients)
	s.clientsMu.RUnlock()

	c.JSON(200, gin.H{
		"status":      "ok",
		"state":       s.scheduler.CurrentState().String(),
		"tick":        s.scheduler.Seq(),
		"connections": connections,
	})
}

// -----------------------------------------------------------------------------

func (s *GameServer) getConfig(c *gin.Context) {
	c.JSON(200, gin.H{
		"mode":                 s.Config.Market.Mode,
		"tick_interval_ms":     s.Config.Market.TickIntervalMs,
		"correlation_strength": s.Config.Market.CorrelationStrength,
		"history_capacity":     s.Config.Market.HistoryCapacity,
		"event_probability":    s.Config.Events.Probability,
		"event_preset":         s.Config.Events.Preset,
	})
}

// -----------------------------------------------------------------------------

func (s *GameServer) getSnapshot(c *gin.Context) {
	c.JSON(200, s.scheduler.Snapshot())
}

// -----------------------------------------------------------------------------

// getAnalytics reports realized volatility per instrument plus pairwise
// same-sector return correlations. Display only; nothing here feeds back into
// the generator.
func (s *GameServer) getAnalytics(c *gin.Context) {
	views := s.scheduler.Views()

	type instrumentAnalytics struct {
		Symbol             string  `json:"symbol"`
		Sector             string  `json:"sector"`
		Price              float64 `json:"price"`
		NominalVolatility  float64 `json:"nominal_volatility"`
		RealizedVolatility float64 `json:"realized_volatility"`
	}

	instruments := make([]instrumentAnalytics, len(views))
	for i, v := range views {
		instruments[i] = instrumentAnalytics{
			Symbol:             v.Symbol,
			Sector:             v.Sector,
			Price:              v.Price,
			NominalVolatility:  v.NominalVolatility,
			RealizedVolatility: market.CalculateVolatility(v.History, realizedVolWindow, v.NominalVolatility),
		}
	}

	c.JSON(200, gin.H{
		"instruments":  instruments,
		"correlations": sectorCorrelations(views),
		"timestamp":    time.Now().UnixMilli(),
	})
}
