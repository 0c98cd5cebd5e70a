package feed

import (
	"encoding/json"
	"sync"
	"time"

	"tycoon-market/src/engine"
	"tycoon-market/src/helpers"
	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/models"
	"tycoon-market/src/utils"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Connection States
// -----------------------------------------------------------------------------

type ConnState int

const (
	StateConnecting ConnState = iota
	StateOpen
	StateReconnecting
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateReconnecting:
		return "reconnecting"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

const (
	feedWriteWait  = 2 * time.Second
	feedPingPeriod = 30 * time.Second
	feedReadWait   = 60 * time.Second
)

// Client maintains a websocket subscription to the game server and feeds a
// local Store. While the connection is down it keeps prices moving with a
// local fallback generator; the first snapshot after reconnect overwrites
// everything the fallback produced.
type Client struct {
	log   *logger.Logger
	cfg   *models.MConfig
	store *Store

	mu             sync.Mutex
	state          ConnState
	conn           *websocket.Conn
	reconnectTimer *time.Timer
	fallback       *engine.TickScheduler
	closed         bool

	done chan struct{}
}

// -----------------------------------------------------------------------------

func NewClient(cfg *models.MConfig, log *logger.Logger) *Client {
	return &Client{
		log:   log,
		cfg:   cfg,
		store: NewStore(cfg.Market.HistoryCapacity),
		state: StateClosed,
		done:  make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

func (c *Client) Store() *Store {
	return c.store
}

// -----------------------------------------------------------------------------

func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start performs the initial connection attempt. Failure is not fatal: the
// client falls back to local simulation and keeps retrying.
func (c *Client) Start() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state = StateConnecting
	c.mu.Unlock()

	c.connect()
}

// -----------------------------------------------------------------------------

// Close tears the client down: cancels any pending reconnect attempt, stops
// the fallback generator and closes the connection.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.state = StateClosed
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	fallback := c.fallback
	c.fallback = nil
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	if fallback != nil {
		fallback.Stop()
	}
	close(c.done)
}

// -----------------------------------------------------------------------------

// Done is closed once the client has shut down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// -----------------------------------------------------------------------------
// Connection Handling
// -----------------------------------------------------------------------------

func (c *Client) connect() {
	conn, _, err := websocket.DefaultDialer.Dial(c.cfg.Feed.ServerURL, nil)
	if err != nil {
		c.log.Warning("Feed connection failed: %v", helpers.NewTransportError("dial game server", err))
		c.onDisconnect()
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.state = StateOpen
	c.stopFallbackLocked()
	c.mu.Unlock()

	c.log.Info("Feed connected to %s", c.cfg.Feed.ServerURL)

	// Authoritative prices replace anything the fallback generated
	c.requestSnapshot(conn)

	go c.readLoop(conn)
	go c.pingLoop(conn)
}

// -----------------------------------------------------------------------------

// onDisconnect moves to Reconnecting, starts the local fallback and arms the
// reconnect timer. The timer field is the single owner of pending attempts:
// while one is armed no second attempt can be scheduled.
func (c *Client) onDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.reconnectTimer != nil {
		// An attempt is already pending
		return
	}

	c.state = StateReconnecting
	c.conn = nil
	c.startFallbackLocked()

	delay := time.Duration(c.cfg.Feed.ReconnectDelayMs) * time.Millisecond
	c.log.Info("Feed disconnected, retrying in %v", delay)
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.state = StateConnecting
		c.mu.Unlock()
		c.connect()
	})
}

// -----------------------------------------------------------------------------

func (c *Client) requestSnapshot(conn *websocket.Conn) {
	conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	if err := conn.WriteJSON(map[string]string{"type": models.TypeMarketRequest}); err != nil {
		c.log.Warning("Failed to request snapshot: %v", err)
	}
}

// -----------------------------------------------------------------------------
// Read / Ping Loops
// -----------------------------------------------------------------------------

func (c *Client) readLoop(conn *websocket.Conn) {
	defer func() {
		conn.Close()
		c.onDisconnect()
	}()

	conn.SetReadDeadline(time.Now().Add(feedReadWait))
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(feedReadWait))
		conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		return conn.WriteMessage(websocket.PongMessage, []byte(data))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.log.Warning("Feed read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(feedReadWait))
		c.handleMessage(message)
	}
}

// -----------------------------------------------------------------------------

func (c *Client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(feedPingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		current := c.conn
		c.mu.Unlock()
		if current != conn {
			return
		}
		conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
		if err := conn.WriteJSON(map[string]interface{}{"type": models.TypePing, "timestamp": time.Now().UnixMilli()}); err != nil {
			return
		}
	}
}

// -----------------------------------------------------------------------------
// Message Handling
// -----------------------------------------------------------------------------

func (c *Client) handleMessage(message []byte) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &envelope); err != nil {
		c.log.Warning("Discarding malformed feed message: %v", err)
		return
	}

	switch envelope.Type {
	case models.TypeMarketUpdate:
		var update models.MMarketUpdate
		if err := json.Unmarshal(message, &update); err != nil {
			c.log.Warning("Discarding malformed market update: %v", err)
			return
		}
		c.store.ApplyUpdate(update)

	case models.TypeMarketSnapshot:
		var snap models.MMarketSnapshot
		if err := json.Unmarshal(message, &snap); err != nil {
			c.log.Warning("Discarding malformed snapshot: %v", err)
			return
		}
		c.store.ApplySnapshot(snap)

	case models.TypeMarketEvent:
		var event models.MMarketEvent
		if err := json.Unmarshal(message, &event); err != nil {
			c.log.Warning("Discarding malformed market event: %v", err)
			return
		}
		c.log.Info("Market event: %s %s (%.1f%%)", event.EventType, event.Symbol, event.Impact)

	case models.TypeConnected, models.TypePong, models.TypeTradeResult, models.TypeHireResult:
		// Informational, nothing to apply to the store

	default:
		c.log.Debug("Ignoring feed message type %q", envelope.Type)
	}
}

// -----------------------------------------------------------------------------
// Local Fallback
// -----------------------------------------------------------------------------

// fallbackOptions mirrors the configured market parameters onto the local
// generator. Only the event preset differs: the fallback always uses the
// client-side table.
func (c *Client) fallbackOptions() engine.Options {
	return engine.Options{
		Mode:                c.cfg.Market.Mode,
		TickInterval:        time.Duration(c.cfg.Market.TickIntervalMs) * time.Millisecond,
		CorrelationStrength: c.cfg.Market.CorrelationStrength,
		EventProbability:    c.cfg.Events.Probability,
		EventPreset:         "client",
	}
}

// -----------------------------------------------------------------------------

// startFallbackLocked spins up a local generator seeded with the last known
// prices so the display keeps moving while the server is unreachable. Caller
// holds c.mu.
func (c *Client) startFallbackLocked() {
	if c.fallback != nil {
		return
	}

	quotes := c.store.Quotes()
	seeds := make([]models.MInstrumentSeed, 0, len(quotes))
	for _, q := range quotes {
		seeds = append(seeds, models.MInstrumentSeed{Symbol: q.Symbol, BasePrice: q.Price})
	}
	if len(seeds) == 0 {
		seeds = market.DefaultStocks()
	}

	instruments := make([]*market.Instrument, len(seeds))
	for i, seed := range seeds {
		sector := market.SectorOrDefault(c.cfg.Market.Sectors, seed.Sector)
		instruments[i] = market.NewInstrument(seed, sector, c.cfg.Market.HistoryCapacity)
	}

	var rng interfaces.IRandomSource = market.NewTimeSource()
	fallback := engine.NewTickScheduler(instruments, rng, c.fallbackOptions(), utils.NewMarketHours(), c.log)

	// Fallback prices go into the same store; the post-reconnect snapshot
	// overwrites them, never merges
	fallback.Subscribe(interfaces.SubscriberFunc(func(batch models.MTickBatch) {
		for _, update := range batch.Updates {
			c.store.ApplyUpdate(update)
		}
	}))

	c.fallback = fallback
	fallback.Start()
	c.log.Info("Local market fallback started (%d instruments)", len(instruments))
}

// -----------------------------------------------------------------------------

// stopFallbackLocked discards the local generator. Caller holds c.mu. Stop
// joins the fallback's tick loop, so once it returns no locally simulated
// price can land after the resync snapshot.
func (c *Client) stopFallbackLocked() {
	if c.fallback == nil {
		return
	}
	c.fallback.Stop()
	c.fallback = nil
	c.log.Info("Local market fallback stopped")
}
