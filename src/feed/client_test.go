package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"tycoon-market/src/logger"
	"tycoon-market/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Test helpers
// -----------------------------------------------------------------------------

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func feedConfig(serverURL string) *models.MConfig {
	return &models.MConfig{
		Name:     "test-feed",
		LogLevel: "ERROR",
		Market: models.MMarketConfig{
			Mode:           "walk",
			TickIntervalMs: 10,
			// Keep histories small so fallback assertions are quick
			HistoryCapacity: 50,
		},
		Events: models.MEventConfig{Probability: 0, Preset: "client"},
		Feed:   models.MFeedConfig{ServerURL: serverURL, ReconnectDelayMs: 50},
	}
}

func wsURL(httpServer *httptest.Server) string {
	return "ws" + strings.TrimPrefix(httpServer.URL, "http") + "/ws"
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// snapshotServer upgrades connections, answers market_request with a fixed
// snapshot and then streams nothing further.
func snapshotServer(t *testing.T, snap models.MMarketSnapshot, dials *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if dials != nil {
			dials.Add(1)
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &cmd) == nil && cmd.Type == models.TypeMarketRequest {
				conn.WriteJSON(snap)
			}
		}
	}))
}

// -----------------------------------------------------------------------------
// Connected path
// -----------------------------------------------------------------------------

func TestClientAppliesSnapshotAfterConnect(t *testing.T) {
	snap := models.MMarketSnapshot{
		Type: models.TypeMarketSnapshot,
		Stocks: []models.MStockQuote{
			{Symbol: "APEX", Price: 150.00},
			{Symbol: "NOVA", Price: 85.50},
		},
		Timestamp: time.Now().UnixMilli(),
	}
	server := snapshotServer(t, snap, nil)
	defer server.Close()

	client := NewClient(feedConfig(wsURL(server)), logger.NewLogger("ERROR", "test"))
	client.Start()
	defer client.Close()

	waitFor(t, 2*time.Second, func() bool {
		_, ok := client.Store().Quote("APEX")
		return ok
	})

	assert.Equal(t, StateOpen, client.State())
	price, _ := client.Store().Quote("APEX")
	assert.Equal(t, 150.00, price)
	price, _ = client.Store().Quote("NOVA")
	assert.Equal(t, 85.50, price)
}

func TestClientAppliesStreamedUpdates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		conn.WriteJSON(models.MMarketUpdate{Type: models.TypeMarketUpdate, Symbol: "APEX", Price: 151.25, Timestamp: 100})
		conn.WriteJSON(models.MMarketUpdate{Type: models.TypeMarketUpdate, Symbol: "APEX", Price: 152.00, Timestamp: 200})

		// Hold the connection open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	client := NewClient(feedConfig(wsURL(server)), logger.NewLogger("ERROR", "test"))
	client.Start()
	defer client.Close()

	waitFor(t, 2*time.Second, func() bool {
		price, ok := client.Store().Quote("APEX")
		return ok && price == 152.00
	})
	assert.Equal(t, []float64{151.25, 152.00}, client.Store().HistoryOf("APEX"))
}

// -----------------------------------------------------------------------------
// Disconnected path
// -----------------------------------------------------------------------------

func TestClientFallsBackWhenServerUnreachable(t *testing.T) {
	// Nothing listens here
	cfg := feedConfig("ws://127.0.0.1:1/ws")
	client := NewClient(cfg, logger.NewLogger("ERROR", "test"))
	client.Start()
	defer client.Close()

	// The local generator takes over with the default universe
	waitFor(t, 2*time.Second, func() bool {
		price, ok := client.Store().Quote("APEX")
		return ok && price > 0
	})
	// Between retries the state briefly passes through Connecting
	assert.Contains(t, []ConnState{StateReconnecting, StateConnecting}, client.State())

	// And keeps producing ticks
	before := len(client.Store().HistoryOf("APEX"))
	waitFor(t, 2*time.Second, func() bool {
		return len(client.Store().HistoryOf("APEX")) > before
	})
}

func TestClientSinglePendingReconnectAttempt(t *testing.T) {
	var dials atomic.Int64
	// Refuse the upgrade so every dial fails after counting
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		http.Error(w, "no", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(feedConfig(wsURL(server)), logger.NewLogger("ERROR", "test"))
	client.Start()
	defer client.Close()

	// With a 50ms fixed delay, ~600ms allows at most a dozen attempts. A
	// timer leak would multiply pending attempts and blow well past that.
	time.Sleep(600 * time.Millisecond)
	count := dials.Load()
	assert.GreaterOrEqual(t, count, int64(2))
	assert.LessOrEqual(t, count, int64(15))
}

// -----------------------------------------------------------------------------
// Resync path
// -----------------------------------------------------------------------------

func TestClientResyncDiscardsFallbackPrices(t *testing.T) {
	snap := models.MMarketSnapshot{
		Type:      models.TypeMarketSnapshot,
		Stocks:    []models.MStockQuote{{Symbol: "APEX", Price: 150.00}},
		Timestamp: time.Now().UnixMilli(),
	}

	var accepting atomic.Bool
	var dials atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dials.Add(1)
		if !accepting.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var cmd struct {
				Type string `json:"type"`
			}
			if json.Unmarshal(raw, &cmd) == nil && cmd.Type == models.TypeMarketRequest {
				conn.WriteJSON(snap)
			}
		}
	}))
	defer server.Close()

	client := NewClient(feedConfig(wsURL(server)), logger.NewLogger("ERROR", "test"))
	client.Start()
	defer client.Close()

	// Phase 1: server down, fallback drifts APEX away from 150
	waitFor(t, 2*time.Second, func() bool {
		_, ok := client.Store().Quote("APEX")
		return ok
	})
	require.Contains(t, []ConnState{StateReconnecting, StateConnecting}, client.State())

	// Phase 2: server comes back; the snapshot overwrites the local price
	accepting.Store(true)
	waitFor(t, 3*time.Second, func() bool {
		price, ok := client.Store().Quote("APEX")
		return ok && price == 150.00 && client.State() == StateOpen
	})
}

func TestFallbackMirrorsMarketConfiguration(t *testing.T) {
	// The local generator must run with the same market parameters as the
	// configured engine; a dropped field silently changes the fallback's
	// dynamics (correlated mode with zero strength degenerates to
	// independent instruments).
	cfg := feedConfig("ws://127.0.0.1:1/ws")
	cfg.Market.Mode = "correlated"
	cfg.Market.CorrelationStrength = 0.8
	cfg.Market.TickIntervalMs = 250
	cfg.Events.Probability = 0.05

	client := NewClient(cfg, logger.NewLogger("ERROR", "test"))
	opts := client.fallbackOptions()

	assert.Equal(t, "correlated", opts.Mode)
	assert.Equal(t, 0.8, opts.CorrelationStrength)
	assert.Equal(t, 250*time.Millisecond, opts.TickInterval)
	assert.Equal(t, 0.05, opts.EventProbability)
	// Only the event preset diverges from config
	assert.Equal(t, "client", opts.EventPreset)
}

// -----------------------------------------------------------------------------

func TestClientCloseIsIdempotent(t *testing.T) {
	client := NewClient(feedConfig("ws://127.0.0.1:1/ws"), logger.NewLogger("ERROR", "test"))
	client.Start()

	client.Close()
	client.Close()
	assert.Equal(t, StateClosed, client.State())

	select {
	case <-client.Done():
	default:
		t.Fatal("Done channel not closed")
	}
}
