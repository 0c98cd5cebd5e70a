package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Wire Messages (Matches the browser client exactly)
// -----------------------------------------------------------------------------

// Message type tags used on the websocket.
const (
	TypeConnected      = "connected"
	TypeMarketUpdate   = "market_update"
	TypeMarketEvent    = "market_event"
	TypeMarketSnapshot = "market_snapshot"
	TypeMarketRequest  = "market_request"
	TypePlayerAction   = "player_action"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeTradeResult    = "trade_result"
	TypeHireResult     = "hire_result"
)

// MConnected is sent once after a successful websocket upgrade.
type MConnected struct {
	Type     string `json:"type"`
	ClientID string `json:"clientId"`
	Message  string `json:"message"`
}

// MMarketUpdate carries one instrument's price for one tick.
type MMarketUpdate struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // epoch-ms
}

// MMarketEvent is published when the injector fires. Impact is a signed
// percentage (e.g. -12.5 for a 12.5% drop).
type MMarketEvent struct {
	Type        string  `json:"type"`
	EventType   string  `json:"eventType"`
	Symbol      string  `json:"symbol"`
	Impact      float64 `json:"impact"`
	Description string  `json:"description"`
	Timestamp   int64   `json:"timestamp"`
}

// MStockQuote is one entry of a snapshot.
type MStockQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// MMarketSnapshot is the full authoritative price vector, sent in response
// to a market_request.
type MMarketSnapshot struct {
	Type         string        `json:"type"`
	Stocks       []MStockQuote `json:"stocks"`
	MarketStatus string        `json:"market_status,omitempty"`
	Timestamp    int64         `json:"timestamp"`
}

type MPong struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// MClientCommand is the envelope for every inbound client message.
type MClientCommand struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action,omitempty"`
}
