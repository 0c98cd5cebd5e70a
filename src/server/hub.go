package server

import (
	"encoding/json"
	"net/http"
	"time"

	"tycoon-market/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub is the main Hub loop
func (s *GameServer) runHub() {
	for {
		select {
		case <-s.quit:
			s.clientsMu.Lock()
			for client := range s.clients {
				delete(s.clients, client)
				close(client.send)
			}
			s.clientsMu.Unlock()
			return

		case client := <-s.register:
			s.clientsMu.Lock()
			s.clients[client] = struct{}{}
			s.clientsMu.Unlock()
			// Welcome message, then the current snapshot so a fresh client
			// renders immediately
			client.send <- models.MConnected{
				Type:     models.TypeConnected,
				ClientID: client.id,
				Message:  "Connected to Financial Tycoon game server",
			}
			client.send <- s.scheduler.Snapshot()
			s.Logger.Info("Game client connected: %s", client.id)

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				s.clientsMu.Lock()
				delete(s.clients, client)
				s.clientsMu.Unlock()
				close(client.send)
				s.Logger.Info("Game client disconnected: %s", client.id)
			}

		case batch := <-s.broadcast:
			// One market_update per instrument, matching the browser client,
			// plus the event when the injector fired.
			for client := range s.clients {
				delivered := true
				for _, update := range batch.Updates {
					if !client.trySend(update) {
						delivered = false
						break
					}
				}
				if delivered && batch.Event != nil {
					delivered = client.trySend(*batch.Event)
				}
				if !delivered {
					// Client too slow, disconnect to prevent Hub blocking
					s.clientsMu.Lock()
					delete(s.clients, client)
					s.clientsMu.Unlock()
					close(client.send)
					s.Logger.Warning("Dropped slow client: %s", client.id)
				}
			}
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *GameServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warning("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		hub:  s,
		conn: conn,
		id:   "client_" + uuid.NewString()[:8],
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan interface{}, 256),
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *GameServer) handleClientMessage(client *Client, message []byte) {
	var cmd models.MClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		// Malformed payloads are discarded; the tick loop is never
		// interrupted by a subscriber-side fault.
		s.Logger.Warning("Discarding malformed message from %s: %v", client.id, err)
		return
	}

	switch cmd.Type {
	case models.TypeMarketRequest:
		client.trySend(s.scheduler.Snapshot())

	case models.TypePing:
		client.trySend(models.MPong{Type: models.TypePong, Timestamp: time.Now().UnixMilli()})

	case models.TypePlayerAction:
		s.handlePlayerAction(client, cmd.Action)

	default:
		s.Logger.Debug("Unknown message type from %s: %s", client.id, cmd.Type)
	}
}

// -----------------------------------------------------------------------------

func (s *GameServer) handlePlayerAction(client *Client, raw json.RawMessage) {
	var action models.MPlayerAction
	if err := json.Unmarshal(raw, &action); err != nil {
		s.Logger.Warning("Discarding malformed player action from %s: %v", client.id, err)
		return
	}

	result, err := s.game.Apply(client.id, action, time.Now())
	if err != nil {
		s.Logger.Debug("Unknown player action from %s: %v", client.id, err)
		return
	}
	client.trySend(result)
}
