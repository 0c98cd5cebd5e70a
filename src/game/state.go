package game

import (
	"fmt"
	"sync"
	"time"

	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/models"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Thin player/company state reducers. Pure arithmetic transitions; no
// simulation logic lives here. Prices are looked up through an injected
// dependency, never through ambient state.
// -----------------------------------------------------------------------------

const (
	StarterCash = 10_000.00

	// Hiring bands from the game design: competence 50-79, loyalty 60-89.
	hireCompetenceBase = 50
	hireCompetenceSpan = 30
	hireLoyaltyBase    = 60
	hireLoyaltySpan    = 30
)

// PriceLookup resolves the current authoritative price for a symbol.
type PriceLookup interface {
	PriceOf(symbol string) (float64, bool)
}

type State struct {
	log    *logger.Logger
	rng    interfaces.IRandomSource
	prices PriceLookup

	mu      sync.Mutex
	players map[string]*models.MPlayer
}

// -----------------------------------------------------------------------------

func NewState(prices PriceLookup, rng interfaces.IRandomSource, log *logger.Logger) *State {
	return &State{
		log:     log,
		rng:     rng,
		prices:  prices,
		players: make(map[string]*models.MPlayer),
	}
}

// -----------------------------------------------------------------------------

// PlayerFor returns the player bound to a client id, creating a fresh one
// with starter cash on first use.
func (s *State) PlayerFor(clientID string) *models.MPlayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerForLocked(clientID)
}

func (s *State) playerForLocked(clientID string) *models.MPlayer {
	if p, ok := s.players[clientID]; ok {
		return p
	}
	p := &models.MPlayer{
		ID:        clientID,
		Name:      "Player",
		Cash:      StarterCash,
		NetWorth:  StarterCash,
		Portfolio: make(map[string]float64),
	}
	s.players[clientID] = p
	return p
}

// -----------------------------------------------------------------------------

// Apply runs one player action and returns the client-facing result message.
func (s *State) Apply(clientID string, action models.MPlayerAction, now time.Time) (interface{}, error) {
	switch action.Type {
	case "trade":
		return s.applyTrade(clientID, action, now)
	case "hire_employee":
		return s.applyHire(action, now), nil
	default:
		return nil, fmt.Errorf("unknown player action '%s'", action.Type)
	}
}

// -----------------------------------------------------------------------------

func (s *State) applyTrade(clientID string, action models.MPlayerAction, now time.Time) (models.MTradeResult, error) {
	result := models.MTradeResult{
		Type:      models.TypeTradeResult,
		Symbol:    action.Symbol,
		Shares:    action.Shares,
		Timestamp: now.UnixMilli(),
	}

	if action.Shares <= 0 {
		result.Error = "shares must be greater than 0"
		return result, nil
	}

	price, ok := s.prices.PriceOf(action.Symbol)
	if !ok {
		// Unknown symbols are a no-op, not fatal.
		result.Error = fmt.Sprintf("unknown symbol '%s'", action.Symbol)
		return result, nil
	}
	result.Price = price

	s.mu.Lock()
	defer s.mu.Unlock()
	player := s.playerForLocked(clientID)

	notional := price * action.Shares
	switch action.Side {
	case "buy":
		if notional > player.Cash {
			result.Error = "insufficient funds"
			return result, nil
		}
		player.Cash -= notional
		player.Portfolio[action.Symbol] += action.Shares
	case "sell":
		if player.Portfolio[action.Symbol] < action.Shares {
			result.Error = "insufficient shares"
			return result, nil
		}
		player.Cash += notional
		player.Portfolio[action.Symbol] -= action.Shares
		if player.Portfolio[action.Symbol] == 0 {
			delete(player.Portfolio, action.Symbol)
		}
	default:
		result.Error = fmt.Sprintf("unknown trade side '%s'", action.Side)
		return result, nil
	}

	player.NetWorth = s.netWorthLocked(player)
	result.Success = true
	s.log.Debug("Trade %s %s %.0f x %s @ %.2f (cash %.2f)",
		clientID, action.Side, action.Shares, action.Symbol, price, player.Cash)
	return result, nil
}

// -----------------------------------------------------------------------------

func (s *State) netWorthLocked(player *models.MPlayer) float64 {
	worth := player.Cash
	for symbol, shares := range player.Portfolio {
		if price, ok := s.prices.PriceOf(symbol); ok {
			worth += price * shares
		}
	}
	return worth
}

// -----------------------------------------------------------------------------

func (s *State) applyHire(action models.MPlayerAction, now time.Time) models.MHireResult {
	name := action.Name
	if name == "" {
		name = "New Employee"
	}
	role := action.Role
	if role == "" {
		role = "analyst"
	}

	employee := models.MEmployee{
		ID:         "emp_" + uuid.NewString(),
		Name:       name,
		Role:       role,
		Competence: hireCompetenceBase + s.rng.Intn(hireCompetenceSpan),
		Loyalty:    hireLoyaltyBase + s.rng.Intn(hireLoyaltySpan),
		HireDate:   now.UnixMilli(),
	}
	s.log.Debug("Hired %s (%s): competence %d, loyalty %d",
		employee.Name, employee.Role, employee.Competence, employee.Loyalty)

	return models.MHireResult{
		Type:      models.TypeHireResult,
		Success:   true,
		Employee:  employee,
		Timestamp: now.UnixMilli(),
	}
}
