package feed

import (
	"sync"

	"tycoon-market/src/models"
	"tycoon-market/src/utils"
)

// -----------------------------------------------------------------------------
// Store is the consuming side's read model: read-only copies of the
// authoritative prices, refreshed from whatever source currently feeds it
// (live connection or local fallback). Application is idempotent, so a
// duplicated snapshot after reconnect is harmless.
// -----------------------------------------------------------------------------

type StockEntry struct {
	Symbol  string
	Price   float64
	History *utils.PriceHistory
}

type Store struct {
	mu              sync.RWMutex
	stocks          map[string]*StockEntry
	order           []string
	historyCapacity int
	lastUpdate      int64
}

// -----------------------------------------------------------------------------

func NewStore(historyCapacity int) *Store {
	return &Store{
		stocks:          make(map[string]*StockEntry),
		historyCapacity: historyCapacity,
	}
}

// -----------------------------------------------------------------------------

// ApplyUpdate records one instrument's new price. Unknown symbols are added
// on first sight.
func (st *Store) ApplyUpdate(update models.MMarketUpdate) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.applyLocked(update.Symbol, update.Price)
	if update.Timestamp > st.lastUpdate {
		st.lastUpdate = update.Timestamp
	}
}

// -----------------------------------------------------------------------------

// ApplySnapshot replaces current prices with the authoritative vector.
// Last message wins; no merging with locally simulated prices.
func (st *Store) ApplySnapshot(snap models.MMarketSnapshot) {
	st.mu.Lock()
	defer st.mu.Unlock()
	for _, quote := range snap.Stocks {
		st.applyLocked(quote.Symbol, quote.Price)
	}
	if snap.Timestamp > st.lastUpdate {
		st.lastUpdate = snap.Timestamp
	}
}

// -----------------------------------------------------------------------------

func (st *Store) applyLocked(symbol string, price float64) {
	entry, ok := st.stocks[symbol]
	if !ok {
		entry = &StockEntry{
			Symbol:  symbol,
			History: utils.NewPriceHistory(st.historyCapacity),
		}
		st.stocks[symbol] = entry
		st.order = append(st.order, symbol)
	}
	entry.Price = price
	entry.History.Append(price)
}

// -----------------------------------------------------------------------------

// Quote returns the latest known price for a symbol.
func (st *Store) Quote(symbol string) (float64, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	entry, ok := st.stocks[symbol]
	if !ok {
		return 0, false
	}
	return entry.Price, true
}

// -----------------------------------------------------------------------------

// Quotes returns every known price in first-seen order.
func (st *Store) Quotes() []models.MStockQuote {
	st.mu.RLock()
	defer st.mu.RUnlock()
	quotes := make([]models.MStockQuote, 0, len(st.order))
	for _, symbol := range st.order {
		quotes = append(quotes, models.MStockQuote{Symbol: symbol, Price: st.stocks[symbol].Price})
	}
	return quotes
}

// -----------------------------------------------------------------------------

// HistoryOf returns a copy of a symbol's price history, oldest-first.
func (st *Store) HistoryOf(symbol string) []float64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	entry, ok := st.stocks[symbol]
	if !ok {
		return nil
	}
	return entry.History.All()
}

// -----------------------------------------------------------------------------

// LastUpdate returns the timestamp of the newest applied message.
func (st *Store) LastUpdate() int64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.lastUpdate
}
