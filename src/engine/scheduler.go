package engine

import (
	"sync"
	"time"

	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/models"
	"tycoon-market/src/utils"
)

// -----------------------------------------------------------------------------
// TickScheduler owns the cadence and the authoritative price vector. It is
// the only writer of price state; subscribers and API handlers only ever see
// copies taken under the state lock.
// -----------------------------------------------------------------------------

type State int

const (
	Idle State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

// -----------------------------------------------------------------------------

// Options configure one scheduler instance.
type Options struct {
	Mode                string // "walk" or "correlated"
	TickInterval        time.Duration
	CorrelationStrength float64
	EventProbability    float64
	EventPreset         string
	GateToMarketHours   bool
}

type TickScheduler struct {
	log   *logger.Logger
	opts  Options
	hours *utils.MarketHours

	walk       *market.StochasticProcess
	correlated *market.CorrelatedMarketModel
	injector   *market.EventInjector

	mu          sync.RWMutex
	state       State
	seq         int64
	lastMillis  int64
	instruments []*market.Instrument
	subscribers []interfaces.ISubscriber

	stop chan struct{}
	done chan struct{}
}

// -----------------------------------------------------------------------------

// NewTickScheduler wires the stepping strategies and the injector around one
// instrument set. All randomness flows through the injected source.
func NewTickScheduler(instruments []*market.Instrument, rng interfaces.IRandomSource, opts Options, hours *utils.MarketHours, log *logger.Logger) *TickScheduler {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}

	return &TickScheduler{
		log:         log,
		opts:        opts,
		hours:       hours,
		walk:        market.NewStochasticProcess(rng),
		correlated:  market.NewCorrelatedMarketModel(rng, opts.CorrelationStrength),
		injector:    market.NewEventInjector(rng, opts.EventProbability, market.KindsForPreset(opts.EventPreset)),
		instruments: instruments,
	}
}

// -----------------------------------------------------------------------------

// Subscribe registers a subscriber. Delivery happens in registration order,
// synchronously within each tick.
func (ts *TickScheduler) Subscribe(sub interfaces.ISubscriber) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.subscribers = append(ts.subscribers, sub)
}

// -----------------------------------------------------------------------------

// Start transitions Idle/Stopped to Running and begins periodic ticking.
// Starting a running scheduler is a no-op.
func (ts *TickScheduler) Start() {
	ts.mu.Lock()
	if ts.state == Running {
		ts.mu.Unlock()
		return
	}
	ts.state = Running
	ts.stop = make(chan struct{})
	ts.done = make(chan struct{})
	stop, done := ts.stop, ts.done
	ts.mu.Unlock()

	go ts.run(stop, done)
	ts.log.Info("Scheduler started (mode=%s, interval=%s)", ts.opts.Mode, ts.opts.TickInterval)
}

// -----------------------------------------------------------------------------

// Stop transitions Running to Stopped. It cancels the pending timer and joins
// the tick goroutine: once Stop returns, no further state mutation or publish
// occurs. Stopping an idle or stopped scheduler is a no-op.
func (ts *TickScheduler) Stop() {
	ts.mu.Lock()
	if ts.state != Running {
		ts.mu.Unlock()
		return
	}
	ts.state = Stopped
	stop, done := ts.stop, ts.done
	ts.mu.Unlock()

	close(stop)
	<-done
	ts.log.Info("Scheduler stopped")
}

// -----------------------------------------------------------------------------

// Reset restores every instrument to its configured base price and empties
// each history down to a single seed entry. The tick sequence keeps counting
// up so subscribers never observe it going backwards.
func (ts *TickScheduler) Reset() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for _, inst := range ts.instruments {
		inst.Reset()
	}
}

// -----------------------------------------------------------------------------

func (ts *TickScheduler) run(stop, done chan struct{}) {
	ticker := time.NewTicker(ts.opts.TickInterval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A stop racing a pending tick wins.
			select {
			case <-stop:
				return
			default:
			}
			ts.tick()
		}
	}
}

// -----------------------------------------------------------------------------

// tick advances every instrument, maybe injects an event, then publishes the
// full vector. All instruments are updated before any subscriber is notified.
func (ts *TickScheduler) tick() {
	now := time.Now()
	if ts.opts.GateToMarketHours && ts.hours != nil && !ts.hours.IsOpen(now) {
		return
	}

	ts.mu.Lock()

	ts.seq++
	seq := ts.seq

	millis := now.UnixMilli()
	if millis <= ts.lastMillis {
		millis = ts.lastMillis + 1
	}
	ts.lastMillis = millis

	if ts.opts.Mode == "correlated" {
		ts.correlated.Step(ts.instruments)
	} else {
		for _, inst := range ts.instruments {
			ts.walk.Next(inst)
		}
	}

	event := ts.injector.MaybeInject(ts.instruments, now)
	if event != nil {
		event.Timestamp = millis
	}

	updates := make([]models.MMarketUpdate, len(ts.instruments))
	for i, inst := range ts.instruments {
		updates[i] = models.MMarketUpdate{
			Type:      models.TypeMarketUpdate,
			Symbol:    inst.Symbol,
			Price:     inst.Price,
			Timestamp: millis,
		}
	}

	subs := make([]interfaces.ISubscriber, len(ts.subscribers))
	copy(subs, ts.subscribers)

	ts.mu.Unlock()

	batch := models.MTickBatch{Seq: seq, Timestamp: millis, Updates: updates, Event: event}
	for _, sub := range subs {
		ts.deliver(sub, batch)
	}
}

// -----------------------------------------------------------------------------

// deliver is fire-and-forget per subscriber: a panicking subscriber is logged
// and skipped, never fatal to the tick.
func (ts *TickScheduler) deliver(sub interfaces.ISubscriber, batch models.MTickBatch) {
	defer func() {
		if r := recover(); r != nil {
			ts.log.Warning("Subscriber failed on tick %d: %v", batch.Seq, r)
		}
	}()
	sub.OnTick(batch)
}

// -----------------------------------------------------------------------------
// Read-only views
// -----------------------------------------------------------------------------

// Snapshot returns a consistent copy of the authoritative price vector.
func (ts *TickScheduler) Snapshot() models.MMarketSnapshot {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	stocks := make([]models.MStockQuote, len(ts.instruments))
	for i, inst := range ts.instruments {
		stocks[i] = models.MStockQuote{Symbol: inst.Symbol, Price: inst.Price}
	}

	status := ""
	if ts.hours != nil {
		status = ts.hours.Status(time.Now())
	}

	return models.MMarketSnapshot{
		Type:         models.TypeMarketSnapshot,
		Stocks:       stocks,
		MarketStatus: status,
		Timestamp:    time.Now().UnixMilli(),
	}
}

// -----------------------------------------------------------------------------

// PriceOf returns the current price for one symbol.
func (ts *TickScheduler) PriceOf(symbol string) (float64, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	for _, inst := range ts.instruments {
		if inst.Symbol == symbol {
			return inst.Price, true
		}
	}
	return 0, false
}

// -----------------------------------------------------------------------------

// InstrumentView is a read-only copy of one instrument for analytics.
type InstrumentView struct {
	Symbol            string    `json:"symbol"`
	DisplayName       string    `json:"display_name"`
	Sector            string    `json:"sector"`
	Price             float64   `json:"price"`
	NominalVolatility float64   `json:"nominal_volatility"`
	History           []float64 `json:"history"`
}

// Views returns read-only copies of every instrument, history included.
func (ts *TickScheduler) Views() []InstrumentView {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	views := make([]InstrumentView, len(ts.instruments))
	for i, inst := range ts.instruments {
		views[i] = InstrumentView{
			Symbol:            inst.Symbol,
			DisplayName:       inst.DisplayName,
			Sector:            inst.Sector,
			Price:             inst.Price,
			NominalVolatility: inst.Params.Volatility,
			History:           inst.History.All(),
		}
	}
	return views
}

// -----------------------------------------------------------------------------

// CurrentState reports the scheduler lifecycle state.
func (ts *TickScheduler) CurrentState() State {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.state
}

// -----------------------------------------------------------------------------

// Seq returns the last published tick sequence number.
func (ts *TickScheduler) Seq() int64 {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	return ts.seq
}
