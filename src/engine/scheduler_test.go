package engine

import (
	"sync"
	"testing"
	"time"

	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/market"
	"tycoon-market/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Test helpers
// -----------------------------------------------------------------------------

func testLogger() *logger.Logger {
	return logger.NewLogger("ERROR", "test")
}

func testInstruments() []*market.Instrument {
	seeds := []models.MInstrumentSeed{
		{Symbol: "APEX", Sector: "Technology", BasePrice: 150.00},
		{Symbol: "NOVA", Sector: "Energy", BasePrice: 85.50},
	}
	instruments := make([]*market.Instrument, len(seeds))
	for i, seed := range seeds {
		// Zero process parameters keep prices frozen so assertions are exact
		instruments[i] = market.NewInstrument(seed, models.MSectorParams{}, 100)
	}
	return instruments
}

func newTestScheduler(interval time.Duration) *TickScheduler {
	return NewTickScheduler(testInstruments(), market.NewSeededSource(1), Options{
		Mode:         "walk",
		TickInterval: interval,
	}, nil, testLogger())
}

// collector records delivered batches.
type collector struct {
	mu      sync.Mutex
	batches []models.MTickBatch
}

func (c *collector) OnTick(batch models.MTickBatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, batch)
}

func (c *collector) snapshot() []models.MTickBatch {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.MTickBatch, len(c.batches))
	copy(out, c.batches)
	return out
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func TestSchedulerLifecycle(t *testing.T) {
	ts := newTestScheduler(5 * time.Millisecond)
	assert.Equal(t, Idle, ts.CurrentState())

	ts.Start()
	assert.Equal(t, Running, ts.CurrentState())

	// Starting again is a no-op
	ts.Start()
	assert.Equal(t, Running, ts.CurrentState())

	ts.Stop()
	assert.Equal(t, Stopped, ts.CurrentState())

	// Stopping again is a no-op
	ts.Stop()
	assert.Equal(t, Stopped, ts.CurrentState())
}

func TestStopHaltsPublishing(t *testing.T) {
	ts := newTestScheduler(5 * time.Millisecond)
	col := &collector{}
	ts.Subscribe(col)

	ts.Start()
	time.Sleep(50 * time.Millisecond)
	ts.Stop()

	// Stop joins the tick goroutine: the count must be final
	count := len(col.snapshot())
	require.Greater(t, count, 0)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, count, len(col.snapshot()))
}

func TestRestartKeepsPriceVector(t *testing.T) {
	instruments := testInstruments()
	rng := market.NewSeededSource(9)
	ts := NewTickScheduler(instruments, rng, Options{Mode: "walk", TickInterval: 5 * time.Millisecond}, nil, testLogger())

	ts.Start()
	time.Sleep(30 * time.Millisecond)
	ts.Stop()

	price, ok := ts.PriceOf("APEX")
	require.True(t, ok)
	seqBefore := ts.Seq()

	ts.Start()
	defer ts.Stop()

	// Prices and sequence continue from where they stopped
	restarted, ok := ts.PriceOf("APEX")
	require.True(t, ok)
	assert.Equal(t, price, restarted)
	assert.GreaterOrEqual(t, ts.Seq(), seqBefore)
}

func TestResetRestoresBasePrices(t *testing.T) {
	seeds := []models.MInstrumentSeed{{Symbol: "APEX", Sector: "Technology", BasePrice: 150.00}}
	instruments := []*market.Instrument{
		market.NewInstrument(seeds[0], models.MSectorParams{Volatility: 0.05}, 100),
	}
	ts := NewTickScheduler(instruments, market.NewSeededSource(3), Options{Mode: "walk", TickInterval: 2 * time.Millisecond}, nil, testLogger())

	ts.Start()
	time.Sleep(40 * time.Millisecond)
	ts.Stop()

	seq := ts.Seq()
	require.Greater(t, seq, int64(0))

	ts.Reset()
	price, ok := ts.PriceOf("APEX")
	require.True(t, ok)
	assert.Equal(t, 150.00, price)
	// The sequence never goes backwards
	assert.Equal(t, seq, ts.Seq())
}

// -----------------------------------------------------------------------------
// Publishing semantics
// -----------------------------------------------------------------------------

func TestTickBatchShape(t *testing.T) {
	ts := newTestScheduler(5 * time.Millisecond)
	col := &collector{}
	ts.Subscribe(col)

	ts.Start()
	time.Sleep(50 * time.Millisecond)
	ts.Stop()

	batches := col.snapshot()
	require.NotEmpty(t, batches)

	var lastSeq, lastMillis int64
	for _, batch := range batches {
		// One update per instrument, every tick
		require.Len(t, batch.Updates, 2)
		assert.Equal(t, "APEX", batch.Updates[0].Symbol)
		assert.Equal(t, 150.00, batch.Updates[0].Price)
		assert.Equal(t, "NOVA", batch.Updates[1].Symbol)
		assert.Equal(t, 85.50, batch.Updates[1].Price)

		assert.Greater(t, batch.Seq, lastSeq)
		assert.Greater(t, batch.Timestamp, lastMillis)
		for _, u := range batch.Updates {
			assert.Equal(t, models.TypeMarketUpdate, u.Type)
			assert.Equal(t, batch.Timestamp, u.Timestamp)
		}
		lastSeq = batch.Seq
		lastMillis = batch.Timestamp
	}
}

func TestSubscribersNotifiedInRegistrationOrder(t *testing.T) {
	ts := newTestScheduler(5 * time.Millisecond)

	var mu sync.Mutex
	var order []string
	sub := func(name string) interfaces.ISubscriber {
		return interfaces.SubscriberFunc(func(models.MTickBatch) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}
	ts.Subscribe(sub("first"))
	ts.Subscribe(sub("second"))

	ts.Start()
	time.Sleep(30 * time.Millisecond)
	ts.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(order), 2)
	for i := 0; i+1 < len(order); i += 2 {
		assert.Equal(t, "first", order[i])
		assert.Equal(t, "second", order[i+1])
	}
}

func TestPanickingSubscriberDoesNotStopTicks(t *testing.T) {
	ts := newTestScheduler(5 * time.Millisecond)
	ts.Subscribe(interfaces.SubscriberFunc(func(models.MTickBatch) {
		panic("boom")
	}))
	col := &collector{}
	ts.Subscribe(col)

	ts.Start()
	time.Sleep(50 * time.Millisecond)
	ts.Stop()

	assert.NotEmpty(t, col.snapshot())
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

func TestSnapshotReflectsCurrentVector(t *testing.T) {
	ts := newTestScheduler(time.Hour)

	snap := ts.Snapshot()
	assert.Equal(t, models.TypeMarketSnapshot, snap.Type)
	require.Len(t, snap.Stocks, 2)
	assert.Equal(t, "APEX", snap.Stocks[0].Symbol)
	assert.Equal(t, 150.00, snap.Stocks[0].Price)
	assert.Greater(t, snap.Timestamp, int64(0))
}

func TestViewsCopyHistory(t *testing.T) {
	ts := newTestScheduler(time.Hour)

	views := ts.Views()
	require.Len(t, views, 2)
	require.Len(t, views[0].History, 1)

	// Mutating a view's history must not touch engine state
	views[0].History[0] = -1
	again := ts.Views()
	assert.Equal(t, 150.00, again[0].History[0])
}

func TestSnapshotAfterStopMatchesAuthoritativeVector(t *testing.T) {
	instruments := []*market.Instrument{
		market.NewInstrument(models.MInstrumentSeed{Symbol: "APEX", Sector: "Technology", BasePrice: 150.00},
			models.MSectorParams{Volatility: 0.05}, 100),
	}
	ts := NewTickScheduler(instruments, market.NewSeededSource(11), Options{Mode: "walk", TickInterval: 2 * time.Millisecond}, nil, testLogger())

	ts.Start()
	time.Sleep(40 * time.Millisecond)
	ts.Stop()

	// A snapshot taken any time after Stop reflects exactly the last
	// published price, however long the gap
	time.Sleep(20 * time.Millisecond)
	price, ok := ts.PriceOf("APEX")
	require.True(t, ok)

	snap := ts.Snapshot()
	require.Len(t, snap.Stocks, 1)
	assert.Equal(t, price, snap.Stocks[0].Price)
}

func TestPriceOfUnknownSymbol(t *testing.T) {
	ts := newTestScheduler(time.Hour)
	_, ok := ts.PriceOf("NOPE")
	assert.False(t, ok)
}
