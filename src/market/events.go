package market

import (
	"fmt"
	"time"

	"tycoon-market/src/interfaces"
	"tycoon-market/src/models"
)

// -----------------------------------------------------------------------------
// EventInjector: rare, discrete large-magnitude price dislocations, decoupled
// from the continuous walk.
// -----------------------------------------------------------------------------

// Event kinds across both presets.
const (
	EventCrash       = "crash"
	EventBoom        = "boom"
	EventNews        = "news"
	EventEarnings    = "earnings"
	EventMergerRumor = "merger_rumor"
	EventRegulatory  = "regulatory"
)

// ImpactRange is a signed fractional price impact band.
type ImpactRange struct {
	Min float64
	Max float64
}

// KindTable maps event kinds to impact bands. Kinds keeps a stable draw order
// so seeded runs replay identically.
type KindTable struct {
	Kinds  []string
	Ranges map[string]ImpactRange
}

// -----------------------------------------------------------------------------

// ServerKinds is the preset used by the authoritative server feed.
func ServerKinds() KindTable {
	news := ImpactRange{Min: -0.05, Max: 0.05}
	return KindTable{
		Kinds: []string{EventNews, EventEarnings, EventMergerRumor, EventRegulatory},
		Ranges: map[string]ImpactRange{
			EventNews:        news,
			EventEarnings:    news,
			EventMergerRumor: {Min: -0.075, Max: 0.075},
			EventRegulatory:  news,
		},
	}
}

// -----------------------------------------------------------------------------

// ClientKinds is the preset used by the client-local fallback feed.
func ClientKinds() KindTable {
	return KindTable{
		Kinds: []string{EventCrash, EventBoom, EventNews},
		Ranges: map[string]ImpactRange{
			EventCrash: {Min: -0.25, Max: -0.15},
			EventBoom:  {Min: 0.10, Max: 0.25},
			EventNews:  {Min: -0.05, Max: 0.05},
		},
	}
}

// -----------------------------------------------------------------------------

// KindsForPreset resolves a configured preset name; unknown names fall back
// to the server table.
func KindsForPreset(name string) KindTable {
	if name == "client" {
		return ClientKinds()
	}
	return ServerKinds()
}

// -----------------------------------------------------------------------------

type EventInjector struct {
	rng         interfaces.IRandomSource
	probability float64
	table       KindTable
}

// -----------------------------------------------------------------------------

func NewEventInjector(rng interfaces.IRandomSource, probability float64, table KindTable) *EventInjector {
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}
	return &EventInjector{rng: rng, probability: probability, table: table}
}

// -----------------------------------------------------------------------------

// MaybeInject fires with the configured per-tick probability. When it fires
// it picks a kind and a target instrument uniformly, applies the impact and
// returns the event record; otherwise it returns nil. The post-event price
// counts as a tick for history purposes.
func (ei *EventInjector) MaybeInject(instruments []*Instrument, now time.Time) *models.MMarketEvent {
	if len(instruments) == 0 || ei.probability <= 0 {
		return nil
	}
	if ei.rng.Float64() >= ei.probability {
		return nil
	}

	kind := ei.table.Kinds[ei.rng.Intn(len(ei.table.Kinds))]
	target := instruments[ei.rng.Intn(len(instruments))]
	return ei.Inject(target, kind, now)
}

// -----------------------------------------------------------------------------

// Inject applies an event of the given kind to a specific instrument and
// returns the record. Mutation is never silent: callers always receive the
// observable event for notification and audit.
func (ei *EventInjector) Inject(inst *Instrument, kind string, now time.Time) *models.MMarketEvent {
	r, ok := ei.table.Ranges[kind]
	if !ok {
		return nil
	}

	impact := r.Min + ei.rng.Float64()*(r.Max-r.Min)
	inst.ApplyPrice(inst.Price * (1 + impact))

	return &models.MMarketEvent{
		Type:        models.TypeMarketEvent,
		EventType:   kind,
		Symbol:      inst.Symbol,
		Impact:      impact * 100, // Signed percentage on the wire
		Description: describeEvent(kind, inst.Symbol, impact),
		Timestamp:   now.UnixMilli(),
	}
}

// -----------------------------------------------------------------------------

func describeEvent(kind, symbol string, impact float64) string {
	direction := "negative"
	if impact > 0 {
		direction = "positive"
	}

	switch kind {
	case EventCrash:
		return fmt.Sprintf("Sudden sell-off hits %s", symbol)
	case EventBoom:
		return fmt.Sprintf("Buying frenzy lifts %s", symbol)
	case EventNews:
		return fmt.Sprintf("Breaking news affects %s stock with %s sentiment", symbol, direction)
	case EventEarnings:
		if impact > 0 {
			return fmt.Sprintf("%s reports better than expected earnings", symbol)
		}
		return fmt.Sprintf("%s reports worse than expected earnings", symbol)
	case EventMergerRumor:
		return fmt.Sprintf("Merger rumors surrounding %s cause %s market reaction", symbol, direction)
	case EventRegulatory:
		return fmt.Sprintf("Regulatory update impacts %s and related companies", symbol)
	default:
		return fmt.Sprintf("Market event affects %s", symbol)
	}
}
