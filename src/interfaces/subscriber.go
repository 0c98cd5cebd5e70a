package interfaces

import "tycoon-market/src/models"

// -----------------------------------------------------------------------------
// ISubscriber receives the full tick batch after every instrument has been
// updated. Delivery is synchronous and in registration order; implementations
// must not block the tick loop.
// -----------------------------------------------------------------------------

type ISubscriber interface {
	OnTick(batch models.MTickBatch)
}

// -----------------------------------------------------------------------------

// SubscriberFunc adapts a plain function to ISubscriber.
type SubscriberFunc func(batch models.MTickBatch)

func (f SubscriberFunc) OnTick(batch models.MTickBatch) {
	f(batch)
}
