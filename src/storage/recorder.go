package storage

import (
	"tycoon-market/src/interfaces"
	"tycoon-market/src/logger"
	"tycoon-market/src/models"
)

// -----------------------------------------------------------------------------
// TickRecorder adapts an IRecorder backend into a scheduler subscriber.
// Writes are best-effort relative to tick advancement: a failed insert is
// logged and the tick loop carries on.
// -----------------------------------------------------------------------------

// cleanupEvery is the tick count between retention sweeps.
const cleanupEvery = 3600

type TickRecorder struct {
	db    interfaces.IRecorder
	log   *logger.Logger
	ticks int64
}

// -----------------------------------------------------------------------------

func NewTickRecorder(db interfaces.IRecorder, log *logger.Logger) *TickRecorder {
	return &TickRecorder{db: db, log: log}
}

// -----------------------------------------------------------------------------

func (r *TickRecorder) OnTick(batch models.MTickBatch) {
	if err := r.db.SaveTickBatch(batch); err != nil {
		r.log.Warning("Failed to record tick %d: %v", batch.Seq, err)
		return
	}

	r.ticks++
	if r.ticks%cleanupEvery == 0 {
		if err := r.db.CleanupOldData(); err != nil {
			r.log.Warning("Retention cleanup failed: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// NewRecorderForConfig builds the backend selected by config, or nil when
// recording is disabled.
func NewRecorderForConfig(cfg *models.MConfig, log *logger.Logger) (interfaces.IRecorder, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		return NewPostgresRecorder(cfg, log)
	case "sqlite":
		return NewSQLiteRecorder(cfg, log)
	default:
		return nil, nil
	}
}
