package storage

import (
	"database/sql"
	"time"

	"tycoon-market/src/helpers"
	"tycoon-market/src/logger"
	"tycoon-market/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresRecorder struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresRecorder(cfg *models.MConfig, log *logger.Logger) (*PostgresRecorder, error) {
	return &PostgresRecorder{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewStorageError("failed to open postgres db", err)
	}

	// Postgres may still be starting when we are; retry before giving up
	if err := helpers.RetryWithBackoff(d.Logger, "postgres ping", 5, time.Second, db.Ping); err != nil {
		return helpers.NewStorageError("failed to ping postgres db", err)
	}

	d.DB = db

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_ticks (
			seq BIGINT,
			symbol TEXT,
			price DOUBLE PRECISION,
			timestamp BIGINT,
			PRIMARY KEY (seq, symbol)
		);
	`); err != nil {
		return helpers.NewStorageError("failed to create market_ticks", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS market_events (
			seq BIGINT PRIMARY KEY,
			event_type TEXT,
			symbol TEXT,
			impact DOUBLE PRECISION,
			description TEXT,
			timestamp BIGINT
		);
	`); err != nil {
		return helpers.NewStorageError("failed to create market_events", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) SaveTickBatch(batch models.MTickBatch) error {
	if len(batch.Updates) == 0 && batch.Event == nil {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return helpers.NewStorageError("failed to begin tick transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO market_ticks (seq, symbol, price, timestamp)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (seq, symbol) DO NOTHING
	`)
	if err != nil {
		return helpers.NewStorageError("failed to prepare tick insert", err)
	}
	defer stmt.Close()

	for _, u := range batch.Updates {
		if _, err := stmt.Exec(batch.Seq, u.Symbol, u.Price, u.Timestamp); err != nil {
			return helpers.NewStorageError("failed to insert tick", err)
		}
	}

	if batch.Event != nil {
		e := batch.Event
		if _, err := tx.Exec(`
			INSERT INTO market_events (seq, event_type, symbol, impact, description, timestamp)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (seq) DO NOTHING
		`, batch.Seq, e.EventType, e.Symbol, e.Impact, e.Description, e.Timestamp); err != nil {
			return helpers.NewStorageError("failed to insert event", err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	if _, err := d.DB.Exec("DELETE FROM market_ticks WHERE timestamp < $1", cutoff); err != nil {
		d.Logger.Error("Cleanup market_ticks error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM market_events WHERE timestamp < $1", cutoff); err != nil {
		d.Logger.Error("Cleanup market_events error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
