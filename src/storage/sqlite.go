package storage

import (
	"database/sql"
	"time"

	"tycoon-market/src/helpers"
	"tycoon-market/src/logger"
	"tycoon-market/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteRecorder struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteRecorder(cfg *models.MConfig, log *logger.Logger) (*SQLiteRecorder, error) {
	return &SQLiteRecorder{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewStorageError("failed to open sqlite db", err)
	}

	if err := db.Ping(); err != nil {
		return helpers.NewStorageError("failed to ping sqlite db", err)
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.recreateTables()
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) recreateTables() error {
	// Ticks carry no durability promise, so each run starts fresh.
	if _, err := d.DB.Exec("DROP TABLE IF EXISTS market_ticks"); err != nil {
		return helpers.NewStorageError("failed to drop market_ticks", err)
	}
	if _, err := d.DB.Exec(`
		CREATE TABLE market_ticks (
			seq INTEGER,
			symbol TEXT,
			price REAL,
			timestamp INTEGER,
			PRIMARY KEY (seq, symbol)
		);
	`); err != nil {
		return helpers.NewStorageError("failed to create market_ticks", err)
	}

	if _, err := d.DB.Exec("DROP TABLE IF EXISTS market_events"); err != nil {
		return helpers.NewStorageError("failed to drop market_events", err)
	}
	if _, err := d.DB.Exec(`
		CREATE TABLE market_events (
			seq INTEGER PRIMARY KEY,
			event_type TEXT,
			symbol TEXT,
			impact REAL,
			description TEXT,
			timestamp INTEGER
		);
	`); err != nil {
		return helpers.NewStorageError("failed to create market_events", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) SaveTickBatch(batch models.MTickBatch) error {
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
		VALUES (?, ?, ?, ?)
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
			VALUES (?, ?, ?, ?, ?, ?)
		`, batch.Seq, e.EventType, e.Symbol, e.Impact, e.Description, e.Timestamp); err != nil {
			return helpers.NewStorageError("failed to insert event", err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).UnixMilli()

	if _, err := d.DB.Exec("DELETE FROM market_ticks WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup market_ticks error: %v", err)
	}
	if _, err := d.DB.Exec("DELETE FROM market_events WHERE timestamp < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup market_events error: %v", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRecorder) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
