package interfaces

import "tycoon-market/src/models"

// -----------------------------------------------------------------------------
// IRecorder defines the contract for tick persistence backends.
// -----------------------------------------------------------------------------

type IRecorder interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveTickBatch inserts one tick's updates and event, if any.
	SaveTickBatch(batch models.MTickBatch) error

	// -----------------------------------------------------------------------------

	// CleanupOldData removes data older than the retention policy.
	CleanupOldData() error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
