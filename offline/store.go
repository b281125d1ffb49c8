package offline

import "context"

const (
	// DBName identifies the local database.
	DBName = "nabha-learning"
	// SchemaVersion is the version of the local collections layout.
	SchemaVersion = 1
)

// Store is the durable local store owning the content, progress and sync queue collections.
// Every operation initializes the store on first use. Each operation is atomic on its own;
// none spans another.
type Store interface {
	// Init opens or creates the collections. It is idempotent and never wipes data.
	// Failures are ErrStorageUnavailable and are retried on the next call.
	Init(ctx context.Context) error

	// StoreContent upserts items by ID in order. Items written before a failure stay written.
	StoreContent(ctx context.Context, items []ContentRecord) error
	// GetOfflineContent returns all cached content ordered by ID.
	GetOfflineContent(ctx context.Context) ([]ContentRecord, error)
	// GetContentByCategory returns cached content of one category ordered by ID.
	GetContentByCategory(ctx context.Context, categoryID string) ([]ContentRecord, error)

	// StoreProgress upserts rec by its key (see ProgressRecord.Keyed).
	StoreProgress(ctx context.Context, rec ProgressRecord) error
	// GetStoredProgress returns the records of one student ordered by ID.
	GetStoredProgress(ctx context.Context, studentID string) ([]ProgressRecord, error)

	// QueueSync appends p with the next ID and the current time.
	QueueSync(ctx context.Context, p Payload) (Entry, error)
	// GetSyncQueue returns all entries in ascending ID order.
	GetSyncQueue(ctx context.Context) ([]Entry, error)
	// ClearSyncQueue removes every entry.
	ClearSyncQueue(ctx context.Context) error
	// ClearSyncQueueThrough removes every entry with an ID <= id.
	ClearSyncQueueThrough(ctx context.Context, id int64) error

	Close() error
}
