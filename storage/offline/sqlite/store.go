package sqlite

import (
	"context"
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/trezcool/nabha/offline"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is an offline.Store backed by a SQLite file in its data directory.
type Store struct {
	dataDir string

	mu sync.Mutex
	db *sqlx.DB
}

var _ offline.Store = (*Store)(nil) // interface compliance check

// New returns a Store for dataDir. Nothing is opened until the first operation.
func New(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Path is the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dataDir, offline.DBName+".db")
}

func (s *Store) open() (*sqlx.DB, error) {
	if err := os.MkdirAll(s.dataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}

	dsn := "file:" + s.Path() + "?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on"
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if err := migrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateUp(db *sqlx.DB) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "loading migrations")
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return errors.Wrap(err, "creating migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return errors.Wrap(err, "instantiating migrations")
	}
	// m.Close() would close db
	if err := m.Migrate(offline.SchemaVersion); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "running migrations")
	}
	return nil
}

func (s *Store) conn() (*sqlx.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	db, err := s.open()
	if err != nil {
		return nil, offline.StorageUnavailable("init "+s.Path(), err)
	}
	s.db = db
	return db, nil
}

func (s *Store) Init(context.Context) error {
	_, err := s.conn()
	return err
}

func (s *Store) exec(ctx context.Context, b sq.Sqlizer) error {
	db, err := s.conn()
	if err != nil {
		return err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) selectData(ctx context.Context, b sq.SelectBuilder) ([][]byte, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var data [][]byte
	if err := db.SelectContext(ctx, &data, query, args...); err != nil {
		return nil, err
	}
	return data, nil
}

func upsert(table, index string, id, indexed string, data []byte) sq.InsertBuilder {
	return sq.Insert(table).
		Columns("id", index, "data").
		Values(id, indexed, data).
		Suffix("ON CONFLICT(id) DO UPDATE SET " + index + " = excluded." + index + ", data = excluded.data")
}

func (s *Store) StoreContent(ctx context.Context, items []offline.ContentRecord) error {
	for _, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return errors.Wrapf(err, "encoding content %s", item.ID)
		}
		if err := s.exec(ctx, upsert("content", "category", item.ID, item.CategoryID, data)); err != nil {
			return errors.Wrapf(err, "storing content %s", item.ID)
		}
	}
	return nil
}

func (s *Store) queryContent(ctx context.Context, b sq.SelectBuilder) ([]offline.ContentRecord, error) {
	rows, err := s.selectData(ctx, b.OrderBy("id"))
	if err != nil {
		return nil, errors.Wrap(err, "querying content")
	}
	items := make([]offline.ContentRecord, 0, len(rows))
	for _, data := range rows {
		var item offline.ContentRecord
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, errors.Wrap(err, "decoding content")
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Store) GetOfflineContent(ctx context.Context) ([]offline.ContentRecord, error) {
	return s.queryContent(ctx, sq.Select("data").From("content"))
}

func (s *Store) GetContentByCategory(ctx context.Context, categoryID string) ([]offline.ContentRecord, error) {
	return s.queryContent(ctx, sq.Select("data").From("content").Where(sq.Eq{"category": categoryID}))
}

func (s *Store) StoreProgress(ctx context.Context, rec offline.ProgressRecord) error {
	rec = rec.Keyed()
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encoding progress %s", rec.ID)
	}
	if err := s.exec(ctx, upsert("progress", "student", rec.ID, rec.StudentID, data)); err != nil {
		return errors.Wrapf(err, "storing progress %s", rec.ID)
	}
	return nil
}

func (s *Store) GetStoredProgress(ctx context.Context, studentID string) ([]offline.ProgressRecord, error) {
	rows, err := s.selectData(ctx, sq.Select("data").From("progress").Where(sq.Eq{"student": studentID}).OrderBy("id"))
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}
	recs := make([]offline.ProgressRecord, 0, len(rows))
	for _, data := range rows {
		var rec offline.ProgressRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, errors.Wrap(err, "decoding progress")
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

type queueRow struct {
	ID        int64  `db:"id"`
	Type      string `db:"type"`
	Data      []byte `db:"data"`
	Timestamp int64  `db:"timestamp"`
}

func (s *Store) QueueSync(ctx context.Context, p offline.Payload) (offline.Entry, error) {
	typ, data, err := offline.EncodePayload(p)
	if err != nil {
		return offline.Entry{}, err
	}
	db, err := s.conn()
	if err != nil {
		return offline.Entry{}, err
	}

	tstamp := time.Now().UnixNano() / int64(time.Millisecond)
	query, args, err := sq.Insert("sync_queue").
		Columns("type", "data", "timestamp").
		Values(string(typ), data, tstamp).
		ToSql()
	if err != nil {
		return offline.Entry{}, errors.Wrap(err, "building query")
	}
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return offline.Entry{}, errors.Wrap(err, "queueing sync entry")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return offline.Entry{}, errors.Wrap(err, "reading sync entry id")
	}
	return offline.Entry{ID: id, Payload: p, Timestamp: tstamp}, nil
}

func (s *Store) GetSyncQueue(ctx context.Context) ([]offline.Entry, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query, args, err := sq.Select("id", "type", "data", "timestamp").From("sync_queue").OrderBy("id").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []queueRow
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying sync queue")
	}

	entries := make([]offline.Entry, 0, len(rows))
	for _, row := range rows {
		p, err := offline.DecodePayload(offline.EntryType(row.Type), row.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "sync entry %d", row.ID)
		}
		entries = append(entries, offline.Entry{ID: row.ID, Payload: p, Timestamp: row.Timestamp})
	}
	return entries, nil
}

func (s *Store) ClearSyncQueue(ctx context.Context) error {
	return errors.Wrap(s.exec(ctx, sq.Delete("sync_queue")), "clearing sync queue")
}

func (s *Store) ClearSyncQueueThrough(ctx context.Context, id int64) error {
	return errors.Wrap(s.exec(ctx, sq.Delete("sync_queue").Where(sq.LtOrEq{"id": id})), "clearing sync queue")
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
