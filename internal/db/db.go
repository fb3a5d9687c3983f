package db

import (
	"context"
	"fmt"
	"os"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdxmph/hangs-tui/internal/logger"
	"github.com/pdxmph/hangs-tui/internal/validation"
)

// DB wraps the database connection and fans out snapshots after writes
type DB struct {
	conn     *sqlx.DB
	path     string
	log      *logger.Logger
	validate *validation.Validator
	broker   *Broker
	now      func() time.Time
}

// Option configures a DB
type Option func(*DB)

// WithLogger sets the logger used for migrations and publish failures
func WithLogger(l *logger.Logger) Option {
	return func(db *DB) { db.log = l }
}

// WithClock overrides time.Now for created/updated timestamps
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// Open opens an existing database and runs pending migrations
func Open(dbPath string, opts ...Option) (*DB, error) {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found at %s\nRun 'hangs init' to create it", dbPath)
	}

	conn, err := sqlx.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db := New(conn, opts...)
	db.path = dbPath

	if err := db.RunMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// New wraps an already open connection. It does not migrate.
func New(conn *sqlx.DB, opts ...Option) *DB {
	db := &DB{
		conn:     conn,
		log:      logger.Discard(),
		validate: validation.New(),
		broker:   NewBroker(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Close closes the database connection and ends all subscriptions
func (db *DB) Close() error {
	db.broker.Close()
	return db.conn.Close()
}

// Path is the database file, empty for connections made with New
func (db *DB) Path() string {
	return db.path
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

// Subscribe streams snapshots: the current one first, then one after every
// change. A slow reader only ever sees the latest snapshot. The channel
// closes when ctx is done or the DB is closed.
func (db *DB) Subscribe(ctx context.Context) (<-chan *Snapshot, error) {
	ch, hasLatest, unsubscribe := db.broker.subscribe(ctx)
	if !hasLatest {
		if err := db.Refresh(ctx); err != nil {
			unsubscribe()
			return nil, err
		}
	}
	return ch, nil
}

// Refresh reads a fresh snapshot and hands it to subscribers
func (db *DB) Refresh(ctx context.Context) error {
	snap, err := db.Snapshot(ctx)
	if err != nil {
		return err
	}
	db.broker.Publish(snap)
	return nil
}

// changed is called after every committed write
func (db *DB) changed(ctx context.Context) {
	if db.broker.Subscribers() == 0 {
		db.broker.Invalidate()
		return
	}
	if err := db.Refresh(ctx); err != nil {
		db.log.WithError(err).Error("publishing snapshot")
	}
}

// exec runs a built statement and returns the affected row count
func exec(ctx context.Context, tx *sqlx.Tx, b sq.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
