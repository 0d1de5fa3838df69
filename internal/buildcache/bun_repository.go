package buildcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

// OpenSQLite opens (or creates) the SQLite database backing the build cache
// and ensures the schema exists.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("buildcache: open db: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("buildcache: ping: %w", err)
	}

	db := bun.NewDB(conn, sqlitedialect.New())
	if _, err := db.NewCreateTable().Model((*Record)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("buildcache: create schema: %w", err)
	}
	return db, nil
}

// BunRepository stores build records in SQLite through bun.
type BunRepository struct {
	db *bun.DB
}

func NewBunRepository(db *bun.DB) *BunRepository {
	return &BunRepository{db: db}
}

func (r *BunRepository) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return errors.New("buildcache: record required")
	}
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, err := r.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return fmt.Errorf("buildcache: save record: %w", err)
	}
	return nil
}

func (r *BunRepository) Latest(ctx context.Context) (*Record, error) {
	record := new(Record)
	err := r.db.NewSelect().
		Model(record).
		Order("started_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("buildcache: latest record: %w", err)
	}
	return record, nil
}

func (r *BunRepository) List(ctx context.Context, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []*Record
	err := r.db.NewSelect().
		Model(&records).
		Order("started_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("buildcache: list records: %w", err)
	}
	return records, nil
}

func (r *BunRepository) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	subquery := r.db.NewSelect().
		Model((*Record)(nil)).
		Column("id").
		Order("started_at DESC").
		Limit(keep)
	_, err := r.db.NewDelete().
		Model((*Record)(nil)).
		Where("id NOT IN (?)", subquery).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("buildcache: prune records: %w", err)
	}
	return nil
}

var _ Repository = (*BunRepository)(nil)
