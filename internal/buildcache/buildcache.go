// Package buildcache records build history so the CLI can report what the
// last runs produced and when a full rebuild last happened.
package buildcache

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrRecordNotFound indicates no build has been recorded yet.
var ErrRecordNotFound = errors.New("buildcache: record not found")

// Record captures one completed build run.
type Record struct {
	bun.BaseModel `bun:"table:build_records,alias:br"`

	ID               uuid.UUID     `bun:"id,pk,type:uuid" json:"id"`
	StartedAt        time.Time     `bun:"started_at,notnull" json:"started_at"`
	Duration         time.Duration `bun:"duration_ns,notnull" json:"duration_ns"`
	DocumentsBuilt   int           `bun:"documents_built,notnull" json:"documents_built"`
	DocumentsSkipped int           `bun:"documents_skipped,notnull" json:"documents_skipped"`
	TagsBuilt        int           `bun:"tags_built,notnull" json:"tags_built"`
	AssetsBuilt      int           `bun:"assets_built,notnull" json:"assets_built"`
	Succeeded        bool          `bun:"succeeded,notnull" json:"succeeded"`
	Error            string        `bun:"error" json:"error,omitempty"`
	DryRun           bool          `bun:"dry_run,notnull" json:"dry_run"`
	CreatedAt        time.Time     `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// Repository persists build records.
type Repository interface {
	Save(ctx context.Context, record *Record) error
	Latest(ctx context.Context) (*Record, error)
	List(ctx context.Context, limit int) ([]*Record, error)
	// Prune keeps the newest N records and drops the rest.
	Prune(ctx context.Context, keep int) error
}
