package publish

import (
	"context"
	"fmt"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProgressRecord is the persisted form of a progress entry.
type ProgressRecord struct {
	bun.BaseModel `bun:"table:publish_progress,alias:publish_progress"`

	ID         uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Key        string    `bun:"key,notnull" json:"key"`
	Tag        string    `bun:"tag,notnull" json:"tag"`
	RecordedAt time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}

// NewProgressRecordRepository creates the bun-backed store for progress
// records.
func NewProgressRecordRepository(db *bun.DB) repository.Repository[*ProgressRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ProgressRecord]{
		NewRecord:          func() *ProgressRecord { return &ProgressRecord{} },
		GetID:              func(record *ProgressRecord) uuid.UUID { return record.ID },
		SetID:              func(record *ProgressRecord, id uuid.UUID) { record.ID = id },
		GetIdentifier:      func() string { return "key" },
		GetIdentifierValue: func(record *ProgressRecord) string { return record.Key },
	})
}

// BunProgressRepository persists the publish log in the database.
type BunProgressRepository struct {
	repo repository.Repository[*ProgressRecord]
}

// NewBunProgressRepository creates a database-backed progress log.
func NewBunProgressRepository(db *bun.DB) *BunProgressRepository {
	return &BunProgressRepository{repo: NewProgressRecordRepository(db)}
}

func (r *BunProgressRepository) Append(ctx context.Context, key string, entry ProgressEntry) error {
	record := &ProgressRecord{
		Key:        key,
		Tag:        entry.Tag,
		RecordedAt: entry.RecordedAt,
	}
	if _, err := r.repo.Create(ctx, record); err != nil {
		return fmt.Errorf("publish: append progress %s: %w", key, err)
	}
	return nil
}

func (r *BunProgressRepository) List(ctx context.Context, key string) ([]ProgressEntry, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("?TableAlias.key = ?", key).
			Order("recorded_at ASC")
	}))
	if err != nil {
		return nil, fmt.Errorf("publish: list progress %s: %w", key, err)
	}

	entries := make([]ProgressEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, ProgressEntry{Tag: record.Tag, RecordedAt: record.RecordedAt})
	}
	return entries, nil
}
