package activity

import (
	"context"
	"slices"
	"sync"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// Store persists and lists activity entries, newest first.
type Store interface {
	interfaces.ActivitySink
	List(ctx context.Context, limit int) ([]*models.ActivityEntry, error)
}

// NewEntryRepository creates a repository for activity entries.
func NewEntryRepository(db *bun.DB) repository.Repository[*models.ActivityEntry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*models.ActivityEntry]{
		NewRecord: func() *models.ActivityEntry { return &models.ActivityEntry{} },
		GetID: func(e *models.ActivityEntry) uuid.UUID {
			return e.ID
		},
		SetID: func(e *models.ActivityEntry, id uuid.UUID) {
			e.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(e *models.ActivityEntry) string {
			return e.ID.String()
		},
	})
}

// BunSink writes activity entries to the activity_log table.
type BunSink struct {
	repo repository.Repository[*models.ActivityEntry]
}

var _ Store = (*BunSink)(nil)

// NewBunSink returns a sink backed by db.
func NewBunSink(db *bun.DB) *BunSink {
	return &BunSink{repo: NewEntryRepository(db)}
}

func (s *BunSink) Log(ctx context.Context, record interfaces.ActivityRecord) error {
	_, err := s.repo.Create(ctx, entryFromRecord(record))
	return err
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *BunSink) List(ctx context.Context, limit int) ([]*models.ActivityEntry, error) {
	newestFirst := repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.occurred_at DESC")
	})
	if limit > 0 {
		records, _, err := s.repo.List(ctx, newestFirst, repository.SelectPaginate(limit, 0))
		return records, err
	}
	records, _, err := s.repo.List(ctx, newestFirst)
	return records, err
}

// MemorySink keeps entries in memory.
type MemorySink struct {
	mu      sync.RWMutex
	entries []*models.ActivityEntry
}

var _ Store = (*MemorySink)(nil)

// NewMemorySink returns an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Log(_ context.Context, record interfaces.ActivityRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entryFromRecord(record))
	return nil
}

func (s *MemorySink) List(_ context.Context, limit int) ([]*models.ActivityEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.ActivityEntry, 0, len(s.entries))
	for _, entry := range slices.Backward(s.entries) {
		copied := *entry
		out = append(out, &copied)
	}
	slices.SortStableFunc(out, func(a, b *models.ActivityEntry) int {
		return b.OccurredAt.Compare(a.OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func entryFromRecord(record interfaces.ActivityRecord) *models.ActivityEntry {
	entry := &models.ActivityEntry{
		ID:         uuid.New(),
		ActorID:    record.ActorID,
		Verb:       record.Verb,
		ObjectType: record.ObjectType,
		ObjectID:   record.ObjectID,
		Channel:    record.Channel,
		Data:       record.Data,
		OccurredAt: record.OccurredAt,
	}
	if actor, ok := record.Data["actor"].(string); ok {
		entry.Actor = actor
	}
	return entry
}
