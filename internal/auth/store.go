package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	cache "github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-blog/models"
)

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) (*models.Session, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// NewSessionRepository creates a repository for Session records.
func NewSessionRepository(db *bun.DB) repository.Repository[*models.Session] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*models.Session]{
		NewRecord: func() *models.Session { return &models.Session{} },
		GetID: func(s *models.Session) uuid.UUID {
			return s.ID
		},
		SetID: func(s *models.Session, id uuid.UUID) {
			s.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(s *models.Session) string {
			return s.ID.String()
		},
	})
}

// BunSessionStore stores sessions in the sessions table with optional
// read caching. Writes go through the repository so the cache decorator
// drops the entries it owns.
type BunSessionStore struct {
	db   *bun.DB
	repo repository.Repository[*models.Session]
}

var _ SessionStore = (*BunSessionStore)(nil)

// NewBunSessionStore creates a session store without caching.
func NewBunSessionStore(db *bun.DB) *BunSessionStore {
	return NewBunSessionStoreWithCache(db, nil, nil)
}

// NewBunSessionStoreWithCache creates a session store whose lookups go through
// the cache service.
func NewBunSessionStoreWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunSessionStore {
	base := NewSessionRepository(db)
	store := &BunSessionStore{db: db, repo: base}
	if cacheService != nil && serializer != nil {
		store.repo = repositorycache.New(base, cacheService, serializer)
	}
	return store
}

func (s *BunSessionStore) Create(ctx context.Context, session *models.Session) (*models.Session, error) {
	return s.repo.Create(ctx, session)
}

func (s *BunSessionStore) Get(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	record, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return nil, &models.NotFoundError{Resource: "session", Key: id.String()}
		}
		return nil, fmt.Errorf("session repository error: %w", err)
	}
	return record, nil
}

func (s *BunSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, &models.Session{ID: id})
}

func (s *BunSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	// read straight from the table; the expiry bound must never be served from cache
	var ids []uuid.UUID
	if err := s.db.NewSelect().
		Model((*models.Session)(nil)).
		Column("id").
		Where("expires_at <= ?", now.UTC()).
		Scan(ctx, &ids); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	err := s.repo.DeleteMany(ctx, func(q *bun.DeleteQuery) *bun.DeleteQuery {
		return q.Where("id IN (?)", bun.In(ids))
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// MemorySessionStore keeps sessions in memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (s *MemorySessionStore) Create(_ context.Context, session *models.Session) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *session
	if copied.ID == uuid.Nil {
		copied.ID = uuid.New()
	}
	s.sessions[copied.ID] = &copied
	out := copied
	return &out, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id uuid.UUID) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, &models.NotFoundError{Resource: "session", Key: id.String()}
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}
