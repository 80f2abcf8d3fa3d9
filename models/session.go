package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Session is a login issued to a user and referenced by the session cookie.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:ss"`

	ID        uuid.UUID `bun:",pk,type:uuid"              json:"id"`
	Shortname string    `bun:"shortname,notnull"          json:"shortname"`
	Remember  bool      `bun:"remember,notnull"           json:"remember"`
	ExpiresAt time.Time `bun:"expires_at,notnull"         json:"expires_at"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// ActivityEntry is the persisted form of an admin activity record.
type ActivityEntry struct {
	bun.BaseModel `bun:"table:activity_log,alias:al"`

	ID         uuid.UUID      `bun:",pk,type:uuid"          json:"id"`
	ActorID    uuid.UUID      `bun:"actor_id,type:uuid"     json:"actor_id"`
	Actor      string         `bun:"actor,nullzero"         json:"actor,omitempty"`
	Verb       string         `bun:"verb,notnull"           json:"verb"`
	ObjectType string         `bun:"object_type,notnull"    json:"object_type"`
	ObjectID   string         `bun:"object_id,notnull"      json:"object_id"`
	Channel    string         `bun:"channel,nullzero"       json:"channel,omitempty"`
	Data       map[string]any `bun:"data,type:jsonb"        json:"data,omitempty"`
	OccurredAt time.Time      `bun:"occurred_at,notnull"    json:"occurred_at"`
}
