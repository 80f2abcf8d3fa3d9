// Package activity records admin mutations as go-users activity records.
package activity

import (
	"context"
	"maps"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// DefaultChannel tags records emitted by the blog.
const DefaultChannel = "blog"

// Verbs emitted by the domain services.
const (
	VerbCreate = "create"
	VerbUpdate = "update"
	VerbDelete = "delete"
)

type actorKey struct{}

// WithActor returns a context that attributes activity to shortname.
func WithActor(ctx context.Context, shortname string) context.Context {
	shortname = strings.TrimSpace(shortname)
	if shortname == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, shortname)
}

// ActorFrom returns the shortname stored by WithActor.
func ActorFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	actor, _ := ctx.Value(actorKey{}).(string)
	return actor
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(logger interfaces.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) Option {
	return func(r *Recorder) {
		if trimmed := strings.TrimSpace(channel); trimmed != "" {
			r.channel = trimmed
		}
	}
}

// Recorder maps mutations onto activity records and forwards them to a sink.
type Recorder struct {
	sink    interfaces.ActivitySink
	now     func() time.Time
	logger  interfaces.Logger
	channel string
}

var _ interfaces.ActivityRecorder = (*Recorder)(nil)

// NewRecorder returns a recorder writing to sink. A nil sink drops records.
func NewRecorder(sink interfaces.ActivitySink, opts ...Option) *Recorder {
	r := &Recorder{
		sink:    sink,
		now:     time.Now,
		logger:  logging.NoOp(),
		channel: DefaultChannel,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Record emits one activity record. Sink failures are logged and never
// returned to the caller.
func (r *Recorder) Record(ctx context.Context, verb, objectType, objectID string, data map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	actor := ActorFrom(ctx)
	payload := maps.Clone(data)
	if payload == nil {
		payload = map[string]any{}
	}
	if actor != "" {
		payload["actor"] = actor
	}

	record := interfaces.ActivityRecord{
		ActorID:    identity.UserUUID(actor),
		Verb:       verb,
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    r.channel,
		Data:       payload,
		OccurredAt: r.now().UTC(),
	}

	if err := r.sink.Log(ctx, record); err != nil {
		r.logger.Error("activity.record.failed",
			"verb", verb,
			"object_type", objectType,
			"object_id", objectID,
			"actor", actor,
			"error", err,
		)
		return
	}
	r.logger.Debug("activity.record.success", "verb", verb, "object_type", objectType, "object_id", objectID)
}
