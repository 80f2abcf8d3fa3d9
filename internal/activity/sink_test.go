package activity_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/activity"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/pkg/testsupport"
)

func TestBunSinkPersistsEntries(t *testing.T) {
	db := testsupport.NewBunDB(t)
	sink := activity.NewBunSink(db)
	ctx := activity.WithActor(context.Background(), "admin")

	for i, id := range []string{"first", "second"} {
		at := testsupport.FixedTime.Add(time.Duration(i) * time.Hour)
		recorder := activity.NewRecorder(sink, activity.WithClock(func() time.Time { return at }))
		recorder.Record(ctx, activity.VerbCreate, "post", id, map[string]any{"title": id})
	}

	entries, err := sink.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ObjectID != "second" || entries[1].ObjectID != "first" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].ObjectID, entries[1].ObjectID)
	}
	if entries[0].Actor != "admin" || entries[0].ActorID != identity.UserUUID("admin") {
		t.Fatalf("unexpected actor on entry: %+v", entries[0])
	}
	if entries[0].Data["title"] != "second" {
		t.Fatalf("expected data to round trip, got %v", entries[0].Data)
	}

	limited, err := sink.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ObjectID != "second" {
		t.Fatalf("expected only the newest entry, got %+v", limited)
	}
}
