package testsupport

import (
	"context"
	"sync"
)

// RecordedActivity is one call captured by ActivityRecorder.
type RecordedActivity struct {
	Verb       string
	ObjectType string
	ObjectID   string
	Data       map[string]any
}

// ActivityRecorder captures activity calls made by services under test.
type ActivityRecorder struct {
	mu      sync.Mutex
	Entries []RecordedActivity
}

func (r *ActivityRecorder) Record(_ context.Context, verb, objectType, objectID string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, RecordedActivity{Verb: verb, ObjectType: objectType, ObjectID: objectID, Data: data})
}

// Verbs returns "verb:type:id" for each captured call.
func (r *ActivityRecorder) Verbs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Verb + ":" + e.ObjectType + ":" + e.ObjectID
	}
	return out
}
