package interfaces

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
)

// ActivityRecord mirrors the go-users activity record contract so downstream
// packages can depend on a single type.
type ActivityRecord = usertypes.ActivityRecord

// ActivitySink captures activity events; implementations are expected to satisfy
// the go-users ActivitySink contract.
type ActivitySink interface {
	Log(ctx context.Context, record ActivityRecord) error
}

// ActivityRecorder emits activity for a mutation. The acting user is read
// from the context. Implementations must not fail the caller.
type ActivityRecorder interface {
	Record(ctx context.Context, verb, objectType, objectID string, data map[string]any)
}
