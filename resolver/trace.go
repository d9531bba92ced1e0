package resolver

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Trace identifies one Resolution end-to-end through logging, adapted from
// the teacher's per-session Trace. Here it is scoped to a single query
// rather than a whole iterative resolution, since ExtendedResolver has no
// wider session to correlate against.
type Trace struct {
	Id    uuid.UUID
	Start time.Time

	// Attempts counts dispatches made so far for this query, across every
	// resolver in the pool.
	Attempts atomic.Uint32
}

func NewTrace() *Trace {
	id, _ := uuid.NewV7()
	return &Trace{Id: id, Start: time.Now()}
}

func (t *Trace) ID() string {
	return t.Id.String()
}

// ShortID returns only the last 7 characters, unique enough for a log line.
func (t *Trace) ShortID() string {
	id := t.ID()
	return id[len(id)-7:]
}
