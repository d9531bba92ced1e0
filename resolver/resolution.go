package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// resolution is the per-query mutable state driving one ExtendedResolver
// dispatch: {query, attempts per resolver, retries-per-resolver, deadline,
// ordered resolver list, current index}. It is owned entirely by the
// future chain that created it and is discarded once that future
// completes; nothing about it is shared across queries except the
// ResolverEntry failure counters it touches.
type resolution struct {
	query              *dns.Msg
	resolvers          []*ResolverEntry
	attempts           []int
	retriesPerResolver int
	deadline           time.Time
	current            int
	queryID            string
	trace              *Trace
}

func newResolution(query *dns.Msg, resolvers []*ResolverEntry, retriesPerResolver int, deadline time.Time) *resolution {
	id := "unknown"
	if len(query.Question) > 0 {
		id = fmt.Sprintf("%s %s", query.Question[0].Name, dns.TypeToString[query.Question[0].Qtype])
	}
	return &resolution{
		query:              query,
		resolvers:          resolvers,
		attempts:           make([]int, len(resolvers)),
		retriesPerResolver: retriesPerResolver,
		deadline:           deadline,
		queryID:            id,
		trace:              NewTrace(),
	}
}

// run is the retry algorithm: on each dispatch, check the deadline, send
// to resolvers[current], decay on success or advance-and-recount on
// failure. A query completes or fails after at most
// len(resolvers) x retriesPerResolver sends, or when the deadline
// expires, whichever is first.
func (r *resolution) run(ctx context.Context, executor Executor) Result {
	if len(r.resolvers) == 0 {
		return errorResult(ErrNoResolversConfigured)
	}

	ctx = withTrace(ctx, r.trace)

	var last Result
	for {
		select {
		case <-ctx.Done():
			return errorResult(ctx.Err())
		default:
		}

		if !r.deadline.IsZero() && !time.Now().Before(r.deadline) {
			return errorResult(fmt.Errorf("%w: query %s", ErrDeadlineExceeded, r.queryID))
		}

		entry := r.resolvers[r.current]
		r.attempts[r.current]++
		r.trace.Attempts.Add(1)

		ch := entry.Resolver.SendAsync(ctx, r.query, executor)
		result := <-ch
		last = result

		if !result.Error() {
			entry.decay()
			return result
		}

		entry.recordFailure()
		r.current = (r.current + 1) % len(r.resolvers)

		if r.attempts[r.current] >= r.retriesPerResolver {
			return last
		}
	}
}
