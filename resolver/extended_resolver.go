package resolver

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"
)

// TCPMode controls which transports a Resolver is willing to use.
type TCPMode uint8

const (
	// TCPModeUDPWithFallback tries UDP first and retries over TCP on
	// truncation, the historical default for recursive resolvers.
	TCPModeUDPWithFallback TCPMode = iota
	TCPModeTCPOnly
	TCPModeUDPOnly
)

// TruncationPolicy controls what a Resolver does with a truncated UDP
// response.
type TruncationPolicy uint8

const (
	// TruncationPolicyRetryTCP re-sends the query over TCP, per RFC 1035 §4.2.1.
	TruncationPolicyRetryTCP TruncationPolicy = iota
	// TruncationPolicyAccept returns the truncated message as-is.
	TruncationPolicyAccept
)

// Resolver is the capability ExtendedResolver composes: something that can
// dispatch a query asynchronously, and accepts the broadcast setters every
// resolver in the pool is expected to honour uniformly.
type Resolver interface {
	SendAsync(ctx context.Context, query *dns.Msg, executor Executor) <-chan Result

	SetPort(port int)
	SetTCPMode(mode TCPMode)
	SetTruncationPolicy(policy TruncationPolicy)
	SetEDNSOptions(opts []dns.EDNS0)
	SetTSIGKey(name, secret, algorithm string)

	Timeout() time.Duration
	SetTimeout(d time.Duration)
}

// ExtendedResolver composes N Resolver capabilities into one, multiplexing
// a single logical query across a fleet of lower-level resolvers and
// returning the first successful message. It is itself a Resolver, so an
// ExtendedResolver of ExtendedResolvers is valid.
type ExtendedResolver struct {
	mu        sync.RWMutex
	resolvers []*ResolverEntry

	timeout            time.Duration
	retriesPerResolver int
	loadBalance        bool

	start atomic.Uint32
}

func NewExtendedResolver(resolvers ...Resolver) *ExtendedResolver {
	entries := make([]*ResolverEntry, len(resolvers))
	for i, r := range resolvers {
		entries[i] = NewResolverEntry(r)
	}
	return &ExtendedResolver{
		resolvers:          entries,
		timeout:            DefaultTimeout,
		retriesPerResolver: DefaultRetriesPerResolver,
		loadBalance:        DefaultLoadBalance,
	}
}

// Add appends a resolver to the pool. Safe to call while queries are in
// flight: a query snapshots the list at dispatch time and never observes
// a later mutation.
func (e *ExtendedResolver) Add(r Resolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolvers = append(e.resolvers, NewResolverEntry(r))
}

// Delete removes every pool entry wrapping r.
func (e *ExtendedResolver) Delete(r Resolver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.resolvers[:0:0]
	for _, entry := range e.resolvers {
		if entry.Resolver != r {
			kept = append(kept, entry)
		}
	}
	e.resolvers = kept
}

func (e *ExtendedResolver) SetLoadBalance(b bool) {
	e.mu.Lock()
	e.loadBalance = b
	e.mu.Unlock()
}

func (e *ExtendedResolver) LoadBalance() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loadBalance
}

func (e *ExtendedResolver) SetRetriesPerResolver(n int) {
	if n <= 0 {
		n = DefaultRetriesPerResolver
	}
	e.mu.Lock()
	e.retriesPerResolver = n
	e.mu.Unlock()
}

func (e *ExtendedResolver) RetriesPerResolver() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.retriesPerResolver
}

// Stats reports the pool's current failure counters, in pool order, for
// observability and tests.
func (e *ExtendedResolver) Stats() []uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	stats := make([]uint64, len(e.resolvers))
	for i, entry := range e.resolvers {
		stats[i] = entry.Failures()
	}
	return stats
}

// snapshot takes the ordering policy's view of the pool for a single
// query. Load-balance on rotates the list by an atomically incremented
// start index (mod N); load-balance off sorts ascending by failure
// count, preferring historically-reliable peers.
func (e *ExtendedResolver) snapshot() ([]*ResolverEntry, int) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	n := len(e.resolvers)
	ordered := make([]*ResolverEntry, n)
	copy(ordered, e.resolvers)

	retries := e.retriesPerResolver
	if n == 0 {
		return ordered, retries
	}

	if e.loadBalance {
		start := e.start.Add(1) - 1
		offset := int(start % uint32(n))
		rotated := make([]*ResolverEntry, n)
		for i := range ordered {
			rotated[i] = ordered[(offset+i)%n]
		}
		return rotated, retries
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Failures() < ordered[j].Failures()
	})
	return ordered, retries
}

func (e *ExtendedResolver) Timeout() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.timeout
}

func (e *ExtendedResolver) SetTimeout(d time.Duration) {
	e.mu.Lock()
	e.timeout = d
	e.mu.Unlock()
}

// The remaining setters broadcast to every child resolver.

func (e *ExtendedResolver) SetPort(port int) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.resolvers {
		entry.Resolver.SetPort(port)
	}
}

func (e *ExtendedResolver) SetTCPMode(mode TCPMode) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.resolvers {
		entry.Resolver.SetTCPMode(mode)
	}
}

func (e *ExtendedResolver) SetTruncationPolicy(policy TruncationPolicy) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.resolvers {
		entry.Resolver.SetTruncationPolicy(policy)
	}
}

func (e *ExtendedResolver) SetEDNSOptions(opts []dns.EDNS0) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.resolvers {
		entry.Resolver.SetEDNSOptions(opts)
	}
}

func (e *ExtendedResolver) SetTSIGKey(name, secret, algorithm string) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, entry := range e.resolvers {
		entry.Resolver.SetTSIGKey(name, secret, algorithm)
	}
}

// SendAsync dispatches query across the resolver pool, retrying per the
// ordering policy and retry algorithm, and returns a channel that
// receives exactly one Result once the query completes, fails, times out,
// or ctx is cancelled.
func (e *ExtendedResolver) SendAsync(ctx context.Context, query *dns.Msg, executor Executor) <-chan Result {
	out := make(chan Result, 1)

	if query == nil {
		out <- errorResult(ErrNilMessageSentToExchange)
		close(out)
		return out
	}

	if executor == nil {
		executor = defaultExecutor
	}

	resolvers, retries := e.snapshot()
	deadline := time.Now().Add(e.Timeout())
	res := newResolution(query, resolvers, retries, deadline)

	executor.Execute(func() {
		out <- res.run(ctx, executor)
		close(out)
	})

	return out
}
