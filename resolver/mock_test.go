package resolver

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

// mockResolver is a scriptable Resolver, following the teacher's plain
// function-field mock style (mockExchanger, mockZone in types_mock.go)
// rather than a mocking framework, since the thing under test is an
// ordered sequence of calls rather than argument matching.
type mockResolver struct {
	exchange func(ctx context.Context, query *dns.Msg) Result

	port             int
	tcpMode          TCPMode
	truncationPolicy TruncationPolicy
	ednsOptions      []dns.EDNS0
	tsigName         string
	timeout          time.Duration
}

func (m *mockResolver) SendAsync(ctx context.Context, query *dns.Msg, executor Executor) <-chan Result {
	out := make(chan Result, 1)
	if executor == nil {
		executor = defaultExecutor
	}
	executor.Execute(func() {
		out <- m.exchange(ctx, query)
		close(out)
	})
	return out
}

func (m *mockResolver) SetPort(port int)                           { m.port = port }
func (m *mockResolver) SetTCPMode(mode TCPMode)                    { m.tcpMode = mode }
func (m *mockResolver) SetTruncationPolicy(policy TruncationPolicy) { m.truncationPolicy = policy }
func (m *mockResolver) SetEDNSOptions(opts []dns.EDNS0)            { m.ednsOptions = opts }
func (m *mockResolver) SetTSIGKey(name, secret, algorithm string)  { m.tsigName = name }
func (m *mockResolver) Timeout() time.Duration                     { return m.timeout }
func (m *mockResolver) SetTimeout(d time.Duration)                 { m.timeout = d }

// alwaysFail returns a mockResolver that fails every call with err.
func alwaysFail(err error) *mockResolver {
	return &mockResolver{
		exchange: func(ctx context.Context, query *dns.Msg) Result {
			return errorResult(err)
		},
	}
}

// alwaysSucceed returns a mockResolver that succeeds with msg every call.
func alwaysSucceed(msg *dns.Msg) *mockResolver {
	return &mockResolver{
		exchange: func(ctx context.Context, query *dns.Msg) Result {
			return Result{Msg: msg}
		},
	}
}

func newTestQuery() *dns.Msg {
	m := new(dns.Msg)
	m.SetQuestion("example.com.", dns.TypeA)
	return m
}
