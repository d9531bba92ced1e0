package resolver

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// dnsClient abstracts *dns.Client so the upstream exchange can be swapped
// out in tests, the way the teacher's nameserver.go does.
type dnsClient interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

type dnsClientFactory func(protocol string, timeout time.Duration) dnsClient

func defaultDNSClientFactory(protocol string, timeout time.Duration) dnsClient {
	return &dns.Client{Net: protocol, Timeout: timeout}
}

// Client is the default Resolver implementation: a single upstream
// nameserver queried over UDP with TCP fallback on truncation, adapted
// from the teacher's nameserver.go.
type Client struct {
	host string

	mu               sync.RWMutex
	port             int
	tcpMode          TCPMode
	truncationPolicy TruncationPolicy
	ednsOptions      []dns.EDNS0
	tsigName         string
	tsigSecret       string
	tsigAlgorithm    string
	timeout          time.Duration

	dnsClientFactory dnsClientFactory

	metricsLock         sync.Mutex
	numberOfRequests    uint32
	totalResponseTime   time.Duration
	averageResponseTime time.Duration
	numberOfTCPRequests uint32
}

// NewClient returns a Client dispatching queries to host (an IP address or
// hostname) on the default DNS port.
func NewClient(host string) *Client {
	return &Client{
		host:    host,
		port:    53,
		timeout: DefaultTimeout,
	}
}

func (c *Client) SetPort(port int) {
	c.mu.Lock()
	c.port = port
	c.mu.Unlock()
}

func (c *Client) SetTCPMode(mode TCPMode) {
	c.mu.Lock()
	c.tcpMode = mode
	c.mu.Unlock()
}

func (c *Client) SetTruncationPolicy(policy TruncationPolicy) {
	c.mu.Lock()
	c.truncationPolicy = policy
	c.mu.Unlock()
}

func (c *Client) SetEDNSOptions(opts []dns.EDNS0) {
	c.mu.Lock()
	c.ednsOptions = opts
	c.mu.Unlock()
}

func (c *Client) SetTSIGKey(name, secret, algorithm string) {
	c.mu.Lock()
	c.tsigName = name
	c.tsigSecret = secret
	c.tsigAlgorithm = algorithm
	c.mu.Unlock()
}

func (c *Client) Timeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.timeout
}

func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	c.timeout = d
	c.mu.Unlock()
}

type clientSettings struct {
	addr          string
	tcpMode       TCPMode
	truncation    TruncationPolicy
	ednsOptions   []dns.EDNS0
	tsigName      string
	tsigSecret    string
	tsigAlgorithm string
}

func (c *Client) settings() clientSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clientSettings{
		addr:          net.JoinHostPort(c.host, fmt.Sprintf("%d", c.port)),
		tcpMode:       c.tcpMode,
		truncation:    c.truncationPolicy,
		ednsOptions:   c.ednsOptions,
		tsigName:      c.tsigName,
		tsigSecret:    c.tsigSecret,
		tsigAlgorithm: c.tsigAlgorithm,
	}
}

// SendAsync runs the exchange on executor and delivers exactly one Result
// on the returned channel.
func (c *Client) SendAsync(ctx context.Context, query *dns.Msg, executor Executor) <-chan Result {
	out := make(chan Result, 1)

	if query == nil {
		out <- errorResult(ErrNilMessageSentToExchange)
		close(out)
		return out
	}

	if executor == nil {
		executor = defaultExecutor
	}

	executor.Execute(func() {
		out <- c.exchange(ctx, query)
		close(out)
	})

	return out
}

// exchange tries UDP first, falling back to TCP on truncation, matching
// the teacher's nameserver.exchange loop. tcpMode / truncationPolicy
// narrow which protocols are attempted.
func (c *Client) exchange(ctx context.Context, m *dns.Msg) Result {
	s := c.settings()

	msg := m.Copy()
	msg.Id = dns.Id()
	if len(s.ednsOptions) > 0 {
		msg.SetEdns0(4096, false)
		if opt := msg.IsEdns0(); opt != nil {
			opt.Option = append(opt.Option, s.ednsOptions...)
		}
	}
	if s.tsigName != "" {
		msg.SetTsig(s.tsigName, s.tsigAlgorithm, 300, time.Now().Unix())
	}

	protocols := []string{"udp", "tcp"}
	switch s.tcpMode {
	case TCPModeTCPOnly:
		protocols = []string{"tcp"}
	case TCPModeUDPOnly:
		protocols = []string{"udp"}
	}

	factory := c.dnsClientFactory
	if factory == nil {
		factory = defaultDNSClientFactory
	}

	var result Result
	for _, protocol := range protocols {
		timeout := DefaultTimeoutUDP
		if protocol == "tcp" {
			timeout = DefaultTimeoutTCP
		}

		client := factory(protocol, timeout)
		if s.tsigSecret != "" {
			if dc, ok := client.(*dns.Client); ok {
				dc.TsigSecret = map[string]string{s.tsigName: s.tsigSecret}
			}
		}

		reply, rtt, err := client.ExchangeContext(ctx, msg, s.addr)
		result = Result{Msg: reply, Err: err, Duration: rtt}

		shortID := "unknown"
		attempt := uint32(0)
		if trace, ok := traceFrom(ctx); ok {
			shortID = trace.ShortID()
			attempt = trace.Attempts.Load()
		}
		Query(fmt.Sprintf(
			"%s-%d: %s taken querying %s %s on %s://%s",
			shortID, attempt, rtt, qname(msg), qtype(msg), protocol, s.addr,
		))

		go c.updateMetrics(protocol, rtt)

		if result.Error() {
			continue
		}
		if !result.Truncated() || s.truncation == TruncationPolicyAccept || protocol == "tcp" {
			return result
		}
		// Truncated over UDP with a retry policy: fall through to TCP.
	}

	// result here may carry an error, or be truncated. It's the best we've got.
	return result
}

func qname(m *dns.Msg) string {
	if len(m.Question) == 0 {
		return "unknown"
	}
	return m.Question[0].Name
}

func qtype(m *dns.Msg) string {
	if len(m.Question) == 0 {
		return "unknown"
	}
	return dns.TypeToString[m.Question[0].Qtype]
}

func (c *Client) updateMetrics(protocol string, duration time.Duration) {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()

	c.numberOfRequests++
	c.totalResponseTime += duration
	c.averageResponseTime = c.totalResponseTime / time.Duration(c.numberOfRequests)

	if protocol == "tcp" {
		c.numberOfTCPRequests++
	}
}

// AverageResponseTime reports the running average exchange time, gathered
// the same way the teacher's nameserver tracks it.
func (c *Client) AverageResponseTime() time.Duration {
	c.metricsLock.Lock()
	defer c.metricsLock.Unlock()
	return c.averageResponseTime
}
