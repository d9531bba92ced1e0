package resolver

import (
	"time"

	"github.com/miekg/dns"
)

// Result is what a Resolver delivers on the channel returned by SendAsync.
type Result struct {
	Msg      *dns.Msg
	Err      error
	Duration time.Duration
}

func (r Result) Error() bool {
	return r.Err != nil
}

func (r Result) Empty() bool {
	return r.Msg == nil
}

func (r Result) Truncated() bool {
	if r.Empty() {
		return false
	}
	return r.Msg.Truncated
}

func errorResult(err error) Result {
	return Result{Err: err}
}
