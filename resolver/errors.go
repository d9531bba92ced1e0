package resolver

import "errors"

var (
	ErrNilMessageSentToExchange = errors.New("nil message sent to exchange")
	ErrNoResolversConfigured    = errors.New("no resolvers configured in the pool")
	ErrDeadlineExceeded         = errors.New("extended resolver deadline exceeded")
	ErrInternalError            = errors.New("internal error")
)
