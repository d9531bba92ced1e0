package resolver

import "time"

const (
	// DefaultTimeout is the whole-operation deadline for an ExtendedResolver query.
	DefaultTimeout = 10 * time.Second

	// DefaultRetriesPerResolver bounds how many times a single resolver is tried
	// for one query. The extended resolver rotates to the next resolver after
	// every failure and gives up once that next resolver has used its tries.
	DefaultRetriesPerResolver = 3

	DefaultLoadBalance = false

	DefaultTimeoutUDP = 150 * time.Millisecond
	DefaultTimeoutTCP = 600 * time.Millisecond

	// DefaultExecutorPoolSize bounds the shared work-stealing pool used when
	// a caller doesn't supply its own Executor.
	DefaultExecutorPoolSize = 64
)

// defaultExecutor backs SendAsync calls made without an explicit Executor,
// mirroring the "shared work-stealing pool" default from the concurrency model.
var defaultExecutor = NewDefaultExecutor(DefaultExecutorPoolSize)

type Logger func(string)

// Default logging functions just black-hole the input.
var (
	Query Logger = func(string) {}
	Debug Logger = func(string) {}
	Info  Logger = func(string) {}
	Warn  Logger = func(string) {}
)
