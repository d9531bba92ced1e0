package dnssec

// AlgorithmRequirements enforces the "one signature per signalled algorithm
// must be SECURE" rule used during DNSSEC algorithm rollover: a zone
// publishing signatures under multiple algorithms is only SECURE once at
// least one valid signature has been seen for every algorithm it signals
// support for (that this validator also supports).
type AlgorithmRequirements struct {
	needed map[uint8]algState
}

// newAlgorithmRequirements builds the tracker from the signalled algorithm
// list, keeping only the algorithms locally supported. Unsupported ids are
// silently dropped - they can never be satisfied, and spec explicitly
// leaves them out of the count.
func newAlgorithmRequirements(signalled []uint8, supported func(uint8) bool) *AlgorithmRequirements {
	ar := &AlgorithmRequirements{needed: make(map[uint8]algState, len(signalled))}
	for _, alg := range signalled {
		if supported == nil || supported(alg) {
			if _, ok := ar.needed[alg]; !ok {
				ar.needed[alg] = algPending
			}
		}
	}
	return ar
}

// Num returns the number of algorithms being tracked.
func (ar *AlgorithmRequirements) Num() int {
	return len(ar.needed)
}

// SetSecure marks alg SECURE and returns true iff every tracked algorithm
// is now SECURE. Once true has been returned, it remains true for every
// subsequent call (monotone): SetSecure and SetBogus never revert a
// SECURE algorithm.
func (ar *AlgorithmRequirements) SetSecure(alg uint8) bool {
	if _, ok := ar.needed[alg]; ok {
		ar.needed[alg] = algSecure
	}
	return ar.allSecure()
}

// SetBogus marks alg BOGUS, but only if it is currently PENDING - a prior
// SECURE verdict for the same algorithm is never downgraded.
func (ar *AlgorithmRequirements) SetBogus(alg uint8) {
	if ar.needed[alg] == algPending {
		ar.needed[alg] = algBogus
	}
}

func (ar *AlgorithmRequirements) allSecure() bool {
	for _, state := range ar.needed {
		if state != algSecure {
			return false
		}
	}
	return true
}
