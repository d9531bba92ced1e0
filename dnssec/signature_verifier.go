package dnssec

import (
	"time"

	"github.com/miekg/dns"
)

// SignatureVerifier validates an SRRset against a KeyEntry, or a single
// known DNSKEY, producing the JustifiedStatus the rest of a resolver
// acts on.
type SignatureVerifier struct {
	crypto            CryptoVerifier
	maxValidateRRSIGs int
}

// NewSignatureVerifier builds a SignatureVerifier. maxValidateRRSIGs <= 0
// falls back to DefaultMaxValidateRRSIGs.
func NewSignatureVerifier(crypto CryptoVerifier, maxValidateRRSIGs int) *SignatureVerifier {
	if crypto == nil {
		crypto = DefaultCryptoVerifier{}
	}
	if maxValidateRRSIGs <= 0 {
		maxValidateRRSIGs = DefaultMaxValidateRRSIGs
	}
	return &SignatureVerifier{crypto: crypto, maxValidateRRSIGs: maxValidateRRSIGs}
}

// Load builds a SignatureVerifier from configuration, using
// DefaultCryptoVerifier.
func Load(cfg Config) (*SignatureVerifier, error) {
	return NewSignatureVerifier(DefaultCryptoVerifier{}, cfg.MaxValidateRRSIGs()), nil
}

// Verify validates set against the keys held in a Good KeyEntry, applying
// the fast-path checks a Null or Bad entry short-circuits to first.
func (v *SignatureVerifier) Verify(set *SRRset, keys *KeyEntry, now time.Time) JustifiedStatus {
	if fast := keys.validateKeyFor(set); fast != nil {
		return *fast
	}
	return v.verifyAgainstKeys(set, keys.DNSKeys(), signalledRequirements(v.crypto, keys), now, true)
}

// VerifyWithKey validates set against a single known-good DNSKEY, bypassing
// KeyEntry's fast paths and algorithm-rollover tracking entirely - this is
// the entry point for callers that already hold exactly the key they trust
// (e.g. a DS-pinned trust anchor) rather than a full keyset. Signatures
// whose key tag doesn't match key are skipped without counting against the
// validation budget, since key is the only candidate there ever is.
func (v *SignatureVerifier) VerifyWithKey(set *SRRset, key *dns.DNSKEY, now time.Time) JustifiedStatus {
	if len(set.RRSIGs) == 0 {
		return newStatus(Bogus, EDERRSIGsMissing, "rrset has no covering rrsigs")
	}
	return v.verifyAgainstKeys(set, []*dns.DNSKEY{key}, nil, now, false)
}

func signalledRequirements(crypto CryptoVerifier, keys *KeyEntry) *AlgorithmRequirements {
	signalled, hasSignalled := keys.SignalledAlgorithms()
	if !hasSignalled {
		return nil
	}
	var supported func(uint8) bool
	if lister, ok := crypto.(AlgorithmLister); ok {
		supportedList := lister.SupportedAlgorithms()
		supported = func(alg uint8) bool {
			for _, a := range supportedList {
				if a == alg {
					return true
				}
			}
			return false
		}
	}
	return newAlgorithmRequirements(signalled, supported)
}

// verifyAgainstKeys walks sigs in turn, trying candidates for each, until
// either a signature satisfies reqs (or, with reqs nil, the first
// signature validates) or the validation budget is exhausted.
//
// countKeyTagMismatches controls whether a signature with no matching
// candidate key still counts against maxValidateRRSIGs: the main Verify
// path counts every signature presented, but VerifyWithKey's single
// candidate means most rrsigs in a busy rrset will never match its key
// tag, and those must be skipped for free rather than exhausting the
// budget before the one relevant signature is reached.
func (v *SignatureVerifier) verifyAgainstKeys(set *SRRset, candidates []*dns.DNSKEY, reqs *AlgorithmRequirements, now time.Time, countKeyTagMismatches bool) JustifiedStatus {
	sigs := dedupeSignatures(set.RRSIGs)
	if len(sigs) == 0 {
		return newStatus(Bogus, EDERRSIGsMissing, "rrset has no covering rrsigs")
	}

	validated := 0
	fallback := newStatus(Bogus, EDEDNSSECBogus, "no signature validated")
	satisfied := false

	for _, sig := range sigs {
		status, tried := v.verifyOne(set, candidates, sig, now)
		countable := tried || countKeyTagMismatches
		if countable {
			validated++
		}

		if status.Status == Secure && reqs == nil {
			return secureStatus()
		}

		fallback = status

		if status.Status != Secure {
			if reqs != nil {
				reqs.SetBogus(sig.Algorithm)
			}
		} else if reqs.SetSecure(sig.Algorithm) {
			satisfied = true
			break
		}

		if countable && validated > v.maxValidateRRSIGs {
			return newStatus(Bogus, EDEDNSSECBogus, "too many rrsigs presented for validation")
		}
	}

	if satisfied {
		return secureStatus()
	}
	if reqs != nil && reqs.Num() > 0 {
		return newStatus(Bogus, EDEDNSSECBogus, "not every signalled algorithm has a secure signature")
	}
	return fallback
}

// verifyOne tries every candidate key matching sig's algorithm and key
// tag, stopping at the first one that validates. If none match, or every
// match fails, the last failure reason encountered is returned, along
// with whether any candidate actually matched sig's key tag - a
// signature with no matching candidate was never really "tried".
func (v *SignatureVerifier) verifyOne(set *SRRset, candidates []*dns.DNSKEY, sig *dns.RRSIG, now time.Time) (JustifiedStatus, bool) {
	var timeOrNameFailure *JustifiedStatus
	if !sig.ValidityPeriod(now) {
		var s JustifiedStatus
		if before, _ := validityBounds(sig, now); before {
			s = newStatus(Bogus, EDESignatureNotYetValid, "rrsig is not yet valid")
		} else {
			s = newStatus(Bogus, EDESignatureExpired, "rrsig has expired")
		}
		timeOrNameFailure = &s
	}

	signerName := dns.CanonicalName(sig.SignerName)
	if timeOrNameFailure == nil && !dns.IsSubDomain(signerName, set.Name()) {
		s := newStatus(Bogus, EDEDNSSECBogus, "rrsig signer name is not an ancestor of the rrset owner")
		timeOrNameFailure = &s
	}

	result := newStatus(Bogus, EDEDNSKEYMissing, "no dnskey matches the rrsig's algorithm and key tag")
	tried := false

	for _, key := range candidates {
		if key.Algorithm != sig.Algorithm || key.KeyTag() != sig.KeyTag {
			continue
		}
		if dns.CanonicalName(key.Header().Name) != signerName {
			continue
		}
		tried = true

		if timeOrNameFailure != nil {
			result = *timeOrNameFailure
			continue
		}

		status := v.verifyWithCandidate(set, key, sig)
		if status.Status == Secure {
			return status, true
		}
		result = status
	}

	return result, tried
}

// year68 is the RFC 1982 serial-arithmetic window dns.RRSIG.ValidityPeriod
// itself uses internally to cope with the 32-bit inception/expiration
// fields wrapping in 2106; it isn't exported, so it's reproduced here to
// classify *why* ValidityPeriod returned false.
const year68 = 1 << 31

// validityBounds reports whether now falls before sig's inception (true)
// or after its expiration (false), using the same modular arithmetic as
// dns.RRSIG.ValidityPeriod.
func validityBounds(sig *dns.RRSIG, now time.Time) (before, after bool) {
	utc := now.UTC().Unix()
	modi := (int64(sig.Inception) - utc) / year68
	mode := (int64(sig.Expiration) - utc) / year68
	ti := int64(sig.Inception) + modi*year68
	te := int64(sig.Expiration) + mode*year68
	return utc < ti, utc > te
}

func (v *SignatureVerifier) verifyWithCandidate(set *SRRset, key *dns.DNSKEY, sig *dns.RRSIG) JustifiedStatus {
	if key.Protocol != 3 {
		return newStatus(Bogus, EDEDNSSECBogus, "dnskey protocol field is not 3")
	}
	if key.Flags&dns.ZONE == 0 {
		return newStatus(Bogus, EDEDNSSECBogus, "dnskey zone-key flag is not set")
	}

	signed, err := DigestRRset(sig, set.Records)
	if err != nil {
		return newStatus(Bogus, EDEDNSSECBogus, "failed to build canonical rrset digest: "+err.Error())
	}

	keyBytes, err := publicKeyBytes(key)
	if err != nil {
		return newStatus(Bogus, EDEUnsupportedDNSKEYAlgorithm, "dnskey public key is malformed: "+err.Error())
	}

	sigBytes, err := decodeSignature(sig.Signature)
	if err != nil {
		return newStatus(Bogus, EDEDNSSECBogus, "rrsig signature is malformed: "+err.Error())
	}

	if err := v.crypto.Verify(sig.Algorithm, keyBytes, signed, sigBytes); err != nil {
		return newStatus(Bogus, EDEDNSSECBogus, "signature does not verify: "+err.Error())
	}
	return secureStatus()
}
