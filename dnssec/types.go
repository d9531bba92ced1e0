package dnssec

import "github.com/miekg/dns"

// SRRset is an RRset augmented with a cached security status and the
// RRSIGs that were found alongside it. It does not itself re-validate
// the invariant that all non-signature members share (name, class,
// type, ttl-after-normalization) - callers are expected to have grouped
// records by (owner, class, type) before constructing one.
type SRRset struct {
	Records []dns.RR
	RRSIGs  []*dns.RRSIG

	Status     SecurityStatus
	SignerName *string

	// SynthesizedSecureCNAME marks an SRRset that was synthesized from a
	// secured DNAME expansion rather than received directly signed. Only
	// meaningful when SignerName is nil.
	SynthesizedSecureCNAME bool
}

// NewSRRset builds an SRRset from a mixed slice of records, splitting out
// any RRSIGs that cover it.
func NewSRRset(records []dns.RR) *SRRset {
	set := &SRRset{
		Records: make([]dns.RR, 0, len(records)),
		RRSIGs:  make([]*dns.RRSIG, 0),
		Status:  Unchecked,
	}
	for _, rr := range records {
		if sig, ok := rr.(*dns.RRSIG); ok {
			set.RRSIGs = append(set.RRSIGs, sig)
			continue
		}
		set.Records = append(set.Records, rr)
	}
	return set
}

// Name returns the owner name of the RRset, or "" if it's empty.
func (s *SRRset) Name() string {
	if len(s.Records) == 0 {
		return ""
	}
	return s.Records[0].Header().Name
}

// Type returns the RR type shared by the RRset's records, or 0 if empty.
func (s *SRRset) Type() uint16 {
	if len(s.Records) == 0 {
		return 0
	}
	return s.Records[0].Header().Rrtype
}

// dedupeSignatures removes RRSIGs that are identical in (key-tag, algorithm,
// signature-bytes); spec leaves this case unspecified, so duplicates are
// collapsed before they can inflate the verified-signature budget.
func dedupeSignatures(sigs []*dns.RRSIG) []*dns.RRSIG {
	type key struct {
		tag   uint16
		alg   uint8
		bytes string
	}
	seen := make(map[key]struct{}, len(sigs))
	out := make([]*dns.RRSIG, 0, len(sigs))
	for _, s := range sigs {
		k := key{tag: s.KeyTag, alg: s.Algorithm, bytes: s.Signature}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

//---

// JustifiedStatus is an immutable result of a validation operation.
type JustifiedStatus struct {
	Status SecurityStatus
	// EDECode is the RFC 8914 Extended DNS Error info-code, or -1 if none
	// applies.
	EDECode int
	// Reason is a human-readable explanation, or "" if none applies.
	Reason string
}

func newStatus(status SecurityStatus, edeCode int, reason string) JustifiedStatus {
	return JustifiedStatus{Status: status, EDECode: edeCode, Reason: reason}
}

func secureStatus() JustifiedStatus {
	return newStatus(Secure, EDENone, "")
}
