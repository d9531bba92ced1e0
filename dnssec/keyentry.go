package dnssec

import "github.com/miekg/dns"

// KeyEntry is a tagged representation of trusted, null (proven-insecure)
// or bad (bogus) key material at an owner name. It is constructed only
// via Good, NullEntry or BadEntry.
type KeyEntry struct {
	tag keyEntryTag

	name  string
	class uint16
	ttl   uint32

	rrset []*dns.DNSKEY

	signalledAlgs []uint8
	hasSignalled  bool

	edeReason int
	badReason string
}

// Good builds a KeyEntry backed by a non-empty, SECURE DNSKEY rrset.
// signalledAlgs, when non-nil, is the set of algorithms the zone's
// DNSKEY rrset announces (e.g. as derived by SignalledAlgorithms); it
// drives AlgorithmRequirements.
func Good(name string, class uint16, ttl uint32, rrset []*dns.DNSKEY, signalledAlgs []uint8) *KeyEntry {
	if len(rrset) == 0 {
		panic(ErrEmptyKeyEntry)
	}
	ke := &KeyEntry{
		tag:       keyEntryGood,
		name:      dns.CanonicalName(name),
		class:     class,
		ttl:       ttl,
		rrset:     rrset,
		edeReason: EDENone,
	}
	if signalledAlgs != nil {
		ke.hasSignalled = true
		ke.signalledAlgs = signalledAlgs
	}
	return ke
}

// NullEntry builds a KeyEntry denoting a proven-insecure point in the tree.
func NullEntry(name string, class uint16, ttl uint32) *KeyEntry {
	return &KeyEntry{
		tag:       keyEntryNull,
		name:      dns.CanonicalName(name),
		class:     class,
		ttl:       ttl,
		edeReason: EDENone,
	}
}

// BadEntry builds a KeyEntry denoting a validation failure at this name.
func BadEntry(name string, class uint16, ttl uint32) *KeyEntry {
	return &KeyEntry{
		tag:       keyEntryBad,
		name:      dns.CanonicalName(name),
		class:     class,
		ttl:       ttl,
		edeReason: EDENone,
	}
}

// SetBadReason explains why no usable keys are present at this name.
// It applies regardless of the entry's tag.
func (ke *KeyEntry) SetBadReason(edeCode int, text string) {
	ke.edeReason = edeCode
	ke.badReason = text
}

func (ke *KeyEntry) IsGood() bool { return ke.tag == keyEntryGood }
func (ke *KeyEntry) IsNull() bool { return ke.tag == keyEntryNull }
func (ke *KeyEntry) IsBad() bool  { return ke.tag == keyEntryBad }

func (ke *KeyEntry) Name() string  { return ke.name }
func (ke *KeyEntry) Class() uint16 { return ke.class }
func (ke *KeyEntry) TTL() uint32   { return ke.ttl }

// DNSKeys returns the entry's DNSKEY rrset. Empty unless IsGood().
func (ke *KeyEntry) DNSKeys() []*dns.DNSKEY { return ke.rrset }

// SignalledAlgorithms returns the algorithms the zone announced, and
// whether any were set at all (nil vs. empty list are distinct: a nil
// list means "the caller never looked"; Good also accepts an empty
// non-nil list, for which the second result is true).
func (ke *KeyEntry) SignalledAlgorithms() ([]uint8, bool) {
	return ke.signalledAlgs, ke.hasSignalled
}

// validateKeyFor applies the fast-path checks from spec 4.3 before the
// caller falls back to full signature verification. A non-nil result means
// the caller must use it as-is; nil means "proceed to verify signatures".
func (ke *KeyEntry) validateKeyFor(set *SRRset) *JustifiedStatus {
	if set.SignerName == nil {
		if set.SynthesizedSecureCNAME {
			s := secureStatus()
			return &s
		}
		switch ke.tag {
		case keyEntryNull:
			reason := ke.badReason
			if reason == "" {
				reason = "insecure unsigned"
			}
			s := newStatus(Insecure, ke.edeReason, reason)
			return &s
		case keyEntryGood:
			s := newStatus(Bogus, EDERRSIGsMissing, "no rrsigs present but keys are known")
			return &s
		default: // Bad
			s := newStatus(Bogus, ke.edeReason, ke.badReason)
			return &s
		}
	}

	switch ke.tag {
	case keyEntryBad:
		s := newStatus(Bogus, ke.edeReason, "bad key at "+ke.name+": "+ke.badReason)
		return &s
	case keyEntryNull:
		reason := ke.badReason
		if reason == "" {
			reason = "insecure unsigned"
		}
		s := newStatus(Insecure, ke.edeReason, reason)
		return &s
	default: // Good - caller must proceed to signature verification.
		return nil
	}
}
