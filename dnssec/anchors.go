package dnssec

import (
	"strings"

	"github.com/miekg/dns"
	"github.com/nsmithuk/dnssec-root-anchors-go/anchors"
)

// RootAnchors returns the root zone's current DS trust anchors, as
// published by IANA and embedded at build time by dnssec-root-anchors-go.
func RootAnchors() []*dns.DS {
	return anchors.GetValid()
}

// RootKeyEntry builds a KeyEntry for the root zone from a freshly fetched
// DNSKEY rrset, validating it against RootAnchors. The returned KeyEntry
// is Good only if at least one DNSKEY hashes to a DS anchor we trust;
// otherwise it's Bad, carrying the EDE reason a caller should surface.
//
// This is the one place a hard-coded trust anchor enters the validator.
// The package does not itself walk DS/DNSKEY delegations below the root.
func RootKeyEntry(dnskeys []*dns.DNSKEY, ttl uint32) *KeyEntry {
	anchorsList := RootAnchors()
	if len(anchorsList) == 0 {
		ke := BadEntry(".", dns.ClassINET, ttl)
		ke.SetBadReason(EDEDNSKEYMissing, "no root trust anchors are configured")
		return ke
	}

	matched := make([]*dns.DNSKEY, 0, len(dnskeys))
	for _, key := range dnskeys {
		if key.Flags&dns.ZONE == 0 || key.Protocol != 3 {
			continue
		}
		if anchorMatches(key, anchorsList) {
			matched = append(matched, key)
		}
	}

	if len(matched) == 0 {
		ke := BadEntry(".", dns.ClassINET, ttl)
		ke.SetBadReason(EDEDNSKEYMissing, "no dnskey in the root rrset matches a trust anchor")
		return ke
	}
	return Good(".", dns.ClassINET, ttl, dnskeys, nil)
}

func anchorMatches(key *dns.DNSKEY, anchorsList []*dns.DS) bool {
	for _, anchor := range anchorsList {
		if key.KeyTag() != anchor.KeyTag || key.Algorithm != anchor.Algorithm {
			continue
		}
		ds := key.ToDS(anchor.DigestType)
		if ds == nil {
			continue
		}
		if strings.EqualFold(ds.Digest, anchor.Digest) {
			return true
		}
	}
	return false
}
