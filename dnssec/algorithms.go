package dnssec

import "github.com/miekg/dns"

// SignalledAlgorithms derives the distinct set of algorithms a DNSKEY
// rrset signs under. RFC 6840 section 5.11's rollover rule only cares
// about the algorithms actually present in the zone's keyset, so this is
// what Good's signalledAlgs parameter should normally be built from.
func SignalledAlgorithms(keys []*dns.DNSKEY) []uint8 {
	seen := make(map[uint8]struct{}, len(keys))
	out := make([]uint8, 0, len(keys))
	for _, key := range keys {
		if key.Flags&dns.ZONE == 0 {
			continue
		}
		if _, ok := seen[key.Algorithm]; ok {
			continue
		}
		seen[key.Algorithm] = struct{}{}
		out = append(out, key.Algorithm)
	}
	return out
}
