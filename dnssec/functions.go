package dnssec

import "github.com/miekg/dns"

func extractRecords[T dns.RR](rr []dns.RR) []T {
	r := make([]T, 0, len(rr))
	for _, record := range rr {
		if typed, ok := record.(T); ok {
			r = append(r, typed)
		}
	}
	return r
}

// DNSKEYsFromRRset pulls the DNSKEY records out of a mixed answer slice,
// e.g. a DNSKEY query's response section before it's wrapped in an SRRset.
func DNSKEYsFromRRset(rr []dns.RR) []*dns.DNSKEY {
	return extractRecords[*dns.DNSKEY](rr)
}

// namesEqual compares two names under DNS's canonical (fully-qualified,
// lower-cased) form.
func namesEqual(a, b string) bool {
	return dns.CanonicalName(a) == dns.CanonicalName(b)
}
