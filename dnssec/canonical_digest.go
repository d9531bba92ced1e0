package dnssec

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/miekg/dns"
)

// DigestRRset produces the canonical byte stream that sig's signature is
// computed over, per RFC 4034 section 3.1.8.1 / RFC 4035 section 5.3.2:
// the RRSIG's signed portion (every field except the signature itself),
// followed by every covered record in canonical form, sorted ascending by
// its canonical wire bytes.
//
// The output is deterministic: it does not depend on the input slice's
// order, and is unaffected by the presence of other RRSIGs alongside rrset
// (duplicates differing only in key-tag do not perturb it), since rrset is
// expected to contain only the covered records, never RRSIGs.
func DigestRRset(sig *dns.RRSIG, rrset []dns.RR) ([]byte, error) {
	prefix, err := rrsigSignedPrefix(sig)
	if err != nil {
		return nil, fmt.Errorf("dnssec: building rrsig prefix: %w", err)
	}

	canonical := make([][]byte, 0, len(rrset))
	for _, rr := range rrset {
		wire, err := canonicalWireForm(rr, sig)
		if err != nil {
			return nil, fmt.Errorf("dnssec: canonicalizing %s: %w", rr.Header().Name, err)
		}
		canonical = append(canonical, wire)
	}

	sort.Slice(canonical, func(i, j int) bool {
		return bytes.Compare(canonical[i], canonical[j]) < 0
	})

	out := make([]byte, 0, len(prefix)+totalLen(canonical))
	out = append(out, prefix...)
	for _, wire := range canonical {
		out = append(out, wire...)
	}
	return out, nil
}

func totalLen(bs [][]byte) int {
	n := 0
	for _, b := range bs {
		n += len(b)
	}
	return n
}

// rrsigSignedPrefix returns the RRSIG RDATA fields, wire-encoded, up to but
// excluding the signature bytes - reusing dns.PackRR the same way the
// library's own SIG(0) signing code does (pack a throwaway RR with an
// empty signature, then slice off the fixed RR header).
func rrsigSignedPrefix(sig *dns.RRSIG) ([]byte, error) {
	cp := *sig
	cp.Hdr = dns.RR_Header{Name: ".", Rrtype: dns.TypeRRSIG, Class: dns.ClassINET, Ttl: 0}
	cp.Signature = ""

	buf := make([]byte, 2048)
	off, err := dns.PackRR(&cp, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}

	// Fixed RR header for a root-owner RR: 1 (root name) + 2 (type) +
	// 2 (class) + 4 (ttl) + 2 (rdlength) = 11 bytes, then RDATA follows.
	const headerLen = 11
	if off < headerLen {
		return nil, fmt.Errorf("packed rrsig shorter than expected header (%d bytes)", off)
	}
	return buf[headerLen:off], nil
}

// canonicalWireForm renders rr the way RFC 4034 section 6.2 requires: owner
// name canonicalized (wildcard-expanded or lower-cased), TTL replaced with
// sig's original TTL, and rdata packed uncompressed with any name-valued
// rdata fields lower-cased.
func canonicalWireForm(rr dns.RR, sig *dns.RRSIG) ([]byte, error) {
	cp := dns.Copy(rr)
	hdr := cp.Header()
	hdr.Name = canonicalOwnerName(hdr.Name, sig.Labels)
	hdr.Ttl = sig.OrigTtl

	lowercaseRdataNames(cp)

	buf := make([]byte, dns.Len(cp)+64)
	off, err := dns.PackRR(cp, buf, 0, nil, false)
	if err != nil {
		return nil, err
	}
	return buf[:off], nil
}

// canonicalOwnerName applies RFC 4035 section 5.3.2's wildcard rule: if the
// rrsig's Labels count is smaller than the name's own label count, the
// record was synthesized from a wildcard and must be rewritten as
// "*." + (the rightmost Labels labels). Otherwise the name is just
// lower-cased.
func canonicalOwnerName(name string, sigLabels uint8) string {
	name = dns.CanonicalName(name)
	if dns.CountLabel(name) <= int(sigLabels) {
		return name
	}
	labelStarts := dns.Split(name)
	idx := labelStarts[len(labelStarts)-int(sigLabels)]
	return "*." + name[idx:]
}

// lowercaseRdataNames lower-cases the name-valued rdata fields of the
// common record types that carry one; other types have no domain names
// embedded in their rdata and are left untouched.
func lowercaseRdataNames(rr dns.RR) {
	switch r := rr.(type) {
	case *dns.NS:
		r.Ns = dns.CanonicalName(r.Ns)
	case *dns.CNAME:
		r.Target = dns.CanonicalName(r.Target)
	case *dns.DNAME:
		r.Target = dns.CanonicalName(r.Target)
	case *dns.PTR:
		r.Ptr = dns.CanonicalName(r.Ptr)
	case *dns.SOA:
		r.Ns = dns.CanonicalName(r.Ns)
		r.Mbox = dns.CanonicalName(r.Mbox)
	case *dns.MX:
		r.Mx = dns.CanonicalName(r.Mx)
	case *dns.SRV:
		r.Target = dns.CanonicalName(r.Target)
	case *dns.NAPTR:
		r.Replacement = dns.CanonicalName(r.Replacement)
	case *dns.RP:
		r.Mbox = dns.CanonicalName(r.Mbox)
		r.Txt = dns.CanonicalName(r.Txt)
	case *dns.MINFO:
		r.Rmail = dns.CanonicalName(r.Rmail)
		r.Email = dns.CanonicalName(r.Email)
	case *dns.KX:
		r.Exchanger = dns.CanonicalName(r.Exchanger)
	}
}
