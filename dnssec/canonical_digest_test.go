package dnssec

import (
	"bytes"
	"testing"
	"time"

	"github.com/miekg/dns"
)

func TestDigestRRset_OrderIndependent(t *testing.T) {
	key := testRSAKey(t, testZone)
	rrset := []dns.RR{
		newRR(t, "example.com. 3600 IN A 192.0.2.1"),
		newRR(t, "example.com. 3600 IN A 192.0.2.2"),
		newRR(t, "example.com. 3600 IN A 192.0.2.3"),
	}
	sig := key.sign(t, rrset, 0, 0)

	forward, err := DigestRRset(sig, rrset)
	if err != nil {
		t.Fatalf("DigestRRset: %v", err)
	}

	reversed := []dns.RR{rrset[2], rrset[0], rrset[1]}
	backward, err := DigestRRset(sig, reversed)
	if err != nil {
		t.Fatalf("DigestRRset (reversed): %v", err)
	}

	if !bytes.Equal(forward, backward) {
		t.Error("DigestRRset depends on input order, it should not")
	}
}

func TestDigestRRset_WildcardExpansion(t *testing.T) {
	key := testRSAKey(t, testZone)
	rrset := []dns.RR{newRR(t, "foo.example.com. 3600 IN A 192.0.2.1")}

	// Simulate a wildcard-synthesized answer: the rrsig's Labels is one
	// fewer than the owner name's actual label count.
	sig := &dns.RRSIG{
		Inception:   uint32(time.Now().Add(-time.Hour).Unix()),
		Expiration:  uint32(time.Now().Add(time.Hour).Unix()),
		KeyTag:      key.key.KeyTag(),
		SignerName:  testZone,
		Algorithm:   dns.RSASHA256,
		Labels:      uint8(dns.CountLabel(testZone)),
		OrigTtl:     3600,
		TypeCovered: dns.TypeA,
	}

	digest, err := DigestRRset(sig, rrset)
	if err != nil {
		t.Fatalf("DigestRRset: %v", err)
	}
	if len(digest) == 0 {
		t.Fatal("expected a non-empty digest")
	}

	// The canonicalized owner name must read "*.example.com.", not
	// "foo.example.com." - confirm by checking a record canonicalized
	// directly under the wildcard name produces an identical digest.
	wildcardRRset := []dns.RR{newRR(t, "*.example.com. 3600 IN A 192.0.2.1")}
	wildcardDigest, err := DigestRRset(sig, wildcardRRset)
	if err != nil {
		t.Fatalf("DigestRRset (wildcard-owner): %v", err)
	}
	if !bytes.Equal(digest, wildcardDigest) {
		t.Error("wildcard-expanded record did not canonicalize to the same form as a literal wildcard owner")
	}
}

func TestDigestRRset_DuplicateKeyTagRRSIGsDoNotPerturbOrder(t *testing.T) {
	keyA := testRSAKey(t, testZone)
	keyB := testECDSAKey(t, testZone)
	rrset := []dns.RR{
		newRR(t, "example.com. 3600 IN A 192.0.2.9"),
	}

	sigA := keyA.sign(t, rrset, 0, 0)
	digestAlone, err := DigestRRset(sigA, rrset)
	if err != nil {
		t.Fatalf("DigestRRset: %v", err)
	}

	// Add a second, unrelated RRSIG into the mix the way an SRRset would
	// hold both; DigestRRset only ever sees the covered records, so the
	// presence of keyB's signature must not change sigA's digest.
	_ = keyB.sign(t, rrset, 0, 0)
	digestWithExtraSig, err := DigestRRset(sigA, rrset)
	if err != nil {
		t.Fatalf("DigestRRset: %v", err)
	}

	if !bytes.Equal(digestAlone, digestWithExtraSig) {
		t.Error("presence of another rrsig changed the digest for sigA")
	}
}
