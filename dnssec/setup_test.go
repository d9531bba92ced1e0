package dnssec

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/miekg/dns"
)

const testZone = "example.com."

func newRR(t *testing.T, s string) dns.RR {
	t.Helper()
	rr, err := dns.NewRR(s)
	if err != nil {
		t.Fatalf("parsing rr %q: %v", s, err)
	}
	return rr
}

// testKey bundles a generated DNSKEY with the signer needed to produce
// RRSIGs over it, the same pairing the rest of the ecosystem's DNSSEC
// tests use.
type testKey struct {
	key    *dns.DNSKEY
	signer crypto.Signer
}

func testRSAKey(t *testing.T, name string) *testKey {
	t.Helper()
	dnskey := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: name, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 300},
		Flags:     dns.ZONE,
		Protocol:  3,
		Algorithm: dns.RSASHA256,
	}
	secret, err := dnskey.Generate(2048)
	if err != nil {
		t.Fatalf("generating rsa key: %v", err)
	}
	signer, _ := secret.(*rsa.PrivateKey)
	return &testKey{key: dnskey, signer: signer}
}

func testECDSAKey(t *testing.T, name string) *testKey {
	t.Helper()
	dnskey := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: name, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 300},
		Flags:     dns.ZONE,
		Protocol:  3,
		Algorithm: dns.ECDSAP256SHA256,
	}
	secret, err := dnskey.Generate(256)
	if err != nil {
		t.Fatalf("generating ecdsa key: %v", err)
	}
	signer, _ := secret.(*ecdsa.PrivateKey)
	return &testKey{key: dnskey, signer: signer}
}

// sign produces an RRSIG over rrset, valid now unless inception/expiration
// override it.
func (k *testKey) sign(t *testing.T, rrset []dns.RR, inception, expiration int64) *dns.RRSIG {
	t.Helper()
	if inception == 0 {
		inception = time.Now().Add(-time.Hour).Unix()
	}
	if expiration == 0 {
		expiration = time.Now().Add(time.Hour).Unix()
	}
	rrsig := &dns.RRSIG{
		Inception:  uint32(inception),
		Expiration: uint32(expiration),
		KeyTag:     k.key.KeyTag(),
		SignerName: k.key.Header().Name,
		Algorithm:  k.key.Algorithm,
	}
	if err := rrsig.Sign(k.signer, rrset); err != nil {
		t.Fatalf("signing rrset: %v", err)
	}
	return rrsig
}
