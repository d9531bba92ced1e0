package dnssec

import (
	"encoding/base64"

	"github.com/miekg/dns"
	"github.com/nsmithuk/dnssec-validator/internal/cryptoverify"
)

// CryptoVerifier performs the raw cryptographic check of a single
// signature against a single key. SignatureVerifier never touches a
// crypto primitive directly - it always goes through this interface, so
// callers can swap in hardware-backed or algorithm-restricted
// implementations without touching the validation state machine.
type CryptoVerifier interface {
	// Verify reports whether signature validates signedData under key,
	// a DNSKEY's raw (base64-decoded) public key rdata, for algorithm.
	// A non-nil error always means "treat this candidate as failed";
	// callers don't distinguish malformed keys from bad signatures.
	Verify(algorithm uint8, key, signedData, signature []byte) error
}

// AlgorithmLister is an optional capability a CryptoVerifier can
// implement to report exactly which algorithm ids it can verify.
// AlgorithmRequirements uses it to drop algorithms nobody can ever
// satisfy out of the rollover count. A CryptoVerifier that doesn't
// implement it is assumed to support every algorithm it's asked about.
type AlgorithmLister interface {
	SupportedAlgorithms() []uint8
}

// DefaultCryptoVerifier is backed by the Go standard library's crypto/rsa,
// crypto/ecdsa, crypto/ed25519 and crypto/dsa packages - the same
// primitives every DNSSEC validator in wide use reaches for, since none of
// RFC 4034's signature algorithms have a natural home in a higher-level
// third-party crypto library.
type DefaultCryptoVerifier struct{}

func (DefaultCryptoVerifier) Verify(algorithm uint8, key, signedData, signature []byte) error {
	return cryptoverify.Verify(algorithm, key, signedData, signature)
}

func (DefaultCryptoVerifier) SupportedAlgorithms() []uint8 {
	return cryptoverify.Supported
}

var _ CryptoVerifier = DefaultCryptoVerifier{}
var _ AlgorithmLister = DefaultCryptoVerifier{}

// publicKeyBytes returns a DNSKEY's decoded public key rdata, ready for
// CryptoVerifier.Verify.
func publicKeyBytes(key *dns.DNSKEY) ([]byte, error) {
	return base64.StdEncoding.DecodeString(key.PublicKey)
}

// decodeSignature returns an RRSIG's decoded signature rdata, ready for
// CryptoVerifier.Verify.
func decodeSignature(signature string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(signature)
}
