// Package cryptoverify performs the raw cryptographic half of DNSSEC
// signature verification: given an algorithm id, a DNSKEY's public key
// rdata, the signed byte stream and a signature, it reports whether the
// signature is valid. It knows nothing about RRsets, key tags or
// validity periods - those are the caller's concern.
package cryptoverify

import (
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"errors"
	"fmt"
	"math/big"

	"github.com/miekg/dns"
)

// ErrUnsupportedAlgorithm is returned for an algorithm id this package has
// no verifier for.
var ErrUnsupportedAlgorithm = errors.New("cryptoverify: unsupported algorithm")

// ErrMalformedKey is returned when a DNSKEY's public key rdata can't be
// parsed into usable key material.
var ErrMalformedKey = errors.New("cryptoverify: malformed public key")

// ErrSignatureMismatch is returned when the key material and signed bytes
// are well-formed but the signature does not validate.
var ErrSignatureMismatch = errors.New("cryptoverify: signature does not verify")

// Supported lists the algorithm ids this package can verify. Callers only
// check membership; the order carries no meaning.
var Supported = []uint8{
	dns.RSASHA1,
	dns.RSASHA1NSEC3SHA1,
	dns.RSASHA256,
	dns.RSASHA512,
	dns.DSA,
	dns.DSANSEC3SHA1,
	dns.ECDSAP256SHA256,
	dns.ECDSAP384SHA384,
	dns.ED25519,
}

// IsSupported reports whether Verify knows algorithm.
func IsSupported(algorithm uint8) bool {
	for _, a := range Supported {
		if a == algorithm {
			return true
		}
	}
	return false
}

// Verify checks signature against signedData using the key material in
// keyBytes (a DNSKEY's decoded public-key rdata) under algorithm. A nil
// error means the signature is cryptographically valid.
func Verify(algorithm uint8, keyBytes, signedData, signature []byte) error {
	hash, cryptoHash, err := hashForAlgorithm(algorithm)
	if err != nil {
		return err
	}

	switch algorithm {
	case dns.RSASHA1, dns.RSASHA1NSEC3SHA1, dns.RSASHA256, dns.RSASHA512:
		pub, err := parseRSAKey(keyBytes)
		if err != nil {
			return err
		}
		hash.Write(signedData)
		if err := rsa.VerifyPKCS1v15(pub, cryptoHash, hash.Sum(nil), signature); err != nil {
			return fmt.Errorf("%w: %w", ErrSignatureMismatch, err)
		}
		return nil

	case dns.DSA, dns.DSANSEC3SHA1:
		pub, err := parseDSAKey(keyBytes)
		if err != nil {
			return err
		}
		r, s, err := splitFixedWidth(signature, 1, dsaComponentLen)
		if err != nil {
			return err
		}
		hash.Write(signedData)
		if !dsa.Verify(pub, hash.Sum(nil), r, s) {
			return ErrSignatureMismatch
		}
		return nil

	case dns.ECDSAP256SHA256, dns.ECDSAP384SHA384:
		pub, componentLen, err := parseECDSAKey(algorithm, keyBytes)
		if err != nil {
			return err
		}
		r, s, err := splitFixedWidth(signature, 0, componentLen)
		if err != nil {
			return err
		}
		hash.Write(signedData)
		if !ecdsa.Verify(pub, hash.Sum(nil), r, s) {
			return ErrSignatureMismatch
		}
		return nil

	case dns.ED25519:
		if len(keyBytes) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: ed25519 key is %d bytes, want %d", ErrMalformedKey, len(keyBytes), ed25519.PublicKeySize)
		}
		if !ed25519.Verify(ed25519.PublicKey(keyBytes), signedData, signature) {
			return ErrSignatureMismatch
		}
		return nil

	default:
		return fmt.Errorf("%w: algorithm %d", ErrUnsupportedAlgorithm, algorithm)
	}
}

func hashForAlgorithm(algorithm uint8) (hashWriter, crypto.Hash, error) {
	var ch crypto.Hash
	switch algorithm {
	case dns.DSA, dns.DSANSEC3SHA1, dns.RSASHA1, dns.RSASHA1NSEC3SHA1:
		ch = crypto.SHA1
	case dns.RSASHA256, dns.ECDSAP256SHA256:
		ch = crypto.SHA256
	case dns.ECDSAP384SHA384:
		ch = crypto.SHA384
	case dns.RSASHA512:
		ch = crypto.SHA512
	case dns.ED25519:
		// ed25519.Verify hashes internally; callers must not pre-hash.
		return identityWriter{}, 0, nil
	default:
		return nil, 0, fmt.Errorf("%w: algorithm %d", ErrUnsupportedAlgorithm, algorithm)
	}
	if !ch.Available() {
		return nil, 0, fmt.Errorf("%w: hash %s unavailable", ErrUnsupportedAlgorithm, ch)
	}
	return ch.New(), ch, nil
}

// hashWriter is the subset of hash.Hash Verify needs; ed25519's
// identityWriter satisfies it without actually hashing.
type hashWriter interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

type identityWriter struct{}

func (identityWriter) Write(p []byte) (int, error) { return len(p), nil }
func (identityWriter) Sum(b []byte) []byte         { return b }

// parseRSAKey decodes an RSA public key from DNSKEY rdata per RFC 3110
// section 2.
func parseRSAKey(keyBytes []byte) (*rsa.PublicKey, error) {
	if len(keyBytes) < 1+1+64 {
		return nil, fmt.Errorf("%w: rsa key too short (%d bytes)", ErrMalformedKey, len(keyBytes))
	}

	explen := uint16(keyBytes[0])
	keyoff := 1
	if explen == 0 {
		if len(keyBytes) < 3 {
			return nil, fmt.Errorf("%w: rsa key missing extended exponent length", ErrMalformedKey)
		}
		explen = uint16(keyBytes[1])<<8 | uint16(keyBytes[2])
		keyoff = 3
	}
	if explen == 0 || explen > 4 {
		return nil, fmt.Errorf("%w: rsa exponent length %d out of range", ErrMalformedKey, explen)
	}

	modoff := keyoff + int(explen)
	if modoff > len(keyBytes) {
		return nil, fmt.Errorf("%w: rsa key truncated before modulus", ErrMalformedKey)
	}
	modulus := keyBytes[modoff:]
	if len(modulus) < 64 {
		return nil, fmt.Errorf("%w: rsa modulus too short (%d bytes)", ErrMalformedKey, len(modulus))
	}

	var expo uint64
	for _, b := range keyBytes[keyoff:modoff] {
		expo = expo<<8 | uint64(b)
	}
	if expo == 0 || expo > 1<<31-1 {
		return nil, fmt.Errorf("%w: rsa exponent %d out of range", ErrMalformedKey, expo)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(modulus),
		E: int(expo),
	}, nil
}

// parseECDSAKey decodes an ECDSA public key from DNSKEY rdata per RFC 6605
// section 4: the raw concatenation of the point's X and Y coordinates,
// each curveComponentLen(algorithm) bytes.
func parseECDSAKey(algorithm uint8, keyBytes []byte) (*ecdsa.PublicKey, int, error) {
	var curve elliptic.Curve
	var componentLen int
	switch algorithm {
	case dns.ECDSAP256SHA256:
		curve, componentLen = elliptic.P256(), 32
	case dns.ECDSAP384SHA384:
		curve, componentLen = elliptic.P384(), 48
	default:
		return nil, 0, fmt.Errorf("%w: algorithm %d is not ECDSA", ErrUnsupportedAlgorithm, algorithm)
	}
	if len(keyBytes) != 2*componentLen {
		return nil, 0, fmt.Errorf("%w: ecdsa key is %d bytes, want %d", ErrMalformedKey, len(keyBytes), 2*componentLen)
	}
	pub := &ecdsa.PublicKey{
		Curve: curve,
		X:     new(big.Int).SetBytes(keyBytes[:componentLen]),
		Y:     new(big.Int).SetBytes(keyBytes[componentLen:]),
	}
	return pub, componentLen, nil
}

const dsaComponentLen = 20

// parseDSAKey decodes a DSA public key from DNSKEY rdata per RFC 2536
// section 2: T(1) | Q(20) | P(64+8T) | G(64+8T) | Y(64+8T).
func parseDSAKey(keyBytes []byte) (*dsa.PublicKey, error) {
	if len(keyBytes) < 1 {
		return nil, fmt.Errorf("%w: dsa key empty", ErrMalformedKey)
	}
	t := int(keyBytes[0])
	if t > 8 {
		return nil, fmt.Errorf("%w: dsa T value %d out of range", ErrMalformedKey, t)
	}
	componentLen := 64 + 8*t
	want := 1 + dsaComponentLen + 3*componentLen
	if len(keyBytes) != want {
		return nil, fmt.Errorf("%w: dsa key is %d bytes, want %d", ErrMalformedKey, len(keyBytes), want)
	}

	off := 1
	q := new(big.Int).SetBytes(keyBytes[off : off+dsaComponentLen])
	off += dsaComponentLen
	p := new(big.Int).SetBytes(keyBytes[off : off+componentLen])
	off += componentLen
	g := new(big.Int).SetBytes(keyBytes[off : off+componentLen])
	off += componentLen
	y := new(big.Int).SetBytes(keyBytes[off : off+componentLen])

	return &dsa.PublicKey{
		Parameters: dsa.Parameters{P: p, Q: q, G: g},
		Y:          y,
	}, nil
}

// splitFixedWidth splits a two-component signature (prefixed by prefixLen
// bytes this package ignores, e.g. DSA's leading T byte) into its two
// big-endian integers, each nominally componentLen bytes.
//
// Some signers mis-encode a component with a stripped or extra leading
// zero byte, so the blob's total length can be off by a few bytes from
// 2*componentLen. When that happens, the deficit or surplus is assumed to
// sit in the first component (R): undersized signatures are treated as if
// R were left-padded with the missing zero bytes, oversized ones as if R
// carried extra leading zero bytes to trim. big.Int.SetBytes is agnostic
// to leading zeros, so this only affects where the R/S boundary falls,
// not the numeric value once the boundary is correctly placed.
func splitFixedWidth(signature []byte, prefixLen, componentLen int) (*big.Int, *big.Int, error) {
	body := signature[min(prefixLen, len(signature)):]
	want := 2 * componentLen
	switch {
	case len(body) == want:
		// exact fit, nothing to do
	case len(body) < want:
		deficit := want - len(body)
		padded := make([]byte, want)
		copy(padded[deficit:], body)
		body = padded
	default:
		surplus := len(body) - want
		body = body[surplus:]
	}
	r := new(big.Int).SetBytes(body[:componentLen])
	s := new(big.Int).SetBytes(body[componentLen:])
	return r, s, nil
}
