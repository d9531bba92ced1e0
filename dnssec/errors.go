package dnssec

import "errors"

var (
	ErrRRSIGsMissing           = errors.New("dnssec: no rrsigs found covering the rrset")
	ErrSignerOffTree           = errors.New("dnssec: rrsig signer name is not an ancestor of the rrset owner")
	ErrUnsupportedAlgorithm    = errors.New("dnssec: dnskey rrset signals no locally supported algorithm")
	ErrNoCandidateKey          = errors.New("dnssec: no dnskey matches any rrsig's algorithm and key tag")
	ErrTooManySignatures       = errors.New("dnssec: too many rrsigs presented for validation")
	ErrBadKeyEntry             = errors.New("dnssec: key entry at this name is bad")
	ErrInvalidKeyEntry         = errors.New("dnssec: key entry is in an invalid state")
	ErrEmptyKeyEntry           = errors.New("dnssec: a Good key entry must have a non-empty dnskey rrset")
	ErrUnexpectedRRsetContents = errors.New("dnssec: rrset members do not share owner, class, type and ttl")
)
