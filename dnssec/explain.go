package dnssec

import "github.com/miekg/dns"

// edeText maps this package's EDE info-codes to the RFC 8914 section 4
// registry text for that code.
var edeText = map[int]string{
	EDEUnsupportedDNSKEYAlgorithm: "Unsupported DNSKEY Algorithm",
	EDEDNSSECBogus:                "DNSSEC Bogus",
	EDESignatureExpired:           "Signature Expired",
	EDESignatureNotYetValid:       "Signature Not Yet Valid",
	EDEDNSKEYMissing:              "DNSKEY Missing",
	EDERRSIGsMissing:              "RRSIGs Missing",
}

// Explain renders a JustifiedStatus as a single human-readable line,
// suitable for logging or for a SERVFAIL response's EDE ExtraText.
func Explain(status JustifiedStatus) string {
	label, ok := edeText[status.EDECode]
	switch {
	case !ok && status.Reason != "":
		return status.Status.String() + ": " + status.Reason
	case !ok:
		return status.Status.String()
	case status.Reason != "":
		return status.Status.String() + ": " + label + " (" + status.Reason + ")"
	default:
		return status.Status.String() + ": " + label
	}
}

// EDNS0Option builds the wire-format Extended DNS Error option for status,
// or nil if status carries no EDE code. The info-code values this package
// assigns are the RFC 8914 registry values directly, so they translate
// straight into dns.EDNS0_EDE.InfoCode.
func EDNS0Option(status JustifiedStatus) *dns.EDNS0_EDE {
	if status.EDECode == EDENone {
		return nil
	}
	return &dns.EDNS0_EDE{
		InfoCode:  uint16(status.EDECode),
		ExtraText: status.Reason,
	}
}
