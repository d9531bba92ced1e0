// dnssec-check is a small utility in the spirit of miekg/exdns's "q": it
// issues a query against a target server, fetches the zone's DNSKEY rrset
// over the same extended resolver, and reports whether the answer
// validates. It exists to exercise dnssec and resolver together manually;
// it is not part of either package's public surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/nsmithuk/dnssec-validator/dnssec"
	"github.com/nsmithuk/dnssec-validator/resolver"
)

var (
	server        = flag.String("server", "", "nameserver to query, e.g. 8.8.8.8 (required)")
	qtypeFlag     = flag.String("type", "A", "record type to query")
	timeout       = flag.Duration("timeout", 5*time.Second, "whole-operation deadline")
	retries       = flag.Int("retries", resolver.DefaultRetriesPerResolver, "retries per resolver")
	loadBalance   = flag.Bool("load-balance", false, "round-robin across -server values instead of failure-sorting them")
	maxSignatures = flag.Int("max-validate-rrsigs", dnssec.DefaultMaxValidateRRSIGs, "cap on the number of RRSIGs tried per rrset")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -server=<ip>[,<ip>...] [options] <name>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 || *server == "" {
		flag.Usage()
		os.Exit(2)
	}

	name := dns.Fqdn(flag.Arg(0))
	qtype, ok := dns.StringToType[strings.ToUpper(*qtypeFlag)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown record type: %s\n", *qtypeFlag)
		os.Exit(2)
	}

	ext := buildExtendedResolver(strings.Split(*server, ","))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	signer, err := fetchDNSKEYs(ctx, ext, name)
	if err != nil {
		fmt.Fprintf(os.Stderr, ";; failed fetching DNSKEY for %s: %s\n", name, err)
		os.Exit(1)
	}

	answer, err := exchange(ctx, ext, name, qtype)
	if err != nil {
		fmt.Fprintf(os.Stderr, ";; query failed: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("%v\n", answer)

	if signer == nil {
		fmt.Println(";; unsigned zone, or DNSKEY lookup came back empty: skipping validation")
		return
	}

	cfg := dnssec.Config{"dnsjava.dnssec.max_validate_rrsigs": fmt.Sprintf("%d", *maxSignatures)}
	verifier, err := dnssec.Load(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, ";; could not build verifier: %s\n", err)
		os.Exit(1)
	}

	set := dnssec.NewSRRset(answer.Answer)
	set.SignerName = &name

	status := verifier.Verify(set, signer, time.Now())
	fmt.Printf(";; %s\n", dnssec.Explain(status))
}

func buildExtendedResolver(hosts []string) *resolver.ExtendedResolver {
	children := make([]resolver.Resolver, 0, len(hosts))
	for _, h := range hosts {
		children = append(children, resolver.NewClient(strings.TrimSpace(h)))
	}
	ext := resolver.NewExtendedResolver(children...)
	ext.SetRetriesPerResolver(*retries)
	ext.SetLoadBalance(*loadBalance)
	ext.SetTimeout(*timeout)
	return ext
}

func exchange(ctx context.Context, ext *resolver.ExtendedResolver, name string, qtype uint16) (*dns.Msg, error) {
	m := new(dns.Msg)
	m.SetQuestion(name, qtype)
	m.SetEdns0(4096, true)

	result := <-ext.SendAsync(ctx, m, nil)
	if result.Error() {
		return nil, result.Err
	}
	return result.Msg, nil
}

// fetchDNSKEYs looks up name's own DNSKEY rrset and wraps it as a Good
// KeyEntry; a real chain-of-trust walk is out of scope here, this command
// only ever checks one zone's self-signed key against its own signatures.
func fetchDNSKEYs(ctx context.Context, ext *resolver.ExtendedResolver, name string) (*dnssec.KeyEntry, error) {
	m := new(dns.Msg)
	m.SetQuestion(name, dns.TypeDNSKEY)
	m.SetEdns0(4096, true)

	result := <-ext.SendAsync(ctx, m, nil)
	if result.Error() {
		return nil, result.Err
	}
	if result.Msg == nil || len(result.Msg.Answer) == 0 {
		return nil, nil
	}

	keys := dnssec.DNSKEYsFromRRset(result.Msg.Answer)
	if len(keys) == 0 {
		return nil, nil
	}

	ttl := keys[0].Header().Ttl
	return dnssec.Good(name, dns.ClassINET, ttl, keys, dnssec.SignalledAlgorithms(keys)), nil
}
