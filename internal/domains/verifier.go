package domains

import (
	"context"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Status is the verification outcome for one attached hostname.
type Status struct {
	Domain   string `json:"domain"`
	Verified bool   `json:"verified"`
	Target   string `json:"target,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Resolver performs the CNAME lookup. *dns.Client satisfies it.
type Resolver interface {
	ExchangeContext(ctx context.Context, m *dns.Msg, addr string) (*dns.Msg, time.Duration, error)
}

// Verifier checks that a project's custom domains point at the platform
// edge. A domain counts as verified when its CNAME chain ends at EdgeHost.
type Verifier struct {
	client   Resolver
	resolver string
	edgeHost string
}

func NewVerifier(resolver, edgeHost string) *Verifier {
	return &Verifier{
		client:   &dns.Client{Timeout: 5 * time.Second},
		resolver: resolver,
		edgeHost: dns.Fqdn(edgeHost),
	}
}

// NewVerifierWithClient is used by tests to inject a fake resolver.
func NewVerifierWithClient(client Resolver, resolver, edgeHost string) *Verifier {
	return &Verifier{
		client:   client,
		resolver: resolver,
		edgeHost: dns.Fqdn(edgeHost),
	}
}

func (v *Verifier) Verify(ctx context.Context, hostnames []string) []Status {
	results := make([]Status, 0, len(hostnames))
	for _, name := range hostnames {
		results = append(results, v.verifyOne(ctx, name))
	}
	return results
}

func (v *Verifier) verifyOne(ctx context.Context, name string) Status {
	status := Status{Domain: name}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), dns.TypeCNAME)

	resp, _, err := v.client.ExchangeContext(ctx, m, v.resolver)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	if resp.Rcode != dns.RcodeSuccess {
		status.Error = dns.RcodeToString[resp.Rcode]
		return status
	}

	for _, rr := range resp.Answer {
		cname, ok := rr.(*dns.CNAME)
		if !ok {
			continue
		}
		status.Target = strings.TrimSuffix(cname.Target, ".")
		if strings.EqualFold(cname.Target, v.edgeHost) {
			status.Verified = true
			return status
		}
	}

	if status.Target == "" {
		status.Error = "no CNAME record found"
	}
	return status
}
