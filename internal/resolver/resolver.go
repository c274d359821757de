// Package resolver attaches hostnames to discovered devices via reverse DNS.
//
// The router's own DNS server usually knows the DHCP lease names of local
// clients, so a PTR lookup against it turns "192.168.1.23" into
// "annas-laptop.lan". Lookups are best-effort: any failure yields an empty
// hostname and is cached so the same dead address is not queried every
// polling cycle.
package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/maxklyga/luci-presence/internal/log"
)

// Resolver performs cached PTR lookups against a single DNS server.
//
// All methods are safe for concurrent use.
type Resolver struct {
	server string
	client *dns.Client

	mu    sync.RWMutex
	cache map[string]string // IP -> hostname; "" records a failed lookup
}

// New creates a resolver querying the given "host:port" server over UDP.
func New(server string, timeout time.Duration) *Resolver {
	return &Resolver{
		server: server,
		client: &dns.Client{
			Net:     "udp",
			Timeout: timeout,
		},
		cache: make(map[string]string),
	}
}

// Lookup returns the PTR name for ip, or "" if none could be resolved.
func (r *Resolver) Lookup(ctx context.Context, ip string) string {
	r.mu.RLock()
	name, cached := r.cache[ip]
	r.mu.RUnlock()
	if cached {
		return name
	}

	name = r.lookup(ctx, ip)

	r.mu.Lock()
	r.cache[ip] = name
	r.mu.Unlock()
	return name
}

func (r *Resolver) lookup(ctx context.Context, ip string) string {
	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		log.Debugf("Not a resolvable address %q: %v", ip, err)
		return ""
	}

	m := new(dns.Msg)
	m.SetQuestion(arpa, dns.TypePTR)

	resp, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err != nil {
		log.Debugf("PTR lookup for %s failed (server %s): %v", ip, r.server, err)
		return ""
	}
	if resp.Rcode != dns.RcodeSuccess {
		log.Debugf("PTR lookup for %s: %s", ip, dns.RcodeToString[resp.Rcode])
		return ""
	}

	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			return strings.TrimSuffix(ptr.Ptr, ".")
		}
	}
	return ""
}

// Flush removes all cached lookups.
func (r *Resolver) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]string)
}
