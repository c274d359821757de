package resolver

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"
)

// startDNSServer runs a UDP DNS server that answers PTR queries from the
// given map (arpa name -> hostname) and returns its address.
func startDNSServer(t *testing.T, ptrs map[string]string, queries *atomic.Int64) string {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	srv := &dns.Server{
		PacketConn: conn,
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, req *dns.Msg) {
			queries.Add(1)

			m := new(dns.Msg)
			m.SetReply(req)

			q := req.Question[0]
			if q.Qtype == dns.TypePTR {
				if name, ok := ptrs[q.Name]; ok {
					m.Answer = append(m.Answer, &dns.PTR{
						Hdr: dns.RR_Header{
							Name:   q.Name,
							Rrtype: dns.TypePTR,
							Class:  dns.ClassINET,
							Ttl:    60,
						},
						Ptr: name,
					})
				} else {
					m.Rcode = dns.RcodeNameError
				}
			}
			_ = w.WriteMsg(m)
		}),
	}

	go func() { _ = srv.ActivateAndServe() }()
	t.Cleanup(func() { _ = srv.Shutdown() })

	return conn.LocalAddr().String()
}

func TestLookup_ResolvesPTR(t *testing.T) {
	var queries atomic.Int64
	addr := startDNSServer(t, map[string]string{
		"23.1.168.192.in-addr.arpa.": "annas-laptop.lan.",
	}, &queries)

	r := New(addr, time.Second)

	got := r.Lookup(context.Background(), "192.168.1.23")
	if got != "annas-laptop.lan" {
		t.Errorf("Lookup() = %q, want %q", got, "annas-laptop.lan")
	}
}

func TestLookup_CachesResults(t *testing.T) {
	var queries atomic.Int64
	addr := startDNSServer(t, map[string]string{
		"23.1.168.192.in-addr.arpa.": "annas-laptop.lan.",
	}, &queries)

	r := New(addr, time.Second)

	for i := 0; i < 3; i++ {
		if got := r.Lookup(context.Background(), "192.168.1.23"); got != "annas-laptop.lan" {
			t.Fatalf("Lookup() = %q", got)
		}
	}
	if n := queries.Load(); n != 1 {
		t.Errorf("Expected 1 server query, got %d", n)
	}
}

func TestLookup_CachesFailures(t *testing.T) {
	var queries atomic.Int64
	addr := startDNSServer(t, nil, &queries)

	r := New(addr, time.Second)

	for i := 0; i < 3; i++ {
		if got := r.Lookup(context.Background(), "192.168.1.99"); got != "" {
			t.Fatalf("Lookup() = %q, want empty", got)
		}
	}
	if n := queries.Load(); n != 1 {
		t.Errorf("Expected the NXDOMAIN to be cached after 1 query, got %d", n)
	}
}

func TestLookup_UnparsableAddress(t *testing.T) {
	var queries atomic.Int64
	addr := startDNSServer(t, nil, &queries)

	r := New(addr, time.Second)

	if got := r.Lookup(context.Background(), "not-an-ip"); got != "" {
		t.Errorf("Lookup() = %q, want empty", got)
	}
	if n := queries.Load(); n != 0 {
		t.Errorf("A bad address must not hit the server, got %d queries", n)
	}
}

func TestFlush_DropsCache(t *testing.T) {
	var queries atomic.Int64
	addr := startDNSServer(t, map[string]string{
		"23.1.168.192.in-addr.arpa.": "annas-laptop.lan.",
	}, &queries)

	r := New(addr, time.Second)

	r.Lookup(context.Background(), "192.168.1.23")
	r.Flush()
	r.Lookup(context.Background(), "192.168.1.23")

	if n := queries.Load(); n != 2 {
		t.Errorf("Expected 2 server queries after flush, got %d", n)
	}
}
