// Package tracker runs the polling loop over the LuCI client and keeps the
// presence state of known devices.
//
// The LuCI client is single-flight by design: the tracker is the one caller
// that serializes discovery queries, on a fixed interval. A device stays
// "present" for a configurable window after the router last reported it, so
// that one noisy poll does not flap everyone to away.
package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/luci"
)

// Client is the part of the LuCI client the tracker needs.
type Client interface {
	ConnectedDevices() ([]luci.Device, bool, error)
	Mode() luci.DiscoveryMode
}

// Resolver names devices by IP. May be nil (naming disabled).
type Resolver interface {
	Lookup(ctx context.Context, ip string) string
}

// TrackedDevice is the presence state of one known MAC address.
type TrackedDevice struct {
	MAC       string    `json:"mac"`
	IP        string    `json:"ip,omitempty"`
	Hostname  string    `json:"hostname,omitempty"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	Present   bool      `json:"present"`
}

// Status is a snapshot of the tracker's own health.
type Status struct {
	DiscoveryMode  string    `json:"discovery_mode"`
	Polls          uint64    `json:"polls"`
	LastPoll       time.Time `json:"last_poll,omitempty"`
	LastSuccess    time.Time `json:"last_success,omitempty"`
	LastError      string    `json:"last_error,omitempty"`
	DevicesKnown   int       `json:"devices_known"`
	DevicesPresent int       `json:"devices_present"`
}

// Tracker owns the polling loop and the per-device presence state.
type Tracker struct {
	client       Client
	resolver     Resolver
	interval     time.Duration
	considerHome time.Duration

	mu          sync.RWMutex
	devices     map[string]*TrackedDevice
	polls       uint64
	lastPoll    time.Time
	lastSuccess time.Time
	lastError   string
}

// New creates a tracker. The resolver may be nil to disable device naming.
func New(client Client, resolver Resolver, interval, considerHome time.Duration) *Tracker {
	return &Tracker{
		client:       client,
		resolver:     resolver,
		interval:     interval,
		considerHome: considerHome,
		devices:      make(map[string]*TrackedDevice),
	}
}

// Run polls once immediately and then on every interval tick until the
// context is cancelled. It always returns nil after a clean shutdown.
func (t *Tracker) Run(ctx context.Context) error {
	log.Infof("Presence tracker started (interval %s, consider-home %s)", t.interval, t.considerHome)

	t.poll(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("Presence tracker stopping")
			return nil
		case <-ticker.C:
			t.poll(ctx)
		}
	}
}

// poll performs one discovery cycle. Recoverable "no update this cycle"
// results just wait for the next tick; hard errors are recorded in the status
// but never stop the loop.
func (t *Tracker) poll(ctx context.Context) {
	now := time.Now()

	devices, ok, err := t.client.ConnectedDevices()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.polls++
	t.lastPoll = now

	if err != nil {
		t.lastError = err.Error()
		log.Errorf("Device query failed: %v", err)
		return
	}
	if !ok {
		// Discovery method flipped or token refreshed; the next cycle uses
		// the corrected state.
		log.Debugf("No device update this cycle")
		return
	}

	t.lastError = ""
	t.lastSuccess = now

	for _, d := range devices {
		entry, known := t.devices[d.MAC]
		if !known {
			entry = &TrackedDevice{MAC: d.MAC, FirstSeen: now}
			t.devices[d.MAC] = entry
			log.Infof("New device %s (%s)", d.MAC, d.IP)
		}
		entry.LastSeen = now
		if d.IP != "" {
			entry.IP = d.IP
		}
		if t.resolver != nil && entry.Hostname == "" && entry.IP != "" {
			entry.Hostname = t.resolver.Lookup(ctx, entry.IP)
		}
	}
}

// Snapshot returns all known devices, ordered by MAC, with their presence
// evaluated against the consider-home window.
func (t *Tracker) Snapshot() []TrackedDevice {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	out := make([]TrackedDevice, 0, len(t.devices))
	for _, d := range t.devices {
		entry := *d
		entry.Present = t.presentLocked(d, now)
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MAC < out[j].MAC })
	return out
}

// Present returns only the devices currently considered present.
func (t *Tracker) Present() []TrackedDevice {
	all := t.Snapshot()
	out := all[:0]
	for _, d := range all {
		if d.Present {
			out = append(out, d)
		}
	}
	return out
}

// Status returns the tracker health snapshot.
func (t *Tracker) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	present := 0
	for _, d := range t.devices {
		if t.presentLocked(d, now) {
			present++
		}
	}

	return Status{
		DiscoveryMode:  t.client.Mode().String(),
		Polls:          t.polls,
		LastPoll:       t.lastPoll,
		LastSuccess:    t.lastSuccess,
		LastError:      t.lastError,
		DevicesKnown:   len(t.devices),
		DevicesPresent: present,
	}
}

// presentLocked reports whether a device counts as present: it appeared in
// the most recent successful poll, or was last seen within the consider-home
// window.
func (t *Tracker) presentLocked(d *TrackedDevice, now time.Time) bool {
	if d.LastSeen.IsZero() {
		return false
	}
	if !t.lastSuccess.IsZero() && !d.LastSeen.Before(t.lastSuccess) {
		return true
	}
	return now.Sub(d.LastSeen) <= t.considerHome
}
