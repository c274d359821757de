package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/maxklyga/luci-presence/internal/errors"
	"github.com/maxklyga/luci-presence/internal/luci"
)

// fakeClient scripts the results of successive ConnectedDevices calls.
type fakeClient struct {
	results []queryResult
	calls   int
}

type queryResult struct {
	devices []luci.Device
	ok      bool
	err     error
}

func (f *fakeClient) ConnectedDevices() ([]luci.Device, bool, error) {
	if f.calls >= len(f.results) {
		return nil, true, nil
	}
	r := f.results[f.calls]
	f.calls++
	return r.devices, r.ok, r.err
}

func (f *fakeClient) Mode() luci.DiscoveryMode {
	return luci.UseNeighborsTable
}

type fakeResolver struct {
	names map[string]string
}

func (f *fakeResolver) Lookup(_ context.Context, ip string) string {
	return f.names[ip]
}

func TestPoll_AddsDevices(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{devices: []luci.Device{
			{MAC: "aa:bb:cc:dd:ee:ff", IP: "192.168.1.10"},
			{MAC: "11:22:33:44:55:66", IP: "192.168.1.23"},
		}, ok: true},
	}}
	tr := New(client, nil, time.Second, 3*time.Minute)

	tr.poll(context.Background())

	snapshot := tr.Snapshot()
	if len(snapshot) != 2 {
		t.Fatalf("Expected 2 devices, got %d", len(snapshot))
	}
	// Snapshot is ordered by MAC.
	if snapshot[0].MAC != "11:22:33:44:55:66" || snapshot[1].MAC != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("Unexpected order: %#v", snapshot)
	}
	for _, d := range snapshot {
		if !d.Present {
			t.Errorf("Device %s should be present right after a poll", d.MAC)
		}
		if d.FirstSeen.IsZero() || d.LastSeen.IsZero() {
			t.Errorf("Device %s is missing timestamps", d.MAC)
		}
	}
}

func TestPoll_ConsiderHomeWindow(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{devices: []luci.Device{{MAC: "aa:bb:cc:dd:ee:ff"}}, ok: true},
		{devices: nil, ok: true}, // device disappears from the next poll
	}}
	tr := New(client, nil, time.Second, time.Hour)

	tr.poll(context.Background())
	tr.poll(context.Background())

	snapshot := tr.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("Expected the device to stay known, got %d", len(snapshot))
	}
	if !snapshot[0].Present {
		t.Error("Device inside the consider-home window should still be present")
	}

	present := tr.Present()
	if len(present) != 1 {
		t.Errorf("Present() should include the device, got %d", len(present))
	}
}

func TestPoll_ZeroWindowExpiresImmediately(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{devices: []luci.Device{{MAC: "aa:bb:cc:dd:ee:ff"}}, ok: true},
		{devices: nil, ok: true},
	}}
	tr := New(client, nil, time.Second, 0)

	tr.poll(context.Background())
	time.Sleep(10 * time.Millisecond)
	tr.poll(context.Background())

	snapshot := tr.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("Expected 1 known device, got %d", len(snapshot))
	}
	if snapshot[0].Present {
		t.Error("With a zero window, a device absent from the latest poll is away")
	}
	if len(tr.Present()) != 0 {
		t.Error("Present() should be empty")
	}
}

func TestPoll_NoUpdateCycleKeepsState(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{devices: []luci.Device{{MAC: "aa:bb:cc:dd:ee:ff"}}, ok: true},
		{ok: false}, // method fallback or token refresh cycle
	}}
	tr := New(client, nil, time.Second, time.Hour)

	tr.poll(context.Background())
	time.Sleep(5 * time.Millisecond)
	tr.poll(context.Background())

	status := tr.Status()
	if status.Polls != 2 {
		t.Errorf("Expected 2 polls, got %d", status.Polls)
	}
	if status.LastError != "" {
		t.Errorf("A no-update cycle is not an error, got %q", status.LastError)
	}
	if status.DevicesPresent != 1 {
		t.Errorf("Expected the device to stay present, got %d", status.DevicesPresent)
	}
	if !status.LastSuccess.Before(status.LastPoll) {
		t.Error("LastSuccess should predate the no-update poll")
	}
}

func TestPoll_HardErrorRecordedInStatus(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{err: errors.NewRPCError("invalid response from LuCI", nil)},
	}}
	tr := New(client, nil, time.Second, time.Hour)

	tr.poll(context.Background())

	status := tr.Status()
	if status.LastError == "" {
		t.Error("Expected the error to be recorded")
	}
	if !status.LastSuccess.IsZero() {
		t.Error("A failed poll must not count as a success")
	}
}

func TestPoll_ResolvesHostnames(t *testing.T) {
	client := &fakeClient{results: []queryResult{
		{devices: []luci.Device{{MAC: "aa:bb:cc:dd:ee:ff", IP: "192.168.1.10"}}, ok: true},
	}}
	res := &fakeResolver{names: map[string]string{"192.168.1.10": "annas-laptop.lan"}}
	tr := New(client, res, time.Second, time.Hour)

	tr.poll(context.Background())

	snapshot := tr.Snapshot()
	if snapshot[0].Hostname != "annas-laptop.lan" {
		t.Errorf("Expected hostname from resolver, got %q", snapshot[0].Hostname)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	client := &fakeClient{}
	tr := New(client, nil, 10*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}

	if tr.Status().Polls == 0 {
		t.Error("Expected at least one poll")
	}
}
