package config

import (
	"strings"
	"testing"
)

func TestValidate_MissingRouterSection(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "router") {
		t.Errorf("Expected the router section to be flagged, got: %v", err)
	}
}

func TestValidate_MissingCredentials(t *testing.T) {
	cfg := &Config{
		Router: &RouterConfig{URL: "http://192.168.1.1"},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "router.username") || !strings.Contains(msg, "router.password") {
		t.Errorf("Expected username and password to be flagged, got: %v", err)
	}
}

func TestValidate_BadURL(t *testing.T) {
	cfg := &Config{
		Router: &RouterConfig{URL: "not a url", Username: "root", Password: "x"},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "router.url") {
		t.Errorf("Expected router.url to be flagged, got: %v", err)
	}
}

func TestValidate_BadDNSServer(t *testing.T) {
	cfg := &Config{
		Router: &RouterConfig{URL: "http://192.168.1.1", Username: "root", Password: "x"},
		Tracker: &TrackerConfig{
			DNS: &TrackerDNSConfig{Enable: true, Server: "192.168.1.2"}, // missing port
		},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "tracker.dns.server") {
		t.Errorf("Expected tracker.dns.server to be flagged, got: %v", err)
	}
}

func TestValidate_PollIntervalTooLow(t *testing.T) {
	cfg := &Config{
		Router:  &RouterConfig{URL: "http://192.168.1.1", Username: "root", Password: "x"},
		Tracker: &TrackerConfig{PollIntervalSeconds: 2},
	}
	cfg.applyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Expected validation error")
	}
	if !strings.Contains(err.Error(), "poll_interval_seconds") {
		t.Errorf("Expected poll_interval_seconds to be flagged, got: %v", err)
	}
}
