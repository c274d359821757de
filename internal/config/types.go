package config

import (
	"net/url"
	"time"
)

// Config is the root of the luci-presence configuration file.
type Config struct {
	// Router holds the LuCI RPC connection settings.
	Router *RouterConfig `toml:"router" json:"router"`
	// Tracker holds the presence-polling settings.
	Tracker *TrackerConfig `toml:"tracker" json:"tracker"`
	// API holds the REST API settings.
	API *APIConfig `toml:"api" json:"api"`

	_absConfigFilePath string
}

// RouterConfig describes how to reach the router's LuCI RPC interface.
type RouterConfig struct {
	// URL is the router base URL, e.g. "http://192.168.1.1".
	URL string `toml:"url" json:"url" validate:"required,url"`
	// Username is the LuCI RPC username.
	Username string `toml:"username" json:"username" validate:"required"`
	// Password is the LuCI RPC password.
	Password string `toml:"password" json:"password" validate:"required"`
	// TimeoutSeconds is the fixed per-request timeout (default: 10).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" validate:"min=1,max=300"`
}

// TrackerConfig controls the polling loop.
type TrackerConfig struct {
	// PollIntervalSeconds is the delay between device queries (default: 30).
	PollIntervalSeconds int `toml:"poll_interval_seconds" json:"poll_interval_seconds" validate:"min=5"`
	// ConsiderHomeSeconds keeps a device "present" for this long after it was
	// last reported by the router (default: 180).
	ConsiderHomeSeconds int `toml:"consider_home_seconds" json:"consider_home_seconds" validate:"min=0"`
	// DNS configures reverse-DNS naming of discovered devices.
	// Validated separately so error paths read "tracker.dns.*".
	DNS *TrackerDNSConfig `toml:"dns" json:"dns" validate:"-"`
}

// TrackerDNSConfig configures hostname resolution for discovered devices.
type TrackerDNSConfig struct {
	// Enable turns on PTR lookups for device IPs (default: true).
	Enable bool `toml:"enable" json:"enable"`
	// Server is the DNS server as "host:port". Empty means the router host
	// on port 53.
	Server string `toml:"server" json:"server" validate:"hostport_or_empty"`
	// TimeoutSeconds is the per-lookup timeout (default: 3).
	TimeoutSeconds int `toml:"timeout_seconds" json:"timeout_seconds" validate:"min=1,max=60"`
}

// APIConfig configures the REST API server.
type APIConfig struct {
	// Enable turns the REST API on (default: true).
	Enable bool `toml:"enable" json:"enable"`
	// ListenAddr is the bind address (default: "127.0.0.1:8480").
	ListenAddr string `toml:"listen_addr" json:"listen_addr" validate:"hostport_or_empty"`
}

const (
	defaultRouterTimeoutSeconds = 10
	defaultPollIntervalSeconds  = 30
	defaultConsiderHomeSeconds  = 180
	defaultDNSTimeoutSeconds    = 3
	defaultAPIListenAddr        = "127.0.0.1:8480"
	defaultDNSPort              = "53"
)

// applyDefaults fills in missing sections and zero values. It runs before
// validation so that a minimal config with only [router] is valid.
func (c *Config) applyDefaults() {
	if c.Router != nil && c.Router.TimeoutSeconds == 0 {
		c.Router.TimeoutSeconds = defaultRouterTimeoutSeconds
	}

	if c.Tracker == nil {
		c.Tracker = &TrackerConfig{}
	}
	if c.Tracker.PollIntervalSeconds == 0 {
		c.Tracker.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Tracker.ConsiderHomeSeconds == 0 {
		c.Tracker.ConsiderHomeSeconds = defaultConsiderHomeSeconds
	}
	if c.Tracker.DNS == nil {
		c.Tracker.DNS = &TrackerDNSConfig{Enable: true}
	}
	if c.Tracker.DNS.TimeoutSeconds == 0 {
		c.Tracker.DNS.TimeoutSeconds = defaultDNSTimeoutSeconds
	}

	if c.API == nil {
		c.API = &APIConfig{Enable: true}
	}
	if c.API.ListenAddr == "" {
		c.API.ListenAddr = defaultAPIListenAddr
	}
}

// RouterTimeout returns the per-request timeout as a duration.
func (r *RouterConfig) RouterTimeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// PollInterval returns the polling interval as a duration.
func (t *TrackerConfig) PollInterval() time.Duration {
	return time.Duration(t.PollIntervalSeconds) * time.Second
}

// ConsiderHome returns the consider-home window as a duration.
func (t *TrackerConfig) ConsiderHome() time.Duration {
	return time.Duration(t.ConsiderHomeSeconds) * time.Second
}

// DNSTimeout returns the per-lookup timeout as a duration.
func (d *TrackerDNSConfig) DNSTimeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// DNSServerAddr resolves the effective DNS server address: the configured
// one, or the router host on port 53.
func (c *Config) DNSServerAddr() string {
	if c.Tracker != nil && c.Tracker.DNS != nil && c.Tracker.DNS.Server != "" {
		return c.Tracker.DNS.Server
	}
	if c.Router == nil {
		return ""
	}
	u, err := url.Parse(c.Router.URL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return u.Hostname() + ":" + defaultDNSPort
}
