package luci

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/maxklyga/luci-presence/internal/errors"
	"github.com/maxklyga/luci-presence/internal/log"
)

const defaultTimeout = 10 * time.Second

// DiscoveryMode selects which RPC method the client uses to list devices.
type DiscoveryMode uint8

const (
	// UseNeighborsTable queries the "neighbors" method (firmware 18.06+).
	UseNeighborsTable DiscoveryMode = iota
	// UseArpTable queries the legacy "net.arptable" method (pre-18.06).
	UseArpTable
)

// String returns a human-readable mode name.
func (m DiscoveryMode) String() string {
	if m == UseArpTable {
		return "arp-table"
	}
	return "neighbors-table"
}

func (m DiscoveryMode) other() DiscoveryMode {
	if m == UseNeighborsTable {
		return UseArpTable
	}
	return UseNeighborsTable
}

// HTTPClient interface for dependency injection in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines runtime configuration for the LuCI client.
type Config struct {
	// BaseURL is the router base URL, e.g. "http://192.168.1.1".
	BaseURL string
	// Username and Password are the LuCI RPC credentials.
	Username string
	Password string
	// Timeout is the fixed per-request timeout. Zero means the default (10s).
	Timeout time.Duration
	// HTTPClient overrides the HTTP transport (used in tests). If nil, a
	// default client honoring Timeout is used.
	HTTPClient HTTPClient
}

// Client talks to a single router over the LuCI JSON-RPC interface.
//
// The client holds the session token and the currently selected discovery
// mode. Both are guarded by a mutex, so the client is safe for concurrent
// use; calls are serialized.
type Client struct {
	httpClient HTTPClient
	baseURL    string
	username   string
	password   string

	mu    sync.Mutex
	token string
	mode  DiscoveryMode
}

// NewClient creates a client and immediately performs a login against the
// router. A failed login returns an authentication error and no client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.NewConfigError("router base URL is required", nil)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		mode:       UseNeighborsTable,
	}

	if err := c.RefreshToken(); err != nil {
		return nil, err
	}
	return c, nil
}

// RefreshToken performs a fresh login and replaces the stored session token.
func (c *Client) RefreshToken() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshTokenLocked()
}

func (c *Client) refreshTokenLocked() error {
	token, err := c.getToken()
	if err != nil {
		return err
	}
	c.token = token
	return nil
}

// getToken issues the RPC login call and returns the token string.
func (c *Client) getToken() (string, error) {
	result, err := c.callRPC(authEndpoint, "login", []any{c.username, c.password}, "")
	if err != nil {
		return "", err
	}

	var token string
	if uerr := unmarshalResult(result, &token); uerr != nil {
		return "", errors.NewRPCError("login result is not a token string", uerr)
	}

	log.Debugf("LuCI RPC login was successful")
	return token, nil
}

// Mode returns the currently selected discovery mode.
func (c *Client) Mode() DiscoveryMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}
