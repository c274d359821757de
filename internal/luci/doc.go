// Package luci provides a client for the OpenWrt LuCI JSON-RPC interface.
//
// The client authenticates against the router's rpc/auth endpoint, caches the
// issued session token, and enumerates devices on the local network through
// one of two mutually-exclusive listing methods:
//
//   - Modern firmware (18.06+): the "neighbors" method on rpc/ip
//   - Older firmware (pre-18.06): the "net.arptable" method on rpc/sys
//
// The client starts with the neighbors table and automatically falls back to
// the ARP table (and vice versa) when the router reports the selected method
// as unsupported. A rejected token triggers a transparent re-login. Both
// recoveries signal "no update this cycle" to the caller, which is expected
// to retry on its next polling interval.
//
// # Example Usage
//
//	client, err := luci.NewClient(luci.Config{
//	    BaseURL:  "http://192.168.1.1",
//	    Username: "root",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatalf("login failed: %v", err)
//	}
//
//	devices, ok, err := client.ConnectedDevices()
//
// The HTTPClient interface enables dependency injection for tests.
package luci
