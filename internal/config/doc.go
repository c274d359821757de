// Package config handles the luci-presence TOML configuration file.
//
// A minimal configuration needs only the router section:
//
//	[router]
//	url = "http://192.168.1.1"
//	username = "root"
//	password = "secret"
//
// Everything else has working defaults:
//
//	[router]
//	timeout_seconds = 10
//
//	[tracker]
//	poll_interval_seconds = 30
//	consider_home_seconds = 180
//
//	[tracker.dns]
//	enable = true
//	server = ""              # host:port; empty = router host, port 53
//	timeout_seconds = 3
//
//	[api]
//	enable = true
//	listen_addr = "127.0.0.1:8480"
//
// LoadConfig parses and defaults the file; Validate reports all problems at
// once with field paths matching the TOML structure.
package config
