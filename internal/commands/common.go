// Package commands implements the luci-presence CLI subcommands.
package commands

import (
	"github.com/maxklyga/luci-presence/internal/config"
	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/luci"
	"github.com/maxklyga/luci-presence/internal/resolver"
)

// AppContext carries the global CLI options into each command.
type AppContext struct {
	ConfigPath string
	Verbose    bool
}

// Runner is the interface each subcommand implements.
type Runner interface {
	Name() string
	Init(args []string, ctx *AppContext) error
	Run() error
}

// loadConfigOrFail loads and validates the configuration.
func loadConfigOrFail(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		log.Errorf("Configuration is invalid:\n%v", err)
		return nil, err
	}

	return cfg, nil
}

// buildClient constructs the LuCI client, performing the initial login.
func buildClient(cfg *config.Config) (*luci.Client, error) {
	return luci.NewClient(luci.Config{
		BaseURL:  cfg.Router.URL,
		Username: cfg.Router.Username,
		Password: cfg.Router.Password,
		Timeout:  cfg.Router.RouterTimeout(),
	})
}

// buildResolver constructs the reverse-DNS resolver, or returns nil when
// naming is disabled or no DNS server can be derived.
func buildResolver(cfg *config.Config) *resolver.Resolver {
	dnsCfg := cfg.Tracker.DNS
	if dnsCfg == nil || !dnsCfg.Enable {
		return nil
	}

	server := cfg.DNSServerAddr()
	if server == "" {
		log.Warnf("Device naming enabled but no DNS server could be determined")
		return nil
	}

	log.Debugf("Resolving device names via %s", server)
	return resolver.New(server, dnsCfg.DNSTimeout())
}
