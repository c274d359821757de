package commands

import (
	"flag"
	"fmt"

	"github.com/maxklyga/luci-presence/internal/config"
	"github.com/maxklyga/luci-presence/internal/log"
)

// CheckCommand verifies the configuration end to end: config file, login,
// and one device query. Exits non-zero on the first failure.
type CheckCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func CreateCheckCommand() *CheckCommand {
	return &CheckCommand{
		fs: flag.NewFlagSet("check", flag.ExitOnError),
	}
}

func (c *CheckCommand) Name() string {
	return c.fs.Name()
}

func (c *CheckCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	return nil
}

func (c *CheckCommand) Run() error {
	fmt.Printf("Config: OK (%s)\n", c.ctx.ConfigPath)

	client, err := buildClient(c.cfg)
	if err != nil {
		return fmt.Errorf("login to %s failed: %w", c.cfg.Router.URL, err)
	}
	fmt.Printf("Login: OK (%s)\n", c.cfg.Router.URL)

	devices, err := queryOnce(client)
	if err != nil {
		return fmt.Errorf("device query failed: %w", err)
	}

	log.Debugf("Discovery settled on %s", client.Mode())
	fmt.Printf("Discovery: OK (%s, %d device(s) present)\n", client.Mode(), len(devices))

	return nil
}
