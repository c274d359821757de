package commands

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxklyga/luci-presence/internal/api"
	"github.com/maxklyga/luci-presence/internal/config"
	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/tracker"
)

const shutdownTimeout = 10 * time.Second

// ServiceCommand runs the presence tracker (and the REST API when enabled)
// until SIGINT/SIGTERM.
type ServiceCommand struct {
	fs  *flag.FlagSet
	ctx *AppContext
	cfg *config.Config
}

func CreateServiceCommand() *ServiceCommand {
	return &ServiceCommand{
		fs: flag.NewFlagSet("service", flag.ExitOnError),
	}
}

func (c *ServiceCommand) Name() string {
	return c.fs.Name()
}

func (c *ServiceCommand) Init(args []string, ctx *AppContext) error {
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

func (c *ServiceCommand) Run() error {
	// Login happens here; bad credentials abort startup.
	client, err := buildClient(c.cfg)
	if err != nil {
		return err
	}
	log.Infof("Logged in to %s", c.cfg.Router.URL)

	t := tracker.New(client, buildResolver(c.cfg), c.cfg.Tracker.PollInterval(), c.cfg.Tracker.ConsiderHome())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var server *api.Server
	if c.cfg.API.Enable {
		server = api.NewServer(t, c.cfg.API.ListenAddr)
		go func() {
			if err := server.Start(); err != nil {
				log.Errorf("API server failed: %v", err)
				stop()
			}
		}()
	}

	err = t.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if serr := server.Stop(shutdownCtx); serr != nil {
			log.Errorf("API server shutdown failed: %v", serr)
		}
	}

	return err
}
