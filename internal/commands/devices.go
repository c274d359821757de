package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/valyala/fasttemplate"

	"github.com/maxklyga/luci-presence/internal/config"
	"github.com/maxklyga/luci-presence/internal/errors"
	"github.com/maxklyga/luci-presence/internal/log"
	"github.com/maxklyga/luci-presence/internal/luci"
)

// DevicesCommand performs a one-shot device discovery and prints the result.
type DevicesCommand struct {
	fs      *flag.FlagSet
	ctx     *AppContext
	cfg     *config.Config
	format  string
	resolve bool
}

func CreateDevicesCommand() *DevicesCommand {
	c := &DevicesCommand{
		fs: flag.NewFlagSet("devices", flag.ExitOnError),
	}
	c.fs.StringVar(&c.format, "format", "",
		"Per-device output template, e.g. \"{{mac}} {{ip}} {{hostname}}\"")
	c.fs.BoolVar(&c.resolve, "resolve", false, "Resolve device hostnames via reverse DNS")
	return c
}

func (c *DevicesCommand) Name() string {
	return c.fs.Name()
}

func (c *DevicesCommand) Init(args []string, ctx *AppContext) error {
	c.ctx = ctx

	if err := c.fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfigOrFail(ctx.ConfigPath)
	if err != nil {
		return err
	}
	c.cfg = cfg

	// Keep stdout machine-readable.
	log.SetForceStdErr(true)

	return nil
}

func (c *DevicesCommand) Run() error {
	client, err := buildClient(c.cfg)
	if err != nil {
		return err
	}

	devices, err := queryOnce(client)
	if err != nil {
		return err
	}

	hostnames := c.resolveNames(devices)

	if c.format != "" {
		t := fasttemplate.New(c.format, "{{", "}}")
		for _, d := range devices {
			fmt.Println(renderDevice(t, d, hostnames[d.MAC]))
		}
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "MAC\tIP\tHOSTNAME")
	for _, d := range devices {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.MAC, d.IP, hostnames[d.MAC])
	}
	return w.Flush()
}

// renderDevice substitutes one device into the -format template.
func renderDevice(t *fasttemplate.Template, d luci.Device, hostname string) string {
	return t.ExecuteString(map[string]interface{}{
		"mac":      d.MAC,
		"ip":       d.IP,
		"hostname": hostname,
	})
}

// queryOnce runs the discovery, allowing one immediate retry: the first
// attempt may come back with "retry next cycle" after a method fallback or a
// token refresh, and a one-shot command has no next cycle to wait for.
func queryOnce(client *luci.Client) ([]luci.Device, error) {
	for attempt := 0; attempt < 2; attempt++ {
		devices, ok, err := client.ConnectedDevices()
		if err != nil {
			return nil, err
		}
		if ok {
			return devices, nil
		}
	}
	return nil, errors.NewRPCError("device query did not settle after retry", nil)
}

func (c *DevicesCommand) resolveNames(devices []luci.Device) map[string]string {
	hostnames := make(map[string]string, len(devices))
	if !c.resolve {
		return hostnames
	}

	res := buildResolver(c.cfg)
	if res == nil {
		return hostnames
	}

	ctx := context.Background()
	for _, d := range devices {
		if d.IP != "" {
			hostnames[d.MAC] = res.Lookup(ctx, d.IP)
		}
	}
	return hostnames
}
