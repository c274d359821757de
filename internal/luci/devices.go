package luci

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/maxklyga/luci-presence/internal/errors"
	"github.com/maxklyga/luci-presence/internal/log"
)

// nudReachable is the Linux neighbor-table state bit indicating the entry is
// currently reachable (NUD_REACHABLE).
const nudReachable = 0x2

// Device is one entry of the connected-device set, in the order the router
// reported it.
type Device struct {
	MAC string `json:"mac"`
	// IP is the device address when the listing method reports one
	// (neighbor rows: "dest", ARP rows: "IP address").
	IP string `json:"ip,omitempty"`
}

// rowKind classifies a raw result row before any filtering logic runs.
type rowKind uint8

const (
	rowUnrecognized rowKind = iota
	rowLegacyFlags          // pre-18.06 net.arptable shape
	rowNeighbor             // 18.06+ neighbors shape
)

// arpRow is the legacy net.arptable row shape.
type arpRow struct {
	Flags     string `json:"Flags"`
	HWAddress string `json:"HW address"`
	IPAddress string `json:"IP address"`
}

// neighborRow is the modern neighbors row shape.
type neighborRow struct {
	MAC       string `json:"mac"`
	Dest      string `json:"dest"`
	Reachable bool   `json:"reachable"`
}

// ConnectedDevices queries the router for the devices currently present on
// the network.
//
// The second return value reports whether the device set was updated this
// cycle. It is false, with a nil error, for the two self-recovering failure
// modes: an unsupported RPC method (the client switches to the other listing
// method) and a rejected session token (the client re-logs in). The caller is
// expected to simply try again on its next polling interval.
//
// Authentication failures and malformed responses are returned as errors.
func (c *Client) ConnectedDevices() ([]Device, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log.Debugf("Checking for connected devices (%s)", c.mode)

	endpoint, method, params := c.discoveryCall()
	result, err := c.callRPC(endpoint, method, params, c.token)
	if err != nil {
		switch {
		case errors.IsMethodNotFound(err):
			// Normal on firmware that does not have this method; the
			// opposite method will be used from the next cycle on.
			log.Warnf("Method %q not found, will try %s instead", method, c.mode.other())
			c.mode = c.mode.other()
			return nil, false, nil
		case errors.IsInvalidToken(err):
			log.Infof("Session token rejected, refreshing")
			if rerr := c.refreshTokenLocked(); rerr != nil {
				return nil, false, rerr
			}
			return nil, false, nil
		default:
			return nil, false, err
		}
	}

	var rows []json.RawMessage
	if uerr := json.Unmarshal(result, &rows); uerr != nil {
		return nil, false, errors.NewRPCError("device list is not an array", uerr)
	}

	devices := make([]Device, 0, len(rows))
	for _, raw := range rows {
		if d, ok := decodeRow(raw); ok {
			devices = append(devices, d)
		}
	}

	return devices, true, nil
}

// discoveryCall returns the endpoint, method and params matching the current
// discovery mode. The mode and the endpoint used are always consistent.
func (c *Client) discoveryCall() (endpoint, method string, params []any) {
	if c.mode == UseArpTable {
		return sysEndpoint, "net.arptable", nil
	}
	return ipEndpoint, "neighbors", []any{map[string]int{"family": 4}}
}

// decodeRow classifies a raw result row and applies the per-shape presence
// filter. Unrecognized shapes and unparsable rows are skipped silently.
func decodeRow(raw json.RawMessage) (Device, bool) {
	switch classifyRow(raw) {
	case rowLegacyFlags:
		var row arpRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return Device{}, false
		}
		// NUD_REACHABLE set means the neighbor entry is live.
		flags, err := parseHexFlags(row.Flags)
		if err != nil || flags&nudReachable == 0 {
			return Device{}, false
		}
		return Device{MAC: row.HWAddress, IP: row.IPAddress}, true

	case rowNeighbor:
		var row neighborRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return Device{}, false
		}
		// The reachable/stale flags flap even while a device stays on the
		// network, so this filter is noisier than the legacy one.
		if !row.Reachable {
			return Device{}, false
		}
		return Device{MAC: row.MAC, IP: row.Dest}, true

	default:
		return Device{}, false
	}
}

// classifyRow turns the duck-typed row shapes of the two listing methods into
// an explicit variant before any business logic touches the fields.
func classifyRow(raw json.RawMessage) rowKind {
	if gjson.GetBytes(raw, "Flags").Exists() {
		return rowLegacyFlags
	}
	if gjson.GetBytes(raw, "reachable").Exists() && gjson.GetBytes(raw, "mac").Exists() {
		return rowNeighbor
	}
	return rowUnrecognized
}

// parseHexFlags parses the arptable Flags column ("0x2" or bare "2").
func parseHexFlags(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	return strconv.ParseUint(s, 16, 64)
}
