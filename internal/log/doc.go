// Package log provides simple leveled logging for luci-presence.
//
// It implements a lightweight logging system with colored console output and
// four levels: DEBUG (verbose mode only), INFO, WARN, and ERROR. Errors always
// go to stderr; SetForceStdErr routes everything there so that the one-shot
// CLI commands can keep stdout machine-readable.
//
//	log.Infof("Checking for connected devices")
//	log.Warnf("Configuration file not found at %s", path)
//	log.SetVerbose(true)
//	log.Debugf("raw row: %s", row)
package log
