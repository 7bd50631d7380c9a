//go:build rp2040 || rp2350

package main

import (
	"net/http"

	"tinygo.org/x/drivers/netlink"
	"tinygo.org/x/drivers/netlink/probe"

	"dptgen/config"
	"dptgen/core"
	"dptgen/web"
)

// startNetwork brings up the access point and serves the web interface
// on port 80. The network is a collaborator, not a requirement: on
// failure the button and serial console still work, so the caller only
// logs the error.
func startNetwork(cfg *config.Config, srv *web.Server) error {
	link, _ := probe.Probe()

	err := link.NetConnect(&netlink.ConnectParams{
		ConnectMode: netlink.ConnectModeAP,
		Ssid:        cfg.Wifi.SSID,
		Passphrase:  cfg.Wifi.Passphrase,
	})
	if err != nil {
		return err
	}
	core.DebugPrintln("access point up, ssid " + cfg.Wifi.SSID)

	go func() {
		if err := http.ListenAndServe(":80", srv.Handler()); err != nil {
			core.DebugPrintln("web server stopped: " + err.Error())
		}
	}()
	return nil
}
