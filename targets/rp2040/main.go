//go:build rp2040 || rp2350

package main

import (
	"machine"
	"time"

	"dptgen/config"
	"dptgen/console"
	"dptgen/core"
	"dptgen/web"
)

func main() {
	core.SetDebugWriter(func(s string) { println(s) })
	core.DebugPrintln("starting DPT system")

	cfg := config.Default()

	// Output capability is mandatory: without the transmit channels the
	// instrument cannot do its job, so a configuration failure here is
	// fatal.
	drv, err := NewPIOTxDriver(machine.Pin(cfg.Pins.Positive), machine.Pin(cfg.Pins.Negative))
	if err != nil {
		panic("pulse output init failed: " + err.Error())
	}
	core.SetTxDriver(drv)

	store := core.NewParameterStore(core.PulseParameters{
		P1High: cfg.Pulse.P1HighUS,
		P1Low:  cfg.Pulse.P1LowUS,
		P2High: cfg.Pulse.P2HighUS,
		P2Low:  cfg.Pulse.P2LowUS,
	})
	engine := core.NewEngine(cfg.Timing.Settle())
	builder := core.NewBuilder(drv.MaxSegmentTicks())
	arb := core.NewArbiter(store, engine, builder, core.Timing{
		PreTrigger: cfg.Timing.PreTrigger(),
		Settle:     cfg.Timing.Settle(),
		Cooldown:   cfg.Timing.Cooldown(),
	})

	btn := NewGPIOButtonDriver(machine.Pin(cfg.Pins.Button))
	core.SetButtonDriver(btn)
	pump := core.NewButtonPump(arb)
	if err := btn.Configure(pump.Interrupt); err != nil {
		panic("button init failed: " + err.Error())
	}
	go pump.Run()

	srv := web.New(store, arb, engine)
	if err := startNetwork(cfg, srv); err != nil {
		core.DebugPrintln("network unavailable: " + err.Error())
	}

	// The console owns the foreground; the web server and button pump
	// run on their own goroutines.
	cons := console.New(serialPort{}, store, arb, engine)
	for {
		if err := cons.Run(); err != nil {
			core.DebugPrintln("console error: " + err.Error())
		}
		time.Sleep(time.Second)
	}
}
