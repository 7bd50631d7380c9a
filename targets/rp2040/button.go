//go:build rp2040 || rp2350

package main

import (
	"machine"
	"sync/atomic"
)

// GPIOButtonDriver implements core.ButtonDriver on a pulled-up input
// pin with a falling-edge interrupt. machine has no cheap per-pin mask
// toggle, so arming is a flag checked in the handler; the handler
// itself stays registered for the life of the process.
type GPIOButtonDriver struct {
	pin   machine.Pin
	armed uint32
}

// NewGPIOButtonDriver binds the driver to the trigger input pin.
func NewGPIOButtonDriver(pin machine.Pin) *GPIOButtonDriver {
	return &GPIOButtonDriver{pin: pin}
}

// Configure sets up the pin and registers the interrupt handler.
func (d *GPIOButtonDriver) Configure(isr func()) error {
	d.pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	atomic.StoreUint32(&d.armed, 1)
	return d.pin.SetInterrupt(machine.PinFalling, func(machine.Pin) {
		if atomic.LoadUint32(&d.armed) == 1 {
			isr()
		}
	})
}

// Disarm suppresses further edges until Rearm. Runs in interrupt
// context via the pump, so it must stay a single store.
func (d *GPIOButtonDriver) Disarm() {
	atomic.StoreUint32(&d.armed, 0)
}

// Rearm re-enables the trigger after the post-emission cooldown.
func (d *GPIOButtonDriver) Rearm() {
	atomic.StoreUint32(&d.armed, 1)
}
