// ISR-to-task hand-off for the hardware trigger button.
// The interrupt context does minimal, non-blocking work: disarm its own
// source and drop an event into a depth-1 channel. A dedicated pump
// goroutine is the sole receiver and drives the debounced trigger.
package core

import "time"

// ButtonDriver is the abstract trigger-button interface. The platform
// implementation configures the input pin for falling-edge interrupts
// with an internal pull-up.
type ButtonDriver interface {
	// Configure sets up the pin and registers the interrupt handler.
	// The handler runs in interrupt context and must not block.
	Configure(isr func()) error

	// Disarm suppresses further button interrupts. Called on the
	// triggering edge so contact bounce cannot re-enter.
	Disarm()

	// Rearm re-enables button interrupts after the cooldown following
	// an emission completes.
	Rearm()
}

// Global singleton used by the button pump.
var buttonDriver ButtonDriver

// SetButtonDriver is called by target-specific code to register its driver.
func SetButtonDriver(d ButtonDriver) {
	buttonDriver = d
}

// MustButton returns the configured driver or panics if missing.
func MustButton() ButtonDriver {
	if buttonDriver == nil {
		panic("button driver not configured")
	}
	return buttonDriver
}

// ButtonPump owns the single-slot event channel between interrupt
// context and task context. Queue depth of one is sufficient: events
// are idempotent and a second edge while one is pending is bounce.
type ButtonPump struct {
	events chan struct{}
	arb    *Arbiter
}

// NewButtonPump returns a pump feeding the given arbiter.
func NewButtonPump(arb *Arbiter) *ButtonPump {
	return &ButtonPump{
		events: make(chan struct{}, 1),
		arb:    arb,
	}
}

// Interrupt is the interrupt-context producer: disarm the source and
// hand off an event. Never blocks; an already-pending event means the
// edge is bounce and is dropped.
func (p *ButtonPump) Interrupt() {
	MustButton().Disarm()
	select {
	case p.events <- struct{}{}:
	default:
	}
}

// Run consumes button events until the channel is closed. For each
// event it waits the pre-trigger delay so switch bounce settles before
// parameters are read, runs the trigger, and only rearms the interrupt
// once the cooldown after emission has completed. At most one emission
// happens per physical press regardless of bounce duration.
func (p *ButtonPump) Run() {
	drv := MustButton()
	for range p.events {
		DebugPrintln("button pressed, triggering")
		time.Sleep(p.arb.PreTrigger())
		if err := p.arb.Request(SourceButton); err != nil {
			DebugPrintln("button trigger rejected: " + err.Error())
		}
		drv.Rearm()
	}
}
