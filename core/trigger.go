// Trigger arbitration.
// Serializes trigger requests from the button-interrupt path and the
// network path: a single-flight slot guarantees at most one pulse
// emission executes at any instant, with concurrent requests rejected
// rather than queued.
package core

import (
	"sync/atomic"
	"time"
)

// TriggerSource tags where a trigger request originated.
type TriggerSource uint8

const (
	SourceButton TriggerSource = iota
	SourceNetwork
)

func (s TriggerSource) String() string {
	if s == SourceButton {
		return "button"
	}
	return "network"
}

// Timing groups the fixed scheduling delays around an emission.
type Timing struct {
	// PreTrigger is slept by the requesting path before Request is
	// called, letting switch bounce settle before parameters are read.
	PreTrigger time.Duration

	// Settle is the wait between buffer load and the dual start.
	Settle time.Duration

	// Cooldown is how long the slot is held after emission completes.
	Cooldown time.Duration
}

// DefaultTiming returns the delays used by the original instrument.
func DefaultTiming() Timing {
	return Timing{
		PreTrigger: time.Second,
		Settle:     500 * time.Millisecond,
		Cooldown:   200 * time.Millisecond,
	}
}

// Arbiter owns the single "current execution" slot. While the slot is
// held, the parameter snapshot, both hardware channels and the engine
// state belong exclusively to that execution.
type Arbiter struct {
	store    *ParameterStore
	builder  Builder
	engine   *Engine
	timing   Timing
	inFlight uint32 // atomic; 1 while the slot is occupied
}

// NewArbiter wires the trigger path together.
func NewArbiter(store *ParameterStore, engine *Engine, builder Builder, timing Timing) *Arbiter {
	return &Arbiter{store: store, builder: builder, engine: engine, timing: timing}
}

// PreTrigger returns the delay requesting paths must sleep before
// calling Request.
func (a *Arbiter) PreTrigger() time.Duration {
	return a.timing.PreTrigger
}

// Request runs one full pulse sequence for the given source. If the
// slot is already occupied it returns ErrBusy immediately, without
// touching hardware or parameters. Otherwise it snapshots the
// parameters, builds both waveforms, fires them and releases the slot
// after the post-trigger cooldown.
func (a *Arbiter) Request(src TriggerSource) error {
	if !atomic.CompareAndSwapUint32(&a.inFlight, 0, 1) {
		return ErrBusy
	}
	defer atomic.StoreUint32(&a.inFlight, 0)

	params := a.store.Get()
	DebugPrintln("trigger from " + src.String() + ": " + params.String())

	pos, neg := a.builder.Build(params)
	if err := a.engine.ArmAndFire(pos, neg); err != nil {
		// Engine is already back to Idle; surface the failure and
		// free the slot so the next trigger can be attempted.
		DebugPrintln("emission failed: " + err.Error())
		return err
	}

	time.Sleep(a.timing.Cooldown)
	a.engine.setState(StateIdle)
	DebugPrintln("complementary double pulse sent")
	return nil
}
