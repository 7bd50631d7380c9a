// Pulse emission engine.
// Owns the two transmit channels through the TxDriver interface, loads
// waveforms into the channel buffers and performs the synchronized dual
// start that bounds inter-channel skew.
package core

import (
	"sync/atomic"
	"time"
)

// EngineState tracks the progress of one pulse emission.
type EngineState uint8

const (
	StateIdle EngineState = iota
	StateLoading
	StateArmed
	StateEmitting
	StateCooldown
)

func (s EngineState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateArmed:
		return "armed"
	case StateEmitting:
		return "emitting"
	case StateCooldown:
		return "cooldown"
	}
	return "unknown"
}

// TxChannel identifies one of the two complementary output channels.
type TxChannel uint8

const (
	ChannelPositive TxChannel = iota
	ChannelNegative
)

// TxDriver is the abstract transmit interface that the engine uses.
// Platform-specific implementations drive the actual output peripheral.
type TxDriver interface {
	// MaxSegmentTicks returns the longest single segment the hardware
	// duration field can encode.
	MaxSegmentTicks() uint32

	// Load pushes a segment sequence into the channel's transmit
	// buffer without starting transmission. Returns ErrChannelActive
	// if the channel is mid-transmission.
	Load(ch TxChannel, segs []Segment) error

	// Stop aborts any transmission on the channel and returns it to
	// its idle level.
	Stop(ch TxChannel)

	// StartBoth commands both channels to begin transmission inside a
	// single uninterruptible critical section, so no preemption can
	// land between the two start commands.
	StartBoth() error

	// WaitDone blocks until the channel signals transmission-complete
	// or the timeout expires, in which case it returns ErrTxTimeout.
	WaitDone(ch TxChannel, timeout time.Duration) error
}

// Global singleton used by the engine.
var txDriver TxDriver

// SetTxDriver is called by target-specific code to register its driver.
func SetTxDriver(d TxDriver) {
	txDriver = d
}

// MustTx returns the configured driver or panics if missing.
func MustTx() TxDriver {
	if txDriver == nil {
		panic("tx driver not configured")
	}
	return txDriver
}

// txTimeoutMargin is added to the programmed playout duration when
// waiting for transmission-complete.
const txTimeoutMargin = 100 * time.Millisecond

// Engine drives one pulse emission at a time. Exclusive ownership of
// the two channels belongs to whichever execution holds the arbiter's
// slot; the engine itself performs no locking.
type Engine struct {
	settle time.Duration // wait between buffer load and dual start
	state  uint32        // atomic EngineState, readable from any context
}

// NewEngine returns an engine with the given buffer-settle delay.
func NewEngine(settle time.Duration) *Engine {
	return &Engine{settle: settle}
}

// State returns the current engine state.
func (e *Engine) State() EngineState {
	return EngineState(atomic.LoadUint32(&e.state))
}

func (e *Engine) setState(s EngineState) {
	atomic.StoreUint32(&e.state, uint32(s))
}

// ArmAndFire stops any previous transmission, loads both channel
// buffers, waits the buffer-settle delay, performs the synchronized
// dual start and blocks until both channels complete. Any failure
// stops both channels and leaves the engine Idle so later triggers can
// still be attempted.
func (e *Engine) ArmAndFire(pos, neg ChannelWaveform) error {
	drv := MustTx()

	e.setState(StateLoading)
	drv.Stop(ChannelPositive)
	drv.Stop(ChannelNegative)

	if err := drv.Load(ChannelPositive, pos.Segments); err != nil {
		e.abort(drv)
		return err
	}
	if err := drv.Load(ChannelNegative, neg.Segments); err != nil {
		e.abort(drv)
		return err
	}

	// Give the hardware buffers time to be confirmed loaded before
	// the start commands are issued.
	time.Sleep(e.settle)
	e.setState(StateArmed)

	if err := drv.StartBoth(); err != nil {
		e.abort(drv)
		return err
	}
	e.setState(StateEmitting)

	// Both channels are programmed with identical durations; the
	// timeout covers the full playout plus margin.
	timeout := pos.Duration() + txTimeoutMargin
	if err := drv.WaitDone(ChannelPositive, timeout); err != nil {
		e.abort(drv)
		return err
	}
	if err := drv.WaitDone(ChannelNegative, timeout); err != nil {
		e.abort(drv)
		return err
	}

	e.setState(StateCooldown)
	return nil
}

func (e *Engine) abort(drv TxDriver) {
	drv.Stop(ChannelPositive)
	drv.Stop(ChannelNegative)
	e.setState(StateIdle)
}
