//go:build rp2040 || rp2350

package main

import (
	"machine"
	"runtime"
	"runtime/interrupt"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"dptgen/core"
)

// Pulse playback program. Two state machines run it, one per channel.
// Each FIFO word carries two 16-bit halves; a half encodes one
// waveform segment as duration[15:1] | level[0].
//
//	.wrap_target
//	out pins, 1     ; drive the level bit
//	out x, 15       ; load the remaining hold time
//	loop:
//	jmp x--, loop   ; one tick per iteration
//	.wrap
var pulseInstructions = []uint16{
	0x6001, // 0: out pins, 1
	0x602f, // 1: out x, 15
	0x0042, // 2: jmp x--, 2
}

const (
	pulseOrigin     = -1
	pulseWrapTarget = 0
	pulseWrap       = 2
)

func pulseProgramDefaultConfig(offset uint8) pio.StateMachineConfig {
	cfg := pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+pulseWrapTarget, offset+pulseWrap)
	return cfg
}

const (
	// maxSegmentTicks is the 15-bit duration field of a segment half.
	// Longer segments arrive from the builder already chained.
	maxSegmentTicks = (1 << 15) - 1

	// segmentOverhead is the fixed instruction cost of a half: the two
	// out instructions plus the final jmp. A half plays for x+3 cycles,
	// so Load deducts it from the requested ticks.
	segmentOverhead = 3
)

// Clock divider taking the 125 MHz system clock to the 80 MHz tick
// clock (12.5 ns per tick): 125/80 = 1 + 144/256 exactly.
const (
	clkDivWhole = 1
	clkDivFrac  = 144
)

type pulseChannel struct {
	sm       pio.StateMachine
	pin      machine.Pin
	idleHigh bool
	pending  []uint32      // FIFO words not yet pushed
	playout  time.Duration // programmed duration of the loaded waveform
	active   bool
}

// PIOTxDriver implements core.TxDriver on two PIO state machines
// sharing one program. Both machines sit disabled while their FIFOs
// are preloaded; the dual start is two enables issued back-to-back
// with interrupts masked.
type PIOTxDriver struct {
	chans   [2]pulseChannel
	offset  uint8
	started time.Time
}

// NewPIOTxDriver claims two state machines on PIO0 and binds them to
// the output pins. The positive channel idles low, the negative idles
// high.
func NewPIOTxDriver(positive, negative machine.Pin) (*PIOTxDriver, error) {
	Pio := pio.PIO0

	offset, err := Pio.AddProgram(pulseInstructions, pulseOrigin)
	if err != nil {
		return nil, err
	}

	d := &PIOTxDriver{offset: offset}
	pins := [2]machine.Pin{positive, negative}
	idle := [2]bool{false, true}

	for i := range d.chans {
		sm := Pio.StateMachine(uint8(i))
		sm.TryClaim()

		pin := pins[i]
		pin.Configure(machine.PinConfig{Mode: Pio.PinMode()})
		sm.SetPindirsConsecutive(pin, 1, true)

		cfg := pulseProgramDefaultConfig(offset)
		cfg.SetOutPins(pin, 1)
		cfg.SetSetPins(pin, 1)
		cfg.SetOutShift(true, true, 32) // LSB first, autopull per word
		sm.Init(offset, cfg)
		sm.SetClkDiv(clkDivWhole, clkDivFrac)
		sm.SetEnabled(false)

		d.chans[i] = pulseChannel{sm: sm, pin: pin, idleHigh: idle[i]}
		d.driveIdle(&d.chans[i])
	}

	return d, nil
}

// driveIdle forces the channel's idle level while its machine is
// stopped.
func (d *PIOTxDriver) driveIdle(c *pulseChannel) {
	level := uint16(0)
	if c.idleHigh {
		level = 1
	}
	c.sm.Exec(pio.EncodeSet(pio.SrcDestPins, level))
}

// MaxSegmentTicks returns the duration-field limit the waveform
// builder must chain against.
func (d *PIOTxDriver) MaxSegmentTicks() uint32 {
	return maxSegmentTicks
}

// Load packs the segment list into FIFO words and preloads as many as
// fit. The rest are fed after the dual start; the FIFO slack covers
// the feed latency since every chained tail segment is hundreds of
// microseconds long.
func (d *PIOTxDriver) Load(ch core.TxChannel, segs []core.Segment) error {
	c := &d.chans[ch]
	if c.active {
		return core.ErrChannelActive
	}

	halves := make([]uint16, 0, len(segs)+1)
	var totalTicks uint64
	for _, s := range segs {
		if s.Ticks > maxSegmentTicks {
			return core.Error("segment exceeds duration field")
		}
		ticks := s.Ticks
		if ticks < segmentOverhead {
			// Program overhead sets the floor for a single half.
			ticks = segmentOverhead
		}
		half := uint16(ticks-segmentOverhead) << 1
		if s.High {
			half |= 1
		}
		halves = append(halves, half)
		totalTicks += uint64(ticks)
	}

	// Pad odd counts with a minimal idle-level half so the last real
	// segment is not stranded in a half-filled OSR.
	if len(halves)%2 != 0 {
		pad := uint16(0)
		if c.idleHigh {
			pad = 1
		}
		halves = append(halves, pad)
		totalTicks += segmentOverhead
	}

	words := make([]uint32, 0, len(halves)/2)
	for i := 0; i < len(halves); i += 2 {
		words = append(words, uint32(halves[i])|uint32(halves[i+1])<<16)
	}

	c.pending = words
	c.playout = time.Duration(totalTicks) * time.Microsecond / core.DefaultTicksPerMicro
	d.fill(c)
	return nil
}

// fill pushes pending words until the FIFO is full or the buffer is
// drained.
func (d *PIOTxDriver) fill(c *pulseChannel) {
	for len(c.pending) > 0 && !c.sm.IsTxFIFOFull() {
		c.sm.TxPut(c.pending[0])
		c.pending = c.pending[1:]
	}
}

// StartBoth enables both state machines inside one interrupt-masked
// section so nothing can land between the two start commands, then
// feeds any words beyond the preloaded FIFO depth.
func (d *PIOTxDriver) StartBoth() error {
	mask := interrupt.Disable()
	d.chans[0].sm.SetEnabled(true)
	d.chans[1].sm.SetEnabled(true)
	interrupt.Restore(mask)

	d.started = time.Now()
	d.chans[0].active = true
	d.chans[1].active = true

	for len(d.chans[0].pending) > 0 || len(d.chans[1].pending) > 0 {
		d.fill(&d.chans[0])
		d.fill(&d.chans[1])
		runtime.Gosched()
	}
	return nil
}

// WaitDone blocks until the channel's FIFO drains and the programmed
// playout time has elapsed. Expiry of the timeout means the hardware
// wedged; the engine stops both channels on that path.
func (d *PIOTxDriver) WaitDone(ch core.TxChannel, timeout time.Duration) error {
	c := &d.chans[ch]
	if !c.active {
		return nil
	}

	deadline := d.started.Add(timeout)
	for !c.sm.IsTxFIFOEmpty() {
		if time.Now().After(deadline) {
			return core.ErrTxTimeout
		}
		runtime.Gosched()
	}

	// The FIFO drains before the last halves finish playing; sleep out
	// the remainder of the programmed duration.
	if rem := time.Until(d.started.Add(c.playout)); rem > 0 {
		time.Sleep(rem)
	}

	c.active = false
	return nil
}

// Stop aborts any transmission, resets the machine to the program
// start and returns the pin to its idle level.
func (d *PIOTxDriver) Stop(ch core.TxChannel) {
	c := &d.chans[ch]
	sm := c.sm

	// See StateMachine.Init for reference on this reset sequence.
	sm.SetEnabled(false)
	sm.ClearFIFOs()
	sm.Restart()
	sm.ClkDivRestart()
	sm.Exec(pio.EncodeJmp(d.offset, pio.JmpAlways))

	c.pending = nil
	c.active = false
	d.driveIdle(c)
}
