// Waveform construction.
// Converts microsecond pulse parameters into per-channel segment lists
// in hardware ticks, including decomposition of segments that exceed
// the hardware duration field.
package core

import "time"

// DefaultTicksPerMicro is the tick rate of the transmit clock:
// 80 ticks per microsecond, i.e. a 12.5 ns tick.
const DefaultTicksPerMicro = 80

// Segment is one (level, duration) step of a channel waveform.
type Segment struct {
	High  bool
	Ticks uint32
}

// ChannelWaveform is the full double-pulse shape for one output channel:
// an ordered segment list terminating at the channel's idle level.
type ChannelWaveform struct {
	Segments      []Segment
	IdleHigh      bool
	TicksPerMicro uint32
}

// TotalTicks returns the summed duration of all segments.
func (w ChannelWaveform) TotalTicks() uint64 {
	var total uint64
	for _, s := range w.Segments {
		total += uint64(s.Ticks)
	}
	return total
}

// Duration returns the playout time of the waveform.
func (w ChannelWaveform) Duration() time.Duration {
	tpm := w.TicksPerMicro
	if tpm == 0 {
		tpm = DefaultTicksPerMicro
	}
	return time.Duration(w.TotalTicks()) * time.Microsecond / time.Duration(tpm)
}

// Builder converts pulse parameters into channel waveforms. It is pure
// and deterministic; the zero value is not usable, use NewBuilder.
type Builder struct {
	// TicksPerMicro is the tick rate of the transmit clock.
	TicksPerMicro uint32

	// MaxSegmentTicks is the longest single segment the hardware
	// duration field can encode. Longer segments are chained.
	MaxSegmentTicks uint32
}

// NewBuilder returns a builder for the given duration-field limit at
// the default 80 MHz tick rate.
func NewBuilder(maxSegmentTicks uint32) Builder {
	return Builder{TicksPerMicro: DefaultTicksPerMicro, MaxSegmentTicks: maxSegmentTicks}
}

// Build maps parameters to the positive and negative channel waveforms.
// Segment durations are identical between the two channels; every level
// is inverted. The positive channel idles low, the negative idles high.
func (b Builder) Build(p PulseParameters) (pos, neg ChannelWaveform) {
	durations := [4]uint32{p.P1High, p.P1Low, p.P2High, p.P2Low}

	pos = ChannelWaveform{IdleHigh: false, TicksPerMicro: b.TicksPerMicro}
	neg = ChannelWaveform{IdleHigh: true, TicksPerMicro: b.TicksPerMicro}

	for i, us := range durations {
		high := i%2 == 0 // high(p1) low(gap1) high(p2) low(gap2)
		ticks := us * b.TicksPerMicro
		pos.Segments = b.appendChained(pos.Segments, high, ticks)
		neg.Segments = b.appendChained(neg.Segments, !high, ticks)
	}
	return pos, neg
}

// appendChained appends one logical segment, decomposed into a chain of
// same-level physical segments when its tick count exceeds the duration
// field. The chain sums exactly to the requested ticks and the final
// piece carries the terminating level transition. Zero-length segments
// are dropped.
func (b Builder) appendChained(segs []Segment, high bool, ticks uint32) []Segment {
	for ticks > b.MaxSegmentTicks {
		segs = append(segs, Segment{High: high, Ticks: b.MaxSegmentTicks})
		ticks -= b.MaxSegmentTicks
	}
	if ticks > 0 {
		segs = append(segs, Segment{High: high, Ticks: ticks})
	}
	return segs
}
