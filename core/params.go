// Pulse timing parameter storage.
// Holds the four double-pulse timing values and guards them against
// concurrent access from the web handlers, the serial console and the
// trigger path.
package core

import "sync"

// Parameter limits in microseconds. The upper bound is the documented
// maximum of the original instrument; the lower bound guarantees that a
// converted segment meets the hardware minimum high/low times.
const (
	MinPulseMicros = 1
	MaxPulseMicros = 65535
)

// PulseParameters holds the double-pulse timing values in microseconds.
type PulseParameters struct {
	P1High uint32 // first pulse high time
	P1Low  uint32 // gap between the pulses
	P2High uint32 // second pulse high time
	P2Low  uint32 // tail low time after the second pulse
}

func (p PulseParameters) String() string {
	return "p1h=" + utoa(p.P1High) + " p1l=" + utoa(p.P1Low) +
		" p2h=" + utoa(p.P2High) + " p2l=" + utoa(p.P2Low)
}

// DefaultParameters returns the compiled-in power-on values. Parameters
// are never persisted; every boot starts from these.
func DefaultParameters() PulseParameters {
	return PulseParameters{P1High: 5, P1Low: 1, P2High: 3, P2Low: 10000}
}

// Update is a partial parameter update. Nil fields leave the stored
// value unchanged.
type Update struct {
	P1High *uint32
	P1Low  *uint32
	P2High *uint32
	P2Low  *uint32
}

// ParameterStore is the guarded holder of the current pulse parameters.
// Readers always observe a consistent snapshot; the trigger path copies
// that snapshot before building waveforms, so a mid-pulse update never
// corrupts an already-armed waveform.
type ParameterStore struct {
	mu sync.Mutex
	p  PulseParameters
}

// NewParameterStore creates a store seeded with the given values.
func NewParameterStore(initial PulseParameters) *ParameterStore {
	return &ParameterStore{p: initial}
}

// Get returns a snapshot of the current parameters.
func (s *ParameterStore) Get() PulseParameters {
	s.mu.Lock()
	p := s.p
	s.mu.Unlock()
	return p
}

// Set applies a partial update. All supplied fields are validated
// before any of them is written, so a rejected update leaves every
// prior value intact.
func (s *ParameterStore) Set(u Update) error {
	for _, f := range []*uint32{u.P1High, u.P1Low, u.P2High, u.P2Low} {
		if f != nil && (*f < MinPulseMicros || *f > MaxPulseMicros) {
			return ErrParamRange
		}
	}

	s.mu.Lock()
	if u.P1High != nil {
		s.p.P1High = *u.P1High
	}
	if u.P1Low != nil {
		s.p.P1Low = *u.P1Low
	}
	if u.P2High != nil {
		s.p.P2High = *u.P2High
	}
	if u.P2Low != nil {
		s.p.P2Low = *u.P2Low
	}
	s.mu.Unlock()
	return nil
}
