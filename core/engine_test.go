package core

import (
	"sync"
	"testing"
	"time"
)

// mockTxDriver is a test implementation of TxDriver that records every
// hardware call in order.
type mockTxDriver struct {
	mu    sync.Mutex
	ops   []string
	loads map[TxChannel][]Segment

	loadErr  error
	startErr error
	waitErr  error

	onStart func()
	onWait  func()

	// waitGate, when non-nil, blocks WaitDone until closed. This lets
	// tests hold an emission in the Emitting state.
	waitGate chan struct{}
}

func newMockTxDriver() *mockTxDriver {
	return &mockTxDriver{loads: make(map[TxChannel][]Segment)}
}

func (m *mockTxDriver) record(op string) {
	m.mu.Lock()
	m.ops = append(m.ops, op)
	m.mu.Unlock()
}

func (m *mockTxDriver) MaxSegmentTicks() uint32 { return 32767 }

func (m *mockTxDriver) Load(ch TxChannel, segs []Segment) error {
	if ch == ChannelPositive {
		m.record("load_p")
	} else {
		m.record("load_n")
	}
	if m.loadErr != nil {
		return m.loadErr
	}
	m.mu.Lock()
	m.loads[ch] = append([]Segment(nil), segs...)
	m.mu.Unlock()
	return nil
}

func (m *mockTxDriver) Stop(ch TxChannel) {
	if ch == ChannelPositive {
		m.record("stop_p")
	} else {
		m.record("stop_n")
	}
}

func (m *mockTxDriver) StartBoth() error {
	m.record("start")
	if m.onStart != nil {
		m.onStart()
	}
	return m.startErr
}

func (m *mockTxDriver) WaitDone(ch TxChannel, timeout time.Duration) error {
	if ch == ChannelPositive {
		m.record("wait_p")
	} else {
		m.record("wait_n")
	}
	if m.onWait != nil {
		m.onWait()
	}
	if m.waitGate != nil {
		<-m.waitGate
	}
	return m.waitErr
}

func (m *mockTxDriver) opList() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

func (m *mockTxDriver) countOp(op string) int {
	n := 0
	for _, o := range m.opList() {
		if o == op {
			n++
		}
	}
	return n
}

// waitUntil polls cond until it holds or the deadline expires.
func waitUntil(t *testing.T, cond func() bool, what string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(100 * time.Microsecond)
	}
}

func testWaveforms() (ChannelWaveform, ChannelWaveform) {
	b := NewBuilder(32767)
	return b.Build(PulseParameters{P1High: 5, P1Low: 1, P2High: 3, P2Low: 10})
}

func TestArmAndFireSequence(t *testing.T) {
	mock := newMockTxDriver()
	SetTxDriver(mock)

	e := NewEngine(time.Millisecond)
	pos, neg := testWaveforms()

	if err := e.ArmAndFire(pos, neg); err != nil {
		t.Fatalf("ArmAndFire failed: %v", err)
	}

	want := []string{"stop_p", "stop_n", "load_p", "load_n", "start", "wait_p", "wait_n"}
	got := mock.opList()
	if len(got) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	if e.State() != StateCooldown {
		t.Errorf("expected state cooldown after completion, got %s", e.State())
	}
	if len(mock.loads[ChannelPositive]) != len(pos.Segments) {
		t.Errorf("positive buffer holds %d segments, expected %d",
			len(mock.loads[ChannelPositive]), len(pos.Segments))
	}
}

func TestArmAndFireStateProgression(t *testing.T) {
	mock := newMockTxDriver()
	SetTxDriver(mock)

	e := NewEngine(0)

	var atStart, atWait EngineState
	mock.onStart = func() { atStart = e.State() }
	mock.onWait = func() { atWait = e.State() }

	pos, neg := testWaveforms()
	if err := e.ArmAndFire(pos, neg); err != nil {
		t.Fatalf("ArmAndFire failed: %v", err)
	}

	if atStart != StateArmed {
		t.Errorf("expected state armed at dual start, got %s", atStart)
	}
	if atWait != StateEmitting {
		t.Errorf("expected state emitting during completion wait, got %s", atWait)
	}
}

func TestArmAndFireLoadFailure(t *testing.T) {
	mock := newMockTxDriver()
	mock.loadErr = Error("buffer rejected segment chain")
	SetTxDriver(mock)

	e := NewEngine(0)
	pos, neg := testWaveforms()

	err := e.ArmAndFire(pos, neg)
	if err == nil {
		t.Fatal("expected load failure to surface")
	}
	if e.State() != StateIdle {
		t.Errorf("expected engine idle after failure, got %s", e.State())
	}
	if mock.countOp("start") != 0 {
		t.Error("dual start must not run after a load failure")
	}
}

func TestArmAndFireStartFailure(t *testing.T) {
	mock := newMockTxDriver()
	mock.startErr = Error("start rejected")
	SetTxDriver(mock)

	e := NewEngine(0)
	pos, neg := testWaveforms()

	if err := e.ArmAndFire(pos, neg); err == nil {
		t.Fatal("expected start failure to surface")
	}
	if e.State() != StateIdle {
		t.Errorf("expected engine idle after failure, got %s", e.State())
	}
	if mock.countOp("wait_p") != 0 {
		t.Error("completion wait must not run after a start failure")
	}
}

func TestArmAndFireWaitTimeout(t *testing.T) {
	mock := newMockTxDriver()
	mock.waitErr = ErrTxTimeout
	SetTxDriver(mock)

	e := NewEngine(0)
	pos, neg := testWaveforms()

	err := e.ArmAndFire(pos, neg)
	if err != ErrTxTimeout {
		t.Fatalf("expected ErrTxTimeout, got %v", err)
	}
	if e.State() != StateIdle {
		t.Errorf("expected engine idle after timeout, got %s", e.State())
	}
	// Both channels must be stopped again after the failure.
	if mock.countOp("stop_p") != 2 || mock.countOp("stop_n") != 2 {
		t.Errorf("expected both channels stopped after timeout, ops: %v", mock.opList())
	}
}
