package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// mockButtonDriver simulates the hardware interrupt path: edges only
// reach the handler while the source is armed.
type mockButtonDriver struct {
	mu      sync.Mutex
	isr     func()
	armed   bool
	rearms  uint32
	disarms uint32
}

func (m *mockButtonDriver) Configure(isr func()) error {
	m.mu.Lock()
	m.isr = isr
	m.armed = true
	m.mu.Unlock()
	return nil
}

func (m *mockButtonDriver) Disarm() {
	m.mu.Lock()
	m.armed = false
	m.mu.Unlock()
	atomic.AddUint32(&m.disarms, 1)
}

func (m *mockButtonDriver) Rearm() {
	m.mu.Lock()
	m.armed = true
	m.mu.Unlock()
	atomic.AddUint32(&m.rearms, 1)
}

// edge simulates one falling edge on the input pin.
func (m *mockButtonDriver) edge() {
	m.mu.Lock()
	isr, armed := m.isr, m.armed
	m.mu.Unlock()
	if armed && isr != nil {
		isr()
	}
}

func TestDebounceSinglePulsePerPress(t *testing.T) {
	mock := newMockTxDriver()
	arb := newTestArbiter(mock)

	btn := &mockButtonDriver{}
	SetButtonDriver(btn)

	pump := NewButtonPump(arb)
	if err := btn.Configure(pump.Interrupt); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}

	stopped := make(chan struct{})
	go func() {
		pump.Run()
		close(stopped)
	}()

	// One physical press arrives as a burst of edges; the first edge
	// disarms the source, so the rest never reach the pump.
	for i := 0; i < 10; i++ {
		btn.edge()
	}

	waitUntil(t, func() bool { return atomic.LoadUint32(&btn.rearms) == 1 }, "rearm after cooldown")

	if got := mock.countOp("start"); got != 1 {
		t.Errorf("expected exactly 1 emission for a bouncy press, got %d", got)
	}

	// A second press after rearm triggers again.
	btn.edge()
	waitUntil(t, func() bool { return atomic.LoadUint32(&btn.rearms) == 2 }, "second rearm")
	if got := mock.countOp("start"); got != 2 {
		t.Errorf("expected 2 emissions after second press, got %d", got)
	}

	close(pump.events)
	<-stopped
}

func TestInterruptHandoffNonBlocking(t *testing.T) {
	mock := newMockTxDriver()
	arb := newTestArbiter(mock)

	btn := &mockButtonDriver{}
	SetButtonDriver(btn)

	pump := NewButtonPump(arb)

	// With no consumer running, repeated interrupts must neither block
	// nor queue more than one pending event.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			pump.Interrupt()
			btn.Rearm()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("interrupt handoff blocked")
	}

	if len(pump.events) != 1 {
		t.Errorf("expected a single pending event, got %d", len(pump.events))
	}
}
