package boot

import (
	"sync"
	"testing"
	"time"
)

func TestPhaseString(t *testing.T) {
	if PhaseInterfaceReady.String() != "interface-ready" {
		t.Fatalf("got %q", PhaseInterfaceReady.String())
	}

	if Phase(42).String() != "invalid" {
		t.Fatalf("got %q", Phase(42).String())
	}
}

func TestFlagsStartDown(t *testing.T) {
	s := New()

	snap := s.Snapshot()
	if snap.SerialReady || snap.InterfaceReady || snap.ControlReady || snap.AudioReady {
		t.Fatalf("flags up at start: %+v", snap)
	}

	if snap.ControlPhase != PhaseNotStarted || snap.AudioPhase != PhaseNotStarted {
		t.Fatalf("phases advanced at start: %+v", snap)
	}
}

func TestPhasesAreMonotonic(t *testing.T) {
	s := New()

	s.MarkSerialReady()
	s.MarkInterfaceReady()
	s.MarkControlReady()

	if got := s.ControlPhase(); got != PhaseCoreReady {
		t.Fatalf("got %v want %v", got, PhaseCoreReady)
	}

	// Re-marking an earlier phase must not regress progress.
	s.MarkSerialReady()
	if got := s.ControlPhase(); got != PhaseCoreReady {
		t.Fatalf("phase regressed to %v", got)
	}
}

func TestWaitForTimesOut(t *testing.T) {
	s := New(WithPollInterval(time.Millisecond))

	start := time.Now()
	if s.WaitForAudioReady(20 * time.Millisecond) {
		t.Fatal("audio never marked ready, wait should time out")
	}

	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("returned before timeout: %v", elapsed)
	}
}

func TestTwoContextHandshake(t *testing.T) {
	s := New(WithPollInterval(50 * time.Microsecond))

	var (
		mu          sync.Mutex
		constructed []string
	)
	record := func(event string) {
		mu.Lock()
		constructed = append(constructed, event)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Control context: serial, interface, ready, wait for audio.
	go func() {
		defer wg.Done()
		s.MarkSerialReady()
		time.Sleep(time.Millisecond) // simulate interface construction
		record("interface")
		s.MarkInterfaceReady()
		s.MarkControlReady()
		s.WaitAudioReady()
		s.MarkControlRunning()
	}()

	// Audio context: wait for serial and interface, construct, ready, wait
	// for control.
	go func() {
		defer wg.Done()
		s.WaitSerialReady()
		s.WaitInterfaceReady()
		record("engine")
		s.MarkAudioReady()
		s.WaitControlReady()
		s.MarkAudioRunning()
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handshake deadlocked")
	}

	// The audio engine must have been constructed after the interface.
	mu.Lock()
	defer mu.Unlock()
	if len(constructed) != 2 || constructed[0] != "interface" || constructed[1] != "engine" {
		t.Fatalf("construction order: %v", constructed)
	}

	snap := s.Snapshot()
	if snap.ControlPhase != PhaseRunning || snap.AudioPhase != PhaseRunning {
		t.Fatalf("both contexts should be running: %+v", snap)
	}
}
