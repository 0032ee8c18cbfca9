package xfer

import (
	"sync"
	"testing"
)

func vec(vals ...float64) []float64 { return vals }

// --- construction and validation ---

func TestNewVecChanValidation(t *testing.T) {
	if _, err := NewVecChan(0, 4); err == nil {
		t.Fatal("expected error for capacity 0")
	}

	if _, err := NewVecChan(4, 0); err == nil {
		t.Fatal("expected error for dim 0")
	}
}

func TestNewVecChanDefaults(t *testing.T) {
	c, err := NewVecChan(4, 7)
	if err != nil {
		t.Fatal(err)
	}

	if c.Cap() != 4 || c.Dim() != 7 {
		t.Fatalf("got cap=%d dim=%d", c.Cap(), c.Dim())
	}

	if c.OverflowPolicy() != PolicyDropOldest {
		t.Fatalf("default policy: got %v", c.OverflowPolicy())
	}
}

// --- FIFO behavior ---

func TestFIFOOrderWithoutOverflow(t *testing.T) {
	c, err := NewVecChan(8, 2)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 5; i++ {
		c.Write(vec(float64(i), float64(-i)))
	}

	dst := make([]float64, 2)
	for i := 1; i <= 5; i++ {
		if !c.TryRead(dst) {
			t.Fatalf("read %d: no data", i)
		}
		if dst[0] != float64(i) || dst[1] != float64(-i) {
			t.Fatalf("read %d: got %v", i, dst)
		}
	}

	if c.TryRead(dst) {
		t.Fatal("expected empty channel")
	}

	if c.Dropped() != 0 {
		t.Fatalf("dropped: got %d want 0", c.Dropped())
	}
}

func TestTryReadLeavesDstUnchangedWhenEmpty(t *testing.T) {
	c, err := NewVecChan(2, 3)
	if err != nil {
		t.Fatal(err)
	}

	dst := vec(9, 9, 9)
	if c.TryRead(dst) {
		t.Fatal("expected no data")
	}

	for i, v := range dst {
		if v != 9 {
			t.Fatalf("dst[%d] modified: %v", i, v)
		}
	}
}

func TestWritePadsShortVector(t *testing.T) {
	c, err := NewVecChan(2, 3)
	if err != nil {
		t.Fatal(err)
	}

	c.Write(vec(1, 2, 3))
	dst := make([]float64, 3)
	c.TryRead(dst)

	// A short write zero-fills the remainder rather than leaking the
	// previous slot contents.
	c.Write(vec(5))
	if !c.TryRead(dst) {
		t.Fatal("no data")
	}

	if dst[0] != 5 || dst[1] != 0 || dst[2] != 0 {
		t.Fatalf("got %v want [5 0 0]", dst)
	}
}

// --- overflow policies ---

func TestDropOldestOverflow(t *testing.T) {
	c, err := NewVecChan(4, 1)
	if err != nil {
		t.Fatal(err)
	}

	// Write 6 without reads: the two oldest are discarded.
	for i := 1; i <= 6; i++ {
		c.Write(vec(float64(i)))
	}

	dst := make([]float64, 1)
	for _, want := range []float64{3, 4, 5, 6} {
		if !c.TryRead(dst) {
			t.Fatalf("expected value %v, channel empty", want)
		}
		if dst[0] != want {
			t.Fatalf("got %v want %v", dst[0], want)
		}
	}

	if c.TryRead(dst) {
		t.Fatal("expected empty channel")
	}

	if c.Dropped() != 2 {
		t.Fatalf("dropped: got %d want 2", c.Dropped())
	}
}

func TestDropNewestOverflow(t *testing.T) {
	c, err := NewVecChan(4, 1, WithPolicy(PolicyDropNewest))
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i <= 6; i++ {
		c.Write(vec(float64(i)))
	}

	dst := make([]float64, 1)
	for _, want := range []float64{1, 2, 3, 4} {
		if !c.TryRead(dst) {
			t.Fatalf("expected value %v, channel empty", want)
		}
		if dst[0] != want {
			t.Fatalf("got %v want %v", dst[0], want)
		}
	}

	if c.Dropped() != 2 {
		t.Fatalf("dropped: got %d want 2", c.Dropped())
	}
}

// --- concurrency ---

func TestConcurrentWriteReadNeverTears(t *testing.T) {
	const (
		dim    = 16
		rounds = 200000
	)

	c, err := NewVecChan(4, dim)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	wg.Add(2)

	// Every written vector holds a single repeated value, so any torn read
	// shows up as a mixed vector.
	go func() {
		defer wg.Done()
		v := make([]float64, dim)
		for i := 0; i < rounds; i++ {
			for j := range v {
				v[j] = float64(i)
			}
			c.Write(v)
		}
	}()

	var fail string
	go func() {
		defer wg.Done()
		dst := make([]float64, dim)
		last := -1.0
		for reads := 0; reads < rounds; {
			if !c.TryRead(dst) {
				reads++ // count polls so the loop terminates
				continue
			}
			reads++
			for j := 1; j < dim; j++ {
				if dst[j] != dst[0] {
					fail = "torn vector observed"
					return
				}
			}
			if dst[0] < last {
				fail = "values regressed out of order"
				return
			}
			last = dst[0]
		}
	}()

	wg.Wait()

	if fail != "" {
		t.Fatal(fail)
	}
}

func TestFloatCell(t *testing.T) {
	var cell FloatCell

	if got := cell.Load(); got != 0 {
		t.Fatalf("zero value: got %v", got)
	}

	cell.Store(0.75)
	if got := cell.Load(); got != 0.75 {
		t.Fatalf("got %v want 0.75", got)
	}

	cell.Store(-1.5)
	if got := cell.Load(); got != -1.5 {
		t.Fatalf("got %v want -1.5", got)
	}
}

func TestFloatCellConcurrent(t *testing.T) {
	var cell FloatCell

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for i := 0; i < 100000; i++ {
			cell.Store(float64(i))
		}
	}()

	for i := 0; i < 100000; i++ {
		v := cell.Load()
		if v != float64(int(v)) || v < 0 || v > 100000 {
			t.Fatalf("corrupt value %v", v)
		}
	}

	wg.Wait()
}
