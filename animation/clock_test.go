package animation

import (
	"testing"
	"time"
)

func TestTimeAt(t *testing.T) {
	type spec struct {
		frame uint32
		fps   uint32
		exp   float32
	}
	specs := []spec{
		spec{0, 30, 0},
		spec{1, 30, 1.0 / 30},
		spec{30, 30, 1},
		spec{12, 24, 0.5},
		spec{120, 60, 2},
		spec{299, 30, 299 * (1.0 / 30)},
	}

	for index, s := range specs {
		got := TimeAt(s.frame, s.fps)
		if diff := got - s.exp; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("[spec %d] expected time %f; got %f", index, s.exp, got)
		}
	}
}

func TestTimeAtIsMonotonic(t *testing.T) {
	for _, fps := range []uint32{24, 30, 60} {
		prev := TimeAt(0, fps)
		for frame := uint32(1); frame < FrameCount(10, fps); frame++ {
			cur := TimeAt(frame, fps)
			if cur <= prev {
				t.Fatalf("[fps %d] expected time to increase at frame %d; %f <= %f", fps, frame, cur, prev)
			}
			prev = cur
		}
	}
}

func TestFrameCount(t *testing.T) {
	type spec struct {
		duration float32
		fps      uint32
		exp      uint32
	}
	specs := []spec{
		spec{10, 30, 300},
		spec{10, 24, 240},
		spec{10, 60, 600},
		spec{2.9, 30, 60},
		spec{0.5, 30, 0},
		spec{-1, 30, 0},
	}

	for index, s := range specs {
		if got := FrameCount(s.duration, s.fps); got != s.exp {
			t.Fatalf("[spec %d] expected %d frames; got %d", index, s.exp, got)
		}
	}
}

func TestBudget(t *testing.T) {
	start := time.Unix(1000, 0)
	now := start

	type spec struct {
		limit   uint32
		elapsed time.Duration
		exp     bool
	}
	specs := []spec{
		spec{10, 9 * time.Second, false},
		spec{10, 10 * time.Second, false},
		spec{10, 10*time.Second + 500*time.Microsecond, false},
		spec{10, 10*time.Second + 999*time.Microsecond, false},
		spec{10, 10*time.Second + time.Millisecond, true},
		spec{0, time.Millisecond, true},
		spec{0, 0, false},
		spec{Unbounded, 1000 * time.Hour, false},
	}

	for index, s := range specs {
		b := NewBudget(s.limit, start).WithClock(func() time.Time { return now })
		now = start.Add(s.elapsed)
		if got := b.Exceeded(); got != s.exp {
			t.Fatalf("[spec %d] expected Exceeded() to return %t; got %t", index, s.exp, got)
		}
		if b.Elapsed() != s.elapsed {
			t.Fatalf("[spec %d] expected elapsed %s; got %s", index, s.elapsed, b.Elapsed())
		}
	}
}

func TestFrameFilename(t *testing.T) {
	type spec struct {
		index  uint32
		exp    string
		expErr bool
	}
	specs := []spec{
		spec{0, "000.png", false},
		spec{1, "001.png", false},
		spec{42, "042.png", false},
		spec{999, "999.png", false},
		spec{1000, "", true},
	}

	for index, s := range specs {
		got, err := FrameFilename(s.index, "png")
		if s.expErr {
			if err == nil {
				t.Fatalf("[spec %d] expected an error", index)
			}
			continue
		}
		if err != nil {
			t.Fatalf("[spec %d] %v", index, err)
		}
		if got != s.exp {
			t.Fatalf("[spec %d] expected %q; got %q", index, s.exp, got)
		}
	}
}
