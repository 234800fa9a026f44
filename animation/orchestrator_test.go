package animation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ms-elk/rtcamp11/encoder"
)

func TestRunRendersAllFrames(t *testing.T) {
	for _, fps := range []uint32{24, 30, 60} {
		session := newMockSession(nil)
		enc := &mockEncoder{}
		o := NewOrchestrator(session, enc, NewBudget(Unbounded, time.Now()), testConfig(fps, 1))

		res, err := o.Run()
		if err != nil {
			t.Fatalf("[fps %d] %v", fps, err)
		}
		if res.Rendered != fps || res.Encoded != fps || res.Truncated {
			t.Fatalf("[fps %d] unexpected result %+v", fps, res)
		}
		if len(session.times) != int(fps) {
			t.Fatalf("[fps %d] expected %d scene updates; got %d", fps, fps, len(session.times))
		}
		for frame, got := range session.times {
			if exp := TimeAt(uint32(frame), fps); got != exp {
				t.Fatalf("[fps %d] expected frame %d to update scene at %f; got %f", fps, frame, exp, got)
			}
		}
		if o.State() != Terminated {
			t.Fatalf("[fps %d] expected final state %s; got %s", fps, Terminated, o.State())
		}
	}
}

func TestRunCallOrder(t *testing.T) {
	session := newMockSession(nil)
	enc := &mockEncoder{calls: &session.calls}
	o := NewOrchestrator(session, enc, nil, testConfig(2, 1))

	if _, err := o.Run(); err != nil {
		t.Fatal(err)
	}

	frameCalls := []string{"update", "reset", "render:4", "resolve:false", "encode"}
	var exp []string
	for frame := 0; frame < 2; frame++ {
		exp = append(exp, frameCalls...)
	}
	if strings.Join(session.calls, ",") != strings.Join(exp, ",") {
		t.Fatalf("expected calls %v; got %v", exp, session.calls)
	}
}

func TestRunStateTransitions(t *testing.T) {
	session := newMockSession(nil)
	o := NewOrchestrator(session, &mockEncoder{}, nil, testConfig(1, 1))

	var states []string
	o.SetObserver(func(frame uint32, from, to State) {
		states = append(states, to.String())
	})
	if _, err := o.Run(); err != nil {
		t.Fatal(err)
	}

	exp := "loop-entry,frame-start,scene-advance,accumulation-reset,sampling,resolve,budget-check,encode,loop-exit,terminated"
	if got := strings.Join(states, ","); got != exp {
		t.Fatalf("expected transitions %q; got %q", exp, got)
	}
}

func TestRunTruncatesOnBudget(t *testing.T) {
	start := time.Unix(0, 0)
	now := start

	// Every render advances the clock by one second
	session := newMockSession(func() { now = now.Add(time.Second) })
	enc := &mockEncoder{}
	budget := NewBudget(2, start).WithClock(func() time.Time { return now })
	o := NewOrchestrator(session, enc, budget, testConfig(30, 10))

	res, err := o.Run()
	if err != nil {
		t.Fatal(err)
	}

	if res.Rendered != 3 || res.Encoded != 2 || !res.Truncated {
		t.Fatalf("expected 3 rendered, 2 encoded and truncation; got %+v", res)
	}
	if len(enc.paths) != 2 {
		t.Fatalf("expected 2 encoded frames; got %d", len(enc.paths))
	}
	if res.Frames[2].Path != "" {
		t.Fatalf("expected dropped frame to have no output path; got %q", res.Frames[2].Path)
	}
}

func TestRunEncodesNamedFrames(t *testing.T) {
	dir := t.TempDir()
	enc, err := encoder.New(encoder.Png)
	if err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(43, 1)
	cfg.OutDir = dir
	o := NewOrchestrator(newMockSession(nil), enc, nil, cfg)
	res, err := o.Run()
	if err != nil {
		t.Fatal(err)
	}
	if res.Encoded != 43 {
		t.Fatalf("expected 43 encoded frames; got %d", res.Encoded)
	}

	for _, name := range []string{"000.png", "001.png", "042.png"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected frame %s to exist: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "043.png")); !os.IsNotExist(err) {
		t.Fatal("expected 043.png not to exist")
	}
}

func TestRunAbortsOnFrameFailure(t *testing.T) {
	renderErr := errors.New("render failed")
	session := newMockSession(nil)
	session.failAt = 1
	session.err = renderErr
	enc := &mockEncoder{}

	o := NewOrchestrator(session, enc, nil, testConfig(5, 1))
	res, err := o.Run()
	if !errors.Is(err, renderErr) {
		t.Fatalf("expected error %v; got %v", renderErr, err)
	}
	if !strings.HasPrefix(err.Error(), "frame 1:") {
		t.Fatalf("expected error to reference the frame index; got %q", err.Error())
	}
	if res.Encoded != 1 || len(enc.paths) != 1 {
		t.Fatalf("expected a single encoded frame; got %+v", res)
	}
}

func TestRunRejectsZeroFPS(t *testing.T) {
	o := NewOrchestrator(newMockSession(nil), &mockEncoder{}, nil, testConfig(0, 10))
	if _, err := o.Run(); err != ErrInvalidFPS {
		t.Fatalf("expected error %v; got %v", ErrInvalidFPS, err)
	}
}

func testConfig(fps uint32, duration float32) Config {
	return Config{
		FrameW:          2,
		FrameH:          2,
		SamplesPerPixel: 4,
		FPS:             fps,
		Duration:        duration,
	}
}

type mockSession struct {
	calls  []string
	times  []float32
	onDraw func()

	// Fail the render call of frame failAt with err
	failAt int
	err    error
}

func newMockSession(onDraw func()) *mockSession {
	return &mockSession{onDraw: onDraw, failAt: -1}
}

func (ms *mockSession) UpdateScene(t float32) error {
	ms.calls = append(ms.calls, "update")
	ms.times = append(ms.times, t)
	return nil
}

func (ms *mockSession) ResetAccumulation() error {
	ms.calls = append(ms.calls, "reset")
	return nil
}

func (ms *mockSession) Render(spp uint32) error {
	ms.calls = append(ms.calls, fmt.Sprintf("render:%d", spp))
	if ms.onDraw != nil {
		ms.onDraw()
	}
	if len(ms.times)-1 == ms.failAt {
		return ms.err
	}
	return nil
}

func (ms *mockSession) Resolve(denoise bool) error {
	ms.calls = append(ms.calls, fmt.Sprintf("resolve:%t", denoise))
	return nil
}

func (ms *mockSession) FrameBuffer() []uint8 {
	return make([]uint8, 2*2*3)
}

type mockEncoder struct {
	calls *[]string
	paths []string
}

func (me *mockEncoder) Ext() string {
	return "png"
}

func (me *mockEncoder) Encode(path string, _ []uint8, _, _ uint32) error {
	if me.calls != nil {
		*me.calls = append(*me.calls, "encode")
	}
	me.paths = append(me.paths, path)
	return nil
}
