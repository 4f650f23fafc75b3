package interaction

import (
	"math"
	"testing"

	"sagaview/internal/transform"
)

func newReadyEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(0, 0)
	bounds := transform.Rect{Min: transform.Pt(0, 0), Max: transform.Pt(100, 100)}
	if !e.EnsureReady(800, 600, bounds) {
		t.Fatal("EnsureReady with measurable bounds returned false")
	}
	return e
}

func TestEnsureReadyWaitsForMeasurableBounds(t *testing.T) {
	e := New(0, 0)

	if e.EnsureReady(800, 600, transform.Rect{}) {
		t.Error("engine became ready with zero-width bounds")
	}
	if e.Ready() {
		t.Error("Ready = true before setup")
	}

	bounds := transform.Rect{Min: transform.Pt(0, 0), Max: transform.Pt(200, 100)}
	if !e.EnsureReady(800, 600, bounds) {
		t.Fatal("engine did not become ready with measurable bounds")
	}

	want := transform.Centered(800, 600, bounds)
	if e.Transform() != want {
		t.Errorf("initial transform = %+v, want %+v", e.Transform(), want)
	}
}

func TestEnsureReadyIdempotent(t *testing.T) {
	e := newReadyEngine(t)

	// Disturb the transform, then call setup again with different
	// geometry: it must not reset anything.
	e.Press(transform.Pt(0, 0))
	e.Move(transform.Pt(40, 25))
	e.Release()
	got := e.Transform()

	e.EnsureReady(1024, 768, transform.Rect{Min: transform.Pt(0, 0), Max: transform.Pt(500, 500)})
	if e.Transform() != got {
		t.Errorf("second EnsureReady changed transform: %+v -> %+v", got, e.Transform())
	}
}

func TestPanTelescopes(t *testing.T) {
	// The net translation must equal (Pn - P0) regardless of how many
	// intermediate moves the gesture is chopped into.
	start := transform.Pt(100, 100)
	end := transform.Pt(37, 242)

	paths := [][]transform.Point{
		{end},
		{transform.Pt(90, 120), transform.Pt(60, 180), end},
		{transform.Pt(101, 99), transform.Pt(12, 400), transform.Pt(-50, -50), end},
	}

	for i, path := range paths {
		e := newReadyEngine(t)
		before := e.Transform()

		e.Press(start)
		for _, p := range path {
			e.Move(p)
		}
		e.Release()

		after := e.Transform()
		dx, dy := after.X-before.X, after.Y-before.Y
		if math.Abs(dx-(end.X-start.X)) > 1e-9 || math.Abs(dy-(end.Y-start.Y)) > 1e-9 {
			t.Errorf("path %d: net pan = (%v, %v), want (%v, %v)",
				i, dx, dy, end.X-start.X, end.Y-start.Y)
		}
		if after.Scale != before.Scale {
			t.Errorf("path %d: pan changed scale", i)
		}
	}
}

func TestMoveIgnoredWhenIdle(t *testing.T) {
	e := newReadyEngine(t)
	before := e.Transform()

	e.Move(transform.Pt(500, 500))
	if e.Transform() != before {
		t.Error("Move without Press changed the transform")
	}

	e.Press(transform.Pt(10, 10))
	e.Release()
	e.Move(transform.Pt(500, 500))
	if e.Transform() != before {
		t.Error("Move after Release changed the transform")
	}
}

func TestLeaveEndsPan(t *testing.T) {
	e := newReadyEngine(t)

	e.Press(transform.Pt(0, 0))
	e.Move(transform.Pt(10, 0))
	e.Leave()
	mid := e.Transform()

	e.Move(transform.Pt(100, 100))
	if e.Transform() != mid {
		t.Error("Move after Leave changed the transform")
	}
}

func TestWheelRoundTrip(t *testing.T) {
	// Round-tripping only holds for inverse factors; the defaults
	// (1.1/0.9) deliberately are not, see the next test.
	e := New(1.1, 1/1.1)
	e.EnsureReady(800, 600, transform.Rect{Max: transform.Pt(100, 100)})
	cursor := transform.Pt(371, 118)
	before := e.Transform()

	for i := 0; i < 20; i++ {
		e.Wheel(cursor, -1) // in
		e.Wheel(cursor, 1)  // out
	}

	after := e.Transform()
	if math.Abs(after.X-before.X) > 1e-6 ||
		math.Abs(after.Y-before.Y) > 1e-6 ||
		math.Abs(after.Scale-before.Scale) > 1e-6 {
		t.Errorf("alternating zoom drifted: %+v, want %+v", after, before)
	}
}

func TestWheelDefaultsDrift(t *testing.T) {
	// 1.1 * 0.9 = 0.99, so an in/out pair under the default factors
	// shrinks scale slightly rather than restoring it.
	e := newReadyEngine(t)
	cursor := transform.Pt(371, 118)
	before := e.Transform()

	e.Wheel(cursor, -1)
	e.Wheel(cursor, 1)

	got := e.Transform().Scale
	want := before.Scale * DefaultZoomIn * DefaultZoomOut
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("scale after default in/out pair = %v, want %v", got, want)
	}
}

func TestWheelRoundTripNeedsInverseFactors(t *testing.T) {
	// Default factors 1.1/0.9 are not exact inverses, so a single
	// in/out pair does not restore scale. An engine configured with
	// f and 1/f must.
	e := New(1.25, 1/1.25)
	e.EnsureReady(800, 600, transform.Rect{Max: transform.Pt(100, 100)})
	cursor := transform.Pt(50, 50)
	before := e.Transform()

	e.Wheel(cursor, -1)
	e.Wheel(cursor, 1)

	after := e.Transform()
	if math.Abs(after.Scale-before.Scale) > 1e-12 {
		t.Errorf("scale after f, 1/f = %v, want %v", after.Scale, before.Scale)
	}
}

func TestWheelAnchorsCursor(t *testing.T) {
	e := newReadyEngine(t)
	cursor := transform.Pt(123, 456)

	content := e.Transform().ToContent(cursor)
	e.Wheel(cursor, -1)
	after := e.Transform().ToSurface(content)

	if math.Abs(after.X-cursor.X) > 1e-9 || math.Abs(after.Y-cursor.Y) > 1e-9 {
		t.Errorf("content under cursor moved to %v during zoom", after)
	}
}

func TestWheelZeroDeltaIgnored(t *testing.T) {
	e := newReadyEngine(t)
	before := e.Transform()
	e.Wheel(transform.Pt(10, 10), 0)
	if e.Transform() != before {
		t.Error("zero scroll delta changed the transform")
	}
}

func TestWheelDuringPan(t *testing.T) {
	e := newReadyEngine(t)

	e.Press(transform.Pt(100, 100))
	e.Move(transform.Pt(110, 100))
	e.Wheel(transform.Pt(110, 100), -1)
	if e.Transform().Scale <= 1 {
		t.Error("zoom-in during pan did not increase scale")
	}

	// Pan continues after the zoom.
	before := e.Transform()
	e.Move(transform.Pt(120, 100))
	if e.Transform().X-before.X != 10 {
		t.Errorf("pan delta after mid-pan zoom = %v, want 10", e.Transform().X-before.X)
	}
}

func TestNewFallsBackToDefaultFactors(t *testing.T) {
	e := New(0.5, 2)
	e.EnsureReady(800, 600, transform.Rect{Max: transform.Pt(10, 10)})

	e.Wheel(transform.Pt(0, 0), -1)
	if math.Abs(e.Transform().Scale-DefaultZoomIn) > 1e-12 {
		t.Errorf("scale after zoom-in = %v, want default %v", e.Transform().Scale, DefaultZoomIn)
	}
}
