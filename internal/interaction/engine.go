// Package interaction drives the diagram's pan/zoom from pointer and wheel
// input.
//
// The engine is a small state machine over two states, idle and panning,
// plus an always-available wheel zoom anchored under the cursor. It is
// deliberately independent of the GUI toolkit: the view adapts toolkit
// pointer events onto Press/Move/Release/Leave/Wheel, passing positions in
// surface-local coordinates (the toolkit routes events through the inverse
// of the surface's current screen-to-local mapping before they reach us).
package interaction

import "sagaview/internal/transform"

// Default zoom step factors applied per wheel notch.
const (
	DefaultZoomIn  = 1.1
	DefaultZoomOut = 0.9
)

type phase int

const (
	idle phase = iota
	panning
)

// Engine owns the canvas Transform and mutates it in response to gestures.
// It is not safe for concurrent use; the frame loop is its single caller.
type Engine struct {
	zoomIn  float64
	zoomOut float64

	t      transform.Transform
	ready  bool
	st     phase
	anchor transform.Point
}

// New returns an engine with the given wheel zoom factors. Factors that are
// not usable (zoomIn <= 1, zoomOut <= 0 or >= 1) fall back to the defaults.
func New(zoomIn, zoomOut float64) *Engine {
	if zoomIn <= 1 {
		zoomIn = DefaultZoomIn
	}
	if zoomOut <= 0 || zoomOut >= 1 {
		zoomOut = DefaultZoomOut
	}
	return &Engine{
		zoomIn:  zoomIn,
		zoomOut: zoomOut,
		t:       transform.Identity(),
	}
}

// Transform returns the current pan/zoom transform.
func (e *Engine) Transform() transform.Transform {
	return e.t
}

// Ready reports whether the one-time centering setup has run.
func (e *Engine) Ready() bool {
	return e.ready
}

// EnsureReady performs the one-time setup the first time the diagram's
// bounds are measurable (non-zero width): it installs the transform that
// centers bounds in the viewport at scale 1. Calling it again, or before
// the diagram is measurable, is a no-op. It reports whether the engine is
// ready afterwards.
func (e *Engine) EnsureReady(viewportW, viewportH float64, bounds transform.Rect) bool {
	if e.ready {
		return true
	}
	if bounds.Width() <= 0 {
		return false
	}
	e.t = transform.Centered(viewportW, viewportH, bounds)
	e.ready = true
	return true
}

// Press starts a pan at p, recording it as the drag anchor.
func (e *Engine) Press(p transform.Point) {
	e.st = panning
	e.anchor = p
}

// Move accumulates the delta from the anchor into the translation and
// re-anchors at p. Accumulating incrementally means any sequence of moves
// telescopes: the net pan equals last position minus press position.
func (e *Engine) Move(p transform.Point) {
	if e.st != panning {
		return
	}
	d := p.Sub(e.anchor)
	e.t = e.t.Translated(d.X, d.Y)
	e.anchor = p
}

// Release ends the pan.
func (e *Engine) Release() {
	e.st = idle
}

// Leave ends the pan when the pointer leaves the canvas.
func (e *Engine) Leave() {
	e.st = idle
}

// Wheel zooms about the cursor position p. A negative scroll delta (wheel
// up) zooms in, a positive one zooms out. Zooming is available in every
// state, including mid-pan.
func (e *Engine) Wheel(p transform.Point, scrollY float64) {
	if scrollY == 0 {
		return
	}
	factor := e.zoomIn
	if scrollY > 0 {
		factor = e.zoomOut
	}
	e.t = e.t.ZoomedAt(p, factor)
}
