// Package transform models the pan/zoom state of the diagram canvas.
//
// The diagram is drawn in its own content coordinate system and mapped onto
// the rendering surface by a uniform-scale affine transform:
//
//	surface = content*Scale + (X, Y)
//
// Translation is expressed in surface pixels. The transform is initialized
// once when the diagram first becomes measurable and is mutated only by
// pan/zoom gestures; it is never persisted across sessions.
package transform

// Point is a position in surface or content coordinates.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Rect is an axis-aligned rectangle in content coordinates.
type Rect struct {
	Min, Max Point
}

// Width returns the horizontal extent of r.
func (r Rect) Width() float64 {
	return r.Max.X - r.Min.X
}

// Height returns the vertical extent of r.
func (r Rect) Height() float64 {
	return r.Max.Y - r.Min.Y
}

// Transform is the pan/zoom state of the canvas.
type Transform struct {
	// X, Y translate content onto the surface, in surface pixels.
	X, Y float64

	// Scale is the uniform zoom factor, always > 0.
	Scale float64
}

// Identity returns the untranslated transform at scale 1.
func Identity() Transform {
	return Transform{Scale: 1}
}

// ToSurface maps a content-space point onto the surface.
func (t Transform) ToSurface(p Point) Point {
	return Point{
		X: p.X*t.Scale + t.X,
		Y: p.Y*t.Scale + t.Y,
	}
}

// ToContent maps a surface-space point into content space by inverting
// the pan/zoom mapping.
func (t Transform) ToContent(p Point) Point {
	return Point{
		X: (p.X - t.X) / t.Scale,
		Y: (p.Y - t.Y) / t.Scale,
	}
}

// Translated returns t shifted by (dx, dy) surface pixels.
func (t Transform) Translated(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// ZoomedAt returns t scaled by factor about the surface point p, adjusting
// the translation so the content under p stays visually fixed. Applying
// factor and then 1/factor at the same point restores the original
// transform up to floating-point rounding.
func (t Transform) ZoomedAt(p Point, factor float64) Transform {
	return Transform{
		X:     p.X - (p.X-t.X)*factor,
		Y:     p.Y - (p.Y-t.Y)*factor,
		Scale: t.Scale * factor,
	}
}

// Centered returns the initial transform placing the center of bounds at
// the center of a viewport of the given size, at scale 1.
func Centered(viewportW, viewportH float64, bounds Rect) Transform {
	return Transform{
		X:     (viewportW-bounds.Width())/2 - bounds.Min.X,
		Y:     (viewportH-bounds.Height())/2 - bounds.Min.Y,
		Scale: 1,
	}
}
