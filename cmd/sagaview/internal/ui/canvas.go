package ui

import (
	"image"
	"image/color"

	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"sagaview/internal/diagram"
	"sagaview/internal/transform"
)

// layoutCanvas draws the pan/zoom diagram surface. Pointer events arrive
// in canvas-local coordinates (the toolkit inverts the surface's current
// screen-to-local mapping during routing) and are fed to the interaction
// engine; the resulting transform is applied to the whole diagram group.
func (v *View) layoutCanvas(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	paint.FillShape(gtx.Ops, v.theme.Palette.Surface, clip.Rect{Max: size}.Op())

	v.handlePointer(gtx)
	event.Op(gtx.Ops, v)

	d := v.Diagram()
	if d == nil {
		return v.layoutCanvasHint(gtx, size, "waiting for diagram")
	}

	if v.engine.EnsureReady(float64(size.X), float64(size.Y), d.Bounds()) {
		v.ready.Store(true)
	}
	if !v.engine.Ready() {
		return v.layoutCanvasHint(gtx, size, "diagram not measurable")
	}

	// Re-resolve the highlight on the frame loop so node fills are only
	// ever mutated here.
	d.Highlight(v.controller.CurrentState.Get(), v.controller.LastError.Get())
	v.drawDiagram(gtx, d)

	return layout.Dimensions{Size: size}
}

func (v *View) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: v,
			Kinds: pointer.Press | pointer.Drag | pointer.Release |
				pointer.Cancel | pointer.Leave | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -1000, Max: 1000},
		})
		if !ok {
			break
		}
		e, ok := ev.(pointer.Event)
		if !ok {
			continue
		}

		p := transform.Pt(float64(e.Position.X), float64(e.Position.Y))
		switch e.Kind {
		case pointer.Press:
			if e.Buttons == pointer.ButtonPrimary {
				v.engine.Press(p)
			}
		case pointer.Drag:
			v.engine.Move(p)
		case pointer.Release, pointer.Cancel:
			v.engine.Release()
		case pointer.Leave:
			v.engine.Leave()
		case pointer.Scroll:
			v.engine.Wheel(p, float64(e.Scroll.Y))
		}
	}
}

func (v *View) drawDiagram(gtx layout.Context, d *diagram.Diagram) {
	t := v.engine.Transform()
	defer op.Affine(f32.Affine2D{}.
		Scale(f32.Point{}, f32.Pt(float32(t.Scale), float32(t.Scale))).
		Offset(f32.Pt(float32(t.X), float32(t.Y)))).
		Push(gtx.Ops).Pop()

	for _, e := range d.Edges {
		v.drawEdge(gtx, d, e)
	}
	for _, n := range d.Nodes {
		v.drawNode(gtx, n)
	}
}

func (v *View) drawEdge(gtx layout.Context, d *diagram.Diagram, e diagram.Edge) {
	from, to := d.NodeByID(e.From), d.NodeByID(e.To)
	if from == nil || to == nil {
		return
	}

	var path clip.Path
	path.Begin(gtx.Ops)
	path.MoveTo(f32.Pt(float32(from.X+from.W/2), float32(from.Y+from.H/2)))
	for _, wp := range e.Points {
		path.LineTo(f32.Pt(float32(wp.X), float32(wp.Y)))
	}
	path.LineTo(f32.Pt(float32(to.X+to.W/2), float32(to.Y+to.H/2)))

	paint.FillShape(gtx.Ops, v.theme.Palette.Border,
		clip.Stroke{Path: path.End(), Width: 1.5}.Op())
}

func (v *View) drawNode(gtx layout.Context, n *diagram.Node) {
	rect := image.Rect(int(n.X), int(n.Y), int(n.X+n.W), int(n.Y+n.H))
	rr := clip.UniformRRect(rect, gtx.Dp(v.theme.Config.CornerRadius))

	paint.FillShape(gtx.Ops, v.nodeFill(n.Fill), rr.Op(gtx.Ops))
	paint.FillShape(gtx.Ops, v.theme.Palette.NodeBorder,
		clip.Stroke{Path: rr.Path(gtx.Ops), Width: 1}.Op())

	// Center the label inside the node rectangle.
	lgtx := gtx
	lgtx.Constraints = layout.Exact(image.Pt(rect.Dx(), rect.Dy()))
	offset := op.Offset(rect.Min).Push(gtx.Ops)
	l := material.Body2(v.theme.Theme, n.Label)
	l.Color = v.theme.Palette.NodeText
	l.TextSize = v.theme.Config.FontBody
	layout.Center.Layout(lgtx, l.Layout)
	offset.Pop()
}

func (v *View) nodeFill(f diagram.Fill) color.NRGBA {
	switch f {
	case diagram.FillSuccess:
		return v.theme.Palette.NodeSuccess
	case diagram.FillError:
		return v.theme.Palette.NodeError
	default:
		return v.theme.Palette.NodeNeutral
	}
}

func (v *View) layoutCanvasHint(gtx layout.Context, size image.Point, hint string) layout.Dimensions {
	gtx.Constraints = layout.Exact(size)
	layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		l := material.Body1(v.theme.Theme, hint)
		l.Color = v.theme.Palette.TextMuted
		return l.Layout(gtx)
	})
	return layout.Dimensions{Size: size}
}
