// Package ui lays out the observer window: command bar, diagram canvas,
// and the live log panel.
package ui

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"sagaview/cmd/sagaview/internal/theme"
	"sagaview/internal/diagram"
	"sagaview/internal/interaction"
	"sagaview/internal/saga"
	"sagaview/internal/scopelog"
	"sagaview/internal/syncer"
)

const publishTimeout = 10 * time.Second

// View is the root UI component.
type View struct {
	theme      *theme.Theme
	engine     *interaction.Engine
	history    *scopelog.History
	controller *syncer.Controller

	// invalidate schedules a repaint from any goroutine.
	invalidate func()

	mu      sync.Mutex
	diagram *diagram.Diagram
	banner  string

	ready atomic.Bool

	logList widget.List

	retryBtn   widget.Clickable
	pauseBtn   widget.Clickable
	resumeBtn  widget.Clickable
	removeBtn  widget.Clickable
	restartBtn widget.Clickable

	scopeClicks map[string]*widget.Clickable
}

// NewView creates the root view.
func NewView(t *theme.Theme, engine *interaction.Engine, history *scopelog.History,
	controller *syncer.Controller, invalidate func()) *View {
	v := &View{
		theme:       t,
		engine:      engine,
		history:     history,
		controller:  controller,
		invalidate:  invalidate,
		scopeClicks: make(map[string]*widget.Clickable),
	}
	v.logList.List.Axis = layout.Vertical
	return v
}

// SetDiagram swaps in a freshly loaded diagram, e.g. after the external
// renderer rewrote the layout file. Safe to call from any goroutine.
func (v *View) SetDiagram(d *diagram.Diagram) {
	v.mu.Lock()
	v.diagram = d
	v.mu.Unlock()
	v.invalidate()
}

// Diagram returns the current diagram, which may be nil before the first
// successful load.
func (v *View) Diagram() *diagram.Diagram {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.diagram
}

// Ready reports whether the diagram has been measured and centered; the
// synchronization controller polls it before fetching the snapshot.
func (v *View) Ready() bool {
	return v.ready.Load()
}

// Layout renders one frame.
func (v *View) Layout(gtx layout.Context) layout.Dimensions {
	paint.Fill(gtx.Ops, v.theme.Palette.Background)

	v.handleCommands(gtx)

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(v.layoutCommandBar),
		layout.Rigid(v.layoutBanner),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Horizontal}.Layout(gtx,
				layout.Flexed(1, v.layoutCanvas),
				layout.Rigid(v.layoutDivider),
				layout.Rigid(func(gtx layout.Context) layout.Dimensions {
					width := gtx.Dp(v.theme.Config.LogPanel)
					gtx.Constraints.Min.X = width
					gtx.Constraints.Max.X = width
					return v.layoutLogPanel(gtx)
				}),
			)
		}),
	)
}

func (v *View) handleCommands(gtx layout.Context) {
	if v.retryBtn.Clicked(gtx) {
		v.publish("RetryFaultedActivity", func(ctx context.Context) error {
			return v.controller.RetryFaulted(ctx)
		})
	}
	commands := []struct {
		btn *widget.Clickable
		cmd saga.Command
	}{
		{&v.pauseBtn, saga.PauseSaga()},
		{&v.resumeBtn, saga.ResumeSaga()},
		{&v.removeBtn, saga.RemoveSaga()},
		{&v.restartBtn, saga.RestartSaga()},
	}
	for _, c := range commands {
		if c.btn.Clicked(gtx) {
			cmd := c.cmd
			v.publish(cmd.Name, func(ctx context.Context) error {
				return v.controller.Publish(ctx, cmd)
			})
		}
	}
}

// publish fires a control command without blocking the frame loop.
// Failure only reaches the operator through the banner; local state is
// never touched.
func (v *View) publish(name string, send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := send(ctx); err != nil {
			v.setBanner("publish " + name + " failed: " + err.Error())
		} else {
			v.setBanner("")
		}
	}()
}

func (v *View) setBanner(msg string) {
	v.mu.Lock()
	v.banner = msg
	v.mu.Unlock()
	v.invalidate()
}

func (v *View) layoutCommandBar(gtx layout.Context) layout.Dimensions {
	buttons := []struct {
		btn   *widget.Clickable
		label string
	}{
		{&v.retryBtn, "Retry"},
		{&v.pauseBtn, "Pause"},
		{&v.resumeBtn, "Resume"},
		{&v.restartBtn, "Restart"},
		{&v.removeBtn, "Remove"},
	}

	return layout.UniformInset(v.theme.Config.Padding).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		children := make([]layout.FlexChild, 0, 2*len(buttons)+1)
		for i := range buttons {
			b := buttons[i]
			if i > 0 {
				children = append(children, layout.Rigid(layout.Spacer{Width: v.theme.Config.Spacing}.Layout))
			}
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				btn := material.Button(v.theme.Theme, b.btn, b.label)
				btn.Background = v.theme.Palette.Primary
				btn.TextSize = v.theme.Config.FontBody
				return btn.Layout(gtx)
			}))
		}
		children = append(children, layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return v.layoutStateLabel(gtx)
		}))
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx, children...)
	})
}

func (v *View) layoutStateLabel(gtx layout.Context) layout.Dimensions {
	state := v.controller.CurrentState.Get()
	if state == "" {
		state = "waiting for state"
	}
	l := material.Body1(v.theme.Theme, state)
	l.Color = v.theme.Palette.TextMuted
	if v.controller.LastError.Get() != "" {
		l.Color = v.theme.Palette.Error
	}
	return layout.E.Layout(gtx, l.Layout)
}

func (v *View) layoutBanner(gtx layout.Context) layout.Dimensions {
	v.mu.Lock()
	msg := v.banner
	v.mu.Unlock()
	if msg == "" {
		return layout.Dimensions{}
	}

	return layout.Background{}.Layout(gtx,
		func(gtx layout.Context) layout.Dimensions {
			size := gtx.Constraints.Min
			paint.FillShape(gtx.Ops, v.theme.Palette.Error, clip.Rect{Max: size}.Op())
			return layout.Dimensions{Size: size}
		},
		func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(v.theme.Config.Spacing).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				l := material.Body2(v.theme.Theme, msg)
				l.Color = v.theme.Palette.Text
				return l.Layout(gtx)
			})
		},
	)
}

func (v *View) layoutDivider(gtx layout.Context) layout.Dimensions {
	size := image.Pt(gtx.Dp(1), gtx.Constraints.Max.Y)
	paint.FillShape(gtx.Ops, v.theme.Palette.Border, clip.Rect{Max: size}.Op())
	return layout.Dimensions{Size: size}
}
