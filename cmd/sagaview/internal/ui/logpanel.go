package ui

import (
	"image/color"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"sagaview/internal/scopelog"
)

// layoutLogPanel renders the scope history, newest-first, with one
// collapsible section per processed message.
func (v *View) layoutLogPanel(gtx layout.Context) layout.Dimensions {
	paint.FillShape(gtx.Ops, v.theme.Palette.Panel, clip.Rect{Max: gtx.Constraints.Max}.Op())

	scopes := v.history.Scopes()
	v.pruneScopeClicks(scopes)
	list := material.List(v.theme.Theme, &v.logList)
	return list.Layout(gtx, len(scopes), func(gtx layout.Context, i int) layout.Dimensions {
		return v.layoutScope(gtx, scopes[i])
	})
}

func (v *View) layoutScope(gtx layout.Context, s *scopelog.Scope) layout.Dimensions {
	click := v.scopeClick(s.MessageID)
	if click.Clicked(gtx) {
		v.history.ToggleExpanded(s)
	}

	children := []layout.FlexChild{
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return material.Clickable(gtx, click, func(gtx layout.Context) layout.Dimensions {
				return v.layoutScopeHeader(gtx, s)
			})
		}),
	}
	if s.Expanded {
		for i := range s.Entries {
			e := s.Entries[i]
			children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return v.layoutEntry(gtx, e)
			}))
		}
	}
	children = append(children, layout.Rigid(func(gtx layout.Context) layout.Dimensions {
		size := gtx.Constraints.Max
		size.Y = gtx.Dp(1)
		paint.FillShape(gtx.Ops, v.theme.Palette.Border, clip.Rect{Max: size}.Op())
		return layout.Dimensions{Size: size}
	}))

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx, children...)
}

func (v *View) layoutScopeHeader(gtx layout.Context, s *scopelog.Scope) layout.Dimensions {
	return layout.UniformInset(v.theme.Config.Spacing).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Baseline}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				marker := "▸ "
				if s.Expanded {
					marker = "▾ "
				}
				l := material.Body2(v.theme.Theme, marker+s.MessageType)
				l.Color = v.theme.Palette.Text
				l.TextSize = v.theme.Config.FontBody
				return l.Layout(gtx)
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(v.theme.Theme, shortID(s.MessageID))
				l.Color = v.theme.Palette.TextMuted
				l.TextSize = v.theme.Config.FontCaption
				return layout.E.Layout(gtx, l.Layout)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(v.theme.Theme, " "+s.Clock())
				l.Color = v.theme.Palette.TextMuted
				l.TextSize = v.theme.Config.FontCaption
				return l.Layout(gtx)
			}),
		)
	})
}

func (v *View) layoutEntry(gtx layout.Context, e scopelog.Entry) layout.Dimensions {
	inset := layout.Inset{
		Left:   v.theme.Config.Padding,
		Right:  v.theme.Config.Spacing,
		Bottom: 2,
	}
	return inset.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Baseline}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(v.theme.Theme, e.Clock()+" "+e.Offset())
				l.Color = v.theme.Palette.TextMuted
				l.TextSize = v.theme.Config.FontCaption
				return l.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: v.theme.Config.Spacing}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(v.theme.Theme, e.Level.String())
				l.Color = v.levelColor(e.Level)
				l.TextSize = v.theme.Config.FontCaption
				return l.Layout(gtx)
			}),
			layout.Rigid(layout.Spacer{Width: v.theme.Config.Spacing}.Layout),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				l := material.Caption(v.theme.Theme, e.Message)
				l.Color = v.theme.Palette.Text
				l.TextSize = v.theme.Config.FontCaption
				return l.Layout(gtx)
			}),
		)
	})
}

func (v *View) levelColor(level scopelog.Level) color.NRGBA {
	switch level {
	case scopelog.LevelWarn:
		return v.theme.Palette.Warning
	case scopelog.LevelError, scopelog.LevelCritical:
		return v.theme.Palette.Error
	case scopelog.LevelTrace, scopelog.LevelDebug:
		return v.theme.Palette.TextMuted
	default:
		return v.theme.Palette.Primary
	}
}

// pruneScopeClicks drops clickables whose scopes left the history, which
// can replace its contents wholesale on a snapshot load.
func (v *View) pruneScopeClicks(scopes []*scopelog.Scope) {
	if len(v.scopeClicks) <= len(scopes) {
		return
	}
	live := make(map[string]struct{}, len(scopes))
	for _, s := range scopes {
		live[s.MessageID] = struct{}{}
	}
	for id := range v.scopeClicks {
		if _, ok := live[id]; !ok {
			delete(v.scopeClicks, id)
		}
	}
}

// scopeClick returns the stable clickable for a scope header.
func (v *View) scopeClick(messageID string) *widget.Clickable {
	c, ok := v.scopeClicks[messageID]
	if !ok {
		c = &widget.Clickable{}
		v.scopeClicks[messageID] = c
	}
	return c
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
