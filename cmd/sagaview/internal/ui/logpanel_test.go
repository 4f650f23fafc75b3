package ui

import (
	"testing"

	"gioui.org/widget"

	"sagaview/internal/scopelog"
)

func TestPruneScopeClicks(t *testing.T) {
	v := &View{scopeClicks: make(map[string]*widget.Clickable)}

	v.scopeClick("m-old")
	kept := v.scopeClick("m-kept")

	live := []*scopelog.Scope{{MessageID: "m-kept"}, {MessageID: "m-new"}}
	v.pruneScopeClicks(live)

	if _, ok := v.scopeClicks["m-old"]; ok {
		t.Error("clickable for a departed scope survived pruning")
	}
	if got := v.scopeClick("m-kept"); got != kept {
		t.Error("clickable for a live scope was not kept stable")
	}

	// No pruning while every clickable's scope is still present.
	v.scopeClick("m-new")
	v.pruneScopeClicks(live)
	if len(v.scopeClicks) != 2 {
		t.Errorf("scopeClicks = %d entries, want 2", len(v.scopeClicks))
	}
}
