package ui

import (
	"testing"

	"github.com/promptgram/promptgram/internal/state"
)

func TestTruncateHeight(t *testing.T) {
	in := "a\nb\nc"

	if got := truncateHeight(in, 5); got != in {
		t.Errorf("truncateHeight under cap = %q, want %q", got, in)
	}
	if got := truncateHeight(in, 2); got != "a\nb" {
		t.Errorf("truncateHeight(2) = %q, want %q", got, "a\nb")
	}
	if got := truncateHeight(in, 0); got != "" {
		t.Errorf("truncateHeight(0) = %q, want empty", got)
	}
	if got := truncateHeight(in, -1); got != "" {
		t.Errorf("truncateHeight(-1) = %q, want empty", got)
	}
}

// Tiny terminals hand panes a height smaller than their own chrome; the
// views must degrade instead of panicking.
func TestViews_TinyTerminal(t *testing.T) {
	sel := state.NewSelection()

	mv := NewMessageViewModel(sel)
	mv = mv.SetSize(10, 2)
	_ = mv.View()

	cl := NewChatListModel()
	cl = cl.SetSize(10, 1)
	_ = cl.View()

	comp := NewComposerModel(sel)
	comp = comp.SetSize(10, 3)
	_ = comp.View()
}
