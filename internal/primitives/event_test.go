package primitives

import (
	"testing"
	"time"
)

func TestNewEvent(t *testing.T) {
	e := NewEvent("test", 42)
	if e.Type != "test" {
		t.Errorf("got Type=%q want test", e.Type)
	}
	if v, ok := e.Data.(int); !ok || v != 42 {
		t.Errorf("got Data=%v (%T) want 42", e.Data, e.Data)
	}
}

func TestEventImmutability(t *testing.T) {
	e := NewEvent("test", 42)
	eCopy := e
	eCopy.Type = "modified"
	eCopy.Data = "changed"
	if e.Type != "test" {
		t.Error("original Type was mutated")
	}
	if v, ok := e.Data.(int); !ok || v != 42 {
		t.Error("original Data was mutated")
	}
}

func TestSyntheticEventTags(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{DoneInvokeEvent("tween"), "done.invoke.tween"},
		{ErrorInvokeEvent("load"), "error.invoke.load"},
		{DoneStateEvent("loaded.hatching"), "done.state.loaded.hatching"},
		{AfterEvent("pausing", 1500*time.Millisecond), "after.1.5s.pausing"},
		{AfterEvent("pausing", 1500*time.Microsecond), "after.1.5ms.pausing"},
		{AfterEvent("pausing", 1900*time.Microsecond), "after.1.9ms.pausing"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q want %q", tt.got, tt.want)
		}
	}
	for _, typ := range []string{DoneInvokeEvent("x"), ErrorInvokeEvent("x"), AfterEvent("a", time.Millisecond)} {
		if !NewEvent(typ, nil).IsSynthetic() {
			t.Errorf("IsSynthetic(%q) = false", typ)
		}
	}
	if NewEvent("Play", nil).IsSynthetic() {
		t.Error("IsSynthetic(Play) = true")
	}
}
