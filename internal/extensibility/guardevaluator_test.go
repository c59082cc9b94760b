package extensibility

import (
	"testing"

	"github.com/comalice/storybook/internal/primitives"
)

func TestExpressionGuardEvaluator(t *testing.T) {
	ctx := primitives.NewContext(map[string]any{
		"walks":     3,
		"max_walks": 3,
		"y":         410.5,
		"name":      "chick",
		"ready":     true,
		"bad-key":   1,
		"handle":    struct{}{},
	})
	e := NewExpressionGuardEvaluator(nil)

	tests := []struct {
		guard string
		event string
		want  bool
	}{
		{"walks >= max_walks", "", true},
		{"walks < max_walks", "", false},
		{"y >= 400.0", "", true},
		{`name == "chick" && ready`, "", true},
		{`event_type == "Update"`, "Update", true},
		{`event_type == "Update"`, "Play", false},
		{"!ready || walks > 10", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.guard, func(t *testing.T) {
			got, err := e.Eval(ctx, tt.guard, primitives.NewEvent(tt.event, nil))
			if err != nil {
				t.Fatalf("Eval() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpressionGuardEvaluatorErrors(t *testing.T) {
	ctx := primitives.NewContext(map[string]any{"walks": 1})
	e := NewExpressionGuardEvaluator(nil)
	for _, guard := range []string{"unknown_var > 1", "walks +", "walks + 1"} {
		if _, err := e.Eval(ctx, guard, primitives.Event{}); err == nil {
			t.Errorf("Eval(%q) expected error", guard)
		}
	}
}

func TestExpressionGuardEvaluatorDelegates(t *testing.T) {
	e := NewExpressionGuardEvaluator(nil)
	ok, err := e.Eval(nil, func(*primitives.Context, primitives.Event) bool { return true }, primitives.Event{})
	if err != nil || !ok {
		t.Errorf("func guard = %v, %v", ok, err)
	}
	ok, err = e.Eval(nil, nil, primitives.Event{})
	if err != nil || !ok {
		t.Errorf("nil guard = %v, %v", ok, err)
	}
}
