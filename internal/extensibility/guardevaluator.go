package extensibility

import (
	"context"
	"fmt"
	"regexp"

	"github.com/d5/tengo/v2"

	"github.com/comalice/storybook/internal/core"
	"github.com/comalice/storybook/internal/primitives"
)

// EventTypeVar is the variable holding the event tag inside expressions.
const EventTypeVar = "event_type"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExpressionGuardEvaluator evaluates string guards as tengo expressions such
// as "walks >= max_walks" or `event_type == "Play" && ready`. Scalar context
// values (ints, floats, strings, bools) are visible as variables. Non-string
// guards go to the inner evaluator.
type ExpressionGuardEvaluator struct {
	inner core.GuardEvaluator
	ctx   context.Context
}

// NewExpressionGuardEvaluator creates an evaluator falling back to inner, or
// to core.DefaultGuardEvaluator when inner is nil.
func NewExpressionGuardEvaluator(inner core.GuardEvaluator) *ExpressionGuardEvaluator {
	if inner == nil {
		inner = core.DefaultGuardEvaluator{}
	}
	return &ExpressionGuardEvaluator{inner: inner, ctx: context.Background()}
}

// Eval runs string guards through tengo and everything else through the
// inner evaluator.
func (e *ExpressionGuardEvaluator) Eval(ctx *primitives.Context, guard primitives.GuardRef, event primitives.Event) (bool, error) {
	expr, ok := guard.(string)
	if !ok {
		return e.inner.Eval(ctx, guard, event)
	}

	script := tengo.NewScript([]byte("__result := (" + expr + ")"))
	for key, val := range expressionParams(ctx) {
		if err := script.Add(key, val); err != nil {
			return false, fmt.Errorf("guard %q: bind %s: %w", expr, key, err)
		}
	}
	if err := script.Add(EventTypeVar, event.Type); err != nil {
		return false, fmt.Errorf("guard %q: bind %s: %w", expr, EventTypeVar, err)
	}
	compiled, err := script.RunContext(e.ctx)
	if err != nil {
		return false, fmt.Errorf("guard %q: %w", expr, err)
	}
	result, isBool := compiled.Get("__result").Value().(bool)
	if !isBool {
		return false, fmt.Errorf("guard %q: result %v is not a bool", expr, compiled.Get("__result").Value())
	}
	return result, nil
}

// expressionParams selects the context values tengo can bind directly.
func expressionParams(ctx *primitives.Context) map[string]any {
	params := make(map[string]any)
	if ctx == nil {
		return params
	}
	for key, val := range ctx.Snapshot() {
		if !identifier.MatchString(key) || key == EventTypeVar {
			continue
		}
		switch v := val.(type) {
		case int, int64, float64, string, bool:
			params[key] = v
		case float32:
			params[key] = float64(v)
		}
	}
	return params
}
