package tween

import (
	"fmt"
	"sort"
)

// Easing maps linear progress in [0, 1] to eased progress.
type Easing func(t float64) float64

// Names of the built-in easings.
const (
	LinearName        = "linear"
	EaseOutCubicName  = "easeOutCubic"
	BounceEaseOutName = "bounceEaseOut"
)

func Linear(t float64) float64 { return t }

// EaseOutCubic decelerates to rest: 1 - (1-t)^3.
func EaseOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

// BounceEaseOut is the four-segment bounce, with segment boundaries at
// 1/2.75, 2/2.75 and 2.5/2.75.
func BounceEaseOut(t float64) float64 {
	const (
		n1 = 7.5625
		d1 = 2.75
	)
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

var easings = map[string]Easing{
	LinearName:        Linear,
	EaseOutCubicName:  EaseOutCubic,
	BounceEaseOutName: BounceEaseOut,
}

// EasingByName looks up a built-in easing. The empty name is linear.
func EasingByName(name string) (Easing, error) {
	if name == "" {
		return Linear, nil
	}
	e, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("tween: unknown easing %q (have %v)", name, EasingNames())
	}
	return e, nil
}

// EasingNames lists the built-in easings.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
