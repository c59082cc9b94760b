package tween

import (
	"errors"
	"math"
	"testing"
	"time"
)

const eps = 1e-9

func TestComputeLinear(t *testing.T) {
	cfg := MustConfig(Values{X: 100}, time.Second, LinearName)
	start := Values{X: 0}

	tests := []struct {
		elapsed time.Duration
		want    float64
	}{
		{0, 0},
		{500 * time.Millisecond, 50},
		{time.Second, 100},
		{1500 * time.Millisecond, 100},
		{-time.Second, 0},
	}
	for _, tt := range tests {
		got := Compute(cfg, start, tt.elapsed)
		if math.Abs(got[X]-tt.want) > eps {
			t.Errorf("Compute(%v)[x] = %v, want %v", tt.elapsed, got[X], tt.want)
		}
		if _, ok := got[Y]; ok {
			t.Errorf("Compute(%v) produced unconfigured property y", tt.elapsed)
		}
	}
	if got := Compute(cfg, start, time.Second)[X]; got != 100 {
		t.Errorf("x at duration = %v, want exactly 100", got)
	}
}

func TestEasings(t *testing.T) {
	tests := []struct {
		name string
		fn   Easing
		in   float64
		want float64
	}{
		{"linear mid", Linear, 0.25, 0.25},
		{"cubic start", EaseOutCubic, 0, 0},
		{"cubic mid", EaseOutCubic, 0.5, 0.875},
		{"cubic end", EaseOutCubic, 1, 1},
		{"bounce start", BounceEaseOut, 0, 0},
		{"bounce end", BounceEaseOut, 1, 1},
		{"bounce first boundary", BounceEaseOut, 1 / 2.75, 1},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestBounceEaseOutContinuity(t *testing.T) {
	const h = 1e-9
	for _, b := range []float64{1 / 2.75, 2 / 2.75, 2.5 / 2.75} {
		left, right := BounceEaseOut(b-h), BounceEaseOut(b+h)
		if math.Abs(left-right) > 1e-6 {
			t.Errorf("discontinuity at %v: %v vs %v", b, left, right)
		}
	}
}

func TestRotationTargetsExact(t *testing.T) {
	for _, target := range []float64{720, -720} {
		cfg := MustConfig(Values{Rotation: target}, 800*time.Millisecond, BounceEaseOutName)
		got := Compute(cfg, Values{Rotation: 0.1}, 800*time.Millisecond)[Rotation]
		if got != target {
			t.Errorf("rotation = %v, want exactly %v", got, target)
		}
	}
}

func TestZeroDurationCompletesImmediately(t *testing.T) {
	cfg := MustConfig(Values{Opacity: 0}, 0, "")
	if got := Compute(cfg, Values{Opacity: 1}, 0)[Opacity]; got != 0 {
		t.Errorf("opacity = %v, want 0", got)
	}
}

func TestNewConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		targets Values
		d       time.Duration
		easing  string
		wantErr bool
	}{
		{"valid", Values{X: 1}, time.Second, EaseOutCubicName, false},
		{"no properties", Values{}, time.Second, "", true},
		{"unknown property", Values{"scale": 2}, time.Second, "", true},
		{"negative duration", Values{Y: 1}, -time.Second, "", true},
		{"unknown easing", Values{Y: 1}, time.Second, "elastic", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.targets, tt.d, tt.easing)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if _, err := NewConfig(nil, time.Second, ""); !errors.Is(err, ErrNoProperties) {
		t.Errorf("NewConfig(nil) = %v, want ErrNoProperties", err)
	}
}

func TestNewConfigCopiesTargets(t *testing.T) {
	targets := Values{X: 1}
	cfg := MustConfig(targets, time.Second, "")
	targets[X] = 99
	if cfg.Targets[X] != 1 {
		t.Error("config shares the caller's map")
	}
}

func TestRelativeTargets(t *testing.T) {
	cfg := MustConfig(Values{X: 60, Opacity: -1}, time.Second, LinearName).By()
	start := Values{X: 100, Opacity: 1}
	mid := Compute(cfg, start, 500*time.Millisecond)
	if math.Abs(mid[X]-130) > eps || math.Abs(mid[Opacity]-0.5) > eps {
		t.Errorf("mid = %v", mid)
	}
	end := Resolve(cfg, start)
	if end[X] != 160 || end[Opacity] != 0 {
		t.Errorf("end = %v", end)
	}
}
