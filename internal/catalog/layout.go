package catalog

import (
	"github.com/jakecoffman/cp"

	"github.com/comalice/storybook/internal/characters"
)

// Layout maps a demo's design coordinates onto a canvas.
type Layout struct {
	Width float64
	Scale float64
}

// ComputeLayout fits demo into a canvas of the given width. Demos without a
// design width are drawn unscaled.
func ComputeLayout(demo DemoSpec, canvasWidth float64) Layout {
	l := Layout{Width: canvasWidth, Scale: 1}
	if demo.Width > 0 && canvasWidth > 0 {
		l.Scale = canvasWidth / demo.Width
	}
	return l
}

// Place converts a design-space point.
func (l Layout) Place(x, y float64) cp.Vector {
	return cp.Vector{X: x, Y: y}.Mult(l.Scale)
}

// Input is the factory input for spec placed on the canvas.
func (l Layout) Input(demo DemoSpec, spec ActorSpec) characters.Input {
	return characters.Input{
		Position: l.Place(spec.X, spec.Y),
		GroundY:  demo.GroundY * l.Scale,
		Params:   spec.Params,
	}
}
