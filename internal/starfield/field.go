// Package starfield animates the decorative background of drifting stars.
package starfield

import (
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultDensity is the canvas area, in square pixels, per star.
	DefaultDensity = 1000.0

	// MaxRadius is the largest star radius in pixels.
	MaxRadius = 1.5

	// MaxVelocity is the fastest upward drift in pixels per frame.
	MaxVelocity = 0.05
)

// Star is one particle.
type Star struct {
	X        float64
	Y        float64
	Radius   float64
	Alpha    float64
	Velocity float64
}

// Field owns the particle buffer for a canvas of a given pixel size.
// It is not safe for concurrent use.
type Field struct {
	width   float64
	height  float64
	density float64
	stars   []Star
	rng     *rand.Rand
}

// Option configures a Field.
type Option func(*Field)

// WithDensity sets the canvas area per star.
func WithDensity(d float64) Option {
	return func(f *Field) {
		if d > 0 {
			f.density = d
		}
	}
}

// WithRand sets the random source.
func WithRand(r *rand.Rand) Option {
	return func(f *Field) {
		f.rng = r
	}
}

// WithSeed seeds a private random source.
func WithSeed(seed int64) Option {
	return func(f *Field) {
		f.rng = rand.New(rand.NewSource(seed))
	}
}

// NewField creates an empty field. Call Resize before the first Step.
func NewField(opts ...Option) *Field {
	f := &Field{
		density: DefaultDensity,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.rng == nil {
		f.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return f
}

// Resize sets the canvas size and regenerates every star.
func (f *Field) Resize(width, height float64) {
	if width < 0 || math.IsNaN(width) {
		width = 0
	}
	if height < 0 || math.IsNaN(height) {
		height = 0
	}
	f.width = width
	f.height = height

	count := int(math.Floor(width * height / f.density))
	f.stars = make([]Star, count)
	for i := range f.stars {
		f.stars[i] = Star{
			X:        f.rng.Float64() * width,
			Y:        f.rng.Float64() * height,
			Radius:   f.rng.Float64() * MaxRadius,
			Alpha:    f.rng.Float64(),
			Velocity: f.rng.Float64() * MaxVelocity,
		}
	}
}

// Step advances every star by one frame. Stars that drift above the top
// edge re-enter at the bottom at a new random column.
func (f *Field) Step() {
	for i := range f.stars {
		s := &f.stars[i]
		s.Y -= s.Velocity
		if s.Y < 0 {
			s.Y = f.height
			s.X = f.rng.Float64() * f.width
		}
	}
}

// Draw clears c and plots every star onto it.
func (f *Field) Draw(c *Canvas) {
	c.Clear()
	for _, s := range f.stars {
		c.Plot(s.X, s.Y, s.Radius, s.Alpha)
	}
}

// Stars returns a copy of the current particles.
func (f *Field) Stars() []Star {
	out := make([]Star, len(f.stars))
	copy(out, f.stars)
	return out
}

// Len returns the number of stars.
func (f *Field) Len() int {
	return len(f.stars)
}

// Size returns the canvas size in pixels.
func (f *Field) Size() (width, height float64) {
	return f.width, f.height
}

// Density returns the canvas area per star.
func (f *Field) Density() float64 {
	return f.density
}
