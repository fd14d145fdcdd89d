package noise

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/ojrac/opensimplex-go"
)

var ErrInvalidParams = errors.New("invalid noise params")

// Sampler maps a world XZ position to a scalar.
type Sampler interface {
	Sample(x, z float32) float32
}

type SamplerFunc func(x, z float32) float32

func (f SamplerFunc) Sample(x, z float32) float32 { return f(x, z) }

// Bounded is implemented by samplers that know the range of values Sample
// can return.
type Bounded interface {
	Bounds() (lo, hi float32)
}

type constSampler float32

func (c constSampler) Sample(x, z float32) float32 { return float32(c) }
func (c constSampler) Bounds() (lo, hi float32)    { return float32(c), float32(c) }

// Const returns a sampler that ignores its input.
func Const(v float32) Sampler {
	return constSampler(v)
}

// Params describes a baked noise texture. Texel (px, py) holds
// noise(((Origin + p/Size) / Scale) * Frequency) * Amplitude; Height scales
// texels into world units on lookup.
type Params struct {
	Size      int        `yaml:"size"`
	Origin    mgl32.Vec2 `yaml:"origin,flow"`
	Scale     float32    `yaml:"scale"`
	Amplitude float32    `yaml:"amplitude"`
	Frequency float32    `yaml:"frequency"`
	Height    float32    `yaml:"height"`
	Seed      int64      `yaml:"seed"`
	// Flat bakes an all-zero texture.
	Flat bool `yaml:"flat"`
}

func (p Params) Validate() error {
	if p.Size < 1 {
		return fmt.Errorf("size %d must be at least 1: %w", p.Size, ErrInvalidParams)
	}
	if !p.Flat && p.Scale == 0 {
		return fmt.Errorf("scale must be non-zero: %w", ErrInvalidParams)
	}
	return nil
}

// Field is a square texture stretched over a world XZ rectangle.
type Field struct {
	Size     int
	Pix      []float32
	WorldMin mgl32.Vec2
	WorldMax mgl32.Vec2
	Height   float32
}

// Generate bakes OpenSimplex noise over [worldMin, worldMax].
func Generate(p Params, worldMin, worldMax mgl32.Vec2) (*Field, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f, err := newField(p.Size, worldMin, worldMax, p.Height)
	if err != nil {
		return nil, err
	}
	if p.Flat {
		return f, nil
	}

	gen := opensimplex.NewNormalized32(p.Seed)
	size := float32(p.Size)
	for py := 0; py < p.Size; py++ {
		for px := 0; px < p.Size; px++ {
			x := (p.Origin[0] + float32(px)/size) / p.Scale * p.Frequency
			y := (p.Origin[1] + float32(py)/size) / p.Scale * p.Frequency
			f.Pix[py*p.Size+px] = gen.Eval2(x, y) * p.Amplitude
		}
	}
	return f, nil
}

func newField(size int, worldMin, worldMax mgl32.Vec2, height float32) (*Field, error) {
	if !(worldMax[0] > worldMin[0]) || !(worldMax[1] > worldMin[1]) {
		return nil, fmt.Errorf("empty world rect %v..%v: %w", worldMin, worldMax, ErrInvalidParams)
	}
	return &Field{
		Size:     size,
		Pix:      make([]float32, size*size),
		WorldMin: worldMin,
		WorldMax: worldMax,
		Height:   height,
	}, nil
}

// At returns the raw texel, clamping out of range indices.
func (f *Field) At(px, py int) float32 {
	px = clampInt(px, 0, f.Size-1)
	py = clampInt(py, 0, f.Size-1)
	return f.Pix[py*f.Size+px]
}

// Sample bilinearly filters the texture at a world position. Positions
// outside the rectangle take the value of the nearest edge.
func (f *Field) Sample(x, z float32) float32 {
	if f.Size == 1 {
		return f.Pix[0] * f.Height
	}
	last := float32(f.Size - 1)
	u := mgl32.Clamp((x-f.WorldMin[0])/(f.WorldMax[0]-f.WorldMin[0]), 0, 1) * last
	v := mgl32.Clamp((z-f.WorldMin[1])/(f.WorldMax[1]-f.WorldMin[1]), 0, 1) * last

	x0, y0 := int(u), int(v)
	tx, ty := u-float32(x0), v-float32(y0)

	a := f.At(x0, y0)*(1-tx) + f.At(x0+1, y0)*tx
	b := f.At(x0, y0+1)*(1-tx) + f.At(x0+1, y0+1)*tx
	return (a*(1-ty) + b*ty) * f.Height
}

// Range returns the smallest and largest texel.
func (f *Field) Range() (lo, hi float32) {
	lo, hi = f.Pix[0], f.Pix[0]
	for _, v := range f.Pix[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// Bounds is Range in world units, so every Sample lies within it.
func (f *Field) Bounds() (lo, hi float32) {
	lo, hi = f.Range()
	lo, hi = lo*f.Height, hi*f.Height
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
