package placement

import (
	"math/rand/v2"

	"github.com/gekko3d/meadow/grassrt/chunk"
)

// randSource is a PCG stream keyed by (chunk seed, cell index). It lives on
// the stack of the filling goroutine.
type randSource struct {
	rand.PCG
}

// unit returns a float in [0, 1) with 24 bits of precision.
func (r *randSource) unit() float32 {
	return float32(r.Uint64()>>40) / (1 << 24)
}

// chunkSeed mixes the generator seed with a chunk coordinate.
func chunkSeed(seed uint64, c chunk.Coord) uint64 {
	h := mix(seed ^ 0x9e3779b97f4a7c15)
	h = mix(h ^ uint64(uint32(c.X)))
	h = mix(h ^ uint64(uint32(c.Y))<<32)
	return h
}

// mix is the splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
