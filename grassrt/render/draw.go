package render

import (
	"github.com/gekko3d/meadow/grassrt/chunk"
	"github.com/gekko3d/meadow/grassrt/core"
	"github.com/go-gl/mathgl/mgl32"
)

type LOD int

const (
	LODHigh LOD = iota
	LODLow
)

func (l LOD) String() string {
	if l == LODLow {
		return "low"
	}
	return "high"
}

// SelectLOD picks the low mesh strictly beyond threshold.
func SelectLOD(distance, threshold float32) LOD {
	if distance > threshold {
		return LODLow
	}
	return LODHigh
}

// Mesh and Material identify GPU-side resources owned by the backend.
type Mesh struct {
	ID     string
	Name   string
	Bounds core.AABB
}

type Material struct {
	ID   string
	Name string
}

// DrawCall is one instanced batch for a visible chunk. FirstInstance is the
// sum of the instance counts of the batches submitted before it in the same
// frame, so a backend can pack every batch into one upload.
type DrawCall struct {
	Chunk         chunk.Coord
	LOD           LOD
	Mesh          Mesh
	Material      Material
	Instances     []mgl32.Mat4
	FirstInstance int
	Bounds        core.AABB
	Distance      float32
}

type Submitter interface {
	Submit(dc DrawCall) error
}

type SubmitterFunc func(dc DrawCall) error

func (f SubmitterFunc) Submit(dc DrawCall) error { return f(dc) }

// Recorder keeps every submitted call. Instances alias the cached buffers.
type Recorder struct {
	Calls []DrawCall
}

func (r *Recorder) Submit(dc DrawCall) error {
	r.Calls = append(r.Calls, dc)
	return nil
}

func (r *Recorder) Reset() {
	r.Calls = r.Calls[:0]
}

// Instances is the total instance count recorded.
func (r *Recorder) Instances() int {
	n := 0
	for _, dc := range r.Calls {
		n += len(dc.Instances)
	}
	return n
}
