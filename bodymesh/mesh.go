// Package bodymesh converts a 3D body skeleton into a procedural triangle
// mesh built from ellipsoid bulks and capped limb cylinders.
package bodymesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh holds triangle geometry in GPU buffer layout: positions and matching
// per-vertex outward unit normals, plus a uint32 triangle list.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Indices   []uint32
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Empty reports whether the mesh has no renderable geometry.
func (m *Mesh) Empty() bool {
	return len(m.Positions) == 0 || len(m.Indices) == 0
}

// BoundingBox returns the axis-aligned min and max corners over all vertex
// positions. Both corners are zero for an empty mesh.
func (m *Mesh) BoundingBox() (mgl32.Vec3, mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	bbMin, bbMax := m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < bbMin[axis] {
				bbMin[axis] = p[axis]
			}
			if p[axis] > bbMax[axis] {
				bbMax[axis] = p[axis]
			}
		}
	}
	return bbMin, bbMax
}

// largestExtent returns the longest bounding box edge.
func (m *Mesh) largestExtent() float64 {
	bbMin, bbMax := m.BoundingBox()
	extent := float64(bbMax[0] - bbMin[0])
	if e := float64(bbMax[1] - bbMin[1]); e > extent {
		extent = e
	}
	if e := float64(bbMax[2] - bbMin[2]); e > extent {
		extent = e
	}
	return extent
}

// recenterAndScale translates every vertex so the bounding box centers on
// the origin, then scales uniformly. Unit normals are unaffected by either.
func (m *Mesh) recenterAndScale(scale float32) {
	bbMin, bbMax := m.BoundingBox()
	var center mgl32.Vec3
	for axis := 0; axis < 3; axis++ {
		center[axis] = (bbMin[axis] + bbMax[axis]) / 2
	}
	for i, p := range m.Positions {
		m.Positions[i] = p.Sub(center).Mul(scale)
	}
}
