package bodymesh

import (
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestAppendEllipsoid(t *testing.T) {
	mesh := &Mesh{}
	center := r3.Vector{X: 1, Y: 2, Z: 3}
	radii := r3.Vector{X: 0.5, Y: 1, Z: 0.25}
	mesh.appendEllipsoid(center, radii, 8, 16)

	test.That(t, mesh.VertexCount(), test.ShouldEqual, 9*17)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 6*8*16)
	test.That(t, len(mesh.Normals), test.ShouldEqual, mesh.VertexCount())
	for _, idx := range mesh.Indices {
		test.That(t, int(idx), test.ShouldBeLessThan, mesh.VertexCount())
	}

	// first vertex is the top pole with a straight-up normal
	test.That(t, float64(mesh.Positions[0][0]), test.ShouldAlmostEqual, center.X, 1e-6)
	test.That(t, float64(mesh.Positions[0][1]), test.ShouldAlmostEqual, center.Y+radii.Y, 1e-6)
	test.That(t, float64(mesh.Positions[0][2]), test.ShouldAlmostEqual, center.Z, 1e-6)
	test.That(t, float64(mesh.Normals[0][1]), test.ShouldAlmostEqual, 1, 1e-6)

	bbMin, bbMax := mesh.BoundingBox()
	test.That(t, float64(bbMin[0]), test.ShouldAlmostEqual, center.X-radii.X, 1e-6)
	test.That(t, float64(bbMax[0]), test.ShouldAlmostEqual, center.X+radii.X, 1e-6)
	test.That(t, float64(bbMin[1]), test.ShouldAlmostEqual, center.Y-radii.Y, 1e-6)
	test.That(t, float64(bbMax[1]), test.ShouldAlmostEqual, center.Y+radii.Y, 1e-6)
	test.That(t, float64(bbMin[2]), test.ShouldAlmostEqual, center.Z-radii.Z, 1e-6)
	test.That(t, float64(bbMax[2]), test.ShouldAlmostEqual, center.Z+radii.Z, 1e-6)

	for _, n := range mesh.Normals {
		test.That(t, float64(n.Len()), test.ShouldAlmostEqual, 1.0, 1e-4)
	}
}

func TestAppendCappedCylinder(t *testing.T) {
	mesh := &Mesh{}
	mesh.appendCappedCylinder(r3.Vector{}, r3.Vector{Y: 2}, 0.5, 16)

	// 2 seam-duplicated wall rings plus 2 cap fans
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 4*16+6)
	test.That(t, len(mesh.Indices), test.ShouldEqual, 12*16)
	for _, idx := range mesh.Indices {
		test.That(t, int(idx), test.ShouldBeLessThan, mesh.VertexCount())
	}

	bbMin, bbMax := mesh.BoundingBox()
	test.That(t, float64(bbMin[1]), test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, float64(bbMax[1]), test.ShouldAlmostEqual, 2, 1e-6)
	test.That(t, float64(bbMin[0]), test.ShouldAlmostEqual, -0.5, 1e-6)
	test.That(t, float64(bbMax[0]), test.ShouldAlmostEqual, 0.5, 1e-6)
	test.That(t, float64(bbMin[2]), test.ShouldAlmostEqual, -0.5, 1e-6)
	test.That(t, float64(bbMax[2]), test.ShouldAlmostEqual, 0.5, 1e-6)

	// wall normals are horizontal, cap normals are vertical
	test.That(t, float64(mesh.Normals[0][1]), test.ShouldAlmostEqual, 0, 1e-6)
	capCenter := 2 * 17
	test.That(t, float64(mesh.Normals[capCenter][1]), test.ShouldAlmostEqual, -1, 1e-6)
	topCenter := capCenter + 18
	test.That(t, float64(mesh.Normals[topCenter][1]), test.ShouldAlmostEqual, 1, 1e-6)
}

func TestAppendCappedCylinderSkewAxis(t *testing.T) {
	mesh := &Mesh{}
	start := r3.Vector{X: 1, Y: 1, Z: 1}
	end := r3.Vector{X: 2, Y: 3, Z: 4}
	radius := 0.3
	mesh.appendCappedCylinder(start, end, radius, 16)
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 4*16+6)

	// every wall vertex sits exactly radius away from the axis
	axis := end.Sub(start)
	u := axis.Mul(1 / axis.Norm())
	for i := 0; i < 2*17; i++ {
		p := mesh.Positions[i]
		offset := r3.Vector{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])}.Sub(start)
		perp := offset.Sub(u.Mul(offset.Dot(u)))
		test.That(t, perp.Norm(), test.ShouldAlmostEqual, radius, 1e-6)
	}
}

func TestAppendCappedCylinderDegenerate(t *testing.T) {
	mesh := &Mesh{}
	mesh.appendCappedCylinder(r3.Vector{X: 1}, r3.Vector{X: 1}, 0.5, 16)
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 0)

	mesh.appendCappedCylinder(r3.Vector{}, r3.Vector{Y: 2}, 0, 16)
	test.That(t, mesh.VertexCount(), test.ShouldEqual, 0)
	test.That(t, mesh.Empty(), test.ShouldBeTrue)
}

func TestAppendOffsetsIndices(t *testing.T) {
	mesh := &Mesh{}
	mesh.appendEllipsoid(r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}, 8, 16)
	firstVerts := mesh.VertexCount()
	firstIndices := len(mesh.Indices)
	mesh.appendCappedCylinder(r3.Vector{Y: -2}, r3.Vector{Y: -1}, 0.2, 16)

	test.That(t, mesh.VertexCount(), test.ShouldEqual, firstVerts+4*16+6)
	for _, idx := range mesh.Indices[firstIndices:] {
		test.That(t, int(idx), test.ShouldBeGreaterThanOrEqualTo, firstVerts)
		test.That(t, int(idx), test.ShouldBeLessThan, mesh.VertexCount())
	}
}
