package bodymesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/golang/geo/r3"
)

func vec32(v r3.Vector) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// appendEllipsoid tessellates an axis-aligned ellipsoid into latitude rings
// and longitude sectors. Each ring repeats its first vertex at the seam so
// rows stay a fixed sectors+1 wide. Normals are the ellipsoid gradient.
func (m *Mesh) appendEllipsoid(center, radii r3.Vector, rings, sectors int) {
	base := uint32(len(m.Positions))
	for ring := 0; ring <= rings; ring++ {
		theta := float64(ring) * math.Pi / float64(rings)
		sinTheta, cosTheta := math.Sin(theta), math.Cos(theta)
		for sector := 0; sector <= sectors; sector++ {
			phi := float64(sector) * 2 * math.Pi / float64(sectors)
			p := r3.Vector{
				X: center.X + radii.X*sinTheta*math.Cos(phi),
				Y: center.Y + radii.Y*cosTheta,
				Z: center.Z + radii.Z*sinTheta*math.Sin(phi),
			}
			n := r3.Vector{
				X: (p.X - center.X) / (radii.X * radii.X),
				Y: (p.Y - center.Y) / (radii.Y * radii.Y),
				Z: (p.Z - center.Z) / (radii.Z * radii.Z),
			}.Normalize()
			m.Positions = append(m.Positions, vec32(p))
			m.Normals = append(m.Normals, vec32(n))
		}
	}
	for ring := 0; ring < rings; ring++ {
		for sector := 0; sector < sectors; sector++ {
			current := base + uint32(ring*(sectors+1)+sector)
			next := current + uint32(sectors) + 1
			m.Indices = append(m.Indices,
				current, next, current+1,
				current+1, next, next+1,
			)
		}
	}
}

// appendCappedCylinder builds a closed tube from start to end. Wall rings
// carry radial normals and the caps carry axial ones, so the rim vertices
// are duplicated rather than shared between wall and cap.
func (m *Mesh) appendCappedCylinder(start, end r3.Vector, radius float64, sectors int) {
	axis := end.Sub(start)
	length := axis.Norm()
	if length <= 0 || radius <= 0 {
		return
	}
	u := axis.Mul(1 / length)
	ref := r3.Vector{Y: 1}
	if math.Abs(u.Y) >= 0.99 {
		ref = r3.Vector{X: 1}
	}
	v := u.Cross(ref).Normalize()
	w := u.Cross(v)
	dir := func(sector int) r3.Vector {
		phi := float64(sector) * 2 * math.Pi / float64(sectors)
		return v.Mul(math.Cos(phi)).Add(w.Mul(math.Sin(phi)))
	}

	base := uint32(len(m.Positions))
	for _, at := range []r3.Vector{start, end} {
		for sector := 0; sector <= sectors; sector++ {
			d := dir(sector)
			m.Positions = append(m.Positions, vec32(at.Add(d.Mul(radius))))
			m.Normals = append(m.Normals, vec32(d))
		}
	}
	ringStride := uint32(sectors) + 1
	for sector := 0; sector < sectors; sector++ {
		b0 := base + uint32(sector)
		b1 := b0 + 1
		t0 := b0 + ringStride
		t1 := t0 + 1
		m.Indices = append(m.Indices, b0, b1, t0, b1, t1, t0)
	}

	appendCap := func(at, normal r3.Vector, flip bool) {
		center := uint32(len(m.Positions))
		m.Positions = append(m.Positions, vec32(at))
		m.Normals = append(m.Normals, vec32(normal))
		for sector := 0; sector <= sectors; sector++ {
			m.Positions = append(m.Positions, vec32(at.Add(dir(sector).Mul(radius))))
			m.Normals = append(m.Normals, vec32(normal))
		}
		for sector := 0; sector < sectors; sector++ {
			a := center + 1 + uint32(sector)
			b := a + 1
			if flip {
				m.Indices = append(m.Indices, center, b, a)
			} else {
				m.Indices = append(m.Indices, center, a, b)
			}
		}
	}
	appendCap(start, u.Mul(-1), true)
	appendCap(end, u, false)
}
