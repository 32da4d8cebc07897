package multiview

import (
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/bodyscan/keypoint"
)

// scaleSampleCount bounds how many leading frame slots feed the pixel-space
// height estimate.
const scaleSampleCount = 50

// homogeneousWEpsilon separates a usable homogeneous solution from a point
// at infinity.
const homogeneousWEpsilon = 1e-12

// getCrossProductMatFromPoint returns the cross product with point p matrix.
func getCrossProductMatFromPoint(p r3.Vector) *mat.Dense {
	cross := mat.NewDense(3, 3, nil)
	cross.Set(0, 1, -p.Z)
	cross.Set(0, 2, p.Y)
	cross.Set(1, 0, p.Z)
	cross.Set(1, 2, -p.X)
	cross.Set(2, 0, -p.Y)
	cross.Set(2, 1, p.X)
	return cross
}

// triangulatePair solves the linear system stacking the cross-product
// constraints of one pixel pair against two projection matrices. The
// homogeneous solution is the right singular vector of the smallest
// singular value.
func triangulatePair(p0, p1 *mat.Dense, px0, px1 r2.Point) (r3.Vector, error) {
	pt0Cross := getCrossProductMatFromPoint(r3.Vector{X: px0.X, Y: px0.Y, Z: 1})
	pt1Cross := getCrossProductMatFromPoint(r3.Vector{X: px1.X, Y: px1.Y, Z: 1})
	pt0CrossP := mat.NewDense(3, 4, nil)
	pt0CrossP.Mul(pt0Cross, p0)
	pt1CrossP := mat.NewDense(3, 4, nil)
	pt1CrossP.Mul(pt1Cross, p1)
	var A mat.Dense
	A.Stack(pt0CrossP, pt1CrossP)

	var svd mat.SVD
	if ok := svd.Factorize(&A, mat.SVDFull); !ok {
		return r3.Vector{}, errors.New("failed to factorize A")
	}
	const rcond = 1e-15
	if rank := svd.Rank(rcond); rank == 0 {
		return r3.Vector{}, errors.New("zero rank system")
	}
	var V mat.Dense
	svd.VTo(&V)
	_, cols := V.Dims()
	pt3d := V.ColView(cols - 1)
	w := pt3d.AtVec(3)
	if w > -homogeneousWEpsilon && w < homogeneousWEpsilon {
		return r3.Vector{}, nil
	}
	return r3.Vector{
		X: pt3d.AtVec(0) / w,
		Y: pt3d.AtVec(1) / w,
		Z: pt3d.AtVec(2) / w,
	}, nil
}

// usable reports whether a normalized keypoint can feed triangulation:
// detected and inside the unit square.
func usable(p r2.Point) bool {
	return keypoint.Detected(p) && p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// estimateScale derives centimeters-per-unit from the pixel-space height of
// the subject in the front view against the reference body height. Slots
// with y on or outside the frame edge are ignored. Returns 1 when no
// estimate is possible.
func (r *Rig) estimateScale(view keypoint.Keypoints2D, refHeightCm float64) float64 {
	if refHeightCm <= 0 {
		return 1
	}
	minY, maxY := 2.0, -1.0
	n := len(view)
	if n > scaleSampleCount {
		n = scaleSampleCount
	}
	for i := 0; i < n; i++ {
		y := view[i].Y
		if y <= 0 || y >= 1 {
			continue
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if maxY <= minY {
		return 1
	}
	estimatedHeight := (maxY - minY) * r.distance
	if estimatedHeight <= 0 {
		return 1
	}
	return refHeightCm / estimatedHeight
}

// Triangulate lifts three keypoint frames into a 3D skeleton in
// centimeters, y up, and returns the metric scale it applied. The frames
// must arrive in rig order: front, then the two side views. Any other view
// count yields an all-zero skeleton at scale 1. Slots that are missing,
// undetected, or outside the unit square in either of the first two views
// come back as the zero point.
func (r *Rig) Triangulate(views []keypoint.Keypoints2D, refHeightCm float64) (keypoint.Skeleton, float64) {
	skeleton := make(keypoint.Skeleton, keypoint.FrameSize)
	if len(views) != ViewCount {
		return skeleton, 1
	}

	scale := r.estimateScale(views[0], refHeightCm)
	w := float64(r.intrinsics.Width)
	h := float64(r.intrinsics.Height)

	for i := 0; i < keypoint.FrameSize; i++ {
		inAllViews := true
		for _, view := range views {
			if i >= len(view) {
				inAllViews = false
				break
			}
		}
		if !inAllViews || !usable(views[0][i]) || !usable(views[1][i]) {
			continue
		}

		px0 := r2.Point{X: views[0][i].X * w, Y: views[0][i].Y * h}
		px1 := r2.Point{X: views[1][i].X * w, Y: views[1][i].Y * h}
		pt, err := triangulatePair(r.projections[0], r.projections[1], px0, px1)
		if err != nil {
			continue
		}
		skeleton[i] = r3.Vector{X: pt.X * scale, Y: -pt.Y * scale, Z: pt.Z * scale}
	}
	return skeleton, scale
}
