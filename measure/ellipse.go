package measure

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	bsutils "go.viam.com/bodyscan/utils"
)

// fitEllipse recovers the semi-axis lengths of the least-squares algebraic
// conic through the points. The points are centered on their centroid and
// scaled to unit mean radius before the fit so the design matrix stays well
// conditioned; semi-axes are invariant under the translation and scale back
// with the points.
func fitEllipse(points []r2.Point) (float64, float64, error) {
	n := len(points)
	if n < 5 {
		return 0, 0, errors.Errorf("need at least 5 points to fit an ellipse, got %d", n)
	}
	var cx, cy float64
	for _, p := range points {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(n)
	cy /= float64(n)
	var scale float64
	for _, p := range points {
		scale += math.Hypot(p.X-cx, p.Y-cy)
	}
	scale /= float64(n)
	if scale <= 0 {
		return 0, 0, errors.New("ellipse fit points are coincident")
	}

	design := mat.NewDense(n, 6, nil)
	for i, p := range points {
		u := (p.X - cx) / scale
		v := (p.Y - cy) / scale
		design.SetRow(i, []float64{u * u, u * v, v * v, u, v, 1})
	}
	var svd mat.SVD
	if !svd.Factorize(design, mat.SVDFull) {
		return 0, 0, errors.New("failed to factorize ellipse design matrix")
	}
	var v mat.Dense
	svd.VTo(&v)
	_, cols := v.Dims()

	// conic coefficients A..F, smallest singular direction
	var coef [6]float64
	for i := range coef {
		coef[i] = v.At(i, cols-1)
	}
	qa, qb, qc := coef[0], coef[1]/2, coef[2]
	qd, qe, qf := coef[3]/2, coef[4]/2, coef[5]

	detQuad := qa*qc - qb*qb
	if detQuad <= 0 {
		return 0, 0, errors.New("fitted conic is not an ellipse")
	}
	detConic := qa*(qc*qf-qe*qe) - qb*(qb*qf-qe*qd) + qd*(qb*qe-qc*qd)

	tr := qa + qc
	disc := math.Sqrt((qa-qc)*(qa-qc) + 4*qb*qb)
	lambda1 := (tr + disc) / 2
	lambda2 := (tr - disc) / 2
	aSq := -detConic / (detQuad * lambda1)
	bSq := -detConic / (detQuad * lambda2)
	if !isPositiveFinite(aSq) || !isPositiveFinite(bSq) {
		return 0, 0, errors.New("fitted ellipse has degenerate axes")
	}
	return math.Sqrt(aSq) * scale, math.Sqrt(bSq) * scale, nil
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// ramanujanCircumference approximates an ellipse perimeter with Ramanujan's
// second formula. For a circle it reduces to 2πr.
func ramanujanCircumference(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 0
	}
	h := bsutils.Square((a - b) / (a + b))
	return math.Pi * (a + b) * (1 + 3*h/(10+math.Sqrt(4-3*h)))
}
