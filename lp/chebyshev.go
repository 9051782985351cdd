package lp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyPolyhedron is returned by ChebyshevCenter when the polyhedron has
// no interior point, not even on its boundary.
var ErrEmptyPolyhedron = errors.New("lp: polyhedron is empty")

// emptyMargin is the violation margin below which the polyhedron is declared
// empty. A nonempty polyhedron has inscribed radius >= 0 exactly; the margin
// only absorbs solver roundoff on boundary-thin systems.
const emptyMargin = -1e-7

// ChebyshevCenter computes the Chebyshev center of the polyhedron A x <= b:
// the center of the largest inscribed ball, i.e. the point furthest away from
// all inequality planes.
//
// The center solves
//
//	maximize  r
//	s.t.      A_i x + ||A_i|| r <= b_i   for all rows i
//
// over the variables (x, r). See Boyd & Vandenberghe, section 4.3.1.
//
// Returns the center and the inscribed radius. The radius is negative when
// every point violates some inequality by at most |r|; below emptyMargin the
// polyhedron is reported empty.
func ChebyshevCenter(a *mat.Dense, b []float64) ([]float64, float64, error) {
	rows, n := a.Dims()
	if len(b) != rows {
		return nil, 0, errors.New("lp: A and b dimensions disagree")
	}

	g := mat.NewDense(rows, n+1, nil)
	for i := 0; i < rows; i++ {
		norm := 0.0
		for j := 0; j < n; j++ {
			v := a.At(i, j)
			g.Set(i, j, v)
			norm += v * v
		}
		g.Set(i, n, math.Sqrt(norm))
	}

	cost := make([]float64, n+1)
	cost[n] = -1 // maximize the radius

	z, err := Solve(&Problem{Cost: cost, G: g, H: b})
	if err != nil {
		return nil, 0, err
	}
	radius := z[n]
	if radius < emptyMargin {
		return nil, radius, ErrEmptyPolyhedron
	}
	return z[:n], radius, nil
}
