package polygon

import (
	"errors"
	"fmt"
	"sort"

	"github.com/akmonengine/polyproj/lp"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// ErrEmptyPolygon is returned by HullFromHalfspaces when the inequality
// system has no solution.
var ErrEmptyPolygon = errors.New("polygon: halfspace system is empty")

// Hull returns the convex hull of the given points in counterclockwise order.
// Collinear and duplicate points are dropped. Inputs with fewer than three
// points are returned as-is (copied).
func Hull(points []mgl64.Vec2) []mgl64.Vec2 {
	if len(points) < 3 {
		out := make([]mgl64.Vec2, len(points))
		copy(out, points)
		return out
	}
	idx := hullIndices(points)
	out := make([]mgl64.Vec2, len(idx))
	for k, i := range idx {
		out[k] = points[i]
	}
	return out
}

// hullIndices computes the convex hull by Andrew's monotone chain and returns
// indices into points, counterclockwise starting from the lexicographically
// smallest point. Exact duplicates are dropped before the chains run; they
// carry no cross-product signal and would survive into the output otherwise.
func hullIndices(points []mgl64.Vec2) []int {
	sorted := make([]int, len(points))
	for i := range sorted {
		sorted[i] = i
	}
	sort.Slice(sorted, func(a, b int) bool {
		return lexLess(points[sorted[a]], points[sorted[b]])
	})
	order := sorted[:0]
	for _, i := range sorted {
		if len(order) > 0 && points[i] == points[order[len(order)-1]] {
			continue
		}
		order = append(order, i)
	}
	if len(order) < 3 {
		out := make([]int, len(order))
		copy(out, order)
		return out
	}

	chain := func(seq []int) []int {
		var out []int
		for _, i := range seq {
			for len(out) >= 2 {
				a, b := points[out[len(out)-2]], points[out[len(out)-1]]
				if cross2(b.Sub(a), points[i].Sub(b)) > 0 {
					break
				}
				out = out[:len(out)-1]
			}
			out = append(out, i)
		}
		return out
	}

	lower := chain(order)
	reversed := make([]int, len(order))
	for i, v := range order {
		reversed[len(order)-1-i] = v
	}
	upper := chain(reversed)

	// Last point of each chain is the first of the other.
	hull := append(lower[:len(lower)-1], upper[:len(upper)-1]...)
	return hull
}

// HullFromHalfspaces enumerates the vertices of the 2D polygon {x : Bx <= c}
// in counterclockwise order.
//
// The enumeration goes through the polar dual: when the origin is interior
// (all c > 0), the rows B_i / c_i are points whose convex hull edges
// correspond one-to-one to the polygon's vertices; each vertex is the
// intersection of the two halfspace boundaries picked out by a hull edge.
// When the origin is not interior, the polygon is first recentered on its
// Chebyshev center.
//
// Returns ErrEmptyPolygon when the system has no solution.
func HullFromHalfspaces(b *mat.Dense, c []float64) ([]mgl64.Vec2, error) {
	rows, cols := b.Dims()
	if cols != 2 {
		return nil, fmt.Errorf("polygon: halfspace matrix must have 2 columns, got %d", cols)
	}
	if len(c) != rows {
		return nil, fmt.Errorf("polygon: B has %d rows, c has %d entries", rows, len(c))
	}

	shift := mgl64.Vec2{}
	cc := make([]float64, rows)
	copy(cc, c)
	if !allPositive(cc) {
		center, _, err := lp.ChebyshevCenter(b, c)
		if err != nil {
			if errors.Is(err, lp.ErrEmptyPolyhedron) || errors.Is(err, lp.ErrInfeasible) {
				return nil, ErrEmptyPolygon
			}
			return nil, err
		}
		shift = mgl64.Vec2{center[0], center[1]}
		for i := 0; i < rows; i++ {
			cc[i] = c[i] - b.At(i, 0)*shift[0] - b.At(i, 1)*shift[1]
		}
		if !allPositive(cc) {
			return nil, ErrEmptyPolygon
		}
	}

	polar := make([]mgl64.Vec2, rows)
	for i := 0; i < rows; i++ {
		polar[i] = mgl64.Vec2{b.At(i, 0) / cc[i], b.At(i, 1) / cc[i]}
	}

	idx := hullIndices(polar)
	if len(idx) < 3 {
		return nil, fmt.Errorf("polygon: halfspace system is unbounded")
	}

	vertices := make([]mgl64.Vec2, 0, len(idx))
	for k := range idx {
		i, j := idx[k], idx[(k+1)%len(idx)]
		bi := mgl64.Vec2{b.At(i, 0), b.At(i, 1)}
		bj := mgl64.Vec2{b.At(j, 0), b.At(j, 1)}
		det := bi[0]*bj[1] - bj[0]*bi[1]
		v := mgl64.Vec2{
			(cc[i]*bj[1] - cc[j]*bi[1]) / det,
			(bi[0]*cc[j] - bj[0]*cc[i]) / det,
		}
		vertices = append(vertices, v.Add(shift))
	}
	return vertices, nil
}

func allPositive(c []float64) bool {
	for _, v := range c {
		if v <= 0 {
			return false
		}
	}
	return true
}
