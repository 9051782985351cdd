// Package lp solves general-form linear programs on top of gonum's simplex
// implementation.
//
// A problem is stated as
//
//	minimize  Cost · x
//	s.t.      G x <= H
//	          A x  = B
//
// with x free, which is the form the projection oracle and the Chebyshev
// center computation both produce. The package converts it to the standard
// form gonum expects and maps the solution back.
//
// References:
//   - Dantzig: "Linear Programming and Extensions" (1963)
package lp

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	convexlp "gonum.org/v1/gonum/optimize/convex/lp"
)

var (
	// ErrInfeasible is returned when the constraint system has no solution.
	ErrInfeasible = errors.New("lp: problem is infeasible")

	// ErrUnbounded is returned when the objective can decrease without bound
	// over the feasible set.
	ErrUnbounded = errors.New("lp: problem is unbounded")
)

// Problem is a linear program in general form. G/H hold the inequality rows,
// A/B the optional equality rows (both nil when absent). All matrices are
// read-only for the duration of Solve, so a Problem may be shared by
// concurrent solves as long as callers pass distinct Cost slices.
type Problem struct {
	Cost []float64
	G    *mat.Dense
	H    []float64
	A    *mat.Dense
	B    []float64
}

// Solve returns an optimal point of the problem.
//
// Variables that appear in no constraint row and zero rows are resolved
// before conversion: an unconstrained variable with nonzero cost makes the
// problem unbounded, a zero row with nonzero right-hand side makes it
// infeasible, and both are dropped otherwise. gonum's simplex rejects
// all-zero rows and columns outright, so this presolve keeps the error
// taxonomy honest.
//
// The conversion to standard form splits every remaining free variable into
// a positive/negative pair and adds one slack per inequality row:
//
//	variables: [ x+ (n)  x- (n)  s (mi) ]
//	rows:      [ G  -G  I ] = H
//	           [ A  -A  0 ] = B
//
// gonum's lp.Convert performs the same transformation but does not expose the
// variable layout, which is needed here to recover x = x+ - x- from the
// standard-form optimum.
//
// Errors are ErrInfeasible, ErrUnbounded, or a wrapped solver failure for
// anything else (numerical breakdown, singular basis). A failure is never
// folded into infeasibility.
func Solve(p *Problem) ([]float64, error) {
	n := len(p.Cost)
	if n == 0 {
		return nil, fmt.Errorf("lp: empty cost vector")
	}
	gi, ge, err := checkDims(p, n)
	if err != nil {
		return nil, err
	}

	// Presolve: classify variables and rows.
	varKept := make([]int, 0, n) // original indices of constrained variables
	for j := 0; j < n; j++ {
		if columnZero(p.G, j) && columnZero(p.A, j) {
			if p.Cost[j] != 0 {
				return nil, ErrUnbounded
			}
			continue // pinned to zero
		}
		varKept = append(varKept, j)
	}
	ineqKept := make([]int, 0, gi)
	for i := 0; i < gi; i++ {
		if rowZero(p.G, i) {
			if p.H[i] < 0 {
				return nil, ErrInfeasible
			}
			continue
		}
		ineqKept = append(ineqKept, i)
	}
	eqKept := make([]int, 0, ge)
	for i := 0; i < ge; i++ {
		if rowZero(p.A, i) {
			if math.Abs(p.B[i]) > 0 {
				return nil, ErrInfeasible
			}
			continue
		}
		eqKept = append(eqKept, i)
	}

	nk := len(varKept)
	mi := len(ineqKept)
	me := len(eqKept)
	if mi+me == 0 {
		return nil, fmt.Errorf("lp: problem has no constraints")
	}

	cols := 2*nk + mi
	aStd := mat.NewDense(mi+me, cols, nil)
	bStd := make([]float64, mi+me)
	for i, row := range ineqKept {
		for j, col := range varKept {
			g := p.G.At(row, col)
			aStd.Set(i, j, g)
			aStd.Set(i, nk+j, -g)
		}
		aStd.Set(i, 2*nk+i, 1) // slack
		bStd[i] = p.H[row]
	}
	for i, row := range eqKept {
		for j, col := range varKept {
			a := p.A.At(row, col)
			aStd.Set(mi+i, j, a)
			aStd.Set(mi+i, nk+j, -a)
		}
		bStd[mi+i] = p.B[row]
	}

	cStd := make([]float64, cols)
	for j, col := range varKept {
		cStd[j] = p.Cost[col]
		cStd[nk+j] = -p.Cost[col]
	}

	_, xStd, err := convexlp.Simplex(cStd, aStd, bStd, 0, nil)
	if err != nil {
		switch {
		case errors.Is(err, convexlp.ErrInfeasible):
			return nil, ErrInfeasible
		case errors.Is(err, convexlp.ErrUnbounded):
			return nil, ErrUnbounded
		default:
			return nil, fmt.Errorf("lp: simplex failed: %w", err)
		}
	}

	x := make([]float64, n)
	for j, col := range varKept {
		x[col] = xStd[j] - xStd[nk+j]
	}
	return x, nil
}

func checkDims(p *Problem, n int) (gi, ge int, err error) {
	if p.G != nil {
		r, c := p.G.Dims()
		if c != n {
			return 0, 0, fmt.Errorf("lp: G has %d columns, cost has %d entries", c, n)
		}
		if len(p.H) != r {
			return 0, 0, fmt.Errorf("lp: G has %d rows, H has %d entries", r, len(p.H))
		}
		gi = r
	}
	if p.A != nil {
		r, c := p.A.Dims()
		if c != n {
			return 0, 0, fmt.Errorf("lp: A has %d columns, cost has %d entries", c, n)
		}
		if len(p.B) != r {
			return 0, 0, fmt.Errorf("lp: A has %d rows, B has %d entries", r, len(p.B))
		}
		ge = r
	}
	return gi, ge, nil
}

func columnZero(m *mat.Dense, j int) bool {
	if m == nil {
		return true
	}
	rows, _ := m.Dims()
	for i := 0; i < rows; i++ {
		if m.At(i, j) != 0 {
			return false
		}
	}
	return true
}

func rowZero(m *mat.Dense, i int) bool {
	cols := m.RawMatrix().Cols
	for j := 0; j < cols; j++ {
		if m.At(i, j) != 0 {
			return false
		}
	}
	return true
}
