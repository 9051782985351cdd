// Package support answers extreme-point queries on the planar projection of a
// polytope.
//
// The polytope {x : Ax <= b, Cx = d} is projected by y = Ex + f. A support
// query in a 2D direction dir maximizes dir · y, and because the map is
// affine that is the linear objective (Eᵀ dir) · x over the original
// variables. The probe is posed directly over x, with no auxiliary plane
// variables, and the optimum is mapped through the projection on the way out.
//
// References:
//   - Bretl, Lall: "Testing Static Equilibrium for Legged Robots" (2008)
package support

import (
	"errors"
	"fmt"

	"github.com/akmonengine/polyproj/lp"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Oracle poses "maximize dir · y over the projected feasible set" queries.
//
// The constraint matrices are built once and shared read-only across queries;
// each query writes only its own cost vector, so independent Support calls are
// safe to issue concurrently.
type Oracle struct {
	prob lp.Problem // Cost left nil; per-query cost vectors are allocated in Support
	e    *mat.Dense
	f    mgl64.Vec2
	n    int // dimension of the variable x
}

// New builds the query system for the polytope (a, b, c, d) and the
// projection y = e x + f. The equality pair (c, d) may be nil. e must have
// exactly two rows.
//
// When maxRadius > 0, the box |y_i| <= maxRadius is added as inequality rows
// over x, so the query LP stays bounded in the probed directions even when
// the projection is not; probing an unbounded direction then reports a point
// on the box instead of failing. Pass maxRadius <= 0 to leave the projection
// unboxed and surface lp.ErrUnbounded.
func New(a *mat.Dense, b []float64, c *mat.Dense, d []float64, e *mat.Dense, f mgl64.Vec2, maxRadius float64) (*Oracle, error) {
	m, n := a.Dims()
	if len(b) != m {
		return nil, fmt.Errorf("support: A has %d rows, b has %d entries", m, len(b))
	}
	er, ec := e.Dims()
	if er != 2 {
		return nil, fmt.Errorf("support: projection matrix E must have 2 rows, got %d", er)
	}
	if ec != n {
		return nil, fmt.Errorf("support: E has %d columns, A has %d", ec, n)
	}
	var eq *mat.Dense
	var beq []float64
	if c != nil {
		p, cc := c.Dims()
		if cc != n {
			return nil, fmt.Errorf("support: C has %d columns, A has %d", cc, n)
		}
		if len(d) != p {
			return nil, fmt.Errorf("support: C has %d rows, d has %d entries", p, len(d))
		}
		eq = c
		beq = d
	}

	boxRows := 0
	if maxRadius > 0 {
		boxRows = 4
	}

	// Inequalities: the original Ax <= b rows, then the optional radius box
	// expressed through the projection rows: +-E_i x <= maxRadius -+ f_i.
	g := mat.NewDense(m+boxRows, n, nil)
	h := make([]float64, m+boxRows)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			g.Set(i, j, a.At(i, j))
		}
		h[i] = b[i]
	}
	if boxRows > 0 {
		for i := 0; i < 2; i++ {
			for j := 0; j < n; j++ {
				g.Set(m+2*i, j, e.At(i, j))
				g.Set(m+2*i+1, j, -e.At(i, j))
			}
			h[m+2*i] = maxRadius - f[i]
			h[m+2*i+1] = maxRadius + f[i]
		}
	}

	return &Oracle{
		prob: lp.Problem{G: g, H: h, A: eq, B: beq},
		e:    e,
		f:    f,
		n:    n,
	}, nil
}

// Support returns the point of the projected feasible set that maximizes the
// given direction. The direction need not be normalized, only nonzero.
//
// Fails with lp.ErrInfeasible when the system has no solution (the projected
// set is empty), with lp.ErrUnbounded when the projection extends forever in
// the probe direction, and with a wrapped solver error otherwise. Each call
// is independent; a failed call leaves no state behind.
func (o *Oracle) Support(dir mgl64.Vec2) (mgl64.Vec2, error) {
	if dir.Len() == 0 {
		return mgl64.Vec2{}, errors.New("support: zero probe direction")
	}

	// Maximize dir·(Ex + f) == minimize -(Eᵀ dir)·x.
	cost := make([]float64, o.n)
	for j := 0; j < o.n; j++ {
		cost[j] = -(dir[0]*o.e.At(0, j) + dir[1]*o.e.At(1, j))
	}

	prob := o.prob
	prob.Cost = cost
	x, err := lp.Solve(&prob)
	if err != nil {
		return mgl64.Vec2{}, err
	}

	y := o.f
	for j := 0; j < o.n; j++ {
		y[0] += o.e.At(0, j) * x[j]
		y[1] += o.e.At(1, j) * x[j]
	}
	return y, nil
}
