// Package polyproj computes the planar image of a convex polytope given in
// halfspace form under an affine projection y = Ex + f, returning the
// projected region as an ordered polygon boundary.
//
// The driver is an incremental refinement loop after Bretl and Lall: starting
// from a triangle of extreme points, it repeatedly picks the polygon edge
// with the largest pending area (the area that could still lie beyond it),
// asks the LP-backed oracle for the extreme point in that edge's outward
// normal direction, and splices the answer into the polygon. The polygon
// grows monotonically inside the true region while the summed pending areas
// bound the region from outside; the loop stops when that bound drops under
// tolerance or the iteration cap is hit.
//
// References:
//   - Bretl, Lall: "Testing Static Equilibrium for Legged Robots" (2008)
package polyproj

import (
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/polyproj/lp"
	"github.com/akmonengine/polyproj/polygon"
	"github.com/akmonengine/polyproj/support"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultTolerance bounds the total pending area at convergence.
	DefaultTolerance = 1e-5

	// DefaultMaxIterations caps the number of vertex insertions.
	// Typical convergence: one insertion per vertex of the true region.
	DefaultMaxIterations = 1000

	// DEFAULT_WORKERS bounds the concurrency of the initialization probes.
	DEFAULT_WORKERS = 1

	// vertexMergeTol is the distance under which two polygon vertices are
	// considered the same point; candidates closer than this to an existing
	// endpoint are never inserted.
	vertexMergeTol = 1e-6

	// collinearTol is the triangle area under which three initialization
	// points are treated as collinear.
	collinearTol = 1e-9
)

// Polytope is the halfspace representation {x : Ax <= b, Cx = d}. The
// equality pair C/D is optional; leave both nil when absent. The matrices are
// read-only for the whole projection.
type Polytope struct {
	A *mat.Dense
	B []float64
	C *mat.Dense
	D []float64
}

// ProjectionMap is the affine map y = Ex + f from the polytope's space onto
// the plane. E must have exactly two rows.
type ProjectionMap struct {
	E *mat.Dense
	F mgl64.Vec2
}

// Options configures a projection run. The zero value selects defaults.
type Options struct {
	// Tolerance is the absolute bound on the total pending area under
	// which the polygon counts as converged.
	Tolerance float64

	// MaxIterations caps the number of refinement insertions. Hitting the
	// cap is not an error; the result is flagged IterationCapped.
	MaxIterations int

	// MaxRadius, when positive, adds the box |y_i| <= MaxRadius to the
	// oracle so probe LPs stay bounded on unbounded projections. Left at
	// zero, an unbounded probe surfaces as ErrUnboundedProjection.
	MaxRadius float64

	// Workers bounds the concurrency of the initialization probes. The
	// refinement loop itself is sequential: every step depends on the
	// polygon state left by the previous one.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.Tolerance <= 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	o.Workers = max(DEFAULT_WORKERS, o.Workers)
	return o
}

// Status describes how a projection run ended.
type Status int

const (
	// Converged: the total pending area fell under Options.Tolerance.
	Converged Status = iota

	// IterationCapped: the iteration cap was reached first. The polygon is
	// a valid inner approximation, just not proven tight.
	IterationCapped

	// DegeneratePoint: the projection collapses to a single point.
	DegeneratePoint

	// DegenerateSegment: the projection collapses to a line segment.
	DegenerateSegment
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case IterationCapped:
		return "iteration-capped"
	case DegeneratePoint:
		return "degenerate-point"
	case DegenerateSegment:
		return "degenerate-segment"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Result is the projected region. Vertices are in counterclockwise order
// starting from the lexicographically smallest vertex; degenerate projections
// carry one or two vertices.
type Result struct {
	Status   Status
	Vertices []mgl64.Vec2

	// TotalPending is the residual outer-bound area at termination.
	TotalPending float64

	// Iterations is the number of refinement insertions performed.
	Iterations int
}

var (
	// ErrEmptyFeasibleSet: the polytope, intersected with the projection
	// equalities, has no feasible point.
	ErrEmptyFeasibleSet = errors.New("polyproj: projected feasible set is empty")

	// ErrUnboundedProjection: the projected set extends forever in some
	// probed direction, violating the bounded-output assumption.
	ErrUnboundedProjection = errors.New("polyproj: projection is unbounded")
)

// SolverError reports a backend LP failure (numerical breakdown, singular
// basis). It is distinct from infeasibility and never retried internally.
type SolverError struct {
	Err error
}

func (e *SolverError) Error() string { return "polyproj: solver failure: " + e.Err.Error() }

func (e *SolverError) Unwrap() error { return e.Err }

// Project computes the planar projection of the polytope.
//
// On success the result is the full polygon (Converged or IterationCapped) or
// a degenerate point/segment. On error no geometry is returned: the possible
// errors are ErrEmptyFeasibleSet, ErrUnboundedProjection and *SolverError.
func Project(polytope Polytope, projection ProjectionMap, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	boxed := opts.MaxRadius > 0

	oracle, err := support.New(
		polytope.A, polytope.B, polytope.C, polytope.D,
		projection.E, projection.F, opts.MaxRadius,
	)
	if err != nil {
		return nil, err
	}

	// Initialization: two independent axis probes, issued concurrently.
	pts, err := probeAll(oracle, []mgl64.Vec2{{1, 0}, {0, 1}}, opts.Workers)
	if err != nil {
		return nil, mapOracleErr(err, boxed)
	}
	p1, p2 := pts[0], pts[1]

	if p1.Sub(p2).Len() <= vertexMergeTol {
		// A single vertex can dominate both axis directions, so confirm
		// with the opposite probes before declaring a point projection.
		opp, err := probeAll(oracle, []mgl64.Vec2{{-1, 0}, {0, -1}}, opts.Workers)
		if err != nil {
			return nil, mapOracleErr(err, boxed)
		}
		d1 := opp[0].Sub(p1).Len()
		d2 := opp[1].Sub(p1).Len()
		if d1 <= vertexMergeTol && d2 <= vertexMergeTol {
			return &Result{Status: DegeneratePoint, Vertices: []mgl64.Vec2{p1}}, nil
		}
		if d1 > d2 {
			p2 = opp[0]
		} else {
			p2 = opp[1]
		}
	}

	// Third probe: the chord normal, then its negation if the first sign
	// stays collinear with the chord.
	chord := p2.Sub(p1).Normalize()
	normal := mgl64.Vec2{chord[1], -chord[0]}
	p3, err := oracle.Support(normal)
	if err != nil {
		return nil, mapOracleErr(err, boxed)
	}
	if triangleArea(p1, p2, p3) <= collinearTol {
		p3, err = oracle.Support(normal.Mul(-1))
		if err != nil {
			return nil, mapOracleErr(err, boxed)
		}
		if triangleArea(p1, p2, p3) <= collinearTol {
			// Every probe lands on the chord line: the projection is a
			// segment. Probe both chord directions for its exact ends.
			ends, err := probeAll(oracle, []mgl64.Vec2{chord.Mul(-1), chord}, opts.Workers)
			if err != nil {
				return nil, mapOracleErr(err, boxed)
			}
			lo, hi := ends[0], ends[1]
			if lexLess(hi, lo) {
				lo, hi = hi, lo
			}
			return &Result{Status: DegenerateSegment, Vertices: []mgl64.Vec2{lo, hi}}, nil
		}
	}

	poly := polygon.NewTriangle(p1, p2, p3)
	for h := range poly.Edges() {
		if err := estimate(oracle, poly, h); err != nil {
			return nil, mapOracleErr(err, boxed)
		}
	}

	// Refinement: expand the edge with the largest pending area until the
	// residual total is under tolerance or the cap is hit. Each new edge is
	// probed once, when created; the support point found then is exact for
	// the edge's normal regardless of later insertions, so it is cached and
	// spliced in directly if the edge is selected.
	iterations := 0
	for poly.TotalPending() > opts.Tolerance && iterations < opts.MaxIterations {
		h, _, ok := poly.PopMaxPending()
		if !ok {
			break
		}
		far := poly.Far(h)
		a, b := poly.Point(h), poly.Point(poly.Next(h))
		if far.Sub(a).Len() <= vertexMergeTol || far.Sub(b).Len() <= vertexMergeTol {
			// No positive gain beyond this edge; mark it tight instead
			// of inserting a duplicate vertex.
			poly.SetPending(h, 0, far)
			continue
		}
		nh := poly.InsertAfter(h, far)
		if err := estimate(oracle, poly, h); err != nil {
			return nil, mapOracleErr(err, boxed)
		}
		if err := estimate(oracle, poly, nh); err != nil {
			return nil, mapOracleErr(err, boxed)
		}
		iterations++
	}

	total := poly.TotalPending()
	status := Converged
	if total > opts.Tolerance {
		status = IterationCapped
	}
	return &Result{
		Status:       status,
		Vertices:     pruneCollinear(poly.Vertices(), collinearTol),
		TotalPending: total,
		Iterations:   iterations,
	}, nil
}

// pruneCollinear removes vertices that lie on the segment between their
// neighbors. An axis probe whose optimum is a tie face can return a point in
// the middle of an edge of the true region; the point is feasible, so it
// survives refinement, but it is not a corner and must not appear in the
// output. The first vertex is the lexicographically smallest and therefore
// extreme, so pruning never changes the start of the cycle.
func pruneCollinear(vs []mgl64.Vec2, tol float64) []mgl64.Vec2 {
	for len(vs) > 3 {
		n := len(vs)
		kept := make([]mgl64.Vec2, 0, n)
		for i := 0; i < n; i++ {
			prev := vs[(i+n-1)%n]
			next := vs[(i+1)%n]
			if triangleArea(prev, vs[i], next) <= tol {
				continue
			}
			kept = append(kept, vs[i])
		}
		if len(kept) == n {
			return vs
		}
		vs = kept
	}
	return vs
}

// estimate probes the outward normal of the edge at h and records the pending
// area bound together with the support point that produced it.
func estimate(oracle *support.Oracle, poly *polygon.Polygon, h polygon.Handle) error {
	far, err := oracle.Support(poly.OutwardNormal(h))
	if err != nil {
		return err
	}
	poly.SetPending(h, poly.PendingArea(h, far), far)
	return nil
}

// probeAll issues independent support queries concurrently. Errors are
// collected by probe index and the first one wins, so failures are reported
// deterministically regardless of goroutine scheduling.
func probeAll(oracle *support.Oracle, dirs []mgl64.Vec2, workers int) ([]mgl64.Vec2, error) {
	points := make([]mgl64.Vec2, len(dirs))
	errs := make([]error, len(dirs))
	task(workers, dirs, func(i int, dir mgl64.Vec2) {
		points[i], errs[i] = oracle.Support(dir)
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return points, nil
}

func mapOracleErr(err error, boxed bool) error {
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return ErrEmptyFeasibleSet
	case errors.Is(err, lp.ErrUnbounded):
		if boxed {
			// The radius box bounds every probe direction, so an unbounded
			// verdict here can only be solver breakdown.
			return &SolverError{Err: err}
		}
		return ErrUnboundedProjection
	default:
		return &SolverError{Err: err}
	}
}

func triangleArea(a, b, c mgl64.Vec2) float64 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	return math.Abs(ab[0]*ac[1]-ab[1]*ac[0]) / 2
}

func lexLess(a, b mgl64.Vec2) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
