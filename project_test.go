package polyproj

import (
	"errors"
	"testing"

	"github.com/akmonengine/polyproj/lp"
	"github.com/akmonengine/polyproj/polygon"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

func vec2ApproxEqual(a, b mgl64.Vec2, tol float64) bool {
	return a.Sub(b).Len() <= tol
}

// unitBox returns the H-representation of [-1, 1]^n.
func unitBox(n int) Polytope {
	a := mat.NewDense(2*n, n, nil)
	b := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		a.Set(2*i, i, 1)
		a.Set(2*i+1, i, -1)
		b[2*i] = 1
		b[2*i+1] = 1
	}
	return Polytope{A: a, B: b}
}

func identityMap() ProjectionMap {
	return ProjectionMap{E: mat.NewDense(2, 2, []float64{1, 0, 0, 1})}
}

// containsVertex reports whether want appears among got.
func containsVertex(got []mgl64.Vec2, want mgl64.Vec2, tol float64) bool {
	for _, g := range got {
		if vec2ApproxEqual(g, want, tol) {
			return true
		}
	}
	return false
}

func ccwConvex(vertices []mgl64.Vec2, tol float64) bool {
	n := len(vertices)
	for i := range vertices {
		a, b, c := vertices[i], vertices[(i+1)%n], vertices[(i+2)%n]
		ab := b.Sub(a)
		bc := c.Sub(b)
		if ab[0]*bc[1]-ab[1]*bc[0] < -tol {
			return false
		}
	}
	return true
}

// TestProjectUnitSquare is the end-to-end reference scenario: the identity
// projection of [-1, 1]^2 must converge to the four corners with at most
// four insertions beyond the initial triangle.
func TestProjectUnitSquare(t *testing.T) {
	res, err := Project(unitBox(2), identityMap(), Options{})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}

	if res.Status != Converged {
		t.Errorf("status = %v, want converged", res.Status)
	}
	if res.Iterations > 4 {
		t.Errorf("iterations = %d, want <= 4", res.Iterations)
	}
	if len(res.Vertices) != 4 {
		t.Fatalf("vertex count = %d, want 4: %v", len(res.Vertices), res.Vertices)
	}
	for _, corner := range []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		if !containsVertex(res.Vertices, corner, 1e-6) {
			t.Errorf("missing corner %v in %v", corner, res.Vertices)
		}
	}
	if !ccwConvex(res.Vertices, 1e-9) {
		t.Errorf("vertices are not counterclockwise convex: %v", res.Vertices)
	}
	if res.Vertices[0] != (mgl64.Vec2{-1, -1}) {
		t.Errorf("start vertex = %v, want lexicographically smallest {-1 -1}", res.Vertices[0])
	}
}

func TestProjectDiamond(t *testing.T) {
	// |x| + |y| <= 1.
	a := mat.NewDense(4, 2, []float64{
		1, 1,
		1, -1,
		-1, 1,
		-1, -1,
	})
	poly := Polytope{A: a, B: []float64{1, 1, 1, 1}}

	res, err := Project(poly, identityMap(), Options{Workers: 2})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if res.Status != Converged {
		t.Errorf("status = %v, want converged", res.Status)
	}
	if len(res.Vertices) != 4 {
		t.Fatalf("vertex count = %d, want 4: %v", len(res.Vertices), res.Vertices)
	}
	for _, corner := range []mgl64.Vec2{{1, 0}, {0, 1}, {-1, 0}, {0, -1}} {
		if !containsVertex(res.Vertices, corner, 1e-6) {
			t.Errorf("missing vertex %v in %v", corner, res.Vertices)
		}
	}
}

// TestProjectZonotope projects the 4-cube through a generic 2x4 map and
// checks the result against the convex hull of the 16 projected corners.
func TestProjectZonotope(t *testing.T) {
	e := mat.NewDense(2, 4, []float64{
		1, 0.5, 0, 0.25,
		0, 1, 0.5, 0.25,
	})
	proj := ProjectionMap{E: e}

	res, err := Project(unitBox(4), proj, Options{Tolerance: 1e-9})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if res.Status != Converged {
		t.Fatalf("status = %v, want converged", res.Status)
	}

	// Enumerate the corners of [-1, 1]^4 and project them.
	var corners []mgl64.Vec2
	for mask := 0; mask < 16; mask++ {
		var y mgl64.Vec2
		for j := 0; j < 4; j++ {
			s := 1.0
			if mask&(1<<j) != 0 {
				s = -1.0
			}
			y[0] += s * e.At(0, j)
			y[1] += s * e.At(1, j)
		}
		corners = append(corners, y)
	}
	want := polygon.Hull(corners)

	if len(res.Vertices) != len(want) {
		t.Fatalf("vertex count = %d, want %d: got %v want %v",
			len(res.Vertices), len(want), res.Vertices, want)
	}
	// Both sequences are counterclockwise from the lexicographically
	// smallest vertex, so they must line up element by element.
	for i := range want {
		if !vec2ApproxEqual(res.Vertices[i], want[i], 1e-6) {
			t.Errorf("vertex %d = %v, want %v", i, res.Vertices[i], want[i])
		}
	}
}

func TestProjectIterationCap(t *testing.T) {
	e := mat.NewDense(2, 4, []float64{
		1, 0.5, 0, 0.25,
		0, 1, 0.5, 0.25,
	})
	proj := ProjectionMap{E: e}

	res, err := Project(unitBox(4), proj, Options{Tolerance: 1e-9, MaxIterations: 2})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if res.Status != IterationCapped {
		t.Errorf("status = %v, want iteration-capped", res.Status)
	}
	if res.Iterations != 2 {
		t.Errorf("iterations = %d, want 2", res.Iterations)
	}
	// Three initial vertices plus two insertions, minus any face points
	// dropped by the output cleanup.
	if len(res.Vertices) < 3 || len(res.Vertices) > 5 {
		t.Errorf("vertex count = %d, want between 3 and 5", len(res.Vertices))
	}
	if res.TotalPending <= 1e-9 {
		t.Errorf("TotalPending = %v, want positive residual", res.TotalPending)
	}
	if !ccwConvex(res.Vertices, 1e-9) {
		t.Errorf("capped polygon is not convex: %v", res.Vertices)
	}
}

func TestProjectDegeneratePoint(t *testing.T) {
	// x <= 0 and -x <= 0 pin x to 0; the projection is the single point (0, 0).
	a := mat.NewDense(2, 1, []float64{1, -1})
	poly := Polytope{A: a, B: []float64{0, 0}}
	proj := ProjectionMap{E: mat.NewDense(2, 1, []float64{1, 0})}

	res, err := Project(poly, proj, Options{})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	if res.Status != DegeneratePoint {
		t.Fatalf("status = %v, want degenerate-point", res.Status)
	}
	if len(res.Vertices) != 1 || !vec2ApproxEqual(res.Vertices[0], mgl64.Vec2{0, 0}, 1e-9) {
		t.Errorf("vertices = %v, want [{0 0}]", res.Vertices)
	}
}

func TestProjectDegenerateSegment(t *testing.T) {
	t.Run("anti_diagonal_interval", func(t *testing.T) {
		// x in [-1, 1] mapped to (x, -x): the initial axis probes already
		// return two distinct collinear extremes.
		a := mat.NewDense(2, 1, []float64{1, -1})
		poly := Polytope{A: a, B: []float64{1, 1}}
		proj := ProjectionMap{E: mat.NewDense(2, 1, []float64{1, -1})}

		res, err := Project(poly, proj, Options{})
		if err != nil {
			t.Fatalf("Project returned error: %v", err)
		}
		if res.Status != DegenerateSegment {
			t.Fatalf("status = %v, want degenerate-segment", res.Status)
		}
		want := []mgl64.Vec2{{-1, 1}, {1, -1}}
		if len(res.Vertices) != 2 ||
			!vec2ApproxEqual(res.Vertices[0], want[0], 1e-9) ||
			!vec2ApproxEqual(res.Vertices[1], want[1], 1e-9) {
			t.Errorf("vertices = %v, want %v", res.Vertices, want)
		}
	})

	t.Run("equality_constrained_square", func(t *testing.T) {
		// The square restricted to the line x = y: both axis probes land on
		// (1, 1), so the driver must escape via the opposite probes.
		box := unitBox(2)
		box.C = mat.NewDense(1, 2, []float64{1, -1})
		box.D = []float64{0}

		res, err := Project(box, identityMap(), Options{})
		if err != nil {
			t.Fatalf("Project returned error: %v", err)
		}
		if res.Status != DegenerateSegment {
			t.Fatalf("status = %v, want degenerate-segment", res.Status)
		}
		want := []mgl64.Vec2{{-1, -1}, {1, 1}}
		if len(res.Vertices) != 2 ||
			!vec2ApproxEqual(res.Vertices[0], want[0], 1e-9) ||
			!vec2ApproxEqual(res.Vertices[1], want[1], 1e-9) {
			t.Errorf("vertices = %v, want %v", res.Vertices, want)
		}
	})
}

func TestProjectEmptyFeasibleSet(t *testing.T) {
	// x <= -1 and x >= 1 are contradictory for any projection.
	a := mat.NewDense(2, 1, []float64{1, -1})
	poly := Polytope{A: a, B: []float64{-1, -1}}
	proj := ProjectionMap{E: mat.NewDense(2, 1, []float64{1, 0})}

	res, err := Project(poly, proj, Options{})
	if !errors.Is(err, ErrEmptyFeasibleSet) {
		t.Errorf("expected ErrEmptyFeasibleSet, got %v", err)
	}
	if res != nil {
		t.Errorf("no geometry may accompany an error, got %+v", res)
	}
}

func TestProjectUnbounded(t *testing.T) {
	// Halfplane x >= 0 is unbounded toward +x.
	a := mat.NewDense(1, 2, []float64{-1, 0})
	poly := Polytope{A: a, B: []float64{0}}

	t.Run("fatal_without_radius", func(t *testing.T) {
		_, err := Project(poly, identityMap(), Options{})
		if !errors.Is(err, ErrUnboundedProjection) {
			t.Errorf("expected ErrUnboundedProjection, got %v", err)
		}
	})

	t.Run("boxed_by_max_radius", func(t *testing.T) {
		res, err := Project(poly, identityMap(), Options{MaxRadius: 10})
		if err != nil {
			t.Fatalf("Project returned error: %v", err)
		}
		if res.Status != Converged {
			t.Errorf("status = %v, want converged", res.Status)
		}
		// The box clips the halfplane to the rectangle [0, 10] x [-10, 10].
		for _, corner := range []mgl64.Vec2{{0, -10}, {10, -10}, {10, 10}, {0, 10}} {
			if !containsVertex(res.Vertices, corner, 1e-6) {
				t.Errorf("missing corner %v in %v", corner, res.Vertices)
			}
		}
	})
}

// TestProjectIdempotent re-runs the same projection and requires identical
// output, including the start vertex.
func TestProjectIdempotent(t *testing.T) {
	e := mat.NewDense(2, 4, []float64{
		1, 0.5, 0, 0.25,
		0, 1, 0.5, 0.25,
	})
	proj := ProjectionMap{E: e}

	first, err := Project(unitBox(4), proj, Options{})
	if err != nil {
		t.Fatalf("first run returned error: %v", err)
	}
	second, err := Project(unitBox(4), proj, Options{})
	if err != nil {
		t.Fatalf("second run returned error: %v", err)
	}

	if len(first.Vertices) != len(second.Vertices) {
		t.Fatalf("vertex counts differ: %d vs %d", len(first.Vertices), len(second.Vertices))
	}
	for i := range first.Vertices {
		if first.Vertices[i] != second.Vertices[i] {
			t.Errorf("vertex %d differs: %v vs %v", i, first.Vertices[i], second.Vertices[i])
		}
	}
	if first.Iterations != second.Iterations {
		t.Errorf("iteration counts differ: %d vs %d", first.Iterations, second.Iterations)
	}
}

func TestProjectAffineOffset(t *testing.T) {
	proj := identityMap()
	proj.F = mgl64.Vec2{5, -3}

	res, err := Project(unitBox(2), proj, Options{})
	if err != nil {
		t.Fatalf("Project returned error: %v", err)
	}
	for _, corner := range []mgl64.Vec2{{4, -4}, {6, -4}, {6, -2}, {4, -2}} {
		if !containsVertex(res.Vertices, corner, 1e-6) {
			t.Errorf("missing corner %v in %v", corner, res.Vertices)
		}
	}
}

// TestPruneCollinear covers the output cleanup: probe points that sit in the
// middle of a face of the true region must not survive into the result.
func TestPruneCollinear(t *testing.T) {
	tests := []struct {
		name string
		in   []mgl64.Vec2
		want []mgl64.Vec2
	}{
		{
			name: "face_points_dropped",
			in:   []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}},
			want: []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
		},
		{
			name: "adjacent_face_points_dropped",
			in:   []mgl64.Vec2{{-1, -1}, {1, -1}, {1, -0.5}, {1, 0.5}, {1, 1}, {-1, 1}},
			want: []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
		},
		{
			name: "corners_kept",
			in:   []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
			want: []mgl64.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
		},
		{
			name: "triangle_untouched",
			in:   []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
			want: []mgl64.Vec2{{0, 0}, {1, 0}, {0, 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pruneCollinear(tt.in, collinearTol)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d vertices %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range tt.want {
				if !vec2ApproxEqual(got[i], tt.want[i], 1e-12) {
					t.Errorf("vertex %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMapOracleErr(t *testing.T) {
	backendFailure := errors.New("simplex: singular basis")

	tests := []struct {
		name   string
		err    error
		boxed  bool
		want   error
		solver bool
	}{
		{name: "infeasible", err: lp.ErrInfeasible, want: ErrEmptyFeasibleSet},
		{name: "unbounded_unboxed", err: lp.ErrUnbounded, want: ErrUnboundedProjection},
		// With the radius box active the LP cannot be unbounded, so the
		// verdict is a solver failure, not a property of the input.
		{name: "unbounded_boxed", err: lp.ErrUnbounded, boxed: true, solver: true},
		{name: "backend_failure", err: backendFailure, solver: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapOracleErr(tt.err, tt.boxed)
			if tt.solver {
				var se *SolverError
				if !errors.As(got, &se) {
					t.Fatalf("expected *SolverError, got %v", got)
				}
				if !errors.Is(got, tt.err) {
					t.Errorf("SolverError does not unwrap to the backend error: %v", got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Errorf("mapOracleErr = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{Converged, "converged"},
		{IterationCapped, "iteration-capped"},
		{DegeneratePoint, "degenerate-point"},
		{DegenerateSegment, "degenerate-segment"},
		{Status(42), "Status(42)"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	if o.Tolerance != DefaultTolerance {
		t.Errorf("Tolerance = %v, want %v", o.Tolerance, DefaultTolerance)
	}
	if o.MaxIterations != DefaultMaxIterations {
		t.Errorf("MaxIterations = %d, want %d", o.MaxIterations, DefaultMaxIterations)
	}
	if o.Workers != DEFAULT_WORKERS {
		t.Errorf("Workers = %d, want %d", o.Workers, DEFAULT_WORKERS)
	}
	if o.MaxRadius != 0 {
		t.Errorf("MaxRadius = %v, want 0 (disabled)", o.MaxRadius)
	}

	explicit := Options{Tolerance: 0.5, MaxIterations: 7, Workers: 3, MaxRadius: 2}.withDefaults()
	if explicit.Tolerance != 0.5 || explicit.MaxIterations != 7 ||
		explicit.Workers != 3 || explicit.MaxRadius != 2 {
		t.Errorf("explicit options were overridden: %+v", explicit)
	}
}
