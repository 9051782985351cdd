package polygon

import "github.com/go-gl/mathgl/mgl64"

const (
	// precTol absorbs rounding error in the bounding-box membership tests.
	precTol = 1e-10

	// parallelTol is the determinant cutoff below which two lines are
	// treated as parallel.
	parallelTol = 1e-5
)

// homogeneous line through two points: ax + by = c.
type line struct {
	a, b, c float64
}

func lineThrough(p1, p2 mgl64.Vec2) line {
	return line{
		a: p1[1] - p2[1],
		b: p2[0] - p1[0],
		c: -(p1[0]*p2[1] - p2[0]*p1[1]),
	}
}

// IntersectSegment intersects the segment [p1, p2] with the boundary of a
// polygon given by its vertices in cyclic order (either winding). It returns
// the intersection points, one per crossed edge.
func IntersectSegment(p1, p2 mgl64.Vec2, vertices []mgl64.Vec2) []mgl64.Vec2 {
	n := len(vertices)
	if n < 2 {
		return nil
	}
	l1 := lineThrough(p1, p2)
	xmin, xmax := minMax(p1[0], p2[0])
	ymin, ymax := minMax(p1[1], p2[1])

	var points []mgl64.Vec2
	for i, v1 := range vertices {
		v2 := vertices[(i+1)%n]
		l2 := lineThrough(v1, v2)

		// Cramer's rule on the two line equations.
		det := l1.a*l2.b - l1.b*l2.a
		if det > -parallelTol && det < parallelTol {
			continue
		}
		p := mgl64.Vec2{
			(l1.c*l2.b - l1.b*l2.c) / det,
			(l1.a*l2.c - l1.c*l2.a) / det,
		}

		if p[0] < xmin-precTol || p[0] > xmax+precTol ||
			p[1] < ymin-precTol || p[1] > ymax+precTol {
			continue // outside the query segment
		}
		vxmin, vxmax := minMax(v1[0], v2[0])
		vymin, vymax := minMax(v1[1], v2[1])
		if p[0] < vxmin-precTol || p[0] > vxmax+precTol ||
			p[1] < vymin-precTol || p[1] > vymax+precTol {
			continue // outside the polygon edge
		}
		points = append(points, p)
	}
	return points
}

func minMax(a, b float64) (float64, float64) {
	if a <= b {
		return a, b
	}
	return b, a
}
