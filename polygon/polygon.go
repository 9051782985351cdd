// Package polygon provides the growing convex polygon used by the projection
// driver, plus standalone 2D helpers (convex hull, halfspace enumeration,
// segment intersection).
//
// The polygon is a cyclic sequence of vertices stored in an arena and linked
// by handles. Vertices are only ever added, never moved or removed, so a
// handle stays valid for the life of the polygon and insertion between two
// adjacent vertices is O(1). Winding is counterclockwise throughout.
//
// Each edge, identified by the handle of its origin vertex, carries a pending
// area: an upper bound on how much area could still be gained by expanding
// outward beyond that edge, together with the support point that realizes the
// bound. The sum of pending areas sandwiches the polygon against the true
// region and drives termination.
package polygon

import (
	"iter"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle addresses a vertex slot in the polygon's arena. Handles are assigned
// in insertion order starting from zero.
type Handle int32

// None is the null handle returned when a lookup finds nothing.
const None Handle = -1

type vertex struct {
	point mgl64.Vec2
	prev  Handle
	next  Handle

	// pending is the area bound for the edge (point, next point); far is
	// the support point behind that bound. A zero pending marks the edge
	// as tight.
	pending float64
	far     mgl64.Vec2
}

// Polygon is a convex polygon under incremental construction.
type Polygon struct {
	verts []vertex
	queue edgeQueue
}

// NewTriangle builds the initial polygon from three non-collinear points,
// reordering them to counterclockwise winding if needed. All pending areas
// start at zero; the caller probes each edge and records the results.
func NewTriangle(p1, p2, p3 mgl64.Vec2) *Polygon {
	if cross2(p2.Sub(p1), p3.Sub(p1)) < 0 {
		p2, p3 = p3, p2
	}
	p := &Polygon{verts: make([]vertex, 0, 8)}
	p.verts = append(p.verts,
		vertex{point: p1, prev: 2, next: 1},
		vertex{point: p2, prev: 0, next: 2},
		vertex{point: p3, prev: 1, next: 0},
	)
	return p
}

// Len returns the number of vertices.
func (p *Polygon) Len() int { return len(p.verts) }

// Point returns the coordinates of the vertex at h.
func (p *Polygon) Point(h Handle) mgl64.Vec2 { return p.verts[h].point }

// Next returns the successor of h in cyclic order.
func (p *Polygon) Next(h Handle) Handle { return p.verts[h].next }

// Prev returns the predecessor of h in cyclic order.
func (p *Polygon) Prev(h Handle) Handle { return p.verts[h].prev }

// Far returns the cached support point of the edge at h.
func (p *Polygon) Far(h Handle) mgl64.Vec2 { return p.verts[h].far }

// Pending returns the pending area of the edge at h.
func (p *Polygon) Pending(h Handle) float64 { return p.verts[h].pending }

// InsertAfter splices a new vertex between h and its successor and returns
// its handle. Adjacency of every other vertex is unchanged. The two edges
// created by the split start with zero pending area.
func (p *Polygon) InsertAfter(h Handle, pt mgl64.Vec2) Handle {
	succ := p.verts[h].next
	nh := Handle(len(p.verts))
	p.verts = append(p.verts, vertex{point: pt, prev: h, next: succ})
	p.verts[h].next = nh
	p.verts[h].pending = 0
	p.verts[succ].prev = nh
	return nh
}

// SetPending records the pending area and far point for the edge at h and
// queues the edge for selection. Earlier queue entries for the same edge are
// invalidated rather than removed; PopMaxPending skips them.
func (p *Polygon) SetPending(h Handle, area float64, far mgl64.Vec2) {
	p.verts[h].pending = area
	p.verts[h].far = far
	if area > 0 {
		p.queue.push(h, area)
	}
}

// PopMaxPending returns the edge with the greatest pending area, or ok=false
// when every edge is tight. Ties break toward the lower handle, which equals
// insertion order, keeping the refinement deterministic.
func (p *Polygon) PopMaxPending() (h Handle, area float64, ok bool) {
	for p.queue.Len() > 0 {
		e := p.queue.pop()
		if e.area != p.verts[e.h].pending {
			continue // stale entry, edge was re-estimated or split
		}
		return e.h, e.area, true
	}
	return None, 0, false
}

// TotalPending sums the pending areas over all edges. This is the driver's
// termination signal: the true region lies between the current polygon and
// the polygon inflated by this total.
func (p *Polygon) TotalPending() float64 {
	total := 0.0
	for i := range p.verts {
		total += p.verts[i].pending
	}
	return total
}

// PendingArea returns the area of the triangle spanned by the edge at h and a
// candidate far point beyond it. A point on the edge or on its inner side
// contributes nothing.
func (p *Polygon) PendingArea(h Handle, far mgl64.Vec2) float64 {
	a := p.verts[h].point
	b := p.verts[p.verts[h].next].point
	gain := cross2(far.Sub(a), b.Sub(a)) / 2
	if gain <= 0 {
		return 0
	}
	return gain
}

// OutwardNormal returns the unit normal of the edge at h pointing away from
// the polygon interior. For counterclockwise winding that is the right-hand
// side of the directed edge.
func (p *Polygon) OutwardNormal(h Handle) mgl64.Vec2 {
	a := p.verts[h].point
	b := p.verts[p.verts[h].next].point
	d := b.Sub(a)
	return mgl64.Vec2{d[1], -d[0]}.Normalize()
}

// Edges yields every (vertex, successor) handle pair once, in cyclic order
// starting from the first vertex. The sequence is restartable.
func (p *Polygon) Edges() iter.Seq2[Handle, Handle] {
	return func(yield func(Handle, Handle) bool) {
		if len(p.verts) == 0 {
			return
		}
		h := Handle(0)
		for {
			next := p.verts[h].next
			if !yield(h, next) {
				return
			}
			h = next
			if h == 0 {
				return
			}
		}
	}
}

// Vertices returns the vertex coordinates in counterclockwise order, starting
// from the lexicographically smallest vertex so that identical polygons
// produce identical slices.
func (p *Polygon) Vertices() []mgl64.Vec2 {
	if len(p.verts) == 0 {
		return nil
	}
	start := Handle(0)
	for i := 1; i < len(p.verts); i++ {
		if lexLess(p.verts[i].point, p.verts[start].point) {
			start = Handle(i)
		}
	}
	out := make([]mgl64.Vec2, 0, len(p.verts))
	h := start
	for {
		out = append(out, p.verts[h].point)
		h = p.verts[h].next
		if h == start {
			break
		}
	}
	return out
}

// Area returns the polygon area by the shoelace formula. Positive for the
// maintained counterclockwise winding.
func (p *Polygon) Area() float64 {
	area := 0.0
	for h, next := range p.Edges() {
		a, b := p.verts[h].point, p.verts[next].point
		area += cross2(a, b)
	}
	return area / 2
}

// Convex reports whether every consecutive edge pair turns left within tol.
func (p *Polygon) Convex(tol float64) bool {
	for h, next := range p.Edges() {
		a := p.verts[h].point
		b := p.verts[next].point
		c := p.verts[p.verts[next].next].point
		if cross2(b.Sub(a), c.Sub(b)) < -tol {
			return false
		}
	}
	return true
}

func cross2(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func lexLess(a, b mgl64.Vec2) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
