// Copyright (c) 2026 Andrey Kriulin
// Licensed under the MIT License.
// See the LICENSE file in the project root for full license text.

// Package hull implements the advancing frontier of an incremental
// triangulation: a ring of points sorted by pseudo-angle around a fixed
// center, indexed by a bucket table so that locating the edge a new point
// must split costs expected O(1).
package hull

import (
	"fmt"
	"iter"
	"math"
	"math/bits"

	"github.com/golang/geo/r2"
)

const (
	minBuckets = 1 << 10
)

// PointIndex is a handle into an externally owned point array.
type PointIndex int

// EdgeIndex is a handle into an externally owned half-edge array.
type EdgeIndex int

// NoPoint marks an empty bucket.
const NoPoint PointIndex = -1

type node struct {
	// Fixed at construction; decides the bucket and the ring order.
	angle float64

	edge EdgeIndex

	// prev and next travel counterclockwise around the hull and are only
	// meaningful while inHull is set.
	prev   PointIndex
	next   PointIndex
	inHull bool
}

// Hull stores a subset of points which form a counterclockwise topological
// circle about the center of the triangulation.
//
// Each member point carries an EdgeIndex into a half-edge structure owned by
// the caller; the Hull never interprets it.
//
// For a point P, Get finds the members Q and R between which P's angle
// falls. Projecting P towards the center crosses the edge starting at Q,
// which is the edge to split.
//
// A Hull is not safe for concurrent use.
type Hull struct {
	buckets []PointIndex
	nodes   []node
	size    int
}

// New computes the pseudo-angle of every point around center. No point is a
// member of the returned hull.
func New(center r2.Point, points []r2.Point) *Hull {
	h := &Hull{
		buckets: make([]PointIndex, numBuckets(len(points))),
		nodes:   make([]node, len(points)),
	}
	for i := range h.buckets {
		h.buckets[i] = NoPoint
	}
	for i, p := range points {
		d := p.Sub(center)
		h.nodes[i] = node{
			angle: PseudoAngle(d.X, d.Y),
			prev:  NoPoint,
			next:  NoPoint,
		}
	}
	return h
}

// Len returns the number of member points.
func (h *Hull) Len() int {
	return h.size
}

// Contains reports whether p is currently a member.
func (h *Hull) Contains(p PointIndex) bool {
	return h.nodes[p].inHull
}

// Angle returns the pseudo-angle assigned to p at construction.
func (h *Hull) Angle(p PointIndex) float64 {
	return h.nodes[p].angle
}

// InsertFirst makes p the only member, looped onto itself.
// It panics if the hull is not empty.
func (h *Hull) InsertFirst(p PointIndex, e EdgeIndex) {
	b := h.bucket(p)
	if h.size != 0 || h.buckets[b] != NoPoint {
		panic("InsertFirst: hull is not empty")
	}
	h.buckets[b] = p

	n := &h.nodes[p]
	n.prev = p
	n.next = p
	n.edge = e
	n.inHull = true
	h.size = 1
}

// Update replaces the edge stored for p. It panics if p is not a member.
func (h *Hull) Update(p PointIndex, e EdgeIndex) {
	h.mustContain("Update", p)
	h.nodes[p].edge = e
}

// Get returns the pair of members between which p would sit if inserted
// now. It does not modify the hull and panics if the hull is empty.
func (h *Hull) Get(p PointIndex) (prev, next PointIndex) {
	if h.size == 0 {
		panic("Get: hull is empty")
	}
	b := h.bucket(p)

	// For an empty bucket, take the head of the next filled bucket and step
	// back once. Searching for the next-lowest bucket instead would mean
	// walking that bucket's whole chain.
	pos := h.buckets[b]
	if pos == NoPoint {
		t := b
		for h.buckets[t] == NoPoint {
			t = (t + 1) & (len(h.buckets) - 1)
		}
		pos = h.buckets[t]
	} else {
		// Walk the bucket's chain until a node is not below p, the chain
		// leaves the bucket, or it loops back to the start. Looping back
		// means every member shares this bucket and lies below p, so p goes
		// at the end of the chain, linking back to the head.
		start := pos
		angle := h.nodes[p].angle
		for h.nodes[pos].angle < angle && h.bucket(pos) == b {
			pos = h.nodes[pos].next
			if pos == start {
				break
			}
		}
	}
	return h.nodes[pos].prev, pos
}

// GetEdge returns the edge crossed by the ray from p towards the center:
// the edge stored on the member preceding p's insertion position.
func (h *Hull) GetEdge(p PointIndex) EdgeIndex {
	prev, _ := h.Get(p)
	return h.nodes[prev].edge
}

// PrevEdge returns the edge stored on p's predecessor.
// It panics if p is not a member.
func (h *Hull) PrevEdge(p PointIndex) EdgeIndex {
	h.mustContain("PrevEdge", p)
	return h.nodes[h.nodes[p].prev].edge
}

// Edge returns the edge stored on p. It panics if p is not a member.
func (h *Hull) Edge(p PointIndex) EdgeIndex {
	h.mustContain("Edge", p)
	return h.nodes[p].edge
}

// Insert splices p into the ring at the position found by Get and attaches
// e to it. Inserting into an empty hull behaves like InsertFirst.
// It panics if p is already a member.
func (h *Hull) Insert(p PointIndex, e EdgeIndex) {
	if h.nodes[p].inHull {
		panic(fmt.Sprintf("Insert: point %d already in hull", p))
	}
	if h.size == 0 {
		h.InsertFirst(p, e)
		return
	}
	b := h.bucket(p)
	prev, next := h.Get(p)

	// p becomes the bucket's head if the bucket was empty or p lands right
	// before the current head.
	if h.buckets[b] == NoPoint ||
		(h.buckets[b] == next && h.nodes[p].angle <= h.nodes[next].angle) {
		h.buckets[b] = p
	}

	n := &h.nodes[p]
	n.edge = e
	n.prev = prev
	n.next = next
	n.inHull = true

	h.nodes[next].prev = p
	h.nodes[prev].next = p
	h.size++
}

// Erase unlinks p from the ring. Its slot stays allocated and p may be
// inserted again later. It panics if p is not a member.
func (h *Hull) Erase(p PointIndex) {
	h.mustContain("Erase", p)
	b := h.bucket(p)

	n := &h.nodes[p]
	next, prev := n.next, n.prev
	h.nodes[next].prev = prev
	h.nodes[prev].next = next
	n.prev = NoPoint
	n.next = NoPoint
	n.inHull = false
	h.size--

	// A head is replaced by its successor while that successor is still in
	// the same bucket.
	if h.buckets[b] == p {
		if next != p && h.bucket(next) == b {
			h.buckets[b] = next
		} else {
			h.buckets[b] = NoPoint
		}
	}
}

// Values yields the edges of all members in ring order, starting from the
// head of the lowest occupied bucket. The hull must not be modified while
// the sequence is being consumed.
func (h *Hull) Values() iter.Seq[EdgeIndex] {
	return func(yield func(EdgeIndex) bool) {
		start := NoPoint
		for _, head := range h.buckets {
			if head != NoPoint {
				start = head
				break
			}
		}
		if start == NoPoint {
			return
		}

		p := start
		for {
			if !yield(h.nodes[p].edge) {
				return
			}
			p = h.nodes[p].next
			if p == start {
				return
			}
		}
	}
}

// numBuckets returns the smallest power of two not below n, and at least
// minBuckets, so chains stay O(1) long on average.
func numBuckets(n int) int {
	if n <= minBuckets {
		return minBuckets
	}
	return 1 << bits.Len(uint(n-1))
}

func (h *Hull) bucket(p PointIndex) int {
	return int(math.Round(h.nodes[p].angle * float64(len(h.buckets)-1)))
}

func (h *Hull) mustContain(method string, p PointIndex) {
	if !h.nodes[p].inHull {
		panic(fmt.Sprintf("%s: point %d not in hull", method, p))
	}
}

// PseudoAngle maps the direction (dx, dy) to [0, 1), increasing
// counterclockwise from the -X axis. It is monotonic in the true angle and
// needs no trigonometry. The zero vector maps to 0.
func PseudoAngle(dx, dy float64) float64 {
	s := math.Abs(dx) + math.Abs(dy)
	if s == 0 {
		return 0
	}
	p := dx / s
	if dy > 0 {
		return (3 - p) / 4
	}
	return (1 + p) / 4
}
