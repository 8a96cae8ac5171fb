package palette

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

var ErrEmptyPalette = errors.New("palette has no entries")

// DuplicateIDError reports two palette entries sharing an id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate palette id %q", e.ID)
}

type node struct {
	p           point
	id          string
	axis        uint8
	left, right int32
}

// Index is a k-d tree over the average colors of a palette. It has no
// mutation path once built, so any number of goroutines may query it.
type Index struct {
	space Space
	nodes []node
	root  int32
	ids   map[string]struct{}
}

// Build indexes entries in RGB space.
func Build(entries []Entry) (*Index, error) {
	return BuildSpace(entries, SpaceRGB)
}

// BuildSpace indexes entries with distances measured in the given space.
// Entries must be non-empty and carry unique ids.
func BuildSpace(entries []Entry, space Space) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyPalette
	}
	space, err := ParseSpace(string(space))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(entries))
	items := make([]node, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			return nil, &DuplicateIDError{ID: e.ID}
		}
		seen[e.ID] = struct{}{}
		items = append(items, node{p: space.point(e.AverageRGB), id: e.ID})
	}

	idx := &Index{
		space: space,
		nodes: make([]node, 0, len(items)),
		ids:   seen,
	}
	idx.root = idx.build(items, 0)
	return idx, nil
}

// build places the median of items along the widest axis and recurses on
// both halves. Sorting on (coordinate, id) keeps the tree shape independent
// of input order.
func (idx *Index) build(items []node, depth int) int32 {
	if len(items) == 0 {
		return -1
	}

	axis := splitAxis(items, depth)
	slices.SortFunc(items, func(a, b node) int {
		if c := cmp.Compare(a.p[axis], b.p[axis]); c != 0 {
			return c
		}
		return strings.Compare(a.id, b.id)
	})

	mid := len(items) / 2
	n := items[mid]
	n.axis = uint8(axis)
	pos := int32(len(idx.nodes))
	idx.nodes = append(idx.nodes, n)

	left := idx.build(items[:mid], depth+1)
	right := idx.build(items[mid+1:], depth+1)
	idx.nodes[pos].left = left
	idx.nodes[pos].right = right
	return pos
}

// splitAxis returns the axis with the greatest spread, preferring the
// depth-cycled axis when spreads tie.
func splitAxis(items []node, depth int) int {
	lo, hi := items[0].p, items[0].p
	for _, it := range items[1:] {
		for d := range 3 {
			lo[d] = min(lo[d], it.p[d])
			hi[d] = max(hi[d], it.p[d])
		}
	}

	best := depth % 3
	for d := range 3 {
		if hi[d]-lo[d] > hi[best]-lo[best] {
			best = d
		}
	}
	return best
}

type query struct {
	q    point
	best int32
	dist float64
}

// Nearest returns the id of the entry whose average color is closest to c.
// Equidistant entries resolve to the lexicographically smallest id.
func (idx *Index) Nearest(c RGB) string {
	id, _ := idx.Match(c)
	return id
}

// Match is Nearest that also reports the squared distance in the index's space.
// An index that was not built matches nothing and reports an infinite distance.
func (idx *Index) Match(c RGB) (string, float64) {
	if idx.Len() == 0 {
		return "", math.Inf(1)
	}
	s := query{q: idx.space.point(c), best: -1, dist: math.Inf(1)}
	idx.search(idx.root, &s)
	return idx.nodes[s.best].id, s.dist
}

func (idx *Index) search(i int32, s *query) {
	if i < 0 {
		return
	}

	n := &idx.nodes[i]
	if d := n.p.dist(s.q); d < s.dist || (d == s.dist && n.id < idx.nodes[s.best].id) {
		s.best, s.dist = i, d
	}

	diff := s.q[n.axis] - n.p[n.axis]
	near, far := n.left, n.right
	if diff > 0 {
		near, far = n.right, n.left
	}

	idx.search(near, s)
	// <= keeps equidistant candidates on the far side reachable for the id tie-break.
	if diff*diff <= s.dist {
		idx.search(far, s)
	}
}

// Len returns the number of indexed entries, zero for an index not made by
// Build.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.nodes)
}

func (idx *Index) Space() Space {
	return idx.space
}

// Has reports whether id names an indexed entry.
func (idx *Index) Has(id string) bool {
	_, ok := idx.ids[id]
	return ok
}
