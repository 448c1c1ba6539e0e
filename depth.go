package room

import (
	"sort"
)

// DepthSorter assigns render orders so overlapping placeables draw in
// pseudo-3D order: whatever stands lower on screen (smaller Y) draws on
// top.
type DepthSorter struct {
	// Base is the order given to the rear-most item of each cluster
	Base int
}

// NewDepthSorter returns a sorter starting clusters at base
func NewDepthSorter(base int) *DepthSorter {
	return &DepthSorter{Base: base}
}

// Sort groups the room's resting placeables into clusters of overlapping
// collision bounds and orders each cluster back to front. Items being
// dragged or held are left alone. Returns how many render orders changed,
// so a settled room returns 0.
func (s *DepthSorter) Sort(r *Room) int {
	items := []*Node{}
	for _, n := range r.Placeables() {
		if n.dragging() || n.held() {
			continue
		}
		items = append(items, n)
	}

	bounds := make([]Rect, len(items))
	for i, n := range items {
		bounds[i] = n.WorldBounds()
	}

	set := newDisjointSet(len(items))
	for i := range items {
		for j := i + 1; j < len(items); j++ {
			if bounds[i].Overlaps(bounds[j]) {
				set.union(i, j)
			}
		}
	}

	clusters := map[int][]*Node{}
	for i, n := range items {
		root := set.find(i)
		clusters[root] = append(clusters[root], n)
	}

	changed := 0
	for _, cluster := range clusters {
		sortCluster(cluster)
		for rank, n := range cluster {
			changed += n.applyOrder(s.Base + rank)
		}
	}
	return changed
}

// sortCluster orders back to front: higher pivot Y first, ties broken by
// larger Z (further back) then name so the result is stable between frames.
func sortCluster(c []*Node) {
	pos := make(map[*Node]Vec3, len(c))
	for _, n := range c {
		pos[n] = n.WorldPosition()
	}
	sort.SliceStable(c, func(i, j int) bool {
		a, b := pos[c[i]], pos[c[j]]
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		if a.Z != b.Z {
			return a.Z > b.Z
		}
		return c[i].name < c[j].name
	})
}

type disjointSet struct {
	parent []int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{parent: make([]int, n)}
	for i := range d.parent {
		d.parent[i] = i
	}
	return d
}

func (d *disjointSet) find(i int) int {
	for d.parent[i] != i {
		d.parent[i] = d.parent[d.parent[i]]
		i = d.parent[i]
	}
	return i
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra != rb {
		d.parent[rb] = ra
	}
}
