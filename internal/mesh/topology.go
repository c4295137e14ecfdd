package mesh

import "sort"

// Edge is an undirected edge with A < B.
type Edge struct {
	A, B int
}

func makeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// EdgeUse counts how many faces use each undirected edge. Degenerate face
// edges (a == b) are skipped.
func (m *Mesh) EdgeUse() map[Edge]int {
	use := make(map[Edge]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if a == b {
				continue
			}
			use[makeEdge(a, b)]++
		}
	}
	return use
}

// Watertight reports whether every edge is shared by exactly two faces.
// A mesh without faces is not watertight.
func (m *Mesh) Watertight() bool {
	if len(m.Faces) == 0 {
		return false
	}
	for _, n := range m.EdgeUse() {
		if n != 2 {
			return false
		}
	}
	return true
}

// Adjacency returns, for every vertex, its sorted unique neighbours across
// face edges. Faces are assumed valid.
func (m *Mesh) Adjacency() [][]int {
	return Adjacency(len(m.Vertices), m.Faces)
}

// Adjacency builds vertex neighbour lists for n vertices from faces.
// Out-of-range indices are ignored.
func Adjacency(n int, faces [][3]int) [][]int {
	sets := make([]map[int]struct{}, n)
	add := func(a, b int) {
		if a == b || a < 0 || b < 0 || a >= n || b >= n {
			return
		}
		if sets[a] == nil {
			sets[a] = make(map[int]struct{}, 6)
		}
		sets[a][b] = struct{}{}
	}
	for _, f := range faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			add(a, b)
			add(b, a)
		}
	}

	adj := make([][]int, n)
	for v, s := range sets {
		if len(s) == 0 {
			continue
		}
		nb := make([]int, 0, len(s))
		for u := range s {
			nb = append(nb, u)
		}
		sort.Ints(nb)
		adj[v] = nb
	}
	return adj
}

// Components labels connected components over face edges. Isolated vertices
// form their own component. Labels are assigned in increasing vertex order.
func (m *Mesh) Components() (labels []int, count int) {
	adj := m.Adjacency()
	labels = make([]int, len(m.Vertices))
	for i := range labels {
		labels[i] = -1
	}
	stack := make([]int, 0, 64)
	for v := range m.Vertices {
		if labels[v] >= 0 {
			continue
		}
		stack = append(stack[:0], v)
		labels[v] = count
		for len(stack) > 0 {
			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, nb := range adj[curr] {
				if labels[nb] < 0 {
					labels[nb] = count
					stack = append(stack, nb)
				}
			}
		}
		count++
	}
	return labels, count
}
