package accounts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Tree is an arena-indexed view of the account forest: nodes are addressed by
// a stable slice index and parent/children relations are plain index arrays.
// It carries no storage handles, so traversals are allocation-predictable and
// testable in isolation.
type Tree struct {
	nodes    []Account
	index    map[uuid.UUID]int
	parent   []int
	children [][]int
}

// NewTree builds the arena from a flat account listing. A parent reference to
// an account outside the listing is an error; children are ordered by name so
// traversal output is deterministic.
func NewTree(list []Account) (*Tree, error) {
	t := &Tree{
		nodes:    list,
		index:    make(map[uuid.UUID]int, len(list)),
		parent:   make([]int, len(list)),
		children: make([][]int, len(list)),
	}
	for i, a := range list {
		if _, dup := t.index[a.GUID]; dup {
			return nil, fmt.Errorf("accounts: duplicate account %s", a.GUID)
		}
		t.index[a.GUID] = i
	}
	for i, a := range list {
		t.parent[i] = -1
		if a.ParentGUID == nil {
			continue
		}
		p, ok := t.index[*a.ParentGUID]
		if !ok {
			return nil, fmt.Errorf("accounts: account %s references unknown parent %s", a.GUID, *a.ParentGUID)
		}
		t.parent[i] = p
		t.children[p] = append(t.children[p], i)
	}
	for _, kids := range t.children {
		sort.Slice(kids, func(a, b int) bool {
			return t.nodes[kids[a]].Name < t.nodes[kids[b]].Name
		})
	}
	return t, nil
}

// Len returns the number of nodes in the arena.
func (t *Tree) Len() int { return len(t.nodes) }

// At returns the account at index i.
func (t *Tree) At(i int) Account { return t.nodes[i] }

// Lookup resolves an account GUID to its arena index.
func (t *Tree) Lookup(guid uuid.UUID) (int, bool) {
	i, ok := t.index[guid]
	return i, ok
}

// Children returns the arena indices of a node's direct children.
func (t *Tree) Children(i int) []int { return t.children[i] }

// Parent returns the parent index, or -1 for a root.
func (t *Tree) Parent(i int) int { return t.parent[i] }

// Root locates the book's ROOT account. Falls back to the first parentless
// node when no ROOT-typed account exists.
func (t *Tree) Root() (int, bool) {
	fallback := -1
	for i, a := range t.nodes {
		if a.Type == TypeRoot {
			return i, true
		}
		if t.parent[i] == -1 && fallback == -1 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return fallback, true
	}
	return -1, false
}

// PostOrder returns the subtree rooted at start with every child listed
// before its parent, so a single forward pass can fold child balances into
// parents.
func (t *Tree) PostOrder(start int) []int {
	out := make([]int, 0, len(t.nodes))
	var walk func(int)
	walk = func(i int) {
		for _, c := range t.children[i] {
			walk(c)
		}
		out = append(out, i)
	}
	walk(start)
	return out
}

// Subtree returns the set of arena indices reachable from start, including
// start itself.
func (t *Tree) Subtree(start int) []int {
	return t.PostOrder(start)
}

// FullName renders the colon-separated path from the root, excluding the ROOT
// node itself ("Assets:Bank:Checking").
func (t *Tree) FullName(i int) string {
	var parts []string
	for j := i; j >= 0; j = t.parent[j] {
		if t.nodes[j].Type == TypeRoot {
			break
		}
		parts = append(parts, t.nodes[j].Name)
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return strings.Join(parts, ":")
}

// Depth returns the number of edges between node i and its root.
func (t *Tree) Depth(i int) int {
	d := 0
	for j := t.parent[i]; j >= 0; j = t.parent[j] {
		d++
	}
	return d
}
