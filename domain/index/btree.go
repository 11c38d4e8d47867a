package index

import "slices"

const DefaultDegree = 32

type item[K, V any] struct {
	key K
	val V
}

type node[K, V any] struct {
	items    []item[K, V]
	children []*node[K, V]
}

func (n *node[K, V]) leaf() bool { return len(n.children) == 0 }

// Tree is a B-Tree of minimum degree t: every node except the root holds
// between t-1 and 2t-1 keys. Keys are unique; there is no delete.
type Tree[K, V any] struct {
	root   *node[K, V]
	cmp    func(a, b K) int
	degree int
	size   int
}

func NewTree[K, V any](degree int, cmp func(a, b K) int) *Tree[K, V] {
	if degree < 2 {
		degree = DefaultDegree
	}
	return &Tree[K, V]{cmp: cmp, degree: degree}
}

func (t *Tree[K, V]) Len() int { return t.size }

func (t *Tree[K, V]) maxItems() int { return 2*t.degree - 1 }

// ---- public API ----

func (t *Tree[K, V]) Find(key K) (V, bool) {
	n := t.root
	for n != nil {
		i, found := t.search(n, key)
		if found {
			return n.items[i].val, true
		}
		if n.leaf() {
			break
		}
		n = n.children[i]
	}
	var zero V
	return zero, false
}

// GetOrCreate returns the value stored under key, inserting mk() first
// when the key is absent.
func (t *Tree[K, V]) GetOrCreate(key K, mk func() V) V {
	if v, ok := t.Find(key); ok {
		return v
	}
	if t.root == nil {
		t.root = &node[K, V]{}
	}
	if len(t.root.items) == t.maxItems() {
		old := t.root
		t.root = &node[K, V]{children: []*node[K, V]{old}}
		t.splitChild(t.root, 0)
	}
	v := mk()
	t.insertNonFull(t.root, item[K, V]{key: key, val: v})
	t.size++
	return v
}

func (t *Tree[K, V]) Min() (K, V, bool) {
	var zk K
	var zv V
	n := t.root
	if n == nil || len(n.items) == 0 {
		return zk, zv, false
	}
	for !n.leaf() {
		n = n.children[0]
	}
	return n.items[0].key, n.items[0].val, true
}

func (t *Tree[K, V]) Max() (K, V, bool) {
	var zk K
	var zv V
	n := t.root
	if n == nil || len(n.items) == 0 {
		return zk, zv, false
	}
	for !n.leaf() {
		n = n.children[len(n.children)-1]
	}
	it := n.items[len(n.items)-1]
	return it.key, it.val, true
}

// ---- walkers ----

// Ascend visits every entry in key order until fn returns false.
func (t *Tree[K, V]) Ascend(fn func(K, V) bool) {
	t.walk(t.root, nil, nil, false, false, fn)
}

// AscendRange visits entries with lo <= key <= hi in key order. The
// inclusive flags make either end exclusive.
func (t *Tree[K, V]) AscendRange(lo, hi K, loIncl, hiIncl bool, fn func(K, V) bool) {
	t.walk(t.root, &lo, &hi, loIncl, hiIncl, fn)
}

func (t *Tree[K, V]) walk(n *node[K, V], lo, hi *K, loIncl, hiIncl bool, fn func(K, V) bool) bool {
	if n == nil {
		return true
	}
	start := 0
	if lo != nil {
		start, _ = t.search(n, *lo)
	}
	for i := start; i <= len(n.items); i++ {
		if !n.leaf() {
			if !t.walk(n.children[i], lo, hi, loIncl, hiIncl, fn) {
				return false
			}
		}
		if i == len(n.items) {
			break
		}
		it := n.items[i]
		if lo != nil && !loIncl && t.cmp(it.key, *lo) == 0 {
			continue
		}
		if hi != nil {
			c := t.cmp(it.key, *hi)
			if c > 0 || (c == 0 && !hiIncl) {
				return false
			}
		}
		if !fn(it.key, it.val) {
			return false
		}
	}
	return true
}

// ---- internal helpers ----

// search returns the index of the first item >= key.
func (t *Tree[K, V]) search(n *node[K, V], key K) (int, bool) {
	return slices.BinarySearchFunc(n.items, key, func(it item[K, V], k K) int {
		return t.cmp(it.key, k)
	})
}

// splitChild splits the full child parent.children[i] around its median,
// lifting the median into parent.
func (t *Tree[K, V]) splitChild(parent *node[K, V], i int) {
	child := parent.children[i]
	mid := t.degree - 1
	median := child.items[mid]

	right := &node[K, V]{
		items: append([]item[K, V](nil), child.items[mid+1:]...),
	}
	if !child.leaf() {
		right.children = append([]*node[K, V](nil), child.children[t.degree:]...)
		clear(child.children[t.degree:])
		child.children = child.children[:t.degree]
	}
	clear(child.items[mid:])
	child.items = child.items[:mid]

	parent.items = slices.Insert(parent.items, i, median)
	parent.children = slices.Insert(parent.children, i+1, right)
}

func (t *Tree[K, V]) insertNonFull(n *node[K, V], it item[K, V]) {
	for {
		i, _ := t.search(n, it.key)
		if n.leaf() {
			n.items = slices.Insert(n.items, i, it)
			return
		}
		if len(n.children[i].items) == t.maxItems() {
			t.splitChild(n, i)
			if t.cmp(it.key, n.items[i].key) > 0 {
				i++
			}
		}
		n = n.children[i]
	}
}
