package index

import (
	"cmp"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIntTree(degree int) *Tree[int, int] {
	return NewTree[int, int](degree, cmp.Compare[int])
}

func collect(t *Tree[int, int]) []int {
	var keys []int
	t.Ascend(func(k, _ int) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

func TestTreeInsertFind(t *testing.T) {
	tree := newIntTree(2)
	v := tree.GetOrCreate(100, func() int { return 1 })
	assert.Equal(t, 1, v)

	got, ok := tree.Find(100)
	require.True(t, ok)
	assert.Equal(t, 1, got)

	_, ok = tree.Find(200)
	assert.False(t, ok)
}

func TestTreeGetOrCreateDuplicate(t *testing.T) {
	tree := newIntTree(2)
	tree.GetOrCreate(150, func() int { return 1 })
	v := tree.GetOrCreate(150, func() int { return 2 })
	assert.Equal(t, 1, v, "existing value should be returned")
	assert.Equal(t, 1, tree.Len())
}

func TestEmptyTreeMinMax(t *testing.T) {
	tree := newIntTree(2)
	_, _, ok := tree.Min()
	assert.False(t, ok)
	_, _, ok = tree.Max()
	assert.False(t, ok)
	assert.Empty(t, collect(tree))
}

func TestTreeOrderAcrossSplits(t *testing.T) {
	for _, degree := range []int{2, 3, 4, 32} {
		tree := newIntTree(degree)
		rng := rand.New(rand.NewSource(int64(degree)))
		want := rng.Perm(2000)
		for _, k := range want {
			tree.GetOrCreate(k, func() int { return k * 10 })
		}
		slices.Sort(want)

		require.Equal(t, len(want), tree.Len())
		require.Equal(t, want, collect(tree), "degree %d", degree)

		for _, k := range want {
			v, ok := tree.Find(k)
			require.True(t, ok)
			require.Equal(t, k*10, v)
		}

		minK, _, _ := tree.Min()
		maxK, _, _ := tree.Max()
		assert.Equal(t, 0, minK)
		assert.Equal(t, 1999, maxK)
	}
}

func TestTreeAscendRange(t *testing.T) {
	tree := newIntTree(2)
	for k := 0; k < 100; k += 5 {
		tree.GetOrCreate(k, func() int { return k })
	}

	cases := []struct {
		name           string
		lo, hi         int
		loIncl, hiIncl bool
		want           []int
	}{
		{"closed", 10, 30, true, true, []int{10, 15, 20, 25, 30}},
		{"open", 10, 30, false, false, []int{15, 20, 25}},
		{"half open", 10, 30, true, false, []int{10, 15, 20, 25}},
		{"between keys", 11, 29, true, true, []int{15, 20, 25}},
		{"point", 20, 20, true, true, []int{20}},
		{"point exclusive", 20, 20, false, true, nil},
		{"below all", -10, -1, true, true, nil},
		{"above all", 100, 200, true, true, nil},
		{"everything", -1, 1000, true, true, collect(tree)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got []int
			tree.AscendRange(tc.lo, tc.hi, tc.loIncl, tc.hiIncl, func(k, _ int) bool {
				got = append(got, k)
				return true
			})
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTreeAscendRangeMatchesSortedReference(t *testing.T) {
	for _, degree := range []int{2, 3, 5} {
		rng := rand.New(rand.NewSource(int64(100 + degree)))
		tree := newIntTree(degree)
		var keys []int
		for i := 0; i < 500; i++ {
			k := rng.Intn(1000)
			if _, ok := tree.Find(k); !ok {
				keys = append(keys, k)
			}
			tree.GetOrCreate(k, func() int { return k })
		}
		slices.Sort(keys)

		for i := 0; i < 500; i++ {
			lo, hi := rng.Intn(1100)-50, rng.Intn(1100)-50
			if lo > hi {
				lo, hi = hi, lo
			}
			loIncl, hiIncl := rng.Intn(2) == 0, rng.Intn(2) == 0

			var want []int
			for _, k := range keys {
				if (k > lo || (loIncl && k == lo)) && (k < hi || (hiIncl && k == hi)) {
					want = append(want, k)
				}
			}
			var got []int
			tree.AscendRange(lo, hi, loIncl, hiIncl, func(k, _ int) bool {
				got = append(got, k)
				return true
			})
			require.Equal(t, want, got, "degree %d range %d..%d incl %v/%v", degree, lo, hi, loIncl, hiIncl)
		}
	}
}

func TestTreeAscendStopsEarly(t *testing.T) {
	tree := newIntTree(2)
	for k := 0; k < 50; k++ {
		tree.GetOrCreate(k, func() int { return k })
	}
	var got []int
	tree.Ascend(func(k, _ int) bool {
		got = append(got, k)
		return len(got) < 3
	})
	assert.Equal(t, []int{0, 1, 2}, got)
}

func BenchmarkTreeGetOrCreate(b *testing.B) {
	tree := newIntTree(DefaultDegree)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.GetOrCreate(i, func() int { return i })
	}
}
