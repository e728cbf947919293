package testutils

import (
	"testing"

	"perco_tool/pkg/unionfind"
)

// CheckUnionFind 检查并查集的不变量:
// find(x) 一定是根、find 幂等、所有根的大小之和等于元素个数、根的个数等于 Count()
func CheckUnionFind(t testing.TB, uf *unionfind.UnionFind) {
	t.Helper()

	n := uf.Len()
	total := 0
	roots := uf.Roots()
	for _, r := range roots {
		total += uf.RootSize(r)
	}
	if total != n {
		t.Fatalf("根的大小之和 %d 不等于元素个数 %d", total, n)
	}
	if len(roots) != uf.Count() {
		t.Fatalf("根的个数 %d 不等于 Count() %d", len(roots), uf.Count())
	}

	members := make(map[int]int, len(roots))
	for x := 0; x < n; x++ {
		r := uf.Find(x)
		if !uf.IsRoot(r) {
			t.Fatalf("find(%d)=%d 不是根", x, r)
		}
		if uf.Find(r) != r {
			t.Fatalf("find(find(%d)) != find(%d)", x, x)
		}
		members[r]++
	}
	for r, cnt := range members {
		if uf.RootSize(r) != cnt {
			t.Fatalf("根 %d 记录的大小 %d, 实际成员 %d", r, uf.RootSize(r), cnt)
		}
	}
}

// Bond 无向键，端点按升序保存
type Bond [2]int

func NewBond(i, j int) Bond {
	if i > j {
		i, j = j, i
	}
	return Bond{i, j}
}

// BondRecorder 记录构建过程中提出的所有键，Observe 可以直接当作回调传入
type BondRecorder struct {
	Bonds []Bond
}

func (r *BondRecorder) Observe(i, j int) {
	r.Bonds = append(r.Bonds, NewBond(i, j))
}

// Counts 每条无向键被提出的次数
func (r *BondRecorder) Counts() map[Bond]int {
	counts := make(map[Bond]int, len(r.Bonds))
	for _, b := range r.Bonds {
		counts[b]++
	}
	return counts
}
