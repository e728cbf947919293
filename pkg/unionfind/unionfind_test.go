package unionfind

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"perco_tool/pkg/sampler"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(10)

	// 初始状态：每个元素独立
	if uf.Connected(1, 2) {
		t.Errorf("Expected 1 and 2 not connected")
	}
	if uf.Count() != 10 {
		t.Errorf("Expected 10 sets, got %d", uf.Count())
	}

	// 合并 1 和 2
	if !uf.Union(1, 2) {
		t.Errorf("Expected union of 1 and 2 to merge")
	}
	if !uf.Connected(1, 2) {
		t.Errorf("Expected 1 and 2 connected")
	}

	// 合并 2 和 3
	uf.Union(2, 3)
	if !uf.Connected(1, 3) {
		t.Errorf("Expected 1 and 3 connected")
	}

	// 检查集合大小
	if uf.Size(1) != 3 {
		t.Errorf("Expected size of set containing 1 to be 3, got %d", uf.Size(1))
	}

	// 重复合并不改变任何东西
	if uf.Union(3, 1) {
		t.Errorf("Expected union of already connected elements to be a no-op")
	}

	// 合并不同集合
	uf.Union(4, 5)
	if !uf.Connected(4, 5) {
		t.Errorf("Expected 4 and 5 connected")
	}

	// 检查未合并的元素
	if uf.Connected(1, 4) {
		t.Errorf("Expected 1 and 4 not connected")
	}
	if uf.Count() != 6 {
		t.Errorf("Expected 6 sets, got %d", uf.Count())
	}
}

func TestUnionBySize(t *testing.T) {
	uf := NewUnionFind(5)

	// 大小相同时 y 的根挂到 x 的根下面
	uf.Union(0, 1)
	assert.Equal(t, 0, uf.Parent(1))

	// 小集合总是挂到大集合下面，不管参数顺序
	uf.Union(2, 0)
	assert.Equal(t, 0, uf.Parent(2))
	assert.Equal(t, 3, uf.RootSize(0))

	uf.Union(3, 4)
	uf.Union(3, 1)
	assert.Equal(t, 0, uf.Parent(3))
	assert.Equal(t, 5, uf.Size(4))
}

func TestUnionSameElement(t *testing.T) {
	uf := NewUnionFind(3)
	assert.False(t, uf.Union(1, 1))
	assert.Equal(t, 1, uf.Find(1))
	assert.Equal(t, 3, uf.Count())
}

func TestFindPathHalving(t *testing.T) {
	// 手工搭一条链 4 -> 3 -> 2 -> 1 -> 0
	uf := NewUnionFind(5)
	for i := 1; i < 5; i++ {
		uf.parent[i] = i - 1
	}
	uf.size[0] = 5

	assert.Equal(t, 0, uf.Find(4))
	// 路径减半只把经过的节点指向祖父: 4 -> 2, 2 -> 0; 3 和 1 不变
	assert.Equal(t, 2, uf.Parent(4))
	assert.Equal(t, 2, uf.Parent(3))
	assert.Equal(t, 0, uf.Parent(2))
	assert.Equal(t, 0, uf.Parent(1))

	// 再查一次路径继续缩短
	assert.Equal(t, 0, uf.Find(4))
	assert.Equal(t, 0, uf.Parent(4))
}

func TestRootsAndSets(t *testing.T) {
	uf := NewUnionFind(6)

	// {0,1,2}, {3,4}, {5}
	uf.Union(0, 1)
	uf.Union(1, 2)
	uf.Union(3, 4)

	assert.Equal(t, []int{0, 3, 5}, uf.Roots())
	assert.Equal(t, map[int][]int{
		0: {0, 1, 2},
		3: {3, 4},
		5: {5},
	}, uf.Sets())
	assert.True(t, uf.IsRoot(5))
	assert.False(t, uf.IsRoot(4))
	assert.Equal(t, 6, uf.Len())
}

// 随机合并之后检查不变量
func TestInvariantsUnderRandomUnions(t *testing.T) {
	const n = 500
	uf := NewUnionFind(n)
	rng := sampler.NewStream(2024)

	for step := 0; step < 2000; step++ {
		uf.Union(rng.Intn(n), rng.Intn(n))

		if step%100 != 0 {
			continue
		}
		total := 0
		for _, r := range uf.Roots() {
			total += uf.RootSize(r)
		}
		if total != n {
			t.Fatalf("step %d: sum of root sizes %d, want %d", step, total, n)
		}
		if len(uf.Roots()) != uf.Count() {
			t.Fatalf("step %d: %d roots but count %d", step, len(uf.Roots()), uf.Count())
		}
		for x := 0; x < n; x++ {
			r := uf.Find(x)
			if !uf.IsRoot(r) || uf.Find(r) != r {
				t.Fatalf("step %d: find(%d)=%d is not a root", step, x, r)
			}
		}
	}
}
