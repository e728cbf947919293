package unionfind

// UnionFind 是并查集结构，按大小合并 + 路径减半
// 不变量: parent[i] == i 当且仅当 i 是根; size 只对当前的根有意义，
// 所有根的 size 之和始终等于元素个数
type UnionFind struct {
	parent []int
	size   []int
	count  int // 当前不相交集合的个数
}

// NewUnionFind 初始化并查集，元素范围为 [0, n)
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	size := make([]int, n)
	for i := range parent {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{parent: parent, size: size, count: n}
}

// Find 查找元素所在集合的根节点
// 路径减半: 每走一步都把当前节点的父指针指向祖父节点，而不是直接压缩到根
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union 合并两个集合（按大小）
// 小的根挂到大的根下面，大小相同时 y 的根挂到 x 的根下面；已经在同一个集合时返回 false
func (uf *UnionFind) Union(x, y int) bool {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return false // 已经在同一个集合
	}

	if uf.size[rootX] < uf.size[rootY] {
		rootX, rootY = rootY, rootX
	}
	uf.parent[rootY] = rootX
	uf.size[rootX] += uf.size[rootY]
	uf.count--
	return true
}

// Connected 判断两个元素是否在同一个集合
func (uf *UnionFind) Connected(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Size 返回某个集合的大小
func (uf *UnionFind) Size(x int) int {
	return uf.size[uf.Find(x)]
}

// RootSize 直接读取根的大小，不做查找；r 不是根时结果没有意义
func (uf *UnionFind) RootSize(r int) int {
	return uf.size[r]
}

// Len 元素个数
func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

// Count 当前不相交集合的个数
func (uf *UnionFind) Count() int {
	return uf.count
}

// Parent 返回当前的父指针，不做任何压缩
func (uf *UnionFind) Parent(x int) int {
	return uf.parent[x]
}

func (uf *UnionFind) IsRoot(x int) bool {
	return uf.parent[x] == x
}

// Roots 按升序返回所有根
func (uf *UnionFind) Roots() []int {
	roots := make([]int, 0, uf.count)
	for i, p := range uf.parent {
		if p == i {
			roots = append(roots, i)
		}
	}
	return roots
}

// Sets 返回 根 -> 集合成员（升序）
func (uf *UnionFind) Sets() map[int][]int {
	groups := make(map[int][]int, uf.count)
	for i := range uf.parent {
		root := uf.Find(i)
		groups[root] = append(groups[root], i)
	}
	return groups
}
