// Package graph 把一次实现导出成 Graphviz DOT 图：站点是节点，提出的键是边，
// 可选地把每个非平凡簇放进自己的 cluster 子图。
package graph

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/awalterschulze/gographviz"

	"perco_tool/pkg/lattice"
	"perco_tool/pkg/percolation"
	"perco_tool/pkg/sampler"
	"perco_tool/pkg/unionfind"
)

const graphName = "perco"

// Options 导出选项
type Options struct {
	Clusters bool // 每个大小 > 1 的簇单独放进 cluster_<根> 子图
	Isolated bool // 是否输出孤立站点
}

// Export 一次导出的结果
type Export struct {
	Graph *gographviz.Graph
	UF    *unionfind.UnionFind
	Stats percolation.BuildStats
	Bonds [][2]int
}

// Realize 用种子构建一次实现，同时记录每条提出的键并生成 DOT 图
func Realize(params percolation.Params, seed uint64, opts Options) (*Export, error) {
	b, err := percolation.NewBuilder(params)
	if err != nil {
		return nil, err
	}
	var bonds [][2]int
	b.Observer = func(i, j int) {
		bonds = append(bonds, [2]int{i, j})
	}
	uf := b.Build(sampler.NewStream(seed))

	g, err := Build(b.Lattice(), uf, bonds, opts)
	if err != nil {
		return nil, err
	}
	return &Export{Graph: g, UF: uf, Stats: b.Stats, Bonds: bonds}, nil
}

// Build 由并查集和键列表生成无向图，节点名是站点下标，label 是坐标
func Build(lat *lattice.Lattice, uf *unionfind.UnionFind, bonds [][2]int, opts Options) (*gographviz.Graph, error) {
	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return nil, err
	}
	if err := g.SetDir(false); err != nil {
		return nil, err
	}
	if err := g.AddAttr(graphName, "label", strconv.Quote(fmt.Sprintf("L=%d d=%d", lat.L, lat.D))); err != nil {
		return nil, err
	}

	coords := make([]int, lat.D)
	parentOf := func(site int) string {
		if opts.Clusters && uf.Size(site) > 1 {
			return clusterName(uf.Find(site))
		}
		return graphName
	}

	if opts.Clusters {
		for _, r := range uf.Roots() {
			if uf.RootSize(r) < 2 {
				continue
			}
			attrs := map[string]string{"label": strconv.Quote(fmt.Sprintf("size=%d", uf.RootSize(r)))}
			if err := g.AddSubGraph(graphName, clusterName(r), attrs); err != nil {
				return nil, err
			}
		}
	}

	for site := 0; site < lat.N; site++ {
		if !opts.Isolated && uf.Size(site) == 1 {
			continue
		}
		coords = lat.IndexToCoord(site, coords)
		attrs := map[string]string{"label": strconv.Quote(formatCoords(coords))}
		if err := g.AddNode(parentOf(site), nodeName(site), attrs); err != nil {
			return nil, err
		}
	}

	for _, bond := range bonds {
		if err := g.AddEdge(nodeName(bond[0]), nodeName(bond[1]), false, nil); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func nodeName(site int) string {
	return strconv.Itoa(site)
}

func clusterName(root int) string {
	return "cluster_" + strconv.Itoa(root)
}

func formatCoords(coords []int) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = strconv.Itoa(c)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// ToAdjacencyMap 把图转换成无向邻接表，每条边在两端各记一次
func ToAdjacencyMap(g *gographviz.Graph) map[string][]string {
	adj := make(map[string][]string, len(g.Nodes.Nodes))
	for _, node := range g.Nodes.Nodes {
		adj[node.Name] = nil
	}
	for _, edge := range g.Edges.Edges {
		adj[edge.Src] = append(adj[edge.Src], edge.Dst)
		if edge.Src != edge.Dst {
			adj[edge.Dst] = append(adj[edge.Dst], edge.Src)
		}
	}
	return adj
}

// Components 用 DFS 求连通分量，每个分量按节点名排序，分量之间按第一个节点排序
// 和并查集算出来的簇应当完全一致，dot 子命令用它做一致性检查
func Components(g *gographviz.Graph) [][]string {
	adj := ToAdjacencyMap(g)
	visited := make(map[string]bool, len(adj))

	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)

	var comps [][]string
	for _, start := range names {
		if visited[start] {
			continue
		}
		// 显式栈，大簇不会爆递归
		var comp []string
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, node)
			for _, next := range adj[node] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		sort.Strings(comp)
		comps = append(comps, comp)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i][0] < comps[j][0] })
	return comps
}

// CheckConsistent 核对图的连通分量和并查集的非平凡簇是否一致
func CheckConsistent(g *gographviz.Graph, uf *unionfind.UnionFind) error {
	want := 0
	for _, r := range uf.Roots() {
		if uf.RootSize(r) > 1 {
			want++
		}
	}
	got := 0
	for _, comp := range Components(g) {
		if len(comp) < 2 {
			continue
		}
		got++
		first, err := strconv.Atoi(comp[0])
		if err != nil {
			return fmt.Errorf("节点名不是站点下标: %q", comp[0])
		}
		root := uf.Find(first)
		if uf.RootSize(root) != len(comp) {
			return fmt.Errorf("站点 %d 所在簇大小 %d, 图中连通分量大小 %d", first, uf.RootSize(root), len(comp))
		}
		for _, name := range comp[1:] {
			site, err := strconv.Atoi(name)
			if err != nil {
				return fmt.Errorf("节点名不是站点下标: %q", name)
			}
			if uf.Find(site) != root {
				return fmt.Errorf("站点 %d 和 %d 在图中连通, 但不在同一个簇", first, site)
			}
		}
	}
	if got != want {
		return fmt.Errorf("图中有 %d 个非平凡连通分量, 并查集有 %d 个", got, want)
	}
	return nil
}
