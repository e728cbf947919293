package percolation

import (
	"github.com/dustin/go-humanize"

	"perco_tool/pkg/lattice"
	"perco_tool/pkg/logutil"
	"perco_tool/pkg/sampler"
	"perco_tool/pkg/unionfind"
)

// BondObserver 每提出一条键 (i, j) 时回调一次，不管两端是否已经连通
type BondObserver func(i, j int)

// BuildStats 一次构建的计数
type BuildStats struct {
	Classes        int `json:"classes"`         // 参与采样的位移类
	SkippedClasses int `json:"skipped_classes"` // p <= 0 直接跳过的位移类
	Proposed       int `json:"proposed"`        // 提出的键
	Rejected       int `json:"rejected"`        // 自补位移被半轴过滤掉的起点
	Merged         int `json:"merged"`          // 真正合并了两个簇的键
}

// Builder 按参数构建实现，同一个 Builder 可以反复 Build，但不能并发使用
type Builder struct {
	Params   Params
	Observer BondObserver
	Stats    BuildStats

	lat *lattice.Lattice
}

// NewBuilder 校验参数并准备晶格
func NewBuilder(params Params) (*Builder, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	lat, err := lattice.New(params.L, params.D)
	if err != nil {
		return nil, err
	}
	return &Builder{Params: params, lat: lat}, nil
}

func (b *Builder) Lattice() *lattice.Lattice {
	return b.lat
}

// Build 用调用方持有的随机流添加全部长程键
func (b *Builder) Build(src sampler.Source) *unionfind.UnionFind {
	b.Stats = BuildStats{}
	lat, n := b.lat, b.lat.N
	uf := unionfind.NewUnionFind(n)
	coords := make([]int, lat.D)

	for disp := range lat.Displacements(b.Params.Norm) {
		p := lattice.BondProbability(disp.Distance, lat.D, b.Params.Alpha, b.Params.Beta)
		if p <= 0 {
			b.Stats.SkippedClasses++
			continue
		}
		b.Stats.Classes++

		i := 0
		for i < n {
			i += sampler.GeometricSkip(p, src)
			if i >= n {
				break
			}

			coords = lat.IndexToCoord(i, coords)
			if !disp.Accepts(coords, lat.L) {
				// 自补位移只保留中轴前半段的起点
				b.Stats.Rejected++
				i++
				continue
			}

			j := lat.Shift(coords, disp.Vec)
			b.Stats.Proposed++
			if b.Observer != nil {
				b.Observer(i, j)
			}
			if uf.Union(i, j) {
				b.Stats.Merged++
			}
			i++
		}
	}
	return uf
}

// BuildConfiguration 用种子构建一次实现，参数非法时在采样前返回配置错误
func BuildConfiguration(params Params, seed uint64) (*unionfind.UnionFind, error) {
	b, err := NewBuilder(params)
	if err != nil {
		return nil, err
	}
	uf := b.Build(sampler.NewStream(seed))

	if logutil.Enabled(logutil.DEBUG) {
		logutil.Debug("构建完成 %s seed=%d 站点=%s 位移类=%s 提出键=%s 合并=%s 簇=%s",
			params, seed,
			humanize.Comma(int64(b.lat.N)),
			humanize.Comma(int64(b.Stats.Classes)),
			humanize.Comma(int64(b.Stats.Proposed)),
			humanize.Comma(int64(b.Stats.Merged)),
			humanize.Comma(int64(uf.Count())))
	}
	return uf, nil
}
