// Package lattice 描述边长为 L 的 d 维周期晶格：
// 站点下标与坐标的互相转换、位移类枚举、环面距离以及长程键概率核。
package lattice

import (
	"golang.org/x/exp/constraints"

	"perco_tool/pkg/errorutil"
)

// MaxSites 晶格站点数上限，保证 下标 + sampler.SkipAll 不会溢出
const MaxSites = 1 << 48

// MaxDimension 维数上限，L >= 2 时 MaxSites 已经隐含了这个上限，L = 1 时要单独限制
const MaxDimension = 48

// Lattice 是 d 维周期晶格，站点按最高维在前的 L 进制编码为 [0, L^d)
type Lattice struct {
	L int
	D int
	N int

	strides []int // strides[i] = L^(d-1-i)
}

// New 创建晶格，L <= 0 或 d <= 0 直接返回配置错误
func New(l, d int) (*Lattice, error) {
	if l <= 0 {
		return nil, errorutil.NewConfigError("晶格边长 L 必须为正数, 当前 L=%d", l)
	}
	if d <= 0 {
		return nil, errorutil.NewConfigError("维数 d 必须为正数, 当前 d=%d", d)
	}
	if d > MaxDimension {
		return nil, errorutil.NewConfigError("维数 d=%d 超过上限 %d", d, MaxDimension)
	}
	n, ok := checkedPow(l, d, MaxSites)
	if !ok {
		return nil, errorutil.NewConfigError("站点数 %d^%d 超过上限 %d", l, d, MaxSites)
	}

	strides := make([]int, d)
	s := 1
	for i := d - 1; i >= 0; i-- {
		strides[i] = s
		s *= l
	}
	return &Lattice{L: l, D: d, N: n, strides: strides}, nil
}

// checkedPow 计算 base^exp，超过 limit 时返回 false
func checkedPow[T constraints.Integer](base T, exp int, limit T) (T, bool) {
	result := T(1)
	for i := 0; i < exp; i++ {
		if base != 0 && result > limit/base {
			return 0, false
		}
		result *= base
	}
	return result, result <= limit
}

// CoordToIndex Σ coords[i]·L^(d-1-i)
func (lt *Lattice) CoordToIndex(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx += c * lt.strides[i]
	}
	return idx
}

// IndexToCoord 从最后一维开始反复取模/整除，结果写入 dst（容量不够时重新分配）
func (lt *Lattice) IndexToCoord(idx int, dst []int) []int {
	if cap(dst) < lt.D {
		dst = make([]int, lt.D)
	}
	dst = dst[:lt.D]
	for i := lt.D - 1; i >= 0; i-- {
		dst[i] = idx % lt.L
		idx /= lt.L
	}
	return dst
}

// Neighbor 返回坐标为 (c_k + r_k) mod L 的站点，scratch 用来复用坐标缓冲
func (lt *Lattice) Neighbor(idx int, r []int, scratch []int) int {
	coords := lt.IndexToCoord(idx, scratch)
	return lt.Shift(coords, r)
}

// Shift 已知起点坐标时直接计算平移后的站点下标
func (lt *Lattice) Shift(coords, r []int) int {
	j := 0
	for k, c := range coords {
		j += ((c + r[k]) % lt.L) * lt.strides[k]
	}
	return j
}
