// Package sampler 提供几何跳跃采样（Bernoulli 稀疏化）和显式播种的随机流。
//
// 每个实现（realization）都必须持有自己的随机流，不能使用全局随机数生成器，
// 这样并发跑的多个实现彼此独立，并且同一个种子总能得到相同的结果。
package sampler

import (
	"math"

	"golang.org/x/exp/rand"
)

// SkipAll 表示“跳过剩余全部候选”的哨兵值。
// 任何合法下标 i (< 晶格站点上限) 加上它都会越界，但不会让 int 溢出。
const SkipAll = math.MaxInt / 4

// ZeroProbability 小于等于这个值的概率按 0 处理，避免对接近 0 的数取对数
const ZeroProbability = 1e-15

// Source 是 [0,1) 均匀分布的随机源
type Source interface {
	Float64() float64
}

// NewStream 用种子创建一条独立的 PCG 随机流
func NewStream(seed uint64) *rand.Rand {
	src := &rand.PCGSource{}
	src.Seed(seed)
	return rand.New(src)
}

// GeometricSkip 返回下一次成功之前连续失败的 Bernoulli(p) 试验次数。
//
// p >= 1 时每次都成功，返回 0；p <= ZeroProbability 时返回 SkipAll。
// 其余情况按几何分布的逆 CDF 采样，期望为 (1-p)/p。
func GeometricSkip(p float64, src Source) int {
	if p >= 1.0 {
		return 0
	}
	if p <= ZeroProbability {
		return SkipAll
	}

	u := src.Float64()
	for u == 0 {
		// log(0) 无意义，u 必须落在 (0,1)
		u = src.Float64()
	}

	k := math.Floor(math.Log(u) / math.Log1p(-p))
	if k >= SkipAll {
		return SkipAll
	}
	return int(k)
}

// DeriveSeed 由基础种子和实现编号派生出独立的子种子（SplitMix64 混合）
func DeriveSeed(base uint64, index int) uint64 {
	z := base + uint64(index+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
