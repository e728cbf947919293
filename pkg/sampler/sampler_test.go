package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// 固定输出的随机源，方便验证边界分支
type fixedSource struct {
	vals []float64
	pos  int
}

func (f *fixedSource) Float64() float64 {
	v := f.vals[f.pos%len(f.vals)]
	f.pos++
	return v
}

func TestGeometricSkipCertain(t *testing.T) {
	rng := NewStream(1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, GeometricSkip(1.0, rng))
		assert.Equal(t, 0, GeometricSkip(1.5, rng))
	}
}

func TestGeometricSkipZeroProbability(t *testing.T) {
	rng := NewStream(1)
	for _, p := range []float64{0, 1e-15, 1e-300, -0.5} {
		assert.Equal(t, SkipAll, GeometricSkip(p, rng), "p=%g", p)
	}
	// 哨兵值加上任意合法下标都不能溢出
	assert.Greater(t, SkipAll+SkipAll, SkipAll)
}

func TestGeometricSkipRedrawsZero(t *testing.T) {
	// 第一个 0 必须被丢弃，0.3 对应 floor(log 0.3 / log 0.5) = floor(1.737) = 1
	src := &fixedSource{vals: []float64{0, 0.3}}
	assert.Equal(t, 1, GeometricSkip(0.5, src))
	assert.Equal(t, 2, src.pos)
}

func TestGeometricSkipTinyProbability(t *testing.T) {
	// p 刚好高于哨兵阈值时仍然走对数分支，结果很大但不会超过 SkipAll
	src := &fixedSource{vals: []float64{1e-300}}
	k := GeometricSkip(1e-14, src)
	assert.Greater(t, k, int(1e16))
	assert.Less(t, k, SkipAll)
}

func TestGeometricSkipMean(t *testing.T) {
	const draws = 200000
	for _, p := range []float64{0.05, 0.3, 0.75} {
		rng := NewStream(42)
		sum := 0.0
		for i := 0; i < draws; i++ {
			k := GeometricSkip(p, rng)
			if k < 0 {
				t.Fatalf("negative skip %d", k)
			}
			sum += float64(k)
		}
		mean := sum / draws
		want := (1 - p) / p
		// 方差 (1-p)/p^2，容差取 6 个标准误
		tol := 6 * (1 / p) / 447.0
		assert.InDelta(t, want, mean, tol, "p=%v", p)
	}
}

func TestStreamDeterminism(t *testing.T) {
	a, b := NewStream(7), NewStream(7)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, GeometricSkip(0.1, a), GeometricSkip(0.1, b))
	}
}

func TestDeriveSeedDistinct(t *testing.T) {
	seen := make(map[uint64]int)
	for i := 0; i < 10000; i++ {
		s := DeriveSeed(123, i)
		if j, ok := seen[s]; ok {
			t.Fatalf("seed collision between %d and %d", i, j)
		}
		seen[s] = i
	}
	assert.Equal(t, DeriveSeed(9, 3), DeriveSeed(9, 3))
	assert.NotEqual(t, DeriveSeed(9, 3), DeriveSeed(10, 3))
}
