package lattice

import (
	"iter"
	"math"
	"slices"
)

// MinDistance 距离不超过它的位移类视为零位移，直接跳过
const MinDistance = 1e-12

// Displacement 一个位移等价类 r ~ -r (mod L) 的规范代表元
type Displacement struct {
	Vec      []int   // 每一维都在 [0, L/2]，不全为 0
	Distance float64 // 环面距离

	// r ≡ -r (mod L) 时为 true，此时只在 MidAxis 轴的前半段取起点，
	// 否则同一条无向键会从两个端点各加一次
	SelfComplement bool
	MidAxis        int // 第一个等于 L/2 的维度，非自补时为 -1
}

// Accepts 判断起点坐标能否作为这个位移类的键起点
func (disp Displacement) Accepts(coords []int, l int) bool {
	return !disp.SelfComplement || coords[disp.MidAxis] < l/2
}

// Displacements 惰性枚举全部位移类：[0, ⌊L/2⌋]^d 上的里程表，最后一维变化最快，跳过全零向量。
// 每次 range 都从头开始。
func (lt *Lattice) Displacements(norm Norm) iter.Seq[Displacement] {
	return func(yield func(Displacement) bool) {
		half := lt.L / 2
		r := make([]int, lt.D)
		for {
			// 进位
			i := lt.D - 1
			for ; i >= 0; i-- {
				r[i]++
				if r[i] <= half {
					break
				}
				r[i] = 0
			}
			if i < 0 {
				// 回到全零，枚举结束
				return
			}
			if !yield(lt.classify(r, norm)) {
				return
			}
		}
	}
}

// NumDisplacements (⌊L/2⌋+1)^d - 1
func (lt *Lattice) NumDisplacements() int {
	n, _ := checkedPow(lt.L/2+1, lt.D, math.MaxInt)
	return n - 1
}

func (lt *Lattice) classify(r []int, norm Norm) Displacement {
	disp := Displacement{
		Vec:      slices.Clone(r),
		Distance: norm.Distance(r, lt.L),
		MidAxis:  -1,
	}
	if lt.L%2 != 0 {
		return disp
	}

	half := lt.L / 2
	mid := -1
	for k, x := range r {
		if x != 0 && x != half {
			return disp
		}
		if x == half && mid < 0 {
			mid = k
		}
	}
	if mid >= 0 {
		disp.SelfComplement = true
		disp.MidAxis = mid
	}
	return disp
}

// BondProbability 长程键概率 min(1, beta / dist^(d+alpha))，零距离返回 0
func BondProbability(dist float64, d int, alpha, beta float64) float64 {
	if dist <= MinDistance {
		return 0
	}
	p := beta / math.Pow(dist, float64(d)+alpha)
	if math.IsNaN(p) || p <= 0 {
		return 0
	}
	return math.Min(1, p)
}
