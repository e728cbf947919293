// Package percolation 构建一次长程键渗流实现（realization）并计算它的序参量。
//
// 对每个位移类 r，键概率为 p(r) = min(1, beta / d_T(r)^(d+alpha))。
// 构建器用几何跳跃在 N 个候选起点里只访问期望 N·p(r) 个成功的起点，
// 然后把起点 i 和 i+r (mod L) 合并到并查集里。测量阶段遍历一次并查集，
// 得到 Q_G = Σs⁴/(Σs²)² 和 S = Σs²/N。
package percolation

import (
	"fmt"
	"math"

	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/lattice"
)

// Params 一次实现的全部参数（种子单独传入）
type Params struct {
	L     int          `json:"L"`
	D     int          `json:"d"`
	Alpha float64      `json:"alpha"`
	Beta  float64      `json:"beta"`
	Norm  lattice.Norm `json:"-"`
}

// Validate 在任何采样开始之前检查参数
func (p Params) Validate() error {
	if p.L <= 0 {
		return errorutil.NewConfigError("晶格边长 L 必须为正数, 当前 L=%d", p.L)
	}
	if p.D <= 0 {
		return errorutil.NewConfigError("维数 d 必须为正数, 当前 d=%d", p.D)
	}
	if math.IsNaN(p.Alpha) || math.IsInf(p.Alpha, 0) {
		return errorutil.NewConfigError("alpha 不是有限数: %v", p.Alpha)
	}
	if math.IsNaN(p.Beta) || math.IsInf(p.Beta, 0) {
		return errorutil.NewConfigError("beta 不是有限数: %v", p.Beta)
	}
	return nil
}

func (p Params) String() string {
	return fmt.Sprintf("L=%d d=%d alpha=%g beta=%g norm=%s", p.L, p.D, p.Alpha, p.Beta, p.Norm)
}
