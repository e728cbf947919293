// Package stats 对独立实现的样本做均值和标准误估计。
package stats

import (
	"gonum.org/v1/gonum/stat"
)

// Estimate 样本均值和标准误
type Estimate struct {
	Mean   float64 `json:"mean"`
	StdErr float64 `json:"stderr"`
}

// Of 计算样本均值和标准误（无偏样本标准差 / sqrt(n)）。
// 空样本返回零值；只有一个样本时标准误为 0。
func Of(xs []float64) Estimate {
	switch len(xs) {
	case 0:
		return Estimate{}
	case 1:
		return Estimate{Mean: xs[0]}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	return Estimate{Mean: mean, StdErr: stat.StdErr(std, float64(len(xs)))}
}
