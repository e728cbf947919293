package lattice

import (
	"fmt"
	"math"
	"strings"
)

// Norm 环面距离的度量方式，各维都先取绕回后的较短距离 min(r_j, L-r_j)
type Norm int

const (
	L1   Norm = iota // Σ_j m_j，默认的 d_T
	L2               // sqrt(Σ_j m_j^2)
	Linf             // max_j m_j
)

var normNames = map[Norm]string{
	L1:   "l1",
	L2:   "l2",
	Linf: "linf",
}

// ParseNorm 大小写不敏感
func ParseNorm(s string) (Norm, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for n, name := range normNames {
		if name == s {
			return n, nil
		}
	}
	return L1, fmt.Errorf("无效的范数: %q (可选 l1/l2/linf)", s)
}

func (n Norm) String() string {
	if name, ok := normNames[n]; ok {
		return name
	}
	return fmt.Sprintf("Norm(%d)", int(n))
}

// 实现 flag.Value 接口(String Set Type)，命令行可以直接 VarP
func (n *Norm) Set(val string) error {
	parsed, err := ParseNorm(val)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

func (n *Norm) Type() string {
	return "norm"
}

// 列出所有的合法值
func (Norm) Values() []string {
	return []string{"l1", "l2", "linf"}
}

// Distance 位移 r 在边长 l 的环面上的距离
func (n Norm) Distance(r []int, l int) float64 {
	var acc float64
	for _, rj := range r {
		m := float64(min(rj, l-rj))
		if m < 0 {
			m = -m
		}
		switch n {
		case L2:
			acc += m * m
		case Linf:
			acc = math.Max(acc, m)
		default:
			acc += m
		}
	}
	if n == L2 {
		return math.Sqrt(acc)
	}
	return acc
}
