package percocli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/initutil"
	"perco_tool/pkg/lattice"
	"perco_tool/pkg/logutil"
	"perco_tool/pkg/report"
)

// 绑定到 VarP 的自定义类型
var (
	_ pflag.Value = (*seedList)(nil)
	_ pflag.Value = (*report.Format)(nil)
	_ pflag.Value = (*lattice.Norm)(nil)
	_ pflag.Value = (*logutil.Level)(nil)
)

// runFlags 子命令共用的 flag，值先落在 cfg 上，再按 Changed 叠加到配置文件之上
type runFlags struct {
	cfg        initutil.Config
	configPath string
	format     report.Format
	single     bool // 单次实现的子命令忽略集合参数
}

func newRunFlags() *runFlags {
	return &runFlags{cfg: initutil.Default(), format: "txt"}
}

// 晶格相关 flag，三个子命令都有；f.single 必须在调用之前设置
func (f *runFlags) bindLattice(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.cfg.L, initutil.KeyL, "L", f.cfg.L, "晶格边长 L")
	fs.IntVarP(&f.cfg.D, initutil.KeyD, "d", f.cfg.D, "维数 d")
	fs.Float64VarP(&f.cfg.Alpha, initutil.KeyAlpha, "a", f.cfg.Alpha, "衰减指数 alpha，p = beta / dist^(d+alpha)")
	fs.Float64VarP(&f.cfg.Beta, initutil.KeyBeta, "b", f.cfg.Beta, "耦合强度 beta")
	fs.VarP(&f.cfg.Norm, initutil.KeyNorm, "n", fmt.Sprintf("环面距离的范数(%s)", strings.Join(f.cfg.Norm.Values(), "|")))
	seedUsage := "基础种子，第 i 个实现的种子由它派生"
	if f.single {
		seedUsage = "这次实现的种子，原样使用，不经过派生"
	}
	fs.Uint64VarP(&f.cfg.Seed, initutil.KeySeed, "s", f.cfg.Seed, seedUsage)
	fs.StringVarP(&f.configPath, "config", "c", "", "JSON 配置文件，命令行显式给出的 flag 优先")
}

// 集合相关 flag，只有 simulate 用
func (f *runFlags) bindEnsemble(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVarP(&f.cfg.Samples, initutil.KeySamples, "N", f.cfg.Samples, "独立实现个数")
	fs.Var(&seedList{dst: &f.cfg.Seeds}, initutil.KeySeeds, "逐个实现的种子，逗号分隔，个数必须等于 samples")
	fs.IntVarP(&f.cfg.Workers, initutil.KeyWorkers, "w", f.cfg.Workers, "工作协程个数(<=0 表示 CPU 个数)")
}

func (f *runFlags) bindFormat(cmd *cobra.Command) {
	cmd.Flags().VarP(&f.format, "format", "t", fmt.Sprintf("输出格式(%s)", strings.Join(f.format.Values(), "|")))
}

// resolve 默认值 -> 配置文件 -> 显式 flag，最后统一校验
func (f *runFlags) resolve(cmd *cobra.Command) (initutil.Config, error) {
	cfg := initutil.Default()
	if f.configPath != "" {
		loaded, err := initutil.LoadFile(f.configPath, cfg)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.Override(f.cfg, cmd.Flags().Changed)
	if f.single {
		cfg.Samples, cfg.Seeds = 1, nil
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// seedList 让 --seeds 接收 "1,2,3"，可以重复给出
type seedList struct {
	dst     *[]uint64
	changed bool
}

func (s *seedList) String() string {
	if s.dst == nil {
		return ""
	}
	parts := make([]string, len(*s.dst))
	for i, seed := range *s.dst {
		parts[i] = strconv.FormatUint(seed, 10)
	}
	return strings.Join(parts, ",")
}

func (s *seedList) Set(val string) error {
	var seeds []uint64
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		seed, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidUsage, fmt.Sprintf("无效的种子: %q", part), err)
		}
		seeds = append(seeds, seed)
	}
	// 第一次出现时覆盖默认值，之后追加
	if !s.changed {
		*s.dst = nil
		s.changed = true
	}
	*s.dst = append(*s.dst, seeds...)
	return nil
}

func (s *seedList) Type() string {
	return "seeds"
}
