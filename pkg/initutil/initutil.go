package initutil

import (
	"fmt"
	"os"
	"strconv"

	"github.com/mohae/deepcopy"
	"github.com/tidwall/gjson"

	"perco_tool/pkg/ensemble"
	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/lattice"
	"perco_tool/pkg/percolation"
)

// 配置键，JSON 配置文件和命令行 flag 使用同一套名字
const (
	KeyL       = "L"
	KeyD       = "d"
	KeyAlpha   = "alpha"
	KeyBeta    = "beta"
	KeyNorm    = "norm"
	KeySamples = "samples"
	KeySeed    = "seed"
	KeySeeds   = "seeds"
	KeyWorkers = "workers"
)

// Config 一次集合运行的完整配置
type Config struct {
	L       int
	D       int
	Alpha   float64
	Beta    float64
	Norm    lattice.Norm
	Samples int
	Seed    uint64
	Seeds   []uint64 // 可选，逐个实现指定种子
	Workers int      // <= 0 表示用全部 CPU
}

// Default 默认配置
func Default() Config {
	return Config{
		L:       16,
		D:       2,
		Alpha:   1,
		Beta:    1,
		Norm:    lattice.L1,
		Samples: 100,
		Seed:    1,
	}
}

// LoadFile 读取 JSON 配置文件，文件里出现的键覆盖 base
func LoadFile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, errorutil.NewExitErrorWithMessage(
			errorutil.CodeMissingInput, fmt.Sprintf("无法读取配置文件 %s", path), err)
	}
	cfg, err := Parse(data, base)
	if err != nil {
		return base, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// Parse 解析 JSON 配置，只覆盖出现的键；base 会被深拷贝，不会被修改
func Parse(data []byte, base Config) (Config, error) {
	cfg := deepcopy.Copy(base).(Config)

	if !gjson.ValidBytes(data) {
		return cfg, errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidData, "配置内容不是有效的 JSON", nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return cfg, errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidData, "配置顶层必须是对象", nil)
	}

	var err error
	setInt := func(key string, dst *int) {
		if v := root.Get(key); v.Exists() && err == nil {
			if v.Type != gjson.Number || v.Num != float64(int64(v.Num)) {
				err = invalidValue(key, v)
				return
			}
			*dst = int(v.Int())
		}
	}
	setFloat := func(key string, dst *float64) {
		if v := root.Get(key); v.Exists() && err == nil {
			if v.Type != gjson.Number {
				err = invalidValue(key, v)
				return
			}
			*dst = v.Float()
		}
	}

	setInt(KeyL, &cfg.L)
	setInt(KeyD, &cfg.D)
	setFloat(KeyAlpha, &cfg.Alpha)
	setFloat(KeyBeta, &cfg.Beta)
	setInt(KeySamples, &cfg.Samples)
	setInt(KeyWorkers, &cfg.Workers)
	if err != nil {
		return cfg, err
	}

	if v := root.Get(KeySeed); v.Exists() {
		seed, ok := parseSeed(v)
		if !ok {
			return cfg, invalidValue(KeySeed, v)
		}
		cfg.Seed = seed
	}
	if v := root.Get(KeySeeds); v.Exists() {
		if !v.IsArray() {
			return cfg, invalidValue(KeySeeds, v)
		}
		cfg.Seeds = cfg.Seeds[:0:0]
		for _, item := range v.Array() {
			seed, ok := parseSeed(item)
			if !ok {
				return cfg, invalidValue(KeySeeds, item)
			}
			cfg.Seeds = append(cfg.Seeds, seed)
		}
	}
	if v := root.Get(KeyNorm); v.Exists() {
		norm, perr := lattice.ParseNorm(v.String())
		if perr != nil {
			return cfg, errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidData, "配置项 norm 非法", perr)
		}
		cfg.Norm = norm
	}
	return cfg, nil
}

// 种子可以写成非负整数，也可以写成字符串（超过 2^53 的种子 JSON 数字表示不了）
func parseSeed(v gjson.Result) (uint64, bool) {
	switch v.Type {
	case gjson.Number:
		if v.Num < 0 || v.Num != float64(int64(v.Num)) {
			return 0, false
		}
		return v.Uint(), true
	case gjson.String:
		// 和 --seeds 一样只接受十进制，"12abc" "1e3" "0x10" 都算非法
		seed, err := strconv.ParseUint(v.Str, 10, 64)
		if err != nil {
			return 0, false
		}
		return seed, true
	}
	return 0, false
}

func invalidValue(key string, v gjson.Result) error {
	return errorutil.NewExitErrorWithMessage(errorutil.CodeInvalidData,
		fmt.Sprintf("配置项 %s 的值 %s 非法", key, v.Raw), nil)
}

// Override 把 src 中 changed 返回 true 的字段覆盖到 c 上，命令行 flag 用它叠加到配置文件之上
func (c *Config) Override(src Config, changed func(key string) bool) {
	if changed(KeyL) {
		c.L = src.L
	}
	if changed(KeyD) {
		c.D = src.D
	}
	if changed(KeyAlpha) {
		c.Alpha = src.Alpha
	}
	if changed(KeyBeta) {
		c.Beta = src.Beta
	}
	if changed(KeyNorm) {
		c.Norm = src.Norm
	}
	if changed(KeySamples) {
		c.Samples = src.Samples
	}
	if changed(KeySeed) {
		c.Seed = src.Seed
	}
	if changed(KeySeeds) {
		c.Seeds = append([]uint64(nil), src.Seeds...)
	}
	if changed(KeyWorkers) {
		c.Workers = src.Workers
	}
}

// Validate 校验晶格参数和集合参数
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Samples <= 0 {
		return errorutil.NewConfigError("实现个数必须为正数, 当前 samples=%d", c.Samples)
	}
	if len(c.Seeds) > 0 && len(c.Seeds) != c.Samples {
		return errorutil.NewConfigError("显式种子 %d 个, 与实现个数 %d 不一致", len(c.Seeds), c.Samples)
	}
	return nil
}

func (c Config) Params() percolation.Params {
	return percolation.Params{L: c.L, D: c.D, Alpha: c.Alpha, Beta: c.Beta, Norm: c.Norm}
}

func (c Config) Options() ensemble.Options {
	return ensemble.Options{
		Samples: c.Samples,
		Seed:    c.Seed,
		Seeds:   append([]uint64(nil), c.Seeds...),
		Workers: c.Workers,
	}
}
