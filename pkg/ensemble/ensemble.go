// Package ensemble 并行跑多次独立实现并按编号收集 (Q_G, S)。
//
// 实现之间没有共享状态: 每个任务用自己的种子建立自己的随机流和并查集，
// 结果按任务编号写回，所以输出顺序和输入顺序一致，与调度无关。
package ensemble

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/logutil"
	"perco_tool/pkg/percolation"
	"perco_tool/pkg/sampler"
	"perco_tool/pkg/stats"
)

// Options 集合级别的参数
type Options struct {
	Samples int      // 实现个数
	Seed    uint64   // 基础种子，第 i 个实现用 sampler.DeriveSeed(Seed, i)
	Seeds   []uint64 // 显式给出的种子，非空时长度必须等于 Samples
	Workers int      // <= 0 时用 runtime.NumCPU()
}

// Result 第 Index 个实现的结果
type Result struct {
	Index int    `json:"index"`
	Seed  uint64 `json:"seed"`
	percolation.Observables
}

// SeedFor 第 i 个实现使用的种子
func (o Options) SeedFor(i int) uint64 {
	if len(o.Seeds) > 0 {
		return o.Seeds[i]
	}
	return sampler.DeriveSeed(o.Seed, i)
}

func (o Options) validate() error {
	if o.Samples <= 0 {
		return errorutil.NewConfigError("实现个数必须为正数, 当前 samples=%d", o.Samples)
	}
	if len(o.Seeds) > 0 && len(o.Seeds) != o.Samples {
		return errorutil.NewConfigError("显式种子 %d 个, 与实现个数 %d 不一致", len(o.Seeds), o.Samples)
	}
	return nil
}

func (o Options) workers() int {
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	return min(w, o.Samples)
}

// RealizeFunc 用一个种子完成一次实现
type RealizeFunc func(params percolation.Params, seed uint64) (percolation.Observables, error)

// Realize 构建并测量一次实现
func Realize(params percolation.Params, seed uint64) (percolation.Observables, error) {
	uf, err := percolation.BuildConfiguration(params, seed)
	if err != nil {
		return percolation.Observables{}, err
	}
	return percolation.Measure(uf, params.L, params.D)
}

// Run 用工作池跑 opts.Samples 次实现，第一个失败会取消剩下的任务并返回；
// ctx 被取消时返回 CodeInterrupted 错误，错误链里仍然是 ctx.Err()
func Run(ctx context.Context, params percolation.Params, opts Options) ([]Result, error) {
	return RunWith(ctx, params, opts, Realize)
}

// RunWith 同 Run，但每次实现的具体做法由 realize 决定
func RunWith(ctx context.Context, params percolation.Params, opts Options, realize RealizeFunc) ([]Result, error) {
	// 参数问题在启动任何工作协程之前就暴露出来
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := opts.workers()
	logutil.Info("开始 %s 次实现 %s, 工作协程 %d",
		humanize.Comma(int64(opts.Samples)), params, workers)
	start := time.Now()

	results := make([]Result, opts.Samples)
	tasks := make(chan int)

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				if ctx.Err() != nil {
					// 已经取消，把剩下的任务取空即可
					continue
				}
				seed := opts.SeedFor(i)
				obs, err := realize(params, seed)
				if err != nil {
					fail(fmt.Errorf("第 %d 次实现 (seed=%d) 失败: %w", i, seed, err))
					continue
				}
				// 每个任务只写自己的下标，不需要加锁
				results[i] = Result{Index: i, Seed: seed, Observables: obs}
			}
		}()
	}

dispatch:
	for i := 0; i < opts.Samples; i++ {
		// select 在两边都就绪时随机选，先单独看一次 ctx
		if ctx.Err() != nil {
			break
		}
		select {
		case tasks <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, errorutil.NewExitErrorWithMessage(errorutil.CodeInterrupted, "运行被取消", err)
	}

	logutil.Info("完成 %s 次实现, 耗时 %s", humanize.Comma(int64(opts.Samples)), time.Since(start).Round(time.Millisecond))
	return results, nil
}

// Estimate 样本均值和标准误
type Estimate = stats.Estimate

// Summary 集合平均
type Summary struct {
	Samples int      `json:"samples"`
	QG      Estimate `json:"size_spread"`
	S       Estimate `json:"average_size"`
}

// Summarize 计算 Q_G 和 S 的均值和标准误
func Summarize(results []Result) Summary {
	qs := make([]float64, len(results))
	ss := make([]float64, len(results))
	for i, r := range results {
		qs[i], ss[i] = r.QG, r.S
	}
	return Summary{
		Samples: len(results),
		QG:      stats.Of(qs),
		S:       stats.Of(ss),
	}
}
