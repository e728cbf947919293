package ensemble

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/percolation"
	"perco_tool/pkg/sampler"
)

var smallParams = percolation.Params{L: 12, D: 2, Alpha: 0.5, Beta: 0.7}

func TestRunMatchesSequential(t *testing.T) {
	opts := Options{Samples: 24, Seed: 2718, Workers: 4}

	results, err := Run(context.Background(), smallParams, opts)
	require.NoError(t, err)
	require.Len(t, results, opts.Samples)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, sampler.DeriveSeed(opts.Seed, i), r.Seed)

		want, err := Realize(smallParams, r.Seed)
		require.NoError(t, err)
		assert.Equal(t, want, r.Observables, "realization %d", i)
	}
}

func TestRunIndependentOfWorkerCount(t *testing.T) {
	one, err := Run(context.Background(), smallParams, Options{Samples: 10, Seed: 5, Workers: 1})
	require.NoError(t, err)
	many, err := Run(context.Background(), smallParams, Options{Samples: 10, Seed: 5, Workers: 16})
	require.NoError(t, err)
	assert.Equal(t, one, many)
}

func TestRunExplicitSeeds(t *testing.T) {
	seeds := []uint64{9, 9, 100}
	results, err := Run(context.Background(), smallParams, Options{Samples: 3, Seeds: seeds, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, uint64(100), results[2].Seed)
	// 相同的种子得到相同的结果
	assert.Equal(t, results[0].Observables, results[1].Observables)
}

func TestRunRejectsBadOptions(t *testing.T) {
	tests := []struct {
		name   string
		params percolation.Params
		opts   Options
	}{
		{"bad lattice", percolation.Params{L: 0, D: 1}, Options{Samples: 1}},
		{"no samples", smallParams, Options{Samples: 0}},
		{"seed count mismatch", smallParams, Options{Samples: 2, Seeds: []uint64{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := RunWith(context.Background(), tt.params, tt.opts,
				func(percolation.Params, uint64) (percolation.Observables, error) {
					called = true
					return percolation.Observables{}, nil
				})
			assert.True(t, errorutil.IsConfigError(err), "got %v", err)
			assert.False(t, called, "no realization may start before validation")
		})
	}
}

func TestRunStopsOnFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	_, err := RunWith(context.Background(), smallParams, Options{Samples: 1000, Workers: 2},
		func(_ percolation.Params, seed uint64) (percolation.Observables, error) {
			if calls.Add(1) == 3 {
				return percolation.Observables{}, boom
			}
			return percolation.Observables{QG: 1, S: 1}, nil
		})

	require.ErrorIs(t, err, boom)
	assert.Less(t, int(calls.Load()), 1000)
}

// 单个工作协程时，失败之后不能再开始任何实现
func TestRunNoRealizationAfterFailure(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32

	_, err := RunWith(context.Background(), smallParams, Options{Samples: 200, Workers: 1},
		func(percolation.Params, uint64) (percolation.Observables, error) {
			if calls.Add(1) == 3 {
				return percolation.Observables{}, boom
			}
			return percolation.Observables{QG: 1, S: 1}, nil
		})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, smallParams, Options{Samples: 50, Workers: 2})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errorutil.CodeInterrupted, errorutil.ExitCodeFromError(err))
}

// 运行中途取消：已经取消之后不再开始新的实现，错误码是 CodeInterrupted 而不是内部错误
func TestRunCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls atomic.Int32

	_, err := RunWith(ctx, smallParams, Options{Samples: 200, Workers: 1},
		func(percolation.Params, uint64) (percolation.Observables, error) {
			if calls.Add(1) == 5 {
				cancel()
			}
			return percolation.Observables{QG: 1, S: 1}, nil
		})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, errorutil.CodeInterrupted, errorutil.ExitCodeFromError(err))
	assert.Equal(t, int32(5), calls.Load())

	msg, code := errorutil.FormatErrorAndCode(err)
	assert.Equal(t, errorutil.CodeInterrupted, code)
	assert.NotContains(t, msg, "未知错误")
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Observables: percolation.Observables{QG: 1, S: 2}},
		{Observables: percolation.Observables{QG: 3, S: 2}},
	}
	sum := Summarize(results)
	assert.Equal(t, 2, sum.Samples)
	assert.Equal(t, 2.0, sum.QG.Mean)
	// 样本标准差 sqrt(2)，标准误 sqrt(2)/sqrt(2) = 1
	assert.InDelta(t, 1.0, sum.QG.StdErr, 1e-12)
	assert.Equal(t, Estimate{Mean: 2}, sum.S)

	assert.Equal(t, Summary{}, Summarize(nil))
}
