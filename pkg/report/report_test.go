package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"perco_tool/pkg/ensemble"
	"perco_tool/pkg/lattice"
	"perco_tool/pkg/percolation"
)

func sampleRun() Run {
	results := []ensemble.Result{
		{Index: 0, Seed: 11, Observables: percolation.Observables{QG: 0.5, S: 2}},
		{Index: 1, Seed: 18446744073709551615, Observables: percolation.Observables{QG: 0.25, S: 1}},
	}
	return Run{
		Params:  percolation.Params{L: 4, D: 2, Alpha: 0.5, Beta: 1, Norm: lattice.L2},
		Results: results,
		Summary: ensemble.Summarize(results),
	}
}

func TestJSONDocument(t *testing.T) {
	doc, err := Document(sampleRun())
	require.NoError(t, err)
	require.True(t, gjson.ValidBytes(doc))

	res := gjson.ParseBytes(doc)
	assert.Equal(t, int64(4), res.Get("params.L").Int())
	assert.Equal(t, "l2", res.Get("params.norm").String())
	assert.Equal(t, int64(2), res.Get("summary.samples").Int())
	assert.InDelta(t, 0.375, res.Get("summary.size_spread.mean").Float(), 1e-15)
	assert.Equal(t, 2, len(res.Get("results").Array()))
	// 大种子必须原样保留
	assert.Equal(t, "18446744073709551615", res.Get("results.1.seed").Raw)
	assert.Equal(t, 2.0, res.Get("results.0.average_size").Float())
	assert.False(t, res.Get("stats").Exists())
	assert.False(t, res.Get("clusters").Exists())

	var keys []string
	res.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"params", "summary", "results"}, keys)
}

func TestJSONIncludesSingleRealizationDetails(t *testing.T) {
	run := sampleRun()
	run.Stats = &percolation.BuildStats{Classes: 8, Proposed: 3, Merged: 2}
	run.Clusters = &percolation.ClusterSummary{
		Clusters: 2, Largest: 3,
		Sizes: []percolation.SizeCount{{Size: 1, Count: 1}, {Size: 3, Count: 1}},
	}

	var buf bytes.Buffer
	require.NoError(t, JSONFormatter{Compact: true}.Format(&buf, run))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "\n"))

	res := gjson.Parse(out)
	assert.Equal(t, int64(3), res.Get("stats.proposed").Int())
	assert.Equal(t, int64(3), res.Get("clusters.largest").Int())
	assert.Equal(t, int64(3), res.Get("clusters.sizes.1.size").Int())
}

func TestJSONEmptyResults(t *testing.T) {
	doc, err := Document(Run{})
	require.NoError(t, err)
	assert.Equal(t, "[]", gjson.GetBytes(doc, "results").Raw)
}

func TestTextTableIsAligned(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "txt", sampleRun()))
	out := buf.String()

	assert.Contains(t, out, "L=4 d=2 alpha=0.5 beta=1 norm=l2")
	assert.Contains(t, out, "实现个数: 2")
	assert.NotContains(t, out, "簇个数")

	lines := strings.Split(out, "\n")
	var table []string
	for _, l := range lines {
		if strings.HasPrefix(l, "编号") || strings.HasPrefix(l, "--") || strings.HasPrefix(l, "0 ") || strings.HasPrefix(l, "1 ") {
			table = append(table, l)
		}
	}
	require.Len(t, table, 4)
	// 第三列在每一行的显示位置相同
	col := func(line, cell string) int {
		return runewidth.StringWidth(line[:strings.Index(line, cell)])
	}
	assert.Equal(t, col(table[0], "Q_G"), col(table[2], "0.5"))
	assert.Equal(t, col(table[0], "Q_G"), col(table[3], "0.25"))
}

func TestTextWithClusters(t *testing.T) {
	run := sampleRun()
	run.Stats = &percolation.BuildStats{Classes: 8, SkippedClasses: 1}
	run.Clusters = &percolation.ClusterSummary{Clusters: 1, Largest: 16, Sizes: []percolation.SizeCount{{Size: 16, Count: 1}}}

	var buf bytes.Buffer
	require.NoError(t, TextFormatter{}.Format(&buf, run))
	assert.Contains(t, buf.String(), "位移类: 8 (跳过 1)")
	assert.Contains(t, buf.String(), "簇个数: 1  最大簇: 16")
	assert.Contains(t, buf.String(), "16      1")
}

func TestFormatFlagValue(t *testing.T) {
	f := Format("txt")
	assert.Equal(t, []string{"json", "txt"}, f.Values())
	require.NoError(t, f.Set("json"))
	assert.Equal(t, "json", f.String())
	assert.Error(t, f.Set("xml"))
	assert.Equal(t, "json", f.String())

	_, err := Lookup("xml")
	assert.Error(t, err)
	assert.Error(t, Write(&bytes.Buffer{}, "xml", Run{}))
}
