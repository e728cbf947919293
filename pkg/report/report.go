// Package report 把集合运行的结果写成 json 或对齐的文本表格，只写到调用方给的 io.Writer。
package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"perco_tool/pkg/ensemble"
	"perco_tool/pkg/percolation"
)

// Run 一次命令的全部输出内容
type Run struct {
	Params   percolation.Params
	Results  []ensemble.Result
	Summary  ensemble.Summary
	Stats    *percolation.BuildStats     // 只有单次实现时才有
	Clusters *percolation.ClusterSummary // 只有单次实现时才有
}

type Formatter interface {
	Format(w io.Writer, run Run) error
}

type JSONFormatter struct {
	Compact bool
}

type TextFormatter struct{}

var formatters = map[string]Formatter{
	"json": JSONFormatter{},
	"txt":  TextFormatter{},
}

// Format 输出格式名，实现 pflag.Value 以便直接绑定到 --format
type Format string

func (f *Format) String() string { return string(*f) }

func (f *Format) Set(val string) error {
	if _, ok := formatters[val]; !ok {
		return fmt.Errorf("无效的输出格式: %s (可选 %s)", val, strings.Join(f.Values(), "/"))
	}
	*f = Format(val)
	return nil
}

func (f *Format) Type() string {
	return "format"
}

// 列出所有的合法值
func (Format) Values() []string {
	names := make([]string, 0, len(formatters))
	for name := range formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup 按名字取格式化器
func Lookup(name string) (Formatter, error) {
	f, ok := formatters[name]
	if !ok {
		return nil, fmt.Errorf("未知输出格式: %q", name)
	}
	return f, nil
}

// Write 按名字格式化输出
func Write(w io.Writer, format string, run Run) error {
	f, err := Lookup(format)
	if err != nil {
		return err
	}
	return f.Format(w, run)
}

func (f JSONFormatter) Format(w io.Writer, run Run) error {
	doc, err := Document(run)
	if err != nil {
		return err
	}
	if f.Compact {
		doc = append(pretty.Ugly(doc), '\n')
	} else {
		doc = pretty.PrettyOptions(doc, &pretty.Options{Width: 80, Indent: "    "})
	}
	_, err = w.Write(doc)
	return err
}

// Document 用 sjson 逐段拼出 JSON 文档，键的顺序固定
func Document(run Run) ([]byte, error) {
	doc := []byte(`{}`)
	steps := []struct {
		path  string
		value any
	}{
		{"params", run.Params},
		{"params.norm", run.Params.Norm.String()},
		{"summary", run.Summary},
		{"results", nonNil(run.Results)},
	}
	if run.Stats != nil {
		steps = append(steps, struct {
			path  string
			value any
		}{"stats", run.Stats})
	}
	if run.Clusters != nil {
		steps = append(steps, struct {
			path  string
			value any
		}{"clusters", run.Clusters})
	}

	var err error
	for _, s := range steps {
		if doc, err = sjson.SetBytes(doc, s.path, s.value); err != nil {
			return nil, fmt.Errorf("写入 %s 失败: %w", s.path, err)
		}
	}
	return doc, nil
}

func nonNil(results []ensemble.Result) []ensemble.Result {
	if results == nil {
		return []ensemble.Result{}
	}
	return results
}

func (TextFormatter) Format(w io.Writer, run Run) error {
	var b strings.Builder
	fmt.Fprintf(&b, "参数: %s\n\n", run.Params)

	rows := make([][]string, 0, len(run.Results))
	for _, r := range run.Results {
		rows = append(rows, []string{
			strconv.Itoa(r.Index),
			strconv.FormatUint(r.Seed, 10),
			formatFloat(r.QG),
			formatFloat(r.S),
		})
	}
	writeTable(&b, []string{"编号", "种子", "Q_G", "S"}, rows)

	fmt.Fprintf(&b, "\n实现个数: %d\n", run.Summary.Samples)
	fmt.Fprintf(&b, "Q_G 均值: %s ± %s\n", formatFloat(run.Summary.QG.Mean), formatFloat(run.Summary.QG.StdErr))
	fmt.Fprintf(&b, "S 均值:   %s ± %s\n", formatFloat(run.Summary.S.Mean), formatFloat(run.Summary.S.StdErr))

	if s := run.Stats; s != nil {
		fmt.Fprintf(&b, "\n位移类: %d (跳过 %d)  提出键: %d  半轴过滤: %d  合并: %d\n",
			s.Classes, s.SkippedClasses, s.Proposed, s.Rejected, s.Merged)
	}
	if c := run.Clusters; c != nil {
		fmt.Fprintf(&b, "\n簇个数: %d  最大簇: %d\n", c.Clusters, c.Largest)
		rows = rows[:0]
		for _, sc := range c.Sizes {
			rows = append(rows, []string{strconv.Itoa(sc.Size), strconv.Itoa(sc.Count)})
		}
		writeTable(&b, []string{"簇大小", "个数"}, rows)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 8, 64)
}

// 按显示宽度对齐，中文表头占两列
func writeTable(b *strings.Builder, header []string, rows [][]string) {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = runewidth.FillRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		b.WriteByte('\n')
	}

	line(header)
	sep := make([]string, len(header))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}
