package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"perco_tool/pkg/errorutil"
	"perco_tool/pkg/logutil"
	"perco_tool/pkg/percocli"
)

const TOOL_VERSION = "1.0.0+20261018"

func main() {
	var rootCmd = &cobra.Command{
		Use:     "perco",
		Version: TOOL_VERSION,
		Short:   fmt.Sprintf("perco v%s 长程键渗流模拟工具，支持 simulate/measure/dot 子命令", TOOL_VERSION),
		Long: fmt.Sprintf("perco v%s 长程键渗流模拟工具\n\n", TOOL_VERSION) +
			"在边长 L 的 d 维周期晶格上，任意两站点以 p = min(1, beta / dist^(d+alpha)) 的概率连键，\n" +
			"用并查集求簇，并输出序参量 Q_G = Σs⁴/(Σs²)² 和平均簇大小 S = Σs²/N。\n",
	}

	rootCmd.AddCommand(percocli.SimulateCmd())
	rootCmd.AddCommand(percocli.MeasureCmd())
	rootCmd.AddCommand(percocli.DotCmd())

	var logFile string
	logLevel := logutil.WARN

	// 定义全局flag(屁股后面带P的函数才支持短选项)
	rootCmd.PersistentFlags().VarP(&logLevel, "log-level", "e", "日志等级(DEBUG/INFO/WARN/ERROR)")
	rootCmd.PersistentFlags().StringVarP(&logFile, "log-file", "l", "perco.log", "日志文件名(默认perco.log，stdout/stderr 表示标准输出/标准错误)")
	// 阻止 Cobra 在命令参数错误时输出帮助
	rootCmd.SilenceUsage = true
	// 阻止Cobra自动打印RunEs返回的错误内容
	rootCmd.SilenceErrors = true
	// flag 解析失败按用法错误退出，子命令会继承
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errorutil.NewExitError(errorutil.CodeInvalidUsage, err)
	})

	// PersistentPreRunE 回调，这个钩子会在用户的命令解析完成、flag 值填充后执行
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := logutil.InitLogger(logFile, logLevel); err != nil {
			return errorutil.NewExitError(errorutil.CodeIOError, err)
		}
		return nil
	}

	// Ctrl-C 取消还没开始的实现
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logutil.Error("命令执行失败: %v", err)
		msg, code := errorutil.FormatErrorAndCode(err)
		fmt.Fprintln(os.Stderr, msg)
		logutil.CloseLogger()
		os.Exit(code)
	}

	// 不要用defer，因为defer是在函数返回前执行的，而不是os.Exit()执行前执行
	logutil.CloseLogger()
	os.Exit(errorutil.CodeSuccess)
}
