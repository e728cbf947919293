package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// Level 日志级别，值越小打印得越多
type Level int

const (
	DEBUG Level = iota // 0
	INFO               // 1
	WARN               // 2
	ERROR              // 3
)

// 定义日志级别映射字符串
var LOG_LEVELS = map[string]Level{
	"DEBUG": DEBUG,
	"INFO":  INFO,
	"WARN":  WARN,
	"ERROR": ERROR,
}

var (
	mu           sync.Mutex
	logger       *log.Logger
	logFile      *os.File
	once         sync.Once
	currentLevel = INFO // 默认日志级别
)

// ParseLogLevel 解析日志级别字符串（大小写不敏感）
func ParseLogLevel(s string) (Level, error) {
	level, ok := LOG_LEVELS[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return INFO, fmt.Errorf("无效的日志级别: %q", s)
	}
	return level, nil
}

// 为了让 cobra 的 VarP 接收 Level，实现 flag.Value 接口(String Set Type)
func (l *Level) String() string {
	for name, v := range LOG_LEVELS {
		if v == *l {
			return name
		}
	}
	return fmt.Sprintf("Level(%d)", int(*l))
}

func (l *Level) Set(val string) error {
	level, err := ParseLogLevel(val)
	if err != nil {
		return err
	}
	*l = level
	return nil
}

func (l *Level) Type() string {
	return "level"
}

// InitLogger 初始化日志，允许指定输出目标（stdout / stderr 或 文件）
// 多个 goroutine 同时跑实现的时候只会初始化一次
func InitLogger(output string, level Level) error {
	var initErr error
	once.Do(func() {
		var w io.Writer
		switch output {
		case "", "stdout":
			w = os.Stdout
		case "stderr":
			w = os.Stderr
		default:
			f, err := os.OpenFile(
				// 以追加模式打开日志文件，不会覆盖已有内容
				output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				initErr = fmt.Errorf("无法创建日志文件 %s: %w", output, err)
				w = os.Stderr
			} else {
				logFile = f
				w = f
			}
		}
		mu.Lock()
		logger = log.New(w, "", log.LstdFlags)
		currentLevel = level
		mu.Unlock()
	})
	return initErr
}

// SetOutput 直接替换输出目标，测试里用来捕获日志
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// 设置日志级别
func SetLogLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// Enabled 判断某个级别当前是否会输出，避免为关闭的级别拼装昂贵参数
func Enabled(level Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return level >= currentLevel
}

// logMessage 记录日志，仅输出符合当前级别的日志
func logMessage(level Level, msg string, args ...any) {
	mu.Lock()
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags) // 默认输出到控制台
	}
	l, enabled := logger, level >= currentLevel
	mu.Unlock()
	if !enabled {
		return
	}

	_, file, line, _ := runtime.Caller(2) // 获取真正调用的文件+行号
	l.Printf("[%s:%d] %s", filepath.Base(file), line, fmt.Sprintf(msg, args...))
}

// Info 记录 INFO 日志
func Info(msg string, args ...any) {
	logMessage(INFO, "[INFO] "+msg, args...)
}

// Warn 记录 WARN 日志
func Warn(msg string, args ...any) {
	logMessage(WARN, "[WARN] "+msg, args...)
}

// Error 记录 ERROR 日志，附带调用堆栈
func Error(msg string, args ...any) {
	size := 1024 // 初始缓冲区大小
	for {
		buf := make([]byte, size)
		n := runtime.Stack(buf, false)
		if n < size {
			// 堆栈单独作为参数传入，避免其中的 % 被当成格式符
			logMessage(ERROR, "[ERR] "+msg+"\n调用堆栈:\n%s", append(args, string(buf[:n]))...)
			return
		}
		// 扩展缓冲区大小，倍增策略
		size *= 2
	}
}

// Debug 记录 DEBUG 日志
func Debug(msg string, args ...any) {
	logMessage(DEBUG, "[DBG] "+msg, args...)
}

// 关闭日志文件（如果有的话）
func CloseLogger() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		return err
	}
	return nil
}
