package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 时间格式：人类可读
const timeLayout = "2006-01-02 15:04:05"

type FileRotate struct {
	Filename   string // 日志文件路径，为空则只写 stdout
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Options struct {
	Level     string // debug / info / warn(ing) / error，默认 error
	JSON      bool
	AddCaller bool
	NoStdout  bool
	Rotate    FileRotate
	Extra     []zapcore.Core // 额外 sink（测试用内存 core 等）
}

// New 由启动层构造一次并注入各组件，进程内共享同一组 sink
func New(opt Options) (*zap.Logger, func()) {
	lvl := ParseLevel(opt.Level)
	enc := newEncoder(opt.JSON)

	var cores []zapcore.Core
	if !opt.NoStdout {
		cores = append(cores, zapcore.NewCore(enc, zapcore.Lock(os.Stdout), lvl))
	}
	var rotator *lumberjack.Logger
	if opt.Rotate.Filename != "" {
		rotator = &lumberjack.Logger{
			Filename:   opt.Rotate.Filename,
			MaxSize:    max(1, opt.Rotate.MaxSizeMB),
			MaxBackups: max(0, opt.Rotate.MaxBackups),
			MaxAge:     max(0, opt.Rotate.MaxAgeDays),
			Compress:   opt.Rotate.Compress,
		}
		// 多 goroutine 并发写同一文件，加锁保证行不交错
		ws := zapcore.Lock(zapcore.AddSync(rotWriter{rotator}))
		cores = append(cores, zapcore.NewCore(enc, ws, lvl))
	}
	cores = append(cores, opt.Extra...)

	opts := []zap.Option{}
	if opt.AddCaller {
		opts = append(opts, zap.AddCaller())
	}
	// 不做采样：每个请求的日志行都要保留
	l := zap.New(zapcore.NewTee(cores...), opts...)
	Lifecycle(l, "Logging started.")

	cleanup := func() {
		_ = l.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return l, cleanup
}

// ParseLevel 阈值解析；ERROR > WARNING > INFO > DEBUG，未知值取最严格的 error
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Lifecycle 记录进程生命周期事件（启动、关闭），不受阈值过滤；caller 记为调用方
func Lifecycle(l *zap.Logger, msg string) {
	if ce := l.WithOptions(zap.AddCallerSkip(1)).Check(zapcore.ErrorLevel, msg); ce != nil {
		ce.Entry.Level = zapcore.InfoLevel
		ce.Write()
	}
}

func newEncoder(json bool) zapcore.Encoder {
	if json {
		cfg := zap.NewProductionEncoderConfig()
		cfg.TimeKey = "ts"
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.EncodeCaller = zapcore.ShortCallerEncoder
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(timeLayout)
	cfg.EncodeLevel = bracketLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(cfg)
}

// [ERROR] [WARNING] [INFO] [DEBUG]
func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + LevelName(l) + "]")
}

func LevelName(l zapcore.Level) string {
	switch l {
	case zapcore.DebugLevel:
		return "DEBUG"
	case zapcore.InfoLevel:
		return "INFO"
	case zapcore.WarnLevel:
		return "WARNING"
	default:
		return "ERROR"
	}
}

type rotWriter struct{ *lumberjack.Logger }

func (w rotWriter) Write(p []byte) (n int, err error) { return w.Logger.Write(p) }
func (w rotWriter) Sync() error                       { return nil }

type zapIOWriter struct {
	l     *zap.Logger
	level zapcore.Level
}

func (w *zapIOWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\r\n")
	if ce := w.l.Check(w.level, msg); ce != nil {
		ce.Write()
	}
	return len(p), nil
}

// ToWriter 把 io.Writer 输出（如 gin 的调试/错误输出）转进 zap
func ToWriter(l *zap.Logger, level zapcore.Level) io.Writer {
	return &zapIOWriter{l: l, level: level}
}

// ToStdLogger 供 gorm logger 等需要 Printf 的组件使用
func ToStdLogger(l *zap.Logger, level zapcore.Level) (*log.Logger, error) {
	return zap.NewStdLogAt(l, level)
}

func RedirectStdLog(l *zap.Logger, level zapcore.Level) func() {
	undo, err := zap.RedirectStdLogAt(l, level)
	if err != nil {
		return func() {}
	}
	return undo
}
