package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，未初始化时为 Nop
var Log = zap.NewNop()

// Init 根据运行环境初始化日志
// dev 环境使用彩色控制台输出，其他环境使用 JSON 输出
func Init(env string, debug bool) error {
	var cfg zap.Config
	if env == "dev" || env == "" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		return err
	}
	Log = l.With(zap.String("env", env))
	zap.ReplaceGlobals(Log)
	return nil
}

// Named 返回带组件名的子日志
func Named(name string) *zap.Logger {
	return Log.Named(name)
}

// Sync 刷新缓冲区，程序退出前调用
func Sync() {
	_ = Log.Sync()
}
