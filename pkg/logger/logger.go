package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例，启动时由 Init 初始化
var Log *zap.Logger

// Init 初始化日志
// debug 模式使用开发配置（彩色、可读），否则使用 JSON 生产配置
func Init(env string, debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build(zap.Fields(zap.String("env", env)))
	if err != nil {
		return err
	}
	Log = l
	return nil
}

// Named 返回带名称的子日志，未初始化时返回空日志，方便测试中直接使用
func Named(name string) *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log.Named(name)
}

// Sync 刷新缓冲
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
