package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/jxo-me/ddnsync/config"
	"github.com/jxo-me/ddnsync/core/logger"
	xlogger "github.com/jxo-me/ddnsync/sdk/logger"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// logFromConfig builds the process logger, --verbose wins over [log] level.
func logFromConfig(cfg *config.LogConfig, verbose bool) logger.ILogger {
	if cfg == nil {
		cfg = &config.LogConfig{}
	}
	if cfg.Output == "none" || cfg.Output == "null" {
		return xlogger.Nop()
	}

	level := logger.LogLevel(cfg.Level)
	if verbose {
		level = logger.DebugLevel
	}

	out, err := logWriter(cfg)
	if err != nil {
		// 退回到 stderr, 日志不能因为文件问题丢失
		out = os.Stderr
	}
	log := xlogger.NewLogger(
		xlogger.FormatLoggerOption(logger.LogFormat(cfg.Format)),
		xlogger.LevelLoggerOption(level),
		xlogger.OutputLoggerOption(out),
	)
	if err != nil {
		log.Warnf("log output %s unavailable, using stderr: %v", cfg.Output, err)
	}
	return log
}

func logWriter(cfg *config.LogConfig) (io.Writer, error) {
	switch cfg.Output {
	case "", "stderr":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Output), 0o755); err != nil {
		return nil, errors.Wrap(err, "create log directory")
	}
	if r := cfg.Rotation; r != nil {
		return &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    r.MaxSize,
			MaxAge:     r.MaxAge,
			MaxBackups: r.MaxBackups,
			LocalTime:  r.LocalTime,
			Compress:   r.Compress,
		}, nil
	}
	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "open log file")
	}
	return f, nil
}
