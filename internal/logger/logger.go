// internal/logger/logger.go
//
// Structured JSON logger (Zap + Lumberjack).
//
// Context
// -------
// serve writes lifecycle and access events as JSON.  With log_path set,
// events go to a dated file, `<log_path>/serve.YYYY-MM-DD.log`, and
// Lumberjack caps how many rotated files stick around (log_max_files); no
// external log-rotate job is required.  Without log_path, events go to the
// console, which fits the foreground way the binary is normally run.
//
// When the file sink is active and stdout is a TTY, the same events are
// teed to the console so interactive runs stay observable.
//
// Usage
// -----
//
//	log, err := logger.New(cfg, runningInTTY())
//	if err != nil { … }
//	log.Infow("listening", "addr", cfg.ListenAddr())
//
// Notes
// -----
// • Zap core uses ISO-8601 timestamps and lowercase levels.
// • Each logger installs itself process-wide via zap.ReplaceGlobals.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/yanizio/serve/internal/config"
)

// Bootstrap installs a console-only INFO logger so failures before New is
// reachable, flag and config resolution above all, still come out
// structured.
func Bootstrap() *zap.SugaredLogger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig()),
		zapcore.AddSync(os.Stdout),
		zap.InfoLevel,
	)
	z := zap.New(core)
	zap.ReplaceGlobals(z)
	return z.Sugar()
}

// New builds the configured logger: a JSON file core under cfg.LogPath
// when one is set, a console core otherwise.  The result replaces the
// bootstrap logger as the process-wide default.
func New(cfg *config.Config, tee bool) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: level %q: %w", cfg.LogLevel, err)
	}

	if cfg.LogPath == "" {
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(os.Stdout),
			level,
		)
		z := zap.New(core)
		zap.ReplaceGlobals(z)
		return z.Sugar(), nil
	}

	if st, err := os.Stat(cfg.LogPath); err == nil && !st.IsDir() {
		return nil, fmt.Errorf("logger: not a directory: %s", cfg.LogPath)
	}
	if err := os.MkdirAll(cfg.LogPath, 0o755); err != nil {
		return nil, fmt.Errorf("logger: create %s: %w", cfg.LogPath, err)
	}

	fileName := "serve." + time.Now().Format("2006-01-02") + ".log"
	fileSink := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogPath, fileName),
		MaxSize:    50, // MB
		MaxBackups: cfg.LogMaxFiles,
	}

	cores := []zapcore.Core{zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		zapcore.AddSync(fileSink),
		level,
	)}
	if tee {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig()),
			zapcore.AddSync(os.Stdout),
			level,
		))
	}

	z := zap.New(
		zapcore.NewTee(cores...),
		zap.ErrorOutput(zapcore.AddSync(fileSink)),
	)
	zap.ReplaceGlobals(z)

	z.Sugar().Infow("logger online", "file", fileSink.Filename, "level", level.String())
	return z.Sugar(), nil
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:      "ts",
		LevelKey:     "level",
		MessageKey:   "msg",
		CallerKey:    "caller",
		EncodeTime:   zapcore.ISO8601TimeEncoder,
		EncodeLevel:  zapcore.LowercaseLevelEncoder,
		EncodeCaller: zapcore.ShortCallerEncoder,
	}
}
