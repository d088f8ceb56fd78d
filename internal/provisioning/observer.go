package provisioning

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Observer receives progress and diagnostics during provisioning.
type Observer interface {
	// Printf reports normal progress.
	Printf(format string, v ...any)

	// Warnf reports a non-fatal problem, including consistency alarms.
	Warnf(format string, v ...any)

	// Progress reports position within a multi-item step.
	Progress(step string, current, total int)
}

// ZapObserver implements Observer on a zap console logger.
type ZapObserver struct {
	log *zap.SugaredLogger
}

// NewObserver builds a console observer. Verbose lowers the level to debug.
func NewObserver(verbose bool) (*ZapObserver, error) {
	cfg := zap.NewDevelopmentConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &ZapObserver{log: logger.Sugar()}, nil
}

// Printf implements Observer.
func (o *ZapObserver) Printf(format string, v ...any) {
	o.log.Infof(format, v...)
}

// Warnf implements Observer.
func (o *ZapObserver) Warnf(format string, v ...any) {
	o.log.Warnf(format, v...)
}

// Progress implements Observer.
func (o *ZapObserver) Progress(step string, current, total int) {
	o.log.Infof("[%s] %d/%d", step, current, total)
}

// Sync flushes buffered log entries.
func (o *ZapObserver) Sync() error {
	return o.log.Sync()
}
