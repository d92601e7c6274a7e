// Package logger is the zap-backed structured logger used by stores, repositories and repoctl.
package logger

import (
	"github.com/code19m/errx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	encConsole = "console"
	levelInfo  = "info"
)

// Config configures a logger. Entries go to stderr.
type Config struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error" default:"info"`

	// Encoding is "console" for operators running repoctl by hand and "json" for log shipping.
	Encoding string `yaml:"encoding" validate:"oneof=json console" default:"console"`

	// Disable discards every entry.
	Disable bool `yaml:"disable" default:"false"`
}

func (c Config) getZapConfig() (*zap.Config, error) {
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithDetails(errx.D{"level": c.Level}))
	}

	encoder := zap.NewProductionEncoderConfig()
	encoder.TimeKey = "time"
	encoder.MessageKey = "msg"
	encoder.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder.EncodeDuration = zapcore.StringDurationEncoder
	encoder.EncodeName = zapcore.FullNameEncoder
	if c.Encoding == encConsole {
		encoder.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		encoder.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return &zap.Config{
		Level:             level,
		Encoding:          c.Encoding,
		EncoderConfig:     encoder,
		DisableCaller:     true,
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}, nil
}
