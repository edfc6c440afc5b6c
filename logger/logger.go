// Package logger builds the zap logger scopeq logs through.
package logger

import (
	"os"

	"github.com/arjunmahishi/scopeq/config"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a sugared logger writing to stderr. Stdout is left to command
// output and the language server protocol.
func New(cfg config.Log) (*zap.SugaredLogger, error) {
	return newWithSink(cfg, zapcore.Lock(os.Stderr))
}

func newWithSink(cfg config.Log, sink zapcore.WriteSyncer) (*zap.SugaredLogger, error) {
	level := zap.InfoLevel
	if cfg.Level != "" {
		var err error
		if level, err = zapcore.ParseLevel(cfg.Level); err != nil {
			return nil, errors.Wrap(err, "parse log level")
		}
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	var enc zapcore.Encoder
	if cfg.JSON {
		encCfg = zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	return zap.New(zapcore.NewCore(enc, sink, level)).Sugar(), nil
}
