// Package logging builds the zap logger shared by flashdeck commands.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const AppName = "flashdeck"

// New returns a console logger. Errors go to stderr, everything else to
// stdout. Level is one of none, normal or debug.
func New(level string) (*zap.Logger, error) {
	return build(level, os.Stdout, os.Stderr, !color.NoColor)
}

// NewTo is New with explicit destinations and no colors, for the terminal
// screens which own stdout.
func NewTo(level string, w io.Writer) (*zap.Logger, error) {
	ws := zapcore.AddSync(w)
	return build(level, ws, ws, false)
}

func build(level string, out, errOut zapcore.WriteSyncer, colored bool) (*zap.Logger, error) {
	var lowest zapcore.Level
	switch level {
	case "none":
		return zap.NewNop(), nil
	case "normal", "":
		lowest = zapcore.InfoLevel
	case "debug":
		lowest = zapcore.DebugLevel
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if colored {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.TimeKey = zapcore.OmitKey
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	lowPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lowest <= lvl && lvl < zapcore.ErrorLevel
	})
	highPriority := zap.LevelEnablerFunc(func(lvl zapcore.Level) bool {
		return lvl >= zapcore.ErrorLevel
	})

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(out), lowPriority),
		zapcore.NewCore(consoleEnc{zapcore.NewConsoleEncoder(ec)}, zapcore.Lock(errOut), highPriority),
	)
	return zap.New(core).Named(AppName), nil
}

// consoleEnc prints only the message of logged errors, dropping verbose
// stack-like detail from wrapped chains.
type consoleEnc struct {
	zapcore.Encoder
}

func (c consoleEnc) Clone() zapcore.Encoder {
	return consoleEnc{c.Encoder.Clone()}
}

func (c consoleEnc) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	out := make([]zapcore.Field, 0, len(fields))
	for _, f := range fields {
		if f.Type == zapcore.ErrorType {
			if e, ok := f.Interface.(error); ok {
				f.Interface = errors.New(e.Error())
			}
		}
		out = append(out, f)
	}
	return c.Encoder.EncodeEntry(ent, out)
}
