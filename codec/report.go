package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/tagcodec/errors"
	"github.com/wippyai/tagcodec/types"
)

// Reporter receives every failure before the codec returns it.
type Reporter interface {
	Report(op string, t *types.Type, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(op string, t *types.Type, err error)

func (f ReporterFunc) Report(op string, t *types.Type, err error) {
	f(op, t, err)
}

// LogReporter logs internal inconsistencies at error level and everything
// else at debug level. A nil Logger uses the package logger.
type LogReporter struct {
	Logger *zap.Logger
}

func (r LogReporter) Report(op string, t *types.Type, err error) {
	fields := []zap.Field{
		zap.String("op", op),
		zap.Stringer("type", t),
		zap.Error(err),
	}
	log := r.Logger
	if log == nil {
		log = Logger()
	}
	switch errors.ClassOf(err) {
	case errors.ClassBug:
		log.Error("layout inconsistency", fields...)
	case errors.ClassUB:
		log.Debug("undefined behavior", fields...)
	default:
		log.Debug("discriminant access failed", fields...)
	}
}
