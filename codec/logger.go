package codec

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	pkgLogger atomic.Pointer[zap.Logger]
	nopLogger = zap.NewNop()
)

// Logger returns the logger used by handler resolution and by codecs
// without their own logger. It is a no-op logger until SetLogger is called.
func Logger() *zap.Logger {
	if l := pkgLogger.Load(); l != nil {
		return l
	}
	return nopLogger
}

// SetLogger replaces the package logger. A nil logger restores the no-op
// default.
func SetLogger(l *zap.Logger) {
	pkgLogger.Store(l)
}
