// Package logger holds the process-wide zap sugared logger shared by the
// FitDesk server, the migration CLI, and the middleware stack.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger for the given environment: JSON output for
// "production", a human-readable console encoder for everything else.
// Subsequent calls are no-ops.
func Init(env string) {
	once.Do(func() {
		var base *zap.Logger
		var err error

		if env == "production" {
			base, err = zap.NewProduction()
		} else {
			base, err = zap.NewDevelopment()
		}

		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development logger
// when Init was never called (tests, ad-hoc tooling).
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes buffered log entries. Deferred from every main.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
