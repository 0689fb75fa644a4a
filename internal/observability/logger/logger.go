// Package logger wraps a process-wide zap logger with typed field
// helpers so log keys stay consistent across handlers and stores.
package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	once     sync.Once
	instance *zap.Logger
)

// Init builds the singleton. Idempotent; only the first call wins.
// Call it from main before anything logs.
func Init(cfg Config) {
	once.Do(func() {
		instance = build(cfg)
	})
}

// L returns the singleton, building a dev/info logger if Init was
// never called (tests, mostly).
func L() *zap.Logger {
	if instance == nil {
		Init(Config{Env: "dev", Level: "info"})
	}
	return instance
}

// Named returns a logger tagged with a component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered entries; defer it in main.
func Sync() error {
	if instance != nil {
		return instance.Sync()
	}
	return nil
}
