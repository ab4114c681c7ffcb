package logging

import (
	"sync"
)

var (
	instance *Logger
	mu       sync.Mutex
)

// InitLogger initializes the global logger with the given configuration.
// Later calls replace the previous instance.
func InitLogger(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}

	logger, err := NewLogger(config)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	instance = logger
	return nil
}

// GetGlobalLogger returns the global logger instance. If InitLogger was never
// called it falls back to a stdout-only logger so library code and tests can
// log without setup.
func GetGlobalLogger() *Logger {
	mu.Lock()
	defer mu.Unlock()

	if instance == nil {
		instance, _ = NewLogger(&Config{MaxSize: 100, MaxBackups: 3, MaxAge: 7})
	}
	return instance
}
