package config

import (
	"time"

	"go.uber.org/zap/zapcore"
)

type Option func(c *Config)

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = d
	}
}

func WithStorageDriver(driver string) Option {
	return func(c *Config) {
		c.Storage.Driver = driver
	}
}
