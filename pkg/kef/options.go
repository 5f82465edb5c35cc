package kef

import (
	"errors"
	"log/slog"
	"time"
)

// Option configures a Speaker.
type Option func(*speakerConfig) error

// speakerConfig holds the configuration for a Speaker.
type speakerConfig struct {
	port           int
	connectTimeout time.Duration
	requestTimeout time.Duration
	volumeStep     float64
	maximumVolume  float64
	logger         *slog.Logger
}

// defaultConfig returns the default speaker configuration.
func defaultConfig() *speakerConfig {
	return &speakerConfig{
		port:           50001,
		connectTimeout: 5 * time.Second,
		requestTimeout: 2 * time.Second,
		volumeStep:     0.05,
		maximumVolume:  1.0,
		logger:         nil,
	}
}

// WithPort sets the TCP control port to connect to.
// Default is 50001.
func WithPort(port int) Option {
	return func(c *speakerConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		c.port = port
		return nil
	}
}

// WithConnectTimeout sets the timeout for establishing a connection.
// Default is 5 seconds.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *speakerConfig) error {
		if d <= 0 {
			return errors.New("connect timeout must be positive")
		}
		c.connectTimeout = d
		return nil
	}
}

// WithRequestTimeout sets the timeout for one request/response exchange.
// Default is 2 seconds.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *speakerConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		c.requestTimeout = d
		return nil
	}
}

// WithVolumeStep sets the fraction applied by IncreaseVolume and
// DecreaseVolume. Default is 0.05.
func WithVolumeStep(step float64) Option {
	return func(c *speakerConfig) error {
		if step <= 0 || step > 1 {
			return errors.New("volume step must be in (0, 1]")
		}
		c.volumeStep = step
		return nil
	}
}

// WithMaximumVolume sets a safety ceiling on the volume range. Levels
// reported and accepted never exceed it. Default is 1.0.
func WithMaximumVolume(maximum float64) Option {
	return func(c *speakerConfig) error {
		if maximum <= 0 || maximum > 1 {
			return errors.New("maximum volume must be in (0, 1]")
		}
		c.maximumVolume = maximum
		return nil
	}
}

// WithLogger sets a structured logger for debug and error logging.
// By default, no logging is performed.
func WithLogger(logger *slog.Logger) Option {
	return func(c *speakerConfig) error {
		c.logger = logger
		return nil
	}
}
