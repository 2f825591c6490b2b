package fel

import (
	"time"

	"github.com/xboot/xfel-go/payload"
)

// Config holds the session configuration.
type Config struct {
	// Progress is called after every chunk of a multi-chunk transfer (optional)
	Progress ProgressFunc

	// Logger is used for logging operations (optional)
	Logger Logger

	// Timeout bounds one exchange; zero leaves it to the transport
	Timeout time.Duration

	// Payloads resolves stub names to images (optional, needed by stub-based operations)
	Payloads payload.Store

	// PollAttempts is how many times a stub status word is read before giving up
	PollAttempts int

	// PollInterval is the pause between two status reads
	PollInterval time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Logger:       nopLogger{},
		PollAttempts: 100,
		PollInterval: 10 * time.Millisecond,
	}
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProgress sets a callback to track transfer progress.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Config) {
		c.Progress = fn
	}
}

// WithLogger sets a logger for session operations. A nil logger is ignored.
//
// Example:
//
//	s, err := fel.Open(ctx, t, fel.WithLogger(logging.Logrus(logrus.StandardLogger())))
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithTimeout bounds every exchange with the device.
//
// Example:
//
//	s, err := fel.Open(ctx, t, fel.WithTimeout(5*time.Second))
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout >= 0 {
			c.Timeout = timeout
		}
	}
}

// WithPayloads sets the store stub images are loaded from.
//
// Example:
//
//	store := payload.NewDir(afero.NewOsFs(), "/usr/share/xfel")
//	s, err := fel.Open(ctx, t, fel.WithPayloads(store))
func WithPayloads(store payload.Store) Option {
	return func(c *Config) {
		c.Payloads = store
	}
}

// WithPollAttempts sets how often a stub status word is polled.
func WithPollAttempts(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.PollAttempts = n
		}
	}
}

// WithPollInterval sets the pause between status polls.
func WithPollInterval(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.PollInterval = d
		}
	}
}
