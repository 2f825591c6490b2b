package fel

import "time"

// Operation names reported in Progress.Op.
const (
	OpRead   = "read"
	OpWrite  = "write"
	OpVerify = "verify"
	OpErase  = "erase"
)

// Progress describes how far a multi-chunk transfer has come.
// Passed to ProgressFunc after every completed chunk.
type Progress struct {
	// Op is one of the Op* names
	Op string

	// Addr is the start address of the whole transfer
	Addr uint32

	// Done is the number of bytes completed so far
	Done int

	// Total is the number of bytes requested
	Total int

	// Elapsed is the time since the transfer started
	Elapsed time.Duration
}

// Percentage returns Done as a share of Total, 0.0 to 100.0.
func (p Progress) Percentage() float64 {
	if p.Total <= 0 {
		return 100
	}
	return float64(p.Done) * 100 / float64(p.Total)
}

// ProgressFunc is called synchronously between chunks. Implementations
// should return quickly.
//
// Example:
//
//	s, err := fel.Open(ctx, t,
//	    fel.WithProgress(func(p fel.Progress) {
//	        fmt.Printf("\r%s %.1f%%", p.Op, p.Percentage())
//	    }),
//	)
type ProgressFunc func(Progress)

// Logger is an optional logging interface for session operations.
// The logging package adapts logrus and zap to it.
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Tracker reports progress of one transfer to a ProgressFunc.
type Tracker struct {
	fn    ProgressFunc
	op    string
	addr  uint32
	total int
	start time.Time
}

// NewTracker starts tracking a transfer. fn may be nil.
func NewTracker(fn ProgressFunc, op string, addr uint32, total int) *Tracker {
	return &Tracker{fn: fn, op: op, addr: addr, total: total, start: time.Now()}
}

// Report publishes done bytes.
func (t *Tracker) Report(done int) {
	if t == nil || t.fn == nil {
		return
	}
	t.fn(Progress{
		Op:      t.op,
		Addr:    t.addr,
		Done:    done,
		Total:   t.total,
		Elapsed: time.Since(t.start),
	})
}
