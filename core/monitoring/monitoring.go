package monitoring

import (
	"fmt"
	"time"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	// Capture records err with searchable tags and free-form context.
	Capture(err error, tags map[string]string, extra map[string]any)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) Capture(error, map[string]string, map[string]any) {}
func (NopMonitor) Recover()                                         {}
func (NopMonitor) Flush(time.Duration)                              {}

var current Monitor = NopMonitor{}

// Init sets the global monitor implementation.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// Capture records the error on the global monitor.
func Capture(err error, tags map[string]string, extra map[string]any) {
	if current != nil && err != nil {
		current.Capture(err, tags, extra)
	}
}

// Recover captures panics in goroutines.
func Recover() {
	if current != nil {
		current.Recover()
	}
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	if current != nil {
		current.Flush(d)
	}
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Guard runs fn and turns a panic into a *PanicError captured with tags.
// It is meant for worker goroutines that must not bring the process down.
func Guard(tags map[string]string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
			Capture(err, tags, nil)
		}
	}()
	return fn()
}
