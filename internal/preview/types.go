package preview

import "time"

// Config defines renderer configuration
type Config struct {
	Timeout       time.Duration // Budget for all scripts, listeners and timers of one render
	MaxConcurrent int           // Renders allowed to run at once
	MaxTasks      int           // Timer callbacks drained per render
	MaxCallStack  int           // goja call stack limit
	AcquireWait   time.Duration // How long Render waits for a free slot
}

// DefaultConfig returns the configuration used by the server.
func DefaultConfig() Config {
	return Config{
		Timeout:       2 * time.Second,
		MaxConcurrent: 8,
		MaxTasks:      1000,
		MaxCallStack:  1024,
		AcquireWait:   5 * time.Second,
	}
}

// DiagnosticKind classifies a script failure.
type DiagnosticKind string

const (
	KindThrown  DiagnosticKind = "thrown"  // uncaught exception
	KindSyntax  DiagnosticKind = "syntax"  // script failed to compile
	KindTimeout DiagnosticKind = "timeout" // execution budget exhausted
)

// Diagnostic is a contained script failure, shown inline in the rendered body.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Message string         `json:"message"`
	Origin  string         `json:"origin"` // "script", "markup", "listener" or "timer"
}

// LogEntry represents console output
type LogEntry struct {
	Level   string `json:"level"` // log, info, warn, error, debug
	Message string `json:"message"`
}

// View is the result of one render. It is derived from a SourceDocument
// and never outlives it.
type View struct {
	// Source is the document handed to a browser.
	Source string
	// Document is the serialized DOM after headless execution, scripts removed.
	Document string
	// Body is the inner HTML of the body after execution, scripts removed.
	Body string
	// Text is the visible text of the body.
	Text string

	Diagnostics []Diagnostic
	Console     []LogEntry
	TimedOut    bool
	Duration    time.Duration
}

// Failed reports whether any script failure was contained.
func (v *View) Failed() bool {
	return len(v.Diagnostics) > 0
}

// Observer receives every finished render. Used for metrics.
type Observer interface {
	ObserveRender(view *View)
}
