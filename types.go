package dashactyl

// Option represents a configuration option for New.
type Option func(*Client)

// Logger is the minimal structured logging interface accepted by the
// client. Keys and values alternate in keysAndValues.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// DebugConfig controls which request lifecycle events are logged when a
// Logger is configured.
type DebugConfig struct {
	Enabled      bool
	LogRequests  bool
	LogResponses bool
	LogCache     bool
	RequestIDGen func() string
}

// DefaultDebugConfig returns a DebugConfig with all event classes enabled
// and a UUID request-ID generator. Logging still requires a Logger and
// WithDebug.
func DefaultDebugConfig() *DebugConfig {
	return &DebugConfig{
		Enabled:      false,
		LogRequests:  true,
		LogResponses: true,
		LogCache:     true,
		RequestIDGen: defaultRequestID,
	}
}
