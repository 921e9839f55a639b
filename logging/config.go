package logging

// Config controls router buffering and filtering.
type Config struct {
	BufferSize      int
	MinimumSeverity Severity
}

// DefaultConfig returns the settings used by the server binary.
func DefaultConfig() Config {
	return Config{
		BufferSize:      512,
		MinimumSeverity: SeverityInfo,
	}
}
