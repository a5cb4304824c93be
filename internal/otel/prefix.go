package otel

// Metric prefixes for each service
// Each service should define its own metric names and use these prefixes
const (
	PrefixSignal   = "signal"
	PrefixSessions = "sessions"
	PrefixComposer = "composer"
	PrefixFFmpeg   = "ffmpeg"
	PrefixEngine   = "media_engine"
	PrefixViewers  = "viewers"
)
