package logging

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects the worker's configuration and capability state,
// then emits a single structured zerolog event summarising the startup.
// One consolidated line makes it easy to see exactly how the worker was
// configured when troubleshooting from logs.
type StartupLogger struct {
	name         string
	initDuration time.Duration

	buckets  map[string]string
	features map[string]bool
	config   map[string]string
}

// NewStartupLogger creates a StartupLogger for the given component name.
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:     name,
		buckets:  make(map[string]string),
		features: make(map[string]bool),
		config:   make(map[string]string),
	}
}

// InitDuration records how long initialization took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// Bucket registers a storage bucket used by the worker.
func (s *StartupLogger) Bucket(label, name string) *StartupLogger {
	s.buckets[label] = name
	return s
}

// Feature registers a feature flag or capability availability.
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-secret configuration value.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// Log emits the consolidated startup event.
func (s *StartupLogger) Log() {
	event := log.Info().
		Str("component", s.name).
		Dur("init_duration", s.initDuration).
		Str("go_version", runtime.Version()).
		Int("num_cpu", runtime.NumCPU())

	if len(s.buckets) > 0 {
		event = event.Dict("buckets", mapDict(s.buckets))
	}
	if len(s.config) > 0 {
		event = event.Dict("config", mapDict(s.config))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		event = event.Dict("features", d)
	}

	event.Msg("Startup complete")
}

func mapDict(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
