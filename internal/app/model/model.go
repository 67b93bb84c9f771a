// Package model owns the speech-recognition model: the backend contract and
// the process-wide cache that loads it at most once.
package model

import (
	"context"
	"time"
)

// Backend loads a model. Load may be slow (weights on disk or over the network)
// and is invoked at most once per process by Cache.
type Backend interface {
	Name() string
	Load(ctx context.Context) (Handle, error)
}

// Handle is a loaded model. Implementations must be safe for concurrent use
// and keep no per-job state between calls.
type Handle interface {
	Transcribe(ctx context.Context, audioPath string) (*Output, error)
	Info() Info
}

// Info describes a loaded model.
type Info struct {
	Backend string `json:"backend"`
	Variant string `json:"variant"`
	Source  string `json:"source,omitempty"`
}

// Output is everything a backend reports for one inference pass. Callers that
// only want text ignore the rest.
type Output struct {
	Text     string
	Language string
	Segments []Segment
	Duration time.Duration
}

// Segment is a time-aligned piece of a transcript.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}
