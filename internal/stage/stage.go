// Package stage runs single pipeline transformations with per-stage fallback.
//
// A stage is a named transformation from an input file to an output file with
// an optional local fallback of identical signature. External AI services are
// rate-limited and fail; a pipeline producing no output is worse than one
// producing a degraded-but-valid output, so every AI-backed stage carries a
// deterministic local fallback. A stage only fails the pipeline when both
// paths are exhausted.
package stage

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Func transforms the file at in into a new file at out.
type Func func(ctx context.Context, in, out string) error

// Stage is one named transformation with an optional fallback.
type Stage struct {
	Name     string
	Primary  Func
	Fallback Func // nil for local-only stages
}

// Method identifies which path produced a stage's output.
type Method string

const (
	MethodPrimary  Method = "primary"
	MethodFallback Method = "fallback"
)

// Call records one stage invocation for the run trace.
type Call struct {
	Stage    string
	Method   Method
	Duration time.Duration
	Err      error
}

// Runner executes stages sequentially for one pipeline run and records a
// trace of every invocation. A Runner belongs to a single run and is not
// safe for concurrent use.
type Runner struct {
	trace []Call
}

// NewRunner returns a Runner with an empty trace.
func NewRunner() *Runner {
	return &Runner{}
}

// Trace returns the recorded stage invocations in order.
func (r *Runner) Trace() []Call {
	return r.trace
}

// Run executes st against in, writing the result to out.
//
// The primary path is attempted first. If it fails with a recoverable kind
// and a fallback is defined, the fallback runs. An error is returned only
// when no path succeeded; on nil return the output file exists and was
// produced by whichever method the trace records.
func (r *Runner) Run(ctx context.Context, st Stage, in, out string) error {
	start := time.Now()
	primaryErr := st.Primary(ctx, in, out)
	if primaryErr == nil {
		r.record(st.Name, MethodPrimary, time.Since(start), nil)
		return r.verifyOutput(st.Name, out)
	}

	kind := KindOf(primaryErr)
	r.record(st.Name, MethodPrimary, time.Since(start), primaryErr)

	if st.Fallback == nil || !recoverable(kind) {
		return fmt.Errorf("stage %s failed: %w", st.Name, primaryErr)
	}

	log.Warn().
		Err(primaryErr).
		Str("stage", st.Name).
		Str("kind", string(kind)).
		Msg("Primary method failed, running local fallback")

	start = time.Now()
	fallbackErr := st.Fallback(ctx, in, out)
	r.record(st.Name, MethodFallback, time.Since(start), fallbackErr)
	if fallbackErr != nil {
		return fmt.Errorf("stage %s failed: primary: %v; fallback: %w", st.Name, primaryErr, fallbackErr)
	}

	return r.verifyOutput(st.Name, out)
}

// verifyOutput enforces the stage contract: a stage that returns without
// error has written its output file.
func (r *Runner) verifyOutput(name, out string) error {
	info, err := os.Stat(out)
	if err != nil {
		return Errorf(KindIO, "stage %s reported success but output %s is missing: %v", name, out, err)
	}
	if info.Size() == 0 {
		return Errorf(KindIO, "stage %s produced an empty output file %s", name, out)
	}
	return nil
}

func (r *Runner) record(name string, method Method, d time.Duration, err error) {
	r.trace = append(r.trace, Call{Stage: name, Method: method, Duration: d, Err: err})

	if err == nil {
		log.Debug().
			Str("stage", name).
			Str("method", string(method)).
			Dur("duration", d).
			Msg("Stage complete")
	}
}

// UsedFallback reports whether the trace shows a successful fallback run for
// the named stage.
func (r *Runner) UsedFallback(name string) bool {
	for _, c := range r.trace {
		if c.Stage == name && c.Method == MethodFallback && c.Err == nil {
			return true
		}
	}
	return false
}
