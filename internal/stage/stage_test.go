package stage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeOutput(t *testing.T, content string) Func {
	t.Helper()
	return func(ctx context.Context, in, out string) error {
		return os.WriteFile(out, []byte(content), 0o644)
	}
}

func failWith(kind Kind) Func {
	return func(ctx context.Context, in, out string) error {
		return Errorf(kind, "forced %s failure", kind)
	}
}

func TestRunPrimarySucceeds(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner()

	st := Stage{Name: "enhance", Primary: writeOutput(t, "primary"), Fallback: writeOutput(t, "fallback")}
	if err := r.Run(context.Background(), st, "in", out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, _ := os.ReadFile(out)
	if string(data) != "primary" {
		t.Errorf("output = %q, want %q", data, "primary")
	}

	trace := r.Trace()
	if len(trace) != 1 || trace[0].Method != MethodPrimary || trace[0].Err != nil {
		t.Errorf("unexpected trace: %+v", trace)
	}
}

func TestRunFallsBackOnRecoverableKinds(t *testing.T) {
	for _, kind := range []Kind{KindService, KindNetwork, KindProcess, KindMalformed} {
		t.Run(string(kind), func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			r := NewRunner()

			st := Stage{Name: "upscale", Primary: failWith(kind), Fallback: writeOutput(t, "fallback")}
			if err := r.Run(context.Background(), st, "in", out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, _ := os.ReadFile(out)
			if string(data) != "fallback" {
				t.Errorf("output = %q, want %q", data, "fallback")
			}
			if !r.UsedFallback("upscale") {
				t.Error("trace does not record a successful fallback")
			}
		})
	}
}

func TestRunDoesNotFallBackOnIOFailure(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner()

	fallbackRan := false
	st := Stage{
		Name:    "grade",
		Primary: failWith(KindIO),
		Fallback: func(ctx context.Context, in, out string) error {
			fallbackRan = true
			return nil
		},
	}

	if err := r.Run(context.Background(), st, "in", out); err == nil {
		t.Fatal("expected error for io failure")
	}
	if fallbackRan {
		t.Error("fallback ran for an io failure")
	}
}

func TestRunBothPathsFailIsFatal(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner()

	st := Stage{
		Name:    "upscale",
		Primary: failWith(KindService),
		Fallback: func(ctx context.Context, in, out string) error {
			return fmt.Errorf("fallback exploded")
		},
	}

	err := r.Run(context.Background(), st, "in", out)
	if err == nil {
		t.Fatal("expected fatal error when both paths fail")
	}

	trace := r.Trace()
	if len(trace) != 2 {
		t.Fatalf("trace length = %d, want 2", len(trace))
	}
	if trace[1].Method != MethodFallback || trace[1].Err == nil {
		t.Errorf("unexpected fallback trace entry: %+v", trace[1])
	}
}

func TestRunNoFallbackDefined(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner()

	st := Stage{Name: "correct", Primary: failWith(KindService)}
	if err := r.Run(context.Background(), st, "in", out); err == nil {
		t.Fatal("expected error when primary fails with no fallback")
	}
}

func TestRunMissingOutputIsAnError(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	r := NewRunner()

	// Stage lies: returns nil without writing its output.
	st := Stage{Name: "thumbnail", Primary: func(ctx context.Context, in, out string) error { return nil }}
	if err := r.Run(context.Background(), st, "in", out); err == nil {
		t.Fatal("expected error for missing output file")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Kind
	}{
		{"tagged service", NewError(KindService, errors.New("boom")), KindService},
		{"wrapped tagged", fmt.Errorf("context: %w", NewError(KindNetwork, errors.New("timeout"))), KindNetwork},
		{"untagged defaults to io", errors.New("plain"), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if kind := KindOf(tt.err); kind != tt.expected {
				t.Errorf("KindOf = %q, want %q", kind, tt.expected)
			}
		})
	}
}
