package workspace

import (
	"os"
	"testing"
)

func TestAllocateUniquePerRun(t *testing.T) {
	dir := t.TempDir()
	a := New(dir)
	b := New(dir)

	if a.Allocate("enhanced") == b.Allocate("enhanced") {
		t.Error("two runs allocated the same path for the same slot")
	}
}

func TestAllocateSameSlotReturnsSamePath(t *testing.T) {
	ws := New(t.TempDir())

	first := ws.Allocate("thumbnail")
	second := ws.Allocate("thumbnail")
	if first != second {
		t.Errorf("re-allocating a slot returned a new path: %q != %q", first, second)
	}
}

func TestDestroyRemovesAllocatedFiles(t *testing.T) {
	ws := New(t.TempDir())

	var paths []string
	for _, slot := range []string{"stabilized", "graded", "thumbnail"} {
		p := ws.Allocate(slot)
		if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
			t.Fatalf("writing slot file: %v", err)
		}
		paths = append(paths, p)
	}

	ws.Destroy()

	for _, p := range paths {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("file %s still exists after Destroy", p)
		}
	}
}

func TestDestroyToleratesMissingFiles(t *testing.T) {
	ws := New(t.TempDir())

	// Allocated but never written.
	ws.Allocate("upscaled")

	// Must not panic or error.
	ws.Destroy()
}

func TestDestroyIsIdempotent(t *testing.T) {
	ws := New(t.TempDir())
	p := ws.Allocate("final")
	if err := os.WriteFile(p, []byte("data"), 0o644); err != nil {
		t.Fatalf("writing slot file: %v", err)
	}

	ws.Destroy()
	ws.Destroy()

	if _, err := os.Stat(p); !os.IsNotExist(err) {
		t.Errorf("file %s still exists after double Destroy", p)
	}
}
