package mediainfo

import (
	"strings"
	"testing"
	"time"
)

func TestPromptContextNilInfo(t *testing.T) {
	var info *Info
	if ctx := info.PromptContext(); ctx != "" {
		t.Errorf("nil info produced context %q", ctx)
	}
}

func TestPromptContextPhoto(t *testing.T) {
	info := &Info{
		MediaType:   "photo",
		CameraMake:  "Apple",
		CameraModel: "iPhone 15 Pro",
		TakenAt:     time.Date(2026, time.March, 14, 18, 30, 0, 0, time.UTC),
		HasDate:     true,
	}

	ctx := info.PromptContext()
	for _, want := range []string{"Apple", "iPhone 15 Pro", "March 14, 2026"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}
}

func TestPromptContextVideo(t *testing.T) {
	info := &Info{
		MediaType: "video",
		Width:     1080,
		Height:    1920,
		Duration:  12 * time.Second,
	}

	ctx := info.PromptContext()
	for _, want := range []string{"1080x1920", "12 seconds"} {
		if !strings.Contains(ctx, want) {
			t.Errorf("context missing %q:\n%s", want, ctx)
		}
	}
}

func TestForPhotoMissingFile(t *testing.T) {
	if info := ForPhoto("/nonexistent/photo.jpg"); info != nil {
		t.Errorf("expected nil info for missing file, got %+v", info)
	}
}
