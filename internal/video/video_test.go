package video

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/socialreel/enhance-worker/internal/config"
	"github.com/socialreel/enhance-worker/internal/stage"
	"github.com/socialreel/enhance-worker/internal/superres"
)

// fakeRunner emulates ffmpeg by writing a placeholder output file. The
// output path is the final argument for both filter and frame invocations.
type fakeRunner struct {
	invocations [][]string
	failWhen    func(args []string) error
}

func (f *fakeRunner) Run(_ context.Context, args []string) error {
	f.invocations = append(f.invocations, args)
	if f.failWhen != nil {
		if err := f.failWhen(args); err != nil {
			return err
		}
	}
	out := args[len(args)-1]
	return os.WriteFile(out, []byte("frame-data"), 0o644)
}

func (f *fakeRunner) sawGraph(graph string) bool {
	for _, args := range f.invocations {
		for _, a := range args {
			if a == graph {
				return true
			}
		}
	}
	return false
}

type fakeUpscaler struct {
	err error
}

func (f *fakeUpscaler) Upscale(_ context.Context, in, out string, _ int, _ bool) error {
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

var _ superres.Upscaler = (*fakeUpscaler)(nil)

type upload struct {
	bucket string
	key    string
}

type fakeStore struct {
	uploads []upload
}

func (f *fakeStore) Upload(_ context.Context, bucket, key, _ string, body io.Reader) (string, error) {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return "", err
	}
	f.uploads = append(f.uploads, upload{bucket, key})
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, key), nil
}

func testStorageConfig() config.StorageConfig {
	return config.StorageConfig{
		MediaBucket:     "processed-media",
		ThumbnailBucket: "thumbnails",
	}
}

func writeTestVideo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "input.mp4")
	if err := os.WriteFile(path, []byte("video-data"), 0o644); err != nil {
		t.Fatalf("write test video: %v", err)
	}
	return path
}

func inLibrary(url string) bool {
	for _, track := range musicLibrary {
		if track == url {
			return true
		}
	}
	return false
}

func TestEnhanceHappyPath(t *testing.T) {
	dir := t.TempDir()
	input := writeTestVideo(t, dir)

	runner := &fakeRunner{}
	store := &fakeStore{}
	enh := NewEnhancer(runner, &fakeUpscaler{}, store, testStorageConfig(), dir)

	result, err := enh.Enhance(context.Background(), input, "user-7")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	if result.AIStyle != "cinematic" {
		t.Errorf("ai_style = %q, want cinematic", result.AIStyle)
	}
	if result.MusicURL == nil {
		t.Fatal("music_url should be set for videos")
	}
	if !inLibrary(*result.MusicURL) {
		t.Errorf("music_url %q not in the fixed library", *result.MusicURL)
	}

	if len(store.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %d", len(store.uploads))
	}
	if store.uploads[0].bucket != "processed-media" || !strings.HasSuffix(store.uploads[0].key, ".mp4") {
		t.Errorf("unexpected media upload: %+v", store.uploads[0])
	}
	if store.uploads[1].bucket != "thumbnails" || !strings.HasSuffix(store.uploads[1].key, ".jpg") {
		t.Errorf("unexpected thumbnail upload: %+v", store.uploads[1])
	}
	for _, u := range store.uploads {
		if !strings.HasPrefix(u.key, "user-7/") {
			t.Errorf("key %q not namespaced by user", u.key)
		}
	}

	// Four filter stages plus one frame extraction; the AI upscale primary
	// succeeded, so its ffmpeg fallback never ran.
	if len(runner.invocations) != 5 {
		t.Errorf("expected 5 ffmpeg invocations, got %d", len(runner.invocations))
	}
	if runner.sawGraph("scale=1080:1920:flags=lanczos") {
		t.Error("upscale fallback ran despite primary success")
	}
}

func TestEnhanceUpscaleFailureUsesLocalScale(t *testing.T) {
	dir := t.TempDir()
	input := writeTestVideo(t, dir)

	runner := &fakeRunner{}
	up := &fakeUpscaler{err: stage.NewError(stage.KindService, fmt.Errorf("service unavailable"))}
	store := &fakeStore{}

	result, err := NewEnhancer(runner, up, store, testStorageConfig(), dir).Enhance(context.Background(), input, "user-1")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if result.AIStyle != "cinematic" {
		t.Errorf("ai_style = %q, want cinematic", result.AIStyle)
	}
	if result.MusicURL == nil || !inLibrary(*result.MusicURL) {
		t.Errorf("music_url missing or outside library: %v", result.MusicURL)
	}

	if !runner.sawGraph("scale=1080:1920:flags=lanczos") {
		t.Error("local scale fallback was not invoked")
	}

	// The fallback keeps the audio track, same as every other stage.
	for _, args := range runner.invocations {
		joined := strings.Join(args, " ")
		if strings.Contains(joined, "flags=lanczos") && !strings.Contains(joined, "-c:a copy") {
			t.Errorf("fallback scale dropped audio copy: %v", args)
		}
	}
}

func TestEnhanceThumbnailRetriesAtZero(t *testing.T) {
	dir := t.TempDir()
	input := writeTestVideo(t, dir)

	runner := &fakeRunner{}
	runner.failWhen = func(args []string) error {
		// Fail the seek at 1s; the retry omits -ss entirely.
		for i := 0; i < len(args)-1; i++ {
			if args[i] == "-ss" && args[i+1] == "1" {
				return stage.NewError(stage.KindProcess, fmt.Errorf("could not seek"))
			}
		}
		return nil
	}
	store := &fakeStore{}

	if _, err := NewEnhancer(runner, &fakeUpscaler{}, store, testStorageConfig(), dir).Enhance(context.Background(), input, "user-1"); err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	frameCalls := 0
	for _, args := range runner.invocations {
		for _, a := range args {
			if a == "-vframes" {
				frameCalls++
			}
		}
	}
	if frameCalls != 2 {
		t.Errorf("expected 2 frame extraction attempts, got %d", frameCalls)
	}
}

func TestEnhanceCleansUpWorkspace(t *testing.T) {
	srcDir := t.TempDir()
	tempRoot := t.TempDir()
	input := writeTestVideo(t, srcDir)

	store := &fakeStore{}
	if _, err := NewEnhancer(&fakeRunner{}, &fakeUpscaler{}, store, testStorageConfig(), tempRoot).Enhance(context.Background(), input, "user-1"); err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}

	entries, err := os.ReadDir(tempRoot)
	if err != nil {
		t.Fatalf("read temp root: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("workspace left %d files behind", len(entries))
	}
}

func TestEnhanceCleansUpWorkspaceOnFailure(t *testing.T) {
	srcDir := t.TempDir()
	tempRoot := t.TempDir()
	input := writeTestVideo(t, srcDir)

	runner := &fakeRunner{}
	runner.failWhen = func(args []string) error {
		for _, a := range args {
			if a == "fade=in:0:30,fade=out:st=8:d=1" {
				return stage.NewError(stage.KindProcess, fmt.Errorf("ffmpeg exited 1"))
			}
		}
		return nil
	}

	_, err := NewEnhancer(runner, &fakeUpscaler{}, &fakeStore{}, testStorageConfig(), tempRoot).Enhance(context.Background(), input, "user-1")
	if err == nil {
		t.Fatal("expected error when the transitions stage fails")
	}

	// Intermediate files written before the failing stage are removed too.
	entries, readErr := os.ReadDir(tempRoot)
	if readErr != nil {
		t.Fatalf("read temp root: %v", readErr)
	}
	if len(entries) != 0 {
		t.Errorf("workspace left %d files behind after failure", len(entries))
	}
}

func TestEnhanceStageFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	input := writeTestVideo(t, dir)

	runner := &fakeRunner{}
	runner.failWhen = func(args []string) error {
		for _, a := range args {
			if a == "deshake" {
				return stage.NewError(stage.KindProcess, fmt.Errorf("ffmpeg exited 1"))
			}
		}
		return nil
	}
	store := &fakeStore{}

	_, err := NewEnhancer(runner, &fakeUpscaler{}, store, testStorageConfig(), dir).Enhance(context.Background(), input, "user-1")
	if err == nil {
		t.Fatal("expected error when a local-only stage fails")
	}
	if len(store.uploads) != 0 {
		t.Errorf("expected no uploads after fatal stage failure, got %d", len(store.uploads))
	}
}
