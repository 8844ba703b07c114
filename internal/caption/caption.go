// Package caption generates social media captions for enhanced media.
//
// Generation is a two step conversation with Gemini: first the image is
// described, then the description is turned into a set of candidate
// captions. Caption generation is best-effort. Any failure along the way
// degrades to a fixed caption set so an enhancement run never fails on
// the caption step.
package caption

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/socialreel/enhance-worker/internal/jsonutil"
	"github.com/socialreel/enhance-worker/internal/mediainfo"
)

const (
	// maxCaptions caps the candidate list regardless of how many the
	// model returns.
	maxCaptions = 5

	// fallbackDescription stands in when the describe step fails.
	fallbackDescription = "A beautifully captured moment"

	// maxMediaBytes bounds how much of the media is downloaded for the
	// describe call.
	maxMediaBytes = 20 << 20
)

// fallbackCaptions is returned whenever generation cannot produce a
// usable list.
var fallbackCaptions = []string{
	"✨ Capturing the vibe",
	"🔥 Living in the moment",
	"💫 Aesthetic energy",
	"🌟 Pure mood",
	"📸 Vibes only",
}

// Set holds the generated caption candidates, best first.
type Set struct {
	Captions []string
}

// Primary returns the top candidate caption.
func (s *Set) Primary() string {
	if len(s.Captions) == 0 {
		return fallbackCaptions[0]
	}
	return s.Captions[0]
}

// Generator produces captions for uploaded media.
type Generator struct {
	model      Model
	httpClient *http.Client
}

// NewGenerator builds a Generator around the given model. A nil model
// disables AI generation and every call returns the fallback set.
func NewGenerator(model Model) *Generator {
	return &Generator{
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Generate describes the media at mediaURL and produces up to five
// candidate captions. info carries capture metadata for photos and may
// be nil. Generate never returns an error; on any failure it logs and
// returns the fallback set.
func (g *Generator) Generate(ctx context.Context, mediaURL string, info *mediainfo.Info) *Set {
	if g.model == nil {
		log.Debug().Msg("Caption model not configured, using fallback captions")
		return &Set{Captions: fallbackCaptions}
	}

	description := g.describe(ctx, mediaURL, info)

	captions, err := g.captionsFor(ctx, description)
	if err != nil {
		log.Warn().Err(err).Str("media_url", mediaURL).Msg("Caption generation failed, using fallback captions")
		return &Set{Captions: fallbackCaptions}
	}
	return &Set{Captions: captions}
}

// describe fetches the media and asks the model for a one-paragraph
// description. Failures degrade to a generic description so the caption
// step can still run.
func (g *Generator) describe(ctx context.Context, mediaURL string, info *mediainfo.Info) string {
	data, mimeType, err := g.fetchMedia(ctx, mediaURL)
	if err != nil {
		log.Warn().Err(err).Str("media_url", mediaURL).Msg("Media fetch for description failed")
		return fallbackDescription
	}

	prompt := describePrompt
	if extra := info.PromptContext(); extra != "" {
		prompt = prompt + "\n\n" + extra
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}},
		{Text: prompt},
	}

	text, err := g.model.Generate(ctx, parts)
	if err != nil {
		log.Warn().Err(err).Str("media_url", mediaURL).Msg("Description generation failed")
		return fallbackDescription
	}
	return strings.TrimSpace(text)
}

// captionsFor asks the model for caption candidates based on the
// description and parses the JSON array response.
func (g *Generator) captionsFor(ctx context.Context, description string) ([]string, error) {
	prompt := renderCaptionsPrompt(description)

	text, err := g.model.Generate(ctx, []*genai.Part{{Text: prompt}})
	if err != nil {
		return nil, fmt.Errorf("generate captions: %w", err)
	}

	captions, err := jsonutil.ParseStringList(text)
	if err != nil {
		return nil, fmt.Errorf("parse captions response: %w", err)
	}
	if len(captions) > maxCaptions {
		captions = captions[:maxCaptions]
	}
	return captions, nil
}

// fetchMedia downloads the media bytes for the describe call.
func (g *Generator) fetchMedia(ctx context.Context, mediaURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build media request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch media: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read media body: %w", err)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimeTypeForURL(mediaURL)
	}
	return data, mimeType, nil
}

// mimeTypeForURL guesses the MIME type from the URL's file extension.
func mimeTypeForURL(mediaURL string) string {
	switch strings.ToLower(path.Ext(strings.SplitN(mediaURL, "?", 2)[0])) {
	case ".png":
		return "image/png"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	default:
		return "image/jpeg"
	}
}
