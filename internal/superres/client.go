// Package superres provides the super-resolution capability: send media to a
// hosted Real-ESRGAN style prediction API and download the upscaled result.
//
// Every failure is tagged with a stage error kind so the pipelines can decide
// whether the local fallback applies.
package superres

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/socialreel/enhance-worker/internal/config"
	"github.com/socialreel/enhance-worker/internal/stage"
)

const (
	pollInterval   = 2 * time.Second
	pollTimeout    = 5 * time.Minute
	submitMaxRetry = 30 * time.Second
)

// Upscaler is the super-resolution capability.
type Upscaler interface {
	// Upscale sends the file at inputPath to the service and writes the
	// upscaled result to outputPath.
	Upscale(ctx context.Context, inputPath, outputPath string, scale int, faceEnhance bool) error
}

// Client calls a Replicate-style prediction API.
type Client struct {
	httpClient   *http.Client
	apiURL       string
	token        string
	modelVersion string
}

var _ Upscaler = (*Client)(nil)

// NewClient builds a Client from the upscale configuration.
func NewClient(cfg config.UpscaleConfig) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		apiURL:       cfg.APIURL,
		token:        cfg.APIToken,
		modelVersion: cfg.ModelVersion,
	}
}

// IsConfigured reports whether the client has credentials to call the service.
func (c *Client) IsConfigured() bool {
	return c.token != "" && c.modelVersion != ""
}

type prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
	URLs   struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Upscale submits the prediction, polls until it settles, and downloads the
// output. scale and faceEnhance mirror the service's input parameters.
func (c *Client) Upscale(ctx context.Context, inputPath, outputPath string, scale int, faceEnhance bool) error {
	if !c.IsConfigured() {
		return stage.Errorf(stage.KindService, "upscale service not configured")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return stage.Errorf(stage.KindIO, "read input: %v", err)
	}

	log.Debug().
		Str("input", inputPath).
		Int("size_bytes", len(data)).
		Int("scale", scale).
		Bool("face_enhance", faceEnhance).
		Msg("Submitting upscale prediction")

	pred, err := c.submit(ctx, data, scale, faceEnhance)
	if err != nil {
		return err
	}

	outputURL, err := c.poll(ctx, pred)
	if err != nil {
		return err
	}

	return c.download(ctx, outputURL, outputPath)
}

// submit creates the prediction, retrying transient failures with exponential
// backoff. Client errors (4xx) are permanent.
func (c *Client) submit(ctx context.Context, data []byte, scale int, faceEnhance bool) (*prediction, error) {
	body, err := json.Marshal(map[string]any{
		"version": c.modelVersion,
		"input": map[string]any{
			"image":        "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(data),
			"scale":        scale,
			"face_enhance": faceEnhance,
		},
	})
	if err != nil {
		return nil, stage.Errorf(stage.KindMalformed, "encode request: %v", err)
	}

	var pred prediction
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(stage.Errorf(stage.KindNetwork, "build request: %v", err))
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Warn().Err(err).Msg("Upscale submit failed, will retry")
			return stage.NewError(stage.KindNetwork, err)
		}
		defer resp.Body.Close()

		respBody, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return backoff.Permanent(stage.Errorf(stage.KindService, "submit rejected: %d: %s", resp.StatusCode, respBody))
		}
		if resp.StatusCode >= 500 {
			return stage.Errorf(stage.KindService, "submit failed: %d", resp.StatusCode)
		}

		if err := json.Unmarshal(respBody, &pred); err != nil {
			return backoff.Permanent(stage.Errorf(stage.KindMalformed, "decode prediction: %v", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = submitMaxRetry
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return &pred, nil
}

// poll waits for the prediction to settle and returns the output file URL.
func (c *Client) poll(ctx context.Context, pred *prediction) (string, error) {
	deadline := time.Now().Add(pollTimeout)

	for {
		switch pred.Status {
		case "succeeded":
			return outputURL(pred.Output)
		case "failed", "canceled":
			return "", stage.Errorf(stage.KindService, "prediction %s: %s", pred.Status, pred.Error)
		}

		if time.Now().After(deadline) {
			return "", stage.Errorf(stage.KindService, "prediction %s timed out after %s", pred.ID, pollTimeout)
		}

		select {
		case <-ctx.Done():
			return "", stage.NewError(stage.KindNetwork, ctx.Err())
		case <-time.After(pollInterval):
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pred.URLs.Get, nil)
		if err != nil {
			return "", stage.Errorf(stage.KindNetwork, "build poll request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", stage.NewError(stage.KindNetwork, err)
		}

		var next prediction
		err = json.NewDecoder(resp.Body).Decode(&next)
		resp.Body.Close()
		if err != nil {
			return "", stage.Errorf(stage.KindMalformed, "decode poll response: %v", err)
		}
		*pred = next
	}
}

// outputURL extracts the result URL; the service returns either a single
// string or a list of strings.
func outputURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", stage.Errorf(stage.KindMalformed, "prediction succeeded with no output")
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return single, nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0], nil
	}

	return "", stage.Errorf(stage.KindMalformed, "unrecognized prediction output: %s", raw)
}

// download fetches the upscaled media to outputPath.
func (c *Client) download(ctx context.Context, url, outputPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return stage.Errorf(stage.KindNetwork, "build download request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return stage.NewError(stage.KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return stage.Errorf(stage.KindService, "download output: %d", resp.StatusCode)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return stage.Errorf(stage.KindIO, "create output: %v", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return stage.Errorf(stage.KindIO, "write output: %v", err)
	}

	log.Debug().Str("output", outputPath).Int64("size_bytes", n).Msg("Upscaled media downloaded")
	return nil
}
