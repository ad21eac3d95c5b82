// Package openai uploads audio to the OpenAI speech-to-text endpoint
// and returns plain transcript text.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultBaseURL         = "https://api.openai.com/v1"
	defaultHTTPTimeout     = 10 * time.Minute
	defaultRetryInitial    = 1 * time.Second
	defaultRetryMaxElapsed = 2 * time.Minute
)

// Config captures the runtime settings required to talk to the
// transcription API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the audio transcription API.
type Client struct {
	cfg        Config
	httpClient *http.Client

	retryInitial    time.Duration
	retryMaxElapsed time.Duration
}

// Option customizes the client.
type Option func(*Client)

// WithRetryBackoff overrides the retry pacing (useful for tests).
func WithRetryBackoff(initial, maxElapsed time.Duration) Option {
	return func(c *Client) {
		if initial > 0 {
			c.retryInitial = initial
		}
		if maxElapsed > 0 {
			c.retryMaxElapsed = maxElapsed
		}
	}
}

// NewClient constructs a transcription client using the supplied
// configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:      &http.Client{Timeout: timeout},
		retryInitial:    defaultRetryInitial,
		retryMaxElapsed: defaultRetryMaxElapsed,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("transcription request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads the audio file and returns the transcript text.
// A non-empty language biases recognition toward that language; empty
// requests automatic detection. Rate limits, server errors, and
// transport failures are retried with exponential backoff until the
// retry window closes.
func (c *Client) Transcribe(ctx context.Context, audioPath, language string) (string, error) {
	if strings.TrimSpace(audioPath) == "" {
		return "", errors.New("transcribe: audio path required")
	}
	if c.cfg.APIKey == "" {
		return "", errors.New("transcribe: api key required")
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio", "transcriptions")
	if err != nil {
		return "", fmt.Errorf("transcribe: build url: %w", err)
	}

	var text string
	op := func() error {
		result, err := c.uploadOnce(ctx, endpoint, audioPath, language)
		if err != nil {
			return retryDecision(err)
		}
		text = result
		return nil
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryInitial
	bo.MaxElapsedTime = c.retryMaxElapsed
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		return "", fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}
	return text, nil
}

// retryDecision separates transient failures from those that will fail
// the same way on every attempt. Rate limiting, request timeouts,
// server errors, and transport failures are worth retrying; everything
// else is permanent.
func retryDecision(err error) error {
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return err
	}
	return backoff.Permanent(err)
}

// uploadOnce performs a single multipart upload attempt. The file is
// reopened per attempt so retries never resend a half-consumed body.
func (c *Client) uploadOnce(ctx context.Context, endpoint, audioPath, language string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", c.cfg.Model); err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", fmt.Errorf("encode form: %w", err)
		}
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("read audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(payload)}
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	text := strings.TrimSpace(parsed.Text)
	if text == "" {
		return "", errors.New("transcription response contained no text")
	}
	return text, nil
}
