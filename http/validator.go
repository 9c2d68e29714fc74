package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fwojciec/linkmeta"
)

// DefaultValidateTimeout bounds each image check.
const DefaultValidateTimeout = 6 * time.Second

// maxCheckBytes caps how much of an image the GET fallback reads.
const maxCheckBytes = 64 << 10

// Ensure ImageValidator implements linkmeta.ImageValidator at compile time.
var _ linkmeta.ImageValidator = (*ImageValidator)(nil)

// ImageValidator checks that an image URL is reachable and serves an image.
// It checks with HEAD and retries once with a bounded GET when HEAD fails.
type ImageValidator struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// ValidatorOption configures an ImageValidator.
type ValidatorOption func(*ImageValidator)

// WithValidateTimeout sets the per-check timeout.
// Defaults to DefaultValidateTimeout (6s) if not specified.
func WithValidateTimeout(d time.Duration) ValidatorOption {
	return func(v *ImageValidator) {
		v.timeout = d
	}
}

// NewImageValidator creates a new ImageValidator.
func NewImageValidator(opts ...ValidatorOption) *ImageValidator {
	v := &ImageValidator{
		timeout:   DefaultValidateTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.client = &http.Client{Timeout: v.timeout}
	return v
}

// errNotImage marks a HEAD answer that is definitely not an image.
var errNotImage = errors.New("not an image")

// ValidateImage returns nil when the URL answers HEAD with a 2xx/3xx status
// and an image content type (or none at all). If HEAD errors or answers with
// a bad status, a bounded GET is tried and accepted on a 2xx/3xx status with
// a non-empty body. A HEAD answer with a non-image content type is final.
func (v *ImageValidator) ValidateImage(ctx context.Context, rawURL string) error {
	if err := checkURL(rawURL); err != nil {
		return err
	}

	headErr := v.head(ctx, rawURL)
	if headErr == nil {
		return nil
	}
	if errors.Is(headErr, errNotImage) {
		return headErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := v.get(ctx, rawURL); err != nil {
		return fmt.Errorf("head: %v; get: %w", headErr, err)
	}
	return nil
}

func (v *ImageValidator) head(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return err
	}
	v.setHeaders(req)

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !acceptableStatus(resp.StatusCode) {
		return &linkmeta.StatusError{Code: resp.StatusCode, URL: rawURL}
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(strings.ToLower(ct), "image/") {
		return fmt.Errorf("%w: content type %q", errNotImage, ct)
	}
	return nil
}

func (v *ImageValidator) get(ctx context.Context, rawURL string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	v.setHeaders(req)
	req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", maxCheckBytes-1))

	resp, err := v.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !acceptableStatus(resp.StatusCode) {
		return &linkmeta.StatusError{Code: resp.StatusCode, URL: rawURL}
	}

	n, err := io.Copy(io.Discard, io.LimitReader(resp.Body, maxCheckBytes))
	if err != nil && n == 0 {
		return err
	}
	if n == 0 {
		return linkmeta.ErrEmptyPayload
	}
	return nil
}

func (v *ImageValidator) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", v.userAgent)
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
}

func acceptableStatus(code int) bool {
	return code >= 200 && code < 400
}
