// Package storage fetches remote frames over HTTP(S) and from Azure Blob
// Storage.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/url"
	"strings"

	"github.com/ironsheep/edgefinder/internal/imaging"
)

type ImageFetcher interface {
	FetchImage(ctx context.Context, imageURL string) (image.Image, error)
}

// ErrTooLarge is returned when a response body exceeds the size limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// FetchError describes a failed fetch. StatusCode is zero for transport
// failures.
type FetchError struct {
	URL        string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("fetch %s: failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Router sends blob storage URLs to Azure and everything else to HTTP.
type Router struct {
	HTTP  ImageFetcher
	Azure ImageFetcher
}

func (r *Router) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{URL: imageURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if r.Azure != nil && isBlobHost(u.Host) {
		return r.Azure.FetchImage(ctx, imageURL)
	}
	if r.HTTP == nil {
		return nil, &FetchError{URL: imageURL, Err: errors.New("no HTTP fetcher configured")}
	}
	return r.HTTP.FetchImage(ctx, imageURL)
}

func isBlobHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), ".blob.core.windows.net")
}

// decodeLimited decodes an image from body, reading at most limit bytes.
// limit <= 0 disables the check.
func decodeLimited(body io.Reader, limit int64) (image.Image, error) {
	if limit > 0 {
		data, err := io.ReadAll(io.LimitReader(body, limit+1))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		if int64(len(data)) > limit {
			return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
		}
		return imaging.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(body)
}
