package storage

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"time"
)

const maxAttempts = 3

// HTTPFetcher implements ImageFetcher over HTTP(S). Server errors and
// transport failures are retried up to three attempts in total; client
// errors are not.
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64

	// backoff returns the pause before retry number attempt (1-based).
	backoff func(attempt int) time.Duration
}

// NewHTTPFetcher creates a fetcher whose requests time out after timeout
// and whose bodies may not exceed maxBytes (<= 0 for no limit).
func NewHTTPFetcher(timeout time.Duration, maxBytes int64) *HTTPFetcher {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

func (h *HTTPFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	var lastErr error
	status := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(h.backoff(attempt - 1)):
			case <-ctx.Done():
				return nil, &FetchError{URL: imageURL, StatusCode: status, Attempts: attempt - 1, Err: ctx.Err()}
			}
		}

		img, code, retry, err := h.fetchOnce(ctx, imageURL)
		if err == nil {
			return img, nil
		}
		lastErr, status = err, code
		if !retry {
			return nil, &FetchError{URL: imageURL, StatusCode: status, Attempts: attempt, Err: err}
		}
	}

	return nil, &FetchError{URL: imageURL, StatusCode: status, Attempts: maxAttempts, Err: lastErr}
}

// fetchOnce performs one GET. retry reports whether a failure is transient.
func (h *HTTPFetcher) fetchOnce(ctx context.Context, imageURL string) (img image.Image, status int, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, 0, false, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/png, image/jpeg, image/tiff, image/bmp, image/gif, */*")
	req.Header.Set("User-Agent", "edgefinder/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		// A cancelled or expired context will not recover on retry.
		return nil, 0, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, resp.StatusCode, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, resp.StatusCode, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, resp.StatusCode, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	img, err = decodeLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, resp.StatusCode, false, err
	}
	return img, resp.StatusCode, false, nil
}
