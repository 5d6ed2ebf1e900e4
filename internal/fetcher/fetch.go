package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Options controls how a playlist is downloaded and parsed.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// UseTvgID prefers tvg-id over the trailing display name when tvg-name is absent.
	UseTvgID bool
}

// FetchM3U downloads the playlist at url and parses it.
func FetchM3U(ctx context.Context, url string, opts Options) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}
	client := &http.Client{Timeout: opts.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}
	return ParseM3U(resp.Body, opts.UseTvgID)
}

// ReadM3U parses the playlist file at path.
func ReadM3U(path string, useTvgID bool) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open playlist: %w", err)
	}
	defer f.Close()
	return ParseM3U(f, useTvgID)
}
