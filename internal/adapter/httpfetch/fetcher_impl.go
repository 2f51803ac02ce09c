package httpfetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"github.com/user/banner-resolver/internal/repository"
)

// Fetcher retrieves server-rendered pages over plain HTTP.
type Fetcher struct {
	client *resty.Client
	logger *zap.Logger
}

// NewFetcher creates a PageFetcher sending userAgent on every request.
func NewFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) repository.PageFetcher {
	client := resty.New()
	client.SetHeader("User-Agent", userAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetTimeout(timeout)
	return &Fetcher{client: client, logger: logger.Named("fetcher")}
}

// Fetch returns the page body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := f.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("fetch %s unexpected status code: %d", url, resp.StatusCode())
	}

	body := resp.Body()
	contentType := resp.Header().Get("Content-Type")
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	f.logger.Debug("page fetched",
		zap.String("url", url),
		zap.Int("bytes", len(body)),
		zap.String("charset", name),
		zap.Duration("elapsed", resp.Time()))

	if name == "utf-8" {
		return string(body), nil
	}
	decoded, err := io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
	if err != nil {
		return "", fmt.Errorf("failed to decode %s body: %w", name, err)
	}
	return string(decoded), nil
}
