package fetcher

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"municipal-updates/internal/config"
	"municipal-updates/internal/observability"
)

type Fetcher struct {
	client      *http.Client
	cfg         *config.Config
	logger      *observability.Logger
	rateLimiter *RateLimiter
}

type FetchResponse struct {
	StatusCode int
	Body       []byte
	URL        string
	Headers    http.Header
}

func NewFetcher(cfg *config.Config, logger *observability.Logger) *Fetcher {
	client := &http.Client{
		Timeout: cfg.GetTotalTimeout(),
		Transport: &http.Transport{
			MaxIdleConns:        cfg.HTTP.MaxIdleConnections,
			MaxIdleConnsPerHost: cfg.HTTP.MaxIdleConnectionsPerHost,
			IdleConnTimeout:     cfg.GetIdleConnectionTimeout(),
		},
	}

	return &Fetcher{
		client:      client,
		cfg:         cfg,
		logger:      logger,
		rateLimiter: NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	}
}

func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (*FetchResponse, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme: %q", urlStr)
	}

	host := parsedURL.Host

	// Повторы только на уровне транспорта (5xx/429), по умолчанию max_retries = 0.
	// Каждый запрос, включая повтор, берёт токен у лимитера хоста.
	var lastErr error
	for attempt := 0; attempt <= f.cfg.HTTP.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.calculateBackoff(attempt)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := f.rateLimiter.Wait(ctx, host); err != nil {
			return nil, fmt.Errorf("rate limit error: %w", err)
		}

		resp, err := f.fetchOnce(ctx, urlStr)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
			if attempt < f.cfg.HTTP.MaxRetries {
				continue
			}
		}

		return resp, nil
	}

	return nil, fmt.Errorf("fetch failed after %d retries: %w", f.cfg.HTTP.MaxRetries, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, urlStr string) (*FetchResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.GetConnectTimeout()+f.cfg.GetTotalTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", f.cfg.HTTP.UserAgent)
	req.Header.Set("Accept-Language", f.cfg.HTTP.AcceptLanguage)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			f.logger.Warn("Failed to close response body", "error", err.Error())
		}
	}()

	reader := resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer func() { _ = gzipReader.Close() }()
		reader = gzipReader
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Response received",
		"url", urlStr,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
		"content_encoding", resp.Header.Get("Content-Encoding"),
		"body_bytes", len(body),
	)

	return &FetchResponse{
		StatusCode: resp.StatusCode,
		Body:       body,
		URL:        resp.Request.URL.String(),
		Headers:    resp.Header,
	}, nil
}

func (f *Fetcher) calculateBackoff(attempt int) time.Duration {
	minMS := f.cfg.Backoff.MinMS
	maxMS := f.cfg.Backoff.MaxMS
	jitterPct := f.cfg.Backoff.JitterPct

	// Exponential backoff: min * 2^(attempt-1)
	exponential := minMS * (1 << uint(attempt-1))
	if exponential > maxMS {
		exponential = maxMS
	}

	// Apply jitter: ±jitterPct%
	jitterRange := float64(exponential) * float64(jitterPct) / 100
	jitter := (rand.Float64() - 0.5) * 2 * jitterRange
	finalMS := float64(exponential) + jitter

	if finalMS < float64(minMS) {
		finalMS = float64(minMS)
	}

	return time.Duration(math.Max(finalMS, 0)) * time.Millisecond
}
