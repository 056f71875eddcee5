package scrape

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"
)

// Statuses the fetcher retries on, matching transient upstream failures.
var retryableStatus = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
	http.StatusRequestTimeout:      true,
	http.StatusTooManyRequests:     true,
}

// FetcherOptions configures the fetch gateway.
type FetcherOptions struct {
	// Timeout bounds one HTTP attempt (default 30s).
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
	// MaxContentSize caps the response body in bytes (default 10MB).
	MaxContentSize int64
	// Retries is the number of additional attempts on retryable statuses
	// or transport errors (default 3).
	Retries int
	// RetryBackoff is the base delay between attempts, doubled per retry
	// (default 1s).
	RetryBackoff time.Duration
	// CacheTTL keeps successful responses in memory for re-fetches of the
	// same URL. Zero disables caching.
	CacheTTL time.Duration
}

func (o FetcherOptions) withDefaults() FetcherOptions {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.UserAgent == "" {
		o.UserAgent = "sawari-assembler/1.0"
	}
	if o.MaxContentSize <= 0 {
		o.MaxContentSize = 10 * 1024 * 1024
	}
	if o.Retries < 0 {
		o.Retries = 0
	} else if o.Retries == 0 {
		o.Retries = 3
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = time.Second
	}
	return o
}

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// Fetcher fetches web content with security checks, bounded retry and an
// in-memory TTL cache. It implements assembly.Gateway.
type Fetcher struct {
	client         *http.Client
	userAgent      string
	maxContentSize int64
	retries        int
	retryBackoff   time.Duration

	cacheTTL time.Duration
	cacheMu  sync.RWMutex
	cache    map[string]cacheEntry
}

// NewFetcher creates a new web fetcher.
func NewFetcher(opts FetcherOptions) *Fetcher {
	opts = opts.withDefaults()

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	// Custom DialContext that validates resolved IPs to prevent DNS
	// rebinding attacks.
	safeDialContext := func(ctx context.Context, network, addr string) (net.Conn, error) {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid address: %w", err)
		}

		ips, err := net.DefaultResolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, fmt.Errorf("DNS lookup failed: %w", err)
		}

		for _, ipAddr := range ips {
			if IsPrivateIP(ipAddr.IP) {
				return nil, fmt.Errorf("connection to private IP %s is not allowed", ipAddr.IP)
			}
		}

		for _, ipAddr := range ips {
			connAddr := net.JoinHostPort(ipAddr.IP.String(), port)
			conn, err := dialer.DialContext(ctx, network, connAddr)
			if err == nil {
				return conn, nil
			}
		}

		return nil, fmt.Errorf("failed to connect to any resolved IP")
	}

	transport := &http.Transport{
		DialContext:           safeDialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Fetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (max 5)")
				}
				if err := ValidateURL(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
		},
		userAgent:      opts.UserAgent,
		maxContentSize: opts.MaxContentSize,
		retries:        opts.Retries,
		retryBackoff:   opts.RetryBackoff,
		cacheTTL:       opts.CacheTTL,
		cache:          make(map[string]cacheEntry),
	}
}

// Fetch retrieves content from the given URL. The outcome is terminal for
// the caller; retry on transient failures happens internally.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if err := ValidateURL(urlStr); err != nil {
		return nil, err
	}

	if body, ok := f.cached(urlStr); ok {
		return body, nil
	}

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			backoff := f.retryBackoff << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := f.attempt(ctx, urlStr)
		if err == nil {
			f.store(urlStr, body)
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// attempt performs one HTTP request. The second return reports whether the
// failure is worth retrying.
func (f *Fetcher) attempt(ctx context.Context, urlStr string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		return nil, retryableStatus[resp.StatusCode], err
	}

	limitReader := io.LimitReader(resp.Body, f.maxContentSize+1)
	body, err := io.ReadAll(limitReader)
	if err != nil {
		return nil, true, fmt.Errorf("read body: %w", err)
	}

	if int64(len(body)) > f.maxContentSize {
		return nil, false, fmt.Errorf("content too large (exceeds %d bytes)", f.maxContentSize)
	}

	return body, false, nil
}

func (f *Fetcher) cached(urlStr string) ([]byte, bool) {
	if f.cacheTTL <= 0 {
		return nil, false
	}
	f.cacheMu.RLock()
	entry, ok := f.cache[urlStr]
	f.cacheMu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (f *Fetcher) store(urlStr string, body []byte) {
	if f.cacheTTL <= 0 {
		return
	}
	f.cacheMu.Lock()
	f.cache[urlStr] = cacheEntry{body: body, expires: time.Now().Add(f.cacheTTL)}
	f.cacheMu.Unlock()
}
