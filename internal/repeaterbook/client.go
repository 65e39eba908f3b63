// Package repeaterbook implements the repeater directory client. It talks to
// the RepeaterBook export API, which serves full per-country (or per-US-state)
// listings rather than geographic queries; geographic zone queries run
// against the local datastore populated from these exports.
package repeaterbook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ogdrb/ogdrb/internal/errors"
	"github.com/ogdrb/ogdrb/internal/logging"
	"github.com/ogdrb/ogdrb/internal/observability/metrics"
)

// Package-level logger specific to the repeaterbook service
var (
	logger          *slog.Logger
	serviceLevelVar = new(slog.LevelVar)
	closeLogger     func() error
)

func init() {
	var err error
	logFilePath := filepath.Join("logs", "repeaterbook.log")
	serviceLevelVar.Set(slog.LevelDebug)

	logger, closeLogger, err = logging.NewFileLogger(logFilePath, "repeaterbook", serviceLevelVar)
	if err != nil {
		log.Printf("FATAL: Failed to initialize repeaterbook file logger at %s: %v. Service logging disabled.", logFilePath, err)
		fbHandler := slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: serviceLevelVar})
		logger = slog.New(fbHandler).With("service", "repeaterbook")
		closeLogger = func() error { return nil }
	}
}

// Config holds the directory client settings.
type Config struct {
	BaseURL string
	// AppName and AppEmail identify the application to the directory via
	// the User-Agent header, per the export API's usage policy.
	AppName  string
	AppEmail string
	Timeout  time.Duration
	CacheTTL time.Duration
	// RequestsPerMinute caps the request rate against the export API.
	RequestsPerMinute int
	// MaxConcurrent bounds parallel export downloads.
	MaxConcurrent int
}

// DefaultConfig returns the client defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://www.repeaterbook.com/api",
		Timeout:           60 * time.Second,
		CacheTTL:          6 * time.Hour,
		RequestsPerMinute: 10,
		MaxConcurrent:     4,
	}
}

// Client downloads directory exports with rate limiting, caching and retry.
type Client struct {
	config     Config
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *rate.Limiter

	mu      sync.Mutex
	metrics *metrics.RepeaterBookMetrics
}

// NewClient creates a new directory export client.
func NewClient(config Config) (*Client, error) {
	if config.AppName == "" || config.AppEmail == "" {
		return nil, errors.Newf("directory client requires an application name and contact email").
			Category(errors.CategoryConfiguration).
			Component("repeaterbook").
			Build()
	}

	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = defaults.CacheTTL
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = defaults.RequestsPerMinute
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = defaults.MaxConcurrent
	}

	client := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:   cache.New(config.CacheTTL, config.CacheTTL*2),
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(config.RequestsPerMinute)), 1),
	}

	logger.Info("directory client initialized",
		"base_url", config.BaseURL,
		"cache_ttl", config.CacheTTL,
		"requests_per_minute", config.RequestsPerMinute,
		"max_concurrent", config.MaxConcurrent)

	return client, nil
}

// SetMetrics attaches prometheus collectors to the client. Safe to skip;
// the client is fully functional without metrics.
func (c *Client) SetMetrics(m *metrics.RepeaterBookMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics = m
}

func (c *Client) getMetrics() *metrics.RepeaterBookMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.metrics
}

// Close cleans up client resources.
func (c *Client) Close() {
	logger.Info("closing directory client")
	if closeLogger != nil {
		if err := closeLogger(); err != nil {
			log.Printf("Error closing repeaterbook logger: %v", err)
		}
	}
}

// North American exports live on export.php; the rest of the world is
// served by exportROW.php.
var northAmerica = map[string]bool{
	"United States": true,
	"Canada":        true,
	"Mexico":        true,
}

func (c *Client) exportURL(req exportRequest) string {
	endpoint := "exportROW.php"
	if northAmerica[req.Country.Name] {
		endpoint = "export.php"
	}

	params := url.Values{}
	params.Set("country", req.Country.Name)
	if req.StateID != "" {
		params.Set("state_id", req.StateID)
	}

	return fmt.Sprintf("%s/%s?%s", c.config.BaseURL, endpoint, params.Encode())
}

// export downloads one country/state export, serving repeated calls from
// the cache for the configured TTL.
func (c *Client) export(ctx context.Context, req exportRequest) ([]Repeater, error) {
	cacheKey := fmt.Sprintf("export:%s:%s", req.Country.Alpha2, req.StateID)

	if cached, found := c.cache.Get(cacheKey); found {
		if repeaters, ok := cached.([]Repeater); ok {
			if m := c.getMetrics(); m != nil {
				m.RecordCacheHit()
			}
			logger.Debug("export cache hit", "cache_key", cacheKey, "records", len(repeaters))
			return repeaters, nil
		}
	}
	if m := c.getMetrics(); m != nil {
		m.RecordCacheMiss()
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var response exportResponse
	if err := c.doRequestWithRetry(reqCtx, c.exportURL(req), &response); err != nil {
		return nil, err
	}

	repeaters := make([]Repeater, 0, len(response.Results))
	dropped := 0
	for i := range response.Results {
		r, ok := response.Results[i].repeater()
		if !ok {
			dropped++
			continue
		}
		repeaters = append(repeaters, r)
	}
	if dropped > 0 {
		logger.Warn("export contained unparseable records",
			"country", req.Country.Name,
			"state_id", req.StateID,
			"dropped", dropped)
	}

	c.cache.Set(cacheKey, repeaters, cache.DefaultExpiration)

	logger.Info("directory export downloaded",
		"country", req.Country.Name,
		"state_id", req.StateID,
		"records", len(repeaters))

	return repeaters, nil
}

// ExportAll downloads every export the filter covers, in parallel, and
// merges the batches into one list deduplicated by directory key. Order is
// deterministic: requests in filter order, records in listing order.
func (c *Client) ExportAll(ctx context.Context, filter ExportFilter) ([]Repeater, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	requests := filter.requests()
	batches := make([][]Repeater, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrent)
	for i, req := range requests {
		g.Go(func() error {
			batch, err := c.export(gctx, req)
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[Key]bool)
	var merged []Repeater
	for _, batch := range batches {
		for i := range batch {
			key := batch[i].Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, batch[i])
		}
	}

	logger.Info("directory exports merged",
		"requests", len(requests),
		"unique_records", len(merged))

	return merged, nil
}

// doRequest performs one rate-limited export API request.
func (c *Client) doRequest(ctx context.Context, requestURL string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err).
			Category(errors.CategoryCancellation).
			Component("repeaterbook").
			Build()
	}

	start := time.Now()
	if m := c.getMetrics(); m != nil {
		m.RecordRequest()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, http.NoBody)
	if err != nil {
		return errors.Newf("failed to create HTTP request: %w", err).
			Category(errors.CategoryNetwork).
			Context("url", requestURL).
			Component("repeaterbook").
			Build()
	}

	req.Header.Set("User-Agent", fmt.Sprintf("%s (%s)", c.config.AppName, c.config.AppEmail))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if m := c.getMetrics(); m != nil {
			m.RecordError()
		}
		logger.Error("directory request failed", "error", err, "url", requestURL)
		return errors.Newf("directory request failed: %w", err).
			Category(errors.CategoryDirectory).
			NetworkContext(requestURL, c.config.Timeout).
			Component("repeaterbook").
			Build()
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Newf("failed to read directory response: %w", err).
			Category(errors.CategoryDirectory).
			Context("url", requestURL).
			Context("status_code", resp.StatusCode).
			Component("repeaterbook").
			Build()
	}

	if resp.StatusCode != http.StatusOK {
		if m := c.getMetrics(); m != nil {
			m.RecordError()
		}
		logger.Warn("directory error response",
			"status_code", resp.StatusCode,
			"url", requestURL)
		return errors.Newf("directory returned status %d", resp.StatusCode).
			Category(categoryForStatus(resp.StatusCode)).
			Context("status_code", resp.StatusCode).
			Context("url", requestURL).
			Component("repeaterbook").
			Build()
	}

	if err := json.Unmarshal(bodyBytes, result); err != nil {
		preview := string(bodyBytes)
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		logger.Error("failed to parse directory response",
			"error", err,
			"url", requestURL,
			"response_preview", preview)
		return errors.Newf("failed to parse directory response: %w", err).
			Category(errors.CategoryFileParsing).
			Context("url", requestURL).
			Context("response_size", len(bodyBytes)).
			Component("repeaterbook").
			Build()
	}

	duration := time.Since(start)
	if m := c.getMetrics(); m != nil {
		m.RecordDuration(duration)
	}
	logger.Debug("directory request successful",
		"url", requestURL,
		"duration_ms", duration.Milliseconds(),
		"response_size", len(bodyBytes))

	return nil
}

// doRequestWithRetry wraps doRequest with backoff for transient failures.
func (c *Client) doRequestWithRetry(ctx context.Context, requestURL string, result any) error {
	const maxRetries = 3
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := c.doRequest(ctx, requestURL, result)
		if err == nil {
			return nil
		}

		var enhancedErr *errors.EnhancedError
		if errors.As(err, &enhancedErr) {
			// Config/validation/parse failures won't improve on retry.
			switch enhancedErr.Category {
			case errors.CategoryConfiguration, errors.CategoryValidation,
				errors.CategoryNotFound, errors.CategoryFileParsing,
				errors.CategoryCancellation:
				return err
			}
			if statusCode, ok := enhancedErr.Context["status_code"].(int); ok {
				if statusCode >= 400 && statusCode < 500 && statusCode != http.StatusTooManyRequests {
					return err
				}
			}
		}

		lastErr = err
		if ctx.Err() != nil {
			return lastErr
		}

		if attempt < maxRetries-1 {
			delay := time.Duration(attempt+1) * 500 * time.Millisecond
			logger.Warn("directory request failed, retrying",
				"attempt", attempt+1,
				"max_retries", maxRetries,
				"delay_ms", delay.Milliseconds(),
				"url", requestURL,
				"error", err.Error())

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// ClearCache drops all cached exports.
func (c *Client) ClearCache() {
	c.cache.Flush()
	logger.Info("directory export cache cleared")
}

// CachedExports returns the cache keys currently held, sorted. Used by the
// CLI to report what a run reused.
func (c *Client) CachedExports() []string {
	items := c.cache.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func categoryForStatus(statusCode int) errors.ErrorCategory {
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.CategoryConfiguration
	case http.StatusTooManyRequests:
		return errors.CategoryLimit
	case http.StatusNotFound:
		return errors.CategoryNotFound
	default:
		return errors.CategoryDirectory
	}
}
