package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout    = 60 * time.Second
	maxRateLimitWaits = 3
	initialBackoff    = 2 * time.Second
)

// ClientConfig describes one upstream API: where it lives, how it is
// authenticated, and how hard it may be hit.
type ClientConfig struct {
	// Source names the upstream in errors and logs ("Congress.gov").
	Source string

	BaseURL string

	// APIKey is attached per KeyQueryParam/KeyHeader/BearerAuth; all
	// three may be empty for keyless APIs.
	APIKey        string
	KeyQueryParam string
	KeyHeader     string
	BearerAuth    bool

	// CallsPerWindow requests are allowed per Window, with burst up to
	// the full window allowance.
	CallsPerWindow int
	Window         time.Duration
}

// Client issues rate-limited GET requests against one upstream API.
// When the local token bucket is exhausted the caller blocks until a
// token frees up; that is backpressure, not an error. An upstream 429
// is classified as RateLimitExceededError and retried after a cooldown;
// any other failure is a TransientFetchError for the scrape loop to
// handle. A Client is owned by exactly one scraper instance and must
// not be shared across concurrent invocations of the same source.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	backoff time.Duration
}

// NewClient creates a client for one upstream API.
func NewClient(cfg ClientConfig) *Client {
	perSecond := float64(cfg.CallsPerWindow) / cfg.Window.Seconds()
	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: defaultTimeout},
		limiter: rate.NewLimiter(rate.Limit(perSecond), cfg.CallsPerWindow),
		backoff: initialBackoff,
	}
}

// GetJSON performs a throttled GET of baseURL/path with the given query
// parameters and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL, err := c.buildURL(path, params)
	if err != nil {
		return fmt.Errorf("failed to build request URL: %w", err)
	}

	backoff := c.backoff

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		body, rateErr, err := c.doRequest(ctx, reqURL)
		if err != nil {
			return err
		}
		if rateErr != nil {
			// Upstream-side limit hit despite local throttling. Sleep
			// out the cooldown and retry rather than failing.
			if attempt+1 >= maxRateLimitWaits {
				return rateErr
			}
			wait := rateErr.RetryAfter
			if wait <= 0 {
				wait = backoff
				backoff *= 2
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if err := json.Unmarshal(body, out); err != nil {
			return &TransientFetchError{
				Source: c.cfg.Source,
				URL:    reqURL,
				Err:    fmt.Errorf("failed to parse response: %w", err),
			}
		}
		return nil
	}
}

// doRequest performs a single GET. A 429 comes back as the middle
// return value so the caller can apply the sleep-and-retry policy.
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, *RateLimitExceededError, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.cfg.APIKey != "" {
		if c.cfg.KeyHeader != "" {
			req.Header.Set(c.cfg.KeyHeader, c.cfg.APIKey)
		}
		if c.cfg.BearerAuth {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, &TransientFetchError{Source: c.cfg.Source, URL: reqURL, Err: err}
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, nil, &TransientFetchError{Source: c.cfg.Source, URL: reqURL, Err: err}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitExceededError{
			Source:     c.cfg.Source,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, &TransientFetchError{Source: c.cfg.Source, URL: reqURL, Status: resp.StatusCode}
	}

	return body, nil, nil
}

func (c *Client) buildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(c.cfg.BaseURL, "/") + "/" + strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}

	q := u.Query()
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	if c.cfg.APIKey != "" && c.cfg.KeyQueryParam != "" {
		q.Set(c.cfg.KeyQueryParam, c.cfg.APIKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
