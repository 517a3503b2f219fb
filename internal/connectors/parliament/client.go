package parliament

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultMembersBaseURL serves the id-indexed member and constituency
	// lookups.
	DefaultMembersBaseURL = "https://members-api.parliament.uk/api"

	// DefaultQuestionsBaseURL serves the written-questions search.
	DefaultQuestionsBaseURL = "https://writtenquestions-api.parliament.uk/api"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries; it doubles per
	// attempt.
	RetryDelay = time.Second

	// DefaultRate is the proactive throttle in requests per second. The
	// Parliament APIs publish no quota headers, so the bucket is the only
	// guard against hammering them during a 5000-id sweep.
	DefaultRate = 5.0
)

// Options configures a Client. Zero values select the defaults above.
type Options struct {
	MembersBaseURL   string
	QuestionsBaseURL string
	Timeout          time.Duration
	MaxRetries       int
	RetryDelay       time.Duration
	RatePerSecond    float64
	// HTTPClient overrides the transport, used by tests.
	HTTPClient *http.Client
}

// Client wraps HTTP access to both Parliament APIs with throttling and
// retry. It is safe for concurrent use.
type Client struct {
	http          *http.Client
	membersBase   string
	questionsBase string
	maxRetries    int
	retryDelay    time.Duration
	limiter       *rate.Limiter
}

// NewClient creates a Parliament API client.
func NewClient(opts Options) *Client {
	if opts.MembersBaseURL == "" {
		opts.MembersBaseURL = DefaultMembersBaseURL
	}
	if opts.QuestionsBaseURL == "" {
		opts.QuestionsBaseURL = DefaultQuestionsBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = MaxRetries
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = RetryDelay
	}
	if opts.RatePerSecond == 0 {
		opts.RatePerSecond = DefaultRate
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		http:          httpClient,
		membersBase:   opts.MembersBaseURL,
		questionsBase: opts.QuestionsBaseURL,
		maxRetries:    opts.MaxRetries,
		retryDelay:    opts.RetryDelay,
		limiter:       rate.NewLimiter(rate.Limit(opts.RatePerSecond), 1),
	}
}

// getJSON performs one throttled GET with retry on transient failures and
// decodes the body into dst.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, dst any) error {
	full := rawURL
	if len(params) > 0 {
		full = rawURL + "?" + params.Encode()
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doOnce(ctx, full, dst)
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, fullURL string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{URL: fullURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, URL: fullURL}
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &FetchError{URL: fullURL, Err: fmt.Errorf("%w: %v", errMalformedBody, err)}
	}
	return nil
}
