// Package fetch issues the crawler's page requests: browser-like client
// identity, bounded timeout and bounded retry.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
)

// DefaultUserAgent is the desktop Chrome identity presented to the site.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher returns the body of a successful GET.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Policy    Policy
	Sleeper   Sleeper
	Logger    *slog.Logger
}

// Client is a retrying HTML fetcher.
type Client struct {
	http   *resty.Client
	policy Policy
	sleep  Sleeper
	log    *slog.Logger
}

// NewClient returns a Client ready to fetch pages.
func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 25 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	switch {
	case opts.Policy == (Policy{}):
		opts.Policy = DefaultPolicy(800 * time.Millisecond)
	case opts.Policy.Attempts <= 0:
		opts.Policy.Attempts = 1
	}
	if opts.Sleeper == nil {
		opts.Sleeper = WallClock
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	client := resty.New()
	client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	client.SetTimeout(opts.Timeout)
	client.SetLogger(restyLogger{opts.Logger})

	return &Client{
		http:   client,
		policy: opts.Policy,
		sleep:  opts.Sleeper,
		log:    opts.Logger,
	}
}

// Fetch GETs url, retrying according to the client's Policy.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		wait, retry := c.policy.Next(attempt, err)
		if !retry {
			c.log.Error("fetch failed", "url", url, "attempt", attempt+1, "err", err)
			return nil, err
		}
		c.log.Warn("fetch failed, retrying",
			"url", url, "attempt", attempt+1, "of", c.policy.Attempts, "wait", wait, "err", err)
		if err := c.sleep.Sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.IsError() {
		return nil, &StatusError{Code: resp.StatusCode(), URL: url}
	}
	return resp.Body(), nil
}

// restyLogger routes resty's internal messages into slog.
type restyLogger struct {
	l *slog.Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error(fmt.Sprintf(format, v...), "component", "resty")
}

func (r restyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn(fmt.Sprintf(format, v...), "component", "resty")
}

func (r restyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug(fmt.Sprintf(format, v...), "component", "resty")
}
