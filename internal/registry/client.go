// Package registry fetches package metadata from a PyPI-compatible JSON API.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenk/backoff"
	"github.com/rs/dnscache"
	circuit "github.com/rubyist/circuitbreaker"
)

const (
	DefaultURL       = "https://pypi.org"
	DefaultTimeout   = 5 * time.Second
	DefaultUserAgent = "pgm"

	// tripThreshold consecutive failures open a host's breaker.
	tripThreshold = 5
)

// Info is the subset of a release's "info" block the license notices use.
type Info struct {
	Name              string            `json:"name"`
	Version           string            `json:"version"`
	Author            string            `json:"author"`
	AuthorEmail       string            `json:"author_email"`
	HomePage          string            `json:"home_page"`
	License           string            `json:"license"`
	LicenseExpression string            `json:"license_expression"`
	ProjectURL        string            `json:"project_url"`
	Classifiers       []string          `json:"classifiers"`
	ProjectURLs       map[string]string `json:"project_urls"`
}

type packageResponse struct {
	Info Info `json:"info"`
}

// Fetcher fetches package metadata.
type Fetcher interface {
	Package(ctx context.Context, name, version string) (*Info, error)
}

// Client talks to the index JSON API with per-host circuit breakers.
type Client struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client

	mu       sync.Mutex
	breakers map[string]*circuit.Breaker
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// New creates a Client for the index at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
		breakers:  make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Transport: newTransport()}
	}
	return c
}

var (
	resolverOnce sync.Once
	resolver     *dnscache.Resolver
)

func sharedResolver() *dnscache.Resolver {
	resolverOnce.Do(func() {
		resolver = &dnscache.Resolver{}
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				resolver.Refresh(true)
			}
		}()
	})
	return resolver
}

// newTransport dials through the shared DNS cache.
func newTransport() *http.Transport {
	r := sharedResolver()
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			ips, err := r.LookupHost(ctx, host)
			if err != nil {
				return nil, err
			}
			var lastErr error
			for _, ip := range ips {
				conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
				lastErr = err
			}
			if lastErr == nil {
				lastErr = fmt.Errorf("no addresses for %s", host)
			}
			return nil, fmt.Errorf("failed to dial any resolved IP: %w", lastErr)
		},
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
}

// PackageURL returns the JSON API URL for name, qualified by version
// unless version is empty.
func (c *Client) PackageURL(name, version string) string {
	if version == "" {
		return fmt.Sprintf("%s/pypi/%s/json", c.baseURL, url.PathEscape(name))
	}
	return fmt.Sprintf("%s/pypi/%s/%s/json", c.baseURL, url.PathEscape(name), url.PathEscape(version))
}

// Package fetches the info block of name at version (latest when version
// is empty).
func (c *Client) Package(ctx context.Context, name, version string) (*Info, error) {
	fetchURL := c.PackageURL(name, version)
	breaker := c.breaker(fetchURL)

	if !breaker.Ready() {
		return nil, fmt.Errorf("circuit breaker open for %s: %w", hostOf(fetchURL), ErrUpstreamDown)
	}

	var info *Info
	var notFound error
	err := breaker.Call(func() error {
		var fetchErr error
		info, fetchErr = c.fetch(ctx, fetchURL)
		if httpErr, ok := fetchErr.(*HTTPError); ok && httpErr.IsNotFound() {
			// 404s do not count against the breaker
			notFound = fetchErr
			return nil
		}
		return fetchErr
	}, 0)
	if err != nil {
		return nil, err
	}
	if notFound != nil {
		return nil, notFound
	}
	return info, nil
}

func (c *Client) fetch(ctx context.Context, fetchURL string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: fetchURL}
	}

	var payload packageResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", fetchURL, err)
	}
	return &payload.Info, nil
}

// breaker returns or creates the circuit breaker for the URL's host.
func (c *Client) breaker(rawURL string) *circuit.Breaker {
	host := hostOf(rawURL)

	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.breakers[host]; ok {
		return b
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	b := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(tripThreshold),
	})
	c.breakers[host] = b
	return b
}

// BreakerState reports "open" or "closed" per host.
func (c *Client) BreakerState() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	states := make(map[string]string, len(c.breakers))
	for host, b := range c.breakers {
		if b.Tripped() {
			states[host] = "open"
		} else {
			states[host] = "closed"
		}
	}
	return states
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return rawURL
	}
	return parsed.Host
}
