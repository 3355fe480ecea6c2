package crawler

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/proxy"
)

// Default fetcher settings.
const (
	// DefaultUserAgent identifies sitemapgen in HTTP requests.
	DefaultUserAgent = "sitemapgen/1.0 (+https://github.com/nao1215/sitemapgen)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// maxRedirects limits redirect chains.
	maxRedirects = 10
)

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	// Timeout is the overall timeout of one request, including reading the body.
	// Zero means DefaultFetchTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request. Empty means DefaultUserAgent.
	UserAgent string

	// Headers are added to every request.
	Headers map[string]string

	// Cookie is sent as the Cookie header when not empty.
	Cookie string

	// MaxBodySize is the largest accepted body in bytes. Zero means DefaultMaxBodySize.
	MaxBodySize int64

	// ProxyURL routes requests through a proxy.
	// Supported schemes: http, https, socks5, socks5h.
	// It is ignored when Transport is set.
	ProxyURL string

	// Transport is shared by fetchers that should reuse one connection
	// pool. Nil means a new transport built by NewTransport.
	Transport http.RoundTripper
}

// HTTPFetcher implements Fetcher over net/http.
type HTTPFetcher struct {
	client      *http.Client
	userAgent   string
	headers     map[string]string
	cookie      string
	maxBodySize int64
}

// NewHTTPFetcher creates an HTTPFetcher from opts.
// It returns an error only if the proxy configuration is invalid.
func NewHTTPFetcher(opts FetcherOptions) (*HTTPFetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultFetchTimeout
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = DefaultMaxBodySize
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	transport := opts.Transport
	if transport == nil {
		t, err := NewTransport(opts.ProxyURL)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	headers := make(map[string]string, len(opts.Headers))
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		userAgent:   opts.UserAgent,
		headers:     headers,
		cookie:      opts.Cookie,
		maxBodySize: opts.MaxBodySize,
	}, nil
}

// NewTransport returns the transport used by HTTPFetcher, routed through
// proxyURL when it is not empty. Callers that create many fetchers should
// share one transport and call CloseIdleConnections on it when done.
func NewTransport(proxyURL string) (*http.Transport, error) {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		// We decode gzip, deflate and br ourselves.
		DisableCompression: true,
	}

	if strings.TrimSpace(proxyURL) != "" {
		if err := configureProxy(transport, proxyURL); err != nil {
			return nil, err
		}
	}
	return transport, nil
}

// configureProxy points transport at the proxy described by rawURL.
func configureProxy(transport *http.Transport, rawURL string) error {
	proxyURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(proxyURL)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedProxy, proxyURL.Scheme)
	}
	return nil
}

// Fetch performs a GET request for pageURL.
// Non-2xx responses, unreadable bodies and bodies larger than the limit are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	if f.cookie != "" {
		req.Header.Set("Cookie", f.cookie)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	return &Response{
		URL:        pageURL,
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
	}, nil
}

// readBody decodes the response body according to Content-Encoding and
// enforces the size limit on the decoded bytes.
func (f *HTTPFetcher) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	encoding := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding")))
	switch encoding {
	case "", "identity":
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer fl.Close()
		reader = fl
	case "br":
		reader = brotli.NewReader(resp.Body)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}

	body, err := io.ReadAll(io.LimitReader(reader, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, f.maxBodySize)
	}
	return body, nil
}
