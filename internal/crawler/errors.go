package crawler

import "errors"

// Fetch errors.
// A Crawler treats every one of them as a per-page failure: the page is
// skipped and the crawl continues.
var (
	// ErrUnexpectedStatus is returned when the server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrBodyTooLarge is returned when the response body exceeds the configured limit.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrUnsupportedEncoding is returned for a Content-Encoding we cannot decode.
	ErrUnsupportedEncoding = errors.New("unsupported content encoding")

	// ErrUnsupportedProxy is returned when the proxy URL scheme is not
	// http, https, socks5 or socks5h.
	ErrUnsupportedProxy = errors.New("unsupported proxy scheme")
)
