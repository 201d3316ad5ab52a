// ABOUTME: Guarded HTTP GET for open-data catalogues, venue feeds and weather
// ABOUTME: Blocks private address ranges and caps response size

package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"time"
)

const MaxResponseSize = 10 * 1024 * 1024 // 10MB

// UserAgent is sent with every request.
const UserAgent = "gachi/1.0 (+schedule helper)"

// ErrPrivateAddress is returned when a host resolves to a private range.
var ErrPrivateAddress = errors.New("access to private IP ranges is not allowed")

// StatusError reports a non-200 response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.Code, e.URL)
}

// Result contains the response from a fetch.
type Result struct {
	Body        []byte
	ContentType string
}

// MediaType returns the lower-cased media type without parameters.
func (r *Result) MediaType() string {
	mt, _, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		return ""
	}
	return mt
}

// IsHTML reports whether the server labelled the body as an HTML page.
func (r *Result) IsHTML() bool {
	switch r.MediaType() {
	case "text/html", "application/xhtml+xml":
		return true
	default:
		return false
	}
}

var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// isPrivateIP checks if an IP address is in a private range (loopback is allowed for tests).
func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() {
		return false
	}
	return ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

// Fetch retrieves urlStr. Only http and https are accepted.
func Fetch(ctx context.Context, urlStr string) (*Result, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL %q: scheme must be http or https", urlStr)
	}

	if ips, err := net.DefaultResolver.LookupIP(ctx, "ip", parsedURL.Hostname()); err == nil {
		for _, ip := range ips {
			if isPrivateIP(ip) {
				return nil, ErrPrivateAddress
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, URL: urlStr}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (exceeds %d bytes)", MaxResponseSize)
	}

	return &Result{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// FetchJSON retrieves urlStr and decodes the JSON body into v.
func FetchJSON(ctx context.Context, urlStr string, v any) error {
	res, err := Fetch(ctx, urlStr)
	if err != nil {
		return err
	}
	if res.IsHTML() {
		return fmt.Errorf("decode %s: got an HTML page, want JSON", urlStr)
	}
	if err := json.Unmarshal(res.Body, v); err != nil {
		return fmt.Errorf("decode %s: %w", urlStr, err)
	}
	return nil
}
