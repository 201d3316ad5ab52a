// ABOUTME: Finds the programme feed behind a venue or district culture page
// ABOUTME: Tries the URL itself, then <link rel="alternate">, then well-known paths

package discover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/harper/gachi/internal/fetch"
	"github.com/harper/gachi/internal/parse"
	"golang.org/x/net/html"
)

// Paths venue sites commonly publish their programme feed under.
var wellKnownPaths = []string{
	"/rss",
	"/rss.xml",
	"/feed",
	"/feed.xml",
	"/atom.xml",
	"/board/rss",
	"/program/rss",
}

var (
	ErrNoFeedFound = errors.New("no programme feed found")
	ErrInvalidURL  = errors.New("invalid URL")
)

// Found is a verified feed location.
type Found struct {
	URL   string
	Title string
	Body  []byte
}

// Discover locates a parseable feed starting from pageURL.
func Discover(ctx context.Context, pageURL string) (*Found, error) {
	base, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: missing scheme or host", ErrInvalidURL)
	}

	found, body, err := asFeed(ctx, base.String())
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if found != nil {
		return found, nil
	}

	for _, alt := range alternateLinks(body, base) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f, _, err := asFeed(ctx, alt.URL)
		if err != nil || f == nil {
			continue
		}
		if f.Title == "" {
			f.Title = alt.Title
		}
		return f, nil
	}

	root := url.URL{Scheme: base.Scheme, Host: base.Host}
	for _, p := range wellKnownPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if f, _, err := asFeed(ctx, root.String()+p); err == nil && f != nil {
			return f, nil
		}
	}
	return nil, ErrNoFeedFound
}

// asFeed fetches u and reports a Found when the body parses as a feed.
// HTML pages and bodies that are not feeds are returned for link extraction.
func asFeed(ctx context.Context, u string) (*Found, []byte, error) {
	res, err := fetch.Fetch(ctx, u)
	if err != nil {
		return nil, nil, err
	}
	if res.IsHTML() {
		return nil, res.Body, nil
	}
	feed, err := parse.Parse(res.Body)
	if err != nil {
		return nil, res.Body, nil //nolint:nilerr // not a feed; caller falls back to HTML
	}
	return &Found{URL: u, Title: feed.Title, Body: res.Body}, res.Body, nil
}

type altLink struct {
	URL   string
	Title string
}

// alternateLinks returns feed-typed <link rel="alternate"> targets resolved against base.
func alternateLinks(body []byte, base *url.URL) []altLink {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	var links []altLink
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			attrs := make(map[string]string, len(n.Attr))
			for _, a := range n.Attr {
				attrs[a.Key] = a.Val
			}
			if strings.EqualFold(attrs["rel"], "alternate") && isFeedType(attrs["type"]) && attrs["href"] != "" {
				if ref, err := url.Parse(attrs["href"]); err == nil {
					links = append(links, altLink{URL: base.ResolveReference(ref).String(), Title: attrs["title"]})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links
}

func isFeedType(contentType string) bool {
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "rss") || strings.Contains(ct, "atom") ||
		strings.Contains(ct, "xml") || strings.Contains(ct, "feed+json")
}
