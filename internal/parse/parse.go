// ABOUTME: Venue feed parsing using the gofeed library
// ABOUTME: Normalizes RSS, Atom and JSON Feed items into event-shaped listings

package parse

import (
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// VenueFeed is a normalized venue programme feed.
type VenueFeed struct {
	Title string
	Link  string
	Items []Listing
}

// Listing is one programme item from a venue feed.
type Listing struct {
	GUID        string
	Title       string
	Link        string
	Description string
	Categories  []string
	Image       string
	PublishedAt *time.Time
}

// Parse parses RSS, Atom or JSON Feed data.
func Parse(data []byte) (*VenueFeed, error) {
	feed, err := gofeed.NewParser().ParseString(string(data))
	if err != nil {
		return nil, err
	}

	parsed := &VenueFeed{
		Title: strings.TrimSpace(feed.Title),
		Link:  feed.Link,
		Items: make([]Listing, 0, len(feed.Items)),
	}

	for _, item := range feed.Items {
		l := Listing{
			GUID:       item.GUID,
			Title:      strings.TrimSpace(item.Title),
			Link:       item.Link,
			Categories: item.Categories,
		}
		if l.GUID == "" {
			l.GUID = item.Link
		}
		if item.Image != nil {
			l.Image = item.Image.URL
		}

		if item.PublishedParsed != nil {
			l.PublishedAt = item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			l.PublishedAt = item.UpdatedParsed
		}

		// Prefer the summary; venue feeds often put the whole page in content.
		if item.Description != "" {
			l.Description = item.Description
		} else {
			l.Description = item.Content
		}
		l.Description = strings.TrimSpace(l.Description)

		if l.Title == "" {
			continue
		}
		parsed.Items = append(parsed.Items, l)
	}

	return parsed, nil
}
