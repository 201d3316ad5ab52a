// ABOUTME: OPML reader for lists of programme feeds grouped by district
// ABOUTME: Folder outlines name the district; feed outlines carry the feed or page URL

package opml

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Document is a parsed feed list.
type Document struct {
	Title    string
	Outlines []Outline
}

// Outline is a node in the OPML tree: a folder (with Children) or a feed.
type Outline struct {
	Text     string
	Title    string
	XMLURL   string
	HTMLURL  string
	Children []Outline
}

// Source is one feed to import and the district its items belong to.
type Source struct {
	URL      string
	Title    string
	District string
}

type opmlXML struct {
	XMLName xml.Name `xml:"opml"`
	Head    headXML  `xml:"head"`
	Body    bodyXML  `xml:"body"`
}

type headXML struct {
	Title string `xml:"title"`
}

type bodyXML struct {
	Outlines []outlineXML `xml:"outline"`
}

type outlineXML struct {
	Text     string       `xml:"text,attr"`
	Title    string       `xml:"title,attr"`
	XMLURL   string       `xml:"xmlUrl,attr"`
	HTMLURL  string       `xml:"htmlUrl,attr"`
	Children []outlineXML `xml:"outline"`
}

// Parse reads OPML data from r.
func Parse(r io.Reader) (*Document, error) {
	var doc opmlXML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OPML: %w", err)
	}

	d := &Document{Title: doc.Head.Title, Outlines: make([]Outline, len(doc.Body.Outlines))}
	for i, o := range doc.Body.Outlines {
		d.Outlines[i] = convertOutline(o)
	}
	return d, nil
}

// ParseFile reads OPML data from a file.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return Parse(file)
}

// Sources flattens the document. Feeds outside any folder get fallbackDistrict.
func (d *Document) Sources(fallbackDistrict string) []Source {
	var out []Source
	for _, o := range d.Outlines {
		out = append(out, collect(o, fallbackDistrict)...)
	}
	return out
}

func convertOutline(x outlineXML) Outline {
	o := Outline{
		Text:     x.Text,
		Title:    x.Title,
		XMLURL:   strings.TrimSpace(x.XMLURL),
		HTMLURL:  strings.TrimSpace(x.HTMLURL),
		Children: make([]Outline, len(x.Children)),
	}
	for i, c := range x.Children {
		o.Children[i] = convertOutline(c)
	}
	return o
}

func collect(o Outline, district string) []Source {
	var out []Source

	url := o.XMLURL
	if url == "" {
		url = o.HTMLURL
	}
	if url != "" {
		out = append(out, Source{URL: url, Title: title(o), District: district})
	}

	// a folder names the district for everything below it
	if url == "" && len(o.Children) > 0 {
		district = norm.NFC.String(strings.TrimSpace(title(o)))
	}
	for _, c := range o.Children {
		out = append(out, collect(c, district)...)
	}
	return out
}

func title(o Outline) string {
	if o.Title != "" {
		return o.Title
	}
	return o.Text
}
