// ABOUTME: Reads Seoul open-data JSON exports from a file or URL
// ABOUTME: Rows are looked up by lower or UPPER case key

package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/harper/gachi/internal/fetch"
	"golang.org/x/text/unicode/norm"
)

// record is one element of the export's DATA array.
type record map[string]any

type export struct {
	Data []record `json:"DATA"`
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// readRecords loads the DATA array from a local path or an http(s) URL.
func readRecords(ctx context.Context, src string) ([]record, error) {
	var (
		data []byte
		err  error
	)
	if isURL(src) {
		var res *fetch.Result
		res, err = fetch.Fetch(ctx, src)
		if res != nil {
			data = res.Body
		}
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}

	var ex export
	if err := json.Unmarshal(data, &ex); err != nil {
		return nil, fmt.Errorf("decode %s: %w", src, err)
	}
	if ex.Data == nil {
		return nil, fmt.Errorf("decode %s: missing DATA array", src)
	}
	return ex.Data, nil
}

// str returns the trimmed value under key or its upper-case form.
func (r record) str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		v, ok = r[strings.ToUpper(key)]
	}
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// float parses the value under key, or nil when absent or malformed.
func (r record) float(key string) *float64 {
	s := r.str(key)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// isFree reports whether the value under key is the literal "무료".
func (r record) isFree(key string) bool {
	return r.str(key) == "무료"
}

// district returns the NFC form so lookups match regardless of source encoding.
func (r record) district(key string) string {
	return norm.NFC.String(r.str(key))
}

var dateLayouts = []string{
	"2006-01-02 15:04:05.0",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
	"2006.01.02",
	"20060102",
}

// date converts the value under key to YYYY-MM-DD, or "" when unparseable.
func (r record) date(key string) string {
	s := r.str(key)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}
