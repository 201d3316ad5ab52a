// ABOUTME: Tests for the open-data and venue feed importers
// ABOUTME: Covers key casing, field mapping, NFC districts and failed batches

package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harper/gachi/internal/logging"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/opml"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

var now = time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func writeExport(t *testing.T, rows []map[string]any) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"DATA": rows})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// flakyStore fails InsertEvents on the listed 1-based calls.
type flakyStore struct {
	storage.Store
	failOn map[int]bool
	calls  int
}

func (f *flakyStore) InsertEvents(events []*models.CulturalEvent) error {
	f.calls++
	if f.failOn[f.calls] {
		return errors.New("disk full")
	}
	return f.Store.InsertEvents(events)
}

func TestImportEventsMapping(t *testing.T) {
	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	src := writeExport(t, []map[string]any{
		{
			"title": "국악 한마당", "guname": "종로구", "place": "세종문화회관",
			"codename": "국악", "is_free": "무료", "lat": "37.57", "lot": "126.97",
			"strtdate": "2025-02-10 00:00:00.0", "end_date": "2025-02-20 00:00:00.0",
			"use_trgt": "누구나", "org_name": "종로문화재단",
		},
		{
			"TITLE": "사진전", "GUNAME": "마포구", "IS_FREE": "유료", "USE_FEE": "5,000원",
			"STRTDATE": "2025-03-01", "END_DATE": "2025-03-31", "LAT": "", "LOT": "not-a-number",
		},
	})

	sum, err := im.ImportEvents(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Imported: 2, Errors: 0, Batches: 1}, sum)

	events, err := store.ListEvents(nil)
	require.NoError(t, err)
	require.Len(t, events, 2)

	gukak := events[0]
	assert.Equal(t, "국악 한마당", gukak.Title)
	assert.Equal(t, "종로구", gukak.District)
	assert.Equal(t, "국악", gukak.EventType)
	assert.True(t, gukak.IsFree)
	assert.Equal(t, "2025-02-10", gukak.StartDate)
	assert.Equal(t, "2025-02-20", gukak.EndDate)
	require.NotNil(t, gukak.Latitude)
	assert.InDelta(t, 37.57, *gukak.Latitude, 1e-9)
	require.NotNil(t, gukak.Longitude)
	assert.InDelta(t, 126.97, *gukak.Longitude, 1e-9)

	photo := events[1]
	assert.Equal(t, "사진전", photo.Title)
	assert.Equal(t, "마포구", photo.District)
	assert.False(t, photo.IsFree)
	assert.Equal(t, "5,000원", photo.Fee)
	assert.Nil(t, photo.Latitude)
	assert.Nil(t, photo.Longitude)
}

func TestImportSpacesMapping(t *testing.T) {
	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	src := writeExport(t, []map[string]any{{
		"fac_name": "종로도서관", "gngu": "종로구", "addr": "사직로 9길", "phne": "02-721-0711",
		"entrfree": "무료", "subjcode": "도서관", "x_coord": "37.576", "y_coord": "126.968",
		"openhour": "09:00~18:00", "closeday": "월요일",
	}})

	sum, err := im.ImportSpaces(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)

	spaces, err := store.ListSpaces("종로구", 0)
	require.NoError(t, err)
	require.Len(t, spaces, 1)
	s := spaces[0]
	assert.Equal(t, "종로도서관", s.Name)
	assert.True(t, s.IsFree)
	assert.Equal(t, "도서관", s.Category)
	assert.Equal(t, "월요일", s.ClosedDays)
	require.NotNil(t, s.Latitude)
	assert.InDelta(t, 37.576, *s.Latitude, 1e-9)
	require.NotNil(t, s.Longitude)
	assert.InDelta(t, 126.968, *s.Longitude, 1e-9)
}

func TestDistrictIsNFCNormalized(t *testing.T) {
	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	decomposed := norm.NFD.String("종로구")
	require.NotEqual(t, "종로구", decomposed)
	src := writeExport(t, []map[string]any{{"title": "강좌", "guname": decomposed}})

	_, err := im.ImportEvents(context.Background(), src)
	require.NoError(t, err)

	events, err := store.ListEvents(&storage.EventFilter{District: "종로구"})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFailedBatchIsCountedNotRetried(t *testing.T) {
	flaky := &flakyStore{Store: newStore(t), failOn: map[int]bool{2: true}}
	im := New(flaky, timeutil.FixedClock{T: now}, logging.Discard(), 2)

	rows := make([]map[string]any, 5)
	for i := range rows {
		rows[i] = map[string]any{"title": fmt.Sprintf("행사 %d", i)}
	}

	sum, err := im.ImportEvents(context.Background(), writeExport(t, rows))
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 5, Imported: 3, Errors: 2, Batches: 3}, sum)
	assert.Equal(t, 3, flaky.calls)

	events, err := flaky.ListEvents(nil)
	require.NoError(t, err)
	assert.Len(t, events, 3)
}

func TestImportFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"DATA":[{"title":"음악회","guname":"중구"}]}`))
	}))
	defer srv.Close()

	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	sum, err := im.ImportEvents(context.Background(), srv.URL+"/events.json")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)
}

func TestImportRejectsBadInput(t *testing.T) {
	im := New(newStore(t), timeutil.FixedClock{T: now}, logging.Discard(), 0)
	ctx := context.Background()

	_, err := im.ImportEvents(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	noData := filepath.Join(t.TempDir(), "nodata.json")
	require.NoError(t, os.WriteFile(noData, []byte(`{"rows":[]}`), 0o600))
	_, err = im.ImportEvents(ctx, noData)
	assert.ErrorContains(t, err, "missing DATA")
}

func TestImportAll(t *testing.T) {
	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	events := writeExport(t, []map[string]any{{"title": "a"}, {"title": "b"}})
	spaces := writeExport(t, []map[string]any{{"fac_name": "c"}})

	got, err := im.ImportAll(context.Background(), events, spaces)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Events.Imported)
	assert.Equal(t, 1, got.Spaces.Imported)

	got, err = im.ImportAll(context.Background(), events, filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
	assert.Equal(t, 2, got.Events.Imported)
}

func TestImportFeed(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>마포문화재단</title>
  <item>
    <title>실버 요가 교실</title>
    <link>https://venue.example/p/7</link>
    <description>&lt;p&gt;매주 &lt;strong&gt;화요일&lt;/strong&gt; 오전&lt;/p&gt;</description>
    <category>건강</category>
    <pubDate>Mon, 10 Feb 2025 01:00:00 GMT</pubDate>
  </item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	sum, err := im.ImportFeed(context.Background(), srv.URL+"/rss", "마포구")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Imported)

	events, err := store.ListEvents(&storage.EventFilter{District: "마포구"})
	require.NoError(t, err)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "실버 요가 교실", e.Title)
	assert.Equal(t, "마포문화재단", e.Organization)
	assert.Equal(t, "건강", e.Theme)
	assert.Equal(t, "2025-02-10", e.StartDate)
	assert.Contains(t, e.ProgramDescription, "**화요일**")
}

func TestImportFeedList(t *testing.T) {
	feed := `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>
  <title>복지관</title>
  <item><title>서예 교실</title><link>https://venue.example/p/1</link></item>
  <item><title>합창단</title><link>https://venue.example/p/2</link></item>
</channel></rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/jongno/programs.xml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	store := newStore(t)
	im := New(store, timeutil.FixedClock{T: now}, logging.Discard(), 0)

	sum, err := im.ImportFeedList(context.Background(), []opml.Source{
		{URL: srv.URL + "/jongno/programs.xml", Title: "종로", District: "종로구"},
		{URL: srv.URL + "/gone", Title: "없음", District: "마포구"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Imported)
	assert.Equal(t, 1, sum.Errors)

	events, err := store.ListEvents(&storage.EventFilter{District: "종로구"})
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestRecordDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-02-10 00:00:00.0", "2025-02-10"},
		{"2025-02-10 19:30:00", "2025-02-10"},
		{"2025-02-10T10:00:00+09:00", "2025-02-10"},
		{"2025-02-10", "2025-02-10"},
		{"2025.02.10", "2025-02-10"},
		{"20250210", "2025-02-10"},
		{"soon", ""},
		{"", ""},
	}
	for _, tt := range tests {
		r := record{"strtdate": tt.in}
		if got := r.date("strtdate"); got != tt.want {
			t.Errorf("date(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRecordNumericValues(t *testing.T) {
	r := record{"LAT": 37.5, "use_fee": float64(3000)}
	if got := r.float("lat"); got == nil || *got != 37.5 {
		t.Errorf("float(lat) = %v, want 37.5", got)
	}
	if got := r.str("use_fee"); got != "3000" {
		t.Errorf("str(use_fee) = %q, want 3000", got)
	}
}
