// ABOUTME: Tests for prompt building, suggestion parsing and the chat client
// ABOUTME: The chat endpoint is an httptest server counting attempts

package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harper/gachi/internal/logging"
	"github.com/harper/gachi/internal/models"
	"github.com/harper/gachi/internal/storage"
	"github.com/harper/gachi/internal/timeutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)

const reply = `오늘 추천 활동입니다.
1. **국악 한마당 관람**: 세종문화회관 무료 공연
2. **종로도서관 독서**: 조용한 오전 독서
3) **청계천 산책**: 가벼운 걷기 운동
감사합니다.`

func seededStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	var events []*models.CulturalEvent
	for i, ev := range []struct{ title, start, end, district string }{
		{"지난 전시", "2025-01-01", "2025-01-31", "종로구"},
		{"국악 한마당", "2025-02-10", "2025-02-20", "종로구"},
		{"오늘 끝나는 강좌", "2025-01-20", "2025-02-03", "종로구"},
		{"마포 음악회", "2025-02-05", "2025-02-05", "마포구"},
	} {
		e := models.NewCulturalEvent(ev.title, now.Add(time.Duration(i)*time.Second))
		e.StartDate, e.EndDate, e.District = ev.start, ev.end, ev.district
		e.Place = "세종문화회관"
		events = append(events, e)
	}
	require.NoError(t, store.InsertEvents(events))

	sp := models.NewCulturalSpace("종로도서관", now)
	sp.District, sp.Address, sp.Category = "종로구", "사직로 9길", "도서관"
	require.NoError(t, store.InsertSpaces([]*models.CulturalSpace{sp}))
	return store
}

// chatServer replies with the given statuses in order, then 200 with reply.
func chatServer(t *testing.T, statuses ...int) (*httptest.Server, *int32, *chatRequest) {
	t.Helper()
	var calls int32
	var last chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&last)

		if int(n) <= len(statuses) {
			http.Error(w, "busy", statuses[n-1])
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": reply}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls, &last
}

func newRecommender(store storage.Store, baseURL string) *Recommender {
	return New(store, timeutil.FixedClock{T: now}, logging.Discard(), Options{
		APIKey:     "sk-test",
		Model:      "gpt-4o",
		BaseURL:    baseURL + "/",
		RetryDelay: time.Millisecond,
	})
}

func TestBuildPromptFallbacks(t *testing.T) {
	got := BuildPrompt("강남구", nil, nil)
	assert.Contains(t, got, "강남구 지역의 문화 정보를 바탕으로")
	assert.Contains(t, got, noEvents)
	assert.Contains(t, got, noSpaces)
}

func TestBuildPromptLines(t *testing.T) {
	e := models.NewCulturalEvent("사진전", now)
	e.EventType = "전시"
	withDesc := models.NewCulturalEvent("합창", now)
	withDesc.Place = "구민회관"
	withDesc.ProgramDescription = "<p>어르신 <b>합창</b> 교실</p>"
	s := models.NewCulturalSpace("미술관", now)
	s.Address = "세종대로 99"

	got := BuildPrompt("중구", []*models.CulturalEvent{e, withDesc}, []*models.CulturalSpace{s})
	assert.Contains(t, got, "- 사진전 (장소 미정): 전시")
	assert.Contains(t, got, "- 합창 (구민회관): 어르신 합창 교실")
	assert.Contains(t, got, "- 미술관 (세종대로 99): 문화 공간")
}

func TestParseSuggestions(t *testing.T) {
	got := ParseSuggestions(reply)
	want := []Suggestion{
		{"국악 한마당 관람", "세종문화회관 무료 공연"},
		{"종로도서관 독서", "조용한 오전 독서"},
		{"청계천 산책", "가벼운 걷기 운동"},
	}
	assert.Equal(t, want, got)
	assert.Empty(t, ParseSuggestions("추천할 활동이 없습니다."))
}

func TestCatalogueFiltersEndedEvents(t *testing.T) {
	r := New(seededStore(t), timeutil.FixedClock{T: now}, logging.Discard(), Options{})

	events, spaces, err := r.Catalogue("종로구")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "오늘 끝나는 강좌", events[0].Title)
	assert.Equal(t, "국악 한마당", events[1].Title)
	require.Len(t, spaces, 1)
}

func TestRecommendNotConfigured(t *testing.T) {
	r := New(seededStore(t), timeutil.FixedClock{T: now}, logging.Discard(), Options{APIKey: "  "})

	res, err := r.Recommend(context.Background(), "종로구")
	assert.ErrorIs(t, err, ErrNotConfigured)
	require.NotNil(t, res)
	assert.Len(t, res.Events, 2)
	assert.Empty(t, res.Text)
}

func TestRecommendSendsPrompt(t *testing.T) {
	srv, calls, last := chatServer(t)
	r := newRecommender(seededStore(t), srv.URL)

	res, err := r.Recommend(context.Background(), "종로구")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.Len(t, res.Suggestions, 3)

	assert.Equal(t, "gpt-4o", last.Model)
	assert.Equal(t, 500, last.MaxTokens)
	assert.InDelta(t, 0.7, last.Temperature, 1e-9)
	require.Len(t, last.Messages, 2)
	assert.Equal(t, systemMessage, last.Messages[0].Content)
	assert.True(t, strings.Contains(last.Messages[1].Content, "- 국악 한마당 (세종문화회관)"))
	assert.False(t, strings.Contains(last.Messages[1].Content, "지난 전시"))
}

func TestRecommendRetries(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantErr   bool
	}{
		{"recovers after rate limit", []int{http.StatusTooManyRequests, http.StatusBadGateway}, 3, false},
		{"gives up after three server errors", []int{500, 500, 500}, 3, true},
		{"client error is not retried", []int{http.StatusBadRequest}, 1, true},
		{"auth error is not retried", []int{http.StatusUnauthorized}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, calls, _ := chatServer(t, tt.statuses...)
			r := newRecommender(seededStore(t), srv.URL)

			_, err := r.Recommend(context.Background(), "종로구")
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(calls))
			if tt.wantErr {
				var ae *apiError
				require.True(t, errors.As(err, &ae), "err = %v", err)
				assert.Equal(t, tt.statuses[len(tt.statuses)-1], ae.Status)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
