// ABOUTME: Tests for district lookup and the Open-Meteo client
// ABOUTME: Requests go to an httptest server standing in for the API

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/text/unicode/norm"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		district string
		want     Coord
		known    bool
	}{
		{"종로구", Coord{37.5735, 126.9792}, true},
		{"강동구", Coord{37.5301, 127.1238}, true},
		{norm.NFD.String("마포구"), Coord{37.5663, 126.9019}, true},
		{"해운대구", CityHall, false},
		{"", CityHall, false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.district)
		if got != tt.want || ok != tt.known {
			t.Errorf("Lookup(%q) = %v, %v; want %v, %v", tt.district, got, ok, tt.want, tt.known)
		}
	}
	if len(districts) != 25 {
		t.Errorf("district table has %d entries, want 25", len(districts))
	}
}

func TestCurrentClear(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{0, true}, {3, true}, {45, false}, {61, false},
	}
	for _, tt := range tests {
		if got := (Current{WeatherCode: tt.code}).Clear(); got != tt.want {
			t.Errorf("Clear(code %d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestClientCurrent(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"latitude":        q.Get("latitude"),
			"longitude":       q.Get("longitude"),
			"current_weather": q.Get("current_weather"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"latitude":37.57,"current_weather":{"temperature":-2.5,"weathercode":71,"windspeed":8.1}}`))
	}))
	defer srv.Close()

	c := &Client{BaseURL: srv.URL + "/v1/forecast"}
	got, err := c.Current(context.Background(), "종로구")
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}

	if got.Temperature != -2.5 || got.WeatherCode != 71 {
		t.Errorf("Current() = %+v", got)
	}
	if got.Clear() {
		t.Error("snow should not be clear")
	}
	if got.String() != "🌧️ -2.5°C" {
		t.Errorf("String() = %q", got.String())
	}
	want := map[string]string{"latitude": "37.5735", "longitude": "126.9792", "current_weather": "true"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestClientCurrentErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/empty":
			_, _ = w.Write([]byte(`{"latitude":37.57}`))
		default:
			http.Error(w, "down", http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	for _, path := range []string{"/empty", "/down"} {
		c := &Client{BaseURL: srv.URL + path}
		if _, err := c.Current(context.Background(), "중구"); err == nil {
			t.Errorf("Current(%s) expected error", path)
		}
	}
}
