// ABOUTME: Current weather for a Seoul district from the Open-Meteo API
// ABOUTME: Districts map to fixed coordinates; unknown ones use city hall

package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/harper/gachi/internal/fetch"
	"golang.org/x/text/unicode/norm"
)

// DefaultBaseURL is the Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

// Coord is a latitude/longitude pair.
type Coord struct {
	Lat float64
	Lon float64
}

// CityHall is used for districts missing from the table.
var CityHall = Coord{37.5665, 126.978}

var districts = map[string]Coord{
	"종로구":  {37.5735, 126.9792},
	"중구":   {37.5641, 126.9979},
	"용산구":  {37.5326, 126.99},
	"성동구":  {37.5634, 127.0371},
	"광진구":  {37.5388, 127.0824},
	"동대문구": {37.5744, 127.0398},
	"중랑구":  {37.6065, 127.0927},
	"성북구":  {37.5894, 127.0167},
	"강북구":  {37.6396, 127.0254},
	"도봉구":  {37.6688, 127.0469},
	"노원구":  {37.6543, 127.0568},
	"은평구":  {37.6176, 126.9227},
	"서대문구": {37.5791, 126.9368},
	"마포구":  {37.5663, 126.9019},
	"양천구":  {37.5172, 126.8664},
	"강서구":  {37.5509, 126.8495},
	"구로구":  {37.4954, 126.8874},
	"금천구":  {37.4567, 126.8956},
	"영등포구": {37.5264, 126.8963},
	"동작구":  {37.5124, 126.9394},
	"관악구":  {37.4781, 126.9515},
	"서초구":  {37.4837, 127.0324},
	"강남구":  {37.5172, 127.0473},
	"송파구":  {37.5145, 127.1059},
	"강동구":  {37.5301, 127.1238},
}

// Lookup returns the coordinates for district and whether it was known.
func Lookup(district string) (Coord, bool) {
	c, ok := districts[norm.NFC.String(district)]
	if !ok {
		return CityHall, false
	}
	return c, true
}

// Current is the present conditions.
type Current struct {
	Temperature float64 `json:"temperature"`
	WeatherCode int     `json:"weathercode"`
	WindSpeed   float64 `json:"windspeed"`
}

// Clear reports whether the WMO code is clear to overcast with no precipitation.
func (c Current) Clear() bool {
	return c.WeatherCode <= 3
}

// Icon returns a sun or rain glyph.
func (c Current) Icon() string {
	if c.Clear() {
		return "☀️"
	}
	return "🌧️"
}

func (c Current) String() string {
	return fmt.Sprintf("%s %.1f°C", c.Icon(), c.Temperature)
}

// Client fetches current conditions.
type Client struct {
	BaseURL string
}

// NewClient uses DefaultBaseURL.
func NewClient() *Client {
	return &Client{BaseURL: DefaultBaseURL}
}

// Current fetches the weather for district.
func (c *Client) Current(ctx context.Context, district string) (*Current, error) {
	coord, _ := Lookup(district)

	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse weather url: %w", err)
	}
	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	u.RawQuery = q.Encode()

	var resp struct {
		CurrentWeather *Current `json:"current_weather"`
	}
	if err := fetch.FetchJSON(ctx, u.String(), &resp); err != nil {
		return nil, fmt.Errorf("fetch weather: %w", err)
	}
	if resp.CurrentWeather == nil {
		return nil, fmt.Errorf("fetch weather: response has no current_weather")
	}
	return resp.CurrentWeather, nil
}
