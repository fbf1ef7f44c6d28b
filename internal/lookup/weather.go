package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const defaultWeatherBase = "https://api.openweathermap.org"

type WeatherClient struct {
	http   *http.Client
	apiKey string
	base   string
}

func NewWeatherClient(client *http.Client, apiKey string) *WeatherClient {
	return &WeatherClient{http: client, apiKey: apiKey, base: defaultWeatherBase}
}

// Current describes the weather in city in one spoken sentence.
func (w *WeatherClient) Current(ctx context.Context, city string) (string, error) {
	u := fmt.Sprintf("%s/data/2.5/weather?q=%s&units=metric&appid=%s",
		w.base, url.QueryEscape(city), url.QueryEscape(w.apiKey))

	body, status, err := get(ctx, w.http, u)
	if status == http.StatusNotFound {
		return fmt.Sprintf("Couldn't get weather for %s", city), nil
	}
	if err != nil {
		return "", fmt.Errorf("weather for %s: %w", city, err)
	}

	temp := gjson.GetBytes(body, "main.temp")
	desc := gjson.GetBytes(body, "weather.0.description")
	humidity := gjson.GetBytes(body, "main.humidity")
	if !temp.Exists() || !desc.Exists() {
		return "", fmt.Errorf("weather for %s: malformed response", city)
	}

	return fmt.Sprintf("Weather in %s: %s, %.0f degrees, humidity %d%%",
		city, desc.String(), temp.Float(), humidity.Int()), nil
}
