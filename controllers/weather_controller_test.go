package controllers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpurcell/contentapi/config"
)

func weatherServer(t *testing.T, upstream http.HandlerFunc) http.Handler {
	t.Helper()
	testRedis.FlushAll()

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := config.Get()
	cfg.WeatherBaseURL = srv.URL
	cfg.WeatherAPIKey = "test-key"
	config.Set(cfg)

	return newServer(t)
}

func TestWeatherSuccess(t *testing.T) {
	r := weatherServer(t, func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, `{
			"name": %q,
			"weather": [{"description": "light rain"}],
			"main": {"temp": 18.2, "humidity": 80},
			"wind": {"speed": 3.4}
		}`, req.URL.Query().Get("q"))
	})

	w := doJSON(r, http.MethodGet, "/api/weather?city=Melbourne", nil, "")
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	body := decode(t, w)
	assert.Equal(t, float64(200), body["status"])
	assert.Equal(t, "Weather data for Melbourne retrieved successfully", body["message"])

	data := body["data"].(map[string]any)
	assert.Equal(t, "Melbourne", data["city"])
	assert.Equal(t, 18.2, data["temperature"])
	assert.Equal(t, float64(80), data["humidity"])
	assert.Equal(t, "light rain", data["weather"])
	assert.Equal(t, 3.4, data["wind_speed"])
}

func TestWeatherDefaultsToPerth(t *testing.T) {
	var requestedCity string
	r := weatherServer(t, func(w http.ResponseWriter, req *http.Request) {
		requestedCity = req.URL.Query().Get("q")
		fmt.Fprintf(w, `{"name": %q, "main": {"temp": 30, "humidity": 40}, "wind": {"speed": 6}}`, requestedCity)
	})

	w := doJSON(r, http.MethodGet, "/api/weather", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "Perth", requestedCity)
	assert.Equal(t, "Weather data for Perth retrieved successfully", decode(t, w)["message"])
}

func TestWeatherUpstreamFailure(t *testing.T) {
	r := weatherServer(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"message":"city not found"}`, http.StatusNotFound)
	})

	w := doJSON(r, http.MethodGet, "/api/weather?city=Atlantis", nil, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	body := decode(t, w)
	assert.Equal(t, float64(400), body["status"])
	assert.Equal(t, "Failed to fetch weather data", body["message"])
	assert.Equal(t, []any{}, body["data"])
}
