package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpurcell/contentapi/weather"
)

// WeatherController serves the cached weather proxy endpoint.
type WeatherController struct {
	svc *weather.Service
}

// NewWeatherController creates a WeatherController.
func NewWeatherController(svc *weather.Service) *WeatherController {
	return &WeatherController{svc: svc}
}

// Get returns current weather for the requested city. Upstream failures are
// a local 400 with an empty data list; the upstream detail stays in the logs.
func (w *WeatherController) Get(ctx *gin.Context) {
	city := ctx.DefaultQuery("city", "Perth")

	report, err := w.svc.Get(city)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"status":  http.StatusBadRequest,
			"message": "Failed to fetch weather data",
			"data":    []any{},
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  http.StatusOK,
		"message": fmt.Sprintf("Weather data for %s retrieved successfully", city),
		"data":    report,
	})
}
