package handler

import (
	"encoding/json"
	"net/http"

	"github.com/momager/momager-core/internal/service"
)

type WeatherHandler struct {
	weatherService *service.WeatherService
}

func NewWeatherHandler(weatherService *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService}
}

// Lookup answers GET /plumbing/weather?LAT=..&LON=.. or ?city=..&state=..
func (h *WeatherHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	data, err := h.weatherService.Lookup(r.Context(), service.WeatherQuery{
		Lat:   q.Get("LAT"),
		Lon:   q.Get("LON"),
		City:  q.Get("city"),
		State: q.Get("state"),
	})
	if err != nil {
		writeFailure(w, r, "weather lookup failed", err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}{true, data})
}
