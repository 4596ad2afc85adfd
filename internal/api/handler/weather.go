package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/roadcast/roadcast/internal/api/models"
	"github.com/roadcast/roadcast/internal/api/response"
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/travel"
	"github.com/roadcast/roadcast/internal/weather"
)

// WeatherService is the part of travel.Service the weather endpoints use.
type WeatherService interface {
	Locations() []location.Location
	ResolveLocation(name string) (location.Location, bool)
	GetCurrentWeather(ctx context.Context, name string) (*weather.CurrentSnapshot, bool)
	GetComprehensiveWeather(ctx context.Context, name string) (*travel.Comprehensive, bool)
	GetMultiLocationWeather(ctx context.Context, names []string) map[string]weather.CurrentSnapshot
	GetRouteWeather(ctx context.Context, origin, destination string) travel.RouteWeather
	GetTransportationForecast(ctx context.Context, name string, days int) (*travel.TransportationForecast, bool)
}

// WeatherHandler handles the location and weather endpoints.
type WeatherHandler struct {
	service WeatherService
}

// NewWeatherHandler creates a new WeatherHandler.
func NewWeatherHandler(service WeatherService) *WeatherHandler {
	return &WeatherHandler{service: service}
}

// ListLocations handles GET /v1/locations.
func (h *WeatherHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations := h.service.Locations()
	response.JSON(w, r, http.StatusOK, models.LocationList{
		Items: locations,
		Count: len(locations),
	})
}

// GetCurrent handles GET /v1/weather/{location}.
func (h *WeatherHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.resolve(w, r)
	if !ok {
		return
	}

	snapshot, ok := h.service.GetCurrentWeather(r.Context(), loc.Name)
	if !ok {
		unavailable(w, r, loc)
		return
	}
	response.JSON(w, r, http.StatusOK, snapshot)
}

// GetComprehensive handles GET /v1/weather/{location}/comprehensive.
func (h *WeatherHandler) GetComprehensive(w http.ResponseWriter, r *http.Request) {
	loc, ok := h.resolve(w, r)
	if !ok {
		return
	}

	comprehensive, ok := h.service.GetComprehensiveWeather(r.Context(), loc.Name)
	if !ok {
		unavailable(w, r, loc)
		return
	}
	response.JSON(w, r, http.StatusOK, comprehensive)
}

// GetTransportForecast handles GET /v1/weather/{location}/transport-forecast?days=N.
// days defaults to 7 and is clamped to [1, 7].
func (h *WeatherHandler) GetTransportForecast(w http.ResponseWriter, r *http.Request) {
	q := transportForecastQuery{Days: r.URL.Query().Get("days")}
	if err := validate.Struct(q); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors(err))
		return
	}

	days := travel.MaxForecastDays
	if q.Days != "" {
		n, err := strconv.Atoi(q.Days)
		if err != nil {
			response.BadRequest(w, r, "invalid query parameters", []models.FieldError{
				{Field: "days", Message: "must be a whole number", Code: "NUMBER"},
			})
			return
		}
		days = n
	}

	loc, ok := h.resolve(w, r)
	if !ok {
		return
	}

	forecast, ok := h.service.GetTransportationForecast(r.Context(), loc.Name, days)
	if !ok {
		unavailable(w, r, loc)
		return
	}
	response.JSON(w, r, http.StatusOK, forecast)
}

// GetMulti handles GET /v1/weather?locations=a,b,c. Names that are unknown
// or could not be fetched are reported in missing rather than failing the
// whole request.
func (h *WeatherHandler) GetMulti(w http.ResponseWriter, r *http.Request) {
	q := multiLocationQuery{Locations: splitList(r.URL.Query().Get("locations"))}
	if err := validate.Struct(q); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors(err))
		return
	}

	items := h.service.GetMultiLocationWeather(r.Context(), q.Locations)

	missing := []string{}
	reported := make(map[string]bool, len(q.Locations))
	for _, name := range q.Locations {
		key := strings.ToLower(name)
		if reported[key] {
			continue
		}
		reported[key] = true

		if loc, ok := h.service.ResolveLocation(name); ok {
			if _, found := items[loc.Name]; found {
				continue
			}
		}
		missing = append(missing, name)
	}

	response.JSON(w, r, http.StatusOK, models.MultiLocationWeather{
		Items:   items,
		Missing: missing,
	})
}

// GetRoute handles GET /v1/routes/weather?origin=&destination=.
// Unknown names are rejected; an end whose weather cannot be fetched is
// returned as null alongside the neutral route assessment.
func (h *WeatherHandler) GetRoute(w http.ResponseWriter, r *http.Request) {
	q := routeQuery{
		Origin:      strings.TrimSpace(r.URL.Query().Get("origin")),
		Destination: strings.TrimSpace(r.URL.Query().Get("destination")),
	}
	if err := validate.Struct(q); err != nil {
		response.BadRequest(w, r, "invalid query parameters", fieldErrors(err))
		return
	}

	for _, name := range []string{q.Origin, q.Destination} {
		if _, ok := h.service.ResolveLocation(name); !ok {
			response.NotFound(w, r, "unknown location: "+name)
			return
		}
	}

	response.JSON(w, r, http.StatusOK, h.service.GetRouteWeather(r.Context(), q.Origin, q.Destination))
}

// resolve reads the {location} path parameter and writes a 404 problem when
// it is not in the registry.
func (h *WeatherHandler) resolve(w http.ResponseWriter, r *http.Request) (location.Location, bool) {
	name := chi.URLParam(r, "location")
	loc, ok := h.service.ResolveLocation(name)
	if !ok {
		response.NotFound(w, r, "unknown location: "+name)
		return location.Location{}, false
	}
	return loc, true
}

func unavailable(w http.ResponseWriter, r *http.Request, loc location.Location) {
	response.ServiceUnavailable(w, r, "weather data is currently unavailable for "+loc.Name)
}
