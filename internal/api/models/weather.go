package models

import (
	"github.com/roadcast/roadcast/internal/location"
	"github.com/roadcast/roadcast/internal/weather"
)

// LocationList is the response body of GET /v1/locations.
type LocationList struct {
	Items []location.Location `json:"items"`
	Count int                 `json:"count"`
}

// MultiLocationWeather is the response body of GET /v1/weather.
// Locations that could not be resolved or fetched are listed in Missing.
type MultiLocationWeather struct {
	Items   map[string]weather.CurrentSnapshot `json:"items"`
	Missing []string                           `json:"missing"`
}
