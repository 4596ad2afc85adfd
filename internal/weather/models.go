package weather

import (
	"errors"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
)

// CurrentSnapshot is the observed weather at a location at one point in time.
type CurrentSnapshot struct {
	Location string `json:"location"`

	TemperatureC float64 `json:"temperatureC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`
	HumidityPct  float64 `json:"humidityPct"`
	PressureHPa  float64 `json:"pressureHPa"`

	WindSpeedKmh     float64 `json:"windSpeedKmh"`
	WindDirectionDeg float64 `json:"windDirectionDeg"` // 0=N, 90=E, 180=S, 270=W

	// VisibilityKm is nil when the provider does not report it.
	VisibilityKm *float64 `json:"visibilityKm"`

	// UVIndex is nil when the provider does not report it.
	UVIndex *float64 `json:"uvIndex"`

	Condition     Condition `json:"condition"`
	ConditionCode int       `json:"conditionCode"`
	Description   string    `json:"description"`
	IconID        string    `json:"iconId"`

	ObservedAt time.Time `json:"observedAt"`
}

// HourlyPoint is one step of the short-range forecast.
type HourlyPoint struct {
	Time      time.Time `json:"time"`
	TimeLabel string    `json:"timeLabel"`

	TemperatureC float64 `json:"temperatureC"`
	FeelsLikeC   float64 `json:"feelsLikeC"`
	HumidityPct  float64 `json:"humidityPct"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`

	PrecipitationChancePct float64 `json:"precipitationChancePct"`

	Condition     Condition `json:"condition"`
	ConditionCode int       `json:"conditionCode"`
	IconID        string    `json:"iconId"`
}

// DailyAggregate summarizes all forecast steps that fall on one local calendar date.
type DailyAggregate struct {
	Date    string `json:"date"` // YYYY-MM-DD, local to the location
	DayName string `json:"dayName"`

	TempMaxC     float64 `json:"tempMaxC"`
	TempMinC     float64 `json:"tempMinC"`
	HumidityPct  float64 `json:"humidityPct"`
	WindSpeedKmh float64 `json:"windSpeedKmh"`

	PrecipitationChancePct float64 `json:"precipitationChancePct"`

	Condition     Condition `json:"condition"`
	ConditionCode int       `json:"conditionCode"`
	Description   string    `json:"description"`
	IconID        string    `json:"iconId"`

	// Sunrise, Sunset and UVIndex are nil when unknown for this date.
	Sunrise *time.Time `json:"sunrise"`
	Sunset  *time.Time `json:"sunset"`
	UVIndex *float64   `json:"uvIndex"`
}

// Forecast holds the normalized forecast series for a location.
type Forecast struct {
	Location string
	Hourly   []HourlyPoint
	Daily    []DailyAggregate

	FetchedAt time.Time
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionSquall       Condition = "SQUALL"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// IsPrecipitation reports whether the condition wets the road surface.
func (c Condition) IsPrecipitation() bool {
	switch c {
	case ConditionRain, ConditionDrizzle, ConditionThunderstorm, ConditionSnow, ConditionSquall:
		return true
	default:
		return false
	}
}

// IsObscuring reports whether the condition limits how far drivers can see.
func (c Condition) IsObscuring() bool {
	switch c {
	case ConditionMist, ConditionFog, ConditionHaze:
		return true
	default:
		return false
	}
}
