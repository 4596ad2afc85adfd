package travel_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadcast/roadcast/internal/weather"
)

func weekForecast() *weather.Forecast {
	return &weather.Forecast{
		Location: "Trincomalee",
		Hourly:   []weather.HourlyPoint{{TimeLabel: "09:00"}},
		Daily: []weather.DailyAggregate{
			{Date: "2026-03-01", DayName: "Sunday", PrecipitationChancePct: 10, WindSpeedKmh: 12},
			{Date: "2026-03-02", DayName: "Monday", PrecipitationChancePct: 75, WindSpeedKmh: 20},
			{Date: "2026-03-03", DayName: "Tuesday", PrecipitationChancePct: 30, WindSpeedKmh: 45},
			{Date: "2026-03-04", DayName: "Wednesday", PrecipitationChancePct: 19, WindSpeedKmh: 24},
			{Date: "2026-03-05", DayName: "Thursday", PrecipitationChancePct: 20, WindSpeedKmh: 10},
		},
	}
}

func TestService_GetTransportationForecast(t *testing.T) {
	f := newFixture(t)
	f.provider.forecasts["Trincomalee"] = weekForecast()

	tf, ok := f.service.GetTransportationForecast(context.Background(), "trincomalee", 5)
	require.True(t, ok)

	assert.Equal(t, "Trincomalee", tf.Location)
	assert.Len(t, tf.Forecast, 5)
	assert.Equal(t, []string{"Sunday", "Wednesday"}, tf.FavorableDays)
	assert.Equal(t, []string{"Monday", "Tuesday"}, tf.CautionDays)
	require.Len(t, tf.Advisories, 2)
	assert.Equal(t, "Monday (2026-03-02): 75% chance of precipitation; plan for delays", tf.Advisories[0])
	assert.Equal(t, "Tuesday (2026-03-03): winds around 45 km/h; plan for delays", tf.Advisories[1])
}

func TestService_GetTransportationForecast_DaysClamped(t *testing.T) {
	tests := []struct {
		name     string
		days     int
		expected int
	}{
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"within range", 3, 3},
		{"more than available", 7, 5},
		{"above maximum", 30, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.provider.forecasts["Trincomalee"] = weekForecast()

			tf, ok := f.service.GetTransportationForecast(context.Background(), "Trincomalee", tt.days)
			require.True(t, ok)
			assert.Len(t, tf.Forecast, tt.expected)
		})
	}
}

func TestService_GetTransportationForecast_NoFavorableDays(t *testing.T) {
	f := newFixture(t)
	forecast := weekForecast()
	forecast.Daily = forecast.Daily[1:3]
	f.provider.forecasts["Trincomalee"] = forecast

	tf, ok := f.service.GetTransportationForecast(context.Background(), "Trincomalee", 7)
	require.True(t, ok)

	assert.Empty(t, tf.FavorableDays)
	assert.NotNil(t, tf.FavorableDays)
	assert.Equal(t, "No favorable travel days in the next 2 days; build extra time into schedules",
		tf.Advisories[len(tf.Advisories)-1])
}

func TestService_GetTransportationForecast_ForecastUnavailable(t *testing.T) {
	f := newFixture(t)
	f.provider.failForecast["Trincomalee"] = true

	_, ok := f.service.GetTransportationForecast(context.Background(), "Trincomalee", 3)
	assert.False(t, ok)
}
