package travel

import (
	"context"
	"fmt"
	"strings"

	"github.com/roadcast/roadcast/internal/weather"
)

// Day thresholds for the transportation forecast.
const (
	MinForecastDays = 1
	MaxForecastDays = 7

	favorablePrecipPct = 20.0
	favorableWindKmh   = 25.0
	cautionPrecipPct   = 60.0
	cautionWindKmh     = 40.0
)

// GetTransportationForecast summarizes the next days at a location for
// service planning. days is clamped to [1, 7]. Returns false when the name
// is unknown or no daily forecast is available.
func (s *Service) GetTransportationForecast(ctx context.Context, name string, days int) (*TransportationForecast, bool) {
	comprehensive, ok := s.GetComprehensiveWeather(ctx, name)
	if !ok || len(comprehensive.Daily) == 0 {
		return nil, false
	}

	days = min(max(days, MinForecastDays), MaxForecastDays)
	daily := comprehensive.Daily[:min(days, len(comprehensive.Daily))]

	tf := &TransportationForecast{
		Location:      comprehensive.Location.Name,
		Forecast:      daily,
		Advisories:    []string{},
		FavorableDays: []string{},
		CautionDays:   []string{},
	}

	for _, day := range daily {
		if isFavorable(day) {
			tf.FavorableDays = append(tf.FavorableDays, day.DayName)
		}
		if reasons := cautionReasons(day); len(reasons) > 0 {
			tf.CautionDays = append(tf.CautionDays, day.DayName)
			tf.Advisories = append(tf.Advisories,
				fmt.Sprintf("%s (%s): %s; plan for delays", day.DayName, day.Date, strings.Join(reasons, " and ")))
		}
	}

	if len(tf.FavorableDays) == 0 {
		tf.Advisories = append(tf.Advisories,
			fmt.Sprintf("No favorable travel days in the next %d days; build extra time into schedules", len(daily)))
	}

	return tf, true
}

func isFavorable(day weather.DailyAggregate) bool {
	return day.PrecipitationChancePct < favorablePrecipPct && day.WindSpeedKmh < favorableWindKmh
}

func cautionReasons(day weather.DailyAggregate) []string {
	var reasons []string
	if day.PrecipitationChancePct > cautionPrecipPct {
		reasons = append(reasons, fmt.Sprintf("%.0f%% chance of precipitation", day.PrecipitationChancePct))
	}
	if day.WindSpeedKmh > cautionWindKmh {
		reasons = append(reasons, fmt.Sprintf("winds around %.0f km/h", day.WindSpeedKmh))
	}
	return reasons
}
