package openweathermap

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/roadcast/roadcast/internal/weather"
)

const (
	// MaxHourlyPoints bounds the hourly series.
	MaxHourlyPoints = 24

	// MaxDailyAggregates bounds the daily series.
	MaxDailyAggregates = 7

	msToKmh = 3.6
)

// ParseCurrent converts a raw current-conditions payload into a snapshot.
// A nil payload yields an empty snapshot with an unknown condition.
func ParseCurrent(raw *CurrentResponse, locationName string) weather.CurrentSnapshot {
	snapshot := weather.CurrentSnapshot{
		Location:  locationName,
		Condition: weather.ConditionUnknown,
	}
	if raw == nil {
		return snapshot
	}

	snapshot.TemperatureC = raw.Main.Temp
	snapshot.FeelsLikeC = raw.Main.FeelsLike
	snapshot.HumidityPct = raw.Main.Humidity
	snapshot.PressureHPa = raw.Main.Pressure
	snapshot.WindSpeedKmh = raw.Wind.Speed * msToKmh
	snapshot.WindDirectionDeg = raw.Wind.Deg
	if raw.Visibility != nil {
		km := float64(*raw.Visibility) / 1000
		snapshot.VisibilityKm = &km
	}

	if raw.Dt != 0 {
		snapshot.ObservedAt = time.Unix(raw.Dt, 0).In(zoneFor(raw.Timezone))
	}

	if len(raw.Weather) > 0 {
		w := raw.Weather[0]
		snapshot.Condition = mapCondition(w.Main)
		snapshot.ConditionCode = w.ID
		snapshot.Description = w.Description
		snapshot.IconID = w.Icon
	}

	return snapshot
}

// ParseHourly converts the earliest forecast steps into hourly points in
// chronological order.
func ParseHourly(raw *ForecastResponse) []weather.HourlyPoint {
	if raw == nil {
		return []weather.HourlyPoint{}
	}

	zone := zoneFor(raw.City.Timezone)
	list := chronological(raw.List)
	n := min(len(list), MaxHourlyPoints)
	points := make([]weather.HourlyPoint, 0, n)

	for _, item := range list[:n] {
		t := time.Unix(item.Dt, 0).In(zone)
		point := weather.HourlyPoint{
			Time:                   t,
			TimeLabel:              t.Format("15:04"),
			TemperatureC:           item.Main.Temp,
			FeelsLikeC:             item.Main.FeelsLike,
			HumidityPct:            item.Main.Humidity,
			WindSpeedKmh:           item.Wind.Speed * msToKmh,
			PrecipitationChancePct: item.Pop * 100,
			Condition:              weather.ConditionUnknown,
		}
		if len(item.Weather) > 0 {
			point.Condition = mapCondition(item.Weather[0].Main)
			point.ConditionCode = item.Weather[0].ID
			point.IconID = item.Weather[0].Icon
		}
		points = append(points, point)
	}

	return points
}

// dayGroup accumulates the forecast steps of one local calendar date.
type dayGroup struct {
	date  time.Time
	first ForecastItem

	tempMax  float64
	tempMin  float64
	humidity float64
	wind     float64
	pop      float64
	count    int
}

// ParseDaily groups forecast steps by local calendar date and summarizes
// each of the first seven dates, earliest first.
func ParseDaily(raw *ForecastResponse) []weather.DailyAggregate {
	if raw == nil {
		return []weather.DailyAggregate{}
	}

	zone := zoneFor(raw.City.Timezone)
	groups := make([]*dayGroup, 0, MaxDailyAggregates)
	byDate := make(map[string]*dayGroup, MaxDailyAggregates)

	for _, item := range chronological(raw.List) {
		t := time.Unix(item.Dt, 0).In(zone)
		key := t.Format(time.DateOnly)

		g, ok := byDate[key]
		if !ok {
			if len(groups) == MaxDailyAggregates {
				continue
			}
			g = &dayGroup{
				date:    t,
				first:   item,
				tempMax: math.Inf(-1),
				tempMin: math.Inf(1),
			}
			byDate[key] = g
			groups = append(groups, g)
		}

		// The step temperature keeps max >= min when temp_min/temp_max
		// are absent or inconsistent.
		g.tempMax = max(g.tempMax, item.Main.Temp)
		g.tempMin = min(g.tempMin, item.Main.Temp)
		if item.Main.TempMax != nil {
			g.tempMax = max(g.tempMax, *item.Main.TempMax)
		}
		if item.Main.TempMin != nil {
			g.tempMin = min(g.tempMin, *item.Main.TempMin)
		}
		g.humidity += item.Main.Humidity
		g.wind += item.Wind.Speed * msToKmh
		g.pop += item.Pop * 100
		g.count++
	}

	sunrise := localTime(raw.City.Sunrise, zone)
	sunset := localTime(raw.City.Sunset, zone)

	days := make([]weather.DailyAggregate, 0, len(groups))
	for _, g := range groups {
		n := float64(g.count)
		day := weather.DailyAggregate{
			Date:                   g.date.Format(time.DateOnly),
			DayName:                g.date.Weekday().String(),
			TempMaxC:               g.tempMax,
			TempMinC:               g.tempMin,
			HumidityPct:            g.humidity / n,
			WindSpeedKmh:           g.wind / n,
			PrecipitationChancePct: g.pop / n,
			Condition:              weather.ConditionUnknown,
		}
		if len(g.first.Weather) > 0 {
			w := g.first.Weather[0]
			day.Condition = mapCondition(w.Main)
			day.ConditionCode = w.ID
			day.Description = w.Description
			day.IconID = w.Icon
		}
		if sunrise != nil && sunrise.Format(time.DateOnly) == day.Date {
			day.Sunrise = sunrise
		}
		if sunset != nil && sunset.Format(time.DateOnly) == day.Date {
			day.Sunset = sunset
		}
		days = append(days, day)
	}

	return days
}

// chronological returns a copy of list ordered by timestamp. Steps with the
// same timestamp keep their provider order.
func chronological(list []ForecastItem) []ForecastItem {
	sorted := slices.Clone(list)
	slices.SortStableFunc(sorted, func(a, b ForecastItem) int {
		return cmp.Compare(a.Dt, b.Dt)
	})
	return sorted
}

// zoneFor returns a fixed zone for an offset in seconds east of UTC.
func zoneFor(offsetSeconds int) *time.Location {
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone("", offsetSeconds)
}

func localTime(unix int64, zone *time.Location) *time.Time {
	if unix == 0 {
		return nil
	}
	t := time.Unix(unix, 0).In(zone)
	return &t
}

// mapCondition maps OpenWeatherMap condition to domain condition.
func mapCondition(owmCondition string) weather.Condition {
	switch owmCondition {
	case "Clear":
		return weather.ConditionClear
	case "Clouds":
		return weather.ConditionClouds
	case "Rain":
		return weather.ConditionRain
	case "Drizzle":
		return weather.ConditionDrizzle
	case "Thunderstorm":
		return weather.ConditionThunderstorm
	case "Snow":
		return weather.ConditionSnow
	case "Squall", "Tornado":
		return weather.ConditionSquall
	case "Mist":
		return weather.ConditionMist
	case "Fog":
		return weather.ConditionFog
	case "Haze", "Smoke", "Dust", "Sand", "Ash":
		return weather.ConditionHaze
	default:
		return weather.ConditionUnknown
	}
}
