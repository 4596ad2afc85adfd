package impact

import (
	"fmt"
	"time"

	"github.com/roadcast/roadcast/internal/weather"
)

// Thresholds used by the classifier.
const (
	HighWindKmh     = 40.0
	LowVisibilityKm = 5.0
	HighHumidityPct = 90.0
	LikelyPrecipPct = 70.0
	PrecipLookahead = 6 * time.Hour
)

// FavorableRecommendation is added whenever no rule escalated a rating.
const FavorableRecommendation = "Conditions favorable for travel"

// Classify derives the transport impact of the current conditions.
// upcoming is the short-range hourly forecast and may be empty; it only
// adds advisories and never escalates a rating.
func Classify(current weather.CurrentSnapshot, upcoming []weather.HourlyPoint) Assessment {
	a := Assessment{
		Overall:         OverallExcellent,
		Visibility:      VisibilityExcellent,
		RoadConditions:  RoadDry,
		DelayRisk:       DelayNone,
		Recommendations: []string{},
		Alerts:          []string{},
	}
	escalated := false

	precipitating := current.Condition.IsPrecipitation()
	if precipitating {
		a.RoadConditions = RoadWet
		a.Overall = max(a.Overall, OverallPoor)
		a.DelayRisk = max(a.DelayRisk, DelayHigh)
		a.Alerts = append(a.Alerts, fmt.Sprintf("Wet road conditions (%s): reduce speed and increase following distance", describe(current)))
		a.Recommendations = append(a.Recommendations, "Allow extra travel time for slower traffic on wet roads")
		escalated = true
	}

	obscured := current.Condition.IsObscuring()
	if obscured {
		a.Visibility = VisibilityPoor
		a.Overall = max(a.Overall, OverallPoor)
		a.DelayRisk = max(a.DelayRisk, DelayHigh)
		a.Alerts = append(a.Alerts, fmt.Sprintf("Reduced visibility due to %s", describe(current)))
		a.Recommendations = append(a.Recommendations, "Use low-beam headlights and drive with caution")
		escalated = true
	}

	if current.WindSpeedKmh > HighWindKmh {
		a.Overall = a.Overall.Escalate()
		a.DelayRisk = a.DelayRisk.Escalate()
		a.Alerts = append(a.Alerts, fmt.Sprintf("High winds (%.0f km/h): high-sided vehicles and two-wheelers at risk", current.WindSpeedKmh))
		escalated = true
	}

	// Unknown visibility is left to the condition rules above.
	if current.VisibilityKm != nil && *current.VisibilityKm < LowVisibilityKm && !obscured {
		a.Visibility = max(a.Visibility, VisibilityReduced)
		if a.Overall == OverallExcellent {
			a.Overall = OverallGood
		}
		a.Recommendations = append(a.Recommendations,
			fmt.Sprintf("Visibility reduced to %.1f km: keep headlights on and extend following distance", *current.VisibilityKm))
		escalated = true
	}

	if current.HumidityPct > HighHumidityPct && !precipitating {
		a.Recommendations = append(a.Recommendations, "High humidity: keep vehicle ventilation on to prevent windscreen fogging")
	}

	if !escalated {
		a.Recommendations = append(a.Recommendations, FavorableRecommendation)
	}

	if !precipitating {
		if advisory, ok := precipitationAdvisory(current.ObservedAt, upcoming); ok {
			a.Recommendations = append(a.Recommendations, advisory)
		}
	}

	a.Overall = max(a.Overall, impliedOverall(a))
	return a
}

// precipitationAdvisory looks for a likely-rain step within the lookahead
// window starting at now, or at the first step when now is unknown.
func precipitationAdvisory(now time.Time, upcoming []weather.HourlyPoint) (string, bool) {
	if len(upcoming) == 0 {
		return "", false
	}
	if now.IsZero() {
		now = upcoming[0].Time
	}
	until := now.Add(PrecipLookahead)

	for _, p := range upcoming {
		if p.Time.Before(now) {
			continue
		}
		if p.Time.After(until) {
			break
		}
		if p.PrecipitationChancePct >= LikelyPrecipPct {
			return fmt.Sprintf("Precipitation expected within 6 hours (%.0f%% chance at %s): plan for wet roads later in the journey",
				p.PrecipitationChancePct, p.TimeLabel), true
		}
	}
	return "", false
}

func describe(s weather.CurrentSnapshot) string {
	if s.Description != "" {
		return s.Description
	}
	return string(s.Condition)
}
