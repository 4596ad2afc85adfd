package impact

import "fmt"

// UnavailableAdvisory is issued when a route endpoint has no weather data.
const UnavailableAdvisory = "Weather data unavailable for one or both endpoints; verify conditions locally before departure."

// EndpointAssessment is the assessment of one end of a route together with
// the readings the route summary quotes.
type EndpointAssessment struct {
	Name         string
	TemperatureC float64
	VisibilityKm *float64 // nil when not reported
	Assessment   Assessment
}

// NeutralAssessment is the route rating used when data is incomplete.
func NeutralAssessment() Assessment {
	return Assessment{
		Overall:         OverallFair,
		Visibility:      VisibilityGood,
		RoadConditions:  RoadDamp,
		DelayRisk:       DelayLow,
		Recommendations: []string{UnavailableAdvisory},
		Alerts:          []string{},
	}
}

// CombineRoute merges the assessments of both ends of a route. The worse
// end decides every rating; messages keep origin before destination.
func CombineRoute(origin, destination *EndpointAssessment) Assessment {
	if origin == nil || destination == nil {
		return NeutralAssessment()
	}

	o, d := origin.Assessment, destination.Assessment
	combined := Assessment{
		Overall:         max(o.Overall, d.Overall),
		Visibility:      VisibilityPoor,
		RoadConditions:  max(o.RoadConditions, d.RoadConditions),
		DelayRisk:       max(o.DelayRisk, d.DelayRisk),
		Recommendations: make([]string, 0, len(o.Recommendations)+len(d.Recommendations)),
		Alerts:          make([]string, 0, len(o.Alerts)+len(d.Alerts)),
	}
	if origin.clearSight() && destination.clearSight() {
		combined.Visibility = VisibilityGood
	}

	for _, end := range []*EndpointAssessment{origin, destination} {
		prefix := end.prefix()
		for _, r := range end.Assessment.Recommendations {
			combined.Recommendations = append(combined.Recommendations, prefix+r)
		}
		for _, a := range end.Assessment.Alerts {
			combined.Alerts = append(combined.Alerts, prefix+a)
		}
	}

	return combined
}

// clearSight reports whether the visibility at e is above the low-visibility
// threshold. Without a reading the endpoint's own rating decides.
func (e *EndpointAssessment) clearSight() bool {
	if e.VisibilityKm == nil {
		return e.Assessment.Visibility <= VisibilityGood
	}
	return *e.VisibilityKm > LowVisibilityKm
}

func (e *EndpointAssessment) prefix() string {
	return fmt.Sprintf("%s (%.0f°C): ", e.Name, e.TemperatureC)
}
