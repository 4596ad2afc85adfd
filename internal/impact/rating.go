// Package impact turns normalized weather into transport impact ratings.
//
// Every rating is an ordered scale from least to most severe, so combining
// two ratings is the builtin max and escalating is one step up the scale.
package impact

import "fmt"

// Overall is the headline rating for running vehicles.
type Overall int

const (
	OverallExcellent Overall = iota
	OverallGood
	OverallFair
	OverallPoor
	OverallDangerous
)

// Visibility rates how far drivers can see.
type Visibility int

const (
	VisibilityExcellent Visibility = iota
	VisibilityGood
	VisibilityReduced
	VisibilityPoor
)

// RoadConditions rates the road surface.
type RoadConditions int

const (
	RoadDry RoadConditions = iota
	RoadDamp
	RoadWet
)

// DelayRisk rates the likelihood of schedule slippage.
type DelayRisk int

const (
	DelayNone DelayRisk = iota
	DelayLow
	DelayModerate
	DelayHigh
)

var (
	overallNames    = []string{"excellent", "good", "fair", "poor", "dangerous"}
	visibilityNames = []string{"excellent", "good", "reduced", "poor"}
	roadNames       = []string{"dry", "damp", "wet"}
	delayNames      = []string{"none", "low", "moderate", "high"}
)

// escalate moves v one step toward the most severe value, saturating at top.
func escalate[T ~int](v, top T) T {
	if v >= top {
		return top
	}
	return v + 1
}

func name[T ~int](v T, names []string) string {
	if v < 0 || int(v) >= len(names) {
		return fmt.Sprintf("unknown(%d)", int(v))
	}
	return names[v]
}

func parse[T ~int](s string, names []string) (T, error) {
	for i, n := range names {
		if n == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown rating %q", s)
}

// Escalate returns the next more severe rating.
func (o Overall) Escalate() Overall { return escalate(o, OverallDangerous) }

// Escalate returns the next more severe rating.
func (d DelayRisk) Escalate() DelayRisk { return escalate(d, DelayHigh) }

func (o Overall) String() string        { return name(o, overallNames) }
func (v Visibility) String() string     { return name(v, visibilityNames) }
func (r RoadConditions) String() string { return name(r, roadNames) }
func (d DelayRisk) String() string      { return name(d, delayNames) }

// MarshalText encodes the rating as its lower-case name.
func (o Overall) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// MarshalText encodes the rating as its lower-case name.
func (v Visibility) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

// MarshalText encodes the rating as its lower-case name.
func (r RoadConditions) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// MarshalText encodes the rating as its lower-case name.
func (d DelayRisk) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (o *Overall) UnmarshalText(b []byte) (err error) {
	*o, err = parse[Overall](string(b), overallNames)
	return err
}

func (v *Visibility) UnmarshalText(b []byte) (err error) {
	*v, err = parse[Visibility](string(b), visibilityNames)
	return err
}

func (r *RoadConditions) UnmarshalText(b []byte) (err error) {
	*r, err = parse[RoadConditions](string(b), roadNames)
	return err
}

func (d *DelayRisk) UnmarshalText(b []byte) (err error) {
	*d, err = parse[DelayRisk](string(b), delayNames)
	return err
}

// Assessment is the derived impact of weather on transport at one place.
type Assessment struct {
	Overall         Overall        `json:"overall"`
	Visibility      Visibility     `json:"visibility"`
	RoadConditions  RoadConditions `json:"roadConditions"`
	DelayRisk       DelayRisk      `json:"delayRisk"`
	Recommendations []string       `json:"recommendations"`
	Alerts          []string       `json:"alerts"`
}

// impliedOverall is the least severe overall rating consistent with the
// sub-ratings of a.
func impliedOverall(a Assessment) Overall {
	implied := OverallExcellent

	switch a.DelayRisk {
	case DelayHigh:
		implied = max(implied, OverallPoor)
	case DelayModerate:
		implied = max(implied, OverallFair)
	case DelayLow:
		implied = max(implied, OverallGood)
	}

	switch a.Visibility {
	case VisibilityPoor:
		implied = max(implied, OverallPoor)
	case VisibilityReduced:
		implied = max(implied, OverallGood)
	}

	switch a.RoadConditions {
	case RoadWet:
		implied = max(implied, OverallPoor)
	case RoadDamp:
		implied = max(implied, OverallGood)
	}

	return implied
}
