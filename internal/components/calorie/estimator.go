// Package calorie estimates calories burned by exercise activities.
//
// Rates assume an average 70kg (154lb) adult.
package calorie

import (
	"math"
	"strings"
)

// Intensity is the effort level reported for an exercise activity.
type Intensity string

const (
	Light    Intensity = "light"
	Moderate Intensity = "moderate"
	Intense  Intensity = "intense"
)

// Valid reports whether i is one of the known intensity levels.
func (i Intensity) Valid() bool {
	switch i {
	case Light, Moderate, Intense:
		return true
	}
	return false
}

const (
	defaultRate         = 5.0
	fallbackMinutes     = 30.0
	runCaloriesPerMile  = 110.0
	walkCaloriesPerMile = 90.0
)

type (
	// Rates holds calories burned per minute at each intensity.
	Rates struct {
		Light    float64
		Moderate float64
		Intense  float64
	}

	rateEntry struct {
		key   string
		rates Rates
	}

	// Input describes an activity to estimate. Nil fields are absent.
	Input struct {
		ActivityType    string     `json:"activity_type"`
		DurationMinutes *float64   `json:"duration_minutes,omitempty"`
		Distance        *float64   `json:"distance,omitempty"`
		Intensity       *Intensity `json:"intensity,omitempty"`
	}

	// Estimated is an Input together with the calories currently recorded for it.
	Estimated struct {
		Input
		CaloriesBurned int `json:"calories_burned"`
	}
)

// For returns the per-minute rate for the given intensity. Unknown levels use
// the moderate rate.
func (r Rates) For(i Intensity) float64 {
	switch i {
	case Light:
		return r.Light
	case Intense:
		return r.Intense
	default:
		return r.Moderate
	}
}

// rateTable is matched in order; the first key that matches wins.
var rateTable = []rateEntry{
	{"walking", Rates{3, 4, 5}},
	{"running", Rates{8, 10, 12}},
	{"jogging", Rates{7, 9, 11}},
	{"cycling", Rates{6, 8, 10}},
	{"swimming", Rates{8, 10, 12}},
	{"yoga", Rates{3, 4, 5}},
	{"hiking", Rates{4, 6, 8}},
	{"dancing", Rates{4, 6, 8}},
	{"basketball", Rates{6, 8, 10}},
	{"soccer", Rates{6, 8, 10}},
	{"tennis", Rates{5, 7, 9}},
	{"weightlifting", Rates{3, 5, 6}},
	{"weight lifting", Rates{3, 5, 6}},
	{"elliptical", Rates{6, 8, 10}},
	{"rowing", Rates{6, 8, 10}},
	{"climbing", Rates{7, 9, 11}},
	{"boxing", Rates{6, 9, 12}},
	{"ballet", Rates{4, 6, 8}},
	{"ballet practice", Rates{4, 6, 8}},
}

// RatePerMinute resolves the per-minute burn rate for an activity type.
// A table key matches when either string contains the other.
func RatePerMinute(activityType string, intensity *Intensity) float64 {
	activity := strings.ToLower(activityType)

	level := Moderate
	if intensity != nil {
		level = *intensity
	}

	for _, entry := range rateTable {
		if strings.Contains(activity, entry.key) || strings.Contains(entry.key, activity) {
			return entry.rates.For(level)
		}
	}
	return defaultRate
}

// Estimate returns the estimated calories burned for an activity.
//
// Running and walking with a distance are priced per mile and ignore
// duration and intensity. Otherwise the duration is multiplied by the rate,
// and with neither a 30 minute session is assumed. Zero duration or
// distance counts as absent.
func Estimate(in Input) int {
	activity := strings.ToLower(in.ActivityType)
	rate := RatePerMinute(activity, in.Intensity)

	isRun := strings.Contains(activity, "run")
	if present(in.Distance) && (isRun || strings.Contains(activity, "walk")) {
		perMile := walkCaloriesPerMile
		if isRun {
			perMile = runCaloriesPerMile
		}
		return round(*in.Distance * perMile)
	}

	if present(in.DurationMinutes) {
		return round(*in.DurationMinutes * rate)
	}

	return round(fallbackMinutes * rate)
}

// Difference reports how many calories an edit would add (or remove when
// negative) relative to the value currently recorded.
func Difference(original Estimated, updated Input) int {
	return Estimate(updated) - original.CaloriesBurned
}

func present(v *float64) bool {
	return v != nil && *v != 0
}

// round rounds halves up, so 302.5 becomes 303.
func round(v float64) int {
	return int(math.Floor(v + 0.5))
}
