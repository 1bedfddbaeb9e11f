package mockapi

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

// FixtureTime is the fixed clock reading used for generated history.
var FixtureTime = time.Date(2025, time.November, 18, 16, 0, 0, 0, time.UTC)

// DefaultFeatures is the feature template served by the mock backend.
func DefaultFeatures() domain.FormPayload {
	return domain.FormPayload{
		"Start_Lat":         39.7392,
		"Start_Lng":         -104.9903,
		"Distance(mi)":      0.5,
		"Temperature(F)":    60.0,
		"Humidity(%)":       65.0,
		"Pressure(in)":      29.92,
		"Visibility(mi)":    10.0,
		"Wind_Speed(mph)":   5.0,
		"Precipitation(in)": 0.0,
		"Weather_Condition": "Fair",
		"Crossing":          0,
		"Junction":          0,
		"Traffic_Signal":    0,
		"Stop":              0,
		"Hour":              12,
		"Day_of_Week":       2,
		"Month":             6,
		"Year":              2024,
		"City":              "Denver",
		"State":             "CO",
		"Street":            "Main St",
		"Sunrise_Sunset":    "Day",
	}
}

// Example is a named sample form.
type Example struct {
	Name string             `json:"name"`
	Data domain.FormPayload `json:"data"`
}

// Examples returns one low-risk and one high-risk sample form.
func Examples() []Example {
	day := DefaultFeatures()
	day["Distance(mi)"] = 0.2
	day["Temperature(F)"] = 72.0
	day["Humidity(%)"] = 45.0
	day["Hour"] = 14

	night := DefaultFeatures()
	for k, v := range map[string]any{
		"Start_Lat":         34.0522,
		"Start_Lng":         -118.2437,
		"Distance(mi)":      2.5,
		"Visibility(mi)":    3.0,
		"Wind_Speed(mph)":   15.0,
		"Precipitation(in)": 0.5,
		"Weather_Condition": "Heavy Rain",
		"Junction":          1,
		"Hour":              23,
		"City":              "Los Angeles",
		"State":             "CA",
		"Street":            "I-405",
		"Sunrise_Sunset":    "Night",
	} {
		night[k] = v
	}

	return []Example{
		{Name: "Low Risk - Clear Day", Data: day},
		{Name: "High Risk - Highway Night", Data: night},
	}
}

// SampleHistory normalizes n mock responses into a persisted history,
// newest first, with timestamps one minute apart ending at FixtureTime.
// The package clock is restored before returning.
func SampleHistory(n int, shape domain.Shape) []domain.RiskAssessment {
	clock := clockwork.NewFakeClockAt(FixtureTime.Add(-time.Duration(n-1) * time.Minute))
	domain.SetClock(clock)
	defer domain.SetClock(nil)

	examples := Examples()
	out := make([]domain.RiskAssessment, n)
	for i := range n {
		form := examples[i%len(examples)].Data
		out[n-1-i] = domain.Normalize(Respond(form, shape))
		clock.Advance(time.Minute)
	}
	return out
}
