// Package mockapi is a deterministic stand-in for the prediction backend.
// It scores forms with fixed rules and answers in either response shape.
package mockapi

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/safestride-client/internal/domain"
)

const (
	APIVersion   = "1.0.0"
	ModelName    = "SafeStride Mock Classifier"
	ModelVersion = "20251118_162845"
)

// Factor names, in the order they are reported.
const (
	FactorNight    = "Low visibility - night time"
	FactorWeather  = "Adverse weather conditions"
	FactorLighting = "Poor lighting conditions"
	FactorJunction = "Junction or crossing present"
	FactorWind     = "High wind speed"
	FactorNormal   = "Normal traffic conditions"

	maxFactors         = 5
	maxRecommendations = 5
)

var levelRecommendations = map[domain.RiskLevel][]string{
	domain.RiskHigh: {
		"Avoid walking in this area if possible",
		"Use alternative routes with better lighting",
		"Consider using public transportation",
		"If walking is necessary, stay extremely alert",
	},
	domain.RiskMedium: {
		"Exercise caution when walking",
		"Use designated pedestrian crossings",
		"Wear reflective clothing if at night",
		"Stay on sidewalks and well-lit areas",
	},
	domain.RiskLow: {
		"Conditions are relatively safe",
		"Still follow traffic rules and signals",
		"Stay aware of your surroundings",
		"Use pedestrian crossings when available",
	},
}

// binaryResponse is the current backend's answer.
type binaryResponse struct {
	Success         bool      `json:"success"`
	Prediction      string    `json:"prediction"`
	Label           int       `json:"label"`
	Probability     float64   `json:"probability"`
	RawProba        []float64 `json:"raw_proba"`
	RiskFactors     []string  `json:"risk_factors"`
	Recommendations []string  `json:"recommendations"`
}

// legacyResponse is the three-class backend's answer.
type legacyResponse struct {
	RiskLevel               string             `json:"risk_level"`
	SeverityScore           float64            `json:"severity_score"`
	Confidence              float64            `json:"confidence"`
	RiskFactors             []string           `json:"risk_factors"`
	Recommendations         []string           `json:"recommendations"`
	PredictionProbabilities map[string]float64 `json:"prediction_probabilities"`
}

// score is the deterministic assessment of one form.
type score struct {
	highRisk float64 // probability of the high-risk class
	factors  []string
}

func assess(form domain.FormPayload) score {
	var factors []string

	hour, hasHour := number(form, "Hour")
	if strings.EqualFold(text(form, "Sunrise_Sunset"), "Night") || (hasHour && (hour < 6 || hour >= 20)) {
		factors = append(factors, FactorNight)
	}
	weather := strings.ToLower(text(form, "Weather_Condition"))
	precip, _ := number(form, "Precipitation(in)")
	if precip > 0 || strings.Contains(weather, "rain") || strings.Contains(weather, "fog") || strings.Contains(weather, "snow") {
		factors = append(factors, FactorWeather)
	}
	if vis, ok := number(form, "Visibility(mi)"); ok && vis < 5 {
		factors = append(factors, FactorLighting)
	}
	crossing, _ := number(form, "Crossing")
	junction, _ := number(form, "Junction")
	if crossing == 1 || junction == 1 {
		factors = append(factors, FactorJunction)
	}
	if wind, ok := number(form, "Wind_Speed(mph)"); ok && wind > 25 {
		factors = append(factors, FactorWind)
	}

	p := math.Min(0.15+0.2*float64(len(factors)), 0.95)
	if len(factors) == 0 {
		factors = []string{FactorNormal}
	}
	if len(factors) > maxFactors {
		factors = factors[:maxFactors]
	}
	return score{highRisk: round(p, 3), factors: factors}
}

func (s score) level3() domain.RiskLevel {
	switch {
	case s.highRisk >= 0.7:
		return domain.RiskHigh
	case s.highRisk >= 0.4:
		return domain.RiskMedium
	default:
		return domain.RiskLow
	}
}

func (s score) binary() binaryResponse {
	level, label, prob := domain.RiskLow, 0, round(1-s.highRisk, 3)
	if s.highRisk >= 0.5 {
		level, label, prob = domain.RiskHigh, 1, s.highRisk
	}
	return binaryResponse{
		Success:         true,
		Prediction:      string(level) + " Risk",
		Label:           label,
		Probability:     prob,
		RawProba:        []float64{round(1-s.highRisk, 3), s.highRisk},
		RiskFactors:     s.factors,
		Recommendations: recommendations(level, s.factors),
	}
}

func (s score) legacy() legacyResponse {
	level := s.level3()
	probs := map[string]float64{
		string(domain.RiskLow):    round((1-s.highRisk)*0.7, 3),
		string(domain.RiskMedium): round((1-s.highRisk)*0.3+s.highRisk*0.3, 3),
		string(domain.RiskHigh):   round(s.highRisk*0.7, 3),
	}
	confidence := probs[string(level)]
	base := map[domain.RiskLevel]float64{domain.RiskLow: 1, domain.RiskMedium: 2, domain.RiskHigh: 3}[level]
	return legacyResponse{
		RiskLevel:               string(level),
		SeverityScore:           round(base*confidence, 2),
		Confidence:              confidence,
		RiskFactors:             s.factors,
		Recommendations:         recommendations(level, s.factors),
		PredictionProbabilities: probs,
	}
}

func recommendations(level domain.RiskLevel, factors []string) []string {
	out := append([]string(nil), levelRecommendations[level]...)
	joined := strings.ToLower(strings.Join(factors, " "))
	if strings.Contains(joined, "night time") {
		out = append(out, "Carry a flashlight or use phone light")
	}
	if strings.Contains(joined, "weather") {
		out = append(out, "Wait for weather to improve if possible")
	}
	if len(out) > maxRecommendations {
		out = out[:maxRecommendations]
	}
	return out
}

// Respond scores form and encodes the answer in the given shape. Any shape
// other than legacy produces the binary answer.
func Respond(form domain.FormPayload, shape domain.Shape) domain.RawResponse {
	s := assess(form)
	var v any = s.binary()
	if shape == domain.ShapeLegacy {
		v = s.legacy()
	}
	b, _ := json.Marshal(v) //nolint:errcheck // fixed struct types always encode
	return b
}

func number(form domain.FormPayload, key string) (float64, bool) {
	switch v := form[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func text(form domain.FormPayload, key string) string {
	s, _ := form[key].(string)
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
