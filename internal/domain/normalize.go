package domain

import "strings"

// Probability labels used for binary responses.
const (
	LabelLowRisk  = "Low Risk"
	LabelHighRisk = "High Risk"
)

// binarySeverity aligns the severity of a binary response with its risk
// level, since that shape carries no severity of its own.
var binarySeverity = map[RiskLevel]float64{
	RiskLow:    0,
	RiskMedium: 0.5,
	RiskHigh:   1,
}

// binaryResponse is the decoded form of the binary classifier response.
type binaryResponse struct {
	Prediction      string
	Probability     float64
	RawProba        []float64 // [pLow, pHigh]; nil when absent
	RiskFactors     []string
	Recommendations []string
}

// legacyResponse is the decoded form of the legacy 3-class response.
type legacyResponse struct {
	RiskLevel       string
	SeverityScore   float64
	Confidence      float64
	RiskFactors     []RiskFactor
	Recommendations []string
	Probabilities   map[string]float64
}

// DetectShape reports which response layout a body follows. Binary keys win
// when both layouts are present.
func DetectShape(raw RawResponse) Shape {
	return detectShape(parseFields(raw))
}

func detectShape(f fields) Shape {
	switch {
	case f.has("prediction", "probability", "raw_proba", "label"):
		return ShapeBinary
	case f.has("risk_level", "severity_score", "prediction_probabilities", "confidence"):
		return ShapeLegacy
	default:
		return ShapeUnknown
	}
}

// Normalize converts one prediction API response into a RiskAssessment.
// It never fails: missing or malformed fields take zero values. Apart from
// ID and Timestamp the result depends only on raw.
func Normalize(raw RawResponse) RiskAssessment {
	f := parseFields(raw)

	var a RiskAssessment
	switch shape := detectShape(f); shape {
	case ShapeBinary:
		a = decodeBinary(f).assessment()
	case ShapeLegacy:
		a = decodeLegacy(f).assessment()
	default:
		a = emptyAssessment()
	}

	a.ID = newID()
	a.Timestamp = Now()
	return a
}

func emptyAssessment() RiskAssessment {
	return RiskAssessment{
		RiskLevel:               RiskLow,
		ProbabilityDistribution: map[string]float64{},
		RiskFactors:             []RiskFactor{},
		Recommendations:         []string{},
		Shape:                   ShapeUnknown,
	}
}

func decodeBinary(f fields) binaryResponse {
	return binaryResponse{
		Prediction:      f.str("prediction"),
		Probability:     f.float("probability"),
		RawProba:        f.floats("raw_proba"),
		RiskFactors:     f.strings("risk_factors"),
		Recommendations: f.strings("recommendations"),
	}
}

func (r binaryResponse) assessment() RiskAssessment {
	level := RiskLow
	if strings.Contains(r.Prediction, "High") {
		level = RiskHigh
	}

	dist := map[string]float64{}
	if r.RawProba != nil {
		dist[LabelLowRisk] = indexOrZero(r.RawProba, 0)
		dist[LabelHighRisk] = indexOrZero(r.RawProba, 1)
	}

	return RiskAssessment{
		RiskLevel:               level,
		SeverityScore:           binarySeverity[level],
		Confidence:              r.Probability,
		ProbabilityDistribution: dist,
		RiskFactors:             SyntheticFactorWeights(r.RiskFactors),
		Recommendations:         r.Recommendations,
		Shape:                   ShapeBinary,
		Prediction:              r.Prediction,
	}
}

func decodeLegacy(f fields) legacyResponse {
	r := legacyResponse{
		RiskLevel:       f.str("risk_level"),
		SeverityScore:   f.float("severity_score"),
		Confidence:      f.float("confidence"),
		Recommendations: f.strings("recommendations"),
		Probabilities:   f.floatMap("prediction_probabilities"),
	}

	if names, weights, ok := f.orderedFloats("risk_factors"); ok {
		r.RiskFactors = make([]RiskFactor, len(names))
		for i := range names {
			r.RiskFactors[i] = RiskFactor{Name: names[i], Weight: weights[i]}
		}
	} else {
		r.RiskFactors = SyntheticFactorWeights(f.strings("risk_factors"))
	}
	return r
}

func (r legacyResponse) assessment() RiskAssessment {
	return RiskAssessment{
		RiskLevel:               ParseRiskLevel(r.RiskLevel),
		SeverityScore:           r.SeverityScore,
		Confidence:              r.Confidence,
		ProbabilityDistribution: r.Probabilities,
		RiskFactors:             r.RiskFactors,
		Recommendations:         r.Recommendations,
		Shape:                   ShapeLegacy,
	}
}

func indexOrZero(vals []float64, i int) float64 {
	if i < len(vals) {
		return vals[i]
	}
	return 0
}
