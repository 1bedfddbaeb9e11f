// Package domain models SafeStride road-accident risk predictions.
//
// # Data Source
//
// Predictions come from the SafeStride prediction API (POST /api/predict).
// The request body is a flat JSON object of feature values collected by the
// form (coordinates, weather, road and temporal fields). The response body is
// opaque JSON whose layout has changed over the life of the backend.
//
// # Response Shapes
//
// Binary classifier (current backend):
//
//	{"prediction": "High Risk", "label": 1, "probability": 0.83,
//	 "raw_proba": [0.17, 0.83], "risk_factors": ["wet_road", "night"],
//	 "recommendations": ["slow down"]}
//
//	risk level:    "High" when prediction contains "High", otherwise "Low".
//	               Medium is never produced by this shape.
//	confidence:    probability.
//	distribution:  {"Low Risk": raw_proba[0], "High Risk": raw_proba[1]}.
//	severity:      not supplied; set from the risk level (Low 0, High 1).
//
// Legacy 3-class model:
//
//	{"risk_level": "Medium", "severity_score": 0.45, "confidence": 0.71,
//	 "risk_factors": ["speed"] | {"speed": 0.4},
//	 "recommendations": ["reduce speed"],
//	 "prediction_probabilities": {"Low": 0.2, "Medium": 0.71, "High": 0.09}}
//
//	Values pass through unchanged. severity_score is on a 0-1 scale in newer
//	payloads and 0-3 in older ones; it is not rescaled.
//
// Shape detection looks at which keys are present (see [DetectShape]) and
// routes to one decoder per shape. A payload with no recognized keys decodes
// to a Low assessment with zeroed scores.
//
// # Risk Factor Weights
//
// Binary responses name risk factors without weights. Each name is given a
// synthetic display weight of max(0, 0.7 - 0.1*index) so charts keep the
// backend's ordering. These weights are a ranking signal only; see
// [SyntheticFactorWeights].
//
// # Identity
//
// Assessment IDs are UUIDv7 strings (time-ordered, unique) and timestamps
// come from the package clock, both assigned at normalization time. The
// backend never supplies either.
package domain
