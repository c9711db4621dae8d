package models

import "time"

// PredictionResult is the outcome of one request. Exactly one of
// PredictedPrice and ErrorMessage is set.
type PredictionResult struct {
	PredictedPrice *float64 `json:"predicted_price,omitempty"`
	ErrorMessage   string   `json:"error_message,omitempty"`
	ErrorType      string   `json:"error_type,omitempty"`
}

// Success reports whether the result carries a price
func (r PredictionResult) Success() bool {
	return r.PredictedPrice != nil
}

// PriceResult builds a successful result
func PriceResult(price float64) PredictionResult {
	return PredictionResult{PredictedPrice: &price}
}

// ErrorResult builds a failed result
func ErrorResult(errorType, message string) PredictionResult {
	return PredictionResult{ErrorMessage: message, ErrorType: errorType}
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SchemaResponse describes the fields a prediction request takes
type SchemaResponse struct {
	NumericFields  []string `json:"numeric_fields"`
	CategoryField  string   `json:"category_field"`
	Categories     []string `json:"categories"`
	FeatureColumns []string `json:"feature_columns"`
	Version        string   `json:"version"`
}

// HealthResponse reports the loaded artifacts
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	ArtifactVersion  string    `json:"artifact_version,omitempty"`
	ModelKind        string    `json:"model_kind,omitempty"`
	ArtifactLoadedAt time.Time `json:"artifact_loaded_at,omitempty"`
}

// ReloadResponse is returned by the admin reload endpoint
type ReloadResponse struct {
	PreviousVersion string `json:"previous_version"`
	Version         string `json:"version"`
}
