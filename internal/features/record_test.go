package features

import (
	"encoding/json"
	"testing"

	apperrors "go-housing-estimator/internal/errors"
)

func validRaw() map[string]any {
	return map[string]any{
		"longitude":          "-122.23",
		"latitude":           "37.88",
		"housing_median_age": "41",
		"total_rooms":        "880",
		"total_bedrooms":     "129",
		"population":         "322",
		"households":         "126",
		"median_income":      "8.3252",
		"ocean_proximity":    "NEAR BAY",
	}
}

func TestParseRecord_Valid(t *testing.T) {
	rec, err := ParseRecord(validRaw())
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if rec.Longitude != -122.23 || rec.Latitude != 37.88 {
		t.Errorf("Unexpected coordinates: %v, %v", rec.Longitude, rec.Latitude)
	}
	if rec.MedianIncome != 8.3252 {
		t.Errorf("Expected median_income 8.3252, got %v", rec.MedianIncome)
	}
	if rec.OceanProximity != CategoryNearBay {
		t.Errorf("Expected NEAR BAY, got %q", rec.OceanProximity)
	}
}

func TestParseRecord_TypedValues(t *testing.T) {
	raw := map[string]any{
		"longitude":          -122.23,
		"latitude":           float32(37.5),
		"housing_median_age": 41,
		"total_rooms":        int64(880),
		"total_bedrooms":     json.Number("129"),
		"population":         int32(322),
		"households":         " 126 ",
		"median_income":      8.3252,
		"ocean_proximity":    " INLAND ",
	}

	rec, err := ParseRecord(raw)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if rec.TotalBedrooms != 129 || rec.Households != 126 || rec.Latitude != 37.5 {
		t.Errorf("Unexpected parsed values: %+v", rec)
	}
	if rec.OceanProximity != CategoryInland {
		t.Errorf("Expected trimmed category, got %q", rec.OceanProximity)
	}
}

func TestParseRecord_EveryFieldRequired(t *testing.T) {
	for _, field := range FieldNames() {
		t.Run(field, func(t *testing.T) {
			raw := validRaw()
			delete(raw, field)

			_, err := ParseRecord(raw)
			if !apperrors.IsType(err, apperrors.ErrorTypeMalformedInput) {
				t.Fatalf("Expected malformed input error, got: %v", err)
			}
			appErr, _ := apperrors.As(err)
			if appErr.Field != field {
				t.Errorf("Expected field %q, got %q", field, appErr.Field)
			}
		})
	}
}

func TestParseRecord_CorruptValues(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value any
	}{
		{"non-numeric string", "median_income", "lots"},
		{"empty string", "population", ""},
		{"whitespace only", "households", "   "},
		{"NaN string", "total_rooms", "NaN"},
		{"infinite string", "latitude", "+Inf"},
		{"hex float string", "longitude", "0x1p3"},
		{"signed hex float string", "total_bedrooms", "-0X10"},
		{"hex float number", "population", json.Number("0x1p3")},
		{"boolean", "longitude", true},
		{"nil", "housing_median_age", nil},
		{"numeric category", "ocean_proximity", 3},
		{"empty category", "ocean_proximity", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validRaw()
			raw[tt.field] = tt.value

			_, err := ParseRecord(raw)
			if !apperrors.IsType(err, apperrors.ErrorTypeMalformedInput) {
				t.Fatalf("Expected malformed input error, got: %v", err)
			}
		})
	}
}

func TestParseRecord_FirstFailureWins(t *testing.T) {
	raw := validRaw()
	raw["median_income"] = "x"
	raw["latitude"] = "y"

	_, err := ParseRecord(raw)
	appErr, ok := apperrors.As(err)
	if !ok {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Field != FieldLatitude {
		t.Errorf("Expected first failing field latitude, got %q", appErr.Field)
	}
}

func TestParseRecord_UnknownCategoryAccepted(t *testing.T) {
	raw := validRaw()
	raw["ocean_proximity"] = "MOON BASE"

	rec, err := ParseRecord(raw)
	if err != nil {
		t.Fatalf("Expected unknown category to parse, got: %v", err)
	}
	if rec.OceanProximity != "MOON BASE" {
		t.Errorf("Expected category to be kept, got %q", rec.OceanProximity)
	}
}

func TestRecord_Key(t *testing.T) {
	a, _ := ParseRecord(validRaw())
	b, _ := ParseRecord(validRaw())
	if a.Key() != b.Key() {
		t.Error("Expected identical records to share a key")
	}

	raw := validRaw()
	raw["median_income"] = "8.3253"
	c, _ := ParseRecord(raw)
	if a.Key() == c.Key() {
		t.Error("Expected different records to have different keys")
	}
}
