package features

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "go-housing-estimator/internal/errors"
)

// Request field names, in column order.
const (
	FieldLongitude        = "longitude"
	FieldLatitude         = "latitude"
	FieldHousingMedianAge = "housing_median_age"
	FieldTotalRooms       = "total_rooms"
	FieldTotalBedrooms    = "total_bedrooms"
	FieldPopulation       = "population"
	FieldHouseholds       = "households"
	FieldMedianIncome     = "median_income"
	FieldOceanProximity   = "ocean_proximity"
)

// Known ocean_proximity categories
const (
	CategoryLessThan1HOcean = "<1H OCEAN"
	CategoryInland          = "INLAND"
	CategoryIsland          = "ISLAND"
	CategoryNearBay         = "NEAR BAY"
	CategoryNearOcean       = "NEAR OCEAN"
)

// NumericFields lists the numeric request fields in column order
var NumericFields = []string{
	FieldLongitude,
	FieldLatitude,
	FieldHousingMedianAge,
	FieldTotalRooms,
	FieldTotalBedrooms,
	FieldPopulation,
	FieldHouseholds,
	FieldMedianIncome,
}

// Categories lists the ocean_proximity values seen at training time
var Categories = []string{
	CategoryLessThan1HOcean,
	CategoryInland,
	CategoryIsland,
	CategoryNearBay,
	CategoryNearOcean,
}

// FieldNames returns every request field, numeric first
func FieldNames() []string {
	names := make([]string, 0, len(NumericFields)+1)
	names = append(names, NumericFields...)
	return append(names, FieldOceanProximity)
}

// Record is one validated inference request. Build it with ParseRecord.
type Record struct {
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	HousingMedianAge float64 `json:"housing_median_age"`
	TotalRooms       float64 `json:"total_rooms"`
	TotalBedrooms    float64 `json:"total_bedrooms"`
	Population       float64 `json:"population"`
	Households       float64 `json:"households"`
	MedianIncome     float64 `json:"median_income"`
	OceanProximity   string  `json:"ocean_proximity"`
}

// ParseRecord converts raw request fields into a Record. Fields are checked
// in column order and the first failure is returned as a malformed input
// error. Unknown keys are ignored.
func ParseRecord(raw map[string]any) (Record, error) {
	values := make([]float64, len(NumericFields))
	for i, name := range NumericFields {
		v, err := parseNumber(name, raw)
		if err != nil {
			return Record{}, err
		}
		values[i] = v
	}

	category, err := parseCategory(raw)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Longitude:        values[0],
		Latitude:         values[1],
		HousingMedianAge: values[2],
		TotalRooms:       values[3],
		TotalBedrooms:    values[4],
		Population:       values[5],
		Households:       values[6],
		MedianIncome:     values[7],
		OceanProximity:   category,
	}, nil
}

// Value returns the numeric field with the given request name
func (r Record) Value(name string) (float64, bool) {
	switch name {
	case FieldLongitude:
		return r.Longitude, true
	case FieldLatitude:
		return r.Latitude, true
	case FieldHousingMedianAge:
		return r.HousingMedianAge, true
	case FieldTotalRooms:
		return r.TotalRooms, true
	case FieldTotalBedrooms:
		return r.TotalBedrooms, true
	case FieldPopulation:
		return r.Population, true
	case FieldHouseholds:
		return r.Households, true
	case FieldMedianIncome:
		return r.MedianIncome, true
	}
	return 0, false
}

// Key is an exact, order-stable encoding of the record
func (r Record) Key() string {
	var b strings.Builder
	for _, name := range NumericFields {
		v, _ := r.Value(name)
		b.WriteString(strconv.FormatUint(math.Float64bits(v), 16))
		b.WriteByte('|')
	}
	b.WriteString(r.OceanProximity)
	return b.String()
}

func parseNumber(name string, raw map[string]any) (float64, error) {
	value, ok := raw[name]
	if !ok || value == nil {
		return 0, apperrors.NewMalformedInputError(name, fmt.Sprintf("missing required field %q", name), nil)
	}

	var (
		v   float64
		err error
	)
	switch t := value.(type) {
	case float64:
		v = t
	case float32:
		v = float64(t)
	case int:
		v = float64(t)
	case int32:
		v = float64(t)
	case int64:
		v = float64(t)
	case json.Number:
		v, err = parseDecimal(string(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, apperrors.NewMalformedInputError(name, fmt.Sprintf("missing required field %q", name), nil)
		}
		v, err = parseDecimal(s)
	default:
		return 0, apperrors.NewMalformedInputError(name, fmt.Sprintf("field %q must be a number, got %T", name, value), nil)
	}
	if err != nil {
		return 0, apperrors.NewMalformedInputError(name, fmt.Sprintf("field %q is not a valid number", name), err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, apperrors.NewMalformedInputError(name, fmt.Sprintf("field %q must be a finite number", name), nil)
	}
	return v, nil
}

// parseDecimal accepts decimal notation only; Go's hex float form is rejected
func parseDecimal(s string) (float64, error) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("hexadecimal notation %q is not supported", s)
	}
	return strconv.ParseFloat(s, 64)
}

func parseCategory(raw map[string]any) (string, error) {
	value, ok := raw[FieldOceanProximity]
	if !ok || value == nil {
		return "", apperrors.NewMalformedInputError(FieldOceanProximity, fmt.Sprintf("missing required field %q", FieldOceanProximity), nil)
	}
	s, ok := value.(string)
	if !ok {
		return "", apperrors.NewMalformedInputError(FieldOceanProximity, fmt.Sprintf("field %q must be a string, got %T", FieldOceanProximity, value), nil)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperrors.NewMalformedInputError(FieldOceanProximity, fmt.Sprintf("missing required field %q", FieldOceanProximity), nil)
	}
	return s, nil
}
