package model

import (
	"encoding/json"
	"fmt"
)

// Field names of a delay prediction request.
const (
	DistanceKM        = "distance_km"
	DurationMin       = "duration_min"
	OriginTemp        = "origin_temp"
	OriginWind        = "origin_wind"
	DestTemp          = "dest_temp"
	DestWind          = "dest_wind"
	AvgTempAlongRoute = "avg_temp_along_route"
	AvgWindAlongRoute = "avg_wind_along_route"
	MeanCondition     = "mean_condition"
	MaxCondition      = "max_condition"
	SevereCount       = "severe_count"
)

// RequiredFields lists every field a request must carry, in the order used
// when reporting missing fields.
var RequiredFields = []string{
	DistanceKM,
	DurationMin,
	OriginTemp,
	OriginWind,
	DestTemp,
	DestWind,
	AvgTempAlongRoute,
	AvgWindAlongRoute,
	MeanCondition,
	MaxCondition,
	SevereCount,
}

// Features is a decoded delay prediction request. Values keep their JSON
// representation (json.Number for numbers) until an estimator reads them.
type Features map[string]any

// Missing returns the required fields absent from f.
func (f Features) Missing() []string {
	var missing []string
	for _, name := range RequiredFields {
		if _, ok := f[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Float returns the numeric value of the named field. An absent field reads
// as def; a present value that is not a number is an error.
func (f Features) Float(name string, def float64) (float64, error) {
	v, ok := f[name]
	if !ok {
		return def, nil
	}
	switch n := v.(type) {
	case json.Number:
		x, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("field %s: %w", name, err)
		}
		return x, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("field %s: expected a number, got %s", name, describe(v))
	}
}

// Row returns the values of names in order. Unlike Float, absent fields are
// an error.
func (f Features) Row(names []string) ([]float64, error) {
	row := make([]float64, len(names))
	for i, name := range names {
		if _, ok := f[name]; !ok {
			return nil, fmt.Errorf("field %s: missing", name)
		}
		x, err := f.Float(name, 0)
		if err != nil {
			return nil, err
		}
		row[i] = x
	}
	return row, nil
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
