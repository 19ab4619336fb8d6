package result

import (
	"strings"

	"github.com/spf13/cast"
)

type AggregateValues struct {
	Count   *float64 `json:"count,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Sum     *float64 `json:"sum,omitempty"`
	Average *float64 `json:"average,omitempty"`
}

// Aggregates holds the aggregate values of each field, keyed by field key.
type Aggregates map[string]AggregateValues

var metricSuffixes = []string{"_count", "_min", "_max", "_sum", "_average"}

// Aggregations with these suffixes only change the scope of the aggregations below them.
var wrapperSuffixes = []string{"_nested", "_filter", "_children"}

// MaterializeAggregates collects metric aggregations keyed "{field}_{aggregate}", including those
// inside scope wrappers. Bucket aggregations are not searched.
func MaterializeAggregates(aggregations map[string]any) Aggregates {
	aggregates := make(Aggregates)
	collectAggregates(aggregates, aggregations)
	return aggregates
}

func collectAggregates(aggregates Aggregates, aggregations map[string]any) {
	for key, rawAggregation := range aggregations {
		aggregation, ok := rawAggregation.(map[string]any)
		if !ok {
			continue
		}

		if isWrapperKey(key) {
			collectAggregates(aggregates, aggregation)
			continue
		}

		for _, suffix := range metricSuffixes {
			fieldKey, ok := strings.CutSuffix(key, suffix)
			if !ok {
				continue
			}

			value, err := cast.ToFloat64E(aggregation["value"])
			if aggregation["value"] == nil || err != nil {
				break
			}

			values := aggregates[fieldKey]
			switch suffix {
			case "_count":
				values.Count = &value
			case "_min":
				values.Min = &value
			case "_max":
				values.Max = &value
			case "_sum":
				values.Sum = &value
			case "_average":
				values.Average = &value
			}
			aggregates[fieldKey] = values
			break
		}
	}
}

func isWrapperKey(key string) bool {
	for _, suffix := range wrapperSuffixes {
		if strings.HasSuffix(key, suffix) {
			return true
		}
	}
	return false
}
