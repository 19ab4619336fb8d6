package result

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cast"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/gridsearch/query"
	"hermannm.dev/wrap"
)

// Group is one group of a grouped grid result. A group holds either rows (Items) or, when
// HasSubgroups is set, the groups of the next group level (Subgroups).
type Group struct {
	Field        string
	Value        any
	Items        []Row
	Subgroups    []Group
	Aggregates   Aggregates
	HasSubgroups bool
}

func (group Group) MarshalJSON() ([]byte, error) {
	var items any = group.Items
	if group.HasSubgroups {
		items = group.Subgroups
	}

	return json.Marshal(struct {
		Field        string     `json:"field"`
		Value        any        `json:"value"`
		Items        any        `json:"items"`
		Aggregates   Aggregates `json:"aggregates"`
		HasSubgroups bool       `json:"hasSubgroups"`
	}{
		Field:        group.Field,
		Value:        group.Value,
		Items:        items,
		Aggregates:   group.Aggregates,
		HasSubgroups: group.HasSubgroups,
	})
}

// Groups distributes rows into the groups described by the "{field}_group" and "{field}_missing"
// aggregations of each group level. Groups are ordered by their first row, with the group of rows
// missing the field last. Groups without rows are left out.
func (materializer Materializer) Groups(
	rows []Row,
	aggregations map[string]any,
	levels []query.GroupItem,
) ([]Group, error) {
	groups, err := materializer.groupRows(rows, aggregations, levels)
	if err != nil {
		return nil, MaterializationError{Err: err}
	}
	if groups == nil {
		groups = []Group{}
	}
	return groups, nil
}

type groupCandidate struct {
	group Group
	// Sub-aggregations of the bucket, holding the next group level.
	aggregations map[string]any
	items        []Row
}

func (materializer Materializer) groupRows(
	rows []Row,
	aggregations map[string]any,
	levels []query.GroupItem,
) ([]Group, error) {
	if len(levels) == 0 {
		return nil, nil
	}

	fieldKey := levels[0].Field
	field, ok := materializer.fields.Get(fieldKey)
	if !ok {
		return nil, fmt.Errorf("%w '%s'", ErrUnknownGroupField, fieldKey)
	}
	histogram := levels[0].IsHistogram() && field.Type != fields.TypeString

	bucketAggregation, missingAggregation, ok := findGroupAggregations(aggregations, fieldKey)
	if !ok {
		return nil, fmt.Errorf("%w for field '%s'", ErrMissingGroupAggregation, fieldKey)
	}

	candidates := bucketCandidates(field, bucketAggregation)
	missing := &groupCandidate{
		group: Group{
			Field:      fieldKey,
			Value:      nil,
			Aggregates: groupAggregates(field, missingAggregation),
		},
		aggregations: missingAggregation,
	}

	var order []*groupCandidate
	for _, row := range rows {
		candidate, err := placeRow(field, row, candidates, missing, histogram)
		if err != nil {
			return nil, err
		}

		if len(candidate.items) == 0 && candidate != missing {
			order = append(order, candidate)
		}
		candidate.items = append(candidate.items, row)
	}
	if len(missing.items) != 0 {
		order = append(order, missing)
	}

	groups := make([]Group, 0, len(order))
	for _, candidate := range order {
		group := candidate.group
		group.Items = candidate.items

		if len(levels) > 1 {
			subgroups, err := materializer.groupRows(
				candidate.items, candidate.aggregations, levels[1:],
			)
			if err != nil {
				return nil, wrap.Errorf(err, "failed to group rows of group '%v'", group.Value)
			}
			group.Subgroups = subgroups
			group.HasSubgroups = true
			group.Items = nil
		}

		groups = append(groups, group)
	}

	return groups, nil
}

// Rows go into the bucket with an equal value. Histogram buckets hold values from their key up to
// the next bucket's key, so on histogram levels a value without an equal bucket goes into the last
// bucket whose key does not exceed it. Buckets are expected in ascending key order.
func placeRow(
	field fields.Field,
	row Row,
	candidates []*groupCandidate,
	missing *groupCandidate,
	histogram bool,
) (*groupCandidate, error) {
	value, ok := row[field.Key]
	if !ok || value == nil {
		return missing, nil
	}

	for _, candidate := range candidates {
		if valuesEqual(candidate.group.Value, value) {
			return candidate, nil
		}
	}

	if target, ok := rangeKey(value); ok && histogram {
		var placement *groupCandidate
		for _, candidate := range candidates {
			if bucketKey, ok := rangeKey(candidate.group.Value); ok && bucketKey <= target {
				placement = candidate
			}
		}
		if placement != nil {
			return placement, nil
		}
	}

	return nil, fmt.Errorf("%w for value '%v' of field '%s'", ErrNoGroupFound, value, field.Key)
}

func valuesEqual(bucketValue any, rowValue any) bool {
	switch bucketValue := bucketValue.(type) {
	case time.Time:
		rowTime, ok := rowValue.(time.Time)
		return ok && bucketValue.Equal(rowTime)
	case float64:
		rowNumber, ok := rowValue.(float64)
		return ok && bucketValue == rowNumber
	case string:
		rowText, ok := rowValue.(string)
		return ok && bucketValue == rowText
	case bool:
		rowBool, ok := rowValue.(bool)
		return ok && bucketValue == rowBool
	default:
		return false
	}
}

func rangeKey(value any) (float64, bool) {
	switch value := value.(type) {
	case time.Time:
		return float64(value.UnixMilli()), true
	case float64:
		return value, true
	default:
		return 0, false
	}
}

// Finds the group and missing aggregations of a field, looking inside scope wrappers.
func findGroupAggregations(
	aggregations map[string]any,
	fieldKey string,
) (bucket map[string]any, missing map[string]any, ok bool) {
	bucket, bucketOK := aggregations[fieldKey+"_group"].(map[string]any)
	missing, missingOK := aggregations[fieldKey+"_missing"].(map[string]any)
	if bucketOK && missingOK {
		return bucket, missing, true
	}

	keys := make([]string, 0, len(aggregations))
	for key := range aggregations {
		if isWrapperKey(key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		if wrapper, isMap := aggregations[key].(map[string]any); isMap {
			if bucket, missing, ok := findGroupAggregations(wrapper, fieldKey); ok {
				return bucket, missing, true
			}
		}
	}

	return nil, nil, false
}

func bucketCandidates(field fields.Field, bucketAggregation map[string]any) []*groupCandidate {
	var buckets []map[string]any
	switch rawBuckets := bucketAggregation["buckets"].(type) {
	case []any:
		for _, rawBucket := range rawBuckets {
			if bucket, ok := rawBucket.(map[string]any); ok {
				buckets = append(buckets, bucket)
			}
		}
	case map[string]any:
		keys := make([]string, 0, len(rawBuckets))
		for key := range rawBuckets {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			if bucket, ok := rawBuckets[key].(map[string]any); ok {
				if _, hasKey := bucket["key"]; !hasKey {
					bucket = maps.Clone(bucket)
					bucket["key"] = key
				}
				buckets = append(buckets, bucket)
			}
		}
	}

	candidates := make([]*groupCandidate, 0, len(buckets))
	for _, bucket := range buckets {
		candidates = append(candidates, &groupCandidate{
			group: Group{
				Field:      field.Key,
				Value:      bucketValue(field, bucket),
				Aggregates: groupAggregates(field, bucket),
			},
			aggregations: bucket,
		})
	}
	return candidates
}

// Converts a bucket key to the row value type of the field.
func bucketValue(field fields.Field, bucket map[string]any) any {
	key := bucket["key"]
	keyAsString, hasKeyAsString := bucket["key_as_string"].(string)

	switch field.Type {
	case fields.TypeDate:
		if hasKeyAsString {
			if date, err := cast.ToTimeE(keyAsString); err == nil {
				return date
			}
		}
		if date, err := parseDate(key); err == nil {
			return date
		}
	case fields.TypeNumber:
		if number, err := cast.ToFloat64E(key); err == nil {
			return number
		}
	case fields.TypeBoolean:
		if hasKeyAsString {
			key = keyAsString
		}
		if boolean, err := cast.ToBoolE(key); err == nil {
			return boolean
		}
	case fields.TypeString:
		if text, err := cast.ToStringE(key); err == nil {
			return text
		}
	}

	return key
}

// The document count of a bucket is the count aggregate of the group field.
func groupAggregates(field fields.Field, bucket map[string]any) Aggregates {
	aggregates := MaterializeAggregates(bucket)

	values := aggregates[field.Key]
	if docCount, err := cast.ToFloat64E(bucket["doc_count"]); err == nil {
		values.Count = &docCount
	}
	aggregates[field.Key] = values

	return aggregates
}
