package result

import (
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"
	"hermannm.dev/devlog/log"
	"hermannm.dev/gridsearch/fields"
)

// Row is a flat grid row, keyed by field key. Top-level rows also hold the hit ID under "id".
type Row map[string]any

// Materializer builds grid results from search responses. It holds no mutable state and may be
// used concurrently.
type Materializer struct {
	fields fields.Fields
}

func NewMaterializer(registry fields.Fields) Materializer {
	return Materializer{fields: registry}
}

// Rows builds grid rows from search hits. Nested objects and related documents returned as inner
// hits are joined with their hit, giving one row per combination, and fields holding several
// values are split into one row per value.
func (materializer Materializer) Rows(hits []Hit) []Row {
	rows := make([]Row, 0, len(hits))
	for _, hit := range hits {
		for _, row := range materializer.hitRows(hit, fields.RootScope) {
			rows = append(rows, SplitRow(row)...)
		}
	}
	return rows
}

func (materializer Materializer) hitRows(hit Hit, scope fields.Scope) []Row {
	row := make(Row)
	if scope.IsRoot() {
		row["id"] = hit.ID
	}

	for _, field := range materializer.fields.InScope(scope) {
		if value, ok := fieldValue(field, readHitValues(hit, field.StorageName)); ok {
			row[field.Key] = value
		}
	}

	rows := []Row{row}

	innerHitsKeys := make([]string, 0, len(hit.InnerHits))
	for key := range hit.InnerHits {
		innerHitsKeys = append(innerHitsKeys, key)
	}
	slices.Sort(innerHitsKeys)

	for _, key := range innerHitsKeys {
		innerScope, ok := materializer.innerHitsScope(key)
		if !ok {
			log.Debug("ignoring inner hits without known fields", slog.String("innerHits", key))
			continue
		}

		var innerRows []Row
		for _, innerHit := range hit.InnerHits[key].Hits.Hits {
			innerRows = append(innerRows, materializer.hitRows(innerHit, innerScope)...)
		}

		// A hit without matching nested objects or related documents still yields its own row.
		if len(innerRows) == 0 {
			continue
		}
		rows = crossRows(rows, innerRows)
	}

	return rows
}

// Inner hits are keyed by nested path, or by document type for parent/child documents.
func (materializer Materializer) innerHitsScope(key string) (fields.Scope, bool) {
	if materializer.fields.IsNestedPath(key) {
		return fields.NestedScope(key), true
	}
	for _, scope := range materializer.fields.RelatedTypes() {
		if scope.Path == key {
			return scope, true
		}
	}
	return fields.Scope{}, false
}

func crossRows(outerRows []Row, innerRows []Row) []Row {
	rows := make([]Row, 0, len(outerRows)*len(innerRows))
	for _, outer := range outerRows {
		for _, inner := range innerRows {
			row := maps.Clone(outer)
			maps.Copy(row, inner)
			rows = append(rows, row)
		}
	}
	return rows
}

// SplitRow expands a row holding list values into one row per combination of values, e.g.
// {a: [1, 2], b: [3]} becomes {a: 1, b: 3} and {a: 2, b: 3}.
func SplitRow(row Row) []Row {
	var listKeys []string
	for key, value := range row {
		if _, ok := value.([]any); ok {
			listKeys = append(listKeys, key)
		}
	}
	if len(listKeys) == 0 {
		return []Row{row}
	}
	slices.Sort(listKeys)

	rows := []Row{maps.Clone(row)}
	for _, key := range listKeys {
		values := row[key].([]any)
		if len(values) == 0 {
			for _, partial := range rows {
				delete(partial, key)
			}
			continue
		}

		expanded := make([]Row, 0, len(rows)*len(values))
		for _, partial := range rows {
			for _, value := range values {
				split := maps.Clone(partial)
				split[key] = value
				expanded = append(expanded, split)
			}
		}
		rows = expanded
	}

	return rows
}

// Reads every value at the given dotted path, from the hit's source if present, else from its
// fields. Arrays are allowed at any point of the path.
func readHitValues(hit Hit, path string) []any {
	segments := strings.Split(path, ".")

	if hit.Source != nil {
		if values := collectValues(hit.Source, segments); len(values) != 0 {
			return values
		}
	}

	if hit.Fields != nil {
		if value, ok := hit.Fields[path]; ok {
			return collectValues(value, nil)
		}
		return collectValues(hit.Fields, segments)
	}

	return nil
}

func collectValues(value any, segments []string) []any {
	switch value := value.(type) {
	case nil:
		return nil
	case []any:
		var values []any
		for _, element := range value {
			values = append(values, collectValues(element, segments)...)
		}
		return values
	case map[string]any:
		if len(segments) == 0 {
			return []any{value}
		}
		return collectValues(value[segments[0]], segments[1:])
	default:
		if len(segments) == 0 {
			return []any{value}
		}
		return nil
	}
}

// Several values are kept as a list for multi-valued fields, to be split later. Other string
// fields join their values by line, and other types keep the first value.
func fieldValue(field fields.Field, values []any) (any, bool) {
	switch len(values) {
	case 0:
		return nil, false
	case 1:
		return coerceValue(field, values[0]), true
	}

	coerced := make([]any, len(values))
	for i, value := range values {
		coerced[i] = coerceValue(field, value)
	}

	if field.MultiValued {
		return coerced, true
	}

	if field.Type == fields.TypeString {
		lines := make([]string, len(coerced))
		for i, value := range coerced {
			lines[i] = cast.ToString(value)
		}
		return strings.Join(lines, "\n"), true
	}

	return coerced[0], true
}

func coerceValue(field fields.Field, value any) any {
	switch field.Type {
	case fields.TypeString:
		if text, err := cast.ToStringE(value); err == nil {
			return text
		}
	case fields.TypeNumber:
		if number, err := cast.ToFloat64E(value); err == nil {
			return number
		}
	case fields.TypeBoolean:
		if boolean, err := cast.ToBoolE(value); err == nil {
			return boolean
		}
	case fields.TypeDate:
		if date, err := parseDate(value); err == nil {
			return date
		}
	}

	log.Debug(
		"keeping value that does not match its field type",
		slog.String("field", field.Key),
		slog.Any("value", value),
	)
	return value
}

// Dates are either formatted strings or epoch milliseconds.
func parseDate(value any) (time.Time, error) {
	if text, ok := value.(string); ok {
		return cast.ToTimeE(text)
	}

	millis, err := cast.ToInt64E(value)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis).UTC(), nil
}
