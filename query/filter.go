package query

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FilterNode is a node in a grid filter tree: either a Predicate or a FilterGroup.
type FilterNode interface {
	isFilterNode()
}

// Predicate is a filter on a single field.
type Predicate struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// FilterGroup combines its filters with the given logic.
type FilterGroup struct {
	Logic   Logic        `json:"logic"`
	Filters []FilterNode `json:"filters"`
}

func (Predicate) isFilterNode()   {}
func (FilterGroup) isFilterNode() {}

// ParseFilter decodes a grid filter tree. It accepts a predicate object, a {logic, filters}
// object, or a bare array of filters (combined with 'and'). A predicate without operator is an
// equality filter. Returns nil for an empty or null filter.
func ParseFilter(data []byte) (FilterNode, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '[':
		filters, err := parseFilterList(trimmed)
		if err != nil {
			return nil, err
		}
		return FilterGroup{Logic: LogicAnd, Filters: filters}, nil
	case '{':
		return parseFilterObject(trimmed)
	default:
		return nil, malformedFilter("expected object or array, got '%s'", trimmed)
	}
}

func parseFilterObject(data []byte) (FilterNode, error) {
	var raw struct {
		Field    string          `json:"field"`
		Operator json.RawMessage `json:"operator"`
		Value    any             `json:"value"`
		Logic    json.RawMessage `json:"logic"`
		Filters  json.RawMessage `json:"filters"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, malformedFilter("%v", err)
	}

	if raw.Logic != nil || raw.Filters != nil {
		group := FilterGroup{Logic: LogicAnd}
		if raw.Logic != nil {
			if err := group.Logic.UnmarshalJSON(raw.Logic); err != nil {
				return nil, malformedFilter("unsupported logic %s", raw.Logic)
			}
		}

		filters, err := parseFilterList(raw.Filters)
		if err != nil {
			return nil, err
		}
		group.Filters = filters
		return group, nil
	}

	if raw.Field == "" {
		return nil, malformedFilter("filter has neither field nor filters")
	}

	predicate := Predicate{Field: raw.Field, Operator: OperatorEq, Value: raw.Value}
	if raw.Operator != nil && !bytes.Equal(raw.Operator, []byte("null")) {
		if err := predicate.Operator.UnmarshalJSON(raw.Operator); err != nil {
			return nil, CompilationError{
				Err: fmt.Errorf("%w %s on field '%s'", ErrUnsupportedOperator, raw.Operator, raw.Field),
			}
		}
	}
	return predicate, nil
}

func parseFilterList(data []byte) ([]FilterNode, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var rawFilters []json.RawMessage
	if err := json.Unmarshal(trimmed, &rawFilters); err != nil {
		return nil, malformedFilter("filters must be an array")
	}

	filters := make([]FilterNode, 0, len(rawFilters))
	for _, rawFilter := range rawFilters {
		filter, err := ParseFilter(rawFilter)
		if err != nil {
			return nil, err
		}
		if filter != nil {
			filters = append(filters, filter)
		}
	}
	return filters, nil
}

func malformedFilter(format string, args ...any) error {
	return CompilationError{Err: fmt.Errorf("%w: "+format, append([]any{ErrMalformedFilter}, args...)...)}
}
