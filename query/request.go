package query

import (
	"bytes"
	"encoding/json"

	"hermannm.dev/wrap"
)

// Request is the data request of a paging grid.
type Request struct {
	Skip      int             `json:"skip,omitempty"`
	Take      int             `json:"take,omitempty"`
	Sort      []SortItem      `json:"sort,omitempty"`
	Filter    FilterNode      `json:"filter,omitempty"`
	Aggregate []AggregateItem `json:"aggregate,omitempty"`
	Group     []GroupItem     `json:"group,omitempty"`
}

type SortItem struct {
	Field string        `json:"field"`
	Dir   SortDirection `json:"dir,omitempty"`
}

type AggregateItem struct {
	Field     string        `json:"field"`
	Aggregate AggregateKind `json:"aggregate"`
	// Bucket interval, for histogram kinds only.
	Interval any `json:"interval,omitempty"`
}

type GroupItem struct {
	Field      string          `json:"field"`
	Dir        SortDirection   `json:"dir,omitempty"`
	Aggregates []AggregateItem `json:"aggregates,omitempty"`
}

// IsHistogram reports whether the group asks for histogram buckets on its own field instead of
// terms buckets. String fields always use terms buckets, whatever the group asks for.
func (group GroupItem) IsHistogram() bool {
	for _, item := range group.Aggregates {
		if item.Field == group.Field && item.Aggregate.IsBucket() {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts sort and group as either a single object or an array, and any of the
// filter shapes accepted by ParseFilter.
func (request *Request) UnmarshalJSON(data []byte) error {
	var raw struct {
		Skip      int             `json:"skip"`
		Take      int             `json:"take"`
		Sort      json.RawMessage `json:"sort"`
		Filter    json.RawMessage `json:"filter"`
		Aggregate json.RawMessage `json:"aggregate"`
		Group     json.RawMessage `json:"group"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	parsed := Request{Skip: raw.Skip, Take: raw.Take}
	var err error

	if parsed.Sort, err = decodeOneOrMany[SortItem](raw.Sort); err != nil {
		return wrap.Error(err, "invalid sort in grid request")
	}
	if parsed.Aggregate, err = decodeOneOrMany[AggregateItem](raw.Aggregate); err != nil {
		return wrap.Error(err, "invalid aggregate in grid request")
	}
	if parsed.Group, err = decodeOneOrMany[GroupItem](raw.Group); err != nil {
		return wrap.Error(err, "invalid group in grid request")
	}
	if parsed.Filter, err = ParseFilter(raw.Filter); err != nil {
		return err
	}

	*request = parsed
	return nil
}

func decodeOneOrMany[T any](data json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var item T
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, err
	}
	return []T{item}, nil
}
