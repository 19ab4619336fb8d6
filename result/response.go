package result

import (
	"bytes"
	"encoding/json"
)

// Response is the part of a search response needed to build grid results.
type Response struct {
	Hits         Hits           `json:"hits"`
	Aggregations map[string]any `json:"aggregations,omitempty"`
}

type Hits struct {
	Total Total `json:"total"`
	Hits  []Hit `json:"hits"`
}

type Hit struct {
	ID        string               `json:"_id"`
	Source    map[string]any       `json:"_source,omitempty"`
	Fields    map[string]any       `json:"fields,omitempty"`
	InnerHits map[string]InnerHits `json:"inner_hits,omitempty"`
}

type InnerHits struct {
	Hits Hits `json:"hits"`
}

// Total is the total hit count. It decodes both the plain number of older engine versions and
// the {"value", "relation"} object of newer ones.
type Total int64

func (total *Total) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) != 0 && trimmed[0] == '{' {
		var totalObject struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &totalObject); err != nil {
			return err
		}
		*total = Total(totalObject.Value)
		return nil
	}

	var value int64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return err
	}
	*total = Total(value)
	return nil
}
