package result

import "hermannm.dev/gridsearch/query"

// Page is the grid result of a single data request.
type Page struct {
	Total      int64      `json:"total"`
	Data       []Row      `json:"data"`
	Aggregates Aggregates `json:"aggregates"`
	Groups     []Group    `json:"groups"`
}

// Parse builds the grid result of a search response, grouping rows by the given group levels.
func (materializer Materializer) Parse(response Response, groups []query.GroupItem) (Page, error) {
	rows := materializer.Rows(response.Hits.Hits)

	grouped, err := materializer.Groups(rows, response.Aggregations, groups)
	if err != nil {
		return Page{}, err
	}

	return Page{
		Total:      int64(response.Hits.Total),
		Data:       rows,
		Aggregates: MaterializeAggregates(response.Aggregations),
		Groups:     grouped,
	}, nil
}
