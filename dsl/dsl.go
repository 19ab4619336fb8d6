// Package dsl holds the engine-native query document types produced by query compilation.
package dsl

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortmode"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
)

// SearchBody is the body of a search request.
type SearchBody struct {
	From      int                    `json:"from,omitempty"`
	Size      int                    `json:"size,omitempty"`
	Sort      []SortClause           `json:"sort"`
	Query     *Query                 `json:"query,omitempty"`
	Aggs      map[string]Aggregation `json:"aggs"`
	InnerHits map[string]InnerHits   `json:"inner_hits,omitempty"`
	Source    []string               `json:"_source"`
}

type Query struct {
	Filtered *FilteredQuery `json:"filtered,omitempty"`
}

type FilteredQuery struct {
	Filter Filter `json:"filter"`
}

// FilteredBy wraps a filter in a filtered query.
func FilteredBy(filter Filter) *Query {
	return &Query{Filtered: &FilteredQuery{Filter: filter}}
}

// Filter is a filter clause. Exactly one field is set.
type Filter struct {
	Bool      *BoolFilter     `json:"bool,omitempty"`
	Query     *LeafQuery      `json:"query,omitempty"`
	Nested    *NestedFilter   `json:"nested,omitempty"`
	HasParent *RelationFilter `json:"has_parent,omitempty"`
	HasChild  *RelationFilter `json:"has_child,omitempty"`
	Exists    *ExistsFilter   `json:"exists,omitempty"`
}

type BoolFilter struct {
	Must    []Filter `json:"must,omitempty"`
	Should  []Filter `json:"should,omitempty"`
	MustNot []Filter `json:"must_not,omitempty"`
}

// IsEmpty is true if the bool filter has no clauses.
func (filter BoolFilter) IsEmpty() bool {
	return len(filter.Must) == 0 && len(filter.Should) == 0 && len(filter.MustNot) == 0
}

type LeafQuery struct {
	QueryString QueryString `json:"query_string"`
}

type QueryString struct {
	Query           string `json:"query"`
	AnalyzeWildcard bool   `json:"analyze_wildcard"`
}

// QueryStringFilter wraps a query-string expression in a leaf filter.
func QueryStringFilter(query string) Filter {
	return Filter{Query: &LeafQuery{QueryString: QueryString{Query: query, AnalyzeWildcard: true}}}
}

type NestedFilter struct {
	Path   string `json:"path"`
	Filter Filter `json:"filter"`
}

// RelationFilter is the body of has_parent and has_child filters.
type RelationFilter struct {
	Type   string `json:"type"`
	Filter Filter `json:"filter"`
}

type ExistsFilter struct {
	Field string `json:"field"`
}

// SortClause maps a field name to its sort options. It always holds a single entry.
type SortClause map[string]FieldSort

type FieldSort struct {
	Order   sortorder.SortOrder `json:"order"`
	Missing string              `json:"missing"`
	Mode    sortmode.SortMode   `json:"mode"`
}

// Aggregation is an aggregation clause. Exactly one of the aggregation kinds is set, optionally
// with sub-aggregations.
type Aggregation struct {
	Terms         *TermsAggregation         `json:"terms,omitempty"`
	DateHistogram *HistogramAggregation     `json:"date_histogram,omitempty"`
	Histogram     *HistogramAggregation     `json:"histogram,omitempty"`
	Missing       *FieldAggregation         `json:"missing,omitempty"`
	Nested        *NestedAggregation        `json:"nested,omitempty"`
	ReverseNested *ReverseNestedAggregation `json:"reverse_nested,omitempty"`
	Children      *ChildrenAggregation      `json:"children,omitempty"`
	Cardinality   *FieldAggregation         `json:"cardinality,omitempty"`
	Min           *FieldAggregation         `json:"min,omitempty"`
	Max           *FieldAggregation         `json:"max,omitempty"`
	Sum           *FieldAggregation         `json:"sum,omitempty"`
	Avg           *FieldAggregation         `json:"avg,omitempty"`

	Aggs map[string]Aggregation `json:"aggs,omitempty"`
}

type FieldAggregation struct {
	Field string `json:"field"`
}

type TermsAggregation struct {
	Field string `json:"field"`
	Size  int    `json:"size"`
}

type HistogramAggregation struct {
	Field    string `json:"field"`
	Interval any    `json:"interval"`
}

type NestedAggregation struct {
	Path string `json:"path"`
}

type ReverseNestedAggregation struct {
	// Empty for the root document.
	Path string `json:"path,omitempty"`
}

type ChildrenAggregation struct {
	Type string `json:"type"`
}

// InnerHits requests matching nested objects (Path) or related documents (Type), keyed by full
// nested path or document type.
type InnerHits struct {
	Path map[string]InnerHitsDefinition `json:"path,omitempty"`
	Type map[string]InnerHitsDefinition `json:"type,omitempty"`
}

type InnerHitsDefinition struct {
	Query     *Query               `json:"query,omitempty"`
	Size      int                  `json:"size"`
	Sort      []SortClause         `json:"sort,omitempty"`
	Source    []string             `json:"_source,omitempty"`
	InnerHits map[string]InnerHits `json:"inner_hits,omitempty"`
}
