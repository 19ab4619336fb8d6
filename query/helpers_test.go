package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/gridsearch/query"
)

func testFields(t *testing.T, mappingKey string) fields.Fields {
	t.Helper()

	registry, err := fields.Build(fields.Model{
		ESMappingKey:      mappingKey,
		ESStringSubFields: fields.SubFields{Filter: "lowercase", Agg: "raw"},
		Fields: map[string]fields.Config{
			"companyName":    {Type: fields.TypeString},
			"siblings":       {Type: fields.TypeNumber},
			"birthDate":      {Type: fields.TypeDate},
			"active":         {Type: fields.TypeBoolean},
			"addressCountry": {Type: fields.TypeString, ESName: "country", ESNestedPath: "addresses"},
			"addressCity":    {Type: fields.TypeString, ESName: "city", ESNestedPath: "addresses"},
			"telephone": {
				Type: fields.TypeString, ESName: "value", ESNestedPath: "addresses.telephones",
			},
			"motherName": {Type: fields.TypeString, ESName: "name", ESParentType: "person"},
			"childAge":   {Type: fields.TypeNumber, ESName: "age", ESChildType: "kid"},
			"retiredDays": {
				Type:     fields.TypeDate,
				ESName:   "retirementDate",
				Duration: fields.DurationBeforeToday,
			},
			"contractDays": {
				Type:     fields.TypeDate,
				ESName:   "contractEnd",
				Duration: fields.DurationAfterToday,
			},
		},
	})
	require.NoError(t, err)
	return registry
}

var fixedNow = time.Date(2020, time.June, 15, 13, 30, 0, 0, time.UTC)

func testCompiler(t *testing.T, options query.Options) query.Compiler {
	t.Helper()
	if options.Now == nil {
		options.Now = func() time.Time { return fixedNow }
	}
	return query.NewCompiler(testFields(t, ""), options)
}

func leafFilter(queryString string) dsl.Filter {
	return dsl.QueryStringFilter(queryString)
}

func mustFilter(filters ...dsl.Filter) dsl.Filter {
	return dsl.Filter{Bool: &dsl.BoolFilter{Must: filters}}
}

// Counts query-string and exists nodes in a filter tree.
func countLeaves(filter dsl.Filter) int {
	switch {
	case filter.Query != nil, filter.Exists != nil:
		return 1
	case filter.Bool != nil:
		count := 0
		for _, filters := range [][]dsl.Filter{
			filter.Bool.Must, filter.Bool.Should, filter.Bool.MustNot,
		} {
			for _, child := range filters {
				count += countLeaves(child)
			}
		}
		return count
	case filter.Nested != nil:
		return countLeaves(filter.Nested.Filter)
	case filter.HasParent != nil:
		return countLeaves(filter.HasParent.Filter)
	case filter.HasChild != nil:
		return countLeaves(filter.HasChild.Filter)
	default:
		return 0
	}
}
