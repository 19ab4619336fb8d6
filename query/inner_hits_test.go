package query_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/gridsearch/query"
)

func TestPlanInnerHits(t *testing.T) {
	compiler := testCompiler(t, query.Options{})

	filter, err := compiler.CompileFilter(query.Predicate{
		Field: "addressCountry", Operator: query.OperatorEq, Value: "Bulgaria",
	})
	require.NoError(t, err)

	sort := []query.SortItem{
		{Field: "addressCity", Dir: query.SortAscending},
		{Field: "companyName", Dir: query.SortDescending},
	}
	innerHits := compiler.PlanInnerHits(sort, &filter)

	countryLeaf := leafFilter("addresses.country.lowercase:Bulgaria")
	want := map[string]dsl.InnerHits{
		"addresses": {Path: map[string]dsl.InnerHitsDefinition{
			"addresses": {
				Query: dsl.FilteredBy(mustFilter(mustFilter(countryLeaf))),
				Size:  10000,
				Sort: []dsl.SortClause{{"addresses.city.lowercase": {
					Order: sortAsc, Missing: "_last", Mode: modeMin,
				}}},
				Source: []string{"city", "country"},
				InnerHits: map[string]dsl.InnerHits{
					"addresses.telephones": {Path: map[string]dsl.InnerHitsDefinition{
						"addresses.telephones": {Size: 10000, Source: []string{"value"}},
					}},
				},
			},
		}},
		"person": {Type: map[string]dsl.InnerHitsDefinition{
			"person": {Size: 10000, Source: []string{"name"}},
		}},
		"kid": {Type: map[string]dsl.InnerHitsDefinition{
			"kid": {Size: 10000, Source: []string{"age"}},
		}},
	}

	if diff := cmp.Diff(want, innerHits, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("inner hits mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanInnerHitsKeysByNestedPath(t *testing.T) {
	compiler := query.NewCompiler(testFields(t, "organization"), query.Options{})

	innerHits := compiler.PlanInnerHits(nil, nil)

	addresses, ok := innerHits["addresses"]
	require.True(t, ok)
	definition, ok := addresses.Path["organization.addresses"]
	require.True(t, ok)
	require.Nil(t, definition.Query)

	telephones, ok := definition.InnerHits["addresses.telephones"]
	require.True(t, ok)
	require.Contains(t, telephones.Path, "organization.addresses.telephones")
	require.NotContains(t, innerHits, "addresses.telephones")
}

func TestProjectFilter(t *testing.T) {
	compiler := testCompiler(t, query.Options{})

	filter, err := compiler.CompileFilter(query.FilterGroup{
		Logic: query.LogicOr,
		Filters: []query.FilterNode{
			query.Predicate{Field: "companyName", Operator: query.OperatorEq, Value: "mgdis"},
			query.Predicate{Field: "motherName", Operator: query.OperatorStartsWith, Value: "ma"},
			query.FilterGroup{Filters: []query.FilterNode{
				query.Predicate{Field: "addressCity", Operator: query.OperatorMissing},
			}},
		},
	})
	require.NoError(t, err)

	projected, ok := compiler.ProjectFilter(filter, fields.ParentScope("person"))
	require.True(t, ok)
	want := dsl.Filter{Bool: &dsl.BoolFilter{Should: []dsl.Filter{leafFilter("name.lowercase:ma*")}}}
	if diff := cmp.Diff(want, projected); diff != "" {
		t.Fatalf("projected filter mismatch (-want +got):\n%s", diff)
	}

	projected, ok = compiler.ProjectFilter(filter, fields.NestedScope("addresses"))
	require.True(t, ok)
	want = dsl.Filter{Bool: &dsl.BoolFilter{Should: []dsl.Filter{
		{Bool: &dsl.BoolFilter{MustNot: []dsl.Filter{
			{Exists: &dsl.ExistsFilter{Field: "addresses.city"}},
		}}},
	}}}
	if diff := cmp.Diff(want, projected); diff != "" {
		t.Fatalf("projected filter mismatch (-want +got):\n%s", diff)
	}

	_, ok = compiler.ProjectFilter(filter, fields.ChildScope("kid"))
	require.False(t, ok)
}
