package result_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"hermannm.dev/gridsearch/query"
	"hermannm.dev/gridsearch/result"
)

func TestGroupsOnNestedField(t *testing.T) {
	materializer := testMaterializer(t)

	response := decodeResponse(t, `{
		"hits": {"total": 2, "hits": [
			{
				"_id": "1",
				"_source": {"companyName": "Telerik"},
				"inner_hits": {"addresses": {"hits": {"hits": [
					{"_source": {"country": "Bulgaria"}},
					{"_source": {"country": "USA"}}
				]}}}
			},
			{
				"_id": "2",
				"_source": {"companyName": "Progress"},
				"inner_hits": {"addresses": {"hits": {"hits": [
					{"_source": {"country": "Bulgaria"}}
				]}}}
			}
		]},
		"aggregations": {
			"addresses_nested": {
				"doc_count": 3,
				"addressCountry_group": {"buckets": [
					{"key": "Bulgaria", "doc_count": 2},
					{"key": "USA", "doc_count": 1}
				]},
				"addressCountry_missing": {"doc_count": 0}
			}
		}
	}`)

	page, err := materializer.Parse(response, []query.GroupItem{{Field: "addressCountry"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)

	want := []result.Group{
		{
			Field: "addressCountry",
			Value: "Bulgaria",
			Items: []result.Row{
				{"id": "1", "companyName": "Telerik", "addressCountry": "Bulgaria"},
				{"id": "2", "companyName": "Progress", "addressCountry": "Bulgaria"},
			},
			Aggregates: result.Aggregates{"addressCountry": {Count: float(2)}},
		},
		{
			Field:      "addressCountry",
			Value:      "USA",
			Items:      []result.Row{{"id": "1", "companyName": "Telerik", "addressCountry": "USA"}},
			Aggregates: result.Aggregates{"addressCountry": {Count: float(1)}},
		},
	}

	if diff := cmp.Diff(want, page.Groups); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupsOnDateHistogram(t *testing.T) {
	materializer := testMaterializer(t)

	rows := []result.Row{
		{"id": "1", "birthDate": time.Date(2016, time.March, 4, 0, 0, 0, 0, time.UTC)},
		{"id": "2", "birthDate": time.Date(2014, time.June, 1, 0, 0, 0, 0, time.UTC)},
		{"id": "3"},
		{"id": "4", "birthDate": time.Date(2016, time.December, 31, 23, 0, 0, 0, time.UTC)},
	}

	response := decodeResponse(t, `{
		"hits": {"total": 0, "hits": []},
		"aggregations": {
			"birthDate_group": {"buckets": [
				{"key_as_string": "2014-01-01T00:00:00.000Z", "key": 1388534400000, "doc_count": 1},
				{"key_as_string": "2015-01-01T00:00:00.000Z", "key": 1420070400000, "doc_count": 0},
				{"key_as_string": "2016-01-01T00:00:00.000Z", "key": 1451606400000, "doc_count": 2,
					"birthDate_max": {"value": 1483225200000}}
			]},
			"birthDate_missing": {"doc_count": 1}
		}
	}`)

	groups, err := materializer.Groups(rows, response.Aggregations, []query.GroupItem{{
		Field: "birthDate",
		Aggregates: []query.AggregateItem{
			{Field: "birthDate", Aggregate: query.AggregateDateHistogram, Interval: "year"},
		},
	}})
	require.NoError(t, err)

	want := []result.Group{
		{
			Field:      "birthDate",
			Value:      time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC),
			Items:      []result.Row{rows[0], rows[3]},
			Aggregates: result.Aggregates{"birthDate": {Count: float(2), Max: float(1483225200000)}},
		},
		{
			Field:      "birthDate",
			Value:      time.Date(2014, time.January, 1, 0, 0, 0, 0, time.UTC),
			Items:      []result.Row{rows[1]},
			Aggregates: result.Aggregates{"birthDate": {Count: float(1)}},
		},
		{
			Field:      "birthDate",
			Value:      nil,
			Items:      []result.Row{rows[2]},
			Aggregates: result.Aggregates{"birthDate": {Count: float(1)}},
		},
	}

	if diff := cmp.Diff(want, groups); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupsTwoLevels(t *testing.T) {
	materializer := testMaterializer(t)

	rows := []result.Row{
		{"id": "1", "companyName": "MGDIS", "siblings": 3.0},
		{"id": "2", "companyName": "MGDIS", "siblings": 3.0},
		{"id": "3", "companyName": "MGDIS"},
	}

	response := decodeResponse(t, `{
		"hits": {"total": 3, "hits": []},
		"aggregations": {
			"companyName_group": {"buckets": [{
				"key": "MGDIS",
				"doc_count": 3,
				"siblings_group": {"buckets": [{"key": 3, "doc_count": 2}]},
				"siblings_missing": {"doc_count": 1}
			}]},
			"companyName_missing": {
				"doc_count": 0,
				"siblings_group": {"buckets": []},
				"siblings_missing": {"doc_count": 0}
			}
		}
	}`)

	groups, err := materializer.Groups(
		rows, response.Aggregations, []query.GroupItem{{Field: "companyName"}, {Field: "siblings"}},
	)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	group := groups[0]
	require.Equal(t, "MGDIS", group.Value)
	require.True(t, group.HasSubgroups)
	require.Nil(t, group.Items)
	require.Len(t, group.Subgroups, 2)
	require.Equal(t, 3.0, group.Subgroups[0].Value)
	require.Len(t, group.Subgroups[0].Items, 2)
	require.Nil(t, group.Subgroups[1].Value)
	require.Equal(t, []result.Row{rows[2]}, group.Subgroups[1].Items)

	groupJSON, err := json.Marshal(group)
	require.NoError(t, err)

	var decoded struct {
		Field        string            `json:"field"`
		HasSubgroups bool              `json:"hasSubgroups"`
		Items        []json.RawMessage `json:"items"`
	}
	require.NoError(t, json.Unmarshal(groupJSON, &decoded))
	require.Equal(t, "companyName", decoded.Field)
	require.True(t, decoded.HasSubgroups)
	require.Len(t, decoded.Items, 2)
	require.Contains(t, string(decoded.Items[0]), `"hasSubgroups":false`)
}

func TestGroupsReflattenSplitRows(t *testing.T) {
	materializer := testMaterializer(t)

	rows := result.SplitRow(result.Row{"tags": []any{"x1", "x2"}, "phones": []any{"y1"}})

	response := decodeResponse(t, `{
		"hits": {"total": 1, "hits": []},
		"aggregations": {
			"tags_group": {"buckets": [
				{"key": "x1", "doc_count": 1,
					"phones_group": {"buckets": [{"key": "y1", "doc_count": 1}]},
					"phones_missing": {"doc_count": 0}},
				{"key": "x2", "doc_count": 1,
					"phones_group": {"buckets": [{"key": "y1", "doc_count": 1}]},
					"phones_missing": {"doc_count": 0}}
			]},
			"tags_missing": {"doc_count": 0},
			"phones_group": {"buckets": [{"key": "y1", "doc_count": 2}]},
			"phones_missing": {"doc_count": 0}
		}
	}`)

	for _, levels := range [][]query.GroupItem{
		{{Field: "tags"}},
		{{Field: "phones"}},
		{{Field: "tags"}, {Field: "phones"}},
	} {
		groups, err := materializer.Groups(rows, response.Aggregations, levels)
		require.NoError(t, err)

		if diff := cmp.Diff(rows, flattenGroups(groups)); diff != "" {
			t.Fatalf("rows regrouped by %v mismatch (-want +got):\n%s", levels, diff)
		}
	}
}

func flattenGroups(groups []result.Group) []result.Row {
	var rows []result.Row
	for _, group := range groups {
		if group.HasSubgroups {
			rows = append(rows, flattenGroups(group.Subgroups)...)
		} else {
			rows = append(rows, group.Items...)
		}
	}
	return rows
}

func TestGroupsErrors(t *testing.T) {
	materializer := testMaterializer(t)

	aggregations := decodeResponse(t, `{
		"hits": {"total": 0, "hits": []},
		"aggregations": {
			"companyName_group": {"buckets": [{"key": "MGDIS", "doc_count": 1}]},
			"companyName_missing": {"doc_count": 0}
		}
	}`).Aggregations

	_, err := materializer.Groups(
		[]result.Row{{"companyName": "Other"}}, aggregations, []query.GroupItem{{Field: "companyName"}},
	)
	require.ErrorIs(t, err, result.ErrNoGroupFound)
	require.ErrorAs(t, err, new(result.MaterializationError))

	_, err = materializer.Groups(
		[]result.Row{{"siblings": 1.0}}, aggregations, []query.GroupItem{{Field: "siblings"}},
	)
	require.ErrorIs(t, err, result.ErrMissingGroupAggregation)

	_, err = materializer.Groups(nil, aggregations, []query.GroupItem{{Field: "unknown"}})
	require.ErrorIs(t, err, result.ErrUnknownGroupField)

	groups, err := materializer.Groups([]result.Row{{"companyName": "x"}}, aggregations, nil)
	require.NoError(t, err)
	require.Empty(t, groups)
}

func TestGroupsTermsBucketsRequireEqualValue(t *testing.T) {
	materializer := testMaterializer(t)

	aggregations := decodeResponse(t, `{
		"hits": {"total": 1, "hits": []},
		"aggregations": {
			"siblings_group": {"buckets": [{"key": 1, "doc_count": 1}, {"key": 2, "doc_count": 1}]},
			"siblings_missing": {"doc_count": 0}
		}
	}`).Aggregations
	rows := []result.Row{{"id": "x", "siblings": 1.5}}

	_, err := materializer.Groups(rows, aggregations, []query.GroupItem{{Field: "siblings"}})
	require.ErrorIs(t, err, result.ErrNoGroupFound)
	require.ErrorAs(t, err, new(result.MaterializationError))

	groups, err := materializer.Groups(rows, aggregations, []query.GroupItem{{
		Field:      "siblings",
		Aggregates: []query.AggregateItem{{Field: "siblings", Aggregate: query.AggregateHistogram, Interval: 1}},
	}})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, 1.0, groups[0].Value)
	require.Equal(t, rows, groups[0].Items)
}

func TestGroupsKeyedBucketsLeaveResponseUntouched(t *testing.T) {
	materializer := testMaterializer(t)

	aggregations := decodeResponse(t, `{
		"hits": {"total": 1, "hits": []},
		"aggregations": {
			"companyName_group": {"buckets": {"MGDIS": {"doc_count": 1}}},
			"companyName_missing": {"doc_count": 0}
		}
	}`).Aggregations
	rows := []result.Row{{"id": "1", "companyName": "MGDIS"}}

	groups, err := materializer.Groups(rows, aggregations, []query.GroupItem{{Field: "companyName"}})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, "MGDIS", groups[0].Value)

	bucket := aggregations["companyName_group"].(map[string]any)["buckets"].(map[string]any)["MGDIS"]
	require.Equal(t, map[string]any{"doc_count": 1.0}, bucket)
}

func TestParseTotal(t *testing.T) {
	materializer := testMaterializer(t)

	for _, responseJSON := range []string{
		`{"hits": {"total": 5, "hits": []}}`,
		`{"hits": {"total": {"value": 5, "relation": "eq"}, "hits": []}}`,
	} {
		page, err := materializer.Parse(decodeResponse(t, responseJSON), nil)
		require.NoError(t, err)
		require.Equal(t, int64(5), page.Total)
		require.Empty(t, page.Data)
		require.NotNil(t, page.Data)
		require.Empty(t, page.Groups)
	}
}

func TestParseAggregates(t *testing.T) {
	materializer := testMaterializer(t)

	page, err := materializer.Parse(decodeResponse(t, `{
		"hits": {"total": 1, "hits": [{"_id": "1", "_source": {"siblings": 10}}]},
		"aggregations": {"siblings_max": {"value": 10}}
	}`), nil)
	require.NoError(t, err)
	require.Equal(t, 10.0, *page.Aggregates["siblings"].Max)
	require.Equal(t, []result.Row{{"id": "1", "siblings": 10.0}}, page.Data)
}
