package query

import (
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortmode"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types/enums/sortorder"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
)

// PrepareSort puts the group fields first, in group order, followed by the remaining sort items.
// A group field keeps its own sort direction if it has one, otherwise the group's direction,
// defaulting to ascending.
func PrepareSort(sort []SortItem, groups []GroupItem) []SortItem {
	prepared := make([]SortItem, 0, len(sort)+len(groups))

	for _, group := range groups {
		item := SortItem{Field: group.Field, Dir: group.Dir}
		for _, sortItem := range sort {
			if sortItem.Field == group.Field && sortItem.Dir != 0 {
				item.Dir = sortItem.Dir
				break
			}
		}
		if item.Dir == 0 {
			item.Dir = SortAscending
		}
		prepared = append(prepared, item)
	}

SortItems:
	for _, sortItem := range sort {
		for _, group := range groups {
			if group.Field == sortItem.Field {
				continue SortItems
			}
		}
		prepared = append(prepared, sortItem)
	}

	return prepared
}

// CompileSort renders the sort items whose fields are owned by the given scope. Items on unknown
// fields are skipped. Multi-valued fields sort on their smallest value when ascending, and their
// largest when descending.
func (compiler Compiler) CompileSort(items []SortItem, scope fields.Scope) []dsl.SortClause {
	clauses := make([]dsl.SortClause, 0, len(items))

	for _, item := range items {
		field, ok := compiler.fields.Get(item.Field)
		if !ok || field.Scope != scope {
			continue
		}

		fieldSort := dsl.FieldSort{Order: sortorder.Asc, Missing: "_last", Mode: sortmode.Min}
		if item.Dir == SortDescending {
			fieldSort.Order = sortorder.Desc
			fieldSort.Mode = sortmode.Max
		}

		clauses = append(clauses, dsl.SortClause{field.FilterName: fieldSort})
	}

	return clauses
}
