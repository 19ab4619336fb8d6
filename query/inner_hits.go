package query

import (
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
)

// PlanInnerHits requests the nested objects and related documents of every hit, so that their
// fields can be materialized into rows. Nested paths below another nested path are requested
// inside the inner hits of their parent path. Each inner hits definition is filtered by the part
// of the root filter that applies to its scope.
func (compiler Compiler) PlanInnerHits(sort []SortItem, filter *dsl.Filter) map[string]dsl.InnerHits {
	innerHits := make(map[string]dsl.InnerHits)

	for _, path := range compiler.fields.NestedPaths() {
		if compiler.fields.ParentNestedPath(path) == "" {
			innerHits[path] = compiler.nestedInnerHits(path, sort, filter)
		}
	}

	for _, scope := range compiler.fields.RelatedTypes() {
		innerHits[scope.Path] = dsl.InnerHits{
			Type: map[string]dsl.InnerHitsDefinition{
				scope.Path: compiler.innerHitsDefinition(scope, sort, filter),
			},
		}
	}

	if len(innerHits) == 0 {
		return nil
	}
	return innerHits
}

func (compiler Compiler) nestedInnerHits(
	path string,
	sort []SortItem,
	filter *dsl.Filter,
) dsl.InnerHits {
	definition := compiler.innerHitsDefinition(fields.NestedScope(path), sort, filter)

	for _, childPath := range compiler.fields.NestedPaths() {
		if compiler.fields.ParentNestedPath(childPath) != path {
			continue
		}
		if definition.InnerHits == nil {
			definition.InnerHits = make(map[string]dsl.InnerHits)
		}
		definition.InnerHits[childPath] = compiler.nestedInnerHits(childPath, sort, filter)
	}

	return dsl.InnerHits{
		Path: map[string]dsl.InnerHitsDefinition{compiler.fields.FullPath(path): definition},
	}
}

func (compiler Compiler) innerHitsDefinition(
	scope fields.Scope,
	sort []SortItem,
	filter *dsl.Filter,
) dsl.InnerHitsDefinition {
	definition := dsl.InnerHitsDefinition{
		Size:   allDocuments,
		Sort:   compiler.CompileSort(sort, scope),
		Source: storageNames(compiler.fields.InScope(scope)),
	}

	if filter != nil {
		if projected, ok := compiler.ProjectFilter(*filter, scope); ok {
			definition.Query = dsl.FilteredBy(projected)
		}
	}

	return definition
}

// ProjectFilter keeps the parts of a compiled filter that apply inside the given scope: bool
// connectives are kept, nested and has_parent/has_child filters for the scope are unwrapped, and
// everything else is dropped. Returns false if nothing applies.
func (compiler Compiler) ProjectFilter(filter dsl.Filter, scope fields.Scope) (dsl.Filter, bool) {
	switch {
	case filter.Bool != nil:
		projected := dsl.BoolFilter{
			Must:    compiler.projectFilters(filter.Bool.Must, scope),
			Should:  compiler.projectFilters(filter.Bool.Should, scope),
			MustNot: compiler.projectFilters(filter.Bool.MustNot, scope),
		}
		if projected.IsEmpty() {
			return dsl.Filter{}, false
		}
		return dsl.Filter{Bool: &projected}, true
	case filter.Nested != nil:
		if scope.Kind == fields.ScopeNested &&
			filter.Nested.Path == compiler.fields.FullPath(scope.Path) {
			return filter.Nested.Filter, true
		}
	case filter.HasParent != nil:
		if scope.Kind == fields.ScopeParent && filter.HasParent.Type == scope.Path {
			return filter.HasParent.Filter, true
		}
	case filter.HasChild != nil:
		if scope.Kind == fields.ScopeChild && filter.HasChild.Type == scope.Path {
			return filter.HasChild.Filter, true
		}
	}

	return dsl.Filter{}, false
}

func (compiler Compiler) projectFilters(filters []dsl.Filter, scope fields.Scope) []dsl.Filter {
	var projected []dsl.Filter
	for _, filter := range filters {
		if projectedFilter, ok := compiler.ProjectFilter(filter, scope); ok {
			projected = append(projected, projectedFilter)
		}
	}
	return projected
}
