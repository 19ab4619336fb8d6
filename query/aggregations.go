package query

import (
	"fmt"
	"maps"

	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/wrap"
)

// CompileAggregates renders metric aggregates, keyed "{field}_{aggregate}". Aggregates on fields
// outside the given scope are wrapped in the aggregations needed to reach the field's scope.
func (compiler Compiler) CompileAggregates(
	items []AggregateItem,
	scope fields.Scope,
) (map[string]dsl.Aggregation, error) {
	aggs, err := compiler.compileAggregates(items, scope)
	return aggs, compilationError(err)
}

// CompileGroups renders one bucket aggregation "{field}_group" and one missing aggregation
// "{field}_missing" for the first group level, both holding the level's metric aggregates and the
// aggregations of the next group level.
func (compiler Compiler) CompileGroups(
	groups []GroupItem,
	scope fields.Scope,
) (map[string]dsl.Aggregation, error) {
	aggs, err := compiler.compileGroups(groups, scope)
	return aggs, compilationError(err)
}

func (compiler Compiler) compileAggregates(
	items []AggregateItem,
	scope fields.Scope,
) (map[string]dsl.Aggregation, error) {
	aggs := make(map[string]dsl.Aggregation)

	for _, item := range items {
		field, ok := compiler.fields.Get(item.Field)
		if !ok {
			return nil, fmt.Errorf("%w '%s' in aggregate", ErrUnknownField, item.Field)
		}

		metric, err := metricAggregation(item.Aggregate, field.AggName)
		if err != nil {
			return nil, wrap.Errorf(err, "invalid aggregate on field '%s'", item.Field)
		}

		key := item.Field + "_" + item.Aggregate.String()
		if err := compiler.addInScope(
			aggs, scope, field.Scope, map[string]dsl.Aggregation{key: metric},
		); err != nil {
			return nil, wrap.Errorf(err, "invalid aggregate on field '%s'", item.Field)
		}
	}

	return aggs, nil
}

func metricAggregation(kind AggregateKind, aggName string) (dsl.Aggregation, error) {
	target := &dsl.FieldAggregation{Field: aggName}

	switch kind {
	case AggregateCount:
		return dsl.Aggregation{Cardinality: target}, nil
	case AggregateMin:
		return dsl.Aggregation{Min: target}, nil
	case AggregateMax:
		return dsl.Aggregation{Max: target}, nil
	case AggregateSum:
		return dsl.Aggregation{Sum: target}, nil
	case AggregateAverage:
		return dsl.Aggregation{Avg: target}, nil
	case AggregateDateHistogram, AggregateHistogram:
		return dsl.Aggregation{}, fmt.Errorf(
			"%w: '%v' is only allowed on the field of its own group", ErrUnsupportedAggregation, kind,
		)
	default:
		return dsl.Aggregation{}, fmt.Errorf("%w %d", ErrUnsupportedAggregation, kind)
	}
}

func (compiler Compiler) compileGroups(
	groups []GroupItem,
	scope fields.Scope,
) (map[string]dsl.Aggregation, error) {
	aggs := make(map[string]dsl.Aggregation)
	if len(groups) == 0 {
		return aggs, nil
	}

	group := groups[0]
	field, ok := compiler.fields.Get(group.Field)
	if !ok {
		return nil, fmt.Errorf("%w '%s' in group", ErrUnknownField, group.Field)
	}

	// A bucket aggregate on the group's own field replaces the default terms bucket. String
	// fields always use terms.
	var bucketItem *AggregateItem
	var metricItems []AggregateItem
	for _, item := range group.Aggregates {
		if bucketItem == nil && item.Field == group.Field && item.Aggregate.IsBucket() &&
			field.Type != fields.TypeString {
			bucketItem = &item
			continue
		}
		metricItems = append(metricItems, item)
	}

	subAggs, err := compiler.compileAggregates(metricItems, field.Scope)
	if err != nil {
		return nil, wrap.Errorf(err, "invalid aggregates for group on field '%s'", group.Field)
	}

	deeperGroups, err := compiler.compileGroups(groups[1:], field.Scope)
	if err != nil {
		return nil, err
	}
	mergeAggregations(subAggs, deeperGroups)

	bucket := dsl.Aggregation{Aggs: subAggs}
	if bucketItem == nil {
		bucket.Terms = &dsl.TermsAggregation{Field: field.AggName, Size: allDocuments}
	} else {
		if bucketItem.Interval == nil {
			return nil, fmt.Errorf(
				"%w: '%v' group on field '%s' requires an interval",
				ErrUnsupportedAggregation,
				bucketItem.Aggregate,
				group.Field,
			)
		}

		histogram := &dsl.HistogramAggregation{Field: field.AggName, Interval: bucketItem.Interval}
		if bucketItem.Aggregate == AggregateDateHistogram {
			bucket.DateHistogram = histogram
		} else {
			bucket.Histogram = histogram
		}
	}

	missing := dsl.Aggregation{
		Missing: &dsl.FieldAggregation{Field: field.AggName},
		Aggs:    maps.Clone(subAggs),
	}

	if err := compiler.addInScope(aggs, scope, field.Scope, map[string]dsl.Aggregation{
		group.Field + "_group":   bucket,
		group.Field + "_missing": missing,
	}); err != nil {
		return nil, wrap.Errorf(err, "invalid group on field '%s'", group.Field)
	}

	return aggs, nil
}

type scopeHop struct {
	key         string
	aggregation dsl.Aggregation
}

// addInScope adds aggregations on fields of scope 'to' into target, which is evaluated in scope
// 'from'. Aggregations sharing a scope transition share the wrapping aggregations.
func (compiler Compiler) addInScope(
	target map[string]dsl.Aggregation,
	from fields.Scope,
	to fields.Scope,
	aggs map[string]dsl.Aggregation,
) error {
	hops, err := compiler.scopeHops(from, to)
	if err != nil {
		return err
	}

	current := target
	for _, hop := range hops {
		wrapper, ok := current[hop.key]
		if !ok {
			wrapper = hop.aggregation
		}
		if wrapper.Aggs == nil {
			wrapper.Aggs = make(map[string]dsl.Aggregation)
		}
		current[hop.key] = wrapper
		current = wrapper.Aggs
	}

	mergeAggregations(current, aggs)
	return nil
}

func (compiler Compiler) scopeHops(from fields.Scope, to fields.Scope) ([]scopeHop, error) {
	if from == to {
		return nil, nil
	}
	if to.Kind == fields.ScopeParent {
		return nil, fmt.Errorf(
			"%w: fields of parent type '%s' cannot be aggregated", ErrUnsupportedAggregation, to.Path,
		)
	}
	if from.IsRelatedType() {
		return nil, fmt.Errorf(
			"%w: cannot aggregate fields of %v inside %v", ErrUnsupportedAggregation, to, from,
		)
	}

	var fromPath, toPath string
	if from.Kind == fields.ScopeNested {
		fromPath = from.Path
	}
	if to.Kind == fields.ScopeNested {
		toPath = to.Path
	}

	var hops []scopeHop
	common := compiler.fields.CommonNestedPath(fromPath, toPath)

	if fromPath != common {
		reverse := scopeHop{
			key:         "root_reverse_nested",
			aggregation: dsl.Aggregation{ReverseNested: &dsl.ReverseNestedAggregation{}},
		}
		if common != "" {
			reverse.key = common + "_reverse_nested"
			reverse.aggregation.ReverseNested.Path = compiler.fields.FullPath(common)
		}
		hops = append(hops, reverse)
	}

	if toPath != common {
		hops = append(hops, scopeHop{
			key: toPath + "_nested",
			aggregation: dsl.Aggregation{
				Nested: &dsl.NestedAggregation{Path: compiler.fields.FullPath(toPath)},
			},
		})
	}

	if to.Kind == fields.ScopeChild {
		hops = append(hops, scopeHop{
			key:         to.Path + "_children",
			aggregation: dsl.Aggregation{Children: &dsl.ChildrenAggregation{Type: to.Path}},
		})
	}

	return hops, nil
}

// mergeAggregations adds source into target. Aggregations present in both (shared scope
// wrappers) get their sub-aggregations merged.
func mergeAggregations(target map[string]dsl.Aggregation, source map[string]dsl.Aggregation) {
	for key, aggregation := range source {
		existing, ok := target[key]
		if !ok {
			target[key] = aggregation
			continue
		}

		merged := existing
		merged.Aggs = maps.Clone(existing.Aggs)
		if merged.Aggs == nil {
			merged.Aggs = make(map[string]dsl.Aggregation)
		}
		mergeAggregations(merged.Aggs, aggregation.Aggs)
		target[key] = merged
	}
}
