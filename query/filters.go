package query

import (
	"fmt"
	"time"

	"github.com/spf13/cast"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/wrap"
)

// CompileFilter translates a grid filter tree into an engine filter.
func (compiler Compiler) CompileFilter(node FilterNode) (dsl.Filter, error) {
	var group FilterGroup
	switch node := dereferenceFilterNode(node).(type) {
	case FilterGroup:
		group = node
	case Predicate:
		group = FilterGroup{Logic: LogicAnd, Filters: []FilterNode{node}}
	default:
		return dsl.Filter{}, malformedFilter("unrecognized filter node %T", node)
	}

	filter, err := compiler.compileFilterGroup(group)
	return filter, compilationError(err)
}

func dereferenceFilterNode(node FilterNode) FilterNode {
	switch node := node.(type) {
	case *FilterGroup:
		if node != nil {
			return *node
		}
	case *Predicate:
		if node != nil {
			return *node
		}
	default:
		return node
	}
	return nil
}

// compiledLeaf is the outcome of compiling a single predicate: either a predicateLeaf or a
// structuralExclusion.
type compiledLeaf interface {
	isCompiledLeaf()
}

type predicateLeaf struct {
	filter dsl.Filter
}

// structuralExclusion matches documents that must be excluded at the enclosing bool level, for
// predicates that cannot be expressed inside a nested or related document scope.
type structuralExclusion struct {
	filter dsl.Filter
}

func (predicateLeaf) isCompiledLeaf()       {}
func (structuralExclusion) isCompiledLeaf() {}

func (compiler Compiler) compileFilterGroup(group FilterGroup) (dsl.Filter, error) {
	logic := group.Logic
	if logic == 0 {
		logic = LogicAnd
	} else if !logic.IsValid() {
		return dsl.Filter{}, malformedFilter("unsupported logic %d", logic)
	}

	var children []dsl.Filter
	var exclusions []dsl.Filter
	// Position in children of the nested filter batching the leaves of each nested path.
	nestedFilterIndexes := make(map[string]int)

	for _, child := range group.Filters {
		switch child := dereferenceFilterNode(child).(type) {
		case nil:
			continue
		case FilterGroup:
			compiled, err := compiler.compileFilterGroup(child)
			if err != nil {
				return dsl.Filter{}, err
			}
			children = append(children, compiled)
		case Predicate:
			field, ok := compiler.fields.Get(child.Field)
			if !ok {
				return dsl.Filter{}, fmt.Errorf("%w '%s' in filter", ErrUnknownField, child.Field)
			}

			leaf, err := compiler.compilePredicate(child, field)
			if err != nil {
				return dsl.Filter{}, wrap.Errorf(err, "failed to compile filter on field '%s'", field.Key)
			}

			switch leaf := leaf.(type) {
			case structuralExclusion:
				exclusions = append(exclusions, leaf.filter)
			case predicateLeaf:
				switch field.Scope.Kind {
				case fields.ScopeNested:
					index, ok := nestedFilterIndexes[field.NestedPath]
					if !ok {
						index = len(children)
						nestedFilterIndexes[field.NestedPath] = index
						children = append(children, dsl.Filter{Nested: &dsl.NestedFilter{
							Path:   field.FullNestedPath,
							Filter: dsl.Filter{Bool: &dsl.BoolFilter{}},
						}})
					}
					nestedBool := children[index].Nested.Filter.Bool
					if logic == LogicOr {
						nestedBool.Should = append(nestedBool.Should, leaf.filter)
					} else {
						nestedBool.Must = append(nestedBool.Must, leaf.filter)
					}
				case fields.ScopeParent:
					children = append(children, dsl.Filter{HasParent: &dsl.RelationFilter{
						Type: field.Scope.Path, Filter: leaf.filter,
					}})
				case fields.ScopeChild:
					children = append(children, dsl.Filter{HasChild: &dsl.RelationFilter{
						Type: field.Scope.Path, Filter: leaf.filter,
					}})
				default:
					children = append(children, leaf.filter)
				}
			}
		default:
			return dsl.Filter{}, malformedFilter("unrecognized filter node %T", child)
		}
	}

	boolFilter := &dsl.BoolFilter{MustNot: exclusions}
	if logic == LogicOr {
		boolFilter.Should = children
	} else {
		boolFilter.Must = children
	}
	return dsl.Filter{Bool: boolFilter}, nil
}

func (compiler Compiler) compilePredicate(predicate Predicate, field fields.Field) (compiledLeaf, error) {
	operator := predicate.Operator
	if operator == 0 {
		operator = OperatorEq
	}
	if !operator.IsValid() {
		return nil, fmt.Errorf("%w %d", ErrUnsupportedOperator, operator)
	}

	if operator == OperatorMissing && !field.Scope.IsRoot() {
		return structuralExclusion{filter: existsInScope(field)}, nil
	}

	value := predicate.Value
	if field.Duration != 0 && !operator.isValueless() {
		var err error
		if value, operator, err = compiler.resolveDuration(field, operator, value); err != nil {
			return nil, err
		}
	}

	queryString, err := compiler.renderPredicate(field, operator, value)
	if err != nil {
		return nil, err
	}
	return predicateLeaf{filter: dsl.QueryStringFilter(queryString)}, nil
}

func (compiler Compiler) renderPredicate(
	field fields.Field,
	operator Operator,
	value any,
) (string, error) {
	name := field.FilterName
	if operator == OperatorSearch {
		name = field.SearchName
	}
	name = EscapeQueryString(name)

	switch operator {
	case OperatorExists:
		if field.Type == fields.TypeString {
			return fmt.Sprintf(`_exists_:%s AND NOT(%s:"")`, name, name), nil
		}
		return "_exists_:" + name, nil
	case OperatorMissing:
		if field.Type == fields.TypeString {
			return fmt.Sprintf(`_missing_:%s OR (%s:"")`, name, name), nil
		}
		return "_missing_:" + name, nil
	}

	if value == nil {
		return "", fmt.Errorf("%w for operator '%v'", ErrMissingValue, operator)
	}

	text, err := valueText(field, value)
	if err != nil {
		return "", err
	}
	if operator == OperatorSearch {
		text = EscapeSearchText(text)
	} else {
		text = EscapeQueryString(text)
	}

	var predicate string
	switch operator {
	case OperatorEq, OperatorSearch:
		predicate = name + ":" + text
	case OperatorLt:
		predicate = name + ":<" + text
	case OperatorLte:
		predicate = name + ":<=" + text
	case OperatorGt:
		predicate = name + ":>" + text
	case OperatorGte:
		predicate = name + ":>=" + text
	case OperatorNeq:
		predicate = "NOT (" + name + ":" + text + ")"
	case OperatorContains:
		predicate = "(" + name + ":*" + text + "*)"
	case OperatorDoesNotContain:
		predicate = "NOT (" + name + ":*" + text + "*)"
	case OperatorStartsWith:
		predicate = name + ":" + text + "*"
	case OperatorEndsWith:
		predicate = name + ":*" + text
	default:
		return "", fmt.Errorf("%w '%v'", ErrUnsupportedOperator, operator)
	}

	if compiler.options.MissingBooleanAsFalse && operator == OperatorEq && value == false {
		predicate += " OR _missing_:" + name
	}

	return predicate, nil
}

// Dates are rendered as UTC ISO-8601 timestamps with milliseconds.
const isoTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

func valueText(field fields.Field, value any) (string, error) {
	switch value := value.(type) {
	case time.Time:
		return value.UTC().Format(isoTimestampLayout), nil
	case string:
		if field.Type == fields.TypeDate {
			if date, err := cast.ToTimeE(value); err == nil {
				return date.UTC().Format(isoTimestampLayout), nil
			}
		}
		return value, nil
	}

	text, err := cast.ToStringE(value)
	if err != nil {
		return "", wrap.Errorf(err, "unsupported filter value '%v'", value)
	}
	return text, nil
}

func existsInScope(field fields.Field) dsl.Filter {
	switch field.Scope.Kind {
	case fields.ScopeNested:
		return dsl.Filter{Nested: &dsl.NestedFilter{
			Path: field.FullNestedPath,
			Filter: dsl.Filter{
				Exists: &dsl.ExistsFilter{Field: field.FullNestedPath + "." + field.StorageName},
			},
		}}
	case fields.ScopeParent:
		return dsl.Filter{HasParent: &dsl.RelationFilter{
			Type:   field.Scope.Path,
			Filter: dsl.Filter{Exists: &dsl.ExistsFilter{Field: field.StorageName}},
		}}
	case fields.ScopeChild:
		return dsl.Filter{HasChild: &dsl.RelationFilter{
			Type:   field.Scope.Path,
			Filter: dsl.Filter{Exists: &dsl.ExistsFilter{Field: field.StorageName}},
		}}
	default:
		return dsl.Filter{Exists: &dsl.ExistsFilter{Field: field.FilterName}}
	}
}

// Duration field values are a number of days, resolved against the start of the current day.
// Filtering on days before today inverts the comparison: more days means an earlier date.
func (compiler Compiler) resolveDuration(
	field fields.Field,
	operator Operator,
	value any,
) (any, Operator, error) {
	if value == nil {
		return nil, operator, nil
	}

	days, err := cast.ToFloat64E(value)
	if err != nil {
		return nil, operator, wrap.Errorf(err, "invalid day count '%v' for duration field", value)
	}

	now := compiler.options.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayCount := int(days)

	switch field.Duration {
	case fields.DurationBeforeToday:
		switch operator {
		case OperatorLt:
			operator = OperatorGt
		case OperatorLte:
			operator = OperatorGte
		case OperatorGt:
			operator = OperatorLt
		case OperatorGte:
			operator = OperatorLte
		}
		return startOfDay.AddDate(0, 0, -dayCount), operator, nil
	case fields.DurationAfterToday:
		return startOfDay.AddDate(0, 0, dayCount), operator, nil
	default:
		return nil, operator, fmt.Errorf("unsupported duration %d", field.Duration)
	}
}
