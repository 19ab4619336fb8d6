package query

import "hermannm.dev/enumnames"

type Operator uint8

const (
	OperatorEq Operator = iota + 1
	OperatorNeq
	OperatorLt
	OperatorLte
	OperatorGt
	OperatorGte
	OperatorContains
	OperatorDoesNotContain
	OperatorStartsWith
	OperatorEndsWith
	OperatorSearch
	OperatorExists
	OperatorMissing
)

var operatorNames = enumnames.NewMap(map[Operator]string{
	OperatorEq:             "eq",
	OperatorNeq:            "neq",
	OperatorLt:             "lt",
	OperatorLte:            "lte",
	OperatorGt:             "gt",
	OperatorGte:            "gte",
	OperatorContains:       "contains",
	OperatorDoesNotContain: "doesnotcontain",
	OperatorStartsWith:     "startswith",
	OperatorEndsWith:       "endswith",
	OperatorSearch:         "search",
	OperatorExists:         "exists",
	OperatorMissing:        "missing",
})

func (operator Operator) IsValid() bool {
	return operatorNames.GetNameOrFallback(operator, "") != ""
}

func (operator Operator) String() string {
	return operatorNames.GetNameOrFallback(operator, "INVALID_OPERATOR")
}

func (operator Operator) MarshalJSON() ([]byte, error) {
	return operatorNames.MarshalToNameJSON(operator)
}

func (operator *Operator) UnmarshalJSON(bytes []byte) error {
	return operatorNames.UnmarshalFromNameJSON(bytes, operator)
}

// Operators that take no value.
func (operator Operator) isValueless() bool {
	return operator == OperatorExists || operator == OperatorMissing
}

type Logic uint8

const (
	LogicAnd Logic = iota + 1
	LogicOr
)

var logicNames = enumnames.NewMap(map[Logic]string{
	LogicAnd: "and",
	LogicOr:  "or",
})

func (logic Logic) IsValid() bool {
	return logicNames.GetNameOrFallback(logic, "") != ""
}

func (logic Logic) String() string {
	return logicNames.GetNameOrFallback(logic, "INVALID_LOGIC")
}

func (logic Logic) MarshalJSON() ([]byte, error) {
	return logicNames.MarshalToNameJSON(logic)
}

func (logic *Logic) UnmarshalJSON(bytes []byte) error {
	return logicNames.UnmarshalFromNameJSON(bytes, logic)
}

type SortDirection uint8

const (
	SortAscending SortDirection = iota + 1
	SortDescending
)

var sortDirectionNames = enumnames.NewMap(map[SortDirection]string{
	SortAscending:  "asc",
	SortDescending: "desc",
})

func (direction SortDirection) IsValid() bool {
	return sortDirectionNames.GetNameOrFallback(direction, "") != ""
}

func (direction SortDirection) String() string {
	return sortDirectionNames.GetNameOrFallback(direction, "INVALID_SORT_DIRECTION")
}

func (direction SortDirection) MarshalJSON() ([]byte, error) {
	return sortDirectionNames.MarshalToNameJSON(direction)
}

func (direction *SortDirection) UnmarshalJSON(bytes []byte) error {
	return sortDirectionNames.UnmarshalFromNameJSON(bytes, direction)
}

type AggregateKind uint8

const (
	AggregateCount AggregateKind = iota + 1
	AggregateMin
	AggregateMax
	AggregateSum
	AggregateAverage
	// Bucket kinds, only valid on a group's own field.
	AggregateDateHistogram
	AggregateHistogram
)

var aggregateKindNames = enumnames.NewMap(map[AggregateKind]string{
	AggregateCount:         "count",
	AggregateMin:           "min",
	AggregateMax:           "max",
	AggregateSum:           "sum",
	AggregateAverage:       "average",
	AggregateDateHistogram: "date_histogram",
	AggregateHistogram:     "histogram",
})

func (kind AggregateKind) IsValid() bool {
	return aggregateKindNames.GetNameOrFallback(kind, "") != ""
}

func (kind AggregateKind) String() string {
	return aggregateKindNames.GetNameOrFallback(kind, "INVALID_AGGREGATE")
}

func (kind AggregateKind) MarshalJSON() ([]byte, error) {
	return aggregateKindNames.MarshalToNameJSON(kind)
}

func (kind *AggregateKind) UnmarshalJSON(bytes []byte) error {
	return aggregateKindNames.UnmarshalFromNameJSON(bytes, kind)
}

func (kind AggregateKind) IsBucket() bool {
	return kind == AggregateDateHistogram || kind == AggregateHistogram
}
