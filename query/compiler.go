package query

import (
	"errors"
	"time"

	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
)

// Page size for terms buckets and inner hits, large enough to cover every bucket or nested object.
const allDocuments = 10000

type Options struct {
	// Treats a missing boolean field as false when filtering on equality with false.
	MissingBooleanAsFalse bool
	// Clock used to resolve duration fields. Defaults to time.Now.
	Now func() time.Time
}

// Compiler translates grid requests into search bodies. It holds no mutable state and may be
// used concurrently.
type Compiler struct {
	fields  fields.Fields
	options Options
}

func NewCompiler(registry fields.Fields, options Options) Compiler {
	if options.Now == nil {
		options.Now = time.Now
	}
	return Compiler{fields: registry, options: options}
}

func (compiler Compiler) Compile(request Request) (dsl.SearchBody, error) {
	body := dsl.SearchBody{From: request.Skip, Size: request.Take}

	sortItems := PrepareSort(request.Sort, request.Group)
	body.Sort = compiler.CompileSort(sortItems, fields.RootScope)

	var filter *dsl.Filter
	if request.Filter != nil {
		compiled, err := compiler.CompileFilter(request.Filter)
		if err != nil {
			return dsl.SearchBody{}, err
		}
		filter = &compiled
		body.Query = dsl.FilteredBy(compiled)
	}

	aggs, err := compiler.CompileAggregates(request.Aggregate, fields.RootScope)
	if err != nil {
		return dsl.SearchBody{}, err
	}
	groupAggs, err := compiler.CompileGroups(request.Group, fields.RootScope)
	if err != nil {
		return dsl.SearchBody{}, err
	}
	mergeAggregations(aggs, groupAggs)
	body.Aggs = aggs

	body.InnerHits = compiler.PlanInnerHits(sortItems, filter)
	body.Source = storageNames(compiler.fields.InScope(fields.RootScope))

	return body, nil
}

func storageNames(fieldList []fields.Field) []string {
	names := make([]string, len(fieldList))
	for i, field := range fieldList {
		names[i] = field.StorageName
	}
	return names
}

func compilationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.As(err, new(CompilationError)) {
		return err
	}
	return CompilationError{Err: err}
}
