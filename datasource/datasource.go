package datasource

import (
	"context"
	"errors"
	"log/slog"

	"hermannm.dev/devlog/log"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/fields"
	"hermannm.dev/gridsearch/query"
	"hermannm.dev/gridsearch/result"
	"hermannm.dev/wrap"
)

// Searcher sends a compiled search body to the engine and decodes its response.
type Searcher interface {
	Search(ctx context.Context, body dsl.SearchBody) (result.Response, error)
}

type Options struct {
	Query query.Options
}

// DataSource serves paging grid requests from a search engine. It holds no mutable state and may
// be used concurrently.
type DataSource struct {
	fields       fields.Fields
	searcher     Searcher
	compiler     query.Compiler
	materializer result.Materializer
}

func New(model fields.Model, searcher Searcher, options Options) (DataSource, error) {
	if searcher == nil {
		return DataSource{}, fields.ConfigurationError{
			Err: errors.New("data source requires a transport to send searches with"),
		}
	}

	registry, err := fields.Build(model)
	if err != nil {
		return DataSource{}, fields.ConfigurationError{
			Err: wrap.Error(err, "failed to build fields from data source model"),
		}
	}

	log.Debug("data source ready", slog.Int("fields", registry.Len()))

	return DataSource{
		fields:       registry,
		searcher:     searcher,
		compiler:     query.NewCompiler(registry, options.Query),
		materializer: result.NewMaterializer(registry),
	}, nil
}

func (source DataSource) Fields() fields.Fields {
	return source.fields
}

func (source DataSource) Compile(request query.Request) (dsl.SearchBody, error) {
	return source.compiler.Compile(request)
}

func (source DataSource) Parse(request query.Request, response result.Response) (result.Page, error) {
	return source.materializer.Parse(response, request.Group)
}

// Fetch compiles the request, sends it to the engine and builds the grid result.
func (source DataSource) Fetch(ctx context.Context, request query.Request) (result.Page, error) {
	body, err := source.Compile(request)
	if err != nil {
		return result.Page{}, wrap.Error(err, "failed to compile grid request")
	}

	response, err := source.searcher.Search(ctx, body)
	if err != nil {
		return result.Page{}, wrap.Error(err, "search request failed")
	}

	page, err := source.Parse(request, response)
	if err != nil {
		return result.Page{}, wrap.Error(err, "failed to build grid result from search response")
	}

	return page, nil
}
