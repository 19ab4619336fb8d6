package api

import (
	"fmt"
	"net/http"

	"hermannm.dev/gridsearch/datasource"
)

type GridAPI struct {
	source datasource.DataSource
	router *http.ServeMux
	config Config
}

type Config struct {
	Port string
}

func NewGridAPI(source datasource.DataSource, router *http.ServeMux, config Config) GridAPI {
	api := GridAPI{source: source, router: router, config: config}

	api.router.HandleFunc("POST /query", api.Query)
	api.router.HandleFunc("POST /compile", api.Compile)
	api.router.HandleFunc("POST /fields", api.DeriveFields)
	api.router.HandleFunc("GET /fields", api.GetFields)

	return api
}

func (api GridAPI) ListenAndServe() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", api.config.Port), api.router)
}
