package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"

	"github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"hermannm.dev/devlog/log"
	"hermannm.dev/gridsearch/config"
	"hermannm.dev/gridsearch/dsl"
	"hermannm.dev/gridsearch/result"
	"hermannm.dev/wrap"
)

var ErrIndexNotFound = errors.New("index not found")

// Client sends compiled search bodies to a single index.
type Client struct {
	transport esapi.Transport
	index     string
}

func NewClient(config config.Elasticsearch) (Client, error) {
	address, err := url.Parse(config.Address)
	if err != nil {
		return Client{}, wrap.Errorf(err, "invalid Elasticsearch address '%s'", config.Address)
	}

	// Plain transport, since the product check of the full client rejects servers older than 7.14.
	transportConfig := elastictransport.Config{
		URLs:     []*url.URL{address},
		Username: config.Username,
		Password: config.Password,
	}
	if config.Debug {
		transportConfig.Logger = &elastictransport.TextLogger{
			Output:             os.Stdout,
			EnableRequestBody:  true,
			EnableResponseBody: true,
		}
	}

	transport, err := elastictransport.New(transportConfig)
	if err != nil {
		return Client{}, wrap.Error(err, "failed to connect to Elasticsearch")
	}

	return NewClientWithTransport(transport, config.Index), nil
}

func NewClientWithTransport(transport esapi.Transport, index string) Client {
	return Client{transport: transport, index: index}
}

func (client Client) Search(ctx context.Context, body dsl.SearchBody) (result.Response, error) {
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return result.Response{}, wrap.Error(err, "failed to encode search body")
	}

	requestID := uuid.NewString()
	log.Debug(
		"sending search request",
		slog.String("index", client.index),
		slog.String("requestId", requestID),
	)

	request := esapi.SearchRequest{
		Index:  []string{client.index},
		Body:   bytes.NewReader(bodyJSON),
		Header: http.Header{"X-Opaque-Id": []string{requestID}},
	}

	res, err := request.Do(ctx, client.transport)
	if err != nil {
		return result.Response{}, wrap.Errorf(
			err, "search request '%s' to index '%s' failed", requestID, client.index,
		)
	}
	defer res.Body.Close()

	if res.IsError() {
		elasticErr := decodeElasticError(res)
		if errors.Is(elasticErr, ErrIndexNotFound) {
			return result.Response{}, fmt.Errorf("%w: '%s'", ErrIndexNotFound, client.index)
		}

		return result.Response{}, wrap.Errorf(
			elasticErr, "search request '%s' to index '%s' failed", requestID, client.index,
		)
	}

	var response result.Response
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return result.Response{}, wrap.Errorf(
			err, "failed to decode response to search request '%s'", requestID,
		)
	}

	return response, nil
}
