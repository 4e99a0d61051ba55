package defectdojo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"reflect"
	"strconv"

	"github.com/dojokit/go-defectdojo/internal/api"
	"go.uber.org/zap"
)

// PageSize is the number of records requested per page by Search and All.
const PageSize = 100

var errEmptyBody = errors.New("empty response body")

// resource describes one DefectDojo collection endpoint.
type resource struct {
	path string // URL segment below /api/v2/
	name string // singular name used in errors and logs
}

var (
	engagements  = resource{path: "engagements", name: "engagement"}
	products     = resource{path: "products", name: "product"}
	productTypes = resource{path: "product_types", name: "product type"}
	tests        = resource{path: "tests", name: "test"}
	findings     = resource{path: "findings", name: "finding"}
	users        = resource{path: "users", name: "user"}
)

// ResourceService provides get, search, create, update and delete operations
// for one DefectDojo resource type.
type ResourceService[T Record] struct {
	transport *api.Transport
	resource  resource
	maxPages  int
	logger    *zap.Logger
}

func newResourceService[T Record](transport *api.Transport, res resource, maxPages int, logger *zap.Logger) *ResourceService[T] {
	return &ResourceService[T]{
		transport: transport,
		resource:  res,
		maxPages:  maxPages,
		logger:    logger.With(zap.String("resource", res.path)),
	}
}

func (s *ResourceService[T]) collectionPath() string {
	return "/api/v2/" + s.resource.path + "/"
}

func (s *ResourceService[T]) itemPath(id int64) string {
	return fmt.Sprintf("/api/v2/%s/%d", s.resource.path, id)
}

// Get retrieves a single record by id.
func (s *ResourceService[T]) Get(ctx context.Context, id int64, opts ...RequestOption) (T, error) {
	var zero T
	if err := s.validateID(id); err != nil {
		return zero, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result T
	resp, err := s.do(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    s.itemPath(id),
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, s.statusError(resp, id)
	}

	if isNil(result) {
		return zero, &DeserializationError{Resource: s.resource.name, Err: errEmptyBody}
	}

	return result, nil
}

// SearchPage fetches one page of records matching query.
// limit and offset replace any values of the same name in query.
func (s *ResourceService[T]) SearchPage(ctx context.Context, query QueryParams, limit, offset int, opts ...RequestOption) (*Page[T], error) {
	if limit <= 0 {
		limit = PageSize
	}
	offset = max(offset, 0)

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	values := query.Values()
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))

	var page Page[T]
	resp, err := s.do(ctx, &api.Request{
		Method:  http.MethodGet,
		Path:    s.collectionPath(),
		Query:   values,
		Headers: reqCfg.headers,
	}, &page)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, s.statusError(resp, 0)
	}

	if len(resp.Body) == 0 {
		return nil, &DeserializationError{Resource: s.resource.name, Err: errEmptyBody}
	}

	return &page, nil
}

// All returns an iterator over every record matching query.
// Pages are fetched lazily, one request at a time, as you iterate. When the
// server still reports a next page after the configured maximum number of
// pages, the iterator yields a *PaginationLoopError and stops.
func (s *ResourceService[T]) All(ctx context.Context, query QueryParams, opts ...RequestOption) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		page := 0

		for {
			result, err := s.SearchPage(ctx, query, PageSize, PageSize*page, opts...)
			if err != nil {
				yield(zero, err)
				return
			}
			page++

			s.logger.Debug("fetched page",
				zap.Int("page", page),
				zap.Int("results", len(result.Results)),
				zap.Int("count", result.Count),
			)

			if !yieldPageItems(ctx, result.Results, yield) {
				return
			}

			if page > s.maxPages {
				yield(zero, &PaginationLoopError{PageSize: PageSize, Pages: page - 1})
				return
			}

			if !result.HasNext() {
				return
			}
		}
	}
}

// yieldPageItems yields each record from the page to the iterator.
// Returns false if iteration should stop (context cancelled or yield returned false).
func yieldPageItems[T any](ctx context.Context, items []T, yield func(T, error) bool) bool {
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			var zero T
			yield(zero, err)
			return false
		}
		if !yield(item, nil) {
			return false
		}
	}
	return true
}

// Search returns all records matching query, in server order.
// On any error, including a pagination loop, no partial result is returned.
func (s *ResourceService[T]) Search(ctx context.Context, query QueryParams, opts ...RequestOption) ([]T, error) {
	items, err := Collect(s.All(ctx, query, opts...))
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SearchUnique returns the first record that matches every identifying field of query.
// The boolean is false when no record matches.
func (s *ResourceService[T]) SearchUnique(ctx context.Context, query QueryParams, opts ...RequestOption) (T, bool, error) {
	var zero T

	items, err := s.Search(ctx, query, opts...)
	if err != nil {
		return zero, false, err
	}

	for _, item := range items {
		if item.EqualsQuery(query) {
			return item, true, nil
		}
	}

	s.logger.Debug("no unique match", zap.Int("candidates", len(items)))
	return zero, false, nil
}

// SearchUniqueByExample is SearchUnique with the query built from the
// non-zero fields of example.
func (s *ResourceService[T]) SearchUniqueByExample(ctx context.Context, example T, opts ...RequestOption) (T, bool, error) {
	var zero T
	if isNil(example) {
		return zero, false, &ValidationError{
			APIError: APIError{Message: s.resource.name + " example cannot be nil"},
		}
	}

	query, err := QueryFromRecord(example)
	if err != nil {
		return zero, false, err
	}

	return s.SearchUnique(ctx, query, opts...)
}

// Create creates a record and returns the server's representation of it.
func (s *ResourceService[T]) Create(ctx context.Context, obj T, opts ...RequestOption) (T, error) {
	var zero T
	if isNil(obj) {
		return zero, &ValidationError{
			APIError: APIError{Message: s.resource.name + " cannot be nil"},
		}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result T
	resp, err := s.do(ctx, &api.Request{
		Method:  http.MethodPost,
		Path:    s.collectionPath(),
		Body:    obj,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, s.statusError(resp, 0)
	}

	if isNil(result) {
		return zero, &DeserializationError{Resource: s.resource.name, Err: errEmptyBody}
	}

	return result, nil
}

// Update replaces the record with the given id and returns the server's representation of it.
func (s *ResourceService[T]) Update(ctx context.Context, obj T, id int64, opts ...RequestOption) (T, error) {
	var zero T
	if err := s.validateID(id); err != nil {
		return zero, err
	}
	if isNil(obj) {
		return zero, &ValidationError{
			APIError: APIError{Message: s.resource.name + " cannot be nil"},
		}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result T
	resp, err := s.do(ctx, &api.Request{
		Method:  http.MethodPut,
		Path:    s.itemPath(id) + "/",
		Body:    obj,
		Headers: reqCfg.headers,
	}, &result)
	if err != nil {
		return zero, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return zero, s.statusError(resp, id)
	}

	if isNil(result) {
		return zero, &DeserializationError{Resource: s.resource.name, Err: errEmptyBody}
	}

	return result, nil
}

// Delete removes the record with the given id.
func (s *ResourceService[T]) Delete(ctx context.Context, id int64, opts ...RequestOption) error {
	if err := s.validateID(id); err != nil {
		return err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	resp, err := s.do(ctx, &api.Request{
		Method:  http.MethodDelete,
		Path:    s.itemPath(id) + "/",
		Headers: reqCfg.headers,
	}, nil)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return s.statusError(resp, id)
	}

	return nil
}

// do runs a request and classifies failures that produced no usable response.
func (s *ResourceService[T]) do(ctx context.Context, req *api.Request, result any) (*api.Response, error) {
	resp, err := s.transport.DoJSON(ctx, req, result)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, api.ErrUnmarshal) {
		return nil, &DeserializationError{Resource: s.resource.name, Err: err}
	}
	return nil, &TransportError{Op: req.Method, URL: s.transport.URL(req.Path), Err: err}
}

// statusError converts an error response, naming the record for 404s on item paths.
func (s *ResourceService[T]) statusError(resp *api.Response, id int64) error {
	err := parseError(resp)

	var notFound *NotFoundError
	if id > 0 && errors.As(err, &notFound) {
		notFound.ResourceType = s.resource.name
		notFound.ResourceID = strconv.FormatInt(id, 10)
	}
	return err
}

// validateID checks that a record id is positive.
func (s *ResourceService[T]) validateID(id int64) error {
	if id <= 0 {
		return &ValidationError{
			APIError: APIError{Message: fmt.Sprintf("%s id must be positive, given was %d", s.resource.name, id)},
		}
	}
	return nil
}

func isNil[T any](v T) bool {
	rv := reflect.ValueOf(any(v))
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
