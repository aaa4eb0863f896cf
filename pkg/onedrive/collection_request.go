package onedrive

import (
	"context"
	"net/http"
	"strconv"
)

// CollectionRequest addresses a collection of T. It is also the type of every
// next page request.
type CollectionRequest[T any] struct {
	baseRequest
}

// NewCollectionRequest builds a request for the collection at requestURL.
// Continuation links are valid request URLs.
func NewCollectionRequest[T any](c *Client, requestURL string, options ...QueryOption) *CollectionRequest[T] {
	return newCollectionRequest[T](c, requestURL, options)
}

func newCollectionRequest[T any](c *Client, requestURL string, options []QueryOption) *CollectionRequest[T] {
	return &CollectionRequest[T]{baseRequest: newBaseRequest(c, requestURL, options)}
}

// collectionEnvelope is the wire shape of a collection response.
type collectionEnvelope[T any] struct {
	Value *CollectionPage[T] `json:"value"`
}

type collectionResponse[T any] struct {
	Value          *CollectionPage[T]
	AdditionalData AdditionalData
}

func (r *collectionResponse[T]) UnmarshalJSON(data []byte) error {
	var envelope collectionEnvelope[T]
	extra, err := decodeEntity(data, &envelope)
	if err != nil {
		return err
	}
	r.Value = envelope.Value
	r.AdditionalData = extra
	return nil
}

// Add POSTs entity to the collection and returns the created resource.
func (r *CollectionRequest[T]) Add(ctx context.Context, entity *T) (*T, error) {
	var payload any
	if entity != nil {
		payload = entity
	}
	result := new(T)
	decoded, err := r.send(ctx, http.MethodPost, payload, result, typeName[T]())
	if err != nil {
		return nil, err
	}
	if !decoded {
		return nil, nil
	}
	initializeCollections(r.client, result)
	return result, nil
}

// Get fetches one page. It returns (nil, nil) when the response carries no
// `value` collection. An empty `value` array is a page with no items.
func (r *CollectionRequest[T]) Get(ctx context.Context) (*CollectionPage[T], error) {
	return fetchPage[T](ctx, r.baseRequest, http.MethodGet, nil)
}

func (r *CollectionRequest[T]) Expand(value string) *CollectionRequest[T] {
	return r.withOption(QueryExpand, value)
}

func (r *CollectionRequest[T]) Select(value string) *CollectionRequest[T] {
	return r.withOption(QuerySelect, value)
}

func (r *CollectionRequest[T]) Top(n int) *CollectionRequest[T] {
	return r.withOption(QueryTop, strconv.Itoa(n))
}

func (r *CollectionRequest[T]) Skip(n int) *CollectionRequest[T] {
	return r.withOption(QuerySkip, strconv.Itoa(n))
}

func (r *CollectionRequest[T]) Filter(value string) *CollectionRequest[T] {
	return r.withOption(QueryFilter, value)
}

func (r *CollectionRequest[T]) OrderBy(value string) *CollectionRequest[T] {
	return r.withOption(QueryOrderBy, value)
}

func (r *CollectionRequest[T]) withOption(name, value string) *CollectionRequest[T] {
	return &CollectionRequest[T]{baseRequest: r.with(QueryOption{Name: name, Value: value})}
}

// fetchPage sends the request and turns a collection response into a wired
// page.
func fetchPage[T any](ctx context.Context, r baseRequest, method string, payload any) (*CollectionPage[T], error) {
	var response collectionResponse[T]
	decoded, err := r.send(ctx, method, payload, &response, typeName[T]()+" collection")
	if err != nil {
		return nil, err
	}
	if !decoded || response.Value == nil {
		r.client.logger.Debug("collection response without value", "url", r.RequestURL())
		return nil, nil
	}
	page := response.Value
	page.initialize(r.client, response.AdditionalData, "")
	return page, nil
}
