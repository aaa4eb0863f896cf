package onedrive

import (
	"context"
	"net/http"
	"reflect"
)

// EntityRequest addresses a single resource of type T.
type EntityRequest[T any] struct {
	baseRequest
}

// NewEntityRequest builds a request for the resource at requestURL.
func NewEntityRequest[T any](c *Client, requestURL string, options ...QueryOption) *EntityRequest[T] {
	return &EntityRequest[T]{baseRequest: newBaseRequest(c, requestURL, options)}
}

// Create sends entity with PUT and returns the stored resource.
func (r *EntityRequest[T]) Create(ctx context.Context, entity *T) (*T, error) {
	return r.sendEntity(ctx, http.MethodPut, entity)
}

// Get retrieves the resource. Pageable fields of the result carry their
// continuation requests. A response without a body yields (nil, nil).
func (r *EntityRequest[T]) Get(ctx context.Context) (*T, error) {
	return r.sendEntity(ctx, http.MethodGet, nil)
}

// Update sends entity with PATCH and returns the updated resource.
func (r *EntityRequest[T]) Update(ctx context.Context, entity *T) (*T, error) {
	return r.sendEntity(ctx, http.MethodPatch, entity)
}

// Delete removes the resource.
func (r *EntityRequest[T]) Delete(ctx context.Context) error {
	_, err := r.send(ctx, http.MethodDelete, nil, nil, typeName[T]())
	return err
}

// Expand returns a copy of the request with an $expand option appended.
func (r *EntityRequest[T]) Expand(value string) *EntityRequest[T] {
	return &EntityRequest[T]{baseRequest: r.with(QueryOption{Name: QueryExpand, Value: value})}
}

// Select returns a copy of the request with a $select option appended.
func (r *EntityRequest[T]) Select(value string) *EntityRequest[T] {
	return &EntityRequest[T]{baseRequest: r.with(QueryOption{Name: QuerySelect, Value: value})}
}

func (r *EntityRequest[T]) sendEntity(ctx context.Context, method string, entity *T) (*T, error) {
	var payload any
	if entity != nil {
		payload = entity
	}
	result := new(T)
	decoded, err := r.send(ctx, method, payload, result, typeName[T]())
	if err != nil {
		return nil, err
	}
	if !decoded {
		return nil, nil
	}
	initializeCollections(r.client, result)
	return result, nil
}

func typeName[T any]() string {
	return reflect.TypeOf((*T)(nil)).Elem().Name()
}
