package onedrive

import (
	"context"
	"encoding/json"
	"fmt"
)

// CollectionPage is one page of a collection. On the wire a page is the
// `value` array of a collection response, or the array held by a pageable
// field of an entity.
type CollectionPage[T any] struct {
	Items []T

	// AdditionalData is the extension bag of the object the page came from.
	// It is a copy owned by this page.
	AdditionalData AdditionalData

	nextPageRequest *CollectionRequest[T]
}

// NewCollectionPage returns a page holding items.
func NewCollectionPage[T any](items ...T) *CollectionPage[T] {
	return &CollectionPage[T]{Items: items}
}

// NextPageRequest returns the request for the following page, or nil when
// the service reported no continuation.
func (p *CollectionPage[T]) NextPageRequest() *CollectionRequest[T] {
	if p == nil {
		return nil
	}
	return p.nextPageRequest
}

func (p *CollectionPage[T]) HasNextPage() bool {
	return p.NextPageRequest() != nil
}

// NextLink returns the continuation URL, or "" on the last page.
func (p *CollectionPage[T]) NextLink() string {
	if next := p.NextPageRequest(); next != nil {
		return next.RequestURL()
	}
	return ""
}

func (p *CollectionPage[T]) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Items)
}

// GetNextPage follows the continuation. It returns (nil, nil) when this is
// the last page, and ErrMalformedPaginationResponse when the service answered
// the continuation request without a collection.
func (p *CollectionPage[T]) GetNextPage(ctx context.Context) (*CollectionPage[T], error) {
	next := p.NextPageRequest()
	if next == nil {
		return nil, nil
	}
	page, err := next.Get(ctx)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, fmt.Errorf("%w: no collection returned by %s", ErrMalformedPaginationResponse, next.RequestURL())
	}
	return page, nil
}

func (p *CollectionPage[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	p.Items = items
	return nil
}

func (p CollectionPage[T]) MarshalJSON() ([]byte, error) {
	if p.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p.Items)
}

// initialize takes a private copy of bag and sets or clears the next page
// request from the continuation key of field. Items with pageable fields of
// their own are wired from their own bags.
func (p *CollectionPage[T]) initialize(c *Client, bag AdditionalData, field string) {
	p.AdditionalData = bag.Clone()
	if link := p.AdditionalData.NextLink(field); link != "" {
		p.nextPageRequest = newCollectionRequest[T](c, link, nil)
		c.logger.Debug("collection continuation wired", "field", field, "hasNextPage", true)
	} else {
		p.nextPageRequest = nil
		c.logger.Debug("collection continuation wired", "field", field, "hasNextPage", false)
	}
	for i := range p.Items {
		initializeCollections(c, &p.Items[i])
	}
}
