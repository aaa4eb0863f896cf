package onedrive

import (
	"context"
	"fmt"
)

// Paging controls how many pages CollectAll fetches.
type Paging struct {
	Top      int    // Page size hint sent as $top. Zero leaves it to the service.
	FetchAll bool   // Follow continuations until the last page.
	NextLink string // Resume from a continuation URL returned earlier.
}

// Pager walks a collection page by page.
//
//	pager := onedrive.NewPager(client.ItemChildren(id))
//	for pager.Next(ctx) {
//		for _, item := range pager.Page().Items { ... }
//	}
//	if err := pager.Err(); err != nil { ... }
type Pager[T any] struct {
	next    *CollectionRequest[T]
	page    *CollectionPage[T]
	err     error
	started bool
	resumed bool
}

func NewPager[T any](first *CollectionRequest[T]) *Pager[T] {
	return &Pager[T]{next: first}
}

// resumePager starts a walk at a continuation link saved from an earlier
// page. Unlike a fresh walk, a first response without a collection is
// reported as ErrMalformedPaginationResponse.
func resumePager[T any](c *Client, nextLink string) *Pager[T] {
	return &Pager[T]{next: newCollectionRequest[T](c, nextLink, nil), resumed: true}
}

// Next fetches the following page and reports whether one is available. A
// first request that returns no collection ends the walk without an error,
// unless the walk was resumed from a continuation link.
func (p *Pager[T]) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	var (
		page *CollectionPage[T]
		err  error
	)
	if !p.started {
		if p.next == nil {
			return false
		}
		page, err = p.next.Get(ctx)
	} else {
		page, err = p.page.GetNextPage(ctx)
	}
	if err != nil {
		p.err = err
		return false
	}
	if page == nil && !p.started && p.resumed {
		p.err = fmt.Errorf("%w: no collection returned by %s", ErrMalformedPaginationResponse, p.next.RequestURL())
		return false
	}
	p.started = true
	if page == nil {
		p.next = nil
		return false
	}
	p.page = page
	p.next = page.NextPageRequest()
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pager[T]) Page() *CollectionPage[T] {
	return p.page
}

func (p *Pager[T]) Err() error {
	return p.err
}

// NextLink returns the continuation of the current page, or "" when the
// walk is complete.
func (p *Pager[T]) NextLink() string {
	if p.next == nil {
		return ""
	}
	return p.next.RequestURL()
}

// CollectAll gathers items according to paging. It returns the items and
// the continuation link to resume from, which is empty once the collection
// is exhausted. onPage, when non-nil, is called after every page.
func CollectAll[T any](ctx context.Context, req *CollectionRequest[T], paging Paging, onPage func(page *CollectionPage[T])) ([]T, string, error) {
	var pager *Pager[T]
	switch {
	case paging.NextLink != "":
		pager = resumePager[T](req.client, paging.NextLink)
	case paging.Top > 0:
		pager = NewPager(req.Top(paging.Top))
	default:
		pager = NewPager(req)
	}

	var items []T
	for pager.Next(ctx) {
		page := pager.Page()
		items = append(items, page.Items...)
		if onPage != nil {
			onPage(page)
		}
		if !paging.FetchAll {
			break
		}
	}
	if err := pager.Err(); err != nil {
		return nil, "", err
	}
	return items, pager.NextLink(), nil
}
