package http

import "context"

// PageFetcher fetches one page of items.
// It returns the items and the number of the next page, or 0 when page was
// the last one. This matches the NextPage field of go-gitlab and go-github
// responses.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, nextPage int, err error)

// PageIterator provides iteration over paginated API results.
// It lazily fetches pages as needed.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	page    int
	buffer  []T
	done    bool
	err     error
	pages   int
	fetched int
}

// NewPageIterator creates a new iterator starting at page 1.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{
		fetch: fetch,
		page:  1,
	}
}

// Next returns the next item from the iterator.
// When iteration is complete, returns (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	// Skip over empty pages until an item shows up or the server says stop.
	for len(p.buffer) == 0 && !p.done {
		if err := ctx.Err(); err != nil {
			p.err = err
			return zero, false, err
		}
		items, next, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.pages++
		p.buffer = items
		if next <= p.page {
			p.done = true
		} else {
			p.page = next
		}
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects all items from the iterator into a slice.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	err := p.ForEach(ctx, func(item T) error {
		all = append(all, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return all, nil
}

// Filter collects the items for which keep returns true.
func (p *PageIterator[T]) Filter(ctx context.Context, keep func(T) bool) ([]T, error) {
	var matched []T
	err := p.ForEach(ctx, func(item T) error {
		if keep(item) {
			matched = append(matched, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matched, nil
}

// ForEach calls fn for each item in the iterator.
// If fn returns an error, iteration stops and that error is returned.
func (p *PageIterator[T]) ForEach(ctx context.Context, fn func(T) error) error {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// Err returns any error that occurred during iteration.
func (p *PageIterator[T]) Err() error {
	return p.err
}

// Pages returns the number of pages fetched so far.
func (p *PageIterator[T]) Pages() int {
	return p.pages
}

// Fetched returns the number of items handed out so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
}
