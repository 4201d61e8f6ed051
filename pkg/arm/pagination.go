package arm

import (
	"context"
	"errors"

	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/metrics"
)

// Page is one fetched batch of listing results. The NextLink is opaque and
// must be passed back unmodified; its absence is the sole end-of-sequence
// signal. An empty Value with a NextLink present does not terminate the
// sequence, because backends legitimately return empty interstitial pages.
type Page[T any] struct {
	// Value holds the items of this page in server order.
	Value []T

	// NextLink is the opaque continuation URL for the next page, empty on
	// the last page.
	NextLink string

	// Response is the raw response that produced the page, when available.
	Response *Response
}

// PageFetcher supplies the two fetch operations a pager is built from.
// First takes the list options (including the page-size hint); Next takes
// the previous page's continuation link.
type PageFetcher[T any] struct {
	First func(ctx context.Context, params *QueryParams) (*Page[T], error)
	Next  func(ctx context.Context, nextLink string) (*Page[T], error)
}

// Pager walks a paginated list one page at a time. Pages are fetched lazily
// on each NextPage call; the sequence is not restartable. Build a new Pager
// to enumerate again, which re-invokes the first fetch and may observe
// different results.
type Pager[T any] struct {
	fetcher PageFetcher[T]
	params  *QueryParams
	current *Page[T]
	started bool
}

// NewPager creates a pager over the given fetch operations.
func NewPager[T any](fetcher PageFetcher[T], params *QueryParams) *Pager[T] {
	return &Pager[T]{
		fetcher: fetcher,
		params:  params,
	}
}

// More reports whether another page is available. It is true before the
// first fetch and false once a page without a continuation link was seen.
func (p *Pager[T]) More() bool {
	if !p.started {
		return true
	}

	return p.current != nil && p.current.NextLink != ""
}

// NextPage fetches the next page. It returns ErrNoMorePages once the
// sequence is exhausted.
func (p *Pager[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if !p.More() {
		return nil, ErrNoMorePages
	}

	var (
		page *Page[T]
		err  error
	)

	if !p.started {
		page, err = p.fetcher.First(ctx, p.params)
	} else {
		page, err = p.fetcher.Next(ctx, p.current.NextLink)
	}

	if err != nil {
		return nil, err
	}

	p.started = true
	p.current = page
	metrics.RecordPage()

	return page, nil
}

// PageIterator flattens a paginated list into an item sequence. Advancing
// past the last item of a page fetches the next page on demand; items within
// an already-fetched page never trigger network traffic.
type PageIterator[T any] struct {
	ctx     context.Context
	pager   *Pager[T]
	current *Page[T]
	index   int
}

// NewPageIterator creates an item-level iterator over the fetch operations.
func NewPageIterator[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams) *PageIterator[T] {
	return &PageIterator[T]{
		ctx:   ctx,
		pager: NewPager(fetcher, params),
	}
}

// HasNext reports whether another item may be available. Before the first
// fetch it is optimistically true; a subsequent Next can still return
// ErrNoMoreItems when the list turns out to be empty.
func (it *PageIterator[T]) HasNext() bool {
	if it.current != nil && it.index < len(it.current.Value) {
		return true
	}

	return it.pager.More()
}

// Next returns the next item, fetching pages as needed. Empty interstitial
// pages are skipped. It returns ErrNoMoreItems past the end of the sequence.
func (it *PageIterator[T]) Next() (T, error) {
	var zero T

	for {
		if it.current != nil && it.index < len(it.current.Value) {
			item := it.current.Value[it.index]
			it.index++

			return item, nil
		}

		if !it.pager.More() {
			return zero, ErrNoMoreItems
		}

		page, err := it.pager.NextPage(it.ctx)
		if err != nil {
			return zero, err
		}

		it.current = page
		it.index = 0
	}
}

// All drains the remaining items into a slice.
func (it *PageIterator[T]) All() ([]T, error) {
	var items []T

	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				break
			}

			return nil, err
		}

		items = append(items, item)
	}

	return items, nil
}

// ForEach applies fn to every remaining item, stopping at the first error.
func (it *PageIterator[T]) ForEach(fn func(item T) error) error {
	for it.HasNext() {
		item, err := it.Next()
		if err != nil {
			if errors.Is(err, ErrNoMoreItems) {
				return nil
			}

			return err
		}

		err = fn(item)
		if err != nil {
			return err
		}
	}

	return nil
}

// PaginationOptions bounds an eager fetch.
type PaginationOptions struct {
	// MaxPages caps the number of pages fetched; zero means unbounded.
	MaxPages int
}

// FetchAllPages eagerly collects every item of the list. The engine imposes
// no bound of its own; use PaginationOptions.MaxPages to cap the walk.
func FetchAllPages[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams, options *PaginationOptions) ([]T, error) {
	var (
		items []T
		pages int
	)

	pager := NewPager(fetcher, params)

	for pager.More() {
		if options != nil && options.MaxPages > 0 && pages >= options.MaxPages {
			break
		}

		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		items = append(items, page.Value...)
		pages++
	}

	return items, nil
}

// PageResult is one delivery on a streamed page channel.
type PageResult[T any] struct {
	// Items holds the page's items.
	Items []T

	// NextLink is the page's continuation link, empty on the last page.
	NextLink string

	// Err is non-nil when the fetch failed; the channel closes after an
	// error is delivered.
	Err error
}

// StreamPages fetches pages in the background and delivers them on the
// returned channel, which closes after the last page or the first error.
// Cancellation is honored before each page fetch: an in-progress fetch
// either completes or fails with the context error.
func StreamPages[T any](ctx context.Context, fetcher PageFetcher[T], params *QueryParams, options *PaginationOptions) <-chan PageResult[T] {
	results := make(chan PageResult[T], constants.SmallBufferSize)

	go func() {
		defer close(results)

		var pages int

		pager := NewPager(fetcher, params)

		for pager.More() {
			if options != nil && options.MaxPages > 0 && pages >= options.MaxPages {
				return
			}

			if ctx.Err() != nil {
				select {
				case results <- PageResult[T]{Err: ctx.Err()}:
				default:
				}

				return
			}

			page, err := pager.NextPage(ctx)
			if err != nil {
				select {
				case results <- PageResult[T]{Err: err}:
				case <-ctx.Done():
				}

				return
			}

			pages++

			select {
			case results <- PageResult[T]{Items: page.Value, NextLink: page.NextLink}:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}
