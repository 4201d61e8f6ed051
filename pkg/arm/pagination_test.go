package arm_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ansolan/armclient/internal/constants"
	"github.com/ansolan/armclient/pkg/arm"
)

type testResource struct {
	ID   string
	Name string
}

// pageScript serves a fixed page sequence keyed by continuation link and
// counts every fetch it performs.
type pageScript struct {
	first   *arm.Page[testResource]
	next    map[string]*arm.Page[testResource]
	fetches int
	err     error
}

func (s *pageScript) fetcher() arm.PageFetcher[testResource] {
	return arm.PageFetcher[testResource]{
		First: func(_ context.Context, _ *arm.QueryParams) (*arm.Page[testResource], error) {
			s.fetches++

			if s.err != nil {
				return nil, s.err
			}

			return s.first, nil
		},
		Next: func(_ context.Context, nextLink string) (*arm.Page[testResource], error) {
			s.fetches++

			page, ok := s.next[nextLink]
			if !ok {
				return nil, errors.New("unknown continuation link: " + nextLink)
			}

			return page, nil
		},
	}
}

// threePageScript has an empty interstitial page: 2 items, 0 items, 3 items.
func threePageScript() *pageScript {
	return &pageScript{
		first: &arm.Page[testResource]{
			Value: []testResource{
				{ID: "1", Name: "Resource 1"},
				{ID: "2", Name: "Resource 2"},
			},
			NextLink: "https://example.com/list?skiptoken=a",
		},
		next: map[string]*arm.Page[testResource]{
			"https://example.com/list?skiptoken=a": {
				Value:    []testResource{},
				NextLink: "https://example.com/list?skiptoken=b",
			},
			"https://example.com/list?skiptoken=b": {
				Value: []testResource{
					{ID: "3", Name: "Resource 3"},
					{ID: "4", Name: "Resource 4"},
					{ID: "5", Name: "Resource 5"},
				},
			},
		},
	}
}

func TestPager_NextPage(t *testing.T) {
	script := threePageScript()
	pager := arm.NewPager(script.fetcher(), nil)
	ctx := context.Background()

	assert.True(t, pager.More())

	page1, err := pager.NextPage(ctx)
	require.NoError(t, err)
	assert.Len(t, page1.Value, 2)
	assert.True(t, pager.More())

	// The empty interstitial page does not end the sequence.
	page2, err := pager.NextPage(ctx)
	require.NoError(t, err)
	assert.Empty(t, page2.Value)
	assert.True(t, pager.More())

	page3, err := pager.NextPage(ctx)
	require.NoError(t, err)
	assert.Len(t, page3.Value, 3)
	assert.False(t, pager.More())

	_, err = pager.NextPage(ctx)
	assert.ErrorIs(t, err, arm.ErrNoMorePages)
	assert.Equal(t, 3, script.fetches)
}

func TestPageIterator_FlattensPages(t *testing.T) {
	script := threePageScript()
	iterator := arm.NewPageIterator(context.Background(), script.fetcher(), nil)

	var ids []string

	for iterator.HasNext() {
		item, err := iterator.Next()
		if errors.Is(err, arm.ErrNoMoreItems) {
			break
		}

		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids)
	assert.Equal(t, 3, script.fetches)

	_, err := iterator.Next()
	assert.ErrorIs(t, err, arm.ErrNoMoreItems)
}

func TestPageIterator_All(t *testing.T) {
	script := threePageScript()
	iterator := arm.NewPageIterator(context.Background(), script.fetcher(), nil)

	items, err := iterator.All()
	require.NoError(t, err)
	assert.Len(t, items, 5)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "5", items[4].ID)
}

func TestPageIterator_EmptyList(t *testing.T) {
	script := &pageScript{first: &arm.Page[testResource]{}}
	iterator := arm.NewPageIterator(context.Background(), script.fetcher(), nil)

	// Optimistically true before the first fetch.
	assert.True(t, iterator.HasNext())

	_, err := iterator.Next()
	assert.ErrorIs(t, err, arm.ErrNoMoreItems)
}

func TestPageIterator_ForEach(t *testing.T) {
	script := threePageScript()
	iterator := arm.NewPageIterator(context.Background(), script.fetcher(), nil)

	var collected []string

	err := iterator.ForEach(func(item testResource) error {
		collected = append(collected, item.ID)

		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, collected)
}

func TestPageIterator_NotRestartable(t *testing.T) {
	script := threePageScript()
	fetcher := script.fetcher()
	ctx := context.Background()

	first, err := arm.NewPageIterator(ctx, fetcher, nil).All()
	require.NoError(t, err)
	assert.Len(t, first, 5)

	// A second enumeration requires a fresh iterator and refetches from the
	// start.
	second, err := arm.NewPageIterator(ctx, fetcher, nil).All()
	require.NoError(t, err)
	assert.Len(t, second, 5)
	assert.Equal(t, 6, script.fetches)
}

func TestPageIterator_PropagatesFetchError(t *testing.T) {
	script := &pageScript{err: errors.New("connection refused")}
	iterator := arm.NewPageIterator(context.Background(), script.fetcher(), nil)

	_, err := iterator.Next()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetchAllPages(t *testing.T) {
	script := threePageScript()

	items, err := arm.FetchAllPages(context.Background(), script.fetcher(), nil, nil)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestFetchAllPages_WithMaxPages(t *testing.T) {
	script := threePageScript()
	options := &arm.PaginationOptions{MaxPages: 2}

	items, err := arm.FetchAllPages(context.Background(), script.fetcher(), nil, options)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, script.fetches)
}

func TestStreamPages(t *testing.T) {
	script := threePageScript()

	results := arm.StreamPages(context.Background(), script.fetcher(), nil, nil)

	var (
		items     []testResource
		pageCount int
	)

	for result := range results {
		require.NoError(t, result.Err)

		items = append(items, result.Items...)
		pageCount++
	}

	assert.Equal(t, 3, pageCount)
	assert.Len(t, items, 5)
}

func TestStreamPages_DeliversFetchError(t *testing.T) {
	script := &pageScript{err: errors.New("boom")}

	results := arm.StreamPages(context.Background(), script.fetcher(), nil, nil)

	var errs []error

	for result := range results {
		if result.Err != nil {
			errs = append(errs, result.Err)
		}
	}

	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "boom")
}

func TestStreamPages_AbandonedConsumerDoesNotWedgeProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Enough pages to fill the channel buffer with nobody reading, then a
	// fetch failure with the context already canceled. The producer must
	// give up on delivering the error instead of blocking forever.
	script := &pageScript{
		first: &arm.Page[testResource]{
			Value:    []testResource{{ID: "0"}},
			NextLink: "p1",
		},
		next: map[string]*arm.Page[testResource]{},
	}
	for i := 1; i < constants.SmallBufferSize-1; i++ {
		script.next[fmt.Sprintf("p%d", i)] = &arm.Page[testResource]{
			Value:    []testResource{{ID: fmt.Sprintf("%d", i)}},
			NextLink: fmt.Sprintf("p%d", i+1),
		}
	}
	script.next[fmt.Sprintf("p%d", constants.SmallBufferSize-1)] = &arm.Page[testResource]{
		NextLink: "fail",
	}

	fetcher := script.fetcher()
	failing := arm.PageFetcher[testResource]{
		First: fetcher.First,
		Next: func(ctx context.Context, nextLink string) (*arm.Page[testResource], error) {
			if nextLink == "fail" {
				cancel()

				return nil, errors.New("connection reset")
			}

			return fetcher.Next(ctx, nextLink)
		},
	}

	baseline := runtime.NumGoroutine()

	_ = arm.StreamPages(ctx, failing, nil, nil)

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, time.Second, 10*time.Millisecond, "producer goroutine did not exit")
}

func TestStreamPages_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	script := threePageScript()

	results := arm.StreamPages(ctx, script.fetcher(), nil, nil)

	var sawCancellation bool

	for result := range results {
		if errors.Is(result.Err, context.Canceled) {
			sawCancellation = true
		}
	}

	assert.True(t, sawCancellation)
	assert.Zero(t, script.fetches)
}
