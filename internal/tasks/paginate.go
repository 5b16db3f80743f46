package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// PageFunc fetches one window of a paginated listing.
type PageFunc[T any] func(ctx context.Context, limit, offset int) (*models.Page[T], error)

// Pager drains a paginated listing one page at a time.
//
// Each call to [Pager.Each] or [Pager.All] restarts from offset zero;
// a pager holds no iteration state between calls.
type Pager[T any] struct {
	fetch PageFunc[T]
	limit int
}

// NewPager creates a pager requesting pages of the given size.
func NewPager[T any](limit int, fetch PageFunc[T]) *Pager[T] {
	if limit <= 0 {
		limit = 20
	}
	return &Pager[T]{fetch: fetch, limit: limit}
}

// Each visits every item of the listing in order.
//
// A nil page or a page without items ends the sequence; this is
// end-of-stream, not an error. The service's continuation flag decides
// whether another page is requested, so a short page with the flag set
// is still followed. Fetch errors and visit errors propagate unchanged;
// no retry happens here.
func (p *Pager[T]) Each(ctx context.Context, visit func(T) error) error {
	offset := 0
	for {
		page, err := p.fetch(ctx, p.limit, offset)
		if err != nil {
			return err
		}
		if page == nil || page.Items == nil {
			return nil
		}

		for _, item := range page.Items {
			if err := visit(item); err != nil {
				return err
			}
		}

		if !page.Next {
			return nil
		}
		offset += p.limit
	}
}

// All collects every item of the listing into a slice.
func (p *Pager[T]) All(ctx context.Context) ([]T, error) {
	var items []T
	err := p.Each(ctx, func(item T) error {
		items = append(items, item)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Chunk partitions items into contiguous windows of at most size elements.
//
// Concatenating the chunks in order reproduces the input exactly; only the
// last chunk may be short. The chunks share the input's backing array.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", shared.ErrInvalidArgument, size)
	}

	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}
