package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/desertthunder/spotx/internal/models"
	"github.com/desertthunder/spotx/internal/shared"
)

// pageSource serves a fixed item set as limit/offset windows, recording
// the offsets it was asked for.
type pageSource struct {
	items   []int
	offsets []int
	failAt  int // offset at which fetch fails, -1 to never fail
}

func (s *pageSource) fetch(ctx context.Context, limit, offset int) (*models.Page[int], error) {
	s.offsets = append(s.offsets, offset)
	if s.failAt >= 0 && offset >= s.failAt {
		return nil, fmt.Errorf("fetch failed at offset %d", offset)
	}
	if offset >= len(s.items) {
		return &models.Page[int]{Items: []int{}, Total: len(s.items), Limit: limit, Offset: offset}, nil
	}
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	return &models.Page[int]{
		Items:  s.items[offset:end],
		Total:  len(s.items),
		Limit:  limit,
		Offset: offset,
		Next:   end < len(s.items),
	}, nil
}

func makeItems(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPagerEach(t *testing.T) {
	tests := []struct {
		name        string
		total       int
		limit       int
		wantFetches int
	}{
		{"multiple full pages", 120, 50, 3},
		{"exact page boundary", 100, 50, 2},
		{"single short page", 7, 50, 1},
		{"empty listing", 0, 50, 1},
		{"limit of one", 3, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &pageSource{items: makeItems(tt.total), failAt: -1}
			pager := NewPager(tt.limit, src.fetch)

			var visited []int
			err := pager.Each(context.Background(), func(v int) error {
				visited = append(visited, v)
				return nil
			})
			if err != nil {
				t.Fatalf("Each() error = %v", err)
			}

			if len(visited) != tt.total {
				t.Errorf("visited %d items, want %d", len(visited), tt.total)
			}
			for i, v := range visited {
				if v != i {
					t.Fatalf("item %d = %d, out of order", i, v)
				}
			}
			if len(src.offsets) != tt.wantFetches {
				t.Errorf("fetched %d pages, want %d", len(src.offsets), tt.wantFetches)
			}
			for i, off := range src.offsets {
				if off != i*tt.limit {
					t.Errorf("fetch %d at offset %d, want %d", i, off, i*tt.limit)
				}
			}
		})
	}

	t.Run("stops when continuation flag is clear", func(t *testing.T) {
		calls := 0
		pager := NewPager(10, func(ctx context.Context, limit, offset int) (*models.Page[int], error) {
			calls++
			// A short page with Next unset ends the drain even though more
			// fetches would technically succeed.
			return &models.Page[int]{Items: []int{1, 2}, Next: false}, nil
		})
		if err := pager.Each(context.Background(), func(int) error { return nil }); err != nil {
			t.Fatalf("Each() error = %v", err)
		}
		if calls != 1 {
			t.Errorf("fetched %d pages, want 1", calls)
		}
	})

	t.Run("follows short page with continuation flag set", func(t *testing.T) {
		calls := 0
		pager := NewPager(10, func(ctx context.Context, limit, offset int) (*models.Page[int], error) {
			calls++
			if calls == 1 {
				return &models.Page[int]{Items: []int{1}, Next: true}, nil
			}
			return &models.Page[int]{Items: []int{2}, Next: false}, nil
		})
		var got []int
		if err := pager.Each(context.Background(), func(v int) error {
			got = append(got, v)
			return nil
		}); err != nil {
			t.Fatalf("Each() error = %v", err)
		}
		if len(got) != 2 {
			t.Errorf("visited %d items, want 2", len(got))
		}
	})

	t.Run("nil page ends the stream", func(t *testing.T) {
		pager := NewPager(10, func(ctx context.Context, limit, offset int) (*models.Page[int], error) {
			return nil, nil
		})
		if err := pager.Each(context.Background(), func(int) error { return nil }); err != nil {
			t.Fatalf("Each() error = %v", err)
		}
	})

	t.Run("propagates fetch errors", func(t *testing.T) {
		src := &pageSource{items: makeItems(30), failAt: 10}
		pager := NewPager(10, src.fetch)
		err := pager.Each(context.Background(), func(int) error { return nil })
		if err == nil {
			t.Fatal("Each() error = nil, want fetch error")
		}
	})

	t.Run("propagates visit errors", func(t *testing.T) {
		src := &pageSource{items: makeItems(30), failAt: -1}
		pager := NewPager(10, src.fetch)
		sentinel := errors.New("stop")
		err := pager.Each(context.Background(), func(v int) error {
			if v == 5 {
				return sentinel
			}
			return nil
		})
		if !errors.Is(err, sentinel) {
			t.Errorf("Each() error = %v, want %v", err, sentinel)
		}
		if len(src.offsets) != 1 {
			t.Errorf("fetched %d pages after visit error, want 1", len(src.offsets))
		}
	})
}

func TestPagerAll(t *testing.T) {
	src := &pageSource{items: makeItems(75), failAt: -1}
	pager := NewPager(20, src.fetch)

	items, err := pager.All(context.Background())
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(items) != 75 {
		t.Errorf("All() returned %d items, want 75", len(items))
	}
	for i, v := range items {
		if v != i {
			t.Fatalf("item %d = %d, out of order", i, v)
		}
	}
}

func TestChunk(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		size     int
		wantLens []int
		wantErr  bool
	}{
		{"uneven final chunk", 120, 50, []int{50, 50, 20}, false},
		{"exact multiple", 100, 50, []int{50, 50}, false},
		{"fewer than one chunk", 3, 50, []int{3}, false},
		{"size of one", 3, 1, []int{1, 1, 1}, false},
		{"empty input", 0, 50, nil, false},
		{"zero size", 10, 0, nil, true},
		{"negative size", 10, -1, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := makeItems(tt.n)
			chunks, err := Chunk(items, tt.size)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Fatalf("Chunk() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Chunk() error = %v", err)
			}

			if len(chunks) != len(tt.wantLens) {
				t.Fatalf("Chunk() returned %d chunks, want %d", len(chunks), len(tt.wantLens))
			}
			next := 0
			for i, chunk := range chunks {
				if len(chunk) != tt.wantLens[i] {
					t.Errorf("chunk %d has %d items, want %d", i, len(chunk), tt.wantLens[i])
				}
				for _, v := range chunk {
					if v != next {
						t.Fatalf("chunk %d item %d breaks input order", i, v)
					}
					next++
				}
			}
			if next != tt.n {
				t.Errorf("chunks cover %d items, want %d", next, tt.n)
			}
		})
	}
}
