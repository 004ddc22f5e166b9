// Package pagination implements the page-walking loop shared by every
// listing scraper: fetch page n, extract a batch, merge it into a keyed
// collection, stop once a page comes back short of the listing's fixed page
// size.
package pagination

import (
	"bytes"
	"context"
	"encoding/json"
)

// Keyed pairs an extracted record with the id it merges under.
type Keyed[T any] struct {
	Key  string
	Item T
}

// Collection is an insertion-ordered map of records keyed by id. Re-putting
// an existing key overwrites the record but keeps its original position, so a
// refetched page never duplicates entries.
type Collection[T any] struct {
	keys  []string
	items map[string]T
}

func NewCollection[T any]() *Collection[T] {
	return &Collection[T]{items: map[string]T{}}
}

func (c *Collection[T]) Put(key string, item T) {
	if _, seen := c.items[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.items[key] = item
}

func (c *Collection[T]) Get(key string) (T, bool) {
	item, ok := c.items[key]
	return item, ok
}

func (c *Collection[T]) Len() int {
	return len(c.keys)
}

// Keys returns ids in encounter order, pages appended left to right.
func (c *Collection[T]) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

func (c *Collection[T]) Each(fn func(key string, item T)) {
	for _, k := range c.keys {
		fn(k, c.items[k])
	}
}

// MarshalJSON renders the collection as a JSON object in insertion order.
func (c *Collection[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		itemBytes, err := json.Marshal(c.items[k])
		if err != nil {
			return nil, err
		}
		buf.Write(itemBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Options bound a collection run. PageSize is the listing's fixed page size
// and drives termination; the rest are caller-side limits.
type Options struct {
	PageSize int
	// first page to fetch, defaults to 1
	StartPage int
	// stop after this page even if it came back full; 0 means unbounded
	MaxPage int
	// stop once this many records have been merged; 0 means unbounded
	MaxItems int
}

// PageFunc fetches and extracts one page of a listing.
type PageFunc[T any] func(ctx context.Context, page int) ([]Keyed[T], error)

// Collect walks pages in strictly increasing order and merges batches until a
// short page (or a caller bound) ends the run. It returns the merged
// collection and the last page fetched. A failure on any page aborts the
// whole collection; there is no partial-success return.
func Collect[T any](ctx context.Context, opts Options, fetchPage PageFunc[T]) (*Collection[T], int, error) {
	page := opts.StartPage
	if page <= 0 {
		page = 1
	}

	collected := NewCollection[T]()
	lastPage := page
	for {
		batch, err := fetchPage(ctx, page)
		if err != nil {
			return nil, 0, err
		}
		lastPage = page

		for _, entry := range batch {
			collected.Put(entry.Key, entry.Item)
			if opts.MaxItems > 0 && collected.Len() >= opts.MaxItems {
				return collected, lastPage, nil
			}
		}

		if len(batch) < opts.PageSize {
			return collected, lastPage, nil
		}
		if opts.MaxPage > 0 && page >= opts.MaxPage {
			return collected, lastPage, nil
		}
		page++
	}
}
