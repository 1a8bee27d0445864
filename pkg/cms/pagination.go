package cms

import (
	"context"
	"fmt"
)

// DefaultPageSize is the page size used when none is given.
const DefaultPageSize = 100

// Lister is the subset of Client needed for pagination.
type Lister interface {
	List(ctx context.Context, endpoint string, opts *QueryOptions) Result[ListResult]
}

// PaginationIterator walks an endpoint's records page by page using
// offset/limit.
type PaginationIterator struct {
	ctx      context.Context
	lister   Lister
	endpoint string
	opts     *QueryOptions
	pageSize int

	buffer []Record
	index  int
	offset int
	done   bool
	err    error
}

// NewPaginationIterator creates an iterator. opts is copied; any limit or
// offset in it is replaced by the iterator's own paging.
func NewPaginationIterator(ctx context.Context, lister Lister, endpoint string, opts *QueryOptions, pageSize int) *PaginationIterator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &PaginationIterator{
		ctx:      ctx,
		lister:   lister,
		endpoint: endpoint,
		opts:     opts.Clone(),
		pageSize: pageSize,
	}
}

// HasNext reports whether another record is available, fetching the next page
// when the current one is exhausted.
func (it *PaginationIterator) HasNext() bool {
	if it.index < len(it.buffer) {
		return true
	}

	if it.done || it.err != nil {
		return false
	}

	it.fetch()

	return it.index < len(it.buffer)
}

// Next returns the next record.
func (it *PaginationIterator) Next() (Record, error) {
	if !it.HasNext() {
		if it.err != nil {
			return nil, it.err
		}

		return nil, ErrNoMoreItems
	}

	record := it.buffer[it.index]
	it.index++

	return record, nil
}

// Err returns the error that stopped iteration, if any.
func (it *PaginationIterator) Err() error {
	return it.err
}

// All drains the iterator.
func (it *PaginationIterator) All() ([]Record, error) {
	var all []Record

	for it.HasNext() {
		record, err := it.Next()
		if err != nil {
			return all, err
		}

		all = append(all, record)
	}

	return all, it.err
}

func (it *PaginationIterator) fetch() {
	opts := it.opts.Clone().WithOffset(it.offset).WithLimit(it.pageSize)

	res := it.lister.List(it.ctx, it.endpoint, opts)

	page, ok := res.Lenient()
	if !ok {
		it.err = fmt.Errorf("listing %s at offset %d: %w", it.endpoint, it.offset, res.Error())

		return
	}

	it.buffer = page.Contents
	it.index = 0
	it.offset += len(page.Contents)

	if len(page.Contents) == 0 || it.offset >= page.TotalCount {
		it.done = true
	}
}

// ListAll fetches every record of an endpoint.
func ListAll(ctx context.Context, lister Lister, endpoint string, opts *QueryOptions, pageSize int) ([]Record, error) {
	return NewPaginationIterator(ctx, lister, endpoint, opts, pageSize).All()
}
