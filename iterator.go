package defectdojo

import (
	"errors"
	"iter"
)

// ErrEmptyIterator is returned by First when the iterator yields no items.
var ErrEmptyIterator = errors.New("iterator is empty")

// Records is the sequence shape produced by ResourceService.All.
// A non-nil error is always the last element.
type Records[T any] = iter.Seq2[T, error]

// Collect drains records into a slice. On error it returns what was read before it.
func Collect[T any](records Records[T]) ([]T, error) {
	out := []T{}
	for record, err := range records {
		if err != nil {
			return out, err
		}
		out = append(out, record)
	}
	return out, nil
}

// CollectN is Collect over at most n records. Pages past the n-th record are never requested.
func CollectN[T any](records Records[T], n int) ([]T, error) {
	return Collect(Take(records, n))
}

// First returns the first record, or ErrEmptyIterator.
func First[T any](records Records[T]) (T, error) {
	next, stop := iter.Pull2(records)
	defer stop()

	record, err, ok := next()
	if !ok {
		var zero T
		return zero, ErrEmptyIterator
	}
	return record, err
}

// Take stops records after n of them.
func Take[T any](records Records[T], n int) Records[T] {
	return func(yield func(T, error) bool) {
		remaining := n
		if remaining <= 0 {
			return
		}
		for record, err := range records {
			if !yield(record, err) || err != nil {
				return
			}
			if remaining--; remaining == 0 {
				return
			}
		}
	}
}

// Filter keeps the records keep accepts. An error ends the sequence.
func Filter[T any](records Records[T], keep func(T) bool) Records[T] {
	return func(yield func(T, error) bool) {
		for record, err := range records {
			switch {
			case err != nil:
				yield(record, err)
				return
			case !keep(record):
				continue
			case !yield(record, nil):
				return
			}
		}
	}
}

// Map converts each record with fn. An error ends the sequence.
func Map[T, U any](records Records[T], fn func(T) U) Records[U] {
	return func(yield func(U, error) bool) {
		for record, err := range records {
			if err != nil {
				var zero U
				yield(zero, err)
				return
			}
			if !yield(fn(record), nil) {
				return
			}
		}
	}
}
