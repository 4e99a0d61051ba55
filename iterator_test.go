package defectdojo_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/dojokit/go-defectdojo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSeq[T any](items []T) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, item := range items {
			if !yield(item, nil) {
				return
			}
		}
	}
}

func makeSeqWithError[T any](items []T, errAt int, err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for i, item := range items {
			if i == errAt {
				var zero T
				yield(zero, err)
				return
			}
			if !yield(item, nil) {
				return
			}
		}
	}
}

func TestCollect(t *testing.T) {
	t.Run("collects all items", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3, 4, 5})

		result, err := defectdojo.Collect(seq)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4, 5}, result)
	})

	t.Run("stops on error", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]int{1, 2, 3, 4, 5}, 3, testErr)

		result, err := defectdojo.Collect(seq)
		require.ErrorIs(t, err, testErr)
		assert.Equal(t, []int{1, 2, 3}, result)
	})

	t.Run("handles empty sequence", func(t *testing.T) {
		seq := makeSeq([]int{})

		result, err := defectdojo.Collect(seq)
		require.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestCollectN(t *testing.T) {
	t.Run("collects up to n items", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3, 4, 5})

		result, err := defectdojo.CollectN(seq, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, result)
	})

	t.Run("collects all if less than n", func(t *testing.T) {
		seq := makeSeq([]int{1, 2})

		result, err := defectdojo.CollectN(seq, 5)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, result)
	})

	t.Run("stops on error before n", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]int{1, 2, 3, 4, 5}, 2, testErr)

		result, err := defectdojo.CollectN(seq, 5)
		require.ErrorIs(t, err, testErr)
		assert.Equal(t, []int{1, 2}, result)
	})

	t.Run("zero n does not pull", func(t *testing.T) {
		pulled := false
		seq := func(yield func(int, error) bool) {
			pulled = true
			yield(1, nil)
		}

		result, err := defectdojo.CollectN(seq, 0)
		require.NoError(t, err)
		assert.Empty(t, result)
		assert.False(t, pulled)
	})
}

func TestFirst(t *testing.T) {
	t.Run("returns first item", func(t *testing.T) {
		seq := makeSeq([]string{"a", "b", "c"})

		result, err := defectdojo.First(seq)
		require.NoError(t, err)
		assert.Equal(t, "a", result)
	})

	t.Run("returns error for empty iterator", func(t *testing.T) {
		seq := makeSeq([]string{})

		_, err := defectdojo.First(seq)
		require.Error(t, err)
		assert.ErrorIs(t, err, defectdojo.ErrEmptyIterator)
	})

	t.Run("returns error if first item errors", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]string{"a"}, 0, testErr)

		_, err := defectdojo.First(seq)
		require.ErrorIs(t, err, testErr)
	})
}

func TestTake(t *testing.T) {
	t.Run("takes n items", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3, 4, 5})
		taken := defectdojo.Take(seq, 3)

		result, err := defectdojo.Collect(taken)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, result)
	})

	t.Run("takes all if less than n", func(t *testing.T) {
		seq := makeSeq([]int{1, 2})
		taken := defectdojo.Take(seq, 5)

		result, err := defectdojo.Collect(taken)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, result)
	})

	t.Run("propagates errors", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]int{1, 2, 3, 4, 5}, 2, testErr)
		taken := defectdojo.Take(seq, 5)

		_, err := defectdojo.Collect(taken)
		require.ErrorIs(t, err, testErr)
	})
}

func TestFilter(t *testing.T) {
	t.Run("filters items", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3, 4, 5, 6})
		even := defectdojo.Filter(seq, func(n int) bool { return n%2 == 0 })

		result, err := defectdojo.Collect(even)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6}, result)
	})

	t.Run("handles no matches", func(t *testing.T) {
		seq := makeSeq([]int{1, 3, 5})
		even := defectdojo.Filter(seq, func(n int) bool { return n%2 == 0 })

		result, err := defectdojo.Collect(even)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("propagates errors", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]int{1, 2, 3}, 1, testErr)
		filtered := defectdojo.Filter(seq, func(n int) bool { return true })

		_, err := defectdojo.Collect(filtered)
		require.ErrorIs(t, err, testErr)
	})
}

func TestMap(t *testing.T) {
	t.Run("transforms items", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3})
		doubled := defectdojo.Map(seq, func(n int) int { return n * 2 })

		result, err := defectdojo.Collect(doubled)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4, 6}, result)
	})

	t.Run("transforms to different type", func(t *testing.T) {
		seq := makeSeq([]int{1, 2, 3})
		strings := defectdojo.Map(seq, func(n int) string {
			return string(rune('a' + n - 1))
		})

		result, err := defectdojo.Collect(strings)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c"}, result)
	})

	t.Run("propagates errors", func(t *testing.T) {
		testErr := errors.New("test error")
		seq := makeSeqWithError([]int{1, 2, 3}, 1, testErr)
		mapped := defectdojo.Map(seq, func(n int) int { return n * 2 })

		_, err := defectdojo.Collect(mapped)
		require.ErrorIs(t, err, testErr)
	})
}

func TestIteratorComposition(t *testing.T) {
	findings := []*defectdojo.Finding{
		{ID: 1, Title: "XSS", Severity: defectdojo.Ptr(defectdojo.SeverityHigh)},
		{ID: 2, Title: "Banner", Severity: defectdojo.Ptr(defectdojo.SeverityInfo)},
		{ID: 3, Title: "SQLi", Severity: defectdojo.Ptr(defectdojo.SeverityCritical)},
		{ID: 4, Title: "CSRF", Severity: defectdojo.Ptr(defectdojo.SeverityHigh)},
		{ID: 5, Title: "RCE", Severity: defectdojo.Ptr(defectdojo.SeverityCritical)},
	}

	// Titles of the first three findings that are not informational.
	result, err := defectdojo.Collect(
		defectdojo.Take(
			defectdojo.Map(
				defectdojo.Filter(makeSeq(findings), func(f *defectdojo.Finding) bool {
					return *f.Severity != defectdojo.SeverityInfo
				}),
				func(f *defectdojo.Finding) string { return f.Title },
			),
			3,
		),
	)

	require.NoError(t, err)
	assert.Equal(t, []string{"XSS", "SQLi", "CSRF"}, result)
}
