package defectdojo_test

import (
	"net/url"
	"testing"

	"github.com/dojokit/go-defectdojo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryParamsValues(t *testing.T) {
	q := defectdojo.QueryParams{
		"name":    "release",
		"product": int64(3),
		"active":  true,
		"tags":    []string{"ci", "nightly"},
		"status":  defectdojo.Ptr(defectdojo.EngagementCompleted),
	}

	want := url.Values{
		"name":    {"release"},
		"product": {"3"},
		"active":  {"true"},
		"tags":    {"ci", "nightly"},
		"status":  {"Completed"},
	}
	assert.Equal(t, want, q.Values())

	var empty defectdojo.QueryParams
	assert.Empty(t, empty.Values())
}

func TestQueryFromRecord(t *testing.T) {
	t.Run("omits zero fields", func(t *testing.T) {
		q, err := defectdojo.QueryFromRecord(&defectdojo.Engagement{
			Name:        "release",
			Product:     3,
			Description: "not a filter",
		})
		require.NoError(t, err)
		assert.Equal(t, defectdojo.QueryParams{"name": "release", "product": "3"}, q)
	})

	t.Run("keeps pointers to zero values", func(t *testing.T) {
		q, err := defectdojo.QueryFromRecord(&defectdojo.Finding{
			Title:  "XSS",
			Active: defectdojo.Ptr(false),
		})
		require.NoError(t, err)
		assert.Equal(t, defectdojo.QueryParams{"title": "XSS", "active": "false"}, q)
	})

	t.Run("dereferences enums", func(t *testing.T) {
		q, err := defectdojo.QueryFromRecord(&defectdojo.Finding{Severity: defectdojo.Ptr(defectdojo.SeverityLow)})
		require.NoError(t, err)
		assert.Equal(t, defectdojo.QueryParams{"severity": "Low"}, q)
	})

	t.Run("repeats multi-valued fields", func(t *testing.T) {
		q, err := defectdojo.QueryFromRecord(&defectdojo.Product{Name: "shop", Tags: []string{"a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, q["tags"])
	})

	t.Run("query matches the record it came from", func(t *testing.T) {
		example := &defectdojo.User{Username: "alice", Email: "alice@example.com"}
		q, err := defectdojo.QueryFromRecord(example)
		require.NoError(t, err)
		assert.True(t, example.EqualsQuery(q))
	})

	t.Run("rejects non-struct", func(t *testing.T) {
		_, err := defectdojo.QueryFromRecord(42)
		require.Error(t, err)
	})
}
