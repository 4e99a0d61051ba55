package defectdojo

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"

	"github.com/google/go-querystring/query"
)

// QueryParams holds search filters keyed by API field name.
// Values are sent as fmt.Sprint strings; []string values become repeated parameters.
type QueryParams map[string]any

// Values encodes the params as URL query values.
func (q QueryParams) Values() url.Values {
	values := make(url.Values, len(q))
	for key, value := range q {
		if multi, ok := value.([]string); ok {
			values[key] = slices.Clone(multi)
			continue
		}
		values.Set(key, queryString(value))
	}
	return values
}

// QueryFromRecord derives search params from the non-zero fields of an example record.
// A non-nil pointer is kept even when it points to a zero value.
func QueryFromRecord(record any) (QueryParams, error) {
	values, err := query.Values(record)
	if err != nil {
		return nil, fmt.Errorf("building query from %T: %w", record, err)
	}

	params := make(QueryParams, len(values))
	for key, vs := range values {
		if len(vs) == 1 {
			params[key] = vs[0]
		} else {
			params[key] = vs
		}
	}
	return params, nil
}

// matchesQuery compares the identifying fields of a record with a query.
// Every query key found in fields must match; other keys are ignored.
func matchesQuery(query QueryParams, fields map[string]any) bool {
	for key, want := range query {
		got, ok := fields[key]
		if !ok {
			continue
		}
		if queryString(got) != queryString(want) {
			return false
		}
	}
	return true
}

func queryString(v any) string {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		rv = rv.Elem()
	}
	return fmt.Sprint(rv.Interface())
}
