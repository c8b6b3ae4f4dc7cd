package results

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tenRows() []map[string]any {
	rows := make([]map[string]any, 10)
	for i := range rows {
		rows[i] = map[string]any{"id": int64(i)}
	}
	return rows
}

func ids(rows []map[string]any) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["id"]
	}
	return out
}

func TestApply_PaginationUsesLimitTimesPage(t *testing.T) {
	args, err := url.ParseQuery("_limit=3&_page=1")
	require.NoError(t, err)

	got := Apply(tenRows(), args)
	assert.Equal(t, []any{int64(3), int64(4), int64(5)}, ids(got))
}

func TestApply_PaginationNeedsBothParams(t *testing.T) {
	for _, q := range []string{"_limit=3", "_page=2", "_limit=x&_page=1", "_limit=3&_page="} {
		args, err := url.ParseQuery(q)
		require.NoError(t, err)
		assert.Len(t, Apply(tenRows(), args), 10, q)
	}
}

func TestPaginate_Bounds(t *testing.T) {
	assert.Equal(t, []any{int64(0), int64(1), int64(2)}, ids(Paginate(tenRows(), 3, 0)))
	assert.Equal(t, []any{int64(9)}, ids(Paginate(tenRows(), 3, 3)))
	assert.Empty(t, Paginate(tenRows(), 3, 4))
	assert.Empty(t, Paginate(tenRows(), 0, 2))
	assert.Empty(t, Paginate(tenRows(), -2, 1))
	assert.Empty(t, Paginate(tenRows(), 3, -1))
}

func TestApply_PaginationOffsetOverflow(t *testing.T) {
	for _, q := range []string{
		"_limit=4611686018427387904&_page=4",
		"_limit=9223372036854775807&_page=2",
		"_limit=3&_page=9223372036854775807",
	} {
		args, err := url.ParseQuery(q)
		require.NoError(t, err)
		assert.Empty(t, Apply(tenRows(), args), q)
	}

	args, err := url.ParseQuery("_limit=9223372036854775807&_page=0")
	require.NoError(t, err)
	assert.Len(t, Apply(tenRows(), args), 10)
}

func TestFilter(t *testing.T) {
	rows := []map[string]any{
		{"id": 1, "name": "Alice", "city": "Sevilla"},
		{"id": 2, "name": "bob", "city": "SEVILLA"},
		{"id": 3, "name": "Carol", "city": "Madrid"},
		{"id": 4, "name": "Dave"},
	}
	args, _ := url.ParseQuery("city=sevilla&_sort=name")
	got := Filter(rows, args)
	assert.Equal(t, []any{1, 2, 4}, ids(got))

	args, _ = url.ParseQuery("id=3")
	assert.Equal(t, []any{3}, ids(Filter(rows, args)))

	args, _ = url.ParseQuery("unknown=1")
	assert.Len(t, Filter(rows, args), 4)
}

func TestFilter_NullColumn(t *testing.T) {
	rows := []map[string]any{
		{"id": 1, "city": nil},
		{"id": 2, "city": ""},
		{"id": 3, "city": "Sevilla"},
	}

	args, _ := url.ParseQuery("city=none")
	assert.Equal(t, []any{1}, ids(Filter(rows, args)))

	args, _ = url.ParseQuery("city=")
	assert.Equal(t, []any{2}, ids(Filter(rows, args)))
}

func TestSort_NullsFirstBothDirections(t *testing.T) {
	build := func() []map[string]any {
		return []map[string]any{
			{"id": 1, "salary": 300.0},
			{"id": 2, "salary": nil},
			{"id": 3, "salary": 100.0},
			{"id": 4, "salary": 200.0},
			{"id": 5, "salary": nil},
		}
	}

	asc := build()
	Sort(asc, "salary", false)
	assert.Equal(t, []any{2, 5, 3, 4, 1}, ids(asc))

	desc := build()
	Sort(desc, "salary", true)
	assert.Equal(t, []any{2, 5, 1, 4, 3}, ids(desc))
}

func TestSort_NumericStrings(t *testing.T) {
	rows := []map[string]any{{"id": "10"}, {"id": "9"}, {"id": "100"}}
	Sort(rows, "id", false)
	assert.Equal(t, []any{"9", "10", "100"}, ids(rows))
}

func TestSort_UnknownColumnIsNoop(t *testing.T) {
	rows := []map[string]any{{"id": 3}, {"id": 1}, {"id": 2, "extra": 1}}
	Sort(rows, "extra", false)
	assert.Equal(t, []any{3, 1, 2}, ids(rows))

	Sort(rows, "", false)
	assert.Equal(t, []any{3, 1, 2}, ids(rows))
}

func TestApply_FilterSortPaginate(t *testing.T) {
	rows := []map[string]any{
		{"id": 1, "dept": "a", "name": "zoe"},
		{"id": 2, "dept": "b", "name": "yan"},
		{"id": 3, "dept": "a", "name": "amy"},
		{"id": 4, "dept": "A", "name": "bea"},
	}
	args, _ := url.ParseQuery("dept=a&_sort=name&_order=desc&_limit=2&_page=0")
	assert.Equal(t, []any{1, 4}, ids(Apply(rows, args)))
	assert.Equal(t, 1, rows[0]["id"], "input order is untouched")
}
