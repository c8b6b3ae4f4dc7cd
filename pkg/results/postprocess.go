// Package results filters, sorts and paginates row sets according to a URL
// query string.
//
// Keys starting with "_" are controls: _sort, _order, _limit and _page. Every
// other key is an equality filter on the column of the same name.
package results

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	ControlPrefix = "_"
	ParamSort     = "_sort"
	ParamOrder    = "_order"
	ParamLimit    = "_limit"
	ParamPage     = "_page"
	OrderDesc     = "desc"
)

// Apply runs filter, sort and paginate in that order. rows is not modified.
func Apply(rows []map[string]any, args url.Values) []map[string]any {
	out := Filter(rows, args)
	Sort(out, args.Get(ParamSort), args.Get(ParamOrder) == OrderDesc)

	limit, errL := strconv.Atoi(args.Get(ParamLimit))
	page, errP := strconv.Atoi(args.Get(ParamPage))
	if errL == nil && errP == nil {
		out = Paginate(out, limit, page)
	}
	return out
}

// Filter keeps a row when, for every non-control key, the column is absent
// from the row or its string form equals the value case-insensitively. A null
// column reads as "None". Only the first value of a repeated key is used.
func Filter(rows []map[string]any, args url.Values) []map[string]any {
	type criterion struct{ col, val string }
	var criteria []criterion
	for k, vs := range args {
		if strings.HasPrefix(k, ControlPrefix) || len(vs) == 0 {
			continue
		}
		criteria = append(criteria, criterion{k, vs[0]})
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		keep := true
		for _, c := range criteria {
			v, ok := row[c.col]
			if ok && !strings.EqualFold(filterString(v), c.val) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, row)
		}
	}
	return out
}

// Sort orders rows in place by column. Null values come first in both
// directions. If any row lacks the column, rows are left as they are.
func Sort(rows []map[string]any, column string, desc bool) {
	if column == "" {
		return
	}
	for _, row := range rows {
		if _, ok := row[column]; !ok {
			return
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i][column], rows[j][column]
		switch {
		case a == nil && b == nil:
			return false
		case a == nil:
			return true
		case b == nil:
			return false
		}
		if desc {
			return compare(a, b) > 0
		}
		return compare(a, b) < 0
	})
}

// Paginate returns rows[limit*page : limit*page+limit], clamped to the slice.
// page is multiplied directly by limit, so page 1 skips the first limit rows.
func Paginate(rows []map[string]any, limit, page int) []map[string]any {
	// a non-positive limit or a negative page always selects an empty window
	if limit <= 0 || page < 0 {
		return []map[string]any{}
	}
	if page > 0 && limit > len(rows)/page {
		return []map[string]any{}
	}
	offset := limit * page
	top := offset + limit
	if top > len(rows) {
		top = len(rows)
	}
	if offset >= top {
		return []map[string]any{}
	}
	return rows[offset:top]
}

func compare(a, b any) int {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0
			case !ba:
				return -1
			}
			return 1
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		// text protocol results carry numbers as strings
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// NullString is the string form of a null column when filtering
const NullString = "None"

func filterString(v any) string {
	if v == nil {
		return NullString
	}
	return stringify(v)
}

func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case time.Time:
		return s.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}
