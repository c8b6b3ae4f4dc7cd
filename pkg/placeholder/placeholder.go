// Package placeholder extracts `$name` tokens from routes and queries,
// checks that every query placeholder has a source, and rewrites queries into
// native bind syntax.
//
// Translate returns the native query together with the ordered parameter list
// it was built from; Bind reuses that list, so the argument order can never
// drift from the bind markers.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

var tokenRE = regexp.MustCompile(`\$(\w+)`)

// Extract returns the placeholder names in text, left to right, duplicates kept
func Extract(text string) []string {
	matches := tokenRE.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// BindStyle selects the native bind marker syntax
type BindStyle int

const (
	// Question emits `?` markers (MySQL, SQLite, libSQL)
	Question BindStyle = iota
	// Numbered emits `$1`, `$2`, ... markers
	Numbered
)

// Compiled is a translated query. Params[i] names the value for the i-th marker.
type Compiled struct {
	Source string
	Native string
	Params []string
}

// Translate rewrites every placeholder in query into a native marker, in one
// pass that also records the parameter order.
func Translate(query string, style BindStyle) Compiled {
	var params []string
	native := tokenRE.ReplaceAllStringFunc(query, func(tok string) string {
		params = append(params, tok[1:])
		if style == Numbered {
			return "$" + strconv.Itoa(len(params))
		}
		return "?"
	})
	if params == nil {
		params = []string{}
	}
	return Compiled{Source: query, Native: native, Params: params}
}

// Uses reports whether the query references name
func (c Compiled) Uses(name string) bool {
	for _, p := range c.Params {
		if p == name {
			return true
		}
	}
	return false
}

// Bind builds the argument sequence in marker order. Names absent from values
// bind as nil.
func (c Compiled) Bind(values map[string]any) []any {
	args := make([]any, len(c.Params))
	for i, p := range c.Params {
		args[i] = values[p]
	}
	return args
}

// Missing returns, in first-seen order and without duplicates, the names in
// required that are not in permitted. The reserved identity placeholder is
// never reported.
func Missing(required, permitted []string) []string {
	allowed := make(map[string]struct{}, len(permitted)+1)
	for _, p := range permitted {
		allowed[p] = struct{}{}
	}
	allowed[endpoint.LoggedIDParam] = struct{}{}

	var missing []string
	seen := make(map[string]struct{})
	for _, r := range required {
		if _, ok := allowed[r]; ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		missing = append(missing, r)
	}
	return missing
}

// ValidateCoverage checks that every query placeholder of def can be filled.
// SELECT and DELETE draw only from the route; INSERT and UPDATE also draw from
// the declared request body parameters.
func ValidateCoverage(def *endpoint.Definition) error {
	if !def.HasQuery() {
		return nil
	}
	sqlParams := Extract(def.QueryText())
	permitted := Extract(def.Route)
	if def.Operation().ReadsBody() {
		permitted = append(permitted, def.RequestBodyParams...)
	}

	missing := Missing(sqlParams, permitted)
	if len(missing) == 0 {
		return nil
	}
	marked := make([]string, len(missing))
	for i, m := range missing {
		marked[i] = "$" + m
	}
	return apperrors.NewConfigError(
		fmt.Sprintf("%s %s", def.Method, def.Route),
		fmt.Sprintf("the parameters %s are expected by the SQL query but they are not provided in the URL or the request body",
			strings.Join(marked, ", ")),
	)
}
