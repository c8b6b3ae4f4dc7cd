// Package route turns declared routes and incoming request paths into a
// comparable structural form.
//
// Endpoint authors must respect two constraints that matching relies on:
//   - a route may carry at most one parameter, as its final segment, and the
//     value is always numeric at request time;
//   - the last static segment of any route must contain at least one non-digit
//     character, otherwise a request for it would be read as parameterized.
package route

import (
	"strconv"
	"strings"

	"github.com/nv0skar/Noisier/internal/domain/endpoint"
)

// Marker introduces a placeholder inside a route segment
const Marker = "$"

// Pattern is the matchable form of a route. Two patterns match when their
// segments, method and Parameterized flag agree; ParameterName is ignored.
type Pattern struct {
	Segments      []string
	Method        endpoint.HttpMethod
	Parameterized bool
	ParameterName string
}

// FromDeclaration builds the pattern of a declared route. When the last segment
// contains the marker it is recorded, marker included and with its original
// casing, as ParameterName.
func FromDeclaration(route string, method endpoint.HttpMethod) Pattern {
	raw := split(route)
	p := Pattern{Method: method}
	if n := len(raw); n > 0 && strings.Contains(raw[n-1], Marker) {
		p.Parameterized = true
		p.ParameterName = raw[n-1]
		raw = raw[:n-1]
	}
	p.Segments = lower(raw)
	return p
}

// FromRequest builds the pattern of an incoming path. A purely numeric last
// segment makes the pattern parameterized and is returned as value.
func FromRequest(path string, method endpoint.HttpMethod) (p Pattern, value *int64) {
	segs := lower(split(path))
	p = Pattern{Method: method}
	if n := len(segs); n > 0 && isNumeric(segs[n-1]) {
		if v, err := strconv.ParseInt(segs[n-1], 10, 64); err == nil {
			p.Parameterized = true
			value = &v
			segs = segs[:n-1]
		}
	}
	p.Segments = segs
	return p, value
}

// Matches compares structure only
func (p Pattern) Matches(other Pattern) bool {
	if p.Method != other.Method || p.Parameterized != other.Parameterized {
		return false
	}
	if len(p.Segments) != len(other.Segments) {
		return false
	}
	for i := range p.Segments {
		if p.Segments[i] != other.Segments[i] {
			return false
		}
	}
	return true
}

// String renders the pattern with the parameter as <name>
func (p Pattern) String() string {
	var b strings.Builder
	for _, s := range p.Segments {
		b.WriteString("/")
		b.WriteString(s)
	}
	if p.Parameterized {
		b.WriteString("/<")
		b.WriteString(strings.TrimPrefix(p.ParameterName, Marker))
		b.WriteString(">")
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

func split(path string) []string {
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		segs = append(segs, part)
	}
	return segs
}

func lower(segs []string) []string {
	for i := range segs {
		segs[i] = strings.ToLower(segs[i])
	}
	return segs
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
