// Package endpoint holds the value types shared by the registry, the generator
// and the dispatcher: HTTP methods, SQL operations and endpoint definitions.
package endpoint

import (
	"strings"

	apperrors "github.com/nv0skar/Noisier/pkg/errors"
)

// HttpMethod is the closed set of methods an endpoint can be declared with
type HttpMethod string

const (
	MethodGet    HttpMethod = "GET"
	MethodPost   HttpMethod = "POST"
	MethodPut    HttpMethod = "PUT"
	MethodDelete HttpMethod = "DELETE"
)

// Methods lists every HttpMethod in display order
var Methods = []HttpMethod{MethodGet, MethodPost, MethodPut, MethodDelete}

// ParseHttpMethod parses a method name case-insensitively
func ParseHttpMethod(s string) (HttpMethod, error) {
	m := HttpMethod(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, nil
		}
	}
	return "", apperrors.ErrUnknownMethod
}

func (m HttpMethod) String() string {
	return string(m)
}

// SqlOperation is the statement kind implied by a query's leading verb
type SqlOperation int

const (
	OpOther SqlOperation = iota
	OpSelect
	OpInsert
	OpUpdate
	OpDelete
)

func (op SqlOperation) String() string {
	switch op {
	case OpSelect:
		return "SELECT"
	case OpInsert:
		return "INSERT"
	case OpUpdate:
		return "UPDATE"
	case OpDelete:
		return "DELETE"
	}
	return "OTHER"
}

// OperationOf returns the operation for the first whitespace-delimited token
// of query, case-insensitively.
func OperationOf(query string) SqlOperation {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return OpOther
	}
	switch strings.ToLower(fields[0]) {
	case "select":
		return OpSelect
	case "insert":
		return OpInsert
	case "update":
		return OpUpdate
	case "delete":
		return OpDelete
	}
	return OpOther
}

// ConventionalMethod returns the HTTP method that conventionally carries op.
// ok is false for OpOther.
func (op SqlOperation) ConventionalMethod() (m HttpMethod, ok bool) {
	switch op {
	case OpSelect:
		return MethodGet, true
	case OpInsert:
		return MethodPost, true
	case OpUpdate:
		return MethodPut, true
	case OpDelete:
		return MethodDelete, true
	}
	return "", false
}

// IsWrite reports whether op goes through the write execution path
func (op SqlOperation) IsWrite() bool {
	return op == OpInsert || op == OpUpdate || op == OpDelete
}

// ReadsBody reports whether op takes parameters from the request body
func (op SqlOperation) ReadsBody() bool {
	return op == OpInsert || op == OpUpdate
}

// GeneratedPrefix marks names reserved for synthesized endpoints
const GeneratedPrefix = "_generated"

// LoggedIDParam is the reserved identity placeholder. The dispatcher binds it to
// the caller's primary-key value.
const LoggedIDParam = "loggedId"

// Definition is a declarative endpoint. Route and Method form its dispatch
// identity; a nil Query marks a static endpoint served outside the dispatcher.
type Definition struct {
	Route             string     `json:"route" toml:"route"`
	Method            HttpMethod `json:"method" toml:"method"`
	Query             *string    `json:"query,omitempty" toml:"query,omitempty"`
	Description       string     `json:"description,omitempty" toml:"description,omitempty"`
	RequestBodyParams []string   `json:"requestBodyParams,omitempty" toml:"requestBodyParams,omitempty"`
	RequiredAuth      bool       `json:"requiredAuth,omitempty" toml:"requiredAuth,omitempty"`
	AllowedRoles      []string   `json:"allowedRoles,omitempty" toml:"allowedRoles,omitempty"`
	Generated         bool       `json:"_generated,omitempty" toml:"_generated,omitempty"`
}

// HasQuery reports whether the endpoint runs a query
func (d *Definition) HasQuery() bool {
	return d.Query != nil
}

// QueryText returns the query or "" for static endpoints
func (d *Definition) QueryText() string {
	if d.Query == nil {
		return ""
	}
	return *d.Query
}

// SameIdentity reports whether d and other share route and method
func (d *Definition) SameIdentity(other *Definition) bool {
	return d.Route == other.Route && d.Method == other.Method
}

// Operation returns the SQL operation of the endpoint's query
func (d *Definition) Operation() SqlOperation {
	return OperationOf(d.QueryText())
}

// AllowsAnyRole reports whether the role list contains the "*" wildcard
func (d *Definition) AllowsAnyRole() bool {
	for _, r := range d.AllowedRoles {
		if r == "*" {
			return true
		}
	}
	return false
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}
