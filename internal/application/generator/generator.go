// Package generator synthesizes CRUD endpoint definitions from a database
// schema.
package generator

import (
	"fmt"
	"strings"

	"github.com/grsmv/inflect"
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/sirupsen/logrus"
)

// Operation names, used as name suffixes and as client function names
const (
	OpGetAll  = "getAll"
	OpGetByID = "getById"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
)

// Named pairs a generated definition with its registry name
type Named struct {
	Name       string
	Operation  string
	Definition endpoint.Definition
}

// Name returns the registry name of a generated operation on table
func Name(table, op string) string {
	return fmt.Sprintf("%s_%s_%s", endpoint.GeneratedPrefix, strings.ToLower(table), op)
}

// ForTable returns the generated endpoints of one table in getAll, getById,
// create, update, delete order. Views only get getAll. Tables without a
// primary key get getAll and create.
func ForTable(t schema.TableSchema) []Named {
	routeAll := "/" + strings.ToLower(t.Name)
	routeOne := fmt.Sprintf("%s/$%s", routeAll, t.PrimaryKeyField)
	singular, plural := nouns(t.Name)
	fields := t.FieldNames()

	out := []Named{{
		Name:      Name(t.Name, OpGetAll),
		Operation: OpGetAll,
		Definition: endpoint.Definition{
			Route:       routeAll,
			Method:      endpoint.MethodGet,
			Query:       endpoint.StringPtr(fmt.Sprintf("SELECT * FROM %s", t.Name)),
			Description: fmt.Sprintf("Gets all %s from '%s'.", plural, t.Name),
			Generated:   true,
		},
	}}
	if t.IsView {
		return out
	}

	hasKey := t.PrimaryKeyField != ""
	if hasKey {
		out = append(out, Named{
			Name:      Name(t.Name, OpGetByID),
			Operation: OpGetByID,
			Definition: endpoint.Definition{
				Route:  routeOne,
				Method: endpoint.MethodGet,
				Query: endpoint.StringPtr(fmt.Sprintf("SELECT * FROM %s WHERE %s = $%s",
					t.Name, t.PrimaryKeyField, t.PrimaryKeyField)),
				Description: fmt.Sprintf("Gets %s from '%s' by its primary key.", withArticle(singular), t.Name),
				Generated:   true,
			},
		})
	}

	out = append(out, Named{
		Name:      Name(t.Name, OpCreate),
		Operation: OpCreate,
		Definition: endpoint.Definition{
			Route:  routeAll,
			Method: endpoint.MethodPost,
			Query: endpoint.StringPtr(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				t.Name, strings.Join(fields, ", "), joinPrefixed(fields, "$", ", "))),
			Description:       fmt.Sprintf("Creates a new %s in '%s'.", singular, t.Name),
			RequestBodyParams: fields,
			Generated:         true,
		},
	})
	if !hasKey {
		return out
	}

	assignments := make([]string, len(fields))
	for i, f := range fields {
		assignments[i] = fmt.Sprintf("%s = $%s", f, f)
	}

	return append(out,
		Named{
			Name:      Name(t.Name, OpUpdate),
			Operation: OpUpdate,
			Definition: endpoint.Definition{
				Route:  routeOne,
				Method: endpoint.MethodPut,
				Query: endpoint.StringPtr(fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%s",
					t.Name, strings.Join(assignments, ", "), t.PrimaryKeyField, t.PrimaryKeyField)),
				Description:       fmt.Sprintf("Updates an existing %s in '%s' by its primary key.", singular, t.Name),
				RequestBodyParams: fields,
				Generated:         true,
			},
		},
		Named{
			Name:      Name(t.Name, OpDelete),
			Operation: OpDelete,
			Definition: endpoint.Definition{
				Route:  routeOne,
				Method: endpoint.MethodDelete,
				Query: endpoint.StringPtr(fmt.Sprintf("DELETE FROM %s WHERE %s = $%s",
					t.Name, t.PrimaryKeyField, t.PrimaryKeyField)),
				Description: fmt.Sprintf("Deletes an existing %s from '%s' by its primary key.", singular, t.Name),
				Generated:   true,
			},
		},
	)
}

// Register adds the generated endpoints of every table to reg leniently, so
// user-declared endpoints with the same name or route keep precedence.
func Register(l *logrus.Entry, reg *registry.Registry, tables []schema.TableSchema) error {
	for _, t := range tables {
		if !t.IsView && t.PrimaryKeyField == "" {
			l.WithField("table", t.Name).Warn("⚠️  table has no primary key, only getAll and create endpoints are generated")
		}
		for _, n := range ForTable(t) {
			if err := reg.Put(n.Name, n.Definition, false); err != nil {
				return err
			}
		}
		l.WithField("table", t.Name).Debug("generated endpoints")
	}
	return nil
}

func nouns(table string) (singular, plural string) {
	name := strings.ToLower(table)
	return inflect.Singularize(name), inflect.Pluralize(inflect.Singularize(name))
}

func withArticle(noun string) string {
	if noun != "" && strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}

func joinPrefixed(items []string, prefix, sep string) string {
	prefixed := make([]string, len(items))
	for i, it := range items {
		prefixed[i] = prefix + it
	}
	return strings.Join(prefixed, sep)
}
