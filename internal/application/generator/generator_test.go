package generator

import (
	"testing"

	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/internal/logging"
	"github.com/nv0skar/Noisier/pkg/placeholder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func employees() schema.TableSchema {
	return schema.TableSchema{
		Name:            "Employees",
		Fields:          []schema.TableField{{Name: "id"}, {Name: "name"}, {Name: "salary"}},
		PrimaryKeyField: "id",
	}
}

func TestForTable_Employees(t *testing.T) {
	got := ForTable(employees())
	require.Len(t, got, 5)

	want := []struct {
		name   string
		route  string
		method endpoint.HttpMethod
		query  string
	}{
		{"_generated_employees_getAll", "/employees", endpoint.MethodGet, "SELECT * FROM Employees"},
		{"_generated_employees_getById", "/employees/$id", endpoint.MethodGet, "SELECT * FROM Employees WHERE id = $id"},
		{"_generated_employees_create", "/employees", endpoint.MethodPost, "INSERT INTO Employees (id, name, salary) VALUES ($id, $name, $salary)"},
		{"_generated_employees_update", "/employees/$id", endpoint.MethodPut, "UPDATE Employees SET id = $id, name = $name, salary = $salary WHERE id = $id"},
		{"_generated_employees_delete", "/employees/$id", endpoint.MethodDelete, "DELETE FROM Employees WHERE id = $id"},
	}
	for i, w := range want {
		assert.Equal(t, w.name, got[i].Name)
		assert.Equal(t, w.route, got[i].Definition.Route)
		assert.Equal(t, w.method, got[i].Definition.Method)
		assert.Equal(t, w.query, got[i].Definition.QueryText())
		assert.True(t, got[i].Definition.Generated)
		assert.NoError(t, placeholder.ValidateCoverage(&got[i].Definition), w.name)
	}

	assert.Equal(t, []string{"id", "name", "salary"}, got[2].Definition.RequestBodyParams)
	assert.Equal(t, []string{"id", "name", "salary"}, got[3].Definition.RequestBodyParams)
	assert.Empty(t, got[4].Definition.RequestBodyParams)
	assert.Equal(t, "Gets an employee from 'Employees' by its primary key.", got[1].Definition.Description)
}

func TestForTable_View(t *testing.T) {
	got := ForTable(schema.TableSchema{Name: "salaries_view", Fields: []schema.TableField{{Name: "total"}}, IsView: true})
	require.Len(t, got, 1)
	assert.Equal(t, "_generated_salaries_view_getAll", got[0].Name)
	assert.Equal(t, endpoint.MethodGet, got[0].Definition.Method)
}

func TestForTable_NoPrimaryKey(t *testing.T) {
	got := ForTable(schema.TableSchema{Name: "logs", Fields: []schema.TableField{{Name: "msg"}}})
	require.Len(t, got, 2)
	assert.Equal(t, OpGetAll, got[0].Operation)
	assert.Equal(t, OpCreate, got[1].Operation)
}

func TestRegister_UserDeclaredWins(t *testing.T) {
	reg := registry.New()
	userDef := endpoint.Definition{
		Route:             "/employees",
		Method:            endpoint.MethodPost,
		Query:             endpoint.StringPtr("INSERT INTO Employees (name) VALUES ($name)"),
		RequestBodyParams: []string{"name"},
		Description:       "Hires a new employee",
	}
	require.NoError(t, reg.Put("createEmployee", userDef, true))

	require.NoError(t, Register(logging.Discard(), reg, []schema.TableSchema{employees()}))
	assert.Equal(t, 5, reg.Len())

	e, _, ok := reg.FindMatchingRoute("/employees", endpoint.MethodPost)
	require.True(t, ok)
	assert.Equal(t, "createEmployee", e.Name)
	assert.Equal(t, "Hires a new employee", e.Definition.Description)
	assert.Equal(t, "INSERT INTO Employees (name) VALUES ($name)", e.Definition.QueryText())
	assert.Equal(t, []string{"name"}, e.Definition.RequestBodyParams)
	assert.False(t, e.Definition.Generated)

	_, ok = reg.Get("_generated_employees_create")
	assert.False(t, ok)
}
