package scaffold

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nv0skar/Noisier/internal/application/loader"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/nv0skar/Noisier/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var autoIncrement = true

var departments = schema.TableSchema{
	Name:            "Departments",
	Fields:          []schema.TableField{{Name: "departmentId", IsAutoIncrement: &autoIncrement}, {Name: "name"}},
	PrimaryKeyField: "departmentId",
}

func TestDumpEndpoints(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "endpoints")

	written, err := DumpEndpoints(logging.Discard(), dir, []schema.TableSchema{departments})
	require.NoError(t, err)
	require.Len(t, written, 1)
	assert.Equal(t, filepath.Join(dir, AutoDir, "Departments.toml"), written[0])

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[_generated_departments_getById]")
	assert.Contains(t, string(data), `route = "/departments/$departmentId"`)

	// dumps are never read back as user declarations
	decls, err := loader.ReadDir(logging.Discard(), dir)
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestWriteClients(t *testing.T) {
	dir := t.TempDir()

	written, err := WriteClients(dir, []schema.TableSchema{departments}, true, false)
	require.NoError(t, err)
	require.Len(t, written, 2)

	data, err := os.ReadFile(filepath.Join(dir, "_Departments.js"))
	require.NoError(t, err)
	js := string(data)
	assert.Contains(t, js, "const DepartmentsAPI_auto = {")
	assert.Contains(t, js, "getById: async function(departmentId) {")
	assert.Contains(t, js, "axios.get(`${BASE_URL}/departments/${departmentId}`, requestOptions);")
	assert.Contains(t, js, "return response.data[0];")
	assert.Contains(t, js, "update: async function(formData, departmentId) {")
	assert.Contains(t, js, "axios.post(`${BASE_URL}/departments`, formData, requestOptions);")
	assert.Contains(t, js, "/** Creates a new department in 'Departments'. Form fields: name. */")
	assert.Contains(t, js, "/** Gets all departments from 'Departments'. */")

	auth, err := os.ReadFile(filepath.Join(dir, "_auth.js"))
	require.NoError(t, err)
	assert.Contains(t, string(auth), "login: async function(formData) {")
	assert.NotContains(t, string(auth), "register")
}
