package endpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationOf(t *testing.T) {
	tests := []struct {
		query string
		want  SqlOperation
	}{
		{"SELECT * FROM employees", OpSelect},
		{"  select id from t", OpSelect},
		{"Insert INTO t (a) VALUES ($a)", OpInsert},
		{"update t SET a = $a", OpUpdate},
		{"DELETE FROM t WHERE id = $id", OpDelete},
		{"\tDELETE\nFROM t", OpDelete},
		{"REPLACE INTO t VALUES (1)", OpOther},
		{"", OpOther},
		{"SELECT*FROM t", OpOther},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, OperationOf(tt.query))
		})
	}
}

func TestConventionalMethod(t *testing.T) {
	pairs := map[SqlOperation]HttpMethod{
		OpSelect: MethodGet,
		OpInsert: MethodPost,
		OpUpdate: MethodPut,
		OpDelete: MethodDelete,
	}
	for op, want := range pairs {
		got, ok := op.ConventionalMethod()
		assert.True(t, ok, op.String())
		assert.Equal(t, want, got)
	}

	_, ok := OpOther.ConventionalMethod()
	assert.False(t, ok)
}

func TestParseHttpMethod(t *testing.T) {
	m, err := ParseHttpMethod("get")
	assert.NoError(t, err)
	assert.Equal(t, MethodGet, m)

	m, err = ParseHttpMethod(" Delete ")
	assert.NoError(t, err)
	assert.Equal(t, MethodDelete, m)

	_, err = ParseHttpMethod("PATCH")
	assert.Error(t, err)
}

func TestDefinitionHelpers(t *testing.T) {
	d := &Definition{Route: "/employees", Method: MethodGet}
	assert.False(t, d.HasQuery())
	assert.Equal(t, "", d.QueryText())
	assert.Equal(t, OpOther, d.Operation())

	d.Query = StringPtr("SELECT * FROM employees")
	assert.True(t, d.HasQuery())
	assert.Equal(t, OpSelect, d.Operation())

	assert.True(t, d.SameIdentity(&Definition{Route: "/employees", Method: MethodGet}))
	assert.False(t, d.SameIdentity(&Definition{Route: "/employees", Method: MethodPost}))
	assert.False(t, d.SameIdentity(&Definition{Route: "/Employees", Method: MethodGet}))

	d.AllowedRoles = []string{"admin", "*"}
	assert.True(t, d.AllowsAnyRole())
}
