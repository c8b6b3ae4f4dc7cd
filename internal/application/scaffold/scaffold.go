// Package scaffold writes the generated endpoints of each table to disk: a
// TOML dump under endpoints/_auto for reference and a JavaScript client module
// per table.
package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"

	"github.com/BurntSushi/toml"
	"github.com/nv0skar/Noisier/internal/application/generator"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	"github.com/nv0skar/Noisier/internal/domain/schema"
	"github.com/sirupsen/logrus"
)

// AutoDir is the subdirectory of the endpoints directory that receives dumps
const AutoDir = "_auto"

// DumpEndpoints writes <endpointsDir>/_auto/<table>.toml for every table and
// returns the written paths.
func DumpEndpoints(l *logrus.Entry, endpointsDir string, tables []schema.TableSchema) ([]string, error) {
	dir := filepath.Join(endpointsDir, AutoDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var written []string
	for _, t := range tables {
		l.WithField("table", t.Name).Info("generating endpoints")

		defs := make(map[string]endpoint.Definition)
		for _, n := range generator.ForTable(t) {
			defs[n.Name] = n.Definition
		}

		path := filepath.Join(dir, t.Name+".toml")
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = toml.NewEncoder(f).Encode(defs)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

type clientFunc struct {
	Name        string
	Description string
	Method      string
	Route       string
	Args        string
	Fields      string
	FormData    bool
	First       bool
}

type clientModule struct {
	Name      string
	Functions []clientFunc
}

var routeParamRE = regexp.MustCompile(`\$(\w+)`)

var clientTemplate = template.Must(template.New("client").Parse(`/*
 * DO NOT EDIT THIS FILE, it is auto-generated.
 * All changes will be lost the next time the createapi command runs.
 * If you want to add API methods, define them in a new file.
 */

"use strict";

import { BASE_URL, requestOptions } from './common.js';

const {{ .Name }}API_auto = {
{{- range .Functions }}

    /** {{ .Description }}{{ if .Fields }} Form fields: {{ .Fields }}.{{ end }} */
    {{ .Name }}: async function({{ .Args }}) {
        let response = await axios.{{ .Method }}(` + "`${BASE_URL}{{ .Route }}`" + `{{ if .FormData }}, formData{{ end }}, requestOptions);
        return response.data{{ if .First }}[0]{{ end }};
    },
{{- end }}
};

export { {{ .Name }}API_auto };
`))

// WriteClients writes <dir>/_<table>.js for every table, plus _auth.js when
// login or signup is available.
func WriteClients(dir string, tables []schema.TableSchema, login, signup bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	var modules []clientModule
	for _, t := range tables {
		m := clientModule{Name: t.Name}
		for _, n := range generator.ForTable(t) {
			fn := clientFunction(n.Operation, n.Definition, t.PrimaryKeyField)
			if fn.FormData {
				fn.Fields = strings.Join(formFields(t, n.Definition.RequestBodyParams), ", ")
			}
			m.Functions = append(m.Functions, fn)
		}
		modules = append(modules, m)
	}

	auth := clientModule{Name: "auth"}
	if login {
		auth.Functions = append(auth.Functions, clientFunction("login", endpoint.Definition{
			Route: "/login", Method: endpoint.MethodPost, Description: "Logs in using an identifier and password",
		}, ""))
	}
	if signup {
		auth.Functions = append(auth.Functions, clientFunction("register", endpoint.Definition{
			Route: "/register", Method: endpoint.MethodPost, Description: "Registers a new user and stores the password safely in the database",
		}, ""))
	}
	if len(auth.Functions) > 0 {
		modules = append(modules, auth)
	}

	var written []string
	for _, m := range modules {
		path := filepath.Join(dir, "_"+m.Name+".js")
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("failed to create %s: %w", path, err)
		}
		err = clientTemplate.Execute(f, m)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func clientFunction(name string, def endpoint.Definition, pk string) clientFunc {
	method := strings.ToLower(def.Method.String())
	fn := clientFunc{
		Name:        name,
		Description: def.Description,
		Method:      method,
		Route:       routeParamRE.ReplaceAllString(def.Route, "$${$1}"),
		FormData:    def.Method == endpoint.MethodPost || def.Method == endpoint.MethodPut,
		First:       name == generator.OpGetByID,
	}

	var args []string
	if fn.FormData {
		args = append(args, "formData")
	}
	if pk != "" && strings.Contains(def.Route, "$") {
		args = append(args, pk)
	}
	fn.Args = strings.Join(args, ", ")
	return fn
}

// formFields drops the columns the database assigns itself
func formFields(t schema.TableSchema, params []string) []string {
	var out []string
	for _, p := range params {
		if f, ok := t.Field(p); ok && f.AutoIncrement() {
			continue
		}
		out = append(out, p)
	}
	return out
}
