// Package loader reads user endpoint declarations from the endpoints directory.
//
// Every file maps endpoint names to definitions. TOML, JSON and YAML are
// accepted; definitions are decoded untyped first so that shape errors can be
// reported with the endpoint's name. Subdirectories, including _auto, are not
// read.
package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nv0skar/Noisier/internal/application/registry"
	"github.com/nv0skar/Noisier/internal/domain/endpoint"
	apperrors "github.com/nv0skar/Noisier/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Declaration is one named definition read from a file
type Declaration struct {
	Name       string
	File       string
	Definition endpoint.Definition
}

type rawEntry struct {
	name   string
	fields map[string]any
}

// ReadDir reads every declaration file directly under dir, in file name order.
// The directory is created when missing.
func ReadDir(l *logrus.Entry, dir string) ([]Declaration, error) {
	l.WithField("dir", dir).Debug("looking for endpoints")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create endpoints directory: %w", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read endpoints directory: %w", err)
	}

	var decls []Declaration
	for _, e := range entries {
		if e.IsDir() || !supported(e.Name()) {
			continue
		}
		fileDecls, err := ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		decls = append(decls, fileDecls...)
	}
	return decls, nil
}

// ReadFile decodes and validates one declaration file
func ReadFile(path string) ([]Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raws []rawEntry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		raws, err = decodeTOML(data)
	case ".json":
		raws, err = decodeJSON(data)
	case ".yaml", ".yml":
		raws, err = decodeYAML(data)
	default:
		return nil, apperrors.NewConfigError("", fmt.Sprintf("unsupported declaration file %s", path))
	}
	if err != nil {
		return nil, apperrors.WrapConfigError("", fmt.Sprintf("cannot deserialize endpoint definitions in %s", path), err)
	}

	decls := make([]Declaration, 0, len(raws))
	for _, raw := range raws {
		def, err := Parse(raw.name, raw.fields)
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(raw.name, endpoint.GeneratedPrefix) || def.Generated {
			return nil, apperrors.NewConfigError(raw.name,
				fmt.Sprintf("endpoint names cannot start with '%s' or be marked as _generated (%s)", endpoint.GeneratedPrefix, path))
		}
		decls = append(decls, Declaration{Name: raw.name, File: path, Definition: def})
	}
	return decls, nil
}

// Register puts every declaration into reg in strict mode
func Register(l *logrus.Entry, reg *registry.Registry, decls []Declaration) error {
	for _, d := range decls {
		if err := reg.Put(d.Name, d.Definition, true); err != nil {
			return err
		}
		l.WithFields(logrus.Fields{"endpoint": d.Name, "file": filepath.Base(d.File)}).Debug("loaded endpoint")
	}
	return nil
}

// Parse converts an untyped declaration into a definition. Unknown keys and
// values of the wrong shape are configuration errors.
func Parse(name string, fields map[string]any) (endpoint.Definition, error) {
	var def endpoint.Definition
	fail := func(msg string) (endpoint.Definition, error) {
		return endpoint.Definition{}, apperrors.NewConfigError(name, msg)
	}

	for key, value := range fields {
		var ok bool
		switch key {
		case "route":
			def.Route, ok = value.(string)
		case "method":
			var s string
			if s, ok = value.(string); ok {
				m, err := endpoint.ParseHttpMethod(s)
				if err != nil {
					return fail(fmt.Sprintf("'%s' is not a supported HTTP method", s))
				}
				def.Method = m
			}
		case "query":
			var s string
			if s, ok = value.(string); ok {
				def.Query = &s
			}
		case "description":
			def.Description, ok = value.(string)
		case "requestBodyParams":
			def.RequestBodyParams, ok = stringList(value)
		case "requiredAuth":
			def.RequiredAuth, ok = value.(bool)
		case "allowedRoles":
			if def.AllowedRoles, ok = stringList(value); !ok {
				return fail("the allowed roles must be a list of strings")
			}
		case "_generated":
			def.Generated, ok = value.(bool)
		default:
			return fail(fmt.Sprintf("unknown key '%s'", key))
		}
		if !ok {
			return fail(fmt.Sprintf("'%s' has the wrong type", key))
		}
	}

	if def.Route == "" {
		return fail("'route' is required")
	}
	if def.Method == "" {
		return fail("'method' is required")
	}
	return def, nil
}

func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

func supported(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".toml", ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func decodeTOML(data []byte) ([]rawEntry, error) {
	var doc map[string]map[string]any
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	var out []rawEntry
	for _, key := range md.Keys() {
		if len(key) != 1 {
			continue
		}
		out = append(out, rawEntry{name: key[0], fields: doc[key[0]]})
	}
	return out, nil
}

func decodeJSON(data []byte) ([]rawEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object of endpoint definitions")
	}

	var out []rawEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, _ := tok.(string)
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", name, err)
		}
		out = append(out, rawEntry{name: name, fields: fields})
	}
	return out, nil
}

func decodeYAML(data []byte) ([]rawEntry, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of endpoint definitions")
	}

	out := make([]rawEntry, 0, len(doc.Content)/2)
	for i := 0; i+1 < len(doc.Content); i += 2 {
		name := doc.Content[i].Value
		var fields map[string]any
		if err := doc.Content[i+1].Decode(&fields); err != nil {
			return nil, fmt.Errorf("endpoint %s: %w", name, err)
		}
		out = append(out, rawEntry{name: name, fields: fields})
	}
	return out, nil
}
