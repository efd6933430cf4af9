package storage

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Schema names, one per persisted key.
const (
	SchemaUsers       = "users"
	SchemaClasses     = "classes"
	SchemaEnrollments = "enrollments"
	SchemaAttendances = "attendances"
	SchemaGrades      = "grades"
	SchemaComments    = "comments"
	SchemaSession     = "session"
)

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*jsonschema.Schema{}
)

// LoadSchema compiles (once) the embedded JSON schema for a persisted document.
func LoadSchema(name string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if schema, ok := schemaCache[name]; ok {
		return schema, nil
	}

	raw, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return nil, fmt.Errorf("unknown schema %q: %w", name, err)
	}

	url := "mem://turmas/" + name + ".schema.json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", name, err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}

	schemaCache[name] = schema
	return schema, nil
}

// MustSchema is LoadSchema for package-level wiring of the embedded schemas.
func MustSchema(name string) *jsonschema.Schema {
	schema, err := LoadSchema(name)
	if err != nil {
		panic(err)
	}
	return schema
}
