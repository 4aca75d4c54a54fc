package curriculum

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

//go:embed curriculum.yaml
var defaultYAML []byte

const schemaURL = "schema://curriculum.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// document is the top-level shape of a curriculum file.
type document struct {
	Modules []Module `yaml:"modules"`
}

// Load reads a YAML curriculum definition, checks it against the
// curriculum schema, and builds a validated graph.
func Load(r io.Reader) (*Graph, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read curriculum: %w", err)
	}
	return parse(raw)
}

// LoadFile loads a curriculum definition from disk.
func LoadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curriculum: %w", err)
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

func parse(raw []byte) (*Graph, error) {
	if err := checkSchema(raw); err != nil {
		return nil, err
	}

	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode curriculum: %w", err)
	}
	return New(doc.Modules)
}

// checkSchema validates the raw YAML document against the embedded schema.
func checkSchema(raw []byte) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parse curriculum yaml: %w", err)
	}

	// The jsonschema library expects JSON-shaped values, so round-trip the
	// YAML tree through encoding/json.
	asJSON, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("convert curriculum to json: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(asJSON, &parsed); err != nil {
		return fmt.Errorf("convert curriculum to json: %w", err)
	}

	compiled, err := getCompiledSchema()
	if err != nil {
		return err
	}
	if err := compiled.Validate(parsed); err != nil {
		return fmt.Errorf("curriculum schema validation failed: %w", err)
	}
	return nil
}

func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var def any
		if err := json.Unmarshal(schemaJSON, &def); err != nil {
			schemaErr = fmt.Errorf("parse curriculum schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, def); err != nil {
			schemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile curriculum schema: %w", schemaErr)
		}
	})
	return compiledSchema, schemaErr
}

var defaultGraph *Graph

func init() {
	g, err := parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded curriculum is invalid: %v", err))
	}
	defaultGraph = g
}

// Default returns the built-in curriculum.
func Default() *Graph {
	return defaultGraph
}
