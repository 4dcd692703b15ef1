package mappings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// Document is the on-disk YAML shape of a mapping set.
type Document struct {
	Functions  map[string]string `yaml:"functions" json:"functions,omitempty"`
	Types      map[string]string `yaml:"types" json:"types,omitempty"`
	Exceptions map[string]string `yaml:"exceptions" json:"exceptions,omitempty"`
}

const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"functions":  {"type": "object", "additionalProperties": {"type": "string"}},
		"types":      {"type": "object", "additionalProperties": {"type": "string"}},
		"exceptions": {"type": "object", "additionalProperties": {"type": "string"}}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(documentSchema)

// Load parses a YAML mapping document, validates it against the document
// schema and returns the resulting tables.
func Load(data []byte) (Tables, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Tables{}, fmt.Errorf("parse mapping document: %w", err)
	}
	if raw == nil {
		return Tables{}, nil
	}

	jsonDoc, err := json.Marshal(raw)
	if err != nil {
		return Tables{}, fmt.Errorf("convert mapping document: %w", err)
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(jsonDoc))
	if err != nil {
		return Tables{}, fmt.Errorf("validate mapping document: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, issue := range result.Errors() {
			msgs = append(msgs, issue.String())
		}
		return Tables{}, fmt.Errorf("invalid mapping document: %s", strings.Join(msgs, "; "))
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Tables{}, fmt.Errorf("decode mapping document: %w", err)
	}
	return New(doc.Functions, doc.Types, doc.Exceptions), nil
}

// LoadFile reads and parses the YAML mapping document at path.
func LoadFile(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read mapping document: %w", err)
	}
	tables, err := Load(data)
	if err != nil {
		return Tables{}, fmt.Errorf("%s: %w", path, err)
	}
	return tables, nil
}
