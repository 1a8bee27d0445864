package cms

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FieldType is the kind of value an endpoint field holds.
type FieldType string

const (
	FieldTypeText         FieldType = "text"
	FieldTypeNumber       FieldType = "number"
	FieldTypeBoolean      FieldType = "boolean"
	FieldTypeDate         FieldType = "date"
	FieldTypeSelect       FieldType = "select"
	FieldTypeRelation     FieldType = "relation"
	FieldTypeRelationList FieldType = "relationList"
	FieldTypeMedia        FieldType = "media"
	FieldTypeObject       FieldType = "object"
	FieldTypeArray        FieldType = "array"
	FieldTypeAny          FieldType = "any"
)

// Operation names a logical API operation.
type Operation string

const (
	OperationGet     Operation = "get"
	OperationList    Operation = "list"
	OperationCreate  Operation = "create"
	OperationReplace Operation = "replace"
	OperationUpdate  Operation = "update"
	OperationDelete  Operation = "delete"
)

// Field describes one endpoint field.
type Field struct {
	Name     string    `json:"name"     yaml:"name"     toml:"name"     validate:"required"`
	Type     FieldType `json:"type"     yaml:"type"     toml:"type"     validate:"required,oneof=text number boolean date select relation relationList media object array any"`
	Required bool      `json:"required" yaml:"required" toml:"required"`
}

// Schema describes the fields stored in one endpoint.
type Schema struct {
	Endpoint string  `json:"endpoint" yaml:"endpoint" toml:"endpoint" validate:"required"`
	Fields   []Field `json:"fields"   yaml:"fields"   toml:"fields"   validate:"dive"`
}

// SchemaSet maps endpoint names to their schemas.
type SchemaSet map[string]*Schema

type schemaFile struct {
	Endpoints []*Schema `json:"endpoints" yaml:"endpoints" toml:"endpoints" validate:"dive,required"`
}

var schemaValidator = validator.New(validator.WithRequiredStructEnabled())

// NewSchemaSet builds a set from schemas, validating each definition.
func NewSchemaSet(schemas ...*Schema) (SchemaSet, error) {
	set := make(SchemaSet, len(schemas))

	for _, s := range schemas {
		if s == nil {
			continue
		}

		if err := s.Validate(); err != nil {
			return nil, err
		}

		if _, dup := set[s.Endpoint]; dup {
			return nil, fmt.Errorf("%w: endpoint %q defined twice", ErrInvalidSchema, s.Endpoint)
		}

		set[s.Endpoint] = s
	}

	return set, nil
}

// LoadSchemaFile reads a schema set from a .yaml, .yml or .toml file.
func LoadSchemaFile(path string) (SchemaSet, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading schema file %s: %w", path, err)
	}

	var file schemaFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &file)
	case ".toml":
		_, err = toml.Decode(string(data), &file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSchemaFile, path)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing schema file %s: %w", path, err)
	}

	return NewSchemaSet(file.Endpoints...)
}

// Lookup returns the schema for endpoint.
func (s SchemaSet) Lookup(endpoint string) (*Schema, error) {
	schema, ok := s[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}

	return schema, nil
}

// Endpoints returns the endpoint names in sorted order.
func (s SchemaSet) Endpoints() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Validate checks the schema definition itself.
func (s *Schema) Validate() error {
	if err := schemaValidator.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSchema, err)
	}

	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if IsMetadataField(f.Name) {
			return fmt.Errorf("%w: %s.%s is server-assigned", ErrInvalidSchema, s.Endpoint, f.Name)
		}

		if seen[f.Name] {
			return fmt.Errorf("%w: %s.%s defined twice", ErrInvalidSchema, s.Endpoint, f.Name)
		}

		seen[f.Name] = true
	}

	return nil
}

// Field returns the named field definition.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}

	return Field{}, false
}

// ValidateFields checks a field selection against the schema. Metadata fields
// are always selectable.
func (s *Schema) ValidateFields(names []string) error {
	var errs []error

	for _, name := range names {
		if IsMetadataField(name) {
			continue
		}

		if _, ok := s.Field(name); !ok {
			errs = append(errs, fmt.Errorf("%w: %s has no field %q", ErrSchemaViolation, s.Endpoint, name))
		}
	}

	return errors.Join(errs...)
}

// ValidateBody checks a write body for op. Create and replace require every
// required field; update accepts any subset. Unknown fields and an explicit id
// are rejected on every verb.
func (s *Schema) ValidateBody(op Operation, body Record) error {
	var errs []error

	for name, value := range body {
		if name == FieldID {
			errs = append(errs, fmt.Errorf("%w: %s: id is server-assigned", ErrSchemaViolation, s.Endpoint))

			continue
		}

		if isDateField(name) {
			if err := checkFieldType(s.Endpoint, Field{Name: name, Type: FieldTypeDate}, value); err != nil {
				errs = append(errs, err)
			}

			continue
		}

		field, ok := s.Field(name)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s has no field %q", ErrSchemaViolation, s.Endpoint, name))

			continue
		}

		if err := checkFieldType(s.Endpoint, field, value); err != nil {
			errs = append(errs, err)
		}
	}

	if op == OperationCreate || op == OperationReplace {
		for _, f := range s.Fields {
			if !f.Required {
				continue
			}

			if v, ok := body[f.Name]; !ok || v == nil {
				errs = append(errs, fmt.Errorf("%w: %s.%s is required for %s", ErrSchemaViolation, s.Endpoint, f.Name, op))
			}
		}
	}

	return errors.Join(errs...)
}

func checkFieldType(endpoint string, field Field, value any) error {
	if value == nil || field.Type == FieldTypeAny {
		return nil
	}

	ok := true

	switch field.Type {
	case FieldTypeText, FieldTypeRelation:
		_, ok = value.(string)
	case FieldTypeNumber:
		ok = isNumber(value)
	case FieldTypeBoolean:
		_, ok = value.(bool)
	case FieldTypeDate:
		ok = isDate(value)
	case FieldTypeSelect, FieldTypeRelationList:
		ok = isStringList(value)
	case FieldTypeMedia, FieldTypeObject:
		ok = isObject(value)
	case FieldTypeArray:
		ok = isArray(value)
	}

	if !ok {
		return fmt.Errorf("%w: %s.%s must be %s, got %T", ErrSchemaViolation, endpoint, field.Name, field.Type, value)
	}

	return nil
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}

	return false
}

func isDate(v any) bool {
	switch t := v.(type) {
	case time.Time:
		return true
	case string:
		_, err := time.Parse(time.RFC3339Nano, t)

		return err == nil
	}

	return false
}

func isStringList(v any) bool {
	switch t := v.(type) {
	case []string:
		return true
	case []any:
		for _, e := range t {
			if _, ok := e.(string); !ok {
				return false
			}
		}

		return true
	}

	return false
}

func isObject(v any) bool {
	switch v.(type) {
	case map[string]any, Record:
		return true
	}

	return false
}

func isArray(v any) bool {
	switch v.(type) {
	case []any, []string, []Record, []map[string]any:
		return true
	}

	return false
}
