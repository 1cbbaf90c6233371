package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ParamType is the coarse JSON type advertised for a tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
	TypeNumber  ParamType = "number"
	TypeBoolean ParamType = "boolean"
	TypeArray   ParamType = "array"
	TypeObject  ParamType = "object"
	TypeNull    ParamType = "null"
)

var knownTypes = map[string]ParamType{
	"string":  TypeString,
	"integer": TypeInteger,
	"number":  TypeNumber,
	"boolean": TypeBoolean,
	"array":   TypeArray,
	"object":  TypeObject,
	"null":    TypeNull,
}

// Model APIs accept function names matching this pattern.
var toolNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Param describes one tool parameter.
type Param struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Items       *Param    `json:"items,omitempty"`

	// Default is the value bound when the model omits the parameter.
	// Nil means the parameter has no declared default.
	Default any `json:"-"`
}

// Schema is the structured description of a tool handed to the model.
type Schema struct {
	Name        string
	Description string
	Parameters  *orderedmap.OrderedMap[string, Param]
	Required    []string
}

// IsRequired reports whether name lacks a default value.
func (s Schema) IsRequired(name string) bool {
	for _, r := range s.Required {
		if r == name {
			return true
		}
	}
	return false
}

// Defaults returns the declared default of every parameter that has one.
func (s Schema) Defaults() map[string]any {
	out := map[string]any{}
	if s.Parameters == nil {
		return out
	}
	for pair := s.Parameters.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value.Default != nil {
			out[pair.Key] = pair.Value.Default
		}
	}
	return out
}

type objectSchema struct {
	Type       string                                `json:"type"`
	Properties *orderedmap.OrderedMap[string, Param] `json:"properties"`
	Required   []string                              `json:"required"`
}

// ParametersJSON encodes the parameters as a JSON Schema object, keeping field order.
func (s Schema) ParametersJSON() (json.RawMessage, error) {
	props := s.Parameters
	if props == nil {
		props = orderedmap.New[string, Param]()
	}
	req := s.Required
	if req == nil {
		req = []string{}
	}
	b, err := json.Marshal(objectSchema{Type: "object", Properties: props, Required: req})
	if err != nil {
		return nil, fmt.Errorf("encode parameters for %q: %w", s.Name, err)
	}
	return b, nil
}

// DeriveSchema builds a Schema for a tool whose parameters are the fields of input.
//
// Rules:
//   - Parameter names come from json tags, in field order.
//   - The type tag follows the reflected JSON type; anything else is "string".
//   - A parameter is required unless its json tag has omitempty or its
//     jsonschema tag declares default=...
//   - input must be a struct (or pointer to one); anything else is a SchemaError.
func DeriveSchema(name, description string, input reflect.Type) (Schema, error) {
	if !toolNamePattern.MatchString(name) {
		return Schema{}, &SchemaError{Tool: name, Err: fmt.Errorf("invalid tool name")}
	}
	if input == nil {
		return Schema{}, &SchemaError{Tool: name, Err: fmt.Errorf("no input type")}
	}
	for input.Kind() == reflect.Pointer {
		input = input.Elem()
	}
	if input.Kind() != reflect.Struct {
		return Schema{}, &SchemaError{Tool: name, Err: fmt.Errorf("input must be a struct, got %s", input.Kind())}
	}

	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	js := reflector.ReflectFromType(input)
	if js == nil {
		return Schema{}, &SchemaError{Tool: name, Err: fmt.Errorf("reflect %s", input)}
	}

	params := orderedmap.New[string, Param]()
	if js.Properties != nil {
		for pair := js.Properties.Oldest(); pair != nil; pair = pair.Next() {
			params.Set(pair.Key, toParam(pair.Value))
		}
	}

	required := make([]string, 0, len(js.Required))
	for _, r := range js.Required {
		p, ok := params.Get(r)
		if !ok || p.Default != nil {
			continue
		}
		required = append(required, r)
	}

	return Schema{
		Name:        name,
		Description: strings.TrimSpace(description),
		Parameters:  params,
		Required:    required,
	}, nil
}

func toParam(s *jsonschema.Schema) Param {
	if s == nil {
		return Param{Type: TypeString}
	}
	t, ok := knownTypes[s.Type]
	if !ok {
		t = TypeString
	}
	p := Param{Type: t, Description: s.Description, Default: s.Default}
	if t == TypeArray {
		// Arrays always describe their elements.
		items := toParam(s.Items)
		items.Default = nil
		p.Items = &items
	}
	return p
}
