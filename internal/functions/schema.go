package functions

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// envelopeSchema is what every POST /function body must satisfy.
var envelopeSchema = mustCompile(map[string]any{
	"type":     "object",
	"required": []any{"name", "args"},
	"properties": map[string]any{
		"name": map[string]any{"type": "string"},
		"args": map[string]any{"type": "array"},
	},
})

func mustCompile(schema map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("functions: invalid schema: %v", err))
	}
	return s
}

// DecodeRequest validates body against the request envelope and decodes it.
// Numbers are kept as json.Number so integers stay integers. Anything but
// whitespace after the object is rejected.
func DecodeRequest(body []byte) (Request, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return Request{}, fmt.Errorf("%w: empty body", ErrInvalidRequest)
	}
	result, err := envelopeSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if !result.Valid() {
		return Request{}, fmt.Errorf("%w: %s", ErrInvalidRequest, describe(result))
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var req Request
	if err := dec.Decode(&req); err != nil {
		return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Request{}, fmt.Errorf("%w: unexpected data after request object", ErrInvalidRequest)
	}
	return req, nil
}

func validate(schema *gojsonschema.Schema, args []any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return err
	}
	if !result.Valid() {
		return fmt.Errorf("%s", describe(result))
	}
	return nil
}

func describe(result *gojsonschema.Result) string {
	var errs []string
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	return strings.Join(errs, ", ")
}
