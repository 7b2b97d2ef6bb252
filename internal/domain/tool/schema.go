package tool

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// AddressPattern matches an EVM address. Surrounding whitespace is tolerated
// because handlers trim before forwarding.
const AddressPattern = `^\s*0x[a-fA-F0-9]{40}\s*$`

// SchemaOption narrows an inferred input schema.
type SchemaOption func(*jsonschema.Schema) error

func property(name string, apply func(*jsonschema.Schema)) SchemaOption {
	return func(s *jsonschema.Schema) error {
		p, ok := s.Properties[name]
		if !ok || p == nil {
			return fmt.Errorf("%w: unknown property %q", ErrToolSchema, name)
		}
		apply(p)
		return nil
	}
}

// Address requires each named string property to be an EVM address.
func Address(names ...string) []SchemaOption {
	out := make([]SchemaOption, 0, len(names))
	for _, name := range names {
		out = append(out, property(name, func(p *jsonschema.Schema) {
			p.Pattern = AddressPattern
		}))
	}
	return out
}

// Positive requires each named integer property to be >= 1.
func Positive(names ...string) []SchemaOption {
	out := make([]SchemaOption, 0, len(names))
	for _, name := range names {
		out = append(out, Range(name, 1, 0))
	}
	return out
}

// Range bounds a numeric property. A hi of 0 leaves the upper bound open.
func Range(name string, lo, hi float64) SchemaOption {
	return property(name, func(p *jsonschema.Schema) {
		p.Minimum = ptr(lo)
		if hi != 0 {
			p.Maximum = ptr(hi)
		}
	})
}

// NonEmpty requires a string property to have at least one character.
func NonEmpty(name string) SchemaOption {
	return property(name, func(p *jsonschema.Schema) {
		p.MinLength = ptr(1)
	})
}

func ptr[T any](v T) *T { return &v }

// schemaOpts flattens option groups.
func schemaOpts(groups ...[]SchemaOption) []SchemaOption {
	var out []SchemaOption
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
