// Package schema provides typed field descriptors for actions and models.
//
// Every registered action declares one Field per input slot. A Field
// carries a name, a Type (primitive or composite), a required flag, an
// optional stringified default, and visibility/secret markers. The type
// system covers the primitives (string, integer, number, boolean, byte
// strings) plus arrays, tuples, string-keyed objects, and closed unions.
//
// Descriptors can be built three ways:
//
//	// Explicit builder
//	f := schema.NewField("retries", schema.Integer()).WithDefault(3)
//
//	// From a Go type, applying the standard mapping table
//	f := schema.MustFieldFor[[]string]("tags")
//
//	// From the canonical mapping form (storage/transport)
//	f, err := schema.FieldFromMap(m)
//
// Unsupported Go types fail loudly with ErrUnsupportedType rather than
// degrading to a string descriptor; registration code is expected to
// surface that error.
//
// Validation of an input map against a field list aggregates every
// failure into a single ValidationError so callers can report all
// problems at once.
package schema
