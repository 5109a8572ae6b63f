// Package snapshot exports the service registry joined with the live routes
// as Apache Arrow record batches.
package snapshot

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ServicesSchema returns the Arrow schema of a services snapshot.
//
// Fields:
//   - id: int64 - Service id
//   - name: string - Service name
//   - language_runtime: string - Runtime name (net, java, machine_code, python)
//   - working_dir: string (nullable)
//   - arguments: string (nullable)
//   - facts: map<string, string> - Facts the service was registered with
//   - address: string (nullable) - Live route address, null when offline
//   - last_seen: timestamp[ms] (nullable) - Last traffic from the address
func ServicesSchema() *arrow.Schema {
	return arrow.NewSchema(
		[]arrow.Field{
			{Name: "id", Type: arrow.PrimitiveTypes.Int64},
			{Name: "name", Type: arrow.BinaryTypes.String},
			{Name: "language_runtime", Type: arrow.BinaryTypes.String},
			{Name: "working_dir", Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: "arguments", Type: arrow.BinaryTypes.String, Nullable: true},
			{
				Name: "facts",
				Type: arrow.MapOf(
					arrow.BinaryTypes.String,
					arrow.BinaryTypes.String,
				),
			},
			{Name: "address", Type: arrow.BinaryTypes.String, Nullable: true},
			{Name: "last_seen", Type: arrow.FixedWidthTypes.Timestamp_ms, Nullable: true},
		},
		nil,
	)
}

// ValidateSchema checks that a record has the services snapshot layout.
func ValidateSchema(record arrow.Record) error {
	if record == nil {
		return errors.New("record is nil")
	}

	expected := ServicesSchema()
	actual := record.Schema()
	if actual.NumFields() != expected.NumFields() {
		return fmt.Errorf("field count mismatch: got %d, expected %d",
			actual.NumFields(), expected.NumFields())
	}
	for i := 0; i < actual.NumFields(); i++ {
		a, e := actual.Field(i), expected.Field(i)
		if a.Name != e.Name {
			return fmt.Errorf("field %d name mismatch: got %s, expected %s", i, a.Name, e.Name)
		}
		if !arrow.TypeEqual(a.Type, e.Type) {
			return fmt.Errorf("field %s type mismatch: got %s, expected %s", a.Name, a.Type, e.Type)
		}
	}
	return nil
}
