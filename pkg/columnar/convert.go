package columnar

import (
	"fmt"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/parquet-go/parquet-go"
)

// toParquetSchema builds a *parquet.Schema whose leaf nodes mirror sch's
// logical types and nullability, in the schema's fixed column order.
func toParquetSchema(sch schema.Schema) *parquet.Schema {
	group := make(parquet.Group, len(sch.Fields))
	for _, f := range sch.Fields {
		node := leafNode(f.Type)
		if f.Nullable {
			node = parquet.Optional(node)
		}
		group[f.Name] = node
	}
	return parquet.NewSchema(sch.Name, group)
}

func leafNode(t schema.LogicalType) parquet.Node {
	switch t {
	case schema.String:
		return parquet.String()
	case schema.Int32:
		return parquet.Int(32)
	case schema.Int64:
		return parquet.Int(64)
	case schema.Float64:
		return parquet.Leaf(parquet.DoubleType)
	case schema.Boolean:
		return parquet.Leaf(parquet.BooleanType)
	case schema.TimestampMS:
		return parquet.Timestamp(parquet.Millisecond)
	case schema.ListOfT:
		return parquet.List(parquet.String())
	default:
		return parquet.String()
	}
}

// rowToParquetValue projects one types.Row into the map shape the parquet
// writer expects, in schema column order, filling absent columns with nil.
func rowToParquetValue(row types.Row, sch schema.Schema) map[string]any {
	out := make(map[string]any, len(sch.Fields))
	for _, f := range sch.Fields {
		v, ok := row[f.Name]
		if !ok {
			out[f.Name] = nil
			continue
		}
		out[f.Name] = normalizeValue(v, f.Type)
	}
	return out
}

func normalizeValue(v any, t schema.LogicalType) any {
	if v == nil {
		return nil
	}
	if t == schema.TimestampMS {
		if tm, ok := v.(time.Time); ok {
			return tm
		}
	}
	return v
}

// inferFieldType guesses a LogicalType from a Go runtime value, used to
// validate incoming rows against an expected schema before writing.
func inferFieldType(v any) (schema.LogicalType, bool) {
	switch v.(type) {
	case nil:
		return "", false
	case string:
		return schema.String, true
	case int, int32:
		return schema.Int32, true
	case int64:
		return schema.Int64, true
	case float32, float64:
		return schema.Float64, true
	case bool:
		return schema.Boolean, true
	case time.Time:
		return schema.TimestampMS, true
	case []any:
		return schema.ListOfT, true
	default:
		return "", false
	}
}

// validateRows checks every row's fields against sch: column set matches
// (no missing non-nullable field, no stray extra column), and every
// present value's inferred type is compatible with the schema's declared
// type. Column order itself is enforced by construction at write time
// (rowToParquetValue always projects in schema order), not as a row-level
// diagnostic, since a Row is an unordered keyed map rather than a
// positional tuple.
func validateRows(rows []types.Row, sch schema.Schema) []apperr.FieldError {
	var errs []apperr.FieldError

	fieldSet := make(map[string]schema.Field, len(sch.Fields))
	for _, f := range sch.Fields {
		fieldSet[f.Name] = f
	}

	for i, row := range rows {
		for name := range row {
			if _, known := fieldSet[name]; !known {
				errs = append(errs, apperr.FieldError{
					RowIndex: i,
					Field:    name,
					Error:    "unknown column for this schema",
				})
			}
		}
		for _, f := range sch.Fields {
			v, present := row[f.Name]
			if !present || v == nil {
				if !f.Nullable {
					errs = append(errs, apperr.FieldError{
						RowIndex: i,
						Field:    f.Name,
						Error:    "required field is missing or null",
					})
				}
				continue
			}
			inferred, ok := inferFieldType(v)
			if !ok || !schema.Compatible(inferred, f.Type) {
				errs = append(errs, apperr.FieldError{
					RowIndex: i,
					Field:    f.Name,
					Value:    v,
					Error:    fmt.Sprintf("value type incompatible with column type %s", f.Type),
				})
			}
		}
	}
	return errs
}
