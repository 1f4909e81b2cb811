// Package ingest is the bulk CSV entry point for a pre-existing or new
// record: row-by-row schema validation, valid/invalid partitioning,
// coercion, and routing to create or update under a synthesized comment.
package ingest

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/google/uuid"
)

// RowError is one field-level diagnostic for a CSV row: which row, which
// field, the offending value, and the validation error.
type RowError struct {
	RowIndex int    `json:"row_index"`
	Field    string `json:"field"`
	Value    string `json:"value,omitempty"`
	Error    string `json:"error"`
}

// FieldSummary groups errors by field for the result envelope's
// error_summary.
type FieldSummary struct {
	Count  int        `json:"count"`
	Errors []RowError `json:"errors"`
}

// Result is the full ingestion envelope, returned regardless of partial
// failure.
type Result struct {
	BatchID      string                  `json:"batch_id"`
	TotalRows    int                     `json:"total_rows"`
	ValidRows    int                     `json:"valid_rows"`
	InvalidRows  int                     `json:"invalid_rows"`
	RecordID     string                  `json:"record_id,omitempty"`
	Version      int                     `json:"version,omitempty"`
	Errors       []RowError              `json:"errors"`
	ErrorSummary map[string]FieldSummary `json:"error_summary"`
}

// Options configures one ingestion call.
type Options struct {
	Project     string
	EntityType  types.EntityType
	EntityID    string
	TableName   string
	User        string
	Comment     string
	SkipErrors  bool
}

// Engine wires ingestion to the entity repository facade.
type Engine struct {
	entities *entityrepo.Repo
}

// New builds an Engine over an entityrepo.Repo.
func New(entities *entityrepo.Repo) *Engine {
	return &Engine{entities: entities}
}

// IngestCSVString parses data as CSV and ingests it per opts.
func (e *Engine) IngestCSVString(ctx context.Context, data string, opts Options) (*Result, error) {
	return e.IngestCSV(ctx, strings.NewReader(data), opts)
}

// IngestCSV parses r as CSV (header row + data rows), validates each row
// against schema(opts.TableName), partitions rows into valid/invalid, and
// if any valid rows remain, routes them to entityrepo.CreateRows or
// .UpdateRows.
func (e *Engine) IngestCSV(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	sch, ok := schema.Lookup(opts.TableName)
	if !ok {
		return nil, apperr.MalformedInput("ingest: unknown table %q", opts.TableName)
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	batchID := uuid.NewString()

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return &Result{BatchID: batchID, ErrorSummary: map[string]FieldSummary{}}, nil
		}
		return nil, apperr.MalformedInput("ingest: read header: %v", err)
	}

	result := &Result{BatchID: batchID, ErrorSummary: map[string]FieldSummary{}}
	var validRows []types.Row

	rowIndex := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: read row %d: %w", rowIndex, err)
		}
		result.TotalRows++

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}

		rowErrors := validateRow(rowIndex, row, sch)
		if len(rowErrors) > 0 {
			result.InvalidRows++
			result.Errors = append(result.Errors, rowErrors...)
			for _, fe := range rowErrors {
				summary := result.ErrorSummary[fe.Field]
				summary.Count++
				summary.Errors = append(summary.Errors, fe)
				result.ErrorSummary[fe.Field] = summary
			}
			if !opts.SkipErrors {
				break
			}
			rowIndex++
			continue
		}

		coerced := coerceRow(row, sch)
		validRows = append(validRows, coerced)
		result.ValidRows++
		rowIndex++
	}

	if len(validRows) == 0 {
		return result, nil
	}

	comment := opts.Comment
	if comment == "" {
		comment = fmt.Sprintf("Bulk CSV upload: %d rows, %d errors", result.ValidRows, result.InvalidRows)
	}

	recordID := entityrepo.RecordID(opts.Project, opts.EntityType, opts.EntityID)

	existing, getErr := e.entities.Get(ctx, opts.Project, opts.EntityType, opts.EntityID)
	var res *entityrepo.BatchResult
	if getErr != nil {
		res, err = e.entities.CreateRows(ctx, opts.Project, opts.EntityType, opts.EntityID, validRows, opts.User, comment)
	} else {
		_ = existing
		res, err = e.entities.UpdateRows(ctx, opts.Project, opts.EntityType, opts.EntityID, validRows, opts.User, comment)
	}
	if err != nil {
		return nil, err
	}

	result.RecordID = recordID
	result.Version = res.Metadata.CurrentVersion
	return result, nil
}

func validateRow(rowIndex int, row map[string]string, sch schema.Schema) []RowError {
	var errs []RowError
	for _, f := range sch.Fields {
		raw, present := row[f.Name]
		trimmed := strings.TrimSpace(raw)
		if !present || trimmed == "" {
			if !f.Nullable {
				errs = append(errs, RowError{
					RowIndex: rowIndex, Field: f.Name, Value: raw,
					Error: "Required field is missing or null",
				})
			}
			continue
		}
		if err := typeCheck(trimmed, f.Type); err != "" {
			errs = append(errs, RowError{RowIndex: rowIndex, Field: f.Name, Value: raw, Error: err})
		}
	}
	return errs
}

func typeCheck(v string, t schema.LogicalType) string {
	switch t {
	case schema.Int32, schema.Int64:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "value is not a valid integer"
		}
	case schema.Float64:
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return "value is not a valid floating point number"
		}
	case schema.Boolean:
		if !isRecognizedBoolToken(v) {
			return "value is not a recognized boolean token"
		}
	case schema.TimestampMS:
		if _, err := parseTimestamp(v); err != nil {
			return "value is not a parseable timestamp"
		}
	case schema.ListOfT:
		var v2 []any
		if err := json.Unmarshal([]byte(v), &v2); err != nil {
			return "value is not a JSON-encoded array"
		}
	case schema.String:
		// widely permissive
	}
	return ""
}

func isRecognizedBoolToken(v string) bool {
	switch strings.ToLower(v) {
	case "true", "false", "1", "0", "yes", "no":
		return true
	}
	return false
}

func parseTimestamp(v string) (time.Time, error) {
	layouts := []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}

// coerceRow parses every cell to its schema logical type. Unparseable
// cells on a nullable field become explicit null; non-nullable failures
// were already caught by validateRow.
func coerceRow(row map[string]string, sch schema.Schema) types.Row {
	out := make(types.Row, len(sch.Fields))
	for _, f := range sch.Fields {
		raw, present := row[f.Name]
		trimmed := strings.TrimSpace(raw)
		if !present || trimmed == "" {
			out[f.Name] = nil
			continue
		}
		out[f.Name] = coerceValue(trimmed, f)
	}
	return out
}

func coerceValue(v string, f schema.Field) any {
	switch f.Type {
	case schema.Int32, schema.Int64:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nullIfNullable(f)
		}
		return n
	case schema.Float64:
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nullIfNullable(f)
		}
		return n
	case schema.Boolean:
		switch strings.ToLower(v) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		default:
			return nullIfNullable(f)
		}
	case schema.TimestampMS:
		t, err := parseTimestamp(v)
		if err != nil {
			return nullIfNullable(f)
		}
		return t
	case schema.ListOfT:
		var list []any
		if err := json.Unmarshal([]byte(v), &list); err != nil {
			return nullIfNullable(f)
		}
		return list
	default:
		return v
	}
}

func nullIfNullable(f schema.Field) any {
	if f.Nullable {
		return nil
	}
	return nil
}
