// Package columnar is the immutable columnar write/read engine underneath
// the versioned repository. Every write is schema-validated and Snappy
// compressed; Write gets a unique suffix, WriteFixedKey writes the exact
// key it is given, and partitioned writes lay out a Hive-style directory
// keyed by partition column values.
package columnar

import (
	"bytes"
	"context"
	"io"
	"os"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/metrics"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
	"github.com/parquet-go/parquet-go"
)

// Table is the materialized result of Read: column name to its values,
// row-aligned.
type Table struct {
	Columns map[string][]any
	NumRows int
}

// Rows re-assembles Table back into row-major form, for callers that want
// one types.Row per record rather than column slices.
func (t *Table) Rows() []types.Row {
	rows := make([]types.Row, t.NumRows)
	for i := range rows {
		rows[i] = types.Row{}
	}
	for col, values := range t.Columns {
		for i, v := range values {
			rows[i][col] = v
		}
	}
	return rows
}

// Write validates rows against sch then writes a single non-partitioned
// Parquet file at a uniquely-suffixed key derived from path. It returns
// the key actually written. allowOverwrite is almost always false for data
// files; callers writing versioned v{N} paths pass false and rely on the
// overwrite guard to surface concurrency collisions.
func Write(ctx context.Context, store objectstore.Store, path string, rows []types.Row, sch schema.Schema, allowOverwrite bool) (string, error) {
	if len(rows) == 0 {
		return "", apperr.MalformedInput("columnar write: no rows supplied for table %s", sch.Name)
	}
	if errs := validateRows(rows, sch); len(errs) > 0 {
		return "", apperr.NewSchemaValidationError(sch.Name, errs)
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ColumnarWriteDuration)

	key, err := uniqueFileKey(path)
	if err != nil {
		return "", apperr.Transport("columnar write: generate unique key", err)
	}

	body, err := encodeParquet(rows, sch)
	if err != nil {
		return "", err
	}

	if err := store.Put(ctx, key, body, "application/octet-stream", allowOverwrite); err != nil {
		return "", err
	}
	return key, nil
}

// WriteFixedKey writes rows to the exact key given, with no unique-suffix
// augmentation — used for versioned v{N}.parquet writes whose filename is
// fixed by the version number and whose uniqueness is enforced by the
// overwrite guard instead.
func WriteFixedKey(ctx context.Context, store objectstore.Store, key string, rows []types.Row, sch schema.Schema, allowOverwrite bool) error {
	if len(rows) == 0 {
		return apperr.MalformedInput("columnar write: no rows supplied for table %s", sch.Name)
	}
	if errs := validateRows(rows, sch); len(errs) > 0 {
		return apperr.NewSchemaValidationError(sch.Name, errs)
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ColumnarWriteDuration)

	body, err := encodeParquet(rows, sch)
	if err != nil {
		return err
	}
	return store.Put(ctx, key, body, "application/octet-stream", allowOverwrite)
}

// WritePartitioned groups rows by partitionCols' values and writes one
// uniquely-named file per group under a Hive-style directory layout
// beneath path. It returns every key written.
func WritePartitioned(ctx context.Context, store objectstore.Store, path string, rows []types.Row, sch schema.Schema, partitionCols []string) ([]string, error) {
	if len(rows) == 0 {
		return nil, apperr.MalformedInput("columnar write: no rows supplied for table %s", sch.Name)
	}
	if errs := validateRows(rows, sch); len(errs) > 0 {
		return nil, apperr.NewSchemaValidationError(sch.Name, errs)
	}

	groups := make(map[string][]types.Row)
	order := make([]string, 0)
	for _, row := range rows {
		dir := partitionDir(path, partitionCols, row)
		if _, ok := groups[dir]; !ok {
			order = append(order, dir)
		}
		groups[dir] = append(groups[dir], row)
	}

	var keys []string
	for _, dir := range order {
		key, err := Write(ctx, store, dir+"/part", groups[dir], sch, false)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// encodeParquet spills rows to a scoped temporary file, guaranteeing its
// removal on every exit path, and returns the encoded bytes.
func encodeParquet(rows []types.Row, sch schema.Schema) ([]byte, error) {
	tmp, err := os.CreateTemp("", "boreledger-columnar-*.parquet")
	if err != nil {
		return nil, apperr.Transport("columnar write: create temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	defer tmp.Close()

	pschema := toParquetSchema(sch)
	writer := parquet.NewWriter(tmp, pschema, parquet.Compression(&parquet.Snappy))

	for _, row := range rows {
		value := rowToParquetValue(row, sch)
		if _, err := writer.Write(value); err != nil {
			writer.Close()
			return nil, apperr.Transport("columnar write: encode row", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, apperr.Transport("columnar write: finalize file", err)
	}
	if err := tmp.Sync(); err != nil {
		return nil, apperr.Transport("columnar write: sync temp file", err)
	}

	body, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, apperr.Transport("columnar write: read temp file", err)
	}
	return body, nil
}

// Read downloads the object at key and decodes it as a Parquet file
// against sch, returning the materialized Table. A missing key surfaces
// objectstore's distinguished apperr.ErrNotFound.
func Read(ctx context.Context, store objectstore.Store, key string, sch schema.Schema) (*Table, error) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.ColumnarReadDuration)

	body, err := store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return decodeParquet(body, sch)
}

func decodeParquet(body []byte, sch schema.Schema) (*Table, error) {
	reader := parquet.NewReader(bytes.NewReader(body), toParquetSchema(sch))
	defer reader.Close()

	table := &Table{Columns: make(map[string][]any, len(sch.Fields))}
	for _, f := range sch.Fields {
		table.Columns[f.Name] = nil
	}

	for {
		row := make(map[string]any, len(sch.Fields))
		err := reader.Read(&row)
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperr.Transport("columnar read: decode row", err)
		}
		for _, f := range sch.Fields {
			table.Columns[f.Name] = append(table.Columns[f.Name], row[f.Name])
		}
		table.NumRows++
	}
	return table, nil
}
