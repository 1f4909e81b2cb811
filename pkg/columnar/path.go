package columnar

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// uniqueSuffix returns a UTC timestamp plus an 8-char random token, used to
// guarantee uniqueness for non-partitioned writes. Versioned writes never
// call this: they use fixed v{N} names and rely on the overwrite guard
// instead.
func uniqueSuffix() (string, error) {
	ts := time.Now().UTC().Format("20060102_150405")
	token, err := randomToken(4)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", ts, token), nil
}

func randomToken(nbytes int) (string, error) {
	buf := make([]byte, nbytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// uniqueFileKey augments basePath with a unique suffix before the .parquet
// extension, e.g. "records/p/borelog/b/versions/v1" ->
// "records/p/borelog/b/versions/v1_20260730_101500_a1b2c3d4.parquet".
func uniqueFileKey(basePath string) (string, error) {
	suffix, err := uniqueSuffix()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s.parquet", basePath, suffix), nil
}

// partitionDir builds the Hive-style directory for one row's partition
// column values beneath basePath, e.g.
// "base/project_id=acme/table_name=borelog_versions".
func partitionDir(basePath string, partitionCols []string, row map[string]any) string {
	dir := basePath
	for _, col := range partitionCols {
		v := row[col]
		dir = fmt.Sprintf("%s/%s=%v", dir, col, stringifyPartitionValue(v))
	}
	return dir
}

func stringifyPartitionValue(v any) string {
	if v == nil {
		return "__HIVE_DEFAULT_PARTITION__"
	}
	return fmt.Sprintf("%v", v)
}
