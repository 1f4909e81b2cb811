package schema

var stringFamily = map[LogicalType]bool{String: true}
var integerFamily = map[LogicalType]bool{Int32: true, Int64: true}
var floatingFamily = map[LogicalType]bool{Float64: true}
var timestampFamily = map[LogicalType]bool{TimestampMS: true}

// Compatible implements the type-compatibility relation used for schema
// validation only: two types are compatible iff they are equal, or both
// string-family, or both integer-family, or both floating-family, or both
// timestamp-family. This permits incidental widening across reader/writer
// versions without weakening the column's meaning.
func Compatible(a, b LogicalType) bool {
	if a == b {
		return true
	}
	if stringFamily[a] && stringFamily[b] {
		return true
	}
	if integerFamily[a] && integerFamily[b] {
		return true
	}
	if floatingFamily[a] && floatingFamily[b] {
		return true
	}
	if timestampFamily[a] && timestampFamily[b] {
		return true
	}
	return false
}
