/*
Package types defines the data-model structs shared across the borelog
records engine: record metadata and history, the schema-projected Row
currency, and the parsed-document types the borelog parser and parse
worker produce.

# Record lifecycle types

EntityType names the three record kinds the entity repository facade
addresses (borelog, geological_log, lab_test); Status is the versioned
repository's draft/approved/rejected state; RecordMetadata is the document
persisted at records/{project}/{entity_type}/{entity_id}/metadata.json,
carrying its append-only History.

	meta := types.RecordMetadata{
		RecordID:       "acme/borelog/bh-104",
		TableName:      "stratum_layers",
		CurrentVersion: 2,
		Status:         types.StatusDraft,
		History: []types.HistoryEntry{
			{Version: 1, Status: types.StatusDraft, User: "j.mehta"},
			{Version: 1, Status: types.StatusApproved, User: "j.mehta"},
			{Version: 2, Status: types.StatusDraft, User: "j.mehta"},
		},
	}

# Row

Row is a schema-projected record keyed by column name. It's the shared
currency between the entity repository, CSV ingestion, and the columnar
engine — none of those packages know each other's concrete types, only
Row and the schema registry's column definitions.

# Parsed borelog types

BorelogMetadata, Sample, Stratum, and ParsedDocument are produced purely
in-memory by pkg/borelog from tabular rows, with no I/O of their own.
BoreholeEnvelope wraps a ParsedDocument with the addressing and
provenance (project, borelog, version, upload) the async parse worker
needs to persist results, and DepthIndex maps a "{from:.3f}-{to:.3f}"
depth-range key to the stratum's ordinal position for fast lookup.
*/
package types
