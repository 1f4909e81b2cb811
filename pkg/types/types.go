// Package types holds the data-model structs shared across the storage
// engine: record metadata, history entries, and the parsed-document
// entities produced by the borelog parser and parse worker.
package types

import "time"

// EntityType is one of the three record kinds the repository facade
// addresses.
type EntityType string

const (
	EntityBorelog       EntityType = "borelog"
	EntityGeologicalLog EntityType = "geological_log"
	EntityLabTest       EntityType = "lab_test"
)

// Status is the versioned-repository's state-machine status.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// HistoryEntry is one append-only audit entry. Created once per create or
// update (status=draft) and once per approve/reject.
type HistoryEntry struct {
	Version   int       `json:"version"`
	Status    Status    `json:"status"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
	Comment   string    `json:"comment,omitempty"`
}

// RecordMetadata is the metadata document at
// records/{project}/{entity_type}/{entity_id}/metadata.json.
type RecordMetadata struct {
	RecordID       string         `json:"record_id"`
	TableName      string         `json:"table_name"`
	CurrentVersion int            `json:"current_version"`
	Status         Status         `json:"status"`
	CreatedBy      string         `json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	ApprovedBy     *string        `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
	RejectedBy     *string        `json:"rejected_by,omitempty"`
	RejectedAt     *time.Time     `json:"rejected_at,omitempty"`
	History        []HistoryEntry `json:"history"`
}

// Row is a single schema-projected record, keyed by column name. It is the
// shared currency between the entity repository, CSV ingestion, and the
// columnar engine.
type Row map[string]any

// BorelogMetadata is the single-record borehole header parsed from a
// borelog document.
type BorelogMetadata struct {
	ProjectName        string   `json:"project_name,omitempty"`
	JobCode             string   `json:"job_code,omitempty"`
	SectionName         string   `json:"section_name,omitempty"`
	Chainage            *float64 `json:"chainage,omitempty"`
	BoreholeNumber      string   `json:"borehole_number,omitempty"`
	MSL                 *float64 `json:"msl,omitempty"`
	BoringMethod        string   `json:"boring_method,omitempty"`
	HoleDiameter        *float64 `json:"hole_diameter,omitempty"`
	CommencementDate    string   `json:"commencement_date,omitempty"`
	CompletionDate      string   `json:"completion_date,omitempty"`
	StandingWaterLevel  *float64 `json:"standing_water_level,omitempty"`
	TerminationDepth    *float64 `json:"termination_depth,omitempty"`
	SampleCount         *int     `json:"sample_count,omitempty"`
	TestCount           *int     `json:"test_count,omitempty"`
	Remarks             string   `json:"remarks,omitempty"`
}

// Sample is a single test or specimen taken within a Stratum.
type Sample struct {
	EventType    string   `json:"event_type,omitempty"`
	EventDepth   *float64 `json:"event_depth,omitempty"`
	RunLength    *float64 `json:"run_length,omitempty"`
	SPTBlows     [3]*int  `json:"spt_blows"`
	NValue       *int     `json:"n_value,omitempty"`
	CoreLengthCM *float64 `json:"core_length_cm,omitempty"`
	TCRPercent   *float64 `json:"tcr_percent,omitempty"`
	RQDLengthCM  *float64 `json:"rqd_length_cm,omitempty"`
	RQDPercent   *float64 `json:"rqd_percent,omitempty"`
	Remarks      string   `json:"remarks,omitempty"`
}

// Stratum is one contiguous soil/rock layer, bounded by a depth range, plus
// its attached samples.
type Stratum struct {
	DepthFrom        *float64 `json:"depth_from"`
	DepthTo          *float64 `json:"depth_to"`
	Thickness        *float64 `json:"thickness,omitempty"`
	Description      string   `json:"description"`
	ReturnWaterColor string   `json:"return_water_color,omitempty"`
	WaterLoss        *float64 `json:"water_loss,omitempty"`
	BoreholeDiameter *float64 `json:"borehole_diameter,omitempty"`
	TCRPercent       *float64 `json:"tcr_percent,omitempty"`
	RQDPercent       *float64 `json:"rqd_percent,omitempty"`
	Remarks          string   `json:"remarks,omitempty"`
	Samples          []Sample `json:"samples"`
}

// ParsedDocument is the output of pkg/borelog: one borehole's metadata plus
// its ordered stratum tree.
type ParsedDocument struct {
	Metadata BorelogMetadata `json:"metadata"`
	Strata   []Stratum       `json:"strata"`
}

// BoreholeEnvelope wraps ParsedDocument with addressing and provenance for
// persistence by the async parse worker.
type BoreholeEnvelope struct {
	ProjectID      string          `json:"project_id"`
	StructureID    string          `json:"structure_id,omitempty"`
	SubstructureID string          `json:"substructure_id,omitempty"`
	BorelogID      string          `json:"borelog_id"`
	VersionNo      int             `json:"version_no"`
	UploadID       string          `json:"upload_id,omitempty"`
	FileType       string          `json:"file_type"`
	RequestedBy    string          `json:"requested_by,omitempty"`
	JobCode        string          `json:"job_code,omitempty"`
	Metadata       BorelogMetadata `json:"metadata"`
	ParsedAt       time.Time       `json:"parsed_at"`
}

// DepthIndex maps "{depth_from:.3f}-{depth_to:.3f}" to a 0-based stratum
// ordinal.
type DepthIndex map[string]int
