// Package schema holds the static table catalogue: every table this engine
// writes has one Schema, fixing its column layout for all versions of every
// record against that table. The registry is data, not behavior.
package schema

// LogicalType is one of the seven column types the columnar engine and CSV
// ingestion understand.
type LogicalType string

const (
	String      LogicalType = "string"
	Int32       LogicalType = "int32"
	Int64       LogicalType = "int64"
	Float64     LogicalType = "float64"
	Boolean     LogicalType = "boolean"
	TimestampMS LogicalType = "timestamp_ms"
	ListOfT     LogicalType = "list"
)

// Field is one column: a name, a logical type, and whether null is a legal
// value.
type Field struct {
	Name     string
	Type     LogicalType
	Nullable bool
}

// Schema is the ordered column list for one table. Column order is part of
// the contract: row projection and columnar writes both follow it.
type Schema struct {
	Name   string
	Fields []Field
}

// FieldNames returns the ordered column names.
func (s Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field looks up one column by name within the schema.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

var registry = map[string]Schema{}

func register(s Schema) {
	registry[s.Name] = s
}

// Lookup is the sole query the registry exposes: a table name resolves to
// its Schema, or the second return is false.
func Lookup(name string) (Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Names returns every registered table name, for diagnostics and listing.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	return names
}

func init() {
	register(Schema{Name: "borelog_versions", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "borelog_id", Type: String, Nullable: false},
		{Name: "borehole_number", Type: String, Nullable: true},
		{Name: "job_code", Type: String, Nullable: true},
		{Name: "chainage", Type: Float64, Nullable: true},
		{Name: "msl", Type: Float64, Nullable: true},
		{Name: "boring_method", Type: String, Nullable: true},
		{Name: "hole_diameter", Type: Float64, Nullable: true},
		{Name: "commencement_date", Type: String, Nullable: true},
		{Name: "completion_date", Type: String, Nullable: true},
		{Name: "standing_water_level", Type: Float64, Nullable: true},
		{Name: "termination_depth", Type: Float64, Nullable: true},
		{Name: "remarks", Type: String, Nullable: true},
		{Name: "created_at", Type: TimestampMS, Nullable: true},
	}})

	register(Schema{Name: "borelog_details", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "borelog_id", Type: String, Nullable: false},
		{Name: "structure_id", Type: String, Nullable: true},
		{Name: "substructure_id", Type: String, Nullable: true},
		{Name: "section_name", Type: String, Nullable: true},
		{Name: "sample_count", Type: Int32, Nullable: true},
		{Name: "test_count", Type: Int32, Nullable: true},
	}})

	register(Schema{Name: "stratum_layers", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "borelog_id", Type: String, Nullable: false},
		{Name: "ordinal", Type: Int32, Nullable: false},
		{Name: "depth_from", Type: Float64, Nullable: true},
		{Name: "depth_to", Type: Float64, Nullable: true},
		{Name: "thickness", Type: Float64, Nullable: true},
		{Name: "description", Type: String, Nullable: true},
		{Name: "return_water_color", Type: String, Nullable: true},
		{Name: "water_loss", Type: Float64, Nullable: true},
		{Name: "borehole_diameter", Type: Float64, Nullable: true},
		{Name: "tcr_percent", Type: Float64, Nullable: true},
		{Name: "rqd_percent", Type: Float64, Nullable: true},
		{Name: "remarks", Type: String, Nullable: true},
	}})

	register(Schema{Name: "stratum_sample_points", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "borelog_id", Type: String, Nullable: false},
		{Name: "stratum_ordinal", Type: Int32, Nullable: false},
		{Name: "event_type", Type: String, Nullable: true},
		{Name: "event_depth", Type: Float64, Nullable: true},
		{Name: "run_length", Type: Float64, Nullable: true},
		{Name: "spt_blows_1", Type: Int32, Nullable: true},
		{Name: "spt_blows_2", Type: Int32, Nullable: true},
		{Name: "spt_blows_3", Type: Int32, Nullable: true},
		{Name: "n_value", Type: Int32, Nullable: true},
		{Name: "core_length_cm", Type: Float64, Nullable: true},
		{Name: "tcr_percent", Type: Float64, Nullable: true},
		{Name: "rqd_length_cm", Type: Float64, Nullable: true},
		{Name: "rqd_percent", Type: Float64, Nullable: true},
		{Name: "remarks", Type: String, Nullable: true},
	}})

	register(Schema{Name: "unified_lab_reports", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "lab_test_id", Type: String, Nullable: false},
		{Name: "borelog_id", Type: String, Nullable: true},
		{Name: "sample_id", Type: String, Nullable: true},
		{Name: "test_type", Type: String, Nullable: true},
		{Name: "test_date", Type: String, Nullable: true},
		{Name: "result_summary", Type: String, Nullable: true},
	}})

	register(Schema{Name: "lab_report_versions", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "lab_test_id", Type: String, Nullable: false},
		{Name: "created_at", Type: TimestampMS, Nullable: true},
		{Name: "remarks", Type: String, Nullable: true},
	}})

	register(Schema{Name: "soil_test_samples", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "lab_test_id", Type: String, Nullable: false},
		{Name: "sample_id", Type: String, Nullable: false},
		{Name: "moisture_content", Type: Float64, Nullable: true},
		{Name: "liquid_limit", Type: Float64, Nullable: true},
		{Name: "plastic_limit", Type: Float64, Nullable: true},
		{Name: "specific_gravity", Type: Float64, Nullable: true},
	}})

	register(Schema{Name: "rock_test_samples", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "lab_test_id", Type: String, Nullable: false},
		{Name: "sample_id", Type: String, Nullable: false},
		{Name: "ucs_mpa", Type: Float64, Nullable: true},
		{Name: "point_load_index", Type: Float64, Nullable: true},
		{Name: "density", Type: Float64, Nullable: true},
	}})

	register(Schema{Name: "pending_csv_uploads", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "upload_id", Type: String, Nullable: false},
		{Name: "table_name", Type: String, Nullable: false},
		{Name: "uploaded_by", Type: String, Nullable: true},
		{Name: "uploaded_at", Type: TimestampMS, Nullable: true},
		{Name: "status", Type: String, Nullable: true},
	}})

	register(Schema{Name: "projects", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "name", Type: String, Nullable: true},
		{Name: "client_name", Type: String, Nullable: true},
		{Name: "created_at", Type: TimestampMS, Nullable: true},
	}})

	register(Schema{Name: "users", Fields: []Field{
		{Name: "user_id", Type: String, Nullable: false},
		{Name: "email", Type: String, Nullable: true},
		{Name: "role", Type: String, Nullable: true},
	}})

	register(Schema{Name: "contacts", Fields: []Field{
		{Name: "contact_id", Type: String, Nullable: false},
		{Name: "project_id", Type: String, Nullable: true},
		{Name: "name", Type: String, Nullable: true},
		{Name: "phone", Type: String, Nullable: true},
		{Name: "email", Type: String, Nullable: true},
	}})

	register(Schema{Name: "geological_log", Fields: []Field{
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "log_id", Type: String, Nullable: false},
		{Name: "description", Type: String, Nullable: true},
		{Name: "created_at", Type: TimestampMS, Nullable: true},
	}})

	// Ambient tables: audit trail and ingestion-batch bookkeeping that
	// any production storage engine needs alongside its domain tables.
	register(Schema{Name: "audit_events", Fields: []Field{
		{Name: "event_id", Type: String, Nullable: false},
		{Name: "record_id", Type: String, Nullable: false},
		{Name: "action", Type: String, Nullable: false},
		{Name: "actor", Type: String, Nullable: true},
		{Name: "occurred_at", Type: TimestampMS, Nullable: false},
		{Name: "detail", Type: String, Nullable: true},
	}})

	register(Schema{Name: "ingestion_batches", Fields: []Field{
		{Name: "batch_id", Type: String, Nullable: false},
		{Name: "project_id", Type: String, Nullable: false},
		{Name: "table_name", Type: String, Nullable: false},
		{Name: "total_rows", Type: Int32, Nullable: false},
		{Name: "valid_rows", Type: Int32, Nullable: false},
		{Name: "invalid_rows", Type: Int32, Nullable: false},
		{Name: "started_at", Type: TimestampMS, Nullable: false},
	}})
}
