// Package entityrepo is the project-scoped, entity-typed facade over
// pkg/repository: it maps (project, entity_type, entity_id) addressing
// onto record IDs and projects payloads onto the locked schema's column
// order.
package entityrepo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/columnar"
	"github.com/boreledger/boreledger/pkg/repository"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
)

// entityTableMap is the entity-type→table-name mapping.
var entityTableMap = map[types.EntityType]string{
	types.EntityBorelog:       "borelog_versions",
	types.EntityGeologicalLog: "geological_log",
	types.EntityLabTest:       "unified_lab_reports",
}

// TableFor resolves the schema table backing entityType.
func TableFor(entityType types.EntityType) (string, bool) {
	t, ok := entityTableMap[entityType]
	return t, ok
}

// RecordID builds the {project}/{entity_type}/{entity_id} address string.
func RecordID(project string, entityType types.EntityType, entityID string) string {
	return fmt.Sprintf("%s/%s/%s", project, entityType, entityID)
}

// Result is the composite envelope every mutating operation returns.
type Result struct {
	EntityType types.EntityType       `json:"entity_type"`
	Project    string                 `json:"project"`
	EntityID   string                 `json:"entity_id"`
	Data       types.Row              `json:"data"`
	Metadata   ResultMetadata         `json:"metadata"`
}

// ResultMetadata is the metadata slice of Result.
type ResultMetadata struct {
	CurrentVersion int        `json:"current_version"`
	Status         types.Status `json:"status"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
	ApprovedBy     *string    `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	RejectedBy     *string    `json:"rejected_by,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
}

func toResultMetadata(meta *types.RecordMetadata) ResultMetadata {
	return ResultMetadata{
		CurrentVersion: meta.CurrentVersion,
		Status:         meta.Status,
		CreatedBy:      meta.CreatedBy,
		CreatedAt:      meta.CreatedAt,
		ApprovedBy:     meta.ApprovedBy,
		ApprovedAt:     meta.ApprovedAt,
		RejectedBy:     meta.RejectedBy,
		RejectedAt:     meta.RejectedAt,
	}
}

// Repo is the entity repository facade.
type Repo struct {
	repo *repository.Repository
}

// New builds a Repo over a versioned repository.Repository.
func New(repo *repository.Repository) *Repo {
	return &Repo{repo: repo}
}

// projectRow injects project_id into payload, fills every absent schema
// column with a null, and returns one row matching the locked schema's
// field set exactly.
func projectRow(payload types.Row, project string, sch schema.Schema) types.Row {
	row := make(types.Row, len(sch.Fields))
	for _, f := range sch.Fields {
		if f.Name == "project_id" {
			row[f.Name] = project
			continue
		}
		if v, ok := payload[f.Name]; ok {
			row[f.Name] = v
		} else {
			row[f.Name] = nil
		}
	}
	return row
}

// rowToPayload converts a Table's row at idx to an output payload: nulls
// stay null, timestamps render as ISO-8601 with a trailing Z.
func rowToPayload(table *columnar.Table, idx int) types.Row {
	payload := types.Row{}
	for col, values := range table.Columns {
		if idx >= len(values) {
			continue
		}
		v := values[idx]
		if t, ok := v.(time.Time); ok {
			payload[col] = t.UTC().Format("2006-01-02T15:04:05.000Z")
			continue
		}
		payload[col] = v
	}
	return payload
}

// Create projects payload onto entityType's schema and delegates to
// repository.CreateRecord.
func (r *Repo) Create(ctx context.Context, project string, entityType types.EntityType, entityID string, payload types.Row, user, comment string) (*Result, error) {
	table, ok := TableFor(entityType)
	if !ok {
		return nil, apperr.MalformedInput("unknown entity type %q", entityType)
	}
	sch, ok := schema.Lookup(table)
	if !ok {
		return nil, apperr.MalformedInput("no schema registered for table %q", table)
	}

	row := projectRow(payload, project, sch)
	recordID := RecordID(project, entityType, entityID)

	meta, err := r.repo.CreateRecord(ctx, recordID, []types.Row{row}, table, user, comment)
	if err != nil {
		return nil, err
	}
	return &Result{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: row, Metadata: toResultMetadata(meta),
	}, nil
}

// Update projects payload onto the record's locked schema and delegates to
// repository.UpdateRecord.
func (r *Repo) Update(ctx context.Context, project string, entityType types.EntityType, entityID string, payload types.Row, user, comment string) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)

	meta, err := r.repo.GetMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	sch, ok := schema.Lookup(meta.TableName)
	if !ok {
		return nil, apperr.MalformedInput("no schema registered for table %q", meta.TableName)
	}
	row := projectRow(payload, project, sch)

	updated, err := r.repo.UpdateRecord(ctx, recordID, []types.Row{row}, user, comment)
	if err != nil {
		return nil, err
	}
	return &Result{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: row, Metadata: toResultMetadata(updated),
	}, nil
}

// BatchResult is Result's counterpart for a multi-row write: every
// coerced row is reported, not just a single projected payload.
type BatchResult struct {
	EntityType types.EntityType `json:"entity_type"`
	Project    string           `json:"project"`
	EntityID   string           `json:"entity_id"`
	Data       []types.Row      `json:"data"`
	Metadata   ResultMetadata   `json:"metadata"`
}

// CreateRows projects every row in payloads onto entityType's schema and
// writes them all as a single new record version, unlike Create which
// only ever accepts one row.
func (r *Repo) CreateRows(ctx context.Context, project string, entityType types.EntityType, entityID string, payloads []types.Row, user, comment string) (*BatchResult, error) {
	table, ok := TableFor(entityType)
	if !ok {
		return nil, apperr.MalformedInput("unknown entity type %q", entityType)
	}
	sch, ok := schema.Lookup(table)
	if !ok {
		return nil, apperr.MalformedInput("no schema registered for table %q", table)
	}

	rows := make([]types.Row, len(payloads))
	for i, p := range payloads {
		rows[i] = projectRow(p, project, sch)
	}
	recordID := RecordID(project, entityType, entityID)

	meta, err := r.repo.CreateRecord(ctx, recordID, rows, table, user, comment)
	if err != nil {
		return nil, err
	}
	return &BatchResult{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: rows, Metadata: toResultMetadata(meta),
	}, nil
}

// UpdateRows is CreateRows' counterpart for an existing record: every row
// is projected onto the record's locked schema and written as the next
// version, unlike Update which only ever accepts one row.
func (r *Repo) UpdateRows(ctx context.Context, project string, entityType types.EntityType, entityID string, payloads []types.Row, user, comment string) (*BatchResult, error) {
	recordID := RecordID(project, entityType, entityID)

	meta, err := r.repo.GetMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	sch, ok := schema.Lookup(meta.TableName)
	if !ok {
		return nil, apperr.MalformedInput("no schema registered for table %q", meta.TableName)
	}

	rows := make([]types.Row, len(payloads))
	for i, p := range payloads {
		rows[i] = projectRow(p, project, sch)
	}

	updated, err := r.repo.UpdateRecord(ctx, recordID, rows, user, comment)
	if err != nil {
		return nil, err
	}
	return &BatchResult{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: rows, Metadata: toResultMetadata(updated),
	}, nil
}

// Approve delegates to repository.ApproveRecord.
func (r *Repo) Approve(ctx context.Context, project string, entityType types.EntityType, entityID, user, comment string) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)
	meta, err := r.repo.ApproveRecord(ctx, recordID, user, comment)
	if err != nil {
		return nil, err
	}
	return r.getResult(ctx, project, entityType, entityID, meta)
}

// Reject delegates to repository.RejectRecord.
func (r *Repo) Reject(ctx context.Context, project string, entityType types.EntityType, entityID, user, comment string) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)
	meta, err := r.repo.RejectRecord(ctx, recordID, user, comment)
	if err != nil {
		return nil, err
	}
	return r.getResult(ctx, project, entityType, entityID, meta)
}

func (r *Repo) getResult(ctx context.Context, project string, entityType types.EntityType, entityID string, meta *types.RecordMetadata) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)
	table, err := r.repo.GetSpecificVersion(ctx, recordID, meta.CurrentVersion)
	if err != nil {
		return nil, err
	}
	var data types.Row
	if table.NumRows > 0 {
		data = rowToPayload(table, 0)
	}
	return &Result{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: data, Metadata: toResultMetadata(meta),
	}, nil
}

// Get returns the latest version's row payload plus metadata.
func (r *Repo) Get(ctx context.Context, project string, entityType types.EntityType, entityID string) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)
	meta, table, err := r.repo.GetLatestVersion(ctx, recordID)
	if err != nil {
		return nil, err
	}
	var data types.Row
	if table.NumRows > 0 {
		data = rowToPayload(table, 0)
	}
	return &Result{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: data, Metadata: toResultMetadata(meta),
	}, nil
}

// GetVersion returns a specific past version's row payload plus metadata,
// unlike Get which always resolves the current version.
func (r *Repo) GetVersion(ctx context.Context, project string, entityType types.EntityType, entityID string, version int) (*Result, error) {
	recordID := RecordID(project, entityType, entityID)
	meta, err := r.repo.GetMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	table, err := r.repo.GetSpecificVersion(ctx, recordID, version)
	if err != nil {
		return nil, err
	}
	var data types.Row
	if table.NumRows > 0 {
		data = rowToPayload(table, 0)
	}
	return &Result{
		EntityType: entityType, Project: project, EntityID: entityID,
		Data: data, Metadata: toResultMetadata(meta),
	}, nil
}

// GetHistory returns the record's full audit trail of version transitions.
func (r *Repo) GetHistory(ctx context.Context, project string, entityType types.EntityType, entityID string) ([]types.HistoryEntry, error) {
	recordID := RecordID(project, entityType, entityID)
	meta, err := r.repo.GetMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	return meta.History, nil
}

// ListByProject filters list_records by the {project}/{entity_type}/
// prefix, then by metadata status.
func (r *Repo) ListByProject(ctx context.Context, project string, entityType types.EntityType, status string) ([]*types.RecordMetadata, error) {
	all, err := r.repo.ListRecords(ctx, "", status)
	if err != nil {
		return nil, err
	}
	prefix := fmt.Sprintf("%s/%s/", project, entityType)
	var out []*types.RecordMetadata
	for _, m := range all {
		if strings.HasPrefix(m.RecordID, prefix) {
			out = append(out, m)
		}
	}
	return out, nil
}
