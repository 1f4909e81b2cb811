// Package repository implements the versioned-record state machine:
// create/update/approve/reject, get/list, and the append-only metadata
// history, composed over pkg/objectstore and pkg/columnar.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/columnar"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/metrics"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/schema"
	"github.com/boreledger/boreledger/pkg/types"
)

// Repository is the versioned-record state machine. It owns the
// records/{id}/metadata.json and records/{id}/versions/v{N}.parquet key
// layout and never deletes either.
type Repository struct {
	store objectstore.Store
}

// New builds a Repository over store.
func New(store objectstore.Store) *Repository {
	return &Repository{store: store}
}

func metadataKey(recordID string) string {
	return fmt.Sprintf("records/%s/metadata.json", recordID)
}

func versionKey(recordID string, version int) string {
	return fmt.Sprintf("records/%s/versions/v%d.parquet", recordID, version)
}

func (r *Repository) readMetadata(ctx context.Context, recordID string) (*types.RecordMetadata, error) {
	body, err := r.store.Get(ctx, metadataKey(recordID))
	if err != nil {
		return nil, err
	}
	var meta types.RecordMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, apperr.MalformedInput("corrupt metadata for record %s: %v", recordID, err)
	}
	return &meta, nil
}

func (r *Repository) writeMetadata(ctx context.Context, meta *types.RecordMetadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return apperr.Transport("marshal metadata", err)
	}
	// Metadata writes are always allowed to overwrite: the data file
	// carries the immutability guarantee, not the metadata document.
	return r.store.Put(ctx, metadataKey(meta.RecordID), body, "application/json", true)
}

func recordOutcome(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RepositoryOpsTotal.WithLabelValues(op, outcome).Inc()
}

// CreateRecord fails if metadata already exists, validates rows against
// schema(tableName), writes versions/v1.parquet with overwrite forbidden,
// then writes metadata with current_version=1, status=draft.
func (r *Repository) CreateRecord(ctx context.Context, recordID string, rows []types.Row, tableName, user, comment string) (meta *types.RecordMetadata, err error) {
	defer func() { recordOutcome("create", err) }()

	logger := log.WithRecordID(recordID)

	if exists, hErr := r.store.Head(ctx, metadataKey(recordID)); hErr != nil {
		return nil, hErr
	} else if exists {
		return nil, apperr.AlreadyExists("record %s", recordID)
	}

	sch, ok := schema.Lookup(tableName)
	if !ok {
		return nil, apperr.MalformedInput("unknown table %q", tableName)
	}

	// Data file first, metadata second: a crash between the two leaves
	// an orphan version file that the overwrite guard on the next write
	// will refuse to silently reuse.
	if err = columnar.WriteFixedKey(ctx, r.store, versionKey(recordID, 1), rows, sch, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta = &types.RecordMetadata{
		RecordID:       recordID,
		TableName:      tableName,
		CurrentVersion: 1,
		Status:         types.StatusDraft,
		CreatedBy:      user,
		CreatedAt:      now,
		History: []types.HistoryEntry{
			{Version: 1, Status: types.StatusDraft, User: user, Timestamp: now, Comment: comment},
		},
	}
	if err = r.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	logger.Info().Int("version", 1).Msg("record created")
	return meta, nil
}

// UpdateRecord fails if metadata absent, validates rows against the
// record's locked table_name, writes versions/v{N+1}.parquet with
// overwrite forbidden, then advances metadata to draft at the new version.
func (r *Repository) UpdateRecord(ctx context.Context, recordID string, rows []types.Row, user, comment string) (meta *types.RecordMetadata, err error) {
	defer func() { recordOutcome("update", err) }()

	meta, err = r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}

	sch, ok := schema.Lookup(meta.TableName)
	if !ok {
		return nil, apperr.MalformedInput("unknown table %q", meta.TableName)
	}

	newVersion := meta.CurrentVersion + 1
	if err = columnar.WriteFixedKey(ctx, r.store, versionKey(recordID, newVersion), rows, sch, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	meta.CurrentVersion = newVersion
	meta.Status = types.StatusDraft
	meta.ApprovedBy, meta.ApprovedAt = nil, nil
	meta.RejectedBy, meta.RejectedAt = nil, nil
	meta.History = append(meta.History, types.HistoryEntry{
		Version: newVersion, Status: types.StatusDraft, User: user, Timestamp: now, Comment: comment,
	})

	if err = r.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	log.WithRecordID(recordID).Info().Int("version", newVersion).Msg("record updated")
	return meta, nil
}

// ApproveRecord fails if metadata is absent or status is already approved
// or rejected. It performs no data-file I/O.
func (r *Repository) ApproveRecord(ctx context.Context, recordID, user, comment string) (meta *types.RecordMetadata, err error) {
	defer func() { recordOutcome("approve", err) }()

	meta, err = r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if meta.Status == types.StatusApproved {
		return nil, apperr.IllegalTransition("record %s already approved", recordID)
	}
	if meta.Status == types.StatusRejected {
		return nil, apperr.IllegalTransition("record %s is rejected; approve-from-rejected is forbidden", recordID)
	}

	now := time.Now().UTC()
	u := user
	meta.Status = types.StatusApproved
	meta.ApprovedBy, meta.ApprovedAt = &u, &now
	meta.RejectedBy, meta.RejectedAt = nil, nil
	meta.History = append(meta.History, types.HistoryEntry{
		Version: meta.CurrentVersion, Status: types.StatusApproved, User: user, Timestamp: now, Comment: comment,
	})

	if err = r.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	log.WithRecordID(recordID).Info().Str("approved_by", user).Msg("record approved")
	return meta, nil
}

// RejectRecord is symmetric to ApproveRecord: it forbids transition from
// approved.
func (r *Repository) RejectRecord(ctx context.Context, recordID, user, comment string) (meta *types.RecordMetadata, err error) {
	defer func() { recordOutcome("reject", err) }()

	meta, err = r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if meta.Status == types.StatusRejected {
		return nil, apperr.IllegalTransition("record %s already rejected", recordID)
	}
	if meta.Status == types.StatusApproved {
		return nil, apperr.IllegalTransition("record %s is approved; reject-from-approved is forbidden", recordID)
	}

	now := time.Now().UTC()
	u := user
	meta.Status = types.StatusRejected
	meta.RejectedBy, meta.RejectedAt = &u, &now
	meta.ApprovedBy, meta.ApprovedAt = nil, nil
	meta.History = append(meta.History, types.HistoryEntry{
		Version: meta.CurrentVersion, Status: types.StatusRejected, User: user, Timestamp: now, Comment: comment,
	})

	if err = r.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	log.WithRecordID(recordID).Info().Str("rejected_by", user).Msg("record rejected")
	return meta, nil
}

// GetLatestVersion reads metadata then the current version's data file.
func (r *Repository) GetLatestVersion(ctx context.Context, recordID string) (*types.RecordMetadata, *columnar.Table, error) {
	meta, err := r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, nil, err
	}
	table, err := r.GetSpecificVersion(ctx, recordID, meta.CurrentVersion)
	if err != nil {
		return nil, nil, err
	}
	return meta, table, nil
}

// GetSpecificVersion reads v{version}.parquet. A missing version surfaces
// apperr.ErrNotFound.
func (r *Repository) GetSpecificVersion(ctx context.Context, recordID string, version int) (*columnar.Table, error) {
	meta, err := r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	sch, ok := schema.Lookup(meta.TableName)
	if !ok {
		return nil, apperr.MalformedInput("unknown table %q", meta.TableName)
	}
	return columnar.Read(ctx, r.store, versionKey(recordID, version), sch)
}

// GetAllVersions enumerates v=1..current_version, each verified to exist
// (invariant 1): a gap fails closed rather than silently skipping.
func (r *Repository) GetAllVersions(ctx context.Context, recordID string) ([]*columnar.Table, error) {
	meta, err := r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	sch, ok := schema.Lookup(meta.TableName)
	if !ok {
		return nil, apperr.MalformedInput("unknown table %q", meta.TableName)
	}

	tables := make([]*columnar.Table, meta.CurrentVersion)
	for v := 1; v <= meta.CurrentVersion; v++ {
		exists, err := r.store.Head(ctx, versionKey(recordID, v))
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperr.NotFound("orphan metadata: version %d of record %s has no data file", v, recordID)
		}
		table, err := columnar.Read(ctx, r.store, versionKey(recordID, v), sch)
		if err != nil {
			return nil, err
		}
		tables[v-1] = table
	}
	return tables, nil
}

// GetMetadata reads and returns the metadata document only.
func (r *Repository) GetMetadata(ctx context.Context, recordID string) (*types.RecordMetadata, error) {
	return r.readMetadata(ctx, recordID)
}

// ListRecords enumerates record directories under records/, optionally
// filtered by table name and/or status. Enumeration is not
// snapshot-isolated: records created during the scan may or may not be
// observed.
func (r *Repository) ListRecords(ctx context.Context, tableName, status string) ([]*types.RecordMetadata, error) {
	keys, err := r.store.List(ctx, "records/")
	if err != nil {
		return nil, err
	}

	var out []*types.RecordMetadata
	for _, key := range keys {
		if !strings.HasSuffix(key, "/metadata.json") {
			continue
		}
		body, err := r.store.Get(ctx, key)
		if err != nil {
			continue
		}
		var meta types.RecordMetadata
		if err := json.Unmarshal(body, &meta); err != nil {
			continue
		}
		if tableName != "" && meta.TableName != tableName {
			continue
		}
		if status != "" && string(meta.Status) != status {
			continue
		}
		m := meta
		out = append(out, &m)
	}
	return out, nil
}

// ReconcileOrphanVersion is the explicit, operator-invoked recovery entry
// point for a data file whose write succeeded but whose metadata update
// never landed. It never runs implicitly.
//
// adoptAsCurrent=true advances metadata.current_version to version (and
// appends a draft history entry for it) as though the write had completed
// normally. adoptAsCurrent=false leaves metadata untouched and deletes
// nothing: the object-store contract never exposes deletion, so the
// operator deletes the orphan out of band before that version number can
// be written again.
func (r *Repository) ReconcileOrphanVersion(ctx context.Context, recordID string, version int, user, comment string, adoptAsCurrent bool) (*types.RecordMetadata, error) {
	meta, err := r.readMetadata(ctx, recordID)
	if err != nil {
		return nil, err
	}
	exists, err := r.store.Head(ctx, versionKey(recordID, version))
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperr.NotFound("no data file at version %d of record %s", version, recordID)
	}
	if !adoptAsCurrent {
		log.WithRecordID(recordID).Warn().Int("version", version).
			Msg("orphan version left unreconciled; operator must delete the data file out of band")
		return meta, nil
	}
	if version <= meta.CurrentVersion {
		return meta, nil
	}

	now := time.Now().UTC()
	meta.CurrentVersion = version
	meta.Status = types.StatusDraft
	meta.ApprovedBy, meta.ApprovedAt = nil, nil
	meta.RejectedBy, meta.RejectedAt = nil, nil
	meta.History = append(meta.History, types.HistoryEntry{
		Version: version, Status: types.StatusDraft, User: user, Timestamp: now,
		Comment: fmt.Sprintf("reconciled orphan version: %s", comment),
	})
	if err := r.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	log.WithRecordID(recordID).Warn().Int("version", version).Msg("orphan version reconciled onto metadata")
	return meta, nil
}
