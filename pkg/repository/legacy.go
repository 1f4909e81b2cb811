package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/objectstore"
)

// LegacyVersionEntry is one entry in the legacy metadata document's
// versions[] array, grounded on borelog_approval.py's per-version
// provenance fields.
type LegacyVersionEntry struct {
	Version    int        `json:"version"`
	CreatedBy  string     `json:"created_by"`
	CreatedAt  time.Time  `json:"created_at"`
	ApprovedBy *string    `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
}

// LegacyMetadata is the metadata document shape at
// projects/{project}/borelogs/{borelog}/metadata.json, coexisting with the
// modern records/ layout. New records are never created in this layout; it
// remains readable, and its approval operation sets latest_approved on the
// document root in addition to the per-version entry.
type LegacyMetadata struct {
	ProjectID      string                `json:"project_id"`
	BorelogID      string                `json:"borelog_id"`
	Versions       []LegacyVersionEntry  `json:"versions"`
	LatestApproved *int                  `json:"latest_approved,omitempty"`
	ApprovedBy     *string               `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time            `json:"approved_at,omitempty"`
}

// LegacyRepository reads (and, for approval only, writes) the legacy
// borelog-approval metadata layout. It is kept alongside Repository
// because both layouts are live in the system simultaneously; there is no
// migration path specified.
type LegacyRepository struct {
	store objectstore.Store
}

// NewLegacy builds a LegacyRepository over store.
func NewLegacy(store objectstore.Store) *LegacyRepository {
	return &LegacyRepository{store: store}
}

func legacyMetadataKey(projectID, borelogID string) string {
	return fmt.Sprintf("projects/%s/borelogs/%s/metadata.json", projectID, borelogID)
}

// LegacyDataKey is the legacy v{N}/data.parquet layout, exposed for
// callers that need to read a legacy data file directly.
func LegacyDataKey(projectID, borelogID string, version int) string {
	return fmt.Sprintf("projects/%s/borelogs/%s/v%d/data.parquet", projectID, borelogID, version)
}

func (l *LegacyRepository) GetMetadata(ctx context.Context, projectID, borelogID string) (*LegacyMetadata, error) {
	body, err := l.store.Get(ctx, legacyMetadataKey(projectID, borelogID))
	if err != nil {
		return nil, err
	}
	var meta LegacyMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, apperr.MalformedInput("corrupt legacy metadata for %s/%s: %v", projectID, borelogID, err)
	}
	return &meta, nil
}

func (l *LegacyRepository) writeMetadata(ctx context.Context, meta *LegacyMetadata) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return apperr.Transport("marshal legacy metadata", err)
	}
	return l.store.Put(ctx, legacyMetadataKey(meta.ProjectID, meta.BorelogID), body, "application/json", true)
}

// Approve stamps approved_by/approved_at on both the matching per-version
// entry and the document root, and sets latest_approved to version —
// exactly the dual-write borelog_approval.py performs.
func (l *LegacyRepository) Approve(ctx context.Context, projectID, borelogID string, version int, user string) (*LegacyMetadata, error) {
	meta, err := l.GetMetadata(ctx, projectID, borelogID)
	if err != nil {
		return nil, err
	}

	found := false
	now := time.Now().UTC()
	for i := range meta.Versions {
		if meta.Versions[i].Version == version {
			u := user
			meta.Versions[i].ApprovedBy = &u
			meta.Versions[i].ApprovedAt = &now
			found = true
			break
		}
	}
	if !found {
		return nil, apperr.NotFound("version %d not present in legacy metadata for %s/%s", version, projectID, borelogID)
	}

	u := user
	meta.LatestApproved = &version
	meta.ApprovedBy = &u
	meta.ApprovedAt = &now

	if err := l.writeMetadata(ctx, meta); err != nil {
		return nil, err
	}
	log.WithProjectID(projectID).Info().Str("borelog_id", borelogID).Int("version", version).
		Msg("legacy record approved")
	return meta, nil
}
