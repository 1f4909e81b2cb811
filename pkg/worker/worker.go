// Package worker is the asynchronous parse worker: it downloads a raw
// borelog upload from object storage, parses it with pkg/borelog, and
// persists the composed borehole envelope, stratum tree, and depth index
// back to object storage under the record's version path.
package worker

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/borelog"
	"github.com/boreledger/boreledger/pkg/log"
	"github.com/boreledger/boreledger/pkg/metrics"
	"github.com/boreledger/boreledger/pkg/objectstore"
	"github.com/boreledger/boreledger/pkg/types"
)

// FileType enumerates the raw upload formats the worker accepts.
type FileType string

const (
	FileTypeCSV  FileType = "csv"
	FileTypeXLSX FileType = "xlsx"
)

// Status reports whether Process actually parsed the upload or found the
// version already reconciled.
type Status string

const (
	StatusParsed  Status = "PARSED"
	StatusSkipped Status = "SKIPPED"
)

// Result is Process's return envelope: Status distinguishes a fresh parse
// from an idempotent no-op; Envelope is populated either way.
type Result struct {
	Status   Status
	Envelope *types.BoreholeEnvelope
}

// strataDocument is the combined {borehole, strata} object written to
// strata_key — the envelope and the stratum tree share one file.
type strataDocument struct {
	Borehole types.BoreholeEnvelope `json:"borehole"`
	Strata   []types.Stratum        `json:"strata"`
}

// ParseRequest addresses one raw upload and the record version it belongs
// to.
type ParseRequest struct {
	ProjectID      string
	StructureID    string
	SubstructureID string
	BorelogID      string
	VersionNo      int
	UploadID       string
	ObjectKey      string
	FileType       FileType
	RequestedBy    string
	JobCode        string
}

// Worker parses raw borelog uploads and persists the derived documents.
type Worker struct {
	store objectstore.Store
}

// New builds a Worker over an object store.
func New(store objectstore.Store) *Worker {
	return &Worker{store: store}
}

func baseKey(req ParseRequest) string {
	return fmt.Sprintf("projects/%s/borelogs/%s/parsed/v%d", req.ProjectID, req.BorelogID, req.VersionNo)
}

func strataKey(req ParseRequest) string {
	return baseKey(req) + "/strata.json"
}

func indexKey(req ParseRequest) string {
	return baseKey(req) + "/index.json"
}

// Process fetches the raw upload, parses it, and writes {borehole, strata}
// to strata_key and the depth index to index_key. A prior successful run
// for the same (record, version) is idempotent: Process checks for an
// existing strata_key before doing any parsing work and returns
// Result{Status: StatusSkipped} without writing to the object store.
func (w *Worker) Process(ctx context.Context, req ParseRequest) (*Result, error) {
	timer := metrics.NewTimer()
	result, err := w.process(ctx, req)
	timer.ObserveDuration(metrics.ParseWorkerDuration)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.ParseWorkerInvocationsTotal.WithLabelValues(outcome).Inc()
	return result, err
}

func (w *Worker) process(ctx context.Context, req ParseRequest) (*Result, error) {
	logger := log.WithComponent("worker").With().
		Str("record_id", req.BorelogID).
		Str("project_id", req.ProjectID).
		Logger()

	if existing, ok, err := w.loadExisting(ctx, req); err != nil {
		return nil, err
	} else if ok {
		logger.Debug().Msg("parse already reconciled for this version, skipping")
		return &Result{Status: StatusSkipped, Envelope: existing}, nil
	}

	raw, err := w.store.Get(ctx, req.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("worker: fetching raw upload %q: %w", req.ObjectKey, err)
	}

	rows, err := decodeRows(raw, req.FileType)
	if err != nil {
		return nil, err
	}

	doc, err := borelog.ParseBorelogDocument(rows)
	if err != nil {
		return nil, err
	}

	envelope := types.BoreholeEnvelope{
		ProjectID:      req.ProjectID,
		StructureID:    req.StructureID,
		SubstructureID: req.SubstructureID,
		BorelogID:      req.BorelogID,
		VersionNo:      req.VersionNo,
		UploadID:       req.UploadID,
		FileType:       string(req.FileType),
		RequestedBy:    req.RequestedBy,
		JobCode:        req.JobCode,
		Metadata:       doc.Metadata,
		ParsedAt:       time.Now().UTC(),
	}

	depthIndex := borelog.BuildDepthIndex(doc.Strata)

	if err := w.putJSON(ctx, strataKey(req), strataDocument{Borehole: envelope, Strata: doc.Strata}); err != nil {
		return nil, err
	}
	if err := w.putJSON(ctx, indexKey(req), depthIndex); err != nil {
		return nil, err
	}

	logger.Info().Int("strata_count", len(doc.Strata)).Msg("parsed borelog document")
	return &Result{Status: StatusParsed, Envelope: &envelope}, nil
}

func (w *Worker) loadExisting(ctx context.Context, req ParseRequest) (*types.BoreholeEnvelope, bool, error) {
	exists, err := w.store.Head(ctx, strataKey(req))
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, nil
	}
	body, err := w.store.Get(ctx, strataKey(req))
	if err != nil {
		return nil, false, err
	}
	var doc strataDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false, apperr.MalformedInput("worker: corrupt strata document at %q: %v", strataKey(req), err)
	}
	return &doc.Borehole, true, nil
}

func (w *Worker) putJSON(ctx context.Context, key string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("worker: encoding %q: %w", key, err)
	}
	return w.store.Put(ctx, key, body, "application/json", true)
}

func decodeRows(raw []byte, fileType FileType) ([][]string, error) {
	switch fileType {
	case FileTypeXLSX:
		return borelog.ParseXLSXRows(raw)
	case FileTypeCSV:
		reader := csv.NewReader(strings.NewReader(string(raw)))
		reader.FieldsPerRecord = -1
		var rows [][]string
		for {
			record, err := reader.Read()
			if err != nil {
				break
			}
			rows = append(rows, record)
		}
		return rows, nil
	default:
		return nil, apperr.MalformedInput("worker: unsupported file type %q", fileType)
	}
}
