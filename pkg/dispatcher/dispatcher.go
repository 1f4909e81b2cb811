// Package dispatcher normalizes a request into a fixed action envelope and
// routes it to the entity repository or the bulk CSV ingestion engine,
// translating results and errors into a transport-agnostic response
// envelope. cmd/boreledger-api's HTTP mux and the cmd/boreledger CLI are its
// callers in this repo, but Dispatch itself has no dependency on net/http.
package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/boreledger/boreledger/pkg/apperr"
	"github.com/boreledger/boreledger/pkg/entityrepo"
	"github.com/boreledger/boreledger/pkg/ingest"
	"github.com/boreledger/boreledger/pkg/metrics"
	"github.com/boreledger/boreledger/pkg/types"
)

// Action is one of the fixed operations the dispatcher recognizes.
type Action string

const (
	ActionCreate      Action = "create"
	ActionUpdate      Action = "update"
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionGet         Action = "get"
	ActionList        Action = "list"
	ActionIngestCSV   Action = "ingest_csv"
	ActionGetVersion  Action = "get_version"
	ActionGetHistory  Action = "get_history"
	ActionSaveStratum Action = "save_stratum"
)

// Request is the normalized envelope every entry point (direct invocation
// or HTTP handler) converts its input into before calling Dispatch.
type Request struct {
	Action     Action           `json:"action"`
	EntityType types.EntityType `json:"entity_type"`
	ProjectID  string           `json:"project_id"`
	EntityID   string           `json:"entity_id"`
	Payload    types.Row        `json:"payload,omitempty"`
	Rows       []types.Row      `json:"rows,omitempty"`
	Version    int              `json:"version,omitempty"`
	CSVBody    string           `json:"csv_body,omitempty"`
	TableName  string           `json:"table_name,omitempty"`
	User       string           `json:"user"`
	Comment    string           `json:"comment,omitempty"`
	SkipErrors bool             `json:"skip_errors,omitempty"`
}

// Response is the transport-agnostic result envelope: statusCode follows
// apperr.Kind classification, headers is fixed to a JSON content type, and
// body is the JSON-encoded payload or error.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

// Dispatcher wires the normalized request envelope to the entity
// repository facade and the ingestion engine.
type Dispatcher struct {
	entities *entityrepo.Repo
	ingest   *ingest.Engine
}

// New builds a Dispatcher over an entityrepo.Repo and an ingest.Engine
// sharing the same underlying repository.
func New(entities *entityrepo.Repo, ingestEngine *ingest.Engine) *Dispatcher {
	return &Dispatcher{entities: entities, ingest: ingestEngine}
}

// Dispatch routes req to the matching repository or ingestion operation
// and always returns a Response, never a raw Go error — failures are
// encoded in the response body per apperr.ClassifyKind.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	timer := metrics.NewTimer()
	resp := d.dispatch(ctx, req)
	timer.ObserveDurationVec(metrics.APIRequestDuration, string(req.Action))
	metrics.APIRequestsTotal.WithLabelValues(string(req.Action), statusBucket(resp.StatusCode)).Inc()
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionCreate:
		result, err := d.entities.Create(ctx, req.ProjectID, req.EntityType, req.EntityID, req.Payload, req.User, req.Comment)
		return respond(result, err)
	case ActionUpdate:
		result, err := d.entities.Update(ctx, req.ProjectID, req.EntityType, req.EntityID, req.Payload, req.User, req.Comment)
		return respond(result, err)
	case ActionApprove:
		result, err := d.entities.Approve(ctx, req.ProjectID, req.EntityType, req.EntityID, req.User, req.Comment)
		return respond(result, err)
	case ActionReject:
		result, err := d.entities.Reject(ctx, req.ProjectID, req.EntityType, req.EntityID, req.User, req.Comment)
		return respond(result, err)
	case ActionGet:
		result, err := d.entities.Get(ctx, req.ProjectID, req.EntityType, req.EntityID)
		return respond(result, err)
	case ActionList:
		results, err := d.entities.ListByProject(ctx, req.ProjectID, req.EntityType, "")
		return respond(results, err)
	case ActionIngestCSV:
		result, err := d.ingest.IngestCSVString(ctx, req.CSVBody, ingest.Options{
			Project: req.ProjectID, EntityType: req.EntityType, EntityID: req.EntityID,
			TableName: req.TableName, User: req.User, Comment: req.Comment, SkipErrors: req.SkipErrors,
		})
		return respond(result, err)
	case ActionGetVersion:
		result, err := d.entities.GetVersion(ctx, req.ProjectID, req.EntityType, req.EntityID, req.Version)
		return respond(result, err)
	case ActionGetHistory:
		history, err := d.entities.GetHistory(ctx, req.ProjectID, req.EntityType, req.EntityID)
		return respond(history, err)
	case ActionSaveStratum:
		result, err := d.saveStratum(ctx, req)
		return respond(result, err)
	default:
		return errorResponse(apperr.MalformedInput("dispatcher: unrecognized action %q", req.Action))
	}
}

// saveStratum writes req.Rows as the entity's next version, creating the
// record if it doesn't exist yet. It mirrors the original serverless
// backend's saveStratumData handler, migrated here from a direct database
// write to a versioned object-store record like every other entity.
func (d *Dispatcher) saveStratum(ctx context.Context, req Request) (*entityrepo.BatchResult, error) {
	_, getErr := d.entities.Get(ctx, req.ProjectID, req.EntityType, req.EntityID)
	if getErr != nil {
		return d.entities.CreateRows(ctx, req.ProjectID, req.EntityType, req.EntityID, req.Rows, req.User, req.Comment)
	}
	return d.entities.UpdateRows(ctx, req.ProjectID, req.EntityType, req.EntityID, req.Rows, req.User, req.Comment)
}

func respond(v any, err error) Response {
	if err != nil {
		return errorResponse(err)
	}
	body, encErr := json.Marshal(v)
	if encErr != nil {
		return errorResponse(encErr)
	}
	return Response{StatusCode: 200, Headers: jsonHeaders(), Body: string(body)}
}

func errorResponse(err error) Response {
	status := statusForKind(apperr.ClassifyKind(err))
	body, _ := json.Marshal(map[string]string{"error": err.Error()})
	return Response{StatusCode: status, Headers: jsonHeaders(), Body: string(body)}
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return 404
	case apperr.KindAlreadyExists, apperr.KindOverwriteForbidden:
		return 409
	case apperr.KindSchemaValidation, apperr.KindMalformedInput:
		return 400
	case apperr.KindIllegalTransition:
		return 422
	default:
		return 500
	}
}

func statusBucket(status int) string {
	switch {
	case status < 300:
		return "2xx"
	case status < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": "application/json"}
}
