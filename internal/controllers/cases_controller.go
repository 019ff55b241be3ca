package controllers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/qintermediary/exchangeflow/internal/core"
	"github.com/qintermediary/exchangeflow/internal/domain"
	"github.com/qintermediary/exchangeflow/internal/engine"
	"github.com/qintermediary/exchangeflow/internal/models"
)

// CasesController holds dependencies for the exchange case HTTP endpoints.
type CasesController struct {
	AuthController
	CaseRepo     engine.CaseRepo
	WorkItemRepo engine.WorkItemRepo
	Engine       *engine.WorkflowEngine
	Scheduler    *engine.DeadlineScheduler
	Clock        core.Clock
}

func NewCasesController(caseRepo engine.CaseRepo, workItemRepo engine.WorkItemRepo,
	wfEngine *engine.WorkflowEngine, scheduler *engine.DeadlineScheduler, clock core.Clock) *CasesController {
	return &CasesController{
		CaseRepo:     caseRepo,
		WorkItemRepo: workItemRepo,
		Engine:       wfEngine,
		Scheduler:    scheduler,
		Clock:        clock,
	}
}

func (c *CasesController) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.CreateCaseRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.ClientID == "" {
		http.Error(w, "clientId is required", http.StatusBadRequest)
		return
	}

	detailsJSON, err := json.Marshal(req.Details)
	if err != nil {
		http.Error(w, "invalid details payload", http.StatusBadRequest)
		return
	}

	now := c.Clock.Now().UTC()
	exchangeCase := &domain.ExchangeCase{
		CaseRef:          "EX-" + uuid.New().String(),
		ClientID:         sql.NullString{String: req.ClientID, Valid: true},
		Stage:            models.StageDraft,
		ComplianceStatus: models.ComplianceCompliant,
		Details:          sql.NullString{String: string(detailsJSON), Valid: true},
		Created:          now,
		Modified:         now,
	}
	if req.CoordinatorID != "" {
		exchangeCase.CoordinatorID = sql.NullString{String: req.CoordinatorID, Valid: true}
	}

	id, err := c.CaseRepo.Save(exchangeCase)
	if err != nil {
		slog.Error("Failed to save case", "error", err)
		http.Error(w, "failed to create case", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "Case created", "id", id, "caseRef", exchangeCase.CaseRef, "clientId", req.ClientID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(models.CreateCaseResponse{ID: id, CaseRef: exchangeCase.CaseRef})
}

func (c *CasesController) handleGetCaseById(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := c.CaseRepo.FindByID(id)
	if err != nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}
	c.writeCase(w, result)
}

func (c *CasesController) handleGetCaseByRef(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caseRef := r.PathValue("caseRef")
	if caseRef == "" {
		http.Error(w, "caseRef is required", http.StatusBadRequest)
		return
	}
	result, err := c.CaseRepo.FindByCaseRef(caseRef)
	if err != nil || result == nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}
	c.writeCase(w, result)
}

func (c *CasesController) handleGetTransitions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	options, err := c.Engine.AvailableTransitions(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(options)
}

func (c *CasesController) handleValidateTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	toStage := models.Stage(r.PathValue("toStage"))
	if !toStage.IsValid() {
		http.Error(w, "unknown stage", http.StatusBadRequest)
		return
	}
	result, err := c.Engine.ValidateTransition(id, toStage)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

func (c *CasesController) handleExecuteTransition(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.ExecuteTransitionRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if !req.ToStage.IsValid() {
		http.Error(w, "unknown stage", http.StatusBadRequest)
		return
	}
	if req.ActingPartyID == "" {
		http.Error(w, "actingPartyId is required", http.StatusBadRequest)
		return
	}

	result, err := c.Engine.ExecuteTransition(r.Context(), id, req.ToStage, req.ActingPartyID, req.Reason)

	var partial *engine.ActionPartialFailureError
	if err != nil && !errors.As(err, &partial) {
		writeEngineError(w, err)
		return
	}

	c.Scheduler.Wakeup()

	response := models.ExecuteTransitionResponse{Case: c.mapCaseToApi(result)}
	if partial != nil {
		response.Warnings = make(map[models.Action]string, len(partial.Failed))
		for action, actionErr := range partial.Failed {
			response.Warnings[action] = actionErr.Error()
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (c *CasesController) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entries, err := c.Engine.GetTimeline(id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	apiEntries := make([]models.AuditEntryApiResponse, 0, len(*entries))
	for _, entry := range *entries {
		apiEntries = append(apiEntries, mapAuditEntryToApi(entry))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiEntries)
}

func (c *CasesController) handleGetWorkItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := c.CaseRepo.FindByID(id); err != nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}
	items, err := c.WorkItemRepo.FindAllByCaseID(id)
	if err != nil {
		slog.Error("Failed to load work items", "caseId", id, "error", err)
		http.Error(w, "failed to load work items", http.StatusInternalServerError)
		return
	}
	apiItems := make([]models.WorkItemApiResponse, 0, len(*items))
	for _, item := range *items {
		apiItems = append(apiItems, mapWorkItemToApi(item))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(apiItems)
}

func (c *CasesController) handleCreateWorkItem(w http.ResponseWriter, r *http.Request) {
	caseID, ok := pathID(w, r)
	if !ok {
		return
	}
	if _, err := c.CaseRepo.FindByID(caseID); err != nil {
		http.Error(w, "case not found", http.StatusNotFound)
		return
	}

	var req models.CreateWorkItemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.IsValid() {
		http.Error(w, "unknown priority", http.StatusBadRequest)
		return
	}

	now := c.Clock.Now().UTC()
	item := &domain.WorkItem{
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      models.WorkItemPending,
		Created:     now,
		Modified:    now,
	}
	if req.DueDate != nil {
		item.DueDate = sql.NullTime{Time: req.DueDate.UTC(), Valid: true}
	}

	if _, err := c.WorkItemRepo.Save(item); err != nil {
		slog.Error("Failed to save work item", "caseId", caseID, "error", err)
		http.Error(w, "failed to create work item", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(mapWorkItemToApi(*item))
}

func (c *CasesController) handleUpdateWorkItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.UpdateWorkItemRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	item, err := c.WorkItemRepo.FindByID(id)
	if err != nil {
		http.Error(w, "work item not found", http.StatusNotFound)
		return
	}

	status := item.Status
	if req.Status != "" {
		if !req.Status.IsValid() {
			http.Error(w, "unknown status", http.StatusBadRequest)
			return
		}
		status = req.Status
	}
	priority := item.Priority
	if req.Priority != "" {
		if !req.Priority.IsValid() {
			http.Error(w, "unknown priority", http.StatusBadRequest)
			return
		}
		priority = req.Priority
	}

	if err := c.WorkItemRepo.UpdateStatusAndPriority(id, status, priority); err != nil {
		slog.Error("Failed to update work item", "id", id, "error", err)
		http.Error(w, "failed to update work item", http.StatusInternalServerError)
		return
	}

	updated, err := c.WorkItemRepo.FindByID(id)
	if err != nil {
		http.Error(w, "work item not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(mapWorkItemToApi(*updated))
}

func (c *CasesController) writeCase(w http.ResponseWriter, result *domain.ExchangeCase) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(c.mapCaseToApi(result))
}

// mapCaseToApi re-derives the compliance status from the current clock so a
// read between scheduler scans never reports a stale value.
func (c *CasesController) mapCaseToApi(result *domain.ExchangeCase) models.CaseApiResponse {
	details, err := models.ParseCaseDetails(nullStringValue(result.Details))
	if err != nil {
		slog.Warn("Failed to parse case details", "id", result.ID, "error", err)
	}
	now := c.Clock.Now().UTC()
	compliance := engine.DeriveCompliance(now, result.Stage, result.IdentificationDeadline, result.CompletionDeadline)

	return models.CaseApiResponse{
		ID:                     result.ID,
		CaseRef:                result.CaseRef,
		ClientID:               nullStringValue(result.ClientID),
		CoordinatorID:          nullStringValue(result.CoordinatorID),
		Stage:                  result.Stage,
		ComplianceStatus:       compliance,
		StartDate:              nullTimeValue(result.StartDate),
		IdentificationDeadline: nullTimeValue(result.IdentificationDeadline),
		CompletionDeadline:     nullTimeValue(result.CompletionDeadline),
		CompletionDate:         nullTimeValue(result.CompletionDate),
		Archived:               result.Archived,
		Details:                details,
		Created:                result.Created,
		Modified:               result.Modified,
	}
}

func mapAuditEntryToApi(entry domain.AuditEntry) models.AuditEntryApiResponse {
	api := models.AuditEntryApiResponse{
		ID:            entry.ID,
		EntryType:     entry.EntryType,
		FromStage:     entry.FromStage,
		ToStage:       entry.ToStage,
		ActingPartyID: entry.ActingPartyID,
		Reason:        entry.Reason,
		DateTime:      entry.DateTime,
	}
	if entry.ActionsRun.Valid && entry.ActionsRun.String != "" {
		if err := json.Unmarshal([]byte(entry.ActionsRun.String), &api.ActionsRun); err != nil {
			slog.Warn("Failed to parse actions run", "id", entry.ID, "error", err)
		}
	}
	if entry.FailedConditions.Valid && entry.FailedConditions.String != "" {
		if err := json.Unmarshal([]byte(entry.FailedConditions.String), &api.FailedConditions); err != nil {
			slog.Warn("Failed to parse failed conditions", "id", entry.ID, "error", err)
		}
	}
	if entry.FailedActions.Valid && entry.FailedActions.String != "" {
		if err := json.Unmarshal([]byte(entry.FailedActions.String), &api.FailedActions); err != nil {
			slog.Warn("Failed to parse failed actions", "id", entry.ID, "error", err)
		}
	}
	return api
}

func mapWorkItemToApi(item domain.WorkItem) models.WorkItemApiResponse {
	return models.WorkItemApiResponse{
		ID:          item.ID,
		CaseID:      item.CaseID,
		Title:       item.Title,
		Description: item.Description,
		Priority:    item.Priority,
		Status:      item.Status,
		DueDate:     nullTimeValue(item.DueDate),
		Created:     item.Created,
		Modified:    item.Modified,
	}
}

// writeEngineError maps engine error kinds onto HTTP statuses. Guard and
// edge rejections are 422 because the request itself was well formed.
func writeEngineError(w http.ResponseWriter, err error) {
	var invalid *engine.InvalidTransitionError
	var guards *engine.GuardsNotMetError

	switch {
	case errors.Is(err, engine.ErrCaseNotFound):
		http.Error(w, "case not found", http.StatusNotFound)
	case errors.Is(err, engine.ErrReopenReasonRequired):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, engine.ErrVersionConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &invalid):
		http.Error(w, invalid.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &guards):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(models.ValidateTransitionResponse{Valid: false, FailedConditions: guards.Failures})
	default:
		slog.Error("Engine request failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := r.PathValue("id")
	if idStr == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		http.Error(w, "id is an integer", http.StatusBadRequest)
		return 0, false
	}
	return int64(id), true
}

func nullStringValue(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func nullTimeValue(nt sql.NullTime) *time.Time {
	if nt.Valid {
		t := nt.Time
		return &t
	}
	return nil
}
