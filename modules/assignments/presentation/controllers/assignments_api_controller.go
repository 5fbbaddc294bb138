package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/console/modules/assignments/domain/assignment"
	"github.com/bookline/console/modules/assignments/presentation/controllers/dtos"
	"github.com/bookline/console/modules/assignments/presentation/mappers"
	"github.com/bookline/console/modules/assignments/services"
	"github.com/bookline/console/pkg/application"
	"github.com/bookline/console/pkg/httpapi"
	"github.com/bookline/console/pkg/serrors"
)

type AssignmentsAPIController struct {
	app      application.Application
	engine   *services.ReconciliationService
	basePath string
}

func NewAssignmentsAPIController(app application.Application) application.Controller {
	return &AssignmentsAPIController{
		app:      app,
		engine:   app.Service((*services.ReconciliationService)(nil)).(*services.ReconciliationService),
		basePath: "/assignments/api",
	}
}

func (c *AssignmentsAPIController) Key() string {
	return c.basePath
}

func (c *AssignmentsAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()

	sessions := router.PathPrefix("/sessions/{ownerKind}/{ownerId:[0-9]+}").Subrouter()
	sessions.HandleFunc("", c.View).Methods(http.MethodGet)
	sessions.HandleFunc("", c.Close).Methods(http.MethodDelete)
	sessions.HandleFunc("/open", c.Open).Methods(http.MethodPost)
	sessions.HandleFunc("/toggle", c.Toggle).Methods(http.MethodPost)
	sessions.HandleFunc("/override", c.Override).Methods(http.MethodPost)
	sessions.HandleFunc("/undo", c.Undo).Methods(http.MethodPost)
	sessions.HandleFunc("/redo", c.Redo).Methods(http.MethodPost)
	sessions.HandleFunc("/diff", c.Diff).Methods(http.MethodGet)
	sessions.HandleFunc("/save", c.Save).Methods(http.MethodPost)
	sessions.HandleFunc("/cancel", c.Cancel).Methods(http.MethodPost)

	router.HandleFunc("/counters/{ownerKind}/{ownerId:[0-9]+}", c.Counters).Methods(http.MethodGet)
}

func ownerFromRequest(r *http.Request) (assignment.OwnerRef, error) {
	vars := mux.Vars(r)
	kind, err := assignment.ParseKind(vars["ownerKind"])
	if err != nil {
		return assignment.OwnerRef{}, err
	}
	id, err := strconv.ParseInt(vars["ownerId"], 10, 64)
	if err != nil || id <= 0 {
		return assignment.OwnerRef{}, errors.New("invalid owner id")
	}
	return assignment.OwnerRef{Kind: kind, ID: id}, nil
}

func (c *AssignmentsAPIController) Open(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	if err := c.engine.Open(r.Context(), owner); err != nil {
		writeEngineError(w, err)
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) View(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) Close(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	c.engine.Close(owner)
	w.WriteHeader(http.StatusNoContent)
}

func (c *AssignmentsAPIController) Toggle(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	var dto dtos.ToggleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ASSIGN_INVALID_JSON", "invalid json", nil)
		return
	}
	kind, err := dto.Ok()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "ASSIGN_VALIDATION_FAILED", dtos.FirstValidationError(err), nil)
		return
	}
	if err := c.engine.ToggleSelection(owner, kind, dto.ID); err != nil {
		writeEngineError(w, err)
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) Override(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	var dto dtos.UpdateOverrideDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ASSIGN_INVALID_JSON", "invalid json", nil)
		return
	}
	kind, patch, err := dto.Ok()
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusUnprocessableEntity, "ASSIGN_VALIDATION_FAILED", dtos.FirstValidationError(err), nil)
		return
	}
	if err := c.engine.UpdateOverride(r.Context(), owner, kind, dto.ID, patch); err != nil {
		writeEngineError(w, err)
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) Undo(w http.ResponseWriter, r *http.Request) {
	c.historyStep(w, r, c.engine.Undo)
}

func (c *AssignmentsAPIController) Redo(w http.ResponseWriter, r *http.Request) {
	c.historyStep(w, r, c.engine.Redo)
}

func (c *AssignmentsAPIController) historyStep(w http.ResponseWriter, r *http.Request, step func(assignment.OwnerRef) error) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	if err := step(owner); err != nil {
		writeEngineError(w, err)
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) Diff(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	cs, err := c.engine.PendingChangeSet(owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.ChangeSetToVM(cs))
}

func (c *AssignmentsAPIController) Save(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	// Saves must finish even when the operator navigates away and the
	// request context is canceled mid-flight.
	outcome, err := c.engine.Save(context.WithoutCancel(r.Context()), owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	view, viewErr := c.engine.View(owner)
	payload := map[string]any{
		"no_changes": outcome.NoChanges,
		"refreshed":  outcome.Refreshed,
		"counters":   mappers.CountersToVM(owner, outcome.Counters).ByKind,
	}
	if viewErr == nil {
		payload["session"] = mappers.SessionToVM(view)
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, payload)
}

func (c *AssignmentsAPIController) Cancel(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	if err := c.engine.Cancel(owner); err != nil {
		writeEngineError(w, err)
		return
	}
	c.writeSession(w, owner, http.StatusOK)
}

func (c *AssignmentsAPIController) Counters(w http.ResponseWriter, r *http.Request) {
	owner, ok := c.owner(w, r)
	if !ok {
		return
	}
	counters := c.engine.Counters().Get(owner)
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.CountersToVM(owner, counters))
}

func (c *AssignmentsAPIController) owner(w http.ResponseWriter, r *http.Request) (assignment.OwnerRef, bool) {
	owner, err := ownerFromRequest(r)
	if err != nil {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "ASSIGN_INVALID_OWNER", err.Error(), nil)
		return assignment.OwnerRef{}, false
	}
	return owner, true
}

func (c *AssignmentsAPIController) writeSession(w http.ResponseWriter, owner assignment.OwnerRef, status int) {
	view, err := c.engine.View(owner)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	_ = httpapi.WriteJSON(w, status, mappers.SessionToVM(view))
}

func writeEngineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "ASSIGN_INTERNAL"
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrSessionNotReady), errors.Is(err, services.ErrSaveInFlight), errors.Is(err, services.ErrSaveConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrSaveValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrSaveNetwork), errors.Is(err, services.ErrLoadFailed):
		status = http.StatusBadGateway
	}
	var coded *serrors.Base
	if errors.As(err, &coded) {
		code = coded.Code
	}
	_ = httpapi.WriteError(w, status, code, err.Error(), nil)
}
