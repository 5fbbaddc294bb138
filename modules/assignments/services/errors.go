package services

import "github.com/bookline/console/pkg/serrors"

var (
	ErrSessionNotFound = serrors.NewError("ASSIGN_SESSION_NOT_FOUND", "no editing session for owner", "open a session first")
	ErrSessionNotReady = serrors.NewError("ASSIGN_SESSION_NOT_READY", "editing session is not ready", "wait for the baseline to load or retry the load")
	ErrSaveInFlight    = serrors.NewError("ASSIGN_SAVE_IN_FLIGHT", "a save for this owner is already in flight", "wait for it to resolve")
	ErrLoadFailed      = serrors.NewError("ASSIGN_LOAD_FAILED", "failed to load assignments baseline", "retry the load")

	ErrSaveNetwork    = serrors.NewError("ASSIGN_SAVE_NETWORK", "save failed; changes were rolled back", "retry the save")
	ErrSaveValidation = serrors.NewError("ASSIGN_SAVE_VALIDATION", "the server rejected part of the change-set", "")
	ErrSaveConflict   = serrors.NewError("ASSIGN_SAVE_CONFLICT", "the change-set conflicts with the server state", "reload and retry")
)
