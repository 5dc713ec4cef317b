package dashboard

import "errors"

var (
	ErrNoAgentRecord    = errors.New("no agent record for this user")
	ErrNoCustomerRecord = errors.New("no customer record for this user")
	ErrNotMounted       = errors.New("dashboard is not mounted")
	ErrUnmounted        = errors.New("dashboard has been unmounted")

	ErrUnknownColumn = errors.New("unknown column")
	ErrUnknownTab    = errors.New("unknown tab")
	ErrOfferNotFound = errors.New("offer not found in dashboard")

	ErrEditInProgress   = errors.New("another offer is already being edited")
	ErrOfferLocked      = errors.New("offer was approved by the customer and can no longer be edited")
	ErrNotEditing       = errors.New("no offer is being edited")
	ErrInvalidBasePrice = errors.New("base price must be a number")
	ErrInvalidStatus    = errors.New("unknown offer status")
	ErrSaveInFlight     = errors.New("save already in progress")
	ErrSaveFailed       = errors.New("failed to save offer")

	ErrDeleteNotAllowed = errors.New("only pending offers can be deleted")
	ErrDialogOpen       = errors.New("a delete dialog is already open")
	ErrNoDeleteDialog   = errors.New("no delete dialog is open")
	ErrDeleteInFlight   = errors.New("delete already in progress")
	ErrDeleteFailed     = errors.New("failed to delete offer")

	ErrOfferNotApprovable = errors.New("offer is not awaiting customer approval")

	// ErrRefreshFailed means the change reached the API but the tables could not be reloaded
	ErrRefreshFailed = errors.New("change applied but refresh failed")
)
