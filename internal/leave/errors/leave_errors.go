package leaveerrors

import (
	"net/http"

	"go-hris-leave/internal/shared/apperror"
)

const (
	CodeInvalidRange       = "INVALID_RANGE"
	CodeNoWorkingDays      = "NO_WORKING_DAYS"
	CodeBalanceExceeded    = "BALANCE_EXCEEDED"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeApplyInProgress    = "APPLY_IN_PROGRESS"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid employee id",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidPartialDay = apperror.New(
		apperror.CodeInvalidInput,
		"partial day must fall inside the requested range and be listed once",
		http.StatusBadRequest,
	)
	ErrInvalidRange = apperror.New(
		CodeInvalidRange,
		"leave range is empty or too long",
		http.StatusConflict,
	)
	ErrNoWorkingDays = apperror.New(
		CodeNoWorkingDays,
		"Failed to Submit: No Working Days Selected",
		http.StatusConflict,
	)
	ErrBalanceExceeded = apperror.New(
		CodeBalanceExceeded,
		"Leave Balance Exceeded",
		http.StatusConflict,
	)
	ErrApplyInProgress = apperror.New(
		CodeApplyInProgress,
		"another leave application for this employee and leave type is in progress",
		http.StatusConflict,
	)
	ErrEmployeeNotInCompany = apperror.New(
		apperror.CodeInvalidInput,
		"employee does not belong to this company",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
)

// ErrPersistenceFailure keeps the underlying cause reachable through
// errors.Unwrap while only the generic message reaches the client.
func ErrPersistenceFailure(cause error) *apperror.AppError {
	return apperror.Wrap(cause, CodePersistenceFailure, "Failed to save leave request", http.StatusInternalServerError)
}
