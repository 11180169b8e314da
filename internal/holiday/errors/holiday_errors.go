package holidayerrors

import (
	"net/http"

	"go-hris-leave/internal/shared/apperror"
)

var (
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid company id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"invalid year",
		http.StatusBadRequest,
	)
	ErrCalendarRangeTooLong = apperror.New(
		apperror.CodeInvalidInput,
		"calendar range spans too many years",
		http.StatusBadRequest,
	)
	ErrHolidayAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"holiday already exists on this date",
		http.StatusConflict,
	)
)
