package leaveerrors

import (
	"net/http"

	"go-hrms/internal/shared/apperror"
)

var (
	ErrInvalidApplicationID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave application ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidStatusFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave status filter",
		http.StatusBadRequest,
	)
	ErrCommentsRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Comments are required when rejecting a leave application",
		http.StatusBadRequest,
	)
	ErrApplicationNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave application not found",
		http.StatusNotFound,
	)
)

// Eligibility failures.
var (
	ErrEmployeeNotActive = apperror.New(
		apperror.CodeValidationFailed,
		"Employee does not exist or is not active",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveTypeInactive = apperror.New(
		apperror.CodeValidationFailed,
		"Leave type does not exist or is not active",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeValidationFailed,
		"Start date must be on or before end date",
		http.StatusUnprocessableEntity,
	)
	ErrBackdatedLeave = apperror.New(
		apperror.CodeValidationFailed,
		"Leave cannot start in the past",
		http.StatusUnprocessableEntity,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodeValidationFailed,
		"Insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrLeaveOverlap = apperror.New(
		apperror.CodeValidationFailed,
		"Leave overlaps an existing pending or approved application",
		http.StatusUnprocessableEntity,
	)
	ErrNoWorkingDays = apperror.New(
		apperror.CodeValidationFailed,
		"Requested period contains no working days",
		http.StatusUnprocessableEntity,
	)
	ErrEligibilityCheckFailed = apperror.New(
		apperror.CodeValidationFailed,
		"Leave eligibility could not be verified",
		http.StatusUnprocessableEntity,
	)
)

// Transition failures.
var (
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidTransition,
		"Leave application cannot change to the requested status",
		http.StatusConflict,
	)
	ErrNotApplicant = apperror.New(
		apperror.CodeInvalidTransition,
		"Only the applicant can cancel this leave application",
		http.StatusConflict,
	)
	ErrSelfReview = apperror.New(
		apperror.CodeInvalidTransition,
		"Reviewers cannot review their own leave application",
		http.StatusConflict,
	)
)
