package leavebalanceerrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave balance not found",
		http.StatusNotFound,
	)
	ErrInvalidYear = apperror.New(
		apperror.CodeInvalidInput,
		"Year must be a positive number",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type ID",
		http.StatusBadRequest,
	)
	// ErrLedgerInvariant means a mutation would drive a bucket below zero.
	ErrLedgerInvariant = apperror.New(
		apperror.CodeOperationFailed,
		"Leave balance would become negative",
		http.StatusInternalServerError,
	)
	ErrInitializationFailed = apperror.New(
		apperror.CodeOperationFailed,
		"Failed to initialize leave balances",
		http.StatusInternalServerError,
	)
)
