package leavetypeerrors

import (
	"go-hrms/internal/shared/apperror"
	"net/http"
)

var (
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Leave type not found",
		http.StatusNotFound,
	)
	ErrLeaveTypeNameExists = apperror.New(
		apperror.CodeConflict,
		"Leave type with the same name already exists",
		http.StatusConflict,
	)
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid leave type ID",
		http.StatusBadRequest,
	)
	ErrEmptyLeaveTypeName = apperror.New(
		apperror.CodeInvalidInput,
		"Leave type name cannot be empty",
		http.StatusBadRequest,
	)
)
