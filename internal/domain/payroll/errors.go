package payroll

import "errors"

var (
	ErrEmployeeNotFound        = errors.New("employee not found")
	ErrStatementNotFound       = errors.New("pay statement not found")
	ErrStatementLocked         = errors.New("pay statement is no longer a draft")
	ErrInvalidStatusTransition = errors.New("invalid pay statement status transition")
	ErrInvalidInput            = errors.New("payroll input failed validation")
)
