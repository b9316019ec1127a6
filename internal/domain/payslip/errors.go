package payslip

import "errors"

var (
	ErrIncompleteData = errors.New("급여 데이터가 불완전합니다")
	ErrInvalidPath    = errors.New("invalid payslip path")
	ErrNotFound       = errors.New("payslip file not found")
)
