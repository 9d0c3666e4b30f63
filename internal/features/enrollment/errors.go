package enrollment

import "errors"

var (
	ErrClaimNotFound         = errors.New("payment claim not found")
	ErrTransactionIDRequired = errors.New("transaction id is required")
	ErrDuplicateClaim        = errors.New("an active payment claim already exists for this course")
	ErrAlreadyEnrolled       = errors.New("already enrolled in this course")
	ErrInvalidTransition     = errors.New("payment claim is not pending")
)
