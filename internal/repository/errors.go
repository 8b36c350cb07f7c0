package repository

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateAssignment is returned when the (block_code, examiner_id)
	// unique constraint rejects an insert. The constraint is the real
	// safety net under concurrent assignment requests; application-level
	// checks are a fast-fail optimization only.
	ErrDuplicateAssignment = errors.New("examiner already assigned to block")

	// ErrDuplicateResult is returned when the assignment_id unique
	// constraint rejects a second result for the same assignment.
	ErrDuplicateResult = errors.New("result already submitted for assignment")
)
