package service

import "errors"

var (
	// ErrInsufficientExaminers aborts a whole auto-assign batch before any
	// writes: the active examiner pool is smaller than examiners-per-block.
	ErrInsufficientExaminers = errors.New("insufficient active examiners for batch")

	// ErrInvalidScore rejects a score that is negative or above the block's
	// max score. Nothing is persisted.
	ErrInvalidScore = errors.New("score out of bounds")

	// ErrInvalidTransition rejects an assignment status change the current
	// transition mode does not allow.
	ErrInvalidTransition = errors.New("invalid assignment status transition")

	// ErrResultFinal rejects mutation of a result already marked final.
	ErrResultFinal = errors.New("result is final")

	// ErrWrongExaminer rejects a result submitted by an examiner who does
	// not own the assignment.
	ErrWrongExaminer = errors.New("examiner does not own assignment")
)
