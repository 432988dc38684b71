package models

import "errors"

// Sentinel errors for every failure class the platform surfaces. Contract
// methods wrap these with context via fmt.Errorf("...: %w", ...) so callers
// and tests can match with errors.Is.
var (
	ErrInsufficientAmount    = errors.New("insufficient amount")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyExists         = errors.New("already exists")
	ErrAlreadyMember         = errors.New("already a member")
	ErrAlreadyVoted          = errors.New("already voted")
	ErrAlreadyApproved       = errors.New("already finalized")
	ErrVotingOngoing         = errors.New("voting ongoing")
	ErrVotingEnded           = errors.New("voting ended")
	ErrThresholdNotMet       = errors.New("approval threshold not met")
	ErrInvalidRate           = errors.New("rate out of bounds")
	ErrRateChangeTooSoon     = errors.New("rate change cooldown active")
	ErrLowActivity           = errors.New("activity points below threshold")
	ErrTransferFailed        = errors.New("external transfer failed")
	ErrNotListed             = errors.New("product not listed")
	ErrNotApproved           = errors.New("product not approved")
	ErrNotWired              = errors.New("engine references not wired")
)
