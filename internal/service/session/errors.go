package session

import "errors"

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSubmitInProgress = errors.New("confirmation already in progress")
	ErrSessionBusy      = errors.New("session is being changed concurrently")
	ErrInvalidDirection = errors.New("month direction must be 1 or -1")
)
