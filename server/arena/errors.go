package arena

import (
	"errors"
	"fmt"
)

var (
	ErrCapacityExceeded = errors.New("server is full")
	ErrVersionMismatch  = errors.New("client version does not match server")
	ErrInvalidName      = errors.New("invalid player name")
	ErrNoSpawnPoints    = errors.New("level has no spawn points")
)

// RejectReason explains why a join was refused.
type RejectReason int

const (
	CapacityExceeded RejectReason = iota
	VersionMismatch
	InvalidName
)

func (r RejectReason) String() string {
	switch r {
	case CapacityExceeded:
		return "capacity exceeded"
	case VersionMismatch:
		return "version mismatch"
	case InvalidName:
		return "invalid name"
	default:
		return fmt.Sprintf("RejectReason(%d)", int(r))
	}
}

func (r RejectReason) sentinel() error {
	switch r {
	case CapacityExceeded:
		return ErrCapacityExceeded
	case VersionMismatch:
		return ErrVersionMismatch
	case InvalidName:
		return ErrInvalidName
	default:
		return nil
	}
}

// RejectedError is returned when a connection may not join the match. The
// client should be told the reason and disconnected.
type RejectedError struct {
	Reason RejectReason
	Detail string
}

// Reject builds a RejectedError.
func Reject(reason RejectReason, detail string) *RejectedError {
	return &RejectedError{Reason: reason, Detail: detail}
}

func (e *RejectedError) Error() string {
	if e.Detail == "" {
		return "join rejected: " + e.Reason.String()
	}
	return fmt.Sprintf("join rejected: %s: %s", e.Reason, e.Detail)
}

// Unwrap lets errors.Is match the sentinel for the reason.
func (e *RejectedError) Unwrap() error {
	return e.Reason.sentinel()
}
