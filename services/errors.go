// services/errors.go
package services

import (
	"errors"
	"fmt"

	"eco-cycle-game/repositories"
)

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrNotFound           = errors.New("not found")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConflict           = errors.New("conflict")
)

// Machine-readable error codes returned to clients.
const (
	CodePlayerNotFound          = "PLAYER_NOT_FOUND"
	CodeBicycleNotFound         = "BICYCLE_NOT_FOUND"
	CodeMissionNotFound         = "MISSION_NOT_FOUND"
	CodeInsufficientFunds       = "INSUFFICIENT_FUNDS"
	CodeMissionAlreadyCompleted = "MISSION_ALREADY_COMPLETED"
	CodeMissionAlreadyActive    = "MISSION_ALREADY_ACTIVE"
	CodeMissionNotActive        = "MISSION_NOT_ACTIVE"
	CodeBalanceOverflow         = "BALANCE_OVERFLOW"
	CodeInvalidArgument         = "INVALID_ARGUMENT"
	CodeConflict                = "CONFLICT"
)

// Error is a domain error with a stable code and a human message.
type Error struct {
	kind    error
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.kind
}

// Is lets errors.Is match two *Error values by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func newError(kind error, code, format string, args ...any) *Error {
	return &Error{kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func playerNotFound() *Error {
	return newError(ErrNotFound, CodePlayerNotFound, "Player not found")
}

func bicycleNotFound(id string) *Error {
	return newError(ErrNotFound, CodeBicycleNotFound, "Bicycle %q not found", id)
}

func missionNotFound(id string) *Error {
	return newError(ErrNotFound, CodeMissionNotFound, "Mission %q not found", id)
}

func insufficientFunds() *Error {
	return newError(ErrPreconditionFailed, CodeInsufficientFunds, "Insufficient funds")
}

func missionAlreadyCompleted() *Error {
	return newError(ErrPreconditionFailed, CodeMissionAlreadyCompleted, "Mission already completed")
}

func missionAlreadyActive() *Error {
	return newError(ErrPreconditionFailed, CodeMissionAlreadyActive, "Player already has an active mission")
}

func missionNotActive() *Error {
	return newError(ErrPreconditionFailed, CodeMissionNotActive, "Mission not currently active")
}

func balanceOverflow() *Error {
	return newError(ErrPreconditionFailed, CodeBalanceOverflow, "Reward would overflow the player's balance")
}

// InvalidArgument builds a 422-class error for malformed requests.
func InvalidArgument(format string, args ...any) *Error {
	return newError(ErrInvalidArgument, CodeInvalidArgument, format, args...)
}

// Sentinel values for errors.Is comparisons by callers and tests.
var (
	ErrPlayerNotFound          = playerNotFound()
	ErrBicycleNotFound         = bicycleNotFound("")
	ErrMissionNotFound         = missionNotFound("")
	ErrInsufficientFunds       = insufficientFunds()
	ErrMissionAlreadyCompleted = missionAlreadyCompleted()
	ErrMissionAlreadyActive    = missionAlreadyActive()
	ErrMissionNotActive        = missionNotActive()
	ErrBalanceOverflow         = balanceOverflow()
)

// storageError translates repository failures into the service taxonomy.
// Domain errors raised inside mutations pass through untouched.
func storageError(err error) error {
	var domainErr *Error
	var nf *repositories.ErrNotFound
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return domainErr
	case errors.As(err, &nf):
		switch nf.Entity {
		case "player":
			return playerNotFound()
		case "mission":
			return missionNotFound(nf.ID)
		case "bicycle":
			return bicycleNotFound(nf.ID)
		}
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, repositories.ErrMissionClaimed):
		return missionAlreadyCompleted()
	case errors.Is(err, repositories.ErrConflict):
		return newError(ErrConflict, CodeConflict, "Player was modified concurrently, please retry")
	default:
		return err
	}
}
