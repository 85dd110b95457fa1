// Package gameerr defines the Shaktris error taxonomy: a small set of
// semantic kinds rule engines and the coordinator use to report rejected
// moves and failures, wrapped the same way the database layer wraps driver
// errors (fmt.Errorf("...: %w", err)) so callers can recover the structured
// kind with errors.As while still matching sentinels with errors.Is.
package gameerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind is one of the five semantic categories from the error handling design.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorisation Kind = "authorisation"
	KindProtocol      Kind = "protocol"
	KindTransient     Kind = "transient"
	KindFatal         Kind = "fatal"
)

// Code enumerates the specific rejection reasons named in the spec.
type Code string

const (
	CodeCollision        Code = "Collision"
	CodeOutOfBounds      Code = "OutOfBounds"
	CodeNotAdjacent      Code = "NotAdjacent"
	CodeNoPathToKing     Code = "NoPathToKing"
	CodeIllegalChessMove Code = "IllegalChessMove"
	CodeWrongPiece       Code = "WrongPiece"
	CodeWrongPhase       Code = "WrongPhase"
	CodeNotYourTurn      Code = "NotYourTurn"
	CodeTooSoon          Code = "TooSoon"

	CodeInvalidAPIToken Code = "InvalidApiToken"
	CodePlayerNotInGame Code = "PlayerNotInGame"
	CodeNotYourPiece    Code = "NotYourPiece"

	CodeMalformedPayload Code = "MalformedPayload"
	CodeMissingField     Code = "MissingField"

	CodeBackpressure Code = "Backpressure"
	CodeTimeout      Code = "Timeout"

	CodeInternalError Code = "InternalError"
)

var codeKind = map[Code]Kind{
	CodeCollision:        KindValidation,
	CodeOutOfBounds:      KindValidation,
	CodeNotAdjacent:      KindValidation,
	CodeNoPathToKing:     KindValidation,
	CodeIllegalChessMove: KindValidation,
	CodeWrongPiece:       KindValidation,
	CodeWrongPhase:       KindValidation,
	CodeNotYourTurn:      KindValidation,
	CodeTooSoon:          KindValidation,

	CodeInvalidAPIToken: KindAuthorisation,
	CodePlayerNotInGame: KindAuthorisation,
	CodeNotYourPiece:    KindAuthorisation,

	CodeMalformedPayload: KindProtocol,
	CodeMissingField:     KindProtocol,

	CodeBackpressure: KindTransient,
	CodeTimeout:      KindTransient,

	CodeInternalError: KindFatal,
}

// Error is the structured value returned by rule engines and the
// coordinator. It satisfies the standard error interface.
type Error struct {
	Code       Code
	Message    string
	RetryAfter time.Duration
	Wrapped    error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Kind reports which of the five semantic categories this error belongs to.
func (e *Error) Kind() Kind {
	if k, ok := codeKind[e.Code]; ok {
		return k
	}
	return KindFatal
}

// New builds a gameerr.Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a gameerr.Error wrapping an underlying cause, mirroring the
// database layer's fmt.Errorf("...: %w", err) wrapping convention.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Wrapped: cause}
}

// WithRetryAfter attaches a retry hint, used for Transient errors.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	e.RetryAfter = d
	return e
}

// Sentinels for errors.Is comparisons against a specific rejection reason.
var (
	ErrCollision        = New(CodeCollision, "destination cell is occupied")
	ErrNotAdjacent      = New(CodeNotAdjacent, "placement is not adjacent to existing occupied cells")
	ErrNoPathToKing     = New(CodeNoPathToKing, "placement has no path back to the player's king")
	ErrIllegalChessMove = New(CodeIllegalChessMove, "destination is not a legal move for this piece")
	ErrWrongPiece       = New(CodeWrongPiece, "submitted piece does not match the piece dealt for this turn")
	ErrWrongPhase       = New(CodeWrongPhase, "move does not match the player's current turn phase")
	ErrNotYourTurn      = New(CodeNotYourTurn, "it is not this player's turn")
	ErrTooSoon          = New(CodeTooSoon, "minDurationMs has not elapsed since the last move")

	ErrInvalidAPIToken = New(CodeInvalidAPIToken, "api token is missing, unknown, or does not match this player")
	ErrPlayerNotInGame = New(CodePlayerNotInGame, "player is not a participant in this game")
	ErrNotYourPiece    = New(CodeNotYourPiece, "the targeted chess piece does not belong to this player")

	ErrBackpressure = New(CodeBackpressure, "game work queue is full")
	ErrTimeout      = New(CodeTimeout, "operation did not complete before its deadline")
)

// Is implements errors.Is comparison by Code so sentinels above compare
// equal to any *Error with the same Code, regardless of Message/Wrapped.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}
