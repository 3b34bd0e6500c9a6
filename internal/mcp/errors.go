package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/streamos/internal/app"
	"github.com/rpggio/streamos/internal/assistant"
	"github.com/rpggio/streamos/internal/command"
	"github.com/rpggio/streamos/internal/domain/activity"
	"github.com/rpggio/streamos/internal/domain/chat"
	"github.com/rpggio/streamos/internal/domain/item"
	"github.com/rpggio/streamos/internal/domain/ledger"
	"github.com/rpggio/streamos/internal/domain/project"
	"github.com/rpggio/streamos/internal/transport"
)

// Error codes returned in APIError.Code.
const (
	CodeInvalidParams        = "INVALID_PARAMS"
	CodeMethodNotFound       = "METHOD_NOT_FOUND"
	CodeInvalidInput         = "INVALID_INPUT"
	CodeItemNotFound         = "ITEM_NOT_FOUND"
	CodeAlreadyCompleted     = "ALREADY_COMPLETED"
	CodeNotReplaceable       = "NOT_REPLACEABLE"
	CodeProjectNotFound      = "PROJECT_NOT_FOUND"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeSessionNotFound      = "SESSION_NOT_FOUND"
	CodeSessionClosed        = "SESSION_CLOSED"
	CodeCommandRejected      = "COMMAND_REJECTED"
	CodeNoMatch              = "NO_MATCH"
	CodeCommandConflict      = "COMMAND_CONFLICT"
	CodeInvalidBackup        = "INVALID_BACKUP"
	CodeAssistantUnavailable = "ASSISTANT_UNAVAILABLE"
)

// APIError represents a domain failure as seen by RPC and tool clients.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RPCCode maps the error onto a JSON-RPC error code.
func (e *APIError) RPCCode() int {
	switch e.Code {
	case CodeInvalidParams:
		return transport.RPCInvalidParams
	case CodeMethodNotFound:
		return transport.RPCMethodNotFound
	default:
		return transport.RPCDomainError
	}
}

// RPCData is the JSON-RPC error data.
func (e *APIError) RPCData() any {
	return e
}

func invalidParams(err error) *APIError {
	return &APIError{Code: CodeInvalidParams, Message: "invalid params", Details: err.Error()}
}

// MapError maps domain errors to API error codes. Unknown errors yield nil.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	switch {
	case errors.Is(err, item.ErrItemNotFound):
		return &APIError{Code: CodeItemNotFound, Message: "item not found", RecoveryHint: "List the items to get current ids"}
	case errors.Is(err, item.ErrAlreadyCompleted):
		return &APIError{Code: CodeAlreadyCompleted, Message: "item already completed"}
	case errors.Is(err, item.ErrNotReplaceable):
		return &APIError{Code: CodeNotReplaceable, Message: "list cannot be replaced", RecoveryHint: "Only agenda and tasks can be replaced"}
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: CodeProjectNotFound, Message: "project not found"}
	case errors.Is(err, project.ErrInvalidTransition):
		return &APIError{Code: CodeInvalidTransition, Message: "project cannot move in that direction"}
	case errors.Is(err, chat.ErrSessionNotFound):
		return &APIError{Code: CodeSessionNotFound, Message: "chat session not found", RecoveryHint: "Omit session_id to start a new session"}
	case errors.Is(err, chat.ErrSessionClosed):
		return &APIError{Code: CodeSessionClosed, Message: "chat session closed", RecoveryHint: "Omit session_id to start a new session"}
	case errors.Is(err, command.ErrNoMatch):
		return &APIError{Code: CodeNoMatch, Message: "no open task matches", Details: err.Error()}
	case errors.Is(err, command.ErrConflict):
		return &APIError{Code: CodeCommandConflict, Message: "conflicting commands", Details: err.Error()}
	case errors.Is(err, command.ErrMalformed),
		errors.Is(err, command.ErrUnknownKind),
		errors.Is(err, command.ErrSchema),
		errors.Is(err, command.ErrListFull),
		errors.Is(err, command.ErrEmptyBatch):
		return &APIError{Code: CodeCommandRejected, Message: "command batch rejected", Details: err.Error()}
	case errors.Is(err, app.ErrInvalidBackup):
		return &APIError{Code: CodeInvalidBackup, Message: "backup rejected", Details: err.Error(), RecoveryHint: "Nothing was restored"}
	case errors.Is(err, assistant.ErrNoAPIKey):
		return &APIError{Code: CodeAssistantUnavailable, Message: "assistant not configured", RecoveryHint: "Set GEMINI_API_KEY"}
	case errors.Is(err, item.ErrInvalidInput),
		errors.Is(err, project.ErrInvalidInput),
		errors.Is(err, chat.ErrInvalidInput),
		errors.Is(err, ledger.ErrInvalidInput),
		errors.Is(err, activity.ErrInvalidInput),
		errors.Is(err, app.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: "invalid input", Details: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
