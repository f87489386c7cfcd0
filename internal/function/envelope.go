package function

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"bakery-be/internal/apperr"
	"bakery-be/internal/logger"

	"go.uber.org/zap"
)

// Envelope codes.
const (
	CodeOK        = 0
	CodeInvalid   = 1001
	CodeNotFound  = 1002
	CodeRule      = 1003
	CodeForbidden = 1004
	CodeConflict  = 1005
	CodeInternal  = -1
)

const internalMessage = "internal error"

var (
	ErrMalformedBody   = apperr.Invalid("request body must be a JSON object")
	ErrMissingAction   = apperr.Invalid("action is required")
	ErrUnknownFunction = apperr.Invalid("unknown function")
	ErrUnknownAction   = apperr.Invalid("unknown action")
	ErrInvalidData     = apperr.Invalid("invalid data")
	ErrUnauthenticated = apperr.Forbidden("login required")
	ErrAdminOnly       = apperr.Forbidden("admin only")
)

// Request is the {action, data} call envelope.
type Request struct {
	Action string
	Data   json.RawMessage
}

// Response is the {code, message, data} reply envelope.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// DecodeRequest reads the call envelope. Older clients send the action
// arguments next to "action" instead of under "data"; those top-level fields
// are used as data when "data" is absent.
func DecodeRequest(body io.Reader) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&fields); err != nil || fields == nil {
		return Request{}, ErrMalformedBody
	}

	var req Request
	if raw, ok := fields["action"]; ok {
		if err := json.Unmarshal(raw, &req.Action); err != nil {
			return Request{}, ErrMalformedBody
		}
	}
	if req.Action == "" {
		return Request{}, ErrMissingAction
	}

	if data, ok := fields["data"]; ok {
		req.Data = data
		return req, nil
	}

	delete(fields, "action")
	if len(fields) > 0 {
		flat, err := json.Marshal(fields)
		if err != nil {
			return Request{}, ErrMalformedBody
		}
		req.Data = flat
	}
	return req, nil
}

func codeOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindInvalid:
		return CodeInvalid
	case apperr.KindNotFound:
		return CodeNotFound
	case apperr.KindRule:
		return CodeRule
	case apperr.KindForbidden:
		return CodeForbidden
	case apperr.KindConflict:
		return CodeConflict
	default:
		return CodeInternal
	}
}

// Respond builds the reply envelope. Internal errors are logged and their
// text is not returned to the caller.
func Respond(ctx context.Context, data any, err error) Response {
	if err == nil {
		return Response{Code: CodeOK, Message: "ok", Data: data}
	}

	code := codeOf(apperr.KindOf(err))
	if code == CodeInternal {
		if !errors.Is(err, context.Canceled) {
			logger.FromCtx(ctx).Error("function failed", zap.Error(err))
		}
		return Response{Code: code, Message: internalMessage}
	}
	return Response{Code: code, Message: apperr.Message(err)}
}
