package domain

import (
	"errors"
	"strings"
)

// Kind classifies an Error by how a caller should react to it. Transports
// map kinds to their own status codes.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUnprocessable
	KindRateLimited
	KindUnavailable
	KindCanceled
)

var kindNames = [...]string{
	KindInternal:      "internal",
	KindInvalid:       "invalid",
	KindUnauthorized:  "unauthorized",
	KindNotFound:      "not_found",
	KindConflict:      "conflict",
	KindUnprocessable: "unprocessable",
	KindRateLimited:   "rate_limited",
	KindUnavailable:   "unavailable",
	KindCanceled:      "canceled",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Error is a coded failure. Two Errors match under errors.Is when their
// codes are equal, so sentinels below can be decorated with a detail or
// a cause and still be recognised.
//
// Codes read DM-<AREA>-<NNNN>.
type Error struct {
	Code    string
	Kind    Kind
	Message string
	Detail  string
	Err     error
}

func define(code string, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	b.WriteString(": ")
	b.WriteString(e.Text())
	if e.Err != nil {
		b.WriteString(" (")
		b.WriteString(e.Err.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Text is the client-facing message: Message plus Detail. The cause is
// left out since it may expose internals.
func (e *Error) Text() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// WithDetail returns a copy carrying detail.
func (e *Error) WithDetail(detail string) *Error {
	c := *e
	c.Detail = detail
	return &c
}

// Wrap returns a copy whose cause is err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// AsError finds the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns the code of err, or "" if err carries none.
func CodeOf(err error) string {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}

// KindOf returns the kind of err. Uncoded errors are KindInternal.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return KindInternal
}

// Documents.
var (
	ErrDocumentNotFound   = define("DM-DOC-4040", KindNotFound, "document not found")
	ErrDocumentClosed     = define("DM-DOC-4041", KindNotFound, "document closed")
	ErrDocumentConflict   = define("DM-DOC-4090", KindConflict, "document id conflict")
	ErrDocumentValidation = define("DM-DOC-4001", KindInvalid, "document validation failed")
)

// Access control.
var (
	ErrPasswordRequired = define("DM-AUTH-4010", KindUnauthorized, "password required")
	ErrPasswordInvalid  = define("DM-AUTH-4011", KindUnauthorized, "invalid password")
	ErrTicketInvalid    = define("DM-AUTH-4012", KindUnauthorized, "invalid or expired join ticket")
)

// Sync protocol.
var (
	ErrMalformedFrame = define("DM-PROTO-4000", KindInvalid, "malformed frame")
	ErrMergeFailure   = define("DM-PROTO-4220", KindUnprocessable, "merge failure")
)

// Requests and the process itself.
var (
	ErrBadRequest         = define("DM-SYS-4000", KindInvalid, "bad request")
	ErrRateLimited        = define("DM-SYS-4290", KindRateLimited, "too many requests")
	ErrInternalServer     = define("DM-SYS-5000", KindInternal, "internal server error")
	ErrServiceUnavailable = define("DM-SYS-5030", KindUnavailable, "service unavailable")
	ErrRequestCanceled    = define("DM-SYS-4990", KindCanceled, "request canceled")
	ErrInvalidArgument    = define("DM-ARG-1001", KindInvalid, "invalid argument")
	ErrMissingArgument    = define("DM-ARG-1002", KindInvalid, "missing required argument")
)

// IsDenied reports whether err is one of the access-denied outcomes of a join.
func IsDenied(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordInvalid)
}
