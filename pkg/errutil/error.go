package errutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type Detail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// BaseError is the error type returned across service boundaries. Reason is a
// stable machine-readable code (e.g. CAMPAIGN_NOT_FOUND); Code drives the
// transport status.
type BaseError struct {
	Code    CoreStatus `json:"code"`
	Reason  string     `json:"reason,omitempty"`
	Message string     `json:"message"`
	Details []Detail   `json:"details,omitempty"`
	Err     error      `json:"-"`
}

func (e BaseError) Status() CoreStatus {
	return e.Code
}

func (e BaseError) URL() string {
	values := url.Values{}

	values.Set("error_code", string(e.Code))
	values.Set("error_message", e.Message)
	if e.Reason != "" {
		values.Set("error_reason", e.Reason)
	}

	for _, d := range e.Details {
		values.Set("details["+strings.TrimSpace(d.Field)+"]", d.Message)
	}

	return values.Encode()
}

func (e BaseError) JSON() interface{} {
	body := map[string]interface{}{
		"code":    e.Code,
		"message": e.Message,
		"details": e.Details,
	}
	if e.Reason != "" {
		body["reason"] = e.Reason
	}

	return map[string]interface{}{"error": body}
}

func (e BaseError) Unwrap() error {
	return e.Err
}

// Is matches on Reason when the target carries one, otherwise on Code and
// Message.
func (e BaseError) Is(target error) bool {
	var t BaseError
	if !errors.As(target, &t) {
		return false
	}
	if t.Reason != "" {
		return e.Reason == t.Reason
	}
	return e.Code == t.Code && e.Message == t.Message
}

func (e BaseError) Error() string {
	label := string(e.Code)
	if e.Reason != "" {
		label = e.Reason
	}
	return fmt.Sprintf("[%s] %s", label, e.messageWithErr())
}

func (e BaseError) messageWithErr() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

type Option func(*BaseError)

func WithDetails(details ...Detail) Option {
	return func(be *BaseError) { be.Details = details }
}

func WithErr(err error) Option {
	return func(be *BaseError) { be.Err = err }
}

func WithReason(reason string) Option {
	return func(be *BaseError) { be.Reason = reason }
}

func New(code CoreStatus, message string, opts ...Option) error {
	be := BaseError{Code: code, Message: message}
	for _, opt := range opts {
		opt(&be)
	}
	return be
}

// Wrap returns a copy of a BaseError sentinel carrying err as its cause.
// Non-BaseError targets are wrapped as internal errors.
func Wrap(target error, err error) error {
	var be BaseError
	if !errors.As(target, &be) {
		return Internal(target.Error(), err)
	}
	be.Err = err
	return be
}

func newWithErr(code CoreStatus, msg string, err error, options []Option) error {
	if err != nil {
		options = append([]Option{WithErr(err)}, options...)
	}
	return New(code, msg, options...)
}

func NotFound(msg string, err error, options ...Option) error {
	return newWithErr(StatusNotFound, msg, err, options)
}

func UnprocessableEntity(msg string, err error, options ...Option) error {
	return newWithErr(StatusUnprocessableEntity, msg, err, options)
}

func UnsupportedMediaType(msg string, err error, options ...Option) error {
	return newWithErr(StatusUnsupportedMediaType, msg, err, options)
}

func Conflict(msg string, err error, options ...Option) error {
	return newWithErr(StatusConflict, msg, err, options)
}

func BadRequest(msg string, err error, options ...Option) error {
	return newWithErr(StatusBadRequest, msg, err, options)
}

func ValidationFailed(msg string, err error, options ...Option) error {
	return newWithErr(StatusValidationFailed, msg, err, options)
}

func Internal(msg string, err error, options ...Option) error {
	return newWithErr(StatusInternal, msg, err, options)
}

func Timeout(msg string, err error, options ...Option) error {
	return newWithErr(StatusTimeout, msg, err, options)
}

func Unauthorized(msg string, err error, options ...Option) error {
	return newWithErr(StatusUnauthorized, msg, err, options)
}

func Forbidden(msg string, err error, options ...Option) error {
	return newWithErr(StatusForbidden, msg, err, options)
}

func TooManyRequest(msg string, err error, options ...Option) error {
	return newWithErr(StatusTooManyRequests, msg, err, options)
}

func ServiceUnavailable(msg string, err error, options ...Option) error {
	return newWithErr(StatusServiceUnavailable, msg, err, options)
}

func NotImplemented(msg string, err error, options ...Option) error {
	return newWithErr(StatusNotImplemented, msg, err, options)
}
